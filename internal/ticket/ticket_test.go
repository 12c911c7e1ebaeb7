package ticket

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	raw, err := Issue("secret", "table-1", "tok-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := Parse("secret", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.TableID != "table-1" || claims.Token != "tok-1" {
		t.Errorf("claims = %+v, want table-1/tok-1", claims)
	}
	if err := Verify("secret", raw, "tok-1"); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerifyRejectsOtherTable(t *testing.T) {
	raw, _ := Issue("secret", "table-1", "tok-1", time.Hour)
	if err := Verify("secret", raw, "tok-2"); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("Verify other token err = %v, want ErrInvalidTicket", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, _ := Issue("secret", "table-1", "tok-1", time.Hour)
	if _, err := Parse("other", raw); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("Parse wrong secret err = %v, want ErrInvalidTicket", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	raw, _ := Issue("secret", "table-1", "tok-1", -time.Minute)
	if _, err := Parse("secret", raw); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("Parse expired err = %v, want ErrInvalidTicket", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("secret", "not.a.jwt"); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("Parse garbage err = %v, want ErrInvalidTicket", err)
	}
}
