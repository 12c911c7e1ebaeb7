// Package ticket issues and verifies the signed tickets that let a client
// attach to a table over HTTP and WebSocket.
package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidTicket = errors.New("invalid table ticket")

// Claims binds a ticket to one table.
type Claims struct {
	TableID string `json:"tid"`
	Token   string `json:"tok"`
	jwt.RegisteredClaims
}

// Issue signs a ticket for the table, valid for ttl.
func Issue(secret, tableID, token string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TableID: tableID,
		Token:   token,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tableID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign ticket: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns its claims.
func Parse(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidTicket
	}
	return claims, nil
}

// Verify checks that raw is a valid ticket for the table with the given token.
func Verify(secret, raw, token string) error {
	claims, err := Parse(secret, raw)
	if err != nil {
		return err
	}
	if claims.Token != token {
		return ErrInvalidTicket
	}
	return nil
}
