package game

// Phase is the turn/match state machine position.
type Phase string

const (
	PhaseAwaitingInput Phase = "AWAITING_INPUT"
	PhaseResolving     Phase = "RESOLVING"
	PhaseRoundOver     Phase = "ROUND_OVER"
	PhaseMatchOver     Phase = "MATCH_OVER"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseAwaitingInput, PhaseResolving, PhaseRoundOver, PhaseMatchOver:
		return true
	}
	return false
}

// Round end reasons.
const (
	ReasonWipeout       = "wipeout"
	ReasonDoubleWipeout = "double_wipeout"
)
