package models

import "fmt"

// ActionType is the closed set of player intents the state machine accepts.
// Anything arriving from transport is parsed into one of these before it gets
// anywhere near hand state.
type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionBet   ActionType = "bet"
	ActionRaise ActionType = "raise"
	ActionAllIn ActionType = "allin"
)

type Action struct {
	Type   ActionType `json:"type"`
	Amount int        `json:"amount,omitempty"`
}

// ParseAction validates a raw (type, amount) pair at the boundary. Amounts are
// only meaningful for bet/raise; a negative amount is rejected outright.
func ParseAction(actionType string, amount int) (Action, error) {
	t := ActionType(actionType)
	switch t {
	case ActionFold, ActionCheck, ActionCall, ActionAllIn:
		return Action{Type: t}, nil
	case ActionBet, ActionRaise:
		if amount <= 0 {
			return Action{}, NewValidationError(CodeInvalidAmount,
				fmt.Sprintf("%s requires a positive amount, got %d", t, amount))
		}
		return Action{Type: t, Amount: amount}, nil
	default:
		return Action{}, NewValidationError(CodeInvalidAction,
			fmt.Sprintf("unknown action type %q", actionType))
	}
}
