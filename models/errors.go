package models

import "fmt"

// ErrorClass groups rejections by how the caller should react: Validation and
// RuleViolation are safe to retry with corrected input, NotFound means the
// client should resynchronize, Integrity is fatal for the affected hand and
// must never be swallowed.
type ErrorClass string

const (
	ClassValidation    ErrorClass = "validation"
	ClassRuleViolation ErrorClass = "rule_violation"
	ClassNotFound      ErrorClass = "not_found"
	ClassIntegrity     ErrorClass = "integrity"
)

type ErrorCode string

const (
	CodeInvalidAction     ErrorCode = "INVALID_ACTION"
	CodeInvalidConfig     ErrorCode = "INVALID_CONFIG"
	CodeInvalidAmount     ErrorCode = "INVALID_AMOUNT"
	CodeSeatOutOfRange    ErrorCode = "SEAT_OUT_OF_RANGE"
	CodeSeatTaken         ErrorCode = "SEAT_TAKEN"
	CodeInvalidBuyIn      ErrorCode = "INVALID_BUY_IN"
	CodeNotYourTurn       ErrorCode = "NOT_YOUR_TURN"
	CodeCannotCheck       ErrorCode = "CANNOT_CHECK"
	CodeRaiseTooSmall     ErrorCode = "RAISE_TOO_SMALL"
	CodeInsufficientChips ErrorCode = "INSUFFICIENT_CHIPS"
	CodeAlreadyJoined     ErrorCode = "ALREADY_JOINED"
	CodeAlreadySeated     ErrorCode = "ALREADY_SEATED"
	CodeNotAMember        ErrorCode = "NOT_A_MEMBER"
	CodeNotSeated         ErrorCode = "NOT_SEATED"
	CodeTableNotFound     ErrorCode = "TABLE_NOT_FOUND"
	CodePlayerNotFound    ErrorCode = "PLAYER_NOT_FOUND"
	CodeNoActiveHand      ErrorCode = "NO_ACTIVE_HAND"
	CodeHandInProgress    ErrorCode = "HAND_IN_PROGRESS"
	CodeNotEnoughPlayers  ErrorCode = "NOT_ENOUGH_PLAYERS"
	CodePotConservation   ErrorCode = "POT_CONSERVATION"
	CodeDeckMismatch      ErrorCode = "DECK_MISMATCH"
)

type GameError struct {
	Class   ErrorClass `json:"class"`
	Code    ErrorCode  `json:"code"`
	Message string     `json:"message"`
}

func (e *GameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(code ErrorCode, message string) *GameError {
	return &GameError{Class: ClassValidation, Code: code, Message: message}
}

func NewRuleViolation(code ErrorCode, message string) *GameError {
	return &GameError{Class: ClassRuleViolation, Code: code, Message: message}
}

func NewNotFoundError(code ErrorCode, message string) *GameError {
	return &GameError{Class: ClassNotFound, Code: code, Message: message}
}

func NewIntegrityFailure(code ErrorCode, message string) *GameError {
	return &GameError{Class: ClassIntegrity, Code: code, Message: message}
}

// AsGameError unwraps err into a *GameError if it is one.
func AsGameError(err error) (*GameError, bool) {
	ge, ok := err.(*GameError)
	return ge, ok
}
