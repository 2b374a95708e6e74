// internal/game/errors.go
package game

import "errors"

// Turn and phase violations. These are surfaced to the offending client only
// and never mutate state.
var (
	ErrWrongPhase  = errors.New("action is not allowed in the current game phase")
	ErrNotYourTurn = errors.New("it is not your turn")
)

// RuleError marks a violation of the game rules (illegal bid, card not held,
// follow-suit violation). The message is shown to the player verbatim.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func ruleErrorf(msg string) error {
	return &RuleError{Message: msg}
}

// IsRuleError reports whether err is a rule violation as opposed to a
// turn/phase violation.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
