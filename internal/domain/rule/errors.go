package rule

import (
	"errors"
	"fmt"
)

var (
	// ErrRuleNotFound indicates the rule doesn't exist.
	ErrRuleNotFound = errors.New("rule not found")
	// ErrInvalidInput indicates an incomplete or unparseable rule.
	ErrInvalidInput = errors.New("invalid rule input")
	// ErrBuiltInRule indicates an attempt to delete a built-in template.
	ErrBuiltInRule = errors.New("built-in rules cannot be deleted")
	// ErrSyntax indicates an expression that doesn't parse.
	ErrSyntax = errors.New("expression syntax error")
	// ErrEvaluation indicates an expression that failed at evaluation time.
	ErrEvaluation = errors.New("rule evaluation failed")
	// ErrOutOfRange is returned when an expression yields a number too large
	// to use as a duration.
	ErrOutOfRange = errors.New("expression result out of range")
)

// EvaluationError reports a rule whose condition or action could not be
// evaluated. The rule is skipped and the remaining rules still run.
type EvaluationError struct {
	Rule       string
	Expression string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("rule %q: evaluating %q: %v", e.Rule, e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}
