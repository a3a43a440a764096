package rule

import (
	"math"

	"github.com/rpggio/turnkeeper/internal/domain/queue"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rs/zerolog"
)

// MinTurnSeconds is the shortest turn a rule can produce.
const MinTurnSeconds = 60

// Result is the outcome of running the rules for one finished turn.
type Result struct {
	NextTurnSeconds int
	// Adjustments maps queue entry IDs to a change in allotted seconds,
	// always a whole number of minutes.
	Adjustments map[string]int
	Applied     []string
	Errors      []error
}

// Engine evaluates duration rules.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine creates a rule engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger}
}

// ComputeNextDuration runs every enabled rule in order against the overtime
// of person's finished turn and commits the resulting next turn length to
// person.DefaultTurnSeconds. Rules whose action references allOthers adjust
// the entries in rest instead, skipping person. A rule that fails to
// evaluate is recorded in the result and skipped.
func (e *Engine) ComputeNextDuration(person *roster.Person, overtime int, rules []Rule, rest []queue.Entry) Result {
	res := Result{
		NextTurnSeconds: person.DefaultTurnSeconds,
		Adjustments:     map[string]int{},
	}

	nextTurn := float64(person.DefaultTurnSeconds)
	changed := false

	for _, r := range rules {
		if !r.Enabled {
			continue
		}

		cond, err := Parse(r.Condition)
		if err == nil {
			var v Value
			v, err = cond.Eval(map[string]float64{VarOvertime: float64(overtime)})
			if err == nil && !v.Truthy() {
				continue
			}
		}
		if err != nil {
			res.Errors = append(res.Errors, e.fail(r, r.Condition, err))
			continue
		}

		action, err := Parse(r.Action)
		if err != nil {
			res.Errors = append(res.Errors, e.fail(r, r.Action, err))
			continue
		}

		vars := map[string]float64{
			VarOvertime: float64(overtime),
			VarNextTurn: nextTurn,
		}

		if action.References(VarAllOthers) {
			vars[VarAllOthers] = 0
			v, err := action.Eval(vars)
			if err != nil {
				res.Errors = append(res.Errors, e.fail(r, r.Action, err))
				continue
			}
			delta := FloorToMinute(v.Num)
			for _, entry := range rest {
				if entry.ID() == person.ID {
					continue
				}
				res.Adjustments[entry.ID()] = AddSeconds(res.Adjustments[entry.ID()], delta)
			}
			e.logger.Debug().Str("rule", r.Name).Int("delta_seconds", delta).Msg("rule adjusted waiting turns")
		} else {
			v, err := action.Eval(vars)
			if err != nil {
				res.Errors = append(res.Errors, e.fail(r, r.Action, err))
				continue
			}
			nextTurn = math.Max(MinTurnSeconds, v.Num)
			changed = true
			e.logger.Debug().Str("rule", r.Name).Float64("next_turn", nextTurn).Msg("rule set next turn")
		}

		res.Applied = append(res.Applied, r.Name)
	}

	if changed {
		res.NextTurnSeconds = max(MinTurnSeconds, FloorToMinute(nextTurn))
	}
	person.DefaultTurnSeconds = res.NextTurnSeconds
	return res
}

func (e *Engine) fail(r Rule, expr string, err error) error {
	evalErr := &EvaluationError{Rule: r.Name, Expression: expr, Err: err}
	e.logger.Warn().Err(evalErr).Str("rule_id", r.ID).Msg("skipping rule")
	return evalErr
}

// FloorToMinute rounds seconds down to a whole number of minutes, toward
// negative infinity.
func FloorToMinute(seconds float64) int {
	return int(math.Floor(math.Max(-MaxResult, math.Min(MaxResult, seconds))/60)) * 60
}

// AddSeconds adds two second counts, saturating at ±MaxResult.
func AddSeconds(a, b int) int {
	return int(max(-MaxResult, min(MaxResult, int64(a)+int64(b))))
}
