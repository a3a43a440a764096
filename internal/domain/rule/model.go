package rule

// Rule adjusts future turn lengths from the overtime of a finished turn.
type Rule struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Condition   string `json:"condition"`
	Action      string `json:"action"`
	Enabled     bool   `json:"enabled"`
	BuiltIn     bool   `json:"builtIn"`
	Position    int    `json:"-"`
}

// Built-in template IDs.
const (
	IDOvertimePenalty      = "overtime-penalty"
	IDEarlyExitBonus       = "early-exit-bonus"
	IDHeavyOvertimePenalty = "heavy-overtime-penalty"
	IDGroupRedistribution  = "group-redistribution"
	IDProportionalPenalty  = "proportional-penalty"
	IDExactTimingBonus     = "exact-timing-bonus"
)

// DefaultRules returns the built-in templates in evaluation order. Only the
// overtime penalty is enabled.
func DefaultRules() []Rule {
	rules := []Rule{
		{
			ID:          IDOvertimePenalty,
			Name:        "Overtime penalty",
			Description: "Shorten the next turn by the overtime plus five minutes",
			Condition:   "overtime < 60",
			Action:      "nextTurn - overtime - 300",
			Enabled:     true,
		},
		{
			ID:          IDEarlyExitBonus,
			Name:        "Early-exit bonus",
			Description: "Add unused time to the next turn",
			Condition:   "overtime < 0",
			Action:      "nextTurn + Math.abs(overtime)",
		},
		{
			ID:          IDHeavyOvertimePenalty,
			Name:        "Heavy overtime penalty",
			Description: "Take ten minutes off the next turn after more than five minutes over",
			Condition:   "overtime > 300",
			Action:      "nextTurn - 600",
		},
		{
			ID:          IDGroupRedistribution,
			Name:        "Group redistribution",
			Description: "Give everyone still waiting an extra minute after more than a minute over",
			Condition:   "overtime > 60",
			Action:      "allOthers + 60",
		},
		{
			ID:          IDProportionalPenalty,
			Name:        "Proportional penalty",
			Description: "Shorten the next turn by twice the overtime",
			Condition:   "overtime > 0",
			Action:      "nextTurn - (overtime * 2)",
		},
		{
			ID:          IDExactTimingBonus,
			Name:        "Exact-timing bonus",
			Description: "Add five minutes after finishing within 30 seconds of the allotment",
			Condition:   "Math.abs(overtime) <= 30",
			Action:      "nextTurn + 300",
		},
	}
	for i := range rules {
		rules[i].BuiltIn = true
		rules[i].Position = i
	}
	return rules
}
