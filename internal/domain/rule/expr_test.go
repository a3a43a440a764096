package rule_test

import (
	"testing"

	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/stretchr/testify/require"
)

func TestExpr_Evaluates(t *testing.T) {
	vars := map[string]float64{
		rule.VarOvertime: -45,
		rule.VarNextTurn: 1800,
	}
	cases := []struct {
		src    string
		want   float64
		isBool bool
	}{
		{"nextTurn - overtime - 300", 1545, false},
		{"nextTurn + Math.abs(overtime)", 1845, false},
		{"nextTurn - (overtime * 2)", 1890, false},
		{"abs(overtime) <= 30", 0, true},
		{"Math.abs(overtime) <= 45", 1, true},
		{"overtime < 0 && nextTurn > 60", 1, true},
		{"overtime > 0 || !(nextTurn == 1800)", 0, true},
		{"nextTurn === 1800", 1, true},
		{"-overtime / 2", 22.5, false},
		{"Math.max(60, overtime)", 60, false},
		{"Math.min(nextTurn, 900, 1200)", 900, false},
		{"floor(7 / 2) + ceil(0.2) + round(2.5)", 7, false},
		{"nextTurn % 7", 1, false},
		{"2 + 3 * 4 - 1", 13, false},
		{"(2 + 3) * 4", 20, false},
		{"true", 1, true},
	}

	for _, tc := range cases {
		expr, err := rule.Parse(tc.src)
		require.NoError(t, err, tc.src)
		v, err := expr.Eval(vars)
		require.NoError(t, err, tc.src)
		require.Equal(t, tc.want, v.Num, tc.src)
		require.Equal(t, tc.isBool, v.IsBool, tc.src)
	}
}

func TestExpr_RejectsAnythingOutsideTheVocabulary(t *testing.T) {
	for _, src := range []string{
		"",
		"overtime >",
		"process.exit(1)",
		"alert(overtime)",
		"window",
		"overtime; nextTurn",
		"nextTurn = 5",
		"Math.abs",
		"Math.pow(2, 10)",
		"'text'",
		"(overtime",
		"abs(1, 2)",
		"1.2.3",
		"overtime.constructor",
	} {
		_, err := rule.Parse(src)
		require.ErrorIs(t, err, rule.ErrSyntax, "%q", src)
	}
}

func TestExpr_EvalErrors(t *testing.T) {
	expr, err := rule.Parse("nextTurn / overtime")
	require.NoError(t, err)

	_, err = expr.Eval(map[string]float64{rule.VarNextTurn: 60, rule.VarOvertime: 0})
	require.Error(t, err)

	_, err = expr.Eval(map[string]float64{rule.VarOvertime: 5})
	require.Error(t, err)
}

func TestExpr_RejectsResultsTooLargeForSeconds(t *testing.T) {
	for _, src := range []string{"nextTurn * 100000000000000000000", "0 - 1000000000000", "2147483648"} {
		expr, err := rule.Parse(src)
		require.NoError(t, err, "%q", src)
		_, err = expr.Eval(map[string]float64{rule.VarNextTurn: 600})
		require.ErrorIs(t, err, rule.ErrOutOfRange, "%q", src)
	}

	expr, err := rule.Parse("2147483647")
	require.NoError(t, err)
	v, err := expr.Eval(nil)
	require.NoError(t, err)
	require.Equal(t, float64(rule.MaxResult), v.Num)
}

func TestExpr_References(t *testing.T) {
	expr, err := rule.Parse("allOthers + 60")
	require.NoError(t, err)
	require.True(t, expr.References(rule.VarAllOthers))
	require.False(t, expr.References(rule.VarNextTurn))
}

func TestValidate(t *testing.T) {
	valid := rule.Rule{Name: "n", Description: "d", Condition: "overtime > 0", Action: "nextTurn - 60"}
	require.NoError(t, rule.Validate(valid))

	missing := valid
	missing.Description = " "
	require.ErrorIs(t, rule.Validate(missing), rule.ErrInvalidInput)

	badAction := valid
	badAction.Action = "nextTurn -"
	require.ErrorIs(t, rule.Validate(badAction), rule.ErrInvalidInput)

	condUsesNextTurn := valid
	condUsesNextTurn.Condition = "nextTurn > 0"
	require.ErrorIs(t, rule.Validate(condUsesNextTurn), rule.ErrInvalidInput)

	for _, r := range rule.DefaultRules() {
		require.NoError(t, rule.Validate(r), r.Name)
	}
}
