package sources

import (
	"context"
	"testing"

	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2+2", 4},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 4 - 3", 3},
		{"2^10", 1024},
		{"2^3^2", 512}, // right-associative
		{"10 % 3", 1},
		{"-5 + 3", -2},
		{"3.5 * 2", 7},
		{"100 / 4 / 5", 5},
		{"+7", 7},
		{"((1))", 1},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	exprs := []string{"1/0", "10 % 0", "2+", "(2+3", "2 3", "abc", ""}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			_, err := Evaluate(expr)
			assert.Error(t, err)
		})
	}
}

func TestCalculatorFetch(t *testing.T) {
	s := NewCalculatorSource(zap.NewNop())

	result, err := s.Fetch(context.Background(), core.IntentAnalysis{
		Params: core.Params{MathExpression: "2 + 2"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "2 + 2 = 4", result.Text)
	assert.Equal(t, 4.0, result.Value)
	assert.Equal(t, 0.98, result.Confidence)
}

func TestCalculatorFetchMalformedExpression(t *testing.T) {
	s := NewCalculatorSource(zap.NewNop())

	result, err := s.Fetch(context.Background(), core.IntentAnalysis{
		Params: core.Params{MathExpression: "2 +"},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}
