package sources

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mikey/knowledge-engine/internal/core"
	"go.uber.org/zap"
)

const calculatorLabel = "calculator"

// CalculatorSource evaluates arithmetic expressions locally. It needs no
// network round-trip and therefore no cache
type CalculatorSource struct {
	logger *zap.Logger
}

// NewCalculatorSource creates a new calculator source
func NewCalculatorSource(logger *zap.Logger) *CalculatorSource {
	return &CalculatorSource{logger: logger}
}

// Category returns the fan-out category this source serves
func (s *CalculatorSource) Category() core.Category { return core.CategoryMath }

// Fetch evaluates the extracted expression. A malformed expression yields
// "no result" rather than an error surfaced to the caller
func (s *CalculatorSource) Fetch(_ context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	expr := analysis.Params.MathExpression
	if expr == "" {
		return nil, nil
	}

	value, err := Evaluate(expr)
	if err != nil {
		s.logger.Debug("expression evaluation failed", zap.String("expression", expr), zap.Error(err))
		return nil, nil
	}

	return &core.SourceResult{
		Type:       core.TypeInstantAnswer,
		Text:       fmt.Sprintf("%s = %s", expr, formatNumber(value)),
		Value:      value,
		Confidence: 0.98,
		Source:     calculatorLabel,
	}, nil
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// Evaluate computes an arithmetic expression over + - * / % ^ and
// parentheses using precedence climbing
func Evaluate(expr string) (float64, error) {
	p := &exprParser{input: strings.TrimSpace(expr)}
	value, err := p.parseExpr(0)
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	return value, nil
}

type exprParser struct {
	input string
	pos   int
}

// binding powers per operator; ^ binds tightest and is right-associative
var bindingPower = map[byte]int{
	'+': 1, '-': 1,
	'*': 2, '/': 2, '%': 2,
	'^': 3,
}

func (p *exprParser) parseExpr(minPower int) (float64, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return left, nil
		}
		op := p.input[p.pos]
		power, ok := bindingPower[op]
		if !ok || power < minPower {
			return left, nil
		}
		p.pos++

		nextMin := power + 1
		if op == '^' {
			nextMin = power
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return 0, err
		}

		left, err = apply(op, left, right)
		if err != nil {
			return 0, err
		}
	}
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	switch c := p.input[p.pos]; {
	case c == '(':
		p.pos++
		value, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	case c == '-':
		p.pos++
		value, err := p.parsePrimary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case c == '+':
		p.pos++
		return p.parsePrimary()
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	default:
		return 0, fmt.Errorf("unexpected %q at position %d", c, p.pos)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return value, nil
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func apply(op byte, left, right float64) (float64, error) {
	switch op {
	case '+':
		return left + right, nil
	case '-':
		return left - right, nil
	case '*':
		return left * right, nil
	case '/':
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case '%':
		if right == 0 {
			return 0, fmt.Errorf("modulo by zero")
		}
		return math.Mod(left, right), nil
	case '^':
		return math.Pow(left, right), nil
	}
	return 0, fmt.Errorf("unknown operator %q", op)
}
