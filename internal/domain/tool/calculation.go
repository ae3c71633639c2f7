package tool

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
)

// calculationForbiddenKeywords are rejected by substring match before any
// evaluation happens. This mirrors the registration contract: the filter is a
// best-effort textual screen, not a security boundary; the expression VM
// below is what actually bounds capability.
var calculationForbiddenKeywords = []string{"import", "exec", "eval", "open", "file", "__"}

const calculationAllowedChars = "0123456789+-*/.() " +
	"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"

// executeCalculation evaluates a restricted arithmetic expression against a
// namespace of whitelisted math helpers and caller-supplied variables.
func executeCalculation(params map[string]interface{}) (interface{}, error) {
	expression, _ := params["expression"].(string)
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("expression is required for calculations")
	}

	if err := screenExpression(expression); err != nil {
		return nil, err
	}

	variables, _ := params["variables"].(map[string]interface{})
	env := mathEnv()
	for name, value := range variables {
		env[name] = value
	}

	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("calculation error: %w", err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("calculation error: %w", err)
	}

	return map[string]interface{}{
		"expression":     expression,
		"result":         result,
		"variables_used": variables,
	}, nil
}

// screenExpression enforces the character whitelist and keyword denylist.
func screenExpression(expression string) error {
	for _, r := range expression {
		if !strings.ContainsRune(calculationAllowedChars, r) {
			return fmt.Errorf("expression contains forbidden characters")
		}
	}
	for _, keyword := range calculationForbiddenKeywords {
		if strings.Contains(expression, keyword) {
			return fmt.Errorf("expression contains forbidden keyword: %s", keyword)
		}
	}
	return nil
}

// mathEnv returns the whitelisted helpers available to calculations.
func mathEnv() map[string]interface{} {
	return map[string]interface{}{
		"abs":   math.Abs,
		"sqrt":  math.Sqrt,
		"pow":   math.Pow,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"log":   math.Log,
		"exp":   math.Exp,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"pi":    math.Pi,
		"min":   math.Min,
		"max":   math.Max,
		"round": math.Round,
	}
}
