package tool

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
)

// functionForbiddenKeywords are screened out of function sources before
// compilation. The substring match is deliberately coarse; real isolation
// comes from running the source inside the expression VM, which has no file,
// process or network access.
var functionForbiddenKeywords = []string{
	"exec", "eval", "open", "file", "input",
	"__import__", "__builtins__", "__globals__", "__locals__",
	"compile", "globals", "locals", "getattr", "setattr", "delattr",
	"subprocess", "os.", "sys.", "socket", "urllib", "import",
}

// executeFunction compiles caller-supplied source as an expression program
// and runs it with the caller's parameters bound as globals.
func executeFunction(desc Descriptor, params map[string]interface{}) (interface{}, error) {
	source := desc.Config.Source
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("no source provided in tool configuration")
	}

	for _, keyword := range functionForbiddenKeywords {
		if strings.Contains(source, keyword) {
			return nil, fmt.Errorf("forbidden keyword %q found in function source", keyword)
		}
	}

	funcParams, _ := params["function_params"].(map[string]interface{})
	if funcParams == nil {
		funcParams = params
	}

	env := mathEnv()
	for name, value := range funcParams {
		env[name] = value
	}

	program, err := expr.Compile(source, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("function compilation error: %w", err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("function execution error: %w", err)
	}

	return map[string]interface{}{
		"result":          result,
		"function_params": funcParams,
	}, nil
}
