package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Engine renders prompt templates with variable substitution. Templates use
// Handlebars-like {{variable}} syntax, converted to Go template syntax
// before execution.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates a template engine with the default helper functions.
func NewEngine() *Engine {
	return &Engine{
		funcs: defaultFuncs(),
	}
}

// Render executes the template with the given variables.
func (e *Engine) Render(templateStr string, variables map[string]any) (string, error) {
	if templateStr == "" {
		return "", ErrEmpty
	}

	converted := convertSyntax(templateStr)

	tmpl, parseErr := template.New("prompt").Funcs(e.funcs).Parse(converted)
	if parseErr != nil {
		return "", fmt.Errorf("%w: %w", ErrParse, parseErr)
	}

	var buf strings.Builder
	if execErr := tmpl.Execute(&buf, variables); execErr != nil {
		return "", fmt.Errorf("%w: %w", ErrExecute, execErr)
	}

	return buf.String(), nil
}

// Variables validates the template and returns the variable names it
// references.
func (e *Engine) Variables(templateStr string) ([]string, error) {
	if templateStr == "" {
		return nil, ErrEmpty
	}

	converted := convertSyntax(templateStr)
	if _, parseErr := template.New("prompt").Funcs(e.funcs).Parse(converted); parseErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, parseErr)
	}

	return extractVariables(templateStr), nil
}

// AddFunc registers a custom template function under the given name.
func (e *Engine) AddFunc(name string, fn any) {
	e.funcs[name] = fn
}

// ValidateVariables checks that every required variable is provided.
func ValidateVariables(required []string, provided map[string]any) error {
	for _, name := range required {
		if _, ok := provided[name]; !ok {
			return fmt.Errorf("%w: %s", ErrVariable, name)
		}
	}
	return nil
}
