package prompt

import (
	"regexp"
	"strings"
)

// goTemplateKeywords are Go template reserved words that must not be
// rewritten as variable references.
var goTemplateKeywords = map[string]bool{
	"else":     true,
	"end":      true,
	"if":       true,
	"range":    true,
	"with":     true,
	"define":   true,
	"template": true,
	"block":    true,
}

var (
	ifPattern      = regexp.MustCompile(`\{\{#if\s+(\w+)\}\}`)
	eachPattern    = regexp.MustCompile(`\{\{#each\s+(\w+)\}\}`)
	varPattern     = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\}\}`)
	helperPattern  = regexp.MustCompile(`\{\{(\w+)((?:\s+[a-zA-Z_]\w*|\s+\d+|\s+"[^"]*")+)\}\}`)
	controlPattern = regexp.MustCompile(`\{\{#(?:if|each)\s+([a-zA-Z_]\w*)\}\}`)
)

// convertSyntax converts Handlebars-like syntax to Go template syntax:
//
//   - {{variable}}              -> {{.variable}}
//   - {{#if x}}...{{/if}}       -> {{if .x}}...{{end}}
//   - {{#each xs}}...{{/each}}  -> {{range .xs}}...{{end}}
//   - {{helper arg 10 "lit"}}   -> {{helper .arg 10 "lit"}}
func convertSyntax(input string) string {
	result := ifPattern.ReplaceAllString(input, "{{if .$1}}")
	result = strings.ReplaceAll(result, "{{/if}}", "{{end}}")
	result = eachPattern.ReplaceAllString(result, "{{range .$1}}")
	result = strings.ReplaceAll(result, "{{/each}}", "{{end}}")

	result = varPattern.ReplaceAllStringFunc(result, func(match string) string {
		name := match[2 : len(match)-2]
		if goTemplateKeywords[name] {
			return match
		}
		return "{{." + name + "}}"
	})

	return helperPattern.ReplaceAllStringFunc(result, convertHelperCall)
}

// convertHelperCall rewrites helper arguments: bare identifiers become
// variable references, numbers and quoted strings stay as-is.
func convertHelperCall(match string) string {
	groups := helperPattern.FindStringSubmatch(match)
	helper, args := groups[1], groups[2]
	if goTemplateKeywords[helper] {
		return match
	}

	parts := strings.Fields(args)
	for i, part := range parts {
		if strings.HasPrefix(part, `"`) || isNumber(part) || part == "true" || part == "false" {
			continue
		}
		parts[i] = "." + part
	}
	return "{{" + helper + " " + strings.Join(parts, " ") + "}}"
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// extractVariables returns the deduplicated variable names referenced by a
// template, including those inside {{#if}}/{{#each}} blocks and helper calls.
func extractVariables(templateStr string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if goTemplateKeywords[name] || seen[name] {
			return
		}
		seen[name] = true
		result = append(result, name)
	}

	for _, match := range varPattern.FindAllStringSubmatch(templateStr, -1) {
		add(match[1])
	}
	for _, match := range controlPattern.FindAllStringSubmatch(templateStr, -1) {
		add(match[1])
	}
	for _, match := range helperPattern.FindAllStringSubmatch(templateStr, -1) {
		for _, arg := range strings.Fields(match[2]) {
			if !strings.HasPrefix(arg, `"`) && !isNumber(arg) && arg != "true" && arg != "false" {
				add(arg)
			}
		}
	}
	return result
}
