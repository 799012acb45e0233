package transformation

import (
	"regexp"
	"strings"
)

// exprOperators maps expression operators to their wire tokens
var exprOperators = map[string]string{
	"=":  "eq",
	"!=": "ne",
	"<":  "lt",
	">":  "gt",
	"<=": "lte",
	">=": "gte",
	"&&": "and",
	"||": "or",
	"*":  "mul",
	"/":  "div",
	"+":  "add",
	"-":  "sub",
	"%":  "mod",
	"^":  "pow",
}

// exprNames maps predefined expression variables to their short forms
var exprNames = map[string]string{
	"width":                "w",
	"height":               "h",
	"initial_width":        "iw",
	"initial_height":       "ih",
	"initial_aspect_ratio": "iar",
	"initial_duration":     "idu",
	"aspect_ratio":         "ar",
	"duration":             "du",
	"page_count":           "pc",
	"face_count":           "fc",
	"current_page":         "cp",
	"tags":                 "tags",
	"pageX":                "px",
	"pageY":                "py",
	"context":              "ctx",
	"resource_type":        "rt",
	"trimmed_aspect_ratio": "tar",
}

var (
	// string literals wrapped in ! ! travel verbatim
	exprLiteralRe = regexp.MustCompile(`^!.+!$`)
	exprRunRe     = regexp.MustCompile(`[ _]+`)
)

// NormalizeExpression rewrites an arithmetic or conditional expression
// into the short-token dialect of the service.
//
// Tokens are separated by space or underscore runs, which collapse to
// a single "_" in the output.  User variables ($name) and !literal!
// values pass through untouched, as does anything already in short
// form, which makes the rewrite idempotent.
func NormalizeExpression(expression string) string {
	if expression == "" || exprLiteralRe.MatchString(expression) {
		return expression
	}
	fields := strings.Fields(expression)
	for i, f := range fields {
		if strings.HasPrefix(f, "$") {
			continue
		}
		if op, ok := exprOperators[f]; ok {
			fields[i] = op
		} else if name, ok := exprNames[f]; ok {
			fields[i] = name
		}
	}
	return exprRunRe.ReplaceAllString(strings.Join(fields, "_"), "_")
}
