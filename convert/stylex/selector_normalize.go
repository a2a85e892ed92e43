package stylex

import (
	"regexp"
	"strings"

	"sc2sx/css"
)

var (
	tripleAmpPattern = regexp.MustCompile(`&{3,}`)
	doubleAmpPattern = regexp.MustCompile(`&&`)
	canonicalPattern = regexp.MustCompile(`__SC_EXPR_(\d+)__`)
)

// NormalizeSelector prepares raw selector text for classification:
// whitespace is collapsed, "&&" becomes "&" and placeholders take the
// "${n}" form. The second result is false for three or more consecutive
// "&" which must not be collapsed. Normalization is idempotent.
func NormalizeSelector(raw string) (string, bool) {
	sel := strings.Join(strings.Fields(raw), " ")
	if tripleAmpPattern.MatchString(sel) {
		return sel, false
	}
	sel = doubleAmpPattern.ReplaceAllString(sel, "&")
	sel = canonicalPattern.ReplaceAllString(sel, "$${$1}")
	// ${ 3 } and friends written by hand
	sel = css.ExpandPlaceholders(sel)
	sel = canonicalPattern.ReplaceAllString(sel, "$${$1}")
	return sel, true
}

// MediaText combines media queries of the at-rule stack into one condition
// key, nested queries are joined with "and". Empty when no media applies.
func MediaText(atRules []string) string {
	var queries []string
	for _, at := range atRules {
		if css.IsMediaAtRule(at) {
			if q := css.MediaQueryText(at); q != "" {
				queries = append(queries, q)
			}
		}
	}
	if len(queries) == 0 {
		return ""
	}
	return "@media " + strings.Join(queries, " and ")
}

// maskNested replaces content of parentheses, brackets and quoted strings
// with underscores, so combinator tests see top level characters only. Length and
// offsets are preserved.
func maskNested(sel string) string {
	b := []byte(sel)
	depth := 0
	var quote byte
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			b[i] = '_'
		case c == '"' || c == '\'':
			quote = c
			b[i] = '_'
		case c == '(' || c == '[' || c == '{':
			if depth > 0 {
				b[i] = '_'
			}
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
			if depth > 0 {
				b[i] = '_'
			}
		default:
			if depth > 0 {
				b[i] = '_'
			}
		}
	}
	return string(b)
}
