package stylex

import (
	"strings"

	"go.uber.org/zap"

	"sc2sx/css"
)

// varRef is a single var(--name[, fallback]) occurrence in a value.
type varRef struct {
	start, end  int // [start, end) of the whole var(...) call
	name        string
	fallback    string
	hasFallback bool
}

// scanVarRefs finds top level var() references. Nested references inside a
// fallback belong to their enclosing call. Returns false when a call is not
// terminated.
func scanVarRefs(s string) ([]varRef, bool) {
	var refs []varRef
	pos := 0
	for {
		i := strings.Index(s[pos:], "var(--")
		if i < 0 {
			return refs, true
		}
		start := pos + i
		open := start + len("var")
		depth := 0
		end := -1
		for j := open; j < len(s); j++ {
			switch s[j] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				end = j + 1
				break
			}
		}
		if end < 0 {
			return nil, false
		}

		inner := s[open+1 : end-1]
		ref := varRef{start: start, end: end}
		if parts := splitFirstTopLevel(inner, ','); len(parts) == 2 {
			ref.name = strings.TrimSpace(parts[0])
			ref.fallback = strings.TrimSpace(parts[1])
			ref.hasFallback = true
		} else {
			ref.name = strings.TrimSpace(inner)
		}
		ref.name = strings.TrimPrefix(ref.name, "--")
		refs = append(refs, ref)
		pos = end
	}
}

func splitFirstTopLevel(s string, sep byte) []string {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				return []string{s[:i], s[i+1:]}
			}
		}
	}
	return []string{s}
}

// resolvedRef is var reference replacement: adapter code or local literal.
type resolvedRef struct {
	ref     varRef
	code    string
	literal bool
	imports []Import
}

// resolveVars resolves every var() reference of value. Resolution is all or
// nothing: if any reference stays unknown the second result is false and no
// imports are recorded.
func (c *ValueConverter) resolveVars(value string) (StyleValue, bool) {
	refs, ok := scanVarRefs(value)
	if !ok || len(refs) == 0 {
		return nil, false
	}

	resolved := make([]resolvedRef, 0, len(refs))
	for _, ref := range refs {
		r, ok := c.resolveVar(ref)
		if !ok {
			c.log.Debug("Unresolved css variable, keeping value", zap.String("variable", ref.name))
			return nil, false
		}
		resolved = append(resolved, r)
	}

	for _, r := range resolved {
		c.imports.Add(r.imports...)
	}

	if len(resolved) == 1 && resolved[0].ref.start == 0 && resolved[0].ref.end == len(value) {
		if resolved[0].literal {
			return literalValue(resolved[0].code), true
		}
		return VarRef{Path: resolved[0].code}, true
	}

	// Substitute from the end so earlier offsets stay valid.
	segments := make([]Segment, 0, 2*len(resolved)+1)
	tail := len(value)
	for i := len(resolved) - 1; i >= 0; i-- {
		r := resolved[i]
		if r.ref.end < tail {
			segments = append(segments, Segment{Kind: SegmentText, Text: value[r.ref.end:tail]})
		}
		if r.literal {
			segments = append(segments, Segment{Kind: SegmentText, Text: r.code})
		} else {
			segments = append(segments, Segment{Kind: SegmentExpr, Text: r.code})
		}
		tail = r.ref.start
	}
	if tail > 0 {
		segments = append(segments, Segment{Kind: SegmentText, Text: value[:tail]})
	}

	var t Template
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i].Kind == SegmentText {
			t.appendText(segments[i].Text)
			continue
		}
		t.Segments = append(t.Segments, segments[i])
	}
	if len(t.Segments) == 1 && t.Segments[0].Kind == SegmentText {
		return literalValue(t.Segments[0].Text), true
	}
	return t, true
}

func (c *ValueConverter) resolveVar(ref varRef) (resolvedRef, bool) {
	if c.adapter != nil {
		if res, ok := c.adapter.ResolveCSSVariable(ref.name, ref.fallback, ref.hasFallback); ok && res != nil && res.Code != "" {
			return resolvedRef{ref: ref, code: res.Code, imports: res.Imports}, true
		}
	}
	if local, ok := c.locals[ref.name]; ok && !css.HasPlaceholder(local) {
		return resolvedRef{ref: ref, code: local, literal: true}, true
	}
	return resolvedRef{}, false
}
