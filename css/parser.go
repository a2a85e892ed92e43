package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS-in-JS template blocks into rule trees.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// frame is an open block on the nesting stack.
type frame struct {
	rule *Rule
}

// scanner accumulates tokens of the current statement until a terminator
// (";", "{" or "}") tells what the statement was.
type scanner struct {
	buf      strings.Builder
	colonAt  int // position of the first top level ':' in buf, -1 if none
	start    Location
	started  bool
	depth    int // parenthesis/bracket depth
	pending  string
	lastDecl *Declaration
	// statement is a lone placeholder followed by a line break, it ends
	// there unless the next token continues a selector
	mixinBreak bool
}

func (s *scanner) reset() {
	s.buf.Reset()
	s.colonAt = -1
	s.started = false
	s.mixinBreak = false
}

// loneMixin reports whether accumulated statement is a single placeholder
// with nothing else around it.
func (s *scanner) loneMixin() bool {
	if s.depth > 0 || s.colonAt >= 0 {
		return false
	}
	text := s.text()
	spans, _ := FindPlaceholders(text)
	return len(spans) == 1 && spans[0][0] == 0 && spans[0][1] == len(text)
}

func (s *scanner) text() string {
	return strings.TrimSpace(s.buf.String())
}

// Parse parses template CSS text into a Block. The text may contain "${n}"
// markers or canonical placeholders. The optional source parameter identifies
// what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Block {
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	data = []byte(ExpandPlaceholders(string(data)))

	block := &Block{Root: Rule{Selector: "&"}}
	stack := []frame{{rule: &block.Root}}

	lexer := css.NewLexer(parse.NewInput(bytes.NewReader(data)))

	var (
		sc     = &scanner{colonAt: -1}
		offset int
		line   = 1
		column = 1
	)

	advance := func(tok []byte) {
		offset += len(tok)
		for _, b := range tok {
			if b == '\n' {
				line++
				column = 1
			} else {
				column++
			}
		}
	}

	for {
		tt, tok := lexer.Next()
		here := Location{Offset: offset, Line: line, Column: column}

		if sc.mixinBreak {
			switch tt {
			case css.WhitespaceToken, css.CommentToken:
			case css.LeftBraceToken, css.CommaToken:
				sc.mixinBreak = false
			default:
				p.flushDeclaration(sc, stack[len(stack)-1].rule, block)
			}
		}

		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				block.Warnings = append(block.Warnings, "tokenizer error: "+err.Error())
				p.log.Debug("CSS tokenizer error", zap.Error(err))
			}
			p.flushDeclaration(sc, stack[len(stack)-1].rule, block)
			if len(stack) > 1 {
				block.Warnings = append(block.Warnings, "unterminated block: "+stack[len(stack)-1].rule.Selector)
			}
			return block

		case css.CommentToken:
			text := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(string(tok), "/*"), "*/"))
			switch {
			case sc.lastDecl != nil && !sc.started:
				sc.lastDecl.TrailingComment = text
				sc.lastDecl = nil
			case !sc.started:
				sc.pending = text
			}

		case css.WhitespaceToken:
			if sc.started {
				sc.buf.WriteByte(' ')
			}
			if bytes.IndexByte(tok, '\n') >= 0 {
				sc.lastDecl = nil
				if sc.started && sc.loneMixin() {
					sc.mixinBreak = true
				}
			}

		case css.SemicolonToken:
			if sc.depth > 0 {
				sc.write(tok, here)
				break
			}
			p.flushDeclaration(sc, stack[len(stack)-1].rule, block)

		case css.LeftBraceToken:
			if sc.depth > 0 {
				sc.write(tok, here)
				break
			}
			parent := stack[len(stack)-1].rule
			child := p.openRule(parent, sc)
			stack = append(stack, frame{rule: child})
			sc.reset()
			sc.lastDecl = nil

		case css.RightBraceToken:
			if sc.depth > 0 {
				sc.write(tok, here)
				break
			}
			p.flushDeclaration(sc, stack[len(stack)-1].rule, block)
			if len(stack) == 1 {
				block.Warnings = append(block.Warnings, "unbalanced closing brace at "+here.String())
				p.log.Debug("Unbalanced closing brace", zap.Stringer("at", here))
				break
			}
			stack = stack[:len(stack)-1]
			sc.lastDecl = nil

		case css.ColonToken:
			if sc.depth == 0 && sc.colonAt < 0 {
				sc.colonAt = sc.buf.Len()
			}
			sc.write(tok, here)

		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			sc.depth++
			sc.write(tok, here)

		case css.RightParenthesisToken, css.RightBracketToken:
			if sc.depth > 0 {
				sc.depth--
			}
			sc.write(tok, here)

		default:
			sc.write(tok, here)
		}

		advance(tok)
	}
}

func (s *scanner) write(tok []byte, at Location) {
	if !s.started {
		s.started = true
		s.start = at
	}
	s.buf.Write(tok)
}

// openRule creates a nested rule for the statement accumulated in sc and
// returns pointer to it. Pointer stays valid while the block is open since
// nothing else is appended to the parent until the block closes.
func (p *Parser) openRule(parent *Rule, sc *scanner) *Rule {
	prelude := sc.text()
	loc := sc.start
	loc.Length = len(prelude)

	child := Rule{
		Selector: parent.Selector,
		AtRules:  append([]string(nil), parent.AtRules...),
		Loc:      loc,
	}
	if strings.HasPrefix(prelude, "@") {
		child.AtRules = append(child.AtRules, prelude)
	} else {
		child.Selector = ComposeSelector(parent.Selector, prelude)
	}
	parent.Rules = append(parent.Rules, child)
	sc.pending = ""
	return &parent.Rules[len(parent.Rules)-1]
}

// flushDeclaration turns accumulated statement into a declaration of rule.
func (p *Parser) flushDeclaration(sc *scanner, rule *Rule, block *Block) {
	defer sc.reset()

	text := sc.text()
	if text == "" {
		return
	}

	decl := Declaration{LeadingComment: sc.pending, Loc: sc.start}
	decl.Loc.Length = len(text)
	sc.pending = ""

	raw := sc.buf.String()
	if sc.colonAt < 0 {
		if !HasPlaceholder(text) {
			block.Warnings = append(block.Warnings, "malformed declaration: "+text)
			p.log.Debug("Skipping malformed declaration", zap.String("text", text))
			return
		}
		// Bare interpolation used as a mixin
		decl.Value = NewValue(text)
	} else {
		decl.Property = strings.TrimSpace(raw[:sc.colonAt])
		if !strings.HasPrefix(decl.Property, "--") && !HasPlaceholder(decl.Property) {
			decl.Property = strings.ToLower(decl.Property)
		}
		value := strings.TrimSpace(raw[sc.colonAt+1:])
		value, decl.Important = StripImportant(value)
		decl.Value = NewValue(value)
	}

	rule.Declarations = append(rule.Declarations, decl)
	sc.lastDecl = &rule.Declarations[len(rule.Declarations)-1]
}

// StripImportant removes trailing "!important" flag from value text.
func StripImportant(value string) (string, bool) {
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	if !strings.HasSuffix(lower, "important") {
		return v, false
	}
	rest := strings.TrimSpace(v[:len(v)-len("important")])
	if !strings.HasSuffix(rest, "!") {
		return v, false
	}
	return strings.TrimSpace(rest[:len(rest)-1]), true
}

// ComposeSelector resolves nested selector against its parent. Every "&" in
// the nested selector stands for the parent, selectors without "&" are
// descendants of the parent. Comma groups on both sides are multiplied out.
func ComposeSelector(parent, nested string) string {
	nested = strings.TrimSpace(nested)
	if parent == "" || parent == "&" {
		if strings.Contains(nested, "&") || nested == "" {
			return nested
		}
	}

	var out []string
	for _, pb := range SplitTopLevel(parent, ',') {
		for _, nb := range SplitTopLevel(nested, ',') {
			if strings.Contains(nb, "&") {
				out = append(out, strings.ReplaceAll(nb, "&", pb))
			} else {
				out = append(out, pb+" "+nb)
			}
		}
	}
	return strings.Join(out, ", ")
}

// SplitTopLevel splits s on sep outside of parentheses, brackets and quotes.
// Parts are trimmed, empty parts are dropped.
func SplitTopLevel(s string, sep byte) []string {
	var (
		out   []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			if part := strings.TrimSpace(s[start:i]); part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		out = append(out, part)
	}
	return out
}

// SplitFields splits s on whitespace outside of parentheses and quotes, so
// "rgb(0, 0, 0)" stays a single field.
func SplitFields(s string) []string {
	var (
		out   []string
		depth int
		quote byte
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			cur.WriteByte(c)
		case c == '"' || c == '\'':
			quote = c
			cur.WriteByte(c)
		case c == '(':
			depth++
			cur.WriteByte(c)
		case c == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(c)
		case (c == ' ' || c == '\t' || c == '\n' || c == '\r') && depth == 0:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}
