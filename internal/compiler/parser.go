package compiler

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/idna"

	"github.com/globalsign/tldrules/tld"
)

// Document is the result of parsing one or more rule source files: every
// rule encountered, in declaration order, plus the final global
// scope (useful only for diagnostics).
type Document struct {
	Rules []*Rule

	globalStatus    tld.Status
	hasGlobalStatus bool
	globalTags      map[string]string
	globalTagOrder  []string
}

// Parser accumulates rules across any number of ParseFile calls, tracking
// global scope and duplicate-name detection across the whole run (§4.C).
type Parser struct {
	byName map[string]*Rule
	order  []*Rule

	globalStatus    tld.Status
	hasGlobalStatus bool
	globalTags      map[string]string
	globalTagOrder  []string

	cur     *Rule
}

// NewParser creates an empty Parser.
func NewParser() *Parser {
	return &Parser{
		byName:     make(map[string]*Rule),
		globalTags: make(map[string]string),
	}
}

// ParseFile tokenizes and parses one rule source file's content, adding to
// the parser's accumulated rule set. Line-level errors stop parsing of
// that file immediately, per §4.C.
func (p *Parser) ParseFile(file string, src []byte) error {
	tokens, err := NewTokenizer(file, src).Tokenize()
	if err != nil {
		return err
	}

	lines := splitLines(tokens)
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if err := p.parseLine(file, line); err != nil {
			return err
		}
	}
	return nil
}

// Finish returns the accumulated document. It does not reset the parser or
// change the current section.
func (p *Parser) Finish() *Document {
	return &Document{
		Rules:           append([]*Rule(nil), p.order...),
		globalStatus:    p.globalStatus,
		hasGlobalStatus: p.hasGlobalStatus,
		globalTags:      p.globalTags,
		globalTagOrder:  p.globalTagOrder,
	}
}

// splitLines groups a flat token stream into per-line slices on TokNewline
// boundaries (§4.B: "each logical line is processed independently"). The
// trailing TokEOF is dropped; a final line with no trailing newline is
// still emitted.
func splitLines(tokens []Token) [][]Token {
	var lines [][]Token
	var cur []Token
	for _, t := range tokens {
		switch t.Type {
		case TokNewline:
			lines = append(lines, cur)
			cur = nil
		case TokEOF:
			if len(cur) > 0 {
				lines = append(lines, cur)
			}
		default:
			cur = append(cur, t)
		}
	}
	return lines
}

func (p *Parser) parseLine(file string, line []Token) error {
	first := line[0]
	lineNo := first.Line

	switch first.Type {
	case TokLBracket:
		return p.parseSectionHeader(file, line)
	case TokIdent, TokWord:
		return p.parseAssignment(file, line)
	default:
		return posErrf(file, lineNo, "unexpected token %s at start of line", first.Type)
	}
}

func (p *Parser) parseSectionHeader(file string, line []Token) error {
	lineNo := line[0].Line
	if line[len(line)-1].Type != TokRBracket {
		return posErrf(file, lineNo, "section header missing closing ']'")
	}
	body := line[1 : len(line)-1]

	idx := 0
	exception := false
	if idx < len(body) && body[idx].Type == TokQuestion {
		exception = true
		idx++
	}
	if idx < len(body) && body[idx].Type == TokDot {
		idx++ // leading '.' is optional and elided
	}

	var parts []string
	expectPart := true
	for idx < len(body) {
		tok := body[idx]
		if expectPart {
			switch tok.Type {
			case TokStar:
				parts = append(parts, "*")
			case TokIdent, TokWord, TokNumber:
				label := tok.Value
				if hasNonASCII(label) {
					encoded, err := idna.ToASCII(label)
					if err != nil {
						return posErrf(file, tok.Line, "invalid internationalized label %q: %v", label, err)
					}
					label = encoded
				}
				parts = append(parts, label)
			default:
				return posErrf(file, tok.Line, "expected a label in section name, got %s", tok.Type)
			}
			expectPart = false
		} else {
			if tok.Type != TokDot {
				return posErrf(file, tok.Line, "expected '.' between labels, got %s", tok.Type)
			}
			expectPart = true
		}
		idx++
	}
	if len(parts) == 0 {
		return posErrf(file, lineNo, "section name has no labels")
	}

	if exception {
		parts[0] = "!" + parts[0]
	}

	rule := NewRule()
	for _, part := range parts {
		segment := part
		marker := ""
		if strings.HasPrefix(segment, "!") {
			marker = "!"
			segment = segment[1:]
		}
		if segment != "*" {
			if err := validateSegment(segment); err != nil {
				return posErrf(file, lineNo, "%s", err)
			}
		}
		rule.segments = append(rule.segments, marker+segment)
	}
	rule.CopyGlobalsFrom(p.globalStatus, p.hasGlobalStatus, p.globalTags, p.globalTagOrder)

	name := rule.Name()
	if _, dup := p.byName[name]; dup {
		return posErrf(file, lineNo, "duplicate rule %q: exactly one rule per distinct segment sequence is allowed", name)
	}

	p.byName[name] = rule
	p.order = append(p.order, rule)
	p.cur = rule
	return nil
}

func (p *Parser) parseAssignment(file string, line []Token) error {
	if len(line) < 3 || line[1].Type != TokEquals {
		return posErrf(file, line[0].Line, "expected 'name = value' assignment")
	}
	name := line[0].Value
	value, err := joinValue(file, line[2:])
	if err != nil {
		return err
	}

	if strings.HasPrefix(name, "tag/") {
		tagName := name[len("tag/"):]
		if strings.Contains(tagName, "/") {
			return posErrf(file, line[0].Line, "tag name %q must not contain another '/'", tagName)
		}
		return p.assignTag(file, line[0].Line, tagName, value)
	}

	switch name {
	case "status":
		status, ok := tld.ParseStatus(value)
		if !ok {
			return posErrf(file, line[0].Line, "invalid status %q", value)
		}
		return p.assignStatus(file, line[0].Line, status)
	case "apply_to":
		return p.assignApplyTo(file, line[0].Line, value)
	default:
		if p.cur == nil {
			return posErrf(file, line[0].Line, "globals may only assign 'status' or 'tag/...', got %q", name)
		}
		return posErrf(file, line[0].Line, "unknown assignment %q", name)
	}
}

func (p *Parser) assignStatus(file string, lineNo int, status tld.Status) error {
	if p.cur == nil {
		p.globalStatus = status
		p.hasGlobalStatus = true
		return nil
	}
	if err := p.cur.SetStatus(status); err != nil {
		return posErrf(file, lineNo, "%s", err)
	}
	return nil
}

func (p *Parser) assignApplyTo(file string, lineNo int, value string) error {
	if p.cur == nil {
		return posErrf(file, lineNo, "apply_to may only be assigned within a section")
	}
	if err := p.cur.SetApplyTo(value); err != nil {
		return posErrf(file, lineNo, "%s", err)
	}
	return nil
}

func (p *Parser) assignTag(file string, lineNo int, tagName, value string) error {
	if p.cur == nil {
		if _, exists := p.globalTags[tagName]; !exists {
			p.globalTagOrder = append(p.globalTagOrder, tagName)
		}
		p.globalTags[tagName] = value
		return nil
	}
	p.cur.AddTag(tagName, value)
	return nil
}

// joinValue reconstructs a value from the tokens following '=': a single
// quoted string or word/identifier/number, or (for values like dotted
// apply_to names) a run of ident/word/number tokens joined by '.'.
func joinValue(file string, tokens []Token) (string, error) {
	if len(tokens) == 1 {
		return tokens[0].Value, nil
	}
	var sb strings.Builder
	for _, t := range tokens {
		switch t.Type {
		case TokDot:
			sb.WriteByte('.')
		case TokIdent, TokWord, TokNumber, TokString:
			sb.WriteString(t.Value)
		default:
			return "", posErrf(file, t.Line, "unexpected token %s in value", t.Type)
		}
	}
	return sb.String(), nil
}

// SortedRules returns every accumulated rule sorted by descending segment
// count, ties broken by inverted name (§4.F.1).
func (p *Parser) SortedRules() []*Rule {
	rules := append([]*Rule(nil), p.order...)
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].segments) != len(rules[j].segments) {
			return len(rules[i].segments) > len(rules[j].segments)
		}
		return rules[i].GetInvertedName() < rules[j].GetInvertedName()
	})
	return rules
}

// Lookup returns a previously parsed rule by dotted name.
func (p *Parser) Lookup(name string) (*Rule, bool) {
	r, ok := p.byName[name]
	return r, ok
}

// Validate checks the cross-rule invariants from §3 that cannot be
// enforced while a single rule is being built: apply_to must reference an
// existing rule and require status=exception; category must be resolvable.
func (p *Parser) Validate() error {
	for _, r := range p.order {
		if target, ok := r.ApplyTo(); ok {
			if r.Status() != tld.StatusException {
				return fmt.Errorf("rule %q sets apply_to but status is %q, not \"exception\"", r.Name(), tld.StatusToString(r.Status()))
			}
			if _, found := p.Lookup(target); !found {
				return fmt.Errorf("rule %q has apply_to %q which does not name an existing rule", r.Name(), target)
			}
		}
		if _, err := r.EffectiveCategory(); err != nil {
			return err
		}
	}
	return nil
}
