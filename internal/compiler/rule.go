package compiler

import (
	"fmt"
	"strings"

	"github.com/globalsign/tldrules/tld"
)

// Rule is the in-memory, incrementally-built representation of one TLD
// definition (§4.A). Segments are stored in the same order they are
// written in a rule source section header, i.e. leaf first and
// top-of-tree last (e.g. []string{"co", "uk"} for "co.uk", and
// []string{"*", "ck"} for the wildcard "*.ck"). This is what makes "the
// rule's first segment" - the leaf - the one to test for the leading '*'
// wildcard marker or the leading '!' exception marker (§3).
type Rule struct {
	segments  []string
	sealed    bool
	status    tld.Status
	hasStatus bool
	applyTo   string
	hasApply  bool
	tagOrder  []string
	tags      map[string]string
}

// NewRule creates an empty, unsealed rule.
func NewRule() *Rule {
	return &Rule{status: tld.StatusUndefined, tags: make(map[string]string)}
}

// AddSegment appends one label after validating its character class and
// dash rule. It is an error to add a segment to a sealed rule.
func (r *Rule) AddSegment(s string) error {
	if r.sealed {
		return fmt.Errorf("rule is sealed: cannot add segment %q", s)
	}
	if err := validateSegment(s); err != nil {
		return err
	}
	r.segments = append(r.segments, s)
	return nil
}

// Seal raises the "TLD set" flag, refusing any further AddSegment calls.
// The parser builds section names without AddSegment and does not call Seal.
func (r *Rule) Seal() {
	r.sealed = true
}

// SetStatus records the rule's status. It fails if called twice.
func (r *Rule) SetStatus(status tld.Status) error {
	if r.hasStatus {
		return fmt.Errorf("status already assigned for %q", r.Name())
	}
	r.status = status
	r.hasStatus = true
	return nil
}

// Status returns the rule's status, or StatusUndefined if never assigned.
func (r *Rule) Status() tld.Status { return r.status }

// HasStatus reports whether SetStatus was ever called.
func (r *Rule) HasStatus() bool { return r.hasStatus }

// SetApplyTo records the exception's target rule name. It fails if called
// twice.
func (r *Rule) SetApplyTo(name string) error {
	if r.hasApply {
		return fmt.Errorf("apply_to already assigned for %q", r.Name())
	}
	r.applyTo = strings.TrimPrefix(name, ".")
	r.hasApply = true
	return nil
}

// ApplyTo returns the exception's target rule name, and whether one was set.
func (r *Rule) ApplyTo() (string, bool) { return r.applyTo, r.hasApply }

// AddTag sets name to value, overwriting any previous value (later wins).
func (r *Rule) AddTag(name, value string) {
	if _, exists := r.tags[name]; !exists {
		r.tagOrder = append(r.tagOrder, name)
	}
	r.tags[name] = value
}

// Tag returns the value of tag name and whether it was set.
func (r *Rule) Tag(name string) (string, bool) {
	v, ok := r.tags[name]
	return v, ok
}

// Tags returns the rule's tags in assignment order.
func (r *Rule) Tags() []string {
	return r.tagOrder
}

// TagValue returns the value for a tag previously added, panicking is never
// done: callers should check Tag for presence.
func (r *Rule) TagValue(name string) string {
	return r.tags[name]
}

// CopyGlobalsFrom copies name/value pairs currently in scope (globals) into
// r, per §4.C: "After the header, global variables/tags currently in scope
// are copied into the new rule." Any status or tag already on r is
// overwritten; the parser calls this right after the header, before any
// per-rule assignment, and a later per-rule assignment replaces the copy.
func (r *Rule) CopyGlobalsFrom(globalStatus tld.Status, hasGlobalStatus bool, globalTags map[string]string, order []string) {
	if hasGlobalStatus {
		r.status = globalStatus
		r.hasStatus = false // reset "set" flag: a per-rule assignment may still overwrite this copied value
	}
	for _, name := range order {
		r.AddTag(name, globalTags[name])
	}
	// Tag "set" tracking is inherent to the map; nothing else to reset here
	// because AddTag already allows overwriting.
}

// Segments returns the rule's segment list, leaf first.
func (r *Rule) Segments() []string { return append([]string(nil), r.segments...) }

// Name returns the conventional dotted name (e.g. "co.uk" for segments
// ["co", "uk"]).
func (r *Rule) Name() string {
	return strings.Join(r.segments, ".")
}

// IsWildcard reports whether the rule's first segment is "*".
func (r *Rule) IsWildcard() bool {
	return len(r.segments) > 0 && r.segments[0] == "*"
}

// IsException reports whether the rule's first segment begins with "!".
func (r *Rule) IsException() bool {
	return len(r.segments) > 0 && strings.HasPrefix(r.segments[0], "!")
}

// SortKey is like GetInvertedName but strips each segment's leading '!'
// exception marker before joining, so it reflects the plain label text the
// binary emitter actually stores and the lookup engine actually compares
// against (§4.H's byte-for-byte comparison operates on the marker-free
// label). Using GetInvertedName's raw, marker-including segments to order
// siblings can place an exception ahead of a wildcard within the same
// parent's child range ('!' sorts below '*' in ASCII) even though the
// stored, marker-free keys ('*' alone sorts below any letter) sort the
// other way - which would break the "wildcard is always the range's first
// entry" invariant §4.H depends on. SortKey is what the emitter uses to
// order a parent's children; GetInvertedName remains as specified for
// wherever a deterministic full-path key is needed without that
// constraint.
func (r *Rule) SortKey() string {
	rev := make([]string, len(r.segments))
	for i, s := range r.segments {
		rev[len(r.segments)-1-i] = strings.TrimPrefix(s, "!")
	}
	return strings.Join(rev, "!")
}

// PlainLabel returns the rule's own leaf label with any leading '!'
// exception marker removed - the text actually stored as tld_string_id.
func (r *Rule) PlainLabel() string {
	if len(r.segments) == 0 {
		return ""
	}
	return strings.TrimPrefix(r.segments[0], "!")
}

// ParentName returns the dotted name of the rule one level up the tree
// (the remaining segments once this rule's own leaf label is dropped),
// and false for a top-level (single-segment) rule.
func (r *Rule) ParentName() (string, bool) {
	if len(r.segments) <= 1 {
		return "", false
	}
	return strings.Join(r.segments[1:], "."), true
}

// GetInvertedName reverses the segment order (leaf-first storage becomes
// top-of-tree-first) and joins with "!", a separator that sorts below any
// valid segment character. The result is a sort key under which a parent
// rule's key is always a strict prefix of (and therefore sorts before) any
// of its children's keys - "parent-first" alphabetic order (§4.A).
func (r *Rule) GetInvertedName() string {
	rev := make([]string, len(r.segments))
	for i, s := range r.segments {
		rev[len(r.segments)-1-i] = s
	}
	return strings.Join(rev, "!")
}

// EffectiveCategory resolves the "category" tag per §3's default rule:
// it defaults to "country" when a "country" tag exists; otherwise the rule
// must state a category explicitly.
func (r *Rule) EffectiveCategory() (string, error) {
	if cat, ok := r.tags["category"]; ok {
		return cat, nil
	}
	if _, ok := r.tags["country"]; ok {
		return "country", nil
	}
	return "", fmt.Errorf("rule %q has no category and no country tag", r.Name())
}

// validateSegment enforces §3's character-class and dash rules for a
// single label (the leading '*' / '!' markers are handled by the parser
// before the remaining characters reach this check).
func validateSegment(s string) error {
	if s == "" {
		return fmt.Errorf("empty segment")
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return fmt.Errorf("segment %q may not begin or end with '-'", s)
	}
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '%':
			if i+2 >= len(s) || !isHexByte(s[i+1]) || !isHexByte(s[i+2]) {
				return fmt.Errorf("segment %q has a malformed %%HH escape", s)
			}
			i += 3
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-':
			i++
		default:
			return fmt.Errorf("segment %q contains invalid character %q", s, c)
		}
	}
	return nil
}

func isHexByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// hasNonASCII reports whether s contains a raw (not percent-escaped)
// non-ASCII byte, e.g. a UTF-8 encoded internationalized label typed
// directly into a rule source file.
func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return true
		}
	}
	return false
}
