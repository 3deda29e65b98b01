package tld

import "strings"

// EnumEntry is one rule surfaced by an Enumerator, with its dotted name
// fully reconstructed by parent traversal (§4.I).
type EnumEntry struct {
	Name     string // leading '.', e.g. ".co.uk"
	Status   Status
	Category string
	Country  string
	Tags     []TagPair
}

type enumFrame struct {
	idx, end uint16
}

// Enumerator walks every rule in the loaded file depth-first. It carries
// only a small, restartable amount of state: a stack of (index, end)
// frames (one per depth level currently being walked) and the chain of
// ancestor labels needed to reconstruct each entry's full dotted name.
type Enumerator struct {
	f     *File
	stack []enumFrame
	path  []string
}

// NewEnumerator starts a fresh walk over the process-wide loaded rule set.
func NewEnumerator() *Enumerator {
	f := GetLoaded()
	if f == nil {
		return &Enumerator{}
	}
	return &Enumerator{
		f:     f,
		stack: []enumFrame{{idx: f.header.TLDStartOffset, end: f.header.TLDEndOffset}},
	}
}

// Reset rewinds the enumerator to the beginning, as if newly constructed
// (§4.I: "the iterator is restartable by zeroing its state").
func (e *Enumerator) Reset() {
	*e = *NewEnumerator()
}

// Next emits the next rule in depth-first order, or NotFound once the
// top-level depth's index reaches the loaded file's TLD end offset.
func (e *Enumerator) Next() (Result, EnumEntry) {
	if e.f == nil || len(e.stack) == 0 {
		return NotFound, EnumEntry{}
	}

	for {
		top := len(e.stack) - 1
		frame := e.stack[top]
		if frame.idx >= frame.end {
			if top == 0 {
				return NotFound, EnumEntry{}
			}
			e.stack = e.stack[:top]
			e.path = e.path[:len(e.path)-1]
			e.stack[len(e.stack)-1].idx++
			continue
		}

		d, err := e.f.desc(frame.idx)
		if err != nil {
			return NotFound, EnumEntry{}
		}
		rawLabel, err := e.f.string(d.TLDStringID)
		if err != nil {
			return NotFound, EnumEntry{}
		}
		label := decodePercentEscapes(rawLabel)

		// e.path holds ancestors top-of-tree first (it is extended on the
		// way down from the root); the conventional dotted name is
		// leaf-first, like Rule.Name() ("co.uk", not "uk.co"), so it is
		// rebuilt here in reverse.
		segs := make([]string, 0, len(e.path)+1)
		segs = append(segs, label)
		for i := len(e.path) - 1; i >= 0; i-- {
			segs = append(segs, e.path[i])
		}
		fullName := "." + strings.Join(segs, ".")
		entry := EnumEntry{Name: fullName, Status: d.Status}
		if tags, terr := e.f.readTags(d); terr == nil {
			entry.Tags = tags
			for _, t := range tags {
				switch t.Name {
				case "category":
					entry.Category = t.Value
				case "country":
					entry.Country = t.Value
				}
			}
		}

		if d.StartOffset != NoOffset {
			e.path = append(e.path, label)
			e.stack = append(e.stack, enumFrame{idx: d.StartOffset, end: d.EndOffset})
		} else {
			e.stack[top].idx++
		}
		return Success, entry
	}
}

// decodePercentEscapes inlines %HH escapes as the raw byte they encode,
// the one place the runtime decodes a rule's stored form (§4.I).
func decodePercentEscapes(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '%' && i+2 < len(s) && isHexByte(s[i+1]) && isHexByte(s[i+2]) {
			sb.WriteByte(hexByteValue(s[i+1])<<4 | hexByteValue(s[i+2]))
			i += 3
			continue
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

func isHexByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexByteValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}