package compiler

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	"github.com/globalsign/tldrules/tld"
)

// Emit assigns every rule a dense DESC index, builds the shared string and
// tag tables, and serializes the whole tree into the chunked binary format
// described in tld/format.go (§4.F).
func Emit(rules []*Rule) ([]byte, error) {
	bin, _, err := EmitWithOffsets(rules)
	return bin, err
}

// DescInfo is a rule's emitted DESC record, reported back by name for
// tooling that wants to show where a rule landed in the binary layout
// (cmd/tldc's --include-offsets flag).
type DescInfo struct {
	Index       uint16
	StartOffset uint16
	EndOffset   uint16
	TLDStringID uint16
}

// EmitWithOffsets is Emit plus each rule's assigned DESC record, keyed by
// dotted name, for callers that want to report where a rule ended up in
// the compiled file (cmd/tldc's --include-offsets flag).
func EmitWithOffsets(rules []*Rule) ([]byte, map[string]DescInfo, error) {
	e := &emitter{
		interner: NewInterner(),
		byName:   make(map[string]*Rule, len(rules)),
	}
	for _, r := range rules {
		e.byName[r.Name()] = r
	}

	order, err := e.planOrder(rules)
	if err != nil {
		return nil, nil, err
	}
	e.order = order
	e.indexOf = make(map[*Rule]uint16, len(order))
	for i, r := range order {
		e.indexOf[r] = uint16(i)
	}

	if err := e.computeChildRanges(); err != nil {
		return nil, nil, err
	}

	descs, err := e.buildDescs()
	if err != nil {
		return nil, nil, err
	}

	maxLevel := 0
	for _, r := range order {
		if n := len(r.Segments()); n > maxLevel {
			maxLevel = n
		}
	}
	if maxLevel > 255 {
		return nil, nil, fmt.Errorf("deepest rule has %d levels, which does not fit a byte", maxLevel)
	}

	strCompressed := e.interner.Compress()

	header := tld.FileHeader{
		VersionMajor:   tld.VersionMajor,
		VersionMinor:   tld.VersionMinor,
		MaxLevel:       uint8(maxLevel),
		TLDStartOffset: e.topStart,
		TLDEndOffset:   e.topEnd,
		Created:        uint64(time.Now().Unix()),
	}

	bin, err := buildContainer(header, descs, e.tagMerged, strCompressed)
	if err != nil {
		return nil, nil, err
	}

	offsets := make(map[string]DescInfo, len(order))
	for i, r := range order {
		offsets[r.Name()] = DescInfo{
			Index:       uint16(i),
			StartOffset: descs[i].StartOffset,
			EndOffset:   descs[i].EndOffset,
			TLDStringID: descs[i].TLDStringID,
		}
	}
	return bin, offsets, nil
}

type emitter struct {
	byName  map[string]*Rule
	order   []*Rule
	indexOf map[*Rule]uint16

	childStart map[*Rule]uint16
	childEnd   map[*Rule]uint16
	topStart   uint16
	topEnd     uint16

	interner  *Interner
	tagMerged []uint32
}

// planOrder lays out every rule deepest-level first, leaves before their
// parents (§4.F.1). Within one level, rules are grouped by parent (so each
// parent's children land in one contiguous run) and, within a parent's
// group, ordered by SortKey ascending - the plain, marker-free label order
// the lookup engine's binary search and wildcard-first check depend on
// (§4.H). Parent groups at the same level are themselves ordered by the
// parent's own dotted name, purely for reproducibility (§9 idempotence).
func (e *emitter) planOrder(rules []*Rule) ([]*Rule, error) {
	byDepth := make(map[int][]*Rule)
	maxDepth := 0
	for _, r := range rules {
		d := len(r.Segments())
		byDepth[d] = append(byDepth[d], r)
		if d > maxDepth {
			maxDepth = d
		}
	}

	var out []*Rule
	for depth := maxDepth; depth >= 1; depth-- {
		level := byDepth[depth]
		if len(level) == 0 {
			continue
		}

		groups := make(map[string][]*Rule) // parent dotted name ("" for top level) -> children
		var parentNames []string
		for _, r := range level {
			parentName, hasParent := r.ParentName()
			if hasParent {
				if _, found := e.byName[parentName]; !found {
					return nil, fmt.Errorf("rule %q has no declared parent rule %q", r.Name(), parentName)
				}
			}
			key := parentName
			if _, seen := groups[key]; !seen {
				parentNames = append(parentNames, key)
			}
			groups[key] = append(groups[key], r)
		}

		sort.Strings(parentNames)
		for _, pn := range parentNames {
			children := groups[pn]
			sort.Slice(children, func(i, j int) bool {
				return children[i].SortKey() < children[j].SortKey()
			})
			out = append(out, children...)
		}
	}
	return out, nil
}

// computeChildRanges finds, for every rule that has children in the plan,
// the contiguous [start, end) index range those children occupy, plus the
// single contiguous range the top-level rules occupy.
func (e *emitter) computeChildRanges() error {
	e.childStart = make(map[*Rule]uint16)
	e.childEnd = make(map[*Rule]uint16)

	type span struct{ min, max uint16 }
	parentSpan := make(map[*Rule]span)
	var topMin, topMax uint16
	haveTop := false

	for i, r := range e.order {
		idx := uint16(i)
		parentName, hasParent := r.ParentName()
		if !hasParent {
			if !haveTop {
				topMin, topMax, haveTop = idx, idx+1, true
			} else {
				if idx < topMin {
					topMin = idx
				}
				if idx+1 > topMax {
					topMax = idx + 1
				}
			}
			continue
		}
		parent := e.byName[parentName]
		sp, ok := parentSpan[parent]
		if !ok {
			parentSpan[parent] = span{idx, idx + 1}
			continue
		}
		if idx < sp.min {
			sp.min = idx
		}
		if idx+1 > sp.max {
			sp.max = idx + 1
		}
		parentSpan[parent] = sp
	}

	for parent, sp := range parentSpan {
		if sp.max-sp.min != uint16(len(e.childrenOf(parent))) {
			return fmt.Errorf("children of %q are not contiguous in emission order (internal planOrder bug)", parent.Name())
		}
		e.childStart[parent] = sp.min
		e.childEnd[parent] = sp.max
	}
	if haveTop {
		e.topStart, e.topEnd = topMin, topMax
	}
	return nil
}

func (e *emitter) childrenOf(parent *Rule) []*Rule {
	var out []*Rule
	parentName := parent.Name()
	for _, r := range e.order {
		if pn, ok := r.ParentName(); ok && pn == parentName {
			out = append(out, r)
		}
	}
	return out
}

// buildDescs builds one DescRecord per rule in emission order, resolving
// apply_to targets and flattening tags through the shared tag table.
func (e *emitter) buildDescs() ([]tld.DescRecord, error) {
	seqs := make([]TagSequence, len(e.order))
	for i, r := range e.order {
		seq := make(TagSequence, 0, 2*len(r.Tags()))
		for _, name := range r.Tags() {
			seq = append(seq, uint32(e.interner.Intern(name)), uint32(e.interner.Intern(r.TagValue(name))))
		}
		seqs[i] = seq
	}
	merged, offsets, counts := CompressTags(seqs)
	e.tagMerged = merged

	descs := make([]tld.DescRecord, len(e.order))
	for i, r := range e.order {
		d := tld.DescRecord{
			Status:      r.Status(),
			TLDStringID: e.interner.Intern(r.PlainLabel()),
			StartOffset: tld.NoOffset,
			EndOffset:   tld.NoOffset,
			TagsOffset:  offsets[i],
			TagsCount:   counts[i],
		}
		if start, ok := e.childStart[r]; ok {
			d.StartOffset = start
			d.EndOffset = e.childEnd[r]
		}

		if r.Status() == tld.StatusException {
			target, ok := r.ApplyTo()
			if !ok {
				return nil, fmt.Errorf("rule %q has status exception but no apply_to", r.Name())
			}
			targetRule, found := e.byName[target]
			if !found {
				return nil, fmt.Errorf("rule %q apply_to target %q not found", r.Name(), target)
			}
			targetIdx, found := e.indexOf[targetRule]
			if !found {
				return nil, fmt.Errorf("rule %q apply_to target %q was not assigned an index", r.Name(), target)
			}
			// exception_level records the apply_to target's own segment
			// depth, not the exception rule's: lookup needs "how many
			// labels of the matched prefix belong to the target", read
			// from the exception record before p jumps to the target
			// (§4.F.3, resolved against the worked *.ck/!www.ck example
			// in §8 - see DESIGN.md).
			d.ExceptionApplyTo = targetIdx
			d.ExceptionLevel = uint8(len(targetRule.Segments()))
		}

		descs[i] = d
	}
	return descs, nil
}

func buildContainer(header tld.FileHeader, descs []tld.DescRecord, tags []uint32, strs CompressedStrings) ([]byte, error) {
	descBuf := make([]byte, len(descs)*tld.DescRecordSize)
	for i, d := range descs {
		d.Encode(descBuf[i*tld.DescRecordSize:])
	}

	tagsBuf := make([]byte, len(tags)*4)
	for i, v := range tags {
		binary.LittleEndian.PutUint32(tagsBuf[i*4:], v)
	}

	soffBuf := make([]byte, len(strs.Spans)*4)
	slenBuf := make([]byte, len(strs.Spans)*2)
	for i, sp := range strs.Spans {
		binary.LittleEndian.PutUint32(soffBuf[i*4:], sp.offset)
		binary.LittleEndian.PutUint16(slenBuf[i*2:], sp.length)
	}

	var body bytes.Buffer
	writeChunk(&body, tld.ChunkHEAD, header.Encode())
	writeChunk(&body, tld.ChunkDESC, descBuf)
	writeChunk(&body, tld.ChunkTAGS, tagsBuf)
	writeChunk(&body, tld.ChunkSOFF, soffBuf)
	writeChunk(&body, tld.ChunkSLEN, slenBuf)
	writeChunk(&body, tld.ChunkSTRS, strs.Blob)

	var out bytes.Buffer
	out.WriteString(tld.MagicRIFF)
	var sizeField [4]byte
	binary.LittleEndian.PutUint32(sizeField[:], uint32(4+body.Len())) // "TLDS" + chunks
	out.Write(sizeField[:])
	out.WriteString(tld.MagicTLDS)
	out.Write(body.Bytes())

	if out.Len() > tld.MaxFileSize {
		return nil, fmt.Errorf("emitted file is %d bytes, over the %d byte cap", out.Len(), tld.MaxFileSize)
	}
	return out.Bytes(), nil
}

func writeChunk(buf *bytes.Buffer, id string, payload []byte) {
	buf.WriteString(id)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
	buf.Write(size[:])
	buf.Write(payload)
}