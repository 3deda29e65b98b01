package tld

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// File is an immutable, read-only view over a loaded binary rule file. It
// is safe for concurrent use by any number of lookup goroutines once
// loading has completed (§5 Concurrency & resource model): loading itself
// is not thread-safe and callers must serialize it against lookups.
type File struct {
	header FileHeader
	descs  []DescRecord
	tags   []uint32
	soff   []uint32
	slen   []uint16
	strs   []byte
}

// current is the process-wide "currently loaded rules" slot. The contract
// from §5/§9: init (Load/LoadReader/FreeLoaded) is not thread-safe and must
// complete before any lookup goroutine starts; once stored, a *File is
// never mutated, so GetLoaded/lookups are lock-free.
var current atomic.Pointer[File]

// defaultPaths are tried, in order, by Load when path is empty, before
// falling back to the embedded copy (§6 Binary rule file).
var defaultPaths = []string{
	"/var/lib/libtld/tlds.tld",
	"/usr/share/libtld/tlds.tld",
}

// Load reads a binary rule file from path (or, if path is empty, from the
// default system locations) and makes it the process-wide loaded rule set.
// When allowFallback is true and no on-disk file could be read, the copy
// embedded in the library (see embed.go) is used instead. Load is not
// thread-safe; see File's doc comment.
func Load(path string, allowFallback bool) (Result, error) {
	paths := defaultPaths
	if path != "" {
		paths = []string{path}
	}

	var lastErr error
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			lastErr = err
			continue
		}
		result, loadErr := LoadReader(f)
		closeErr := f.Close()
		if loadErr == nil && closeErr == nil {
			return result, nil
		}
		if loadErr != nil {
			lastErr = loadErr
		} else {
			lastErr = closeErr
		}
	}

	if allowFallback {
		return LoadReader(newEmbeddedReader())
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no rule file path available")
	}
	return CannotOpenFile, errOf(CannotOpenFile, lastErr.Error())
}

// LoadIfAbsent calls Load only if no rule set is currently loaded. This
// helper exists for lazy first-use; like Load, it is itself racy and
// assumes the caller serializes concurrent first-use attempts externally.
func LoadIfAbsent(path string, allowFallback bool) (Result, error) {
	if GetLoaded() != nil {
		return Success, nil
	}
	return Load(path, allowFallback)
}

// LoadReader parses a binary rule file from r and makes it the
// process-wide loaded rule set.
func LoadReader(r io.Reader) (Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return CannotReadFile, errOf(CannotReadFile, err.Error())
	}

	f, loadErr := parseFile(data)
	if loadErr != nil {
		return loadErr.Result, loadErr
	}

	current.Store(f)
	return Success, nil
}

// FreeLoaded discards the process-wide loaded rule set: later lookups see
// no loaded file. A *File obtained earlier from GetLoaded, and an Enumerator
// created before the call, keep their own reference to the old file and
// remain usable; strings already returned from it are independent copies.
func FreeLoaded() {
	current.Store(nil)
}

// GetLoaded returns the process-wide loaded rule set, or nil if none has
// been loaded yet.
func GetLoaded() *File {
	return current.Load()
}

// parseFile validates and decodes a full in-memory rule file.
func parseFile(data []byte) (*File, *LoadError) {
	if len(data) > MaxFileSize {
		return nil, errOf(InvalidFileSize, "file exceeds 1 MiB cap")
	}
	if len(data) < 12 {
		return nil, errOf(InvalidFileSize, "file smaller than container header")
	}
	if string(data[0:4]) != MagicRIFF {
		return nil, errOf(UnrecognizedFile, "missing RIFF magic")
	}

	declared := binary.LittleEndian.Uint32(data[4:8])
	if uint64(declared)+8 != uint64(len(data)) {
		return nil, errOf(InvalidFileSize, "declared size does not match file length")
	}

	if string(data[8:12]) != MagicTLDS {
		return nil, errOf(UnrecognizedFile, "missing TLDS type tag")
	}

	seen := map[string][]byte{}
	pos := 12
	for pos < len(data) {
		if len(data)-pos < ChunkHeaderSize {
			return nil, errOf(InvalidHunkSize, "truncated chunk header")
		}
		id := string(data[pos : pos+4])
		size := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
		pos += ChunkHeaderSize

		if uint64(pos)+uint64(size) > uint64(len(data)) {
			return nil, errOf(InvalidHunkSize, fmt.Sprintf("chunk %q overruns container", id))
		}

		payload := data[pos : pos+int(size)]
		pos += int(size)

		switch id {
		case ChunkHEAD, ChunkDESC, ChunkTAGS, ChunkSOFF, ChunkSLEN, ChunkSTRS:
			if _, dup := seen[id]; dup {
				return nil, errOf(HunkFoundTwice, id)
			}
			seen[id] = payload
		default:
			// unknown chunk: skip silently
		}
	}

	for _, id := range []string{ChunkHEAD, ChunkDESC, ChunkTAGS, ChunkSOFF, ChunkSLEN, ChunkSTRS} {
		if _, ok := seen[id]; !ok {
			return nil, errOf(MissingHunk, id)
		}
	}

	headPayload := seen[ChunkHEAD]
	if len(headPayload) != HeaderSize {
		return nil, errOf(InvalidStructureSize, ChunkHEAD)
	}
	header := DecodeHeader(headPayload)
	if header.VersionMajor != VersionMajor || header.VersionMinor != VersionMinor {
		return nil, errOf(UnsupportedVersion, fmt.Sprintf("%d.%d", header.VersionMajor, header.VersionMinor))
	}

	descPayload := seen[ChunkDESC]
	if len(descPayload) == 0 || len(descPayload)%DescRecordSize != 0 {
		return nil, errOf(InvalidArraySize, ChunkDESC)
	}
	descs := make([]DescRecord, len(descPayload)/DescRecordSize)
	for i := range descs {
		descs[i] = DecodeDescRecord(descPayload[i*DescRecordSize:])
	}

	tagsPayload := seen[ChunkTAGS]
	if len(tagsPayload) == 0 || len(tagsPayload)%4 != 0 {
		return nil, errOf(InvalidArraySize, ChunkTAGS)
	}
	tags := make([]uint32, len(tagsPayload)/4)
	for i := range tags {
		tags[i] = binary.LittleEndian.Uint32(tagsPayload[i*4:])
	}

	soffPayload := seen[ChunkSOFF]
	if len(soffPayload) == 0 || len(soffPayload)%4 != 0 {
		return nil, errOf(InvalidArraySize, ChunkSOFF)
	}
	soff := make([]uint32, len(soffPayload)/4)
	for i := range soff {
		soff[i] = binary.LittleEndian.Uint32(soffPayload[i*4:])
	}

	slenPayload := seen[ChunkSLEN]
	if len(slenPayload) == 0 || len(slenPayload)%2 != 0 {
		return nil, errOf(InvalidArraySize, ChunkSLEN)
	}
	slen := make([]uint16, len(slenPayload)/2)
	for i := range slen {
		slen[i] = binary.LittleEndian.Uint16(slenPayload[i*2:])
	}

	if len(soff) != len(slen) {
		return nil, errOf(InvalidArraySize, "SOFF/SLEN length mismatch")
	}

	strs := append([]byte(nil), seen[ChunkSTRS]...)

	return &File{
		header: header,
		descs:  descs,
		tags:   tags,
		soff:   soff,
		slen:   slen,
		strs:   strs,
	}, nil
}

// string looks up string id in the string table, bounds-checking the
// (offset, length) span against the blob.
func (f *File) string(id uint16) (string, error) {
	if f == nil {
		return "", errOf(InvalidPointer, "nil file")
	}
	if id == StringIDNull {
		return "", nil
	}
	idx := int(id) - 1
	if idx < 0 || idx >= len(f.soff) {
		return "", fmt.Errorf("string id %d out of range", id)
	}
	off := int(f.soff[idx])
	ln := int(f.slen[idx])
	if off < 0 || ln < 0 || off+ln > len(f.strs) {
		return "", fmt.Errorf("string id %d span out of bounds", id)
	}
	return string(f.strs[off : off+ln]), nil
}

// desc returns the description record at index i.
func (f *File) desc(i uint16) (DescRecord, error) {
	if f == nil {
		return DescRecord{}, errOf(InvalidPointer, "nil file")
	}
	if int(i) >= len(f.descs) {
		return DescRecord{}, fmt.Errorf("description index %d out of range", i)
	}
	return f.descs[i], nil
}

// tagPair returns the (name, value) string IDs for the n-th tag of a
// description whose tags span is [offset, offset+count). Per §4.E the
// merged tag array is addressed in u32 units, so offset need not be even:
// a rule's pairs may straddle two merged sequences. That is legal here
// because tagPair always derives both units directly from 2*n.
func (f *File) tagPair(offset, count, n uint16) (nameID, valueID uint16, err error) {
	if int(n) >= int(count) {
		return 0, 0, fmt.Errorf("tag index %d out of range (count %d)", n, count)
	}
	base := int(offset) + 2*int(n)
	if base+1 >= len(f.tags) {
		return 0, 0, fmt.Errorf("tag offset %d out of range", base)
	}
	return uint16(f.tags[base]), uint16(f.tags[base+1]), nil
}