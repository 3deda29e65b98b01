package tld

import (
	"bytes"
	"encoding/binary"
)

// newEmbeddedReader builds the tiny built-in rule set used as Load's final
// fallback (§6: "system fallback... final fallback: an embedded copy
// compiled into the library"). It covers a handful of well-known top-level
// labels plus one two-level example (co.uk) so a binary that never ships
// its own compiled rule file still resolves the TLDs most integration
// tests and smoke tests reach for.
//
// This is assembled by hand rather than by calling into package compiler:
// compiler already imports this package for the shared format types, so
// the reverse import would be a cycle. The real rule set is always meant
// to come from a compiled .tld file; this is only ever a safety net.
func newEmbeddedReader() *bytes.Reader {
	return bytes.NewReader(buildEmbeddedFile())
}

func buildEmbeddedFile() []byte {
	// String table, built in first-use order. No superstring compression is
	// applied here - that pass exists to shrink a compiled file with
	// thousands of strings, and isn't worth the complexity for a dozen
	// hand-picked labels.
	strs := []string{"co", "uk", "biz", "com", "info", "net", "org"}
	ids := make(map[string]uint16, len(strs))
	var blob bytes.Buffer
	soff := make([]uint32, len(strs))
	slen := make([]uint16, len(strs))
	for i, s := range strs {
		ids[s] = uint16(i + 1)
		soff[i] = uint32(blob.Len())
		slen[i] = uint16(len(s))
		blob.WriteString(s)
	}

	descs := []DescRecord{
		{Status: StatusValid, TLDStringID: ids["co"], StartOffset: NoOffset, EndOffset: NoOffset},
		{Status: StatusValid, TLDStringID: ids["biz"], StartOffset: NoOffset, EndOffset: NoOffset},
		{Status: StatusValid, TLDStringID: ids["com"], StartOffset: NoOffset, EndOffset: NoOffset},
		{Status: StatusValid, TLDStringID: ids["info"], StartOffset: NoOffset, EndOffset: NoOffset},
		{Status: StatusValid, TLDStringID: ids["net"], StartOffset: NoOffset, EndOffset: NoOffset},
		{Status: StatusValid, TLDStringID: ids["org"], StartOffset: NoOffset, EndOffset: NoOffset},
		{Status: StatusValid, TLDStringID: ids["uk"], StartOffset: 0, EndOffset: 1},
	}

	header := FileHeader{
		VersionMajor:   VersionMajor,
		VersionMinor:   VersionMinor,
		MaxLevel:       2,
		TLDStartOffset: 1,
		TLDEndOffset:   7,
		Created:        0,
	}

	descBuf := make([]byte, len(descs)*DescRecordSize)
	for i, d := range descs {
		d.Encode(descBuf[i*DescRecordSize:])
	}

	soffBuf := make([]byte, len(soff)*4)
	slenBuf := make([]byte, len(slen)*2)
	for i := range soff {
		binary.LittleEndian.PutUint32(soffBuf[i*4:], soff[i])
		binary.LittleEndian.PutUint16(slenBuf[i*2:], slen[i])
	}

	var body bytes.Buffer
	embedWriteChunk(&body, ChunkHEAD, header.Encode())
	embedWriteChunk(&body, ChunkDESC, descBuf)
	embedWriteChunk(&body, ChunkTAGS, make([]byte, 4)) // one unused placeholder entry; no rule here carries tags
	embedWriteChunk(&body, ChunkSOFF, soffBuf)
	embedWriteChunk(&body, ChunkSLEN, slenBuf)
	embedWriteChunk(&body, ChunkSTRS, blob.Bytes())

	var out bytes.Buffer
	out.WriteString(MagicRIFF)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(4+body.Len()))
	out.Write(size[:])
	out.WriteString(MagicTLDS)
	out.Write(body.Bytes())
	return out.Bytes()
}

func embedWriteChunk(buf *bytes.Buffer, id string, payload []byte) {
	buf.WriteString(id)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
	buf.Write(size[:])
	buf.Write(payload)
}