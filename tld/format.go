package tld

import "encoding/binary"

// The binary rule file is a little-endian, RIFF-style chunked container.
// Every multi-byte field in every chunk below is little-endian. Chunks may
// appear in any order; an unrecognized chunk ID is skipped rather than
// rejected, so the format can grow without breaking old readers. This file
// is the one shared description of that layout: package tld's loader and
// package compiler's emitter both import these types rather than each
// keeping their own copy.
//
//	RIFF <u32 total size> TLDS
//	    HEAD <u32 size> ...
//	    DESC <u32 size> ...
//	    TAGS <u32 size> ...
//	    SOFF <u32 size> ...
//	    SLEN <u32 size> ...
//	    STRS <u32 size> ...

const (
	MagicRIFF = "RIFF"
	MagicTLDS = "TLDS"

	ChunkHEAD = "HEAD"
	ChunkDESC = "DESC"
	ChunkTAGS = "TAGS"
	ChunkSOFF = "SOFF"
	ChunkSLEN = "SLEN"
	ChunkSTRS = "STRS"
)

// MaxFileSize bounds how large a rule file the loader will accept, so a
// corrupt or hostile size field can never force an unbounded allocation.
const MaxFileSize = 1 << 20 // 1 MiB

// ChunkHeaderSize is len(id) + len(size).
const ChunkHeaderSize = 8

// VersionMajor/VersionMinor are the only (major, minor) pair this build of
// the loader accepts; bump alongside any incompatible change to the chunk
// layout below.
const (
	VersionMajor = 1
	VersionMinor = 0
)

// HeaderSize is the exact byte size of the HEAD chunk payload.
const HeaderSize = 16

// FileHeader mirrors the HEAD chunk. The reserved byte keeps the struct's
// wire size stable (and 8-byte aligned) if a future minor version adds a
// field.
type FileHeader struct {
	VersionMajor   uint8
	VersionMinor   uint8
	MaxLevel       uint8
	_reserved      uint8
	TLDStartOffset uint16
	TLDEndOffset   uint16
	Created        uint64
}

func (h FileHeader) Encode() []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.VersionMajor
	buf[1] = h.VersionMinor
	buf[2] = h.MaxLevel
	buf[3] = 0
	binary.LittleEndian.PutUint16(buf[4:], h.TLDStartOffset)
	binary.LittleEndian.PutUint16(buf[6:], h.TLDEndOffset)
	binary.LittleEndian.PutUint64(buf[8:], h.Created)
	return buf
}

func DecodeHeader(b []byte) FileHeader {
	return FileHeader{
		VersionMajor:   b[0],
		VersionMinor:   b[1],
		MaxLevel:       b[2],
		TLDStartOffset: binary.LittleEndian.Uint16(b[4:]),
		TLDEndOffset:   binary.LittleEndian.Uint16(b[6:]),
		Created:        binary.LittleEndian.Uint64(b[8:]),
	}
}

// DescRecordSize is the exact byte size of one DESC array element.
const DescRecordSize = 16

// NoOffset is the sentinel USHRT_MAX value marking "this rule is a leaf"
// (StartOffset and EndOffset). A non-exception rule's ExceptionApplyTo is 0.
const NoOffset uint16 = 0xFFFF

// DescRecord mirrors one element of the DESC chunk array.
type DescRecord struct {
	Status           Status
	ExceptionLevel   uint8
	ExceptionApplyTo uint16
	StartOffset      uint16
	EndOffset        uint16
	TLDStringID      uint16
	TagsOffset       uint16
	TagsCount        uint16
}

func (d DescRecord) Encode(buf []byte) {
	buf[0] = byte(d.Status)
	buf[1] = d.ExceptionLevel
	binary.LittleEndian.PutUint16(buf[2:], d.ExceptionApplyTo)
	binary.LittleEndian.PutUint16(buf[4:], d.StartOffset)
	binary.LittleEndian.PutUint16(buf[6:], d.EndOffset)
	binary.LittleEndian.PutUint16(buf[8:], d.TLDStringID)
	binary.LittleEndian.PutUint16(buf[10:], d.TagsOffset)
	binary.LittleEndian.PutUint16(buf[12:], d.TagsCount)
}

func DecodeDescRecord(b []byte) DescRecord {
	return DescRecord{
		Status:           Status(b[0]),
		ExceptionLevel:   b[1],
		ExceptionApplyTo: binary.LittleEndian.Uint16(b[2:]),
		StartOffset:      binary.LittleEndian.Uint16(b[4:]),
		EndOffset:        binary.LittleEndian.Uint16(b[6:]),
		TLDStringID:      binary.LittleEndian.Uint16(b[8:]),
		TagsOffset:       binary.LittleEndian.Uint16(b[10:]),
		TagsCount:        binary.LittleEndian.Uint16(b[12:]),
	}
}

// StringIDNull is the reserved "absent string" ID; real string IDs start at 1.
const StringIDNull uint16 = 0