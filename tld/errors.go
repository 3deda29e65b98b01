package tld

import "fmt"

// Result is the outcome of a lookup or a file-load operation. It is a closed
// enumeration: callers switch on it rather than compare error strings.
type Result int

const (
	// Success indicates a well-formed input whose public suffix is a
	// currently valid, registrable TLD.
	Success Result = iota
	// Invalid indicates a well-formed input matching a known rule whose
	// status is not "valid" (deprecated, unused, reserved, proposed,
	// infrastructure, or example). info.Status carries the actual status.
	Invalid
	// Null indicates empty or absent input.
	Null
	// NoTLD indicates the input has no period at all.
	NoTLD
	// BadURI indicates malformed input: adjacent periods, forbidden
	// characters, or another structural violation.
	BadURI
	// NotFound indicates the input's top-level label does not occur in the
	// loaded rule set.
	NotFound

	// UnrecognizedFile indicates the magic or type tag did not match.
	UnrecognizedFile
	// InvalidFileSize indicates the declared size was below the minimum
	// header size or above the 1 MiB cap.
	InvalidFileSize
	// InvalidHunkSize indicates a chunk's declared size did not fit in the
	// remaining container.
	InvalidHunkSize
	// InvalidStructureSize indicates the HEAD chunk size was not exactly
	// HeaderSize bytes.
	InvalidStructureSize
	// InvalidArraySize indicates an array chunk's size was zero or not a
	// multiple of its record size.
	InvalidArraySize
	// UnsupportedVersion indicates the file's major.minor did not match a
	// version this loader supports.
	UnsupportedVersion
	// HunkFoundTwice indicates the same chunk ID appeared more than once.
	HunkFoundTwice
	// MissingHunk indicates one of HEAD/DESC/TAGS/SOFF/SLEN/STRS was never
	// seen by the time the container was exhausted.
	MissingHunk
	// CannotOpenFile indicates the OS failed to open the named file.
	CannotOpenFile
	// CannotReadFile indicates a read error while streaming the file.
	CannotReadFile
	// OutOfMemory indicates an allocation failure while loading.
	OutOfMemory
	// InvalidPointer indicates a nil file handle was passed to an accessor.
	InvalidPointer
)

func (r Result) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case Invalid:
		return "INVALID"
	case Null:
		return "NULL"
	case NoTLD:
		return "NO_TLD"
	case BadURI:
		return "BAD_URI"
	case NotFound:
		return "NOT_FOUND"
	case UnrecognizedFile:
		return "UNRECOGNIZED_FILE"
	case InvalidFileSize:
		return "INVALID_FILE_SIZE"
	case InvalidHunkSize:
		return "INVALID_HUNK_SIZE"
	case InvalidStructureSize:
		return "INVALID_STRUCTURE_SIZE"
	case InvalidArraySize:
		return "INVALID_ARRAY_SIZE"
	case UnsupportedVersion:
		return "UNSUPPORTED_VERSION"
	case HunkFoundTwice:
		return "HUNK_FOUND_TWICE"
	case MissingHunk:
		return "MISSING_HUNK"
	case CannotOpenFile:
		return "CANNOT_OPEN_FILE"
	case CannotReadFile:
		return "CANNOT_READ_FILE"
	case OutOfMemory:
		return "OUT_OF_MEMORY"
	case InvalidPointer:
		return "INVALID_POINTER"
	default:
		return "UNKNOWN"
	}
}

// LoadError reports a Result that is not Success from Load, together with
// the detail that produced it. Lookup never returns an error; it reports
// its outcome purely through the returned Result.
type LoadError struct {
	Result Result
	Detail string
}

func (e *LoadError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("tld: %s", e.Result)
	}
	return fmt.Sprintf("tld: %s: %s", e.Result, e.Detail)
}

func errOf(result Result, detail string) *LoadError {
	return &LoadError{Result: result, Detail: detail}
}
