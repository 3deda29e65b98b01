package compiler

import "sort"

// Interner maps every string ever seen (segments, tag names, tag values,
// country names, ...) to a dense positive integer ID. ID 0 is reserved to
// mean "absent" (§4.D).
type Interner struct {
	ids     map[string]uint16
	strings []string // index i holds the string for ID i+1
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]uint16)}
}

// Intern returns s's ID, assigning a fresh one on first sight.
func (in *Interner) Intern(s string) uint16 {
	if id, ok := in.ids[s]; ok {
		return id
	}
	in.strings = append(in.strings, s)
	id := uint16(len(in.strings))
	in.ids[s] = id
	return id
}

// String returns the string previously interned under id, or "" for id 0.
func (in *Interner) String(id uint16) string {
	if id == 0 {
		return ""
	}
	return in.strings[id-1]
}

// Len returns the number of distinct non-empty strings interned.
func (in *Interner) Len() int { return len(in.strings) }

// span is a (offset, length) pair locating a string inside the blob.
type span struct {
	offset uint32
	length uint16
}

// CompressedStrings is the result of superstring compression: a single
// blob plus, for every interned ID (1-based), the (offset, length) span
// locating that string's bytes within the blob.
type CompressedStrings struct {
	Blob  []byte
	Spans []span // Spans[i] is for string ID i+1
}

// Compress runs the two-pass superstring compressor described in §4.D over
// every string the interner has seen, and returns the shared blob plus a
// span per string ID.
//
// Pass 1 (containment): for every pair (a, b) with b shorter than a, if b
// is a substring of a, b is marked "included in" a and will not occupy its
// own blob bytes.
//
// Pass 2 (suffix/prefix merge): for every pair (a, b) not already
// resolved by pass 1, find the longest proper suffix of a equal to a
// prefix of b; repeatedly merge the globally best such overlapping pair
// into a new synthetic string until no overlap remains. This is the
// O(N^2) algorithm the spec explicitly accepts in exchange for simplicity
// (§4.D, §9): correctness (every (offset, length) pair locates the right
// string) matters more than minimality of the final blob.
func (in *Interner) Compress() CompressedStrings {
	n := in.Len()
	if n == 0 {
		return CompressedStrings{Blob: nil, Spans: nil}
	}

	// surviving holds the current text for each "live" node; merged nodes'
	// original member indices point at the merged node's text via parent.
	surviving := make([]string, n)
	copy(surviving, in.strings)
	parent := make([]int, n) // parent[i] == i means i is still live
	for i := range parent {
		parent[i] = i
	}

	find := func(i int) int {
		for parent[i] != i {
			i = parent[i]
		}
		return i
	}

	runContainmentPass(surviving, parent, find)
	surviving, parent = runMergePass(surviving, parent)

	// Collect the surviving (root) texts in first-occurrence order.
	live := []int{}
	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		r := find(i)
		if !seen[r] {
			seen[r] = true
			live = append(live, r)
		}
	}

	var blob []byte
	blobOffset := make(map[int]uint32, len(live))
	for _, r := range live {
		text := surviving[r]
		blobOffset[r] = uint32(len(blob))
		blob = append(blob, text...)
	}

	spans := make([]span, n)
	for i := 0; i < n; i++ {
		r := find(i)
		root := surviving[r]
		member := in.strings[i]
		off := blobOffset[r] + uint32(locate(root, member))
		spans[i] = span{offset: off, length: uint16(len(member))}
	}

	return CompressedStrings{Blob: blob, Spans: spans}
}

// runContainmentPass marks every string that is a substring of a longer
// still-live string as included in it.
func runContainmentPass(surviving []string, parent []int, find func(int) int) {
	n := len(surviving)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	// longest first, so containment is checked against the largest
	// available container.
	sort.Slice(order, func(a, b int) bool {
		return len(surviving[order[a]]) > len(surviving[order[b]])
	})

	for _, bi := range order {
		if parent[bi] != bi {
			continue
		}
		b := surviving[bi]
		for _, ai := range order {
			if ai == bi || parent[ai] != ai {
				continue
			}
			a := surviving[ai]
			if len(b) >= len(a) {
				continue
			}
			if containsSubstring(a, b) {
				parent[bi] = ai
				break
			}
		}
	}
}

func containsSubstring(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	n, m := len(haystack), len(needle)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if haystack[i:i+m] == needle {
			return i
		}
	}
	return -1
}

// runMergePass greedily merges live strings by longest suffix/prefix
// overlap until no positive overlap remains between any pair. It returns
// the (possibly grown) surviving/parent slices, since each merge appends a
// new synthetic node.
func runMergePass(surviving []string, parent []int) ([]string, []int) {
	n := len(surviving)
	for {
		bestOverlap := 0
		bestA, bestB := -1, -1
		live := liveNodes(parent, n)
		for _, ai := range live {
			for _, bi := range live {
				if ai == bi {
					continue
				}
				ov := suffixPrefixOverlap(surviving[ai], surviving[bi])
				if ov > bestOverlap {
					bestOverlap = ov
					bestA, bestB = ai, bi
				}
			}
		}
		if bestOverlap == 0 {
			return surviving, parent
		}

		merged := surviving[bestA] + surviving[bestB][bestOverlap:]
		surviving = append(surviving, merged)
		parent = append(parent, len(parent))
		newIdx := len(parent) - 1
		parent[bestA] = newIdx
		parent[bestB] = newIdx
		n = len(surviving)
	}
}

func liveNodes(parent []int, n int) []int {
	var out []int
	for i := 0; i < n; i++ {
		if parent[i] == i {
			out = append(out, i)
		}
	}
	return out
}

// suffixPrefixOverlap returns the length of the longest proper suffix of a
// that equals a prefix of b.
func suffixPrefixOverlap(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for l := max; l > 0; l-- {
		if a[len(a)-l:] == b[:l] {
			return l
		}
	}
	return 0
}

// locate finds the first occurrence of member inside root, which the
// caller has already guaranteed exists (either root == member or member
// was marked included-in root by the containment pass, or root is a merge
// product containing member by construction).
func locate(root, member string) int {
	if member == "" {
		return 0
	}
	idx := indexOf(root, member)
	if idx < 0 {
		// Defensive fallback: should be unreachable given the invariants
		// above, but never let a bad span silently corrupt the file.
		return 0
	}
	return idx
}
