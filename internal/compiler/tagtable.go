package compiler

// TagSequence is one rule's flattened tag list: [name_id, value_id,
// name_id, value_id, ...], built in the rule's tag-assignment order.
type TagSequence []uint32

// TagTable holds a merged tag array. The deduplication of tag sequences
// across rules and the merging of the survivors, using the same
// suffix/prefix overlap strategy as the string interner (§4.E) on u32 units
// instead of bytes, are done by CompressTags, which does not use this type.
type TagTable struct {
	merged []uint32
}

// CompressTags merges seqs (which may contain duplicates) and returns, for
// each input sequence in order, its (offset, count) into the merged array.
// A rule's tags may straddle two merged sequences since merging works in
// units of one u32 - offset need not be even, and the loader must not
// assume pair alignment (§4.E).
func CompressTags(seqs []TagSequence) (merged []uint32, offsets []uint16, counts []uint16) {
	// Deduplicate while remembering, for every original index, which
	// unique sequence it maps to.
	var uniques []TagSequence
	indexOfUnique := make(map[string]int)
	mapping := make([]int, len(seqs)) // original index -> index into uniques

	for i, seq := range seqs {
		key := encodeKey(seq)
		if idx, ok := indexOfUnique[key]; ok {
			mapping[i] = idx
			continue
		}
		idx := len(uniques)
		uniques = append(uniques, seq)
		indexOfUnique[key] = idx
		mapping[i] = idx
	}

	n := len(uniques)
	surviving := make([]TagSequence, n)
	copy(surviving, uniques)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	runTagContainmentPass(surviving, parent)
	surviving, parent = runTagMergePass(surviving, parent)

	find := func(i int) int {
		for parent[i] != i {
			i = parent[i]
		}
		return i
	}

	live := []int{}
	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		r := find(i)
		if !seen[r] {
			seen[r] = true
			live = append(live, r)
		}
	}

	var blob []uint32
	blobOffset := make(map[int]int, len(live))
	for _, r := range live {
		blobOffset[r] = len(blob)
		blob = append(blob, surviving[r]...)
	}

	offsets = make([]uint16, len(seqs))
	counts = make([]uint16, len(seqs))
	for i, seq := range seqs {
		u := mapping[i]
		r := find(u)
		root := surviving[r]
		off := blobOffset[r] + locateSeq(root, uniques[u])
		offsets[i] = uint16(off)
		counts[i] = uint16(len(seq) / 2)
	}

	return blob, offsets, counts
}

func encodeKey(seq TagSequence) string {
	b := make([]byte, len(seq)*4)
	for i, v := range seq {
		b[i*4] = byte(v)
		b[i*4+1] = byte(v >> 8)
		b[i*4+2] = byte(v >> 16)
		b[i*4+3] = byte(v >> 24)
	}
	return string(b)
}

func runTagContainmentPass(surviving []TagSequence, parent []int) {
	n := len(surviving)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if len(surviving[order[i]]) < len(surviving[order[j]]) {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

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
			if containsSeq(a, b) {
				parent[bi] = ai
				break
			}
		}
	}
}

func runTagMergePass(surviving []TagSequence, parent []int) ([]TagSequence, []int) {
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
				ov := seqOverlap(surviving[ai], surviving[bi])
				if ov > bestOverlap {
					bestOverlap = ov
					bestA, bestB = ai, bi
				}
			}
		}
		if bestOverlap == 0 {
			return surviving, parent
		}

		merged := append(append(TagSequence{}, surviving[bestA]...), surviving[bestB][bestOverlap:]...)
		surviving = append(surviving, merged)
		parent = append(parent, len(parent))
		newIdx := len(parent) - 1
		parent[bestA] = newIdx
		parent[bestB] = newIdx
		n = len(surviving)
	}
}

func containsSeq(haystack, needle TagSequence) bool {
	return indexOfSeq(haystack, needle) >= 0
}

func indexOfSeq(haystack, needle TagSequence) int {
	n, m := len(haystack), len(needle)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if sameSeq(haystack[i:i+m], needle) {
			return i
		}
	}
	return -1
}

func sameSeq(a, b TagSequence) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func seqOverlap(a, b TagSequence) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for l := max; l > 0; l-- {
		if sameSeq(a[len(a)-l:], b[:l]) {
			return l
		}
	}
	return 0
}

func locateSeq(root, member TagSequence) int {
	idx := indexOfSeq(root, member)
	if idx < 0 {
		return 0
	}
	return idx
}
