package tld

// TagPair is one opaque name/value tag attached to a rule (§4.H step 7).
// Only "category" and "country" are privileged enough to get their own
// Info fields; everything else is only reachable through Info.Tags.
type TagPair struct {
	Name  string
	Value string
}

// Info is the result of a successful or INVALID lookup. TLD points into
// the caller's own input string for Lookup (never into the loaded file),
// so Info's lifetime is tied to the caller's domain string, not to the
// loaded rule file (§5).
type Info struct {
	Status   Status
	TLD      string
	Offset   int
	Category string
	Country  string
	Tags     []TagPair
}

// Lookup finds the longest public suffix of domain, which must already be
// lowercased and percent-encoded by the caller, as Lowercase returns it
// (§4.H). It is a pure
// function: no I/O, no retries, bounded O(log N * max_level) work.
func Lookup(domain string) (Result, Info) {
	if domain == "" {
		return Null, Info{}
	}

	f := GetLoaded()
	if f == nil {
		// No rule set loaded: there is nothing to match against.
		return NotFound, Info{}
	}

	periods := findPeriods(domain)
	for i := 1; i < len(periods); i++ {
		if periods[i]-periods[i-1] == 1 {
			return BadURI, Info{}
		}
	}
	if len(periods) == 0 {
		return NoTLD, Info{}
	}

	maxLevel := int(f.header.MaxLevel)
	if maxLevel > 0 && len(periods) > maxLevel {
		periods = periods[len(periods)-maxLevel:]
	}

	startLevel := len(periods)
	level := startLevel - 1

	topLabel := domain[periods[level]+1:]
	topIdx, found, err := searchRange(f, f.header.TLDStartOffset, f.header.TLDEndOffset, topLabel)
	if err != nil || !found {
		return NotFound, Info{}
	}
	p := topIdx

	for level > 0 {
		d, err := f.desc(p)
		if err != nil {
			return NotFound, Info{}
		}
		if d.StartOffset == NoOffset {
			break
		}

		label := domain[periods[level-1]+1 : periods[level]]
		hitIdx, hit, err := descendLabel(f, d, label)
		if err != nil {
			return NotFound, Info{}
		}
		if !hit {
			break
		}
		p = hitIdx
		level--
	}

	// matchOffset is the index of the period immediately to the left of the
	// matched suffix, or -1 when the match consumes the whole domain (no
	// label is left over). periods[level] covers every case the descent
	// loop above can reach; the one level it structurally cannot reach is
	// the domain's leftmost label (there is no periods[-1] boundary to its
	// left), handled below using the same wildcard-fallback rule.
	matchOffset := periods[level]

	if level == 0 {
		d, err := f.desc(p)
		if err == nil && d.StartOffset != NoOffset {
			prefix := domain[:periods[0]]
			hitIdx, hit, err := descendLabel(f, d, prefix)
			if err == nil && hit {
				p = hitIdx
				matchOffset = -1
			}
		}
	}

	d, err := f.desc(p)
	if err != nil {
		return NotFound, Info{}
	}

	reportStatus := d.Status
	tagSource := d

	if d.Status == StatusException {
		newLevel := startLevel - int(d.ExceptionLevel)
		if newLevel < 0 {
			newLevel = 0
		}
		target, terr := f.desc(d.ExceptionApplyTo)
		if terr == nil {
			matchOffset = periods[newLevel]
			tagSource = target
		}
	}

	var result Result
	switch {
	case reportStatus == StatusException:
		result = Success
	case reportStatus == StatusValid:
		result = Success
	default:
		result = Invalid
	}

	info := Info{
		Status: reportStatus,
		Offset: matchOffset,
		TLD:    domain[matchOffset+1:],
	}
	tags, err := f.readTags(tagSource)
	if err == nil {
		info.Tags = tags
		for _, t := range tags {
			switch t.Name {
			case "category":
				info.Category = t.Value
			case "country":
				info.Country = t.Value
			}
		}
	}

	return result, info
}

func findPeriods(domain string) []int {
	var periods []int
	for i := 0; i < len(domain); i++ {
		if domain[i] == '.' {
			periods = append(periods, i)
		}
	}
	return periods
}

// descendLabel looks for a child of d matching label, falling back to a "*"
// wildcard child when no exact child matches it (§4.H descend step: an
// exception like !city.kobe.jp is stored as an exact sibling of the "*"
// wildcard it carves out of, so an exact hit always wins over the
// wildcard).
func descendLabel(f *File, d DescRecord, label string) (uint16, bool, error) {
	childStart, childEnd := d.StartOffset, d.EndOffset

	searchStart := childStart
	fallback, hasFallback := int(-1), false
	if childEnd > childStart {
		first, err := f.desc(childStart)
		if err == nil {
			firstLabel, err := f.string(first.TLDStringID)
			if err == nil && firstLabel == "*" {
				fallback, hasFallback = int(childStart), true
				searchStart = childStart + 1
			}
		}
	}

	hitIdx, hit, err := searchRange(f, searchStart, childEnd, label)
	if err != nil {
		return 0, false, err
	}
	if hit {
		return hitIdx, true, nil
	}
	if hasFallback {
		return uint16(fallback), true, nil
	}
	return 0, false, nil
}

// searchRange binary-searches [start, end) for a rule whose stored label
// equals key, comparing byte-for-byte (§4.H: "shorter strings sort before
// their longer prefix-matching counterparts", which Go's string ordering
// already implements).
func searchRange(f *File, start, end uint16, key string) (uint16, bool, error) {
	lo, hi := int(start), int(end)
	for lo < hi {
		mid := (lo + hi) / 2
		d, err := f.desc(uint16(mid))
		if err != nil {
			return 0, false, err
		}
		label, err := f.string(d.TLDStringID)
		if err != nil {
			return 0, false, err
		}
		switch {
		case key < label:
			hi = mid
		case key > label:
			lo = mid + 1
		default:
			return uint16(mid), true, nil
		}
	}
	return 0, false, nil
}

// readTags collects every (name, value) tag attached to d, in storage
// order.
func (f *File) readTags(d DescRecord) ([]TagPair, error) {
	if d.TagsCount == 0 {
		return nil, nil
	}
	out := make([]TagPair, 0, d.TagsCount)
	for i := uint16(0); i < d.TagsCount; i++ {
		nameID, valID, err := f.tagPair(d.TagsOffset, d.TagsCount, i)
		if err != nil {
			return nil, err
		}
		name, err := f.string(nameID)
		if err != nil {
			return nil, err
		}
		value, err := f.string(valID)
		if err != nil {
			return nil, err
		}
		out = append(out, TagPair{Name: name, Value: value})
	}
	return out, nil
}