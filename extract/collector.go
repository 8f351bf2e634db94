package extract

// dedupList keeps first-seen insertion order while deduplicating by a
// normalized key. A limit of 0 means unbounded.
type dedupList struct {
	seen  map[string]struct{}
	vals  []string
	limit int
}

func newDedupList(limit int) *dedupList {
	return &dedupList{seen: map[string]struct{}{}, limit: limit}
}

// add records display under key. It reports whether the list can still
// accept more values, so scan loops can bail out early once full.
func (d *dedupList) add(key, display string) bool {
	if d.full() {
		return false
	}
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	d.vals = append(d.vals, display)
	return !d.full()
}

func (d *dedupList) full() bool {
	return d.limit > 0 && len(d.vals) >= d.limit
}

// values always returns a non-nil slice so callers serialize [] not null.
func (d *dedupList) values() []string {
	if d.vals == nil {
		return []string{}
	}
	return d.vals
}
