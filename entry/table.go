package entry

// Table is the append-only, filtered, indexed sequence of Entry values that
// survive the admission filter. Its Index values come from the raw decode
// pass (every regular-file entry, filtered or not); Table.Add silently
// drops everything that doesn't pass Admits, while keeping each surviving
// Entry's Index equal to its ordinal position in that raw pass.
type Table struct {
	entries []Entry
	byIndex map[int]int // raw index -> position in entries
	cursor  int
}

// NewTable returns an empty Table ready for Add calls during enumeration.
func NewTable() *Table {
	return &Table{byIndex: make(map[int]int)}
}

// Add applies the extension filter and appends a new Entry if the path
// survives it. Entries that don't survive leave no trace in the table, but
// their Index slot is implicitly skipped over by Realign below.
func (t *Table) Add(index int, path string) {
	e := newEntry(index, path)
	if !Admits(e.LowerExt) {
		return
	}
	t.byIndex[index] = len(t.entries)
	t.entries = append(t.entries, e)
}

// Len returns the number of admitted entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// All returns every admitted Entry, in table order.
func (t *Table) All() []Entry {
	return t.entries
}

// Get returns a pointer to the Entry at the given table position (not raw
// archive index); ok is false when pos is out of range.
func (t *Table) Get(pos int) (*Entry, bool) {
	if pos < 0 || pos >= len(t.entries) {
		return nil, false
	}
	return &t.entries[pos], true
}

// ByRawIndex looks an Entry up by its raw archive index (the value passed
// to Add), returning ok=false if that index was filtered out or never
// admitted.
func (t *Table) ByRawIndex(rawIndex int) (*Entry, bool) {
	pos, ok := t.byIndex[rawIndex]
	if !ok {
		return nil, false
	}
	return &t.entries[pos], true
}

// AddTarget attaches a Target to the Entry at table position pos.
func (t *Table) AddTarget(pos int, target Target) {
	if e, ok := t.Get(pos); ok {
		e.AddTarget(target)
	}
}

// ClearTargets removes every Target from the Entry at table position pos.
func (t *Table) ClearTargets(pos int) {
	if e, ok := t.Get(pos); ok {
		e.ClearTargets()
	}
}

// ResetCursor rewinds the realignment cursor used by Realign, needed before
// each of the two decode passes over the archive.
func (t *Table) ResetCursor() {
	t.cursor = 0
}

// Realign advances the monotonic cursor whenever the raw decode pass (which
// still emits filtered-out indices) reaches the index of the next surviving
// Entry, and reports that Entry so the caller can stream its bytes. This is
// how a second, raw re-enumeration of the archive re-synchronizes with the
// post-filter Table. The cursor also skips past any surviving
// Entry whose index the decode pass never reported — an unreadable entry is
// dropped from a pass without desynchronizing everything after it.
func (t *Table) Realign(rawIndex int) (*Entry, bool) {
	for t.cursor < len(t.entries) && t.entries[t.cursor].Index < rawIndex {
		t.cursor++
	}
	if t.cursor >= len(t.entries) || t.entries[t.cursor].Index != rawIndex {
		return nil, false
	}
	e := &t.entries[t.cursor]
	t.cursor++
	return e, true
}
