package xl

// SharedStrings is the workbook-wide shared string table. Each distinct
// string is stored once; cells of type s refer to it by index. References are
// counted per sheet, one per referencing cell.
//
// Indices stay stable until a string loses its last reference. The string is
// then evicted, every later index shifts down by one, and the owning Workbook
// rewrites the cells before the mutating call returns.
type SharedStrings struct {
	t *table[string]
}

func newSharedStrings() *SharedStrings {
	return &SharedStrings{t: newTable[string]()}
}

// Intern returns the index of value, appending it when absent, and records
// one more reference by sheet.
func (ss *SharedStrings) Intern(value, sheet string) int {
	i := ss.t.resolve(value)
	ss.t.acquire(i, sheet)
	return i
}

// Len returns the number of distinct strings.
func (ss *SharedStrings) Len() int {
	return ss.t.len()
}

// Lookup returns the index of value without registering a reference.
func (ss *SharedStrings) Lookup(value string) (int, bool) {
	return ss.t.lookup(value)
}

// String returns the string stored at index.
func (ss *SharedStrings) String(index int) (string, bool) {
	if !ss.t.valid(index) {
		return "", false
	}
	return ss.t.key(index), true
}

// Sheets returns the names of the sheets referencing index, sorted.
func (ss *SharedStrings) Sheets(index int) []string {
	return ss.t.owners(index)
}

// Refs returns how many references sheet holds on index.
func (ss *SharedStrings) Refs(index int, sheet string) int {
	return ss.t.uses(index, sheet)
}

// Count returns the total number of references across all strings.
func (ss *SharedStrings) Count() int {
	n := 0
	for _, e := range ss.t.entries {
		n += e.uses.total()
	}
	return n
}

// Snapshot returns the strings in index order.
func (ss *SharedStrings) Snapshot() []string {
	return ss.t.keys()
}

// release drops one reference and compacts the table if the string became
// unreferenced. It returns the evicted indices.
func (ss *SharedStrings) release(index int, sheet string) []int {
	_, unused := ss.t.release(index, sheet)
	if !unused {
		return nil
	}
	evicted := []int{index}
	ss.t.compact(evicted)
	return evicted
}

// releaseAll drops every reference held by sheet and compacts the table in a
// single pass. It returns the evicted indices, ascending.
func (ss *SharedStrings) releaseAll(sheet string) []int {
	evicted := ss.t.releaseOwner(sheet)
	ss.t.compact(evicted)
	return evicted
}
