package xl

import (
	"slices"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
)

// usage counts references per sheet name.
type usage map[string]int

func (u usage) total() int {
	n := 0
	for _, c := range u {
		n += c
	}
	return n
}

type entry[K comparable] struct {
	key  K
	uses usage
}

// table is an ordered, deduplicated, reference-counted registry. An entry's id
// is its position; compacting away an entry shifts every later id down by one.
// The first pinned entries are never evicted.
type table[K comparable] struct {
	entries []*entry[K]
	index   map[K]int
	pinned  int
}

func newTable[K comparable]() *table[K] {
	return &table[K]{index: map[K]int{}}
}

func (t *table[K]) len() int {
	return len(t.entries)
}

func (t *table[K]) valid(id int) bool {
	return id >= 0 && id < len(t.entries)
}

func (t *table[K]) lookup(k K) (int, bool) {
	id, ok := t.index[k]
	return id, ok
}

func (t *table[K]) key(id int) K {
	return t.entries[id].key
}

func (t *table[K]) keys() []K {
	kk := make([]K, len(t.entries))
	for i, e := range t.entries {
		kk[i] = e.key
	}
	return kk
}

// resolve returns the id of k, appending it when absent.
func (t *table[K]) resolve(k K) int {
	if id, ok := t.index[k]; ok {
		return id
	}
	id := len(t.entries)
	t.entries = append(t.entries, &entry[K]{key: k, uses: usage{}})
	t.index[k] = id
	return id
}

// pin protects every entry resolved so far from eviction.
func (t *table[K]) pin() {
	t.pinned = len(t.entries)
}

func (t *table[K]) acquire(id int, owner string) {
	t.entries[id].uses[owner]++
}

func (t *table[K]) uses(id int, owner string) int {
	if !t.valid(id) {
		return 0
	}
	return t.entries[id].uses[owner]
}

func (t *table[K]) totalUses(id int) int {
	if !t.valid(id) {
		return 0
	}
	return t.entries[id].uses.total()
}

func (t *table[K]) owners(id int) []string {
	if !t.valid(id) {
		return nil
	}
	return sortedKeys(t.entries[id].uses)
}

// release drops one reference held by owner. It reports whether such a
// reference existed and whether the entry is now unreferenced and evictable.
func (t *table[K]) release(id int, owner string) (released, unused bool) {
	if !t.valid(id) {
		return false, false
	}
	e := t.entries[id]
	n := e.uses[owner]
	if n == 0 {
		return false, false
	}
	if n == 1 {
		delete(e.uses, owner)
	} else {
		e.uses[owner] = n - 1
	}
	return true, id >= t.pinned && len(e.uses) == 0
}

// releaseOwner drops every reference held by owner and returns, ascending,
// the ids that became unreferenced. Entries the owner never referenced are
// left alone even when they have no references at all.
func (t *table[K]) releaseOwner(owner string) []int {
	var unused []int
	for id, e := range t.entries {
		if _, ok := e.uses[owner]; !ok {
			continue
		}
		delete(e.uses, owner)
		if id >= t.pinned && len(e.uses) == 0 {
			unused = append(unused, id)
		}
	}
	return unused
}

// compact removes the evicted ids (ascending) and renumbers the survivors.
func (t *table[K]) compact(evicted []int) {
	if len(evicted) == 0 {
		return
	}
	kept := t.entries[:0]
	j := 0
	for id, e := range t.entries {
		if j < len(evicted) && evicted[j] == id {
			j++
			continue
		}
		kept = append(kept, e)
	}
	clear(t.entries[len(kept):])
	t.entries = kept
	t.reindex()
}

// rekey rewrites every key, then rebuilds the lookup index.
func (t *table[K]) rekey(fn func(K) K) {
	for _, e := range t.entries {
		e.key = fn(e.key)
	}
	t.reindex()
}

func (t *table[K]) reindex() {
	clear(t.index)
	for id, e := range t.entries {
		t.index[e.key] = id
	}
}

// shiftIndex maps an id that survived the removal of evicted (ascending) to
// its position after compaction.
func shiftIndex(id int, evicted []int) int {
	n, _ := slices.BinarySearch(evicted, id)
	return id - n
}

func sortedKeys[M ~map[K]V, K constraints.Ordered, V any](m M) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func enumerate[M ~map[K]V, K constraints.Ordered, V any](m M, callback func(k K, v V) error) error {
	for _, k := range sortedKeys(m) {
		err := callback(k, m[k])
		if err != nil {
			return err
		}
	}
	return nil
}
