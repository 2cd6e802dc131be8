package depot

import (
	"iter"
	"math"
)

// EntityID is the stable identifier of an entity. IDs are recycled only after
// the entity has been erased.
type EntityID uint64

// NullEntity denotes "no entity".
const NullEntity EntityID = math.MaxUint64

// entry is the directory record for one live entity. row is a hint: it is
// trusted only while the archetype still holds id at that row.
type entry struct {
	id        EntityID
	archetype archetypeID
	row       int
	name      string
	parent    Entity
	active    bool
}

// directory stores entries densely and swap-removes on erase, so an index
// into entries is itself only a hint. gens counts how often each issued id
// has been released.
type directory struct {
	entries []entry
	index   map[EntityID]int
	free    []EntityID
	gens    []uint32
	next    EntityID
	limit   EntityID
}

func newDirectory(capacity int, maxEntities uint64) *directory {
	limit := NullEntity
	if maxEntities > 0 && maxEntities < uint64(NullEntity) {
		limit = EntityID(maxEntities)
	}
	return &directory{
		entries: make([]entry, 0, capacity),
		index:   make(map[EntityID]int, capacity),
		limit:   limit,
	}
}

// allocate pops the most recently freed id, or issues the next sequential one.
func (d *directory) allocate() (EntityID, error) {
	if n := len(d.free); n > 0 {
		id := d.free[n-1]
		d.free = d.free[:n-1]
		return id, nil
	}
	if d.next >= d.limit {
		return NullEntity, IDSpaceExhaustedError{Limit: uint64(d.limit)}
	}
	id := d.next
	d.next++
	d.gens = append(d.gens, 0)
	return id, nil
}

// available returns how many ids allocate can still hand out.
func (d *directory) available() uint64 {
	return uint64(len(d.free)) + uint64(d.limit-d.next)
}

// reserve fails unless n more ids can be allocated.
func (d *directory) reserve(n int) error {
	if uint64(n) > d.available() {
		return IDSpaceExhaustedError{Limit: uint64(d.limit)}
	}
	return nil
}

func (d *directory) release(id EntityID) {
	if uint64(id) < uint64(len(d.gens)) {
		d.gens[id]++
	}
	d.free = append(d.free, id)
}

// generation returns the current generation of an issued id.
func (d *directory) generation(id EntityID) uint32 {
	if uint64(id) >= uint64(len(d.gens)) {
		return 0
	}
	return d.gens[id]
}

// live reports whether id is in use and still at generation gen.
func (d *directory) live(id EntityID, gen uint32) bool {
	return d.contains(id) && d.generation(id) == gen
}

func (d *directory) add(e entry) int {
	idx := len(d.entries)
	d.entries = append(d.entries, e)
	d.index[e.id] = idx
	return idx
}

// resolve returns the entry for id. When hint is non-nil it is tried first
// and refreshed on a miss. The returned pointer is valid until the next add
// or remove.
func (d *directory) resolve(id EntityID, hint *int) (*entry, bool) {
	if hint != nil {
		if h := *hint; h >= 0 && h < len(d.entries) && d.entries[h].id == id {
			return &d.entries[h], true
		}
	}
	idx, ok := d.index[id]
	if !ok {
		return nil, false
	}
	if hint != nil {
		*hint = idx
	}
	return &d.entries[idx], true
}

func (d *directory) contains(id EntityID) bool {
	_, ok := d.index[id]
	return ok
}

// remove swap-removes id's entry and returns the id to the free list.
func (d *directory) remove(id EntityID) bool {
	idx, ok := d.index[id]
	if !ok {
		return false
	}
	last := len(d.entries) - 1
	if idx != last {
		d.entries[idx] = d.entries[last]
		d.index[d.entries[idx].id] = idx
	}
	d.entries[last] = entry{}
	d.entries = d.entries[:last]
	delete(d.index, id)
	d.release(id)
	return true
}

func (d *directory) len() int {
	return len(d.entries)
}

func (d *directory) ids() iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		for i := 0; i < len(d.entries); i++ {
			if !yield(d.entries[i].id) {
				return
			}
		}
	}
}
