package depot

import (
	"cmp"
	"encoding/binary"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

const fibonacci64 = 0x9e3779b97f4a7c15

// structuralHash folds the member ids with XOR so that the result does not
// depend on insertion order. The count term separates small sets.
func structuralHash(types []*componentType) uint64 {
	h := uint64(len(types)) * fibonacci64
	var buf [8]byte
	for _, ct := range types {
		binary.LittleEndian.PutUint64(buf[:], uint64(ct.id))
		h ^= xxhash.Sum64(buf[:])
	}
	return h
}

// archetypeGraph interns archetypes and resolves transitions between them.
// Archetypes are never removed, so ids handed out stay valid for the
// lifetime of the graph.
type archetypeGraph struct {
	archetypes []*archetype
	interned   map[uint64][]archetypeID
	reverse    map[ComponentID]*roaring.Bitmap
	capacity   int
	log        *zap.Logger
}

func newArchetypeGraph(capacity int, log *zap.Logger) *archetypeGraph {
	g := &archetypeGraph{
		interned: make(map[uint64][]archetypeID),
		reverse:  make(map[ComponentID]*roaring.Bitmap),
		capacity: capacity,
		log:      log,
	}
	root := newArchetype(rootArchetypeID, nil, capacity)
	g.archetypes = append(g.archetypes, root)
	g.interned[root.hash] = []archetypeID{root.id}
	return g
}

func (g *archetypeGraph) root() *archetype {
	return g.archetypes[rootArchetypeID]
}

func (g *archetypeGraph) get(id archetypeID) *archetype {
	return g.archetypes[id]
}

func (g *archetypeGraph) len() int {
	return len(g.archetypes)
}

// addOrFindSuperset returns the archetype holding base's components plus ct.
func (g *archetypeGraph) addOrFindSuperset(base *archetype, ct *componentType) (*archetype, error) {
	e := base.edge(ct)
	if e.superset != noArchetype {
		return g.archetypes[e.superset], nil
	}
	if base.contains(ct) {
		return nil, ComponentExistsError{Component: ct}
	}

	types := make([]*componentType, 0, len(base.types)+1)
	types = append(types, base.types...)
	types = append(types, ct)

	target := g.intern(types)
	e.superset = target.id
	target.edge(ct).subset = base.id
	return target, nil
}

// addOrFindSubset returns the archetype holding base's components minus ct.
func (g *archetypeGraph) addOrFindSubset(base *archetype, ct *componentType) (*archetype, error) {
	e := base.edge(ct)
	if e.subset != noArchetype {
		return g.archetypes[e.subset], nil
	}
	if !base.contains(ct) {
		return nil, ComponentNotFoundError{Component: ct}
	}

	types := make([]*componentType, 0, len(base.types)-1)
	for _, t := range base.types {
		if t.id != ct.id {
			types = append(types, t)
		}
	}

	target := g.intern(types)
	e.subset = target.id
	target.edge(ct).superset = base.id
	return target, nil
}

// intern finds the archetype for types or builds it. A hash hit is only
// accepted when the signatures match; colliding sets share a bucket.
func (g *archetypeGraph) intern(types []*componentType) *archetype {
	hash := structuralHash(types)
	signature := signatureOf(types)

	for _, id := range g.interned[hash] {
		candidate := g.archetypes[id]
		if candidate.signature == signature {
			return candidate
		}
		g.log.Debug("archetype hash collision",
			zap.Uint64("hash", hash),
			zap.Uint32("archetype", candidate.ID()),
		)
	}

	created := newArchetype(archetypeID(len(g.archetypes)), types, g.capacity)
	g.archetypes = append(g.archetypes, created)
	g.interned[hash] = append(g.interned[hash], created.id)
	for _, ct := range created.types {
		bm, ok := g.reverse[ct.id]
		if !ok {
			bm = roaring.New()
			g.reverse[ct.id] = bm
		}
		bm.Add(uint32(created.id))
	}

	g.log.Debug("archetype created",
		zap.Uint32("archetype", created.ID()),
		zap.Uint64("hash", hash),
		zap.Int("components", len(created.types)),
	)
	return created
}

// byHash returns the first archetype interned under hash.
func (g *archetypeGraph) byHash(hash uint64) (*archetype, error) {
	ids, ok := g.interned[hash]
	if !ok || len(ids) == 0 {
		return nil, ArchetypeNotFoundError{Hash: hash}
	}
	return g.archetypes[ids[0]], nil
}

// querySupersets returns the non-empty archetypes containing every id, in
// ascending archetype order. The shortest posting list is probed against
// the others.
func (g *archetypeGraph) querySupersets(ids []ComponentID) []*archetype {
	var result []*archetype
	if len(ids) == 0 {
		for _, a := range g.archetypes {
			if a.Len() > 0 {
				result = append(result, a)
			}
		}
		return result
	}

	lists := make([]*roaring.Bitmap, 0, len(ids))
	for _, id := range ids {
		bm, ok := g.reverse[id]
		if !ok || bm.IsEmpty() {
			return nil
		}
		lists = append(lists, bm)
	}
	slices.SortFunc(lists, func(a, b *roaring.Bitmap) int {
		return cmp.Compare(a.GetCardinality(), b.GetCardinality())
	})

	it := lists[0].Iterator()
	for it.HasNext() {
		id := it.Next()
		if !containedInAll(id, lists[1:]) {
			continue
		}
		a := g.archetypes[id]
		if a.Len() == 0 {
			continue
		}
		result = append(result, a)
	}
	return result
}

func containedInAll(id uint32, lists []*roaring.Bitmap) bool {
	for _, bm := range lists {
		if !bm.Contains(id) {
			return false
		}
	}
	return true
}
