package depot

import (
	"cmp"
	"iter"
	"math"
	"slices"

	"github.com/TheBitDrifter/mask"
)

type archetypeID uint32

const (
	rootArchetypeID archetypeID = 0
	noArchetype     archetypeID = math.MaxUint32
)

var _ Archetype = &archetype{}

// edge caches the neighbours reached by adding or removing one component.
type edge struct {
	superset archetypeID
	subset   archetypeID
}

type archetype struct {
	id        archetypeID
	hash      uint64
	signature mask.Mask

	// types and columns are parallel and sorted by ascending component id.
	types   []*componentType
	columns []column
	slots   map[ComponentID]int

	entities []EntityID
	rows     map[EntityID]int

	edges map[ComponentID]*edge
}

// migration reports the outcome of moving one entity between archetypes.
// moved is the entity that took over the vacated source row, if any.
type migration struct {
	row      int
	moved    EntityID
	movedRow int
}

func newArchetype(id archetypeID, types []*componentType, capacity int) *archetype {
	sorted := slices.Clone(types)
	slices.SortFunc(sorted, func(a, b *componentType) int {
		return cmp.Compare(a.id, b.id)
	})

	a := &archetype{
		id:       id,
		types:    sorted,
		columns:  make([]column, len(sorted)),
		slots:    make(map[ComponentID]int, len(sorted)),
		entities: make([]EntityID, 0, capacity),
		rows:     make(map[EntityID]int, capacity),
		edges:    make(map[ComponentID]*edge),
	}
	for i, ct := range sorted {
		a.columns[i] = ct.newColumn(capacity)
		a.slots[ct.id] = i
	}
	a.signature = signatureOf(sorted)
	a.hash = structuralHash(sorted)
	return a
}

func signatureOf(types []*componentType) mask.Mask {
	var m mask.Mask
	for _, ct := range types {
		m.Mark(uint32(ct.id))
	}
	return m
}

func (a *archetype) ID() uint32 {
	return uint32(a.id)
}

func (a *archetype) Hash() uint64 {
	return a.hash
}

func (a *archetype) Len() int {
	return len(a.entities)
}

func (a *archetype) Mask() mask.Mask {
	return a.signature
}

func (a *archetype) Components() []Component {
	out := make([]Component, len(a.types))
	for i, ct := range a.types {
		out[i] = ct
	}
	return out
}

func (a *archetype) componentSeq() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		for _, ct := range a.types {
			if !yield(ct) {
				return
			}
		}
	}
}

func (a *archetype) contains(ct *componentType) bool {
	var m mask.Mask
	m.Mark(uint32(ct.id))
	return a.signature.ContainsAll(m)
}

func (a *archetype) edge(ct *componentType) *edge {
	e, ok := a.edges[ct.id]
	if !ok {
		e = &edge{superset: noArchetype, subset: noArchetype}
		a.edges[ct.id] = e
	}
	return e
}

// rowOf trusts hint when the entity stored there is still id and falls back
// to the entity set otherwise.
func (a *archetype) rowOf(id EntityID, hint int) (int, bool) {
	if hint >= 0 && hint < len(a.entities) && a.entities[hint] == id {
		return hint, true
	}
	row, ok := a.rows[id]
	return row, ok
}

func (a *archetype) appendEntity(id EntityID) int {
	row := len(a.entities)
	a.entities = append(a.entities, id)
	a.rows[id] = row
	return row
}

// insertEntity places id in a new row with zero values in every column.
func (a *archetype) insertEntity(id EntityID) int {
	row := a.appendEntity(id)
	for _, col := range a.columns {
		col.appendZero()
	}
	return row
}

// eraseEntity swap-removes id from the entity set and every column at the
// same row. It returns the entity now occupying that row, or NullEntity.
func (a *archetype) eraseEntity(id EntityID) (EntityID, int, error) {
	row, ok := a.rows[id]
	if !ok {
		return NullEntity, -1, EntityNotFoundError{ID: id}
	}
	moved := a.removeRow(row)
	return moved, row, nil
}

func (a *archetype) removeRow(row int) EntityID {
	id := a.entities[row]
	last := len(a.entities) - 1
	moved := NullEntity
	if row != last {
		moved = a.entities[last]
		a.entities[row] = moved
		a.rows[moved] = row
	}
	a.entities = a.entities[:last]
	delete(a.rows, id)
	for _, col := range a.columns {
		col.removeAt(row)
	}
	return moved
}

// insertEntityFromSubset moves id from src, whose component set is exactly
// a's minus ct. init appends the new ct value to its column.
func (a *archetype) insertEntityFromSubset(id EntityID, srcRow int, src *archetype, ct *componentType, init func(column) error) (migration, error) {
	expected := src.signature
	expected.Mark(uint32(ct.id))
	if src.contains(ct) || a.signature != expected {
		return migration{}, TransitionError{Op: "add", Component: ct, From: src.ID(), To: a.ID()}
	}
	if srcRow < 0 || srcRow >= src.Len() || src.entities[srcRow] != id {
		return migration{}, EntityNotFoundError{ID: id}
	}

	// init runs first so a rejected value leaves every column untouched.
	if err := init(a.columns[a.slots[ct.id]]); err != nil {
		return migration{}, err
	}
	row := a.appendEntity(id)
	for i, t := range a.types {
		if t.id == ct.id {
			continue
		}
		a.columns[i].appendFrom(src.columns[src.slots[t.id]], srcRow)
	}
	moved := src.removeRow(srcRow)
	return migration{row: row, moved: moved, movedRow: srcRow}, nil
}

// insertEntityFromSuperset moves id from src, whose component set is exactly
// a's plus ct. The ct value is dropped.
func (a *archetype) insertEntityFromSuperset(id EntityID, srcRow int, src *archetype, ct *componentType) (migration, error) {
	expected := a.signature
	expected.Mark(uint32(ct.id))
	if a.contains(ct) || src.signature != expected {
		return migration{}, TransitionError{Op: "remove", Component: ct, From: src.ID(), To: a.ID()}
	}
	if srcRow < 0 || srcRow >= src.Len() || src.entities[srcRow] != id {
		return migration{}, EntityNotFoundError{ID: id}
	}

	row := a.appendEntity(id)
	for i, t := range a.types {
		a.columns[i].appendFrom(src.columns[src.slots[t.id]], srcRow)
	}
	moved := src.removeRow(srcRow)
	return migration{row: row, moved: moved, movedRow: srcRow}, nil
}

func archetypeColumn[T any](a *archetype, ct *componentType) (*typedColumn[T], bool) {
	slot, ok := a.slots[ct.id]
	if !ok {
		return nil, false
	}
	return a.columns[slot].(*typedColumn[T]), true
}

// archetypeComponent resolves id's row through the entity set, trying hint
// first. It returns the row it found.
func archetypeComponent[T any](a *archetype, ct *componentType, id EntityID, hint int) (*T, int, error) {
	col, ok := archetypeColumn[T](a, ct)
	if !ok {
		return nil, -1, ComponentNotFoundError{Component: ct}
	}
	row, ok := a.rowOf(id, hint)
	if !ok {
		return nil, -1, EntityNotFoundError{ID: id}
	}
	return col.at(row), row, nil
}
