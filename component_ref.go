package depot

// ComponentRef refers to the T component of one entity. It caches the
// entity's directory slot and re-resolves it whenever the cache is stale.
type ComponentRef[T any] struct {
	entity Entity
	index  int
}

func (r *ComponentRef[T]) Entity() Entity {
	return r.entity
}

// Get returns the current address of the component. The pointer is
// invalidated by the next structural change to the world.
func (r *ComponentRef[T]) Get() (*T, error) {
	w := r.entity.world
	if w == nil {
		return nil, EntityNotFoundError{ID: r.entity.id}
	}
	return getComponent[T](w, r.entity, &r.index)
}

// Valid reports whether the entity is alive and still holds T.
func (r *ComponentRef[T]) Valid() bool {
	w := r.entity.world
	if w == nil {
		return false
	}
	ent, err := w.resolve(r.entity, &r.index)
	if err != nil {
		return false
	}
	return w.graph.get(ent.archetype).contains(componentOf[T]())
}

// InsertComponent adds T to e holding value.
func InsertComponent[T any](w *World, e Entity, value T) (ComponentRef[T], error) {
	ref := ComponentRef[T]{entity: e, index: -1}
	ct := componentOf[T]()
	err := w.insertComponent(e, &ref.index, ct, func(col column) error {
		col.(*typedColumn[T]).push(value)
		return nil
	})
	if err != nil {
		return ComponentRef[T]{}, err
	}
	return ref, nil
}

// EraseComponent removes T from e.
func EraseComponent[T any](w *World, e Entity) error {
	return w.removeComponent(e, nil, componentOf[T]())
}

// GetComponent returns e's T. The pointer is invalidated by the next
// structural change to the world.
func GetComponent[T any](w *World, e Entity) (*T, error) {
	return getComponent[T](w, e, nil)
}

func getComponent[T any](w *World, e Entity, hint *int) (*T, error) {
	ent, err := w.resolve(e, hint)
	if err != nil {
		return nil, err
	}
	ptr, row, err := archetypeComponent[T](w.graph.get(ent.archetype), componentOf[T](), ent.id, ent.row)
	if err != nil {
		return nil, err
	}
	ent.row = row
	return ptr, nil
}

// ArchetypeColumn returns the raw T rows of a, aligned with its entity rows
// as reported by Cursor.Row. Tag types have no per-row storage and yield
// nil. The slice is invalidated by the next structural change to a.
func ArchetypeColumn[T any](a Archetype) ([]T, error) {
	arch, ok := a.(*archetype)
	ct := componentOf[T]()
	if !ok || arch == nil {
		return nil, ComponentNotFoundError{Component: ct}
	}
	col, ok := archetypeColumn[T](arch, ct)
	if !ok {
		return nil, ComponentNotFoundError{Component: ct}
	}
	return col.slice(), nil
}

// ContainsComponent reports whether e is alive and holds T.
func ContainsComponent[T any](w *World, e Entity) bool {
	ent, err := w.resolve(e, nil)
	if err != nil {
		return false
	}
	return w.graph.get(ent.archetype).contains(componentOf[T]())
}
