package depot

// AccessibleComponent extends a base Component with typed access
// It provides methods to retrieve components using different access patterns
type AccessibleComponent[T any] struct {
	Component
}

// GetFromCursor retrieves a component value for the entity at the cursor position
// It panics when the cursor's archetype does not hold T
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	col, ok := archetypeColumn[T](cursor.current, c.descriptor())
	if !ok {
		panic(ComponentNotFoundError{Component: c.Component})
	}
	return col.at(cursor.Row())
}

// GetFromCursorSafe safely retrieves a component value, checking if the component exists
// Returns a boolean indicating success and the component pointer if found
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	if cursor.current == nil {
		return false, nil
	}
	col, ok := archetypeColumn[T](cursor.current, c.descriptor())
	if !ok {
		return false, nil
	}
	return true, col.at(cursor.Row())
}

// CheckCursor determines if the component exists in the archetype at the cursor position
func (c AccessibleComponent[T]) CheckCursor(cursor *Cursor) bool {
	return cursor.current != nil && cursor.current.contains(c.descriptor())
}

// GetFromEntity retrieves a component value for the specified entity
func (c AccessibleComponent[T]) GetFromEntity(entity Entity) (*T, error) {
	if entity.world == nil {
		return nil, EntityNotFoundError{ID: entity.id}
	}
	return GetComponent[T](entity.world, entity)
}

// Insert adds the component to entity holding value.
func (c AccessibleComponent[T]) Insert(entity Entity, value T) (ComponentRef[T], error) {
	if entity.world == nil {
		return ComponentRef[T]{}, EntityNotFoundError{ID: entity.id}
	}
	return InsertComponent(entity.world, entity, value)
}
