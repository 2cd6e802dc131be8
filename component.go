package depot

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/TheBitDrifter/table"
)

// ComponentID is the process-wide identity of a component type. IDs are
// ordered and double as the component's bit in archetype masks.
type ComponentID uint32

// MaxComponentTypes bounds how many distinct component types a process may register.
const MaxComponentTypes = 64

// Component represents a data attribute/state that can be attached to entities
// Components can be used to create queries for entities
type Component interface {
	ID() ComponentID
	Type() reflect.Type
	Tag() bool
	ElementType() table.ElementType
	descriptor() *componentType
}

var _ Component = &componentType{}

// componentType is the runtime descriptor shared by every column of one type.
type componentType struct {
	id        ComponentID
	typ       reflect.Type
	size      uintptr
	elem      table.ElementType
	newColumn func(capacity int) column
}

func (c *componentType) ID() ComponentID                { return c.id }
func (c *componentType) Type() reflect.Type             { return c.typ }
func (c *componentType) ElementType() table.ElementType { return c.elem }
func (c *componentType) descriptor() *componentType     { return c }

// Tag reports whether the component is zero-sized. Tag components share a
// single value per archetype.
func (c *componentType) Tag() bool {
	return c.size == 0
}

func (c *componentType) String() string {
	return c.typ.String()
}

var registry = &componentRegistry{
	schema: table.Factory.NewSchema(),
	byType: make(map[reflect.Type]*componentType),
	byID:   make(map[ComponentID]*componentType),
}

type componentRegistry struct {
	mu     sync.RWMutex
	schema table.Schema
	byType map[reflect.Type]*componentType
	byID   map[ComponentID]*componentType
}

func (r *componentRegistry) lookup(typ reflect.Type) (*componentType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.byType[typ]
	return ct, ok
}

func registerComponent[T any]() (*componentType, error) {
	typ := reflect.TypeFor[T]()
	if ct, ok := registry.lookup(typ); ok {
		return ct, nil
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if ct, ok := registry.byType[typ]; ok {
		return ct, nil
	}
	if len(registry.byType) >= MaxComponentTypes {
		return nil, ComponentLimitError{Limit: MaxComponentTypes}
	}

	elem := table.FactoryNewElementType[T]()
	registry.schema.Register(elem)
	id := ComponentID(registry.schema.RowIndexFor(elem))
	if id >= MaxComponentTypes {
		return nil, ComponentLimitError{Limit: MaxComponentTypes}
	}
	if existing, taken := registry.byID[id]; taken {
		return nil, fmt.Errorf("component id %d for %s already assigned to %s", id, typ, existing.typ)
	}

	var zero T
	ct := &componentType{
		id:   id,
		typ:  typ,
		size: unsafe.Sizeof(zero),
		elem: elem,
		newColumn: func(capacity int) column {
			return newTypedColumn[T](capacity)
		},
	}
	registry.byType[typ] = ct
	registry.byID[id] = ct
	return ct, nil
}

// componentOf returns the descriptor for T, registering it on first use.
// It panics when the registry is full, since generic helpers have no error path
// for a programming error of that kind.
func componentOf[T any]() *componentType {
	ct, err := registerComponent[T]()
	if err != nil {
		panic(err)
	}
	return ct
}

// ComponentFor returns the Component token for T, registering it on first use.
func ComponentFor[T any]() (Component, error) {
	ct, err := registerComponent[T]()
	if err != nil {
		return nil, err
	}
	return ct, nil
}

// ComponentByID returns a previously registered component.
func ComponentByID(id ComponentID) (Component, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	ct, ok := registry.byID[id]
	return ct, ok
}

func descriptors(components []Component) []*componentType {
	out := make([]*componentType, 0, len(components))
	for _, c := range components {
		if c == nil {
			continue
		}
		out = append(out, c.descriptor())
	}
	return out
}
