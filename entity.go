package depot

import (
	"cmp"
	"fmt"
	"strings"

	iter_util "github.com/TheBitDrifter/util/iter"
)

// Entity is a handle to one entity of a World. Handles are comparable and
// stay valid across archetype moves. After erasure they report dead, even
// once the id has been handed to a new entity.
type Entity struct {
	world *World
	id    EntityID
	gen   uint32
}

func (e Entity) ID() EntityID {
	return e.id
}

func (e Entity) World() *World {
	return e.world
}

func (e Entity) Alive() bool {
	return e.world != nil && e.world.Alive(e)
}

// Compare orders handles by id. Handles of different worlds with equal ids
// compare equal.
func (e Entity) Compare(other Entity) int {
	return cmp.Compare(e.id, other.id)
}

func (e Entity) String() string {
	if e.id == NullEntity {
		return "Entity(null)"
	}
	return fmt.Sprintf("Entity(%d)", e.id)
}

func (e Entity) Name() string {
	if e.world == nil {
		return ""
	}
	ent, err := e.world.resolve(e, nil)
	if err != nil {
		return ""
	}
	return ent.name
}

// Parent returns the entity e was created under, if it is still alive.
func (e Entity) Parent() (Entity, bool) {
	if e.world == nil {
		return Entity{}, false
	}
	parent, ok, err := e.world.Parent(e)
	return parent, ok && err == nil
}

func (e Entity) SetActive(active bool) error {
	if e.world == nil {
		return EntityNotFoundError{ID: e.id}
	}
	return e.world.SetActive(e, active)
}

func (e Entity) Active() bool {
	return e.world != nil && e.world.Active(e)
}

func (e Entity) AddComponent(c Component) error {
	if e.world == nil {
		return EntityNotFoundError{ID: e.id}
	}
	return e.world.AddComponent(e, c)
}

func (e Entity) AddComponentWithValue(c Component, value any) error {
	if e.world == nil {
		return EntityNotFoundError{ID: e.id}
	}
	return e.world.AddComponentWithValue(e, c, value)
}

func (e Entity) RemoveComponent(c Component) error {
	if e.world == nil {
		return EntityNotFoundError{ID: e.id}
	}
	return e.world.RemoveComponent(e, c)
}

// EnqueueAddComponent adds c now, or once the world unlocks if it is locked.
func (e Entity) EnqueueAddComponent(c Component) error {
	if e.world == nil {
		return EntityNotFoundError{ID: e.id}
	}
	return e.world.EnqueueAddComponent(e, c)
}

func (e Entity) EnqueueRemoveComponent(c Component) error {
	if e.world == nil {
		return EntityNotFoundError{ID: e.id}
	}
	return e.world.EnqueueRemoveComponent(e, c)
}

func (e Entity) ClearComponents() error {
	if e.world == nil {
		return EntityNotFoundError{ID: e.id}
	}
	return e.world.ClearComponents(e)
}

// Components returns e's components in ascending id order.
func (e Entity) Components() []Component {
	if e.world == nil {
		return nil
	}
	ent, err := e.world.resolve(e, nil)
	if err != nil {
		return nil
	}
	return iter_util.Collect(e.world.graph.get(ent.archetype).componentSeq())
}

func (e Entity) ComponentsAsString() string {
	comps := e.Components()
	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = c.Type().String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
