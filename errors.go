package depot

import "fmt"

type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "world is currently locked"
}

type DestroyedWorldError struct{}

func (e DestroyedWorldError) Error() string {
	return "world has been destroyed"
}

type EntityNotFoundError struct {
	ID EntityID
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity does not exist: %d", e.ID)
}

type ComponentExistsError struct {
	Component Component
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component already exists on entity: %v", e.Component)
}

type ComponentNotFoundError struct {
	Component Component
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on entity: %v", e.Component)
}

type ArchetypeNotFoundError struct {
	Hash uint64
}

func (e ArchetypeNotFoundError) Error() string {
	return fmt.Sprintf("no archetype with hash %#x", e.Hash)
}

// TransitionError reports a migration between archetypes that do not differ
// by exactly the expected component.
type TransitionError struct {
	Op        string
	Component Component
	From, To  uint32
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition of %v from archetype %d to %d", e.Op, e.Component, e.From, e.To)
}

type IDSpaceExhaustedError struct {
	Limit uint64
}

func (e IDSpaceExhaustedError) Error() string {
	return fmt.Sprintf("entity id space exhausted (limit %d)", e.Limit)
}

type ComponentLimitError struct {
	Limit int
}

func (e ComponentLimitError) Error() string {
	return fmt.Sprintf("component registry at maximum capacity (%d)", e.Limit)
}

type ValueTypeError struct {
	Component Component
	Value     any
}

func (e ValueTypeError) Error() string {
	return fmt.Sprintf("value of type %T cannot be stored as %v", e.Value, e.Component)
}

type CacheFullError struct {
	Capacity int
}

func (e CacheFullError) Error() string {
	return fmt.Sprintf("cache at maximum capacity (%d)", e.Capacity)
}

type DuplicateKeyError struct {
	Key string
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("key already registered: %q", e.Key)
}

type SystemExistsError struct {
	Name string
}

func (e SystemExistsError) Error() string {
	return fmt.Sprintf("system already registered: %q", e.Name)
}
