package depot

import (
	"github.com/TheBitDrifter/mask"
)

// Archetype is the read-only view of one component set and the entities
// stored under it.
type Archetype interface {
	ID() uint32
	Hash() uint64
	Len() int
	Mask() mask.Mask
	Components() []Component
}

type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

type QueryNode interface {
	Evaluate(archetype Archetype) bool
}

type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
	Len() int
}

// System is a unit of per-frame logic run by a Scheduler.
type System interface {
	Run(w *World) error
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(w *World) error

func (f SystemFunc) Run(w *World) error {
	return f(w)
}

// Cursor walks the entities of every archetype matching a query. The world
// is locked while a walk is in progress; structural changes must go through
// the Enqueue methods until the cursor is exhausted or Reset.
type Cursor struct {
	query    QueryNode
	required []ComponentID
	world    *World

	// Current iteration state
	current   *archetype
	archIndex int
	entityIdx int
	remaining int

	initialized bool
	matched     []*archetype
}

type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}
