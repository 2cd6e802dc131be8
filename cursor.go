package depot

import (
	"iter"

	"go.uber.org/zap"
)

func newCursor(query QueryNode, world *World) *Cursor {
	return &Cursor{
		query:    query,
		required: requiredComponents(query),
		world:    world,
	}
}

// Next advances to the next active matching entity. Once it returns false
// the cursor has rewound; the following Next re-resolves the matching
// archetypes and walks again. Next takes no lock: structural changes made
// directly during a Next loop invalidate the walk.
func (c *Cursor) Next() bool {
	for c.step() {
		if c.world.activeID(c.current.entities[c.entityIdx-1]) {
			return true
		}
	}
	return false
}

func (c *Cursor) step() bool {
	if !c.initialized {
		c.initialize()
	}
	for c.archIndex < len(c.matched) {
		c.current = c.matched[c.archIndex]
		c.remaining = c.current.Len()

		if c.entityIdx < c.remaining {
			c.entityIdx++
			return true
		}
		c.archIndex++
		c.entityIdx = 0
	}
	c.Reset()
	return false
}

// Entities yields the matching entities from the start of a fresh walk.
// The world is locked for the duration of the range loop, so structural
// changes must go through the Enqueue methods; they are applied when the
// loop ends, however it ends.
func (c *Cursor) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		c.scoped(func() {
			c.Reset()
			for c.Next() {
				if !yield(c.Entity()) {
					c.Reset()
					return
				}
			}
		})
	}
}

// scoped runs fn with the world's iteration lock held.
func (c *Cursor) scoped(fn func()) {
	err := c.world.walk(func() error {
		fn()
		return nil
	})
	if err != nil {
		c.world.log.Error("failed to flush operation queue after iteration", zap.Error(err))
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.matched = c.match(c.matched[:0])
	c.archIndex = 0
	c.entityIdx = 0
	c.remaining = 0
	if len(c.matched) > 0 {
		c.current = c.matched[0]
		c.remaining = c.current.Len()
	}
	c.initialized = true
}

func (c *Cursor) match(dst []*archetype) []*archetype {
	for _, arch := range c.world.graph.querySupersets(c.required) {
		if c.query == nil || c.query.Evaluate(arch) {
			dst = append(dst, arch)
		}
	}
	return dst
}

// Reset rewinds the cursor.
func (c *Cursor) Reset() {
	c.archIndex = 0
	c.entityIdx = 0
	c.remaining = 0
	c.current = nil
	c.matched = c.matched[:0]
	c.initialized = false
}

// Entity returns the entity at the cursor position.
func (c *Cursor) Entity() Entity {
	return c.world.handle(c.current.entities[c.entityIdx-1])
}

// Row returns the row of the current entity within Archetype.
func (c *Cursor) Row() int {
	return c.entityIdx - 1
}

func (c *Cursor) Archetype() Archetype {
	return c.current
}

func (c *Cursor) RemainingInArchetype() int {
	return c.remaining - c.entityIdx
}

// TotalMatched counts the entities of every matching archetype, active or not.
func (c *Cursor) TotalMatched() int {
	matched := c.matched
	if !c.initialized {
		matched = c.match(nil)
	}
	total := 0
	for _, arch := range matched {
		total += arch.Len()
	}
	return total
}
