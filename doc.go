/*
Package depot provides archetype-based entity storage for games and simulations.

Depot groups entities by their exact set of component types. Every distinct set
is an archetype that stores each component type in its own dense column, so
entities sharing a shape sit next to each other in memory. Adding or removing a
component moves the entity between archetypes along cached graph edges.

Core Concepts:

  - Entity: A stable handle that stays valid across archetype moves.
  - Component: Any Go type. Zero-sized types act as tags and take no per-row storage.
  - Archetype: A collection of entities sharing the same component types.
  - Query: A way to find entities with specific component combinations.

Basic Usage:

	world := depot.Factory.NewWorld()

	player, _ := world.InsertEntity("player")
	depot.InsertComponent(world, player, Position{X: 1})
	depot.InsertComponent(world, player, Velocity{X: 2})

	q := depot.NewQuery2[Position, Velocity](world)
	q.Each(func(e depot.Entity, pos *Position, vel *Velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

Component tokens and cursors give the type-erased form of the same operations:

	position := depot.FactoryNewComponent[Position]()
	query := depot.Factory.NewQuery()
	cursor := depot.Factory.NewCursor(query.And(position), world)
	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		pos.Y++
	}

A World is single-threaded. While it is locked, structural changes go through
the Enqueue methods and are applied when the last lock is released. Ranging
over Entities or All, and calling Each, locks the world for the duration of
the loop; a plain Next loop takes no lock, so changing the component set of
a matched entity inside one invalidates the walk.
*/
package depot
