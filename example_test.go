package depot_test

import (
	"fmt"

	"github.com/TheBitDrifter/depot"
)

// Position is a simple component for 2D coordinates
type Position struct {
	X float64
	Y float64
}

// Velocity is a simple component for 2D movement
type Velocity struct {
	X float64
	Y float64
}

// Name is a simple component for entity identification
type Name struct {
	Value string
}

// Example shows basic depot usage with entity creation and queries
func Example_basic() {
	world := depot.Factory.NewWorld()
	defer world.Destroy()

	position := depot.FactoryNewComponent[Position]()
	velocity := depot.FactoryNewComponent[Velocity]()
	name := depot.FactoryNewComponent[Name]()

	world.NewEntities(5, position)
	world.NewEntities(3, position, velocity)

	player, _ := world.InsertEntity("player")
	depot.InsertComponent(world, player, Position{X: 10, Y: 20})
	depot.InsertComponent(world, player, Velocity{X: 1, Y: 2})
	depot.InsertComponent(world, player, Name{Value: "Player"})

	query := depot.Factory.NewQuery()
	cursor := depot.Factory.NewCursor(query.And(position, velocity), world)
	matchCount := 0
	for cursor.Next() {
		matchCount++
	}
	fmt.Printf("Found %d entities with position and velocity\n", matchCount)

	cursor = depot.Factory.NewCursor(query.And(name), world)
	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		nme := name.GetFromCursor(cursor)

		pos.X += vel.X
		pos.Y += vel.Y

		fmt.Printf("Updated %s to position (%.1f, %.1f)\n", nme.Value, pos.X, pos.Y)
	}

	// Output:
	// Found 4 entities with position and velocity
	// Updated Player to position (11.0, 22.0)
}

// Example_queries shows how to use different query operations
func Example_queries() {
	world := depot.Factory.NewWorld()
	defer world.Destroy()

	position := depot.FactoryNewComponent[Position]()
	velocity := depot.FactoryNewComponent[Velocity]()
	name := depot.FactoryNewComponent[Name]()

	world.NewEntities(3, position)
	world.NewEntities(3, position, velocity)
	world.NewEntities(3, position, name)
	world.NewEntities(3, position, velocity, name)

	query := depot.Factory.NewQuery()

	cursor := depot.Factory.NewCursor(query.And(position, velocity), world)
	fmt.Printf("AND query matched %d entities\n", cursor.TotalMatched())

	cursor = depot.Factory.NewCursor(query.Or(velocity, name), world)
	fmt.Printf("OR query matched %d entities\n", cursor.TotalMatched())

	cursor = depot.Factory.NewCursor(query.And(position, query.Not(velocity)), world)
	fmt.Printf("NOT query matched %d entities\n", cursor.TotalMatched())

	// Output:
	// AND query matched 6 entities
	// OR query matched 9 entities
	// NOT query matched 6 entities
}

// Example_typedQueries shows the generic component API
func Example_typedQueries() {
	world := depot.Factory.NewWorld()
	defer world.Destroy()

	for i := range 3 {
		e, _ := world.InsertEntity(fmt.Sprintf("mover-%d", i))
		depot.InsertComponent(world, e, Position{X: float64(i)})
		depot.InsertComponent(world, e, Velocity{X: 1})
	}

	depot.NewQuery2[Position, Velocity](world).Each(func(e depot.Entity, pos *Position, vel *Velocity) {
		pos.X += vel.X
	})

	for e, pos := range depot.NewQuery1[Position](world).All() {
		fmt.Printf("%s at %.0f\n", e.Name(), pos.X)
	}

	// Unordered output:
	// mover-0 at 1
	// mover-1 at 2
	// mover-2 at 3
}

// Example_scheduler shows systems deferring structural changes
func Example_scheduler() {
	world := depot.Factory.NewWorld()
	defer world.Destroy()

	velocity := depot.FactoryNewComponent[Velocity]()
	world.NewEntities(2, depot.FactoryNewComponent[Position]())

	scheduler := depot.Factory.NewScheduler(8)
	scheduler.Register("launch", depot.SystemFunc(func(w *depot.World) error {
		return depot.Each1(w, func(e depot.Entity, _ *Position) error {
			return e.EnqueueAddComponent(velocity)
		})
	}))
	scheduler.Register("move", depot.SystemFunc(func(w *depot.World) error {
		return depot.Each2(w, func(_ depot.Entity, pos *Position, vel *Velocity) error {
			vel.Y = 5
			pos.Y += vel.Y
			return nil
		})
	}))

	if err := scheduler.Run(world); err != nil {
		fmt.Println(err)
	}

	depot.Each1(world, func(_ depot.Entity, pos *Position) error {
		fmt.Printf("y=%.0f\n", pos.Y)
		return nil
	})

	// Output:
	// y=5
	// y=5
}
