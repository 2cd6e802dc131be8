package depot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movementSystem struct{}

func (movementSystem) Run(w *World) error {
	return Each2(w, func(_ Entity, pos *Position, vel *Velocity) error {
		pos.X += vel.X
		pos.Y += vel.Y
		return nil
	})
}

func TestSchedulerRunsInOrder(t *testing.T) {
	w := newTestWorld(t)
	s := Factory.NewScheduler(4)

	var order []string
	record := func(name string) System {
		return SystemFunc(func(w *World) error {
			order = append(order, name)
			assert.True(t, w.Locked(), "systems run with the world locked")
			return nil
		})
	}

	for i, name := range []string{"input", "physics", "render"} {
		idx, err := s.Register(name, record(name))
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}
	assert.Equal(t, 3, s.Len())

	require.NoError(t, s.Run(w))
	assert.Equal(t, []string{"input", "physics", "render"}, order)
	assert.False(t, w.Locked())

	_, ok := s.System("physics")
	assert.True(t, ok)
	_, ok = s.System("audio")
	assert.False(t, ok)
}

func TestSchedulerRegisterErrors(t *testing.T) {
	s := Factory.NewScheduler(1)
	_, err := s.Register("a", movementSystem{})
	require.NoError(t, err)

	_, err = s.Register("a", movementSystem{})
	assert.ErrorAs(t, err, &SystemExistsError{})

	_, err = s.Register("b", movementSystem{})
	assert.ErrorAs(t, err, &CacheFullError{})
}

func TestSchedulerFlushesBetweenSystems(t *testing.T) {
	w := newTestWorld(t)
	s := Factory.NewScheduler(4)
	velComp := FactoryNewComponent[Velocity]()

	ents, err := w.NewEntities(2, FactoryNewComponent[Position]())
	require.NoError(t, err)

	_, err = s.Register("spawn velocity", SystemFunc(func(w *World) error {
		return Each1(w, func(e Entity, _ *Position) error {
			return e.EnqueueAddComponent(velComp)
		})
	}))
	require.NoError(t, err)
	_, err = s.Register("set velocity", SystemFunc(func(w *World) error {
		return Each1(w, func(_ Entity, vel *Velocity) error {
			vel.X = 2
			return nil
		})
	}))
	require.NoError(t, err)
	_, err = s.Register("movement", movementSystem{})
	require.NoError(t, err)

	require.NoError(t, s.Run(w))
	for _, e := range ents {
		pos, err := GetComponent[Position](w, e)
		require.NoError(t, err)
		assert.Equal(t, 2.0, pos.X)
	}
}

func TestSchedulerStopsOnError(t *testing.T) {
	w := newTestWorld(t)
	s := Factory.NewScheduler(4)
	boom := errors.New("boom")
	ran := false

	_, err := s.Register("fails", SystemFunc(func(*World) error { return boom }))
	require.NoError(t, err)
	_, err = s.Register("after", SystemFunc(func(*World) error { ran = true; return nil }))
	require.NoError(t, err)

	err = s.Run(w)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)
	assert.False(t, w.Locked())
}

func TestEachStopsOnError(t *testing.T) {
	w := newTestWorld(t)
	_, err := w.NewEntities(5, FactoryNewComponent[Position](), FactoryNewComponent[Velocity](), FactoryNewComponent[Health]())
	require.NoError(t, err)

	stop := errors.New("stop")
	calls := 0
	err = Each3(w, func(Entity, *Position, *Velocity, *Health) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
	assert.False(t, w.Locked(), "early exit releases the world")
}
