package depot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorldLocking tests that locked worlds defer structural changes
func TestWorldLocking(t *testing.T) {
	posComp := FactoryNewComponent[Position]()

	tests := []struct {
		name      string
		operation func(w *World) error
		locked    error
	}{
		{
			name:      "Insert entity while locked",
			operation: func(w *World) error { _, err := w.InsertEntity("e"); return err },
			locked:    LockedWorldError{},
		},
		{
			name:      "New entities while locked",
			operation: func(w *World) error { _, err := w.NewEntities(1, posComp); return err },
			locked:    LockedWorldError{},
		},
		{
			name: "Erase entity while locked",
			operation: func(w *World) error {
				return w.EraseEntity(w.handle(0))
			},
			locked: LockedWorldError{},
		},
		{
			name: "Add component while locked",
			operation: func(w *World) error {
				return w.AddComponent(w.handle(0), FactoryNewComponent[Velocity]())
			},
			locked: LockedWorldError{},
		},
		{
			name: "Clear components while locked",
			operation: func(w *World) error {
				return w.ClearComponents(w.handle(0))
			},
			locked: LockedWorldError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			_, err := w.NewEntities(1, posComp)
			require.NoError(t, err)

			w.Lock()
			require.True(t, w.Locked())
			assert.Equal(t, tt.locked, tt.operation(w))

			require.NoError(t, w.Unlock())
			assert.False(t, w.Locked())
			assert.NoError(t, tt.operation(w))
		})
	}
}

func TestEnqueueWhenUnlockedRunsImmediately(t *testing.T) {
	w := newTestWorld(t)
	posComp := FactoryNewComponent[Position]()

	require.NoError(t, w.EnqueueInsertEntity("now", posComp))
	assert.Equal(t, 1, w.Len())

	e := w.handle(0)
	require.NoError(t, w.EnqueueRemoveComponent(e, posComp))
	assert.False(t, ContainsComponent[Position](w, e))
	require.NoError(t, w.EnqueueAddComponent(e, posComp))
	assert.True(t, ContainsComponent[Position](w, e))
	require.NoError(t, w.EnqueueEraseEntity(e))
	assert.Equal(t, 0, w.Len())
}

func TestOperationQueueFlushOrder(t *testing.T) {
	w := newTestWorld(t)
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()

	ents, err := w.NewEntities(3, posComp)
	require.NoError(t, err)
	keep, doomed, flip := ents[0], ents[1], ents[2]

	w.Lock()
	require.NoError(t, w.EnqueueInsertEntity("spawned", velComp))
	require.NoError(t, w.EnqueueNewEntities(2))
	require.NoError(t, w.EnqueueAddComponent(keep, velComp))

	// erased entities drop their pending component ops
	require.NoError(t, w.EnqueueAddComponent(doomed, velComp))
	require.NoError(t, w.EnqueueEraseEntity(doomed))
	require.NoError(t, w.EnqueueRemoveComponent(doomed, posComp))

	// the latest op for a component wins; ops on other components are kept
	require.NoError(t, w.EnqueueRemoveComponent(flip, velComp))
	require.NoError(t, w.EnqueueAddComponent(flip, velComp))
	require.NoError(t, w.EnqueueRemoveComponent(flip, posComp))

	assert.Equal(t, 3, w.Len(), "nothing applied while locked")
	require.NoError(t, w.Unlock())

	assert.Equal(t, 5, w.Len())
	assert.False(t, doomed.Alive())
	assert.True(t, ContainsComponent[Velocity](w, keep))
	assert.True(t, ContainsComponent[Velocity](w, flip))
	assert.False(t, ContainsComponent[Position](w, flip))

	spawned := 0
	for e := range w.Entities() {
		if e.Name() == "spawned" {
			spawned++
			assert.True(t, ContainsComponent[Velocity](w, e))
		}
	}
	assert.Equal(t, 1, spawned)
	assert.True(t, w.opQueue.empty())
}

func TestOperationQueueKeepsOpsOnDifferentComponents(t *testing.T) {
	w := newTestWorld(t)
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()
	e, err := w.InsertEntity("e")
	require.NoError(t, err)
	require.NoError(t, e.AddComponent(healthComp))

	w.Lock()
	require.NoError(t, w.EnqueueAddComponent(e, posComp))
	require.NoError(t, w.EnqueueAddComponent(e, velComp))
	require.NoError(t, w.EnqueueRemoveComponent(e, healthComp))
	require.NoError(t, w.Unlock())

	assert.True(t, ContainsComponent[Position](w, e))
	assert.True(t, ContainsComponent[Velocity](w, e))
	assert.False(t, ContainsComponent[Health](w, e))
}

func TestOperationQueueSkipsDeadEntities(t *testing.T) {
	w := newTestWorld(t)
	posComp := FactoryNewComponent[Position]()
	e, err := w.InsertEntity("e")
	require.NoError(t, err)
	require.NoError(t, w.EraseEntity(e))

	w.Lock()
	require.NoError(t, w.EnqueueAddComponent(e, posComp))
	require.NoError(t, w.EnqueueEraseEntity(e))
	assert.NoError(t, w.Unlock())
}

func TestOperationQueueError(t *testing.T) {
	w := newTestWorld(t)
	posComp := FactoryNewComponent[Position]()
	ents, err := w.NewEntities(1, posComp)
	require.NoError(t, err)

	w.Lock()
	require.NoError(t, w.EnqueueAddComponent(ents[0], posComp))
	err = w.Unlock()
	assert.ErrorAs(t, err, &ComponentExistsError{})
	assert.True(t, w.opQueue.empty(), "a failed flush still empties the queue")
	assert.NoError(t, w.Unlock())
}

func TestNestedLocks(t *testing.T) {
	w := newTestWorld(t)
	w.Lock()
	w.AddLock(7)
	require.NoError(t, w.EnqueueInsertEntity("later"))

	require.NoError(t, w.Unlock())
	assert.True(t, w.Locked())
	assert.Equal(t, 0, w.Len())

	require.NoError(t, w.RemoveLock(7))
	assert.False(t, w.Locked())
	assert.Equal(t, 1, w.Len())
}
