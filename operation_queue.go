package depot

import (
	"fmt"

	"go.uber.org/zap"
)

type operation struct {
	typ    operationType
	amount int
	name   string
	comps  []Component
	entity Entity
	erase  []Entity
}

type operationType int

const (
	opCreate operationType = iota
	opDestroy
	opAddComponent
	opRemoveComponent
)

type opQueue struct {
	createOps      []operation
	componentOps   []operation
	destroyOps     []operation
	pendingDestroy map[Entity]struct{}
	pendingMods    map[opKey]int
}

// opKey identifies the queued op for one component of one entity.
type opKey struct {
	entity    Entity
	component ComponentID
}

func newOpQueue() opQueue {
	return opQueue{
		pendingDestroy: make(map[Entity]struct{}),
		pendingMods:    make(map[opKey]int),
	}
}

func (q *opQueue) empty() bool {
	return len(q.createOps) == 0 &&
		len(q.componentOps) == 0 &&
		len(q.destroyOps) == 0
}

func (q *opQueue) reset() {
	q.createOps = q.createOps[:0]
	q.componentOps = q.componentOps[:0]
	q.destroyOps = q.destroyOps[:0]
	clear(q.pendingDestroy)
	clear(q.pendingMods)
}

func (q *opQueue) enqueueCreate(name string, amount int, comps []Component) {
	q.createOps = append(q.createOps, operation{
		typ:    opCreate,
		amount: amount,
		name:   name,
		comps:  comps,
	})
}

func (q *opQueue) enqueueDestroy(entities []Entity) {
	var fresh []Entity
	for _, e := range entities {
		if _, exists := q.pendingDestroy[e]; exists {
			continue
		}
		fresh = append(fresh, e)
		q.pendingDestroy[e] = struct{}{}
	}
	if len(fresh) > 0 {
		q.destroyOps = append(q.destroyOps, operation{typ: opDestroy, erase: fresh})
	}
}

// enqueueComponentOp records typ for comp on e. A later op for the same
// component of the same entity replaces the earlier one; ops on different
// components are all kept.
func (q *opQueue) enqueueComponentOp(typ operationType, e Entity, comp Component) {
	if _, erased := q.pendingDestroy[e]; erased {
		return
	}
	key := opKey{entity: e, component: comp.ID()}
	if idx, ok := q.pendingMods[key]; ok {
		q.componentOps[idx].typ = typ
		return
	}
	q.pendingMods[key] = len(q.componentOps)
	q.componentOps = append(q.componentOps, operation{
		typ:    typ,
		entity: e,
		comps:  []Component{comp},
	})
}

// EnqueueInsertEntity creates an entity holding components, deferring the
// creation while the world is locked.
func (w *World) EnqueueInsertEntity(name string, components ...Component) error {
	if w.destroyed {
		return DestroyedWorldError{}
	}
	if w.Locked() {
		w.opQueue.enqueueCreate(name, 1, components)
		return nil
	}
	return w.createNamed(name, 1, components)
}

// EnqueueNewEntities is the batch form of EnqueueInsertEntity.
func (w *World) EnqueueNewEntities(n int, components ...Component) error {
	if w.destroyed {
		return DestroyedWorldError{}
	}
	if n < 0 {
		return fmt.Errorf("invalid entity count %d", n)
	}
	if w.Locked() {
		w.opQueue.enqueueCreate("", n, components)
		return nil
	}
	return w.createNamed("", n, components)
}

func (w *World) EnqueueEraseEntity(entities ...Entity) error {
	if w.destroyed {
		return DestroyedWorldError{}
	}
	if w.Locked() {
		w.opQueue.enqueueDestroy(entities)
		return nil
	}
	return w.DestroyEntities(entities...)
}

func (w *World) EnqueueAddComponent(e Entity, c Component) error {
	if w.destroyed {
		return DestroyedWorldError{}
	}
	if !w.Locked() {
		return w.AddComponent(e, c)
	}
	if e.world != w {
		return EntityNotFoundError{ID: e.id}
	}
	w.opQueue.enqueueComponentOp(opAddComponent, e, c)
	return nil
}

func (w *World) EnqueueRemoveComponent(e Entity, c Component) error {
	if w.destroyed {
		return DestroyedWorldError{}
	}
	if !w.Locked() {
		return w.RemoveComponent(e, c)
	}
	if e.world != w {
		return EntityNotFoundError{ID: e.id}
	}
	w.opQueue.enqueueComponentOp(opRemoveComponent, e, c)
	return nil
}

func (w *World) createNamed(name string, n int, components []Component) error {
	created, err := w.NewEntities(n, components...)
	if err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	for _, e := range created {
		if ent, ok := w.entities.resolve(e.id, nil); ok {
			ent.name = name
		}
	}
	return nil
}

// processOperationQueue applies queued work: creates, then component ops,
// then erasures. The queue is emptied even when an op fails.
func (w *World) processOperationQueue() error {
	q := &w.opQueue
	if q.empty() {
		return nil
	}
	defer q.reset()

	w.log.Debug("flushing operation queue",
		zap.Int("creates", len(q.createOps)),
		zap.Int("component_ops", len(q.componentOps)),
		zap.Int("destroys", len(q.destroyOps)),
	)

	requested := 0
	for _, op := range q.createOps {
		requested += op.amount
	}
	if err := w.entities.reserve(requested); err != nil {
		return fmt.Errorf("failed to process queued entity creation: %w", err)
	}
	for _, op := range q.createOps {
		if err := w.createNamed(op.name, op.amount, op.comps); err != nil {
			return fmt.Errorf("failed to process queued entity creation: %w", err)
		}
	}

	for _, op := range q.componentOps {
		// Component ops on an entity about to be erased are dropped.
		if _, erased := q.pendingDestroy[op.entity]; erased || !w.Alive(op.entity) {
			continue
		}
		e := op.entity
		switch op.typ {
		case opAddComponent:
			if err := w.AddComponent(e, op.comps[0]); err != nil {
				return fmt.Errorf("failed to add queued component: %w", err)
			}
		case opRemoveComponent:
			if err := w.RemoveComponent(e, op.comps[0]); err != nil {
				return fmt.Errorf("failed to remove queued component: %w", err)
			}
		}
	}

	for _, op := range q.destroyOps {
		for _, e := range op.erase {
			if !w.Alive(e) {
				continue
			}
			if err := w.EraseEntity(e); err != nil {
				return fmt.Errorf("failed to delete queued entity: %w", err)
			}
		}
	}
	return nil
}
