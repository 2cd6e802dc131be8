package depot

import (
	"fmt"
	"iter"

	"github.com/TheBitDrifter/mask"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// defaultLockBit is the lock bit used by Lock and Unlock.
	defaultLockBit = 0
	// iterationLockBit is held while a scoped walk (Entities, All, Each) runs.
	iterationLockBit = 1
	// schedulerLockBit is held while a Scheduler runs a system.
	schedulerLockBit = 2
)

// World owns every archetype and entity of one storage root. A World is not
// safe for concurrent use.
type World struct {
	id        string
	name      string
	config    Config
	graph     *archetypeGraph
	entities  *directory
	locks     mask.Mask
	opQueue   opQueue
	inactive  int
	iterating int
	destroyed bool
	log       *zap.Logger
}

func newWorld(cfg Config, logger *zap.Logger) *World {
	if cfg.InitialCapacity <= 0 {
		cfg.InitialCapacity = defaultInitialCapacity
	}
	id := uuid.NewString()
	log := logger.With(zap.String("world", id))
	if cfg.Name != "" {
		log = log.With(zap.String("name", cfg.Name))
	}
	w := &World{
		id:       id,
		name:     cfg.Name,
		config:   cfg,
		graph:    newArchetypeGraph(cfg.InitialCapacity, log),
		entities: newDirectory(cfg.InitialCapacity, cfg.MaxEntities),
		opQueue:  newOpQueue(),
		log:      log,
	}
	log.Debug("world created", zap.Int("initial_capacity", cfg.InitialCapacity))
	return w
}

// ID returns the world's instance id.
func (w *World) ID() string {
	return w.id
}

func (w *World) Name() string {
	return w.name
}

func (w *World) Logger() *zap.Logger {
	return w.log
}

// Destroy releases all storage. Every handle into the world reports dead
// afterwards and further mutation fails with DestroyedWorldError.
func (w *World) Destroy() {
	if w.destroyed {
		return
	}
	w.log.Debug("world destroyed",
		zap.Int("entities", w.entities.len()),
		zap.Int("archetypes", w.graph.len()),
	)
	w.graph = newArchetypeGraph(0, w.log)
	w.entities = newDirectory(0, 0)
	w.opQueue = newOpQueue()
	w.locks = mask.Mask{}
	w.inactive = 0
	w.iterating = 0
	w.destroyed = true
	if err := w.log.Sync(); err != nil {
		w.log.Debug("failed to sync logger", zap.Error(err))
	}
}

func (w *World) Destroyed() bool {
	return w.destroyed
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.len()
}

// ArchetypeCount returns how many archetypes exist, including the root.
func (w *World) ArchetypeCount() int {
	return w.graph.len()
}

// RootArchetype returns the archetype with no components.
func (w *World) RootArchetype() Archetype {
	return w.graph.root()
}

func (w *World) checkMutable() error {
	if w.destroyed {
		return DestroyedWorldError{}
	}
	if w.Locked() {
		return LockedWorldError{}
	}
	return nil
}

// InsertEntity creates an entity with no components.
func (w *World) InsertEntity(name string) (Entity, error) {
	return w.insertEntity(name, Entity{})
}

// InsertChild creates an entity whose parent is parent. The parent link is
// metadata only.
func (w *World) InsertChild(name string, parent Entity) (Entity, error) {
	if !w.Alive(parent) {
		return Entity{}, EntityNotFoundError{ID: parent.id}
	}
	return w.insertEntity(name, parent)
}

func (w *World) insertEntity(name string, parent Entity) (Entity, error) {
	if err := w.checkMutable(); err != nil {
		return Entity{}, err
	}
	id, err := w.allocateID()
	if err != nil {
		return Entity{}, err
	}
	root := w.graph.root()
	row := root.insertEntity(id)
	w.entities.add(entry{
		id:        id,
		archetype: root.id,
		row:       row,
		name:      name,
		parent:    parent,
		active:    true,
	})
	return w.handle(id), nil
}

// NewEntities creates n entities holding zero values of components. Either
// all n are created or none are.
func (w *World) NewEntities(n int, components ...Component) ([]Entity, error) {
	if err := w.checkMutable(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("invalid entity count %d", n)
	}
	if err := w.entities.reserve(n); err != nil {
		w.log.Warn("entity id space exhausted", zap.Int("requested", n), zap.Error(err))
		return nil, err
	}
	arch := w.graph.root()
	for _, ct := range descriptors(components) {
		next, err := w.graph.addOrFindSuperset(arch, ct)
		if err != nil {
			return nil, fmt.Errorf("failed to get/create archetype: %w", err)
		}
		arch = next
	}

	created := make([]Entity, 0, n)
	for range n {
		id, err := w.allocateID()
		if err != nil {
			return nil, err
		}
		row := arch.insertEntity(id)
		w.entities.add(entry{
			id:        id,
			archetype: arch.id,
			row:       row,
			active:    true,
		})
		created = append(created, w.handle(id))
	}
	return created, nil
}

func (w *World) allocateID() (EntityID, error) {
	recycled := len(w.entities.free) > 0
	id, err := w.entities.allocate()
	if err != nil {
		w.log.Warn("entity id space exhausted", zap.Error(err))
		return NullEntity, err
	}
	if recycled {
		w.log.Debug("entity id recycled", zap.Uint64("entity", uint64(id)))
	}
	return id, nil
}

// EraseEntity removes e and recycles its id.
func (w *World) EraseEntity(e Entity) error {
	if err := w.checkMutable(); err != nil {
		return err
	}
	ent, err := w.resolve(e, nil)
	if err != nil {
		return err
	}
	moved, row, err := w.graph.get(ent.archetype).eraseEntity(ent.id)
	if err != nil {
		return err
	}
	if !ent.active {
		w.inactive--
	}
	w.fixMoved(moved, row)
	w.entities.remove(e.id)
	return nil
}

// DestroyEntities erases every entity given, stopping at the first failure.
func (w *World) DestroyEntities(entities ...Entity) error {
	for _, e := range entities {
		if err := w.EraseEntity(e); err != nil {
			return fmt.Errorf("failed to destroy entity %d: %w", e.id, err)
		}
	}
	return nil
}

// ClearComponents moves e back to the root archetype.
func (w *World) ClearComponents(e Entity) error {
	if err := w.checkMutable(); err != nil {
		return err
	}
	ent, err := w.resolve(e, nil)
	if err != nil {
		return err
	}
	if ent.archetype == rootArchetypeID {
		return nil
	}
	moved, row, err := w.graph.get(ent.archetype).eraseEntity(ent.id)
	if err != nil {
		return err
	}
	root := w.graph.root()
	ent.archetype = root.id
	ent.row = root.insertEntity(ent.id)
	w.fixMoved(moved, row)
	return nil
}

// EntityName returns the name e was created with.
func (w *World) EntityName(e Entity) (string, error) {
	ent, err := w.resolve(e, nil)
	if err != nil {
		return "", err
	}
	return ent.name, nil
}

// Parent returns e's parent. ok is false for root entities and for parents
// that have since been erased.
func (w *World) Parent(e Entity) (parent Entity, ok bool, err error) {
	ent, err := w.resolve(e, nil)
	if err != nil {
		return Entity{}, false, err
	}
	if !w.Alive(ent.parent) {
		return Entity{}, false, nil
	}
	return ent.parent, true, nil
}

// Alive reports whether e refers to a live entity of this world.
func (w *World) Alive(e Entity) bool {
	return e.world == w && w.entities.live(e.id, e.gen)
}

func (w *World) SetActive(e Entity, active bool) error {
	ent, err := w.resolve(e, nil)
	if err != nil {
		return err
	}
	if ent.active == active {
		return nil
	}
	ent.active = active
	if active {
		w.inactive--
	} else {
		w.inactive++
	}
	return nil
}

// Active reports whether e is live and active. Inactive entities are skipped by queries.
func (w *World) Active(e Entity) bool {
	ent, err := w.resolve(e, nil)
	return err == nil && ent.active
}

// ArchetypeOf returns the archetype e currently lives in.
func (w *World) ArchetypeOf(e Entity) (Archetype, error) {
	ent, err := w.resolve(e, nil)
	if err != nil {
		return nil, err
	}
	return w.graph.get(ent.archetype), nil
}

// ArchetypeByHash looks an archetype up by its structural hash.
func (w *World) ArchetypeByHash(hash uint64) (Archetype, error) {
	return w.graph.byHash(hash)
}

// Entities yields every live entity in directory order.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for id := range w.entities.ids() {
			if !yield(w.handle(id)) {
				return
			}
		}
	}
}

// Entity returns a handle for a live id.
func (w *World) Entity(id EntityID) (Entity, error) {
	if !w.entities.contains(id) {
		return Entity{}, EntityNotFoundError{ID: id}
	}
	return w.handle(id), nil
}

// handle returns the current handle for a live id.
func (w *World) handle(id EntityID) Entity {
	return Entity{world: w, id: id, gen: w.entities.generation(id)}
}

// AddComponent adds c to e with its zero value.
func (w *World) AddComponent(e Entity, c Component) error {
	return w.insertComponent(e, nil, c.descriptor(), func(col column) error {
		col.appendZero()
		return nil
	})
}

// AddComponentWithValue adds c to e holding value. A value that does not
// fit c's column fails with ValueTypeError and leaves e unchanged.
func (w *World) AddComponentWithValue(e Entity, c Component, value any) error {
	return w.insertComponent(e, nil, c.descriptor(), func(col column) error {
		if _, err := col.appendValue(value); err != nil {
			return ValueTypeError{Component: c, Value: value}
		}
		return nil
	})
}

// ComponentValue returns a copy of e's c value.
func (w *World) ComponentValue(e Entity, c Component) (any, error) {
	ent, err := w.resolve(e, nil)
	if err != nil {
		return nil, err
	}
	ct := c.descriptor()
	arch := w.graph.get(ent.archetype)
	slot, ok := arch.slots[ct.id]
	if !ok {
		return nil, ComponentNotFoundError{Component: ct}
	}
	row, ok := arch.rowOf(ent.id, ent.row)
	if !ok {
		return nil, EntityNotFoundError{ID: ent.id}
	}
	return arch.columns[slot].value(row), nil
}

// RemoveComponent drops c from e.
func (w *World) RemoveComponent(e Entity, c Component) error {
	return w.removeComponent(e, nil, c.descriptor())
}

func (w *World) insertComponent(e Entity, hint *int, ct *componentType, init func(column) error) error {
	if err := w.checkMutable(); err != nil {
		return err
	}
	ent, err := w.resolve(e, hint)
	if err != nil {
		return err
	}
	base := w.graph.get(ent.archetype)
	if base.contains(ct) {
		return ComponentExistsError{Component: ct}
	}
	row, ok := base.rowOf(ent.id, ent.row)
	if !ok {
		return EntityNotFoundError{ID: ent.id}
	}

	target, err := w.graph.addOrFindSuperset(base, ct)
	if err != nil {
		return fmt.Errorf("failed to get/create archetype: %w", err)
	}
	m, err := target.insertEntityFromSubset(ent.id, row, base, ct, init)
	if err != nil {
		return fmt.Errorf("failed to transfer entity: %w", err)
	}
	ent.archetype = target.id
	ent.row = m.row
	w.fixMoved(m.moved, m.movedRow)
	return nil
}

func (w *World) removeComponent(e Entity, hint *int, ct *componentType) error {
	if err := w.checkMutable(); err != nil {
		return err
	}
	ent, err := w.resolve(e, hint)
	if err != nil {
		return err
	}
	base := w.graph.get(ent.archetype)
	if !base.contains(ct) {
		return ComponentNotFoundError{Component: ct}
	}
	row, ok := base.rowOf(ent.id, ent.row)
	if !ok {
		return EntityNotFoundError{ID: ent.id}
	}

	target, err := w.graph.addOrFindSubset(base, ct)
	if err != nil {
		return fmt.Errorf("failed to get/create archetype: %w", err)
	}
	m, err := target.insertEntityFromSuperset(ent.id, row, base, ct)
	if err != nil {
		return fmt.Errorf("failed to transfer entity: %w", err)
	}
	ent.archetype = target.id
	ent.row = m.row
	w.fixMoved(m.moved, m.movedRow)
	return nil
}

// resolve returns e's directory entry. The pointer is valid until the
// directory is next modified.
func (w *World) resolve(e Entity, hint *int) (*entry, error) {
	if e.world != w || w.entities.generation(e.id) != e.gen {
		return nil, EntityNotFoundError{ID: e.id}
	}
	ent, ok := w.entities.resolve(e.id, hint)
	if !ok {
		return nil, EntityNotFoundError{ID: e.id}
	}
	return ent, nil
}

// fixMoved records that moved now lives at row after a swap-remove.
func (w *World) fixMoved(moved EntityID, row int) {
	if moved == NullEntity {
		return
	}
	if ent, ok := w.entities.resolve(moved, nil); ok {
		ent.row = row
	}
}

func (w *World) activeID(id EntityID) bool {
	if w.inactive == 0 {
		return true
	}
	ent, ok := w.entities.resolve(id, nil)
	return ok && ent.active
}

func (w *World) Locked() bool {
	return w.locks != mask.Mask{}
}

// Lock defers structural changes made through the Enqueue methods until
// the world is unlocked.
func (w *World) Lock() {
	w.AddLock(defaultLockBit)
}

// Unlock releases the default lock and flushes queued operations once no
// lock remains.
func (w *World) Unlock() error {
	return w.RemoveLock(defaultLockBit)
}

// AddLock sets one of several independent lock bits.
func (w *World) AddLock(bit uint32) {
	w.locks.Mark(bit)
}

func (w *World) RemoveLock(bit uint32) error {
	w.locks.Unmark(bit)
	if w.Locked() {
		return nil
	}
	return w.processOperationQueue()
}

// walk runs fn with the iteration lock held and flushes queued operations
// afterwards if no other lock remains. fn's error takes precedence.
func (w *World) walk(fn func() error) (err error) {
	w.beginIteration()
	defer func() {
		if flushErr := w.endIteration(); err == nil {
			err = flushErr
		}
	}()
	return fn()
}

func (w *World) beginIteration() {
	if w.iterating == 0 {
		w.AddLock(iterationLockBit)
	}
	w.iterating++
}

func (w *World) endIteration() error {
	if w.iterating == 0 {
		return nil
	}
	w.iterating--
	if w.iterating > 0 {
		return nil
	}
	return w.RemoveLock(iterationLockBit)
}

func (w *World) Config() Config {
	return w.config
}
