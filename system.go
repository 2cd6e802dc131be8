package depot

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Scheduler runs named systems in registration order. Each system runs with
// the world locked; operations it enqueued are applied before the next one
// starts.
type Scheduler struct {
	systems *SimpleCache[System]
	names   []string
}

func newScheduler(capacity int) *Scheduler {
	return &Scheduler{
		systems: &SimpleCache[System]{
			itemIndices: make(map[string]int),
			maxCapacity: capacity,
		},
	}
}

func (s *Scheduler) Register(name string, sys System) (int, error) {
	idx, err := s.systems.Register(name, sys)
	if err != nil {
		var dup DuplicateKeyError
		if errors.As(err, &dup) {
			return -1, SystemExistsError{Name: name}
		}
		return -1, err
	}
	s.names = append(s.names, name)
	return idx, nil
}

// System returns the system registered under name.
func (s *Scheduler) System(name string) (System, bool) {
	idx, ok := s.systems.GetIndex(name)
	if !ok {
		return nil, false
	}
	return *s.systems.GetItem(idx), true
}

func (s *Scheduler) Len() int {
	return s.systems.Len()
}

// Run executes every system once and stops at the first failure.
func (s *Scheduler) Run(w *World) error {
	for i, sys := range s.systems.Items() {
		name := s.names[i]
		w.AddLock(schedulerLockBit)
		runErr := sys.Run(w)
		flushErr := w.RemoveLock(schedulerLockBit)
		if runErr != nil {
			w.log.Debug("system failed", zap.String("system", name), zap.Error(runErr))
			return fmt.Errorf("system %q failed: %w", name, runErr)
		}
		if flushErr != nil {
			return fmt.Errorf("failed to apply operations queued by system %q: %w", name, flushErr)
		}
	}
	return nil
}

// Each1 calls fn for every active entity holding A. Iteration stops at the
// first error.
func Each1[A any](w *World, fn func(Entity, *A) error, filters ...QueryNode) error {
	q := NewQuery1[A](w, filters...)
	return w.walk(func() error {
		for q.Next() {
			if err := fn(q.Entity(), q.Get()); err != nil {
				q.Reset()
				return err
			}
		}
		return nil
	})
}

func Each2[A, B any](w *World, fn func(Entity, *A, *B) error, filters ...QueryNode) error {
	q := NewQuery2[A, B](w, filters...)
	return w.walk(func() error {
		for q.Next() {
			a, b := q.Get()
			if err := fn(q.Entity(), a, b); err != nil {
				q.Reset()
				return err
			}
		}
		return nil
	})
}

func Each3[A, B, C any](w *World, fn func(Entity, *A, *B, *C) error, filters ...QueryNode) error {
	q := NewQuery3[A, B, C](w, filters...)
	return w.walk(func() error {
		for q.Next() {
			a, b, c := q.Get()
			if err := fn(q.Entity(), a, b, c); err != nil {
				q.Reset()
				return err
			}
		}
		return nil
	})
}
