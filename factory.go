package depot

import (
	"fmt"

	"go.uber.org/zap"
)

type factory struct{}

var Factory factory

// NewWorld creates a world from DefaultConfig adjusted by opts. Worlds log
// nothing unless a logger is supplied.
func (f factory) NewWorld(opts ...Option) *World {
	o := worldOptions{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return newWorld(o.config, logger)
}

// NewWorldFromConfig creates a world from cfg, building its logger from
// cfg.Log unless an option supplies one.
func (f factory) NewWorldFromConfig(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := worldOptions{config: cfg}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		built, err := o.config.Log.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		logger = built
	}
	return newWorld(o.config, logger), nil
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func (f factory) NewCursor(query QueryNode, world *World) *Cursor {
	return newCursor(query, world)
}

func (f factory) NewScheduler(capacity int) *Scheduler {
	return newScheduler(capacity)
}

// FactoryNewComponent registers T and returns its typed token. It panics
// when the component registry is full.
func FactoryNewComponent[T any]() AccessibleComponent[T] {
	return AccessibleComponent[T]{Component: componentOf[T]()}
}

func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
