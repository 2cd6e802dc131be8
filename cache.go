package depot

var _ Cache[any] = &SimpleCache[any]{}

func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	return &c.items[index]
}

// Register stores item under key and returns its index. Keys are unique.
func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if _, exists := c.itemIndices[key]; exists {
		return -1, DuplicateKeyError{Key: key}
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, CacheFullError{Capacity: c.maxCapacity}
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)

	return idx, nil
}

func (c *SimpleCache[T]) Len() int {
	return len(c.items)
}

// Items returns the registered items in registration order.
func (c *SimpleCache[T]) Items() []T {
	return c.items
}

func (c *SimpleCache[T]) Clear() {
	c.items = make([]T, 0, c.maxCapacity)
	c.itemIndices = make(map[string]int)
}
