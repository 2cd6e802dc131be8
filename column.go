package depot

import (
	"fmt"
	"reflect"
	"unsafe"
)

// column is dense storage for one component type inside one archetype.
// Rows are unchecked: callers resolve them through the archetype entity set.
type column interface {
	len() int
	appendZero() int
	appendValue(v any) (int, error)
	appendFrom(src column, row int) int
	removeAt(row int)
	value(row int) any
}

var _ column = &typedColumn[struct{}]{}

type typedColumn[T any] struct {
	data []T

	// Zero-sized types keep one shared value and count rows instead.
	tag    bool
	shared T
	rows   int
}

func newTypedColumn[T any](capacity int) *typedColumn[T] {
	var zero T
	if unsafe.Sizeof(zero) == 0 {
		return &typedColumn[T]{tag: true}
	}
	return &typedColumn[T]{data: make([]T, 0, capacity)}
}

func (c *typedColumn[T]) len() int {
	if c.tag {
		return c.rows
	}
	return len(c.data)
}

func (c *typedColumn[T]) push(v T) int {
	if c.tag {
		c.rows++
		return c.rows - 1
	}
	c.data = append(c.data, v)
	return len(c.data) - 1
}

func (c *typedColumn[T]) appendZero() int {
	var zero T
	return c.push(zero)
}

func (c *typedColumn[T]) appendValue(v any) (int, error) {
	typed, ok := v.(T)
	if !ok {
		return -1, fmt.Errorf("value of type %T does not fit column of %s", v, reflect.TypeFor[T]())
	}
	return c.push(typed), nil
}

func (c *typedColumn[T]) appendFrom(src column, row int) int {
	return c.push(*src.(*typedColumn[T]).at(row))
}

// removeAt moves the last row into row and shrinks by one.
func (c *typedColumn[T]) removeAt(row int) {
	if c.tag {
		c.rows--
		return
	}
	last := len(c.data) - 1
	c.data[row] = c.data[last]
	var zero T
	c.data[last] = zero
	c.data = c.data[:last]
}

func (c *typedColumn[T]) at(row int) *T {
	if c.tag {
		return &c.shared
	}
	return &c.data[row]
}

func (c *typedColumn[T]) value(row int) any {
	return *c.at(row)
}

// slice exposes the raw rows. Tag columns have no per-row storage and return nil.
func (c *typedColumn[T]) slice() []T {
	return c.data
}
