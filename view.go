package depot

import "iter"

// view walks a cursor and reports when the archetype under it changes, so
// typed queries only look their columns up once per archetype.
type view struct {
	cursor *Cursor
	arch   *archetype
}

func newView(w *World, types []*componentType, filters []QueryNode) view {
	components := make([]Component, len(types))
	for i, ct := range types {
		components[i] = ct
	}
	var node QueryNode
	if len(filters) == 0 {
		node = newLeafNode(components)
	} else {
		node = newCompositeNode(OpAnd, components, filters)
	}
	return view{cursor: newCursor(node, w)}
}

// next advances the cursor. moved is true when the new position is in a
// different archetype than the previous one.
func (v *view) next() (ok, moved bool) {
	if !v.cursor.Next() {
		v.arch = nil
		return false, false
	}
	if v.cursor.current != v.arch {
		v.arch = v.cursor.current
		return true, true
	}
	return true, false
}

func (v *view) Entity() Entity {
	return v.cursor.Entity()
}

// Entities yields the matching active entities with the world locked for
// the duration of the loop.
func (v *view) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		v.scoped(func() {
			for {
				ok, _ := v.next()
				if !ok {
					return
				}
				if !yield(v.Entity()) {
					v.Reset()
					return
				}
			}
		})
	}
}

// scoped restarts the view and runs fn with the world's iteration lock held.
func (v *view) scoped(fn func()) {
	v.cursor.scoped(func() {
		v.Reset()
		fn()
	})
}

func (v *view) Reset() {
	v.arch = nil
	v.cursor.Reset()
}

// Len counts the matching entities, active or not.
func (v *view) Len() int {
	return v.cursor.TotalMatched()
}

func column1[T any](a *archetype, ct *componentType) *typedColumn[T] {
	col, _ := archetypeColumn[T](a, ct)
	return col
}

// Query1 iterates the entities holding A.
type Query1[A any] struct {
	view
	a    *componentType
	colA *typedColumn[A]
}

func NewQuery1[A any](w *World, filters ...QueryNode) *Query1[A] {
	a := componentOf[A]()
	return &Query1[A]{view: newView(w, []*componentType{a}, filters), a: a}
}

func (q *Query1[A]) Next() bool {
	ok, moved := q.next()
	if moved {
		q.colA = column1[A](q.arch, q.a)
	}
	return ok
}

func (q *Query1[A]) Get() *A {
	return q.colA.at(q.cursor.Row())
}

// Each calls fn for every match with the world locked, flushing enqueued
// operations afterwards.
func (q *Query1[A]) Each(fn func(Entity, *A)) {
	q.scoped(func() {
		for q.Next() {
			fn(q.Entity(), q.Get())
		}
	})
}

// All yields each entity with its component, locking the world like Each.
func (q *Query1[A]) All() iter.Seq2[Entity, *A] {
	return func(yield func(Entity, *A) bool) {
		q.scoped(func() {
			for q.Next() {
				if !yield(q.Entity(), q.Get()) {
					q.Reset()
					return
				}
			}
		})
	}
}

// Query2 iterates the entities holding A and B.
type Query2[A, B any] struct {
	view
	a, b *componentType
	colA *typedColumn[A]
	colB *typedColumn[B]
}

func NewQuery2[A, B any](w *World, filters ...QueryNode) *Query2[A, B] {
	a, b := componentOf[A](), componentOf[B]()
	return &Query2[A, B]{view: newView(w, []*componentType{a, b}, filters), a: a, b: b}
}

func (q *Query2[A, B]) Next() bool {
	ok, moved := q.next()
	if moved {
		q.colA = column1[A](q.arch, q.a)
		q.colB = column1[B](q.arch, q.b)
	}
	return ok
}

func (q *Query2[A, B]) Get() (*A, *B) {
	row := q.cursor.Row()
	return q.colA.at(row), q.colB.at(row)
}

func (q *Query2[A, B]) Each(fn func(Entity, *A, *B)) {
	q.scoped(func() {
		for q.Next() {
			a, b := q.Get()
			fn(q.Entity(), a, b)
		}
	})
}

// Query3 iterates the entities holding A, B and C.
type Query3[A, B, C any] struct {
	view
	a, b, c *componentType
	colA    *typedColumn[A]
	colB    *typedColumn[B]
	colC    *typedColumn[C]
}

func NewQuery3[A, B, C any](w *World, filters ...QueryNode) *Query3[A, B, C] {
	a, b, c := componentOf[A](), componentOf[B](), componentOf[C]()
	return &Query3[A, B, C]{view: newView(w, []*componentType{a, b, c}, filters), a: a, b: b, c: c}
}

func (q *Query3[A, B, C]) Next() bool {
	ok, moved := q.next()
	if moved {
		q.colA = column1[A](q.arch, q.a)
		q.colB = column1[B](q.arch, q.b)
		q.colC = column1[C](q.arch, q.c)
	}
	return ok
}

func (q *Query3[A, B, C]) Get() (*A, *B, *C) {
	row := q.cursor.Row()
	return q.colA.at(row), q.colB.at(row), q.colC.at(row)
}

func (q *Query3[A, B, C]) Each(fn func(Entity, *A, *B, *C)) {
	q.scoped(func() {
		for q.Next() {
			a, b, c := q.Get()
			fn(q.Entity(), a, b, c)
		}
	})
}

// Query4 iterates the entities holding A, B, C and D.
type Query4[A, B, C, D any] struct {
	view
	a, b, c, d *componentType
	colA       *typedColumn[A]
	colB       *typedColumn[B]
	colC       *typedColumn[C]
	colD       *typedColumn[D]
}

func NewQuery4[A, B, C, D any](w *World, filters ...QueryNode) *Query4[A, B, C, D] {
	a, b, c, d := componentOf[A](), componentOf[B](), componentOf[C](), componentOf[D]()
	return &Query4[A, B, C, D]{
		view: newView(w, []*componentType{a, b, c, d}, filters),
		a:    a, b: b, c: c, d: d,
	}
}

func (q *Query4[A, B, C, D]) Next() bool {
	ok, moved := q.next()
	if moved {
		q.colA = column1[A](q.arch, q.a)
		q.colB = column1[B](q.arch, q.b)
		q.colC = column1[C](q.arch, q.c)
		q.colD = column1[D](q.arch, q.d)
	}
	return ok
}

func (q *Query4[A, B, C, D]) Get() (*A, *B, *C, *D) {
	row := q.cursor.Row()
	return q.colA.at(row), q.colB.at(row), q.colC.at(row), q.colD.at(row)
}

func (q *Query4[A, B, C, D]) Each(fn func(Entity, *A, *B, *C, *D)) {
	q.scoped(func() {
		for q.Next() {
			a, b, c, d := q.Get()
			fn(q.Entity(), a, b, c, d)
		}
	})
}
