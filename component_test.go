package depot

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	X float64
	Y float64
}

type Health struct {
	Current int
	Max     int
}

// Frozen is a tag component.
type Frozen struct{}

type Label struct {
	Text string
}

func TestComponentRegistration(t *testing.T) {
	pos, err := ComponentFor[Position]()
	require.NoError(t, err)

	again, err := ComponentFor[Position]()
	require.NoError(t, err)
	assert.Same(t, pos, again, "registering a type twice must return the same descriptor")

	vel, err := ComponentFor[Velocity]()
	require.NoError(t, err)
	assert.NotEqual(t, pos.ID(), vel.ID())

	assert.Equal(t, reflect.TypeFor[Position](), pos.Type())
	assert.False(t, pos.Tag())
	assert.NotNil(t, pos.ElementType())

	byID, ok := ComponentByID(pos.ID())
	require.True(t, ok)
	assert.Same(t, pos, byID)
}

func TestTagComponent(t *testing.T) {
	frozen := FactoryNewComponent[Frozen]()
	assert.True(t, frozen.Tag())
	assert.Equal(t, "depot.Frozen", frozen.descriptor().String())
}

func TestComponentIDsFitMask(t *testing.T) {
	for _, c := range []Component{
		FactoryNewComponent[Position](),
		FactoryNewComponent[Velocity](),
		FactoryNewComponent[Health](),
		FactoryNewComponent[Frozen](),
		FactoryNewComponent[Label](),
	} {
		assert.Less(t, int(c.ID()), MaxComponentTypes, c.Type().String())
	}
}

func TestColumn(t *testing.T) {
	t.Run("swap remove keeps rows dense", func(t *testing.T) {
		col := newTypedColumn[Position](4)
		for i := range 3 {
			col.push(Position{X: float64(i)})
		}
		col.removeAt(0)

		require.Equal(t, 2, col.len())
		assert.Equal(t, 2.0, col.at(0).X)
		assert.Equal(t, 1.0, col.at(1).X)
	})

	t.Run("remove last row", func(t *testing.T) {
		col := newTypedColumn[Position](4)
		col.push(Position{X: 1})
		col.push(Position{X: 2})
		col.removeAt(1)

		require.Equal(t, 1, col.len())
		assert.Equal(t, 1.0, col.at(0).X)
	})

	t.Run("append value checks type", func(t *testing.T) {
		col := newTypedColumn[Position](0)
		_, err := col.appendValue(Velocity{})
		assert.Error(t, err)

		row, err := col.appendValue(Position{X: 5})
		require.NoError(t, err)
		assert.Equal(t, 0, row)
		assert.Equal(t, Position{X: 5}, col.value(0))
	})

	t.Run("append from another column", func(t *testing.T) {
		src := newTypedColumn[Health](0)
		src.push(Health{Current: 1})
		src.push(Health{Current: 2})

		dst := newTypedColumn[Health](0)
		dst.appendFrom(src, 1)
		assert.Equal(t, []Health{{Current: 2}}, dst.slice())
	})

	t.Run("tag columns count rows without storage", func(t *testing.T) {
		col := newTypedColumn[Frozen](8)
		require.True(t, col.tag)
		col.appendZero()
		col.appendZero()
		assert.Equal(t, 2, col.len())
		assert.Same(t, col.at(0), col.at(1))
		assert.Nil(t, col.slice())

		col.removeAt(0)
		assert.Equal(t, 1, col.len())
	})
}
