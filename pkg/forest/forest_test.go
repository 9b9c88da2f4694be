package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForestChildrenKeepInsertionOrder(t *testing.T) {
	f := New[string]()
	root := f.CreateRoot("term")
	for _, name := range []string{"a", "b", "c"} {
		_, err := f.AppendChild(root, name)
		require.NoError(t, err)
	}

	children, err := f.Children(root)
	require.NoError(t, err)
	require.Len(t, children, 3)

	var names []string
	for _, c := range children {
		v, err := f.Value(c)
		require.NoError(t, err)
		names = append(names, v)

		parent, ok, err := f.Parent(c)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, root, parent)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, 4, f.Len())
}

func TestForestSiblingLinks(t *testing.T) {
	f := New[int]()
	root := f.CreateRoot(0)
	first, _ := f.AppendChild(root, 1)
	second, _ := f.AppendChild(root, 2)

	assert.Nil(t, f.nodes[first.idx].prevSibling)
	assert.Equal(t, second, *f.nodes[first.idx].nextSibling)
	assert.Equal(t, first, *f.nodes[second.idx].prevSibling)
	assert.Nil(t, f.nodes[second.idx].nextSibling)
	assert.Equal(t, first, *f.nodes[root.idx].firstChild)
	assert.Equal(t, second, *f.nodes[root.idx].lastChild)
}

func TestForestRejectsForeignHandle(t *testing.T) {
	a := New[string]()
	b := New[string]()
	foreign := b.CreateRoot("other")
	a.CreateRoot("mine")

	_, err := a.AppendChild(foreign, "child")
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = a.AppendChild(Handle{}, "child")
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = a.Children(foreign)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestForestHandlesSurviveGrowth(t *testing.T) {
	f := New[int]()
	root := f.CreateRoot(-1)
	other := f.CreateRoot(-2)
	for i := 0; i < 500; i++ {
		_, err := f.AppendChild(other, i)
		require.NoError(t, err)
	}
	child, err := f.AppendChild(root, 42)
	require.NoError(t, err)

	v, err := f.Value(child)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	children, err := f.Children(root)
	require.NoError(t, err)
	assert.Equal(t, []Handle{child}, children)
	assert.Equal(t, []Handle{root, other}, f.Roots())
}

func TestForestRootHasNoParent(t *testing.T) {
	f := New[string]()
	root := f.CreateRoot("r")
	_, ok, err := f.Parent(root)
	require.NoError(t, err)
	assert.False(t, ok)
}
