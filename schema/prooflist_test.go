package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iptrade/model"
)

func TestAppendHistoryKeepsOrder(t *testing.T) {
	store := NewMemStore()
	for _, v := range []string{"first", "second", "third"} {
		require.NoError(t, appendHistory(store, "fam", "parent", []byte(v)))
	}
	values, err := historyValues(store, "fam", "parent")
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, []byte("first"), values[0])
	assert.Equal(t, []byte("third"), values[2])
}

func TestHistoryRoot(t *testing.T) {
	store := NewMemStore()

	root, err := historyRoot(store, "fam", "parent")
	require.NoError(t, err)
	assert.True(t, root.IsZero(), "empty history has the zero root")

	require.NoError(t, appendHistory(store, "fam", "parent", []byte("a")))
	root, err = historyRoot(store, "fam", "parent")
	require.NoError(t, err)
	assert.Equal(t, model.NewHash([]byte("a")), root, "single leaf is its own root")

	require.NoError(t, appendHistory(store, "fam", "parent", []byte("b")))
	root, err = historyRoot(store, "fam", "parent")
	require.NoError(t, err)
	ha, hb := model.NewHash([]byte("a")), model.NewHash([]byte("b"))
	assert.Equal(t, model.NewHash(append(ha[:], hb[:]...)), root)

	// odd leaf is promoted unchanged
	require.NoError(t, appendHistory(store, "fam", "parent", []byte("c")))
	root, err = historyRoot(store, "fam", "parent")
	require.NoError(t, err)
	pair := model.NewHash(append(ha[:], hb[:]...))
	hc := model.NewHash([]byte("c"))
	assert.Equal(t, model.NewHash(append(pair[:], hc[:]...)), root)
}

func TestHistoryRootIsContentSensitive(t *testing.T) {
	a, b := NewMemStore(), NewMemStore()
	require.NoError(t, appendHistory(a, "fam", "p", []byte("x")))
	require.NoError(t, appendHistory(a, "fam", "p", []byte("y")))
	require.NoError(t, appendHistory(b, "fam", "p", []byte("y")))
	require.NoError(t, appendHistory(b, "fam", "p", []byte("x")))

	rootA, err := historyRoot(a, "fam", "p")
	require.NoError(t, err)
	rootB, err := historyRoot(b, "fam", "p")
	require.NoError(t, err)
	assert.NotEqual(t, rootA, rootB, "order is part of the proof")
}
