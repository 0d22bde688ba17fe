package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreRoundTrip(t *testing.T) {
	store := NewMemStore()
	key := NewKey("fam", "a", "b")

	got, err := store.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Put(key, []byte("v")))
	got, err = store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, store.Delete(key))
	got, err = store.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemStoreListIsPrefixScopedAndOrdered(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Put(NewKey("fam", "p", "2"), []byte("b")))
	require.NoError(t, store.Put(NewKey("fam", "p", "1"), []byte("a")))
	require.NoError(t, store.Put(NewKey("fam", "q", "1"), []byte("c")))
	require.NoError(t, store.Put(NewKey("other", "p", "1"), []byte("d")))

	entries, err := store.List("fam", "p")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"p", "1"}, entries[0].Attrs)
	assert.Equal(t, []byte("a"), entries[0].Value)
	assert.Equal(t, []byte("b"), entries[1].Value)

	// a parent attr must not match as a plain string prefix
	require.NoError(t, store.Put(NewKey("fam", "pp", "1"), []byte("e")))
	entries, err = store.List("fam", "p")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMemForkOverlay(t *testing.T) {
	store := NewMemStore()
	kept := NewKey("fam", "kept")
	replaced := NewKey("fam", "replaced")
	removed := NewKey("fam", "removed")
	require.NoError(t, store.Put(kept, []byte("base")))
	require.NoError(t, store.Put(replaced, []byte("old")))
	require.NoError(t, store.Put(removed, []byte("doomed")))

	fork := store.Fork()
	require.NoError(t, fork.Put(replaced, []byte("new")))
	require.NoError(t, fork.Delete(removed))
	require.NoError(t, fork.Put(NewKey("fam", "added"), []byte("fresh")))

	// the fork sees its writes
	got, err := fork.Get(replaced)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
	got, err = fork.Get(removed)
	require.NoError(t, err)
	assert.Nil(t, got)

	entries, err := fork.List("fam")
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// the base does not, until commit
	got, err = store.Get(replaced)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), got)

	fork.Commit()
	got, err = store.Get(replaced)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
	got, err = store.Get(removed)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemForkDiscard(t *testing.T) {
	store := NewMemStore()
	key := NewKey("fam", "k")
	require.NoError(t, store.Put(key, []byte("base")))

	fork := store.Fork()
	require.NoError(t, fork.Put(key, []byte("pending")))
	require.NoError(t, fork.Put(NewKey("fam", "extra"), []byte("x")))
	fork.Discard()

	got, err := fork.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("base"), got)

	entries, err := store.List("fam")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
