package store

import (
	"testing"

	"forgechain/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tm-db/memdb"
)

func testBlock(height uint64, id string) *types.Block {
	return &types.Block{ID: id, Height: height, Version: types.CurrentBlockVersion, Signature: make([]byte, 64)}
}

func TestWindowPushEvictsOldest(t *testing.T) {
	w := NewWindow(2)
	w.Push(testBlock(1, "a"))
	w.Push(testBlock(2, "b"))
	w.Push(testBlock(3, "c"))

	assert.Equal(t, 2, w.Len())
	assert.False(t, w.Has("a"))
	assert.True(t, w.Has("b"))
	assert.True(t, w.Has("c"))
	assert.Equal(t, "c", w.GetLast().ID)
}

func TestWindowPopLast(t *testing.T) {
	w := NewWindow(10)
	w.Push(testBlock(1, "a"))
	w.Push(testBlock(2, "b"))

	popped := w.PopLast()
	assert.Equal(t, "b", popped.ID)
	assert.Equal(t, "a", w.GetLast().ID)
	assert.False(t, w.Has("b"))
}

func TestDurableBatchSaveAndLoad(t *testing.T) {
	d := NewDurableWithDB(memdb.NewDB(), log.TestingLogger())

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, d.BatchSave(testBlock(i, blockIDFor(i))))
	}

	recent, err := d.LoadLastNBlocks(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, blockIDFor(3), recent[0].ID)
	assert.Equal(t, blockIDFor(5), recent[2].ID)
}

func TestDurableDeleteByID(t *testing.T) {
	d := NewDurableWithDB(memdb.NewDB(), log.TestingLogger())
	require.NoError(t, d.BatchSave(testBlock(1, blockIDFor(1))))
	require.NoError(t, d.BatchSave(testBlock(2, blockIDFor(2))))

	require.NoError(t, d.DeleteByID(blockIDFor(2)))

	recent, err := d.LoadLastNBlocks(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, blockIDFor(1), recent[0].ID)
}

func TestDurableLoadBlocksOffset(t *testing.T) {
	d := NewDurableWithDB(memdb.NewDB(), log.TestingLogger())
	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, d.BatchSave(testBlock(i, blockIDFor(i))))
	}

	page, err := d.LoadBlocksOffset(2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, blockIDFor(2), page[0].ID)
	assert.Equal(t, blockIDFor(3), page[1].ID)
}

func blockIDFor(height uint64) string {
	return "block-" + string(rune('0'+height))
}
