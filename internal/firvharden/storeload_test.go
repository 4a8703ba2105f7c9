package firvharden

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertStoreLoad_PrependsBlockAndSpillsArgs(t *testing.T) {
	f := newAddFunc()
	oldEntry := f.Blocks[0]
	diag := &recordingDiagnostics{}

	sl, err := insertStoreLoad("add", f, diag)
	require.NoError(t, err)

	require.Len(t, f.Blocks, 2)
	assert.Same(t, sl, f.Blocks[0])
	assert.Equal(t, "StoreLoad", sl.LocalName)

	// one alloca+store+load triplet per argument
	require.Len(t, sl.Insts, 6)

	br, ok := sl.Term.(*ir.TermBr)
	require.True(t, ok, "StoreLoad must end with a terminator branching to the old entry")
	assert.Same(t, oldEntry, br.Target)
}

func TestInsertStoreLoad_ReplacesArgUsesInRest(t *testing.T) {
	f := newAddFunc()
	oldEntry := f.Blocks[0]
	sumBefore := oldEntry.Insts[0].(*ir.InstAdd)
	argA, argB := f.Params[0], f.Params[1]

	diag := &recordingDiagnostics{}
	_, err := insertStoreLoad("add", f, diag)
	require.NoError(t, err)

	assert.NotEqual(t, argA, sumBefore.X, "argument use must have been replaced by the reloaded value")
	assert.NotEqual(t, argB, sumBefore.Y)
}

func TestInsertStoreLoad_LoopFunction(t *testing.T) {
	f := newLoopyFunc()
	diag := &recordingDiagnostics{}

	sl, err := insertStoreLoad("loopy", f, diag)
	require.NoError(t, err)

	require.Len(t, f.Blocks, 4)
	assert.Same(t, sl, f.Blocks[0])
	_, ok := sl.Term.(*ir.TermBr)
	assert.True(t, ok)
}
