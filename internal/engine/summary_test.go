package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opsledger/internal/ops"
)

func TestSummarize_Ordering(t *testing.T) {
	f := newFixture(t)

	// Creation order deliberately interleaves kinds.
	cutOnly := f.importCut(30)
	printSrc, cutSrc := f.importPrint(100)
	f.exec(printSrc, 60)
	f.exec(cutSrc, 20)
	_, err := f.engine.Split(f.ctx, printSrc.ID)
	require.NoError(t, err)

	elsewhere := ops.WorkOrder{ID: "wo-2", ItemID: "item-2"}
	res := f.engine.ImportPlans(f.ctx, elsewhere, []ops.PlanDescription{{Name: "other", Kind: ops.PlanCut, Quantity: 1}})
	require.True(t, res.OK())

	got, err := f.engine.Summarize(f.ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, printSrc.ID, got[0].Source.ID)
	assert.Equal(t, ops.ClassPrint, got[0].Progress.Job.Class)
	assert.Equal(t, int64(60), got[0].Progress.Executed)
	assert.Equal(t, 2, got[0].Executions)
	assert.Equal(t, 1, got[0].Drafts)

	assert.Equal(t, cutSrc.ID, got[1].Source.ID)
	assert.Equal(t, ops.ClassCutFromPrint, got[1].Progress.Job.Class)
	assert.Equal(t, int64(20), got[1].Progress.Executed)
	assert.Equal(t, int64(40), got[1].Progress.Remaining)
	assert.Equal(t, 2, got[1].Executions, "committed cut plus the split's stub")

	assert.Equal(t, cutOnly.ID, got[2].Source.ID)
	assert.Equal(t, ops.ClassCut, got[2].Progress.Job.Class)
	assert.Equal(t, int64(30), got[2].Progress.Remaining)
}

func TestSummarize_Empty(t *testing.T) {
	f := newFixture(t)

	got, err := f.engine.Summarize(f.ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	got, err = f.engine.Summarize(f.ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSummarize_StoreFailure(t *testing.T) {
	f := newFixture(t)
	e, fs := f.faulty()
	fs.FailReads(errBoom)

	_, err := e.Summarize(f.ctx, "item-1")
	assert.Equal(t, ErrCodeStore, CodeOf(err))
}
