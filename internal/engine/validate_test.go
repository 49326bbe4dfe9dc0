package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opsledger/internal/ops"
	"github.com/roach88/opsledger/internal/testutil"
)

// 30 + 40 committed, a third record proposes 40 against 100.
func TestValidateQuantity_PrintOverPlan(t *testing.T) {
	f := newFixture(t)
	printSrc, _ := f.importPrint(100)
	f.exec(printSrc, 30)
	f.exec(printSrc, 40)
	third := f.exec(printSrc, 0)

	v := f.engine.ValidateQuantity(f.ctx, third, 40)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Error, "110")
	assert.Contains(t, v.Error, "100")
}

func TestValidateQuantity_PrintCompletes(t *testing.T) {
	f := newFixture(t)
	printSrc, _ := f.importPrint(100)
	f.exec(printSrc, 70)
	rec := f.exec(printSrc, 0)

	v := f.engine.ValidateQuantity(f.ctx, rec, 30)
	assert.True(t, v.Valid)
	assert.NotEmpty(t, v.Warning)
	assert.Empty(t, v.Error)

	v = f.engine.ValidateQuantity(f.ctx, rec, 29)
	assert.Equal(t, ops.Validation{Valid: true}, v)
}

func TestValidateQuantity_ExcludesEditedRecord(t *testing.T) {
	f := newFixture(t)
	printSrc, _ := f.importPrint(100)
	rec := f.exec(printSrc, 80)

	// Raising 80 to 90 is checked as 0 + 90, not 80 + 90.
	v := f.engine.ValidateQuantity(f.ctx, rec, 90)
	assert.True(t, v.Valid)
}

// The printed ceiling binds before the planned ceiling.
func TestValidateQuantity_CutExceedsPrinted(t *testing.T) {
	f := newFixture(t)
	printSrc, cutSrc := f.importPrint(100)
	f.exec(printSrc, 60)
	f.exec(cutSrc, 50)
	rec := f.exec(cutSrc, 0)

	v := f.engine.ValidateQuantity(f.ctx, rec, 15)
	assert.False(t, v.Valid)
	assert.Equal(t, "total cut (65) would exceed total printed (60)", v.Error)

	v = f.engine.ValidateQuantity(f.ctx, rec, 10)
	assert.True(t, v.Valid)
	assert.Empty(t, v.Warning)
}

func TestValidateQuantity_CutFromPrintPlanCeiling(t *testing.T) {
	f := newFixture(t)
	printSrc, cutSrc := f.importPrint(100)
	f.exec(printSrc, 100)
	f.exec(cutSrc, 90)
	rec := f.exec(cutSrc, 0)

	v := f.engine.ValidateQuantity(f.ctx, rec, 10)
	assert.True(t, v.Valid)
	assert.Equal(t, "this operation completes the cut job", v.Warning)

	// An over-printed job: printed 120 against a plan of 100.
	f.exec(printSrc, 20)
	v = f.engine.ValidateQuantity(f.ctx, rec, 11)
	assert.False(t, v.Valid)
	assert.Equal(t, "total cut (101) would exceed planned quantity (100)", v.Error)
}

func TestValidateQuantity_StandaloneCut(t *testing.T) {
	f := newFixture(t)
	cutSrc := f.importCut(200)
	f.exec(cutSrc, 150)
	rec := f.exec(cutSrc, 0)

	assert.False(t, f.engine.ValidateQuantity(f.ctx, rec, 51).Valid)
	v := f.engine.ValidateQuantity(f.ctx, rec, 50)
	assert.True(t, v.Valid)
	assert.NotEmpty(t, v.Warning)
}

func TestValidateQuantity_PrintFloor(t *testing.T) {
	f := newFixture(t)
	printSrc, cutSrc := f.importPrint(100)
	printed := f.exec(printSrc, 60)
	f.exec(cutSrc, 50)

	v := f.engine.ValidateQuantity(f.ctx, printed, 40)
	assert.False(t, v.Valid)
	assert.Equal(t, "total printed (40) would fall below total already cut (50)", v.Error)

	assert.True(t, f.engine.ValidateQuantity(f.ctx, printed, 50).Valid)
}

func TestValidateQuantity_Rejections(t *testing.T) {
	f := newFixture(t)
	printSrc, _ := f.importPrint(100)
	rec := f.exec(printSrc, 0)

	v := f.engine.ValidateQuantity(f.ctx, rec, -1)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Error, "negative")

	v = f.engine.ValidateQuantity(f.ctx, printSrc.ID, 5)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Error, "source records")

	v = f.engine.ValidateQuantity(f.ctx, "missing", 5)
	assert.False(t, v.Valid)
	assert.Equal(t, "unknown record missing", v.Error)
}

func TestValidateRecord_AdHocIsUnconstrained(t *testing.T) {
	f := newFixture(t)
	v := f.engine.ValidateRecord(f.ctx, ops.Record{ID: "adhoc", Kind: ops.KindPrint}, 1000)
	assert.Equal(t, ops.Validation{Valid: true}, v)
}

func TestValidateRecord_MissingSourceCapsAtZero(t *testing.T) {
	f := newFixture(t)
	rec := ops.Record{ID: "r", Kind: ops.KindPrint, PrintJobID: "job-unknown"}

	v := f.engine.ValidateRecord(f.ctx, rec, 1)
	assert.False(t, v.Valid)
	assert.Equal(t, "total printed (1) would exceed planned quantity (0)", v.Error)
}

// A store that cannot be read never blocks an edit.
func TestValidateQuantity_FailsOpen(t *testing.T) {
	f := newFixture(t)
	printSrc, _ := f.importPrint(100)
	f.exec(printSrc, 100)
	rec := f.exec(printSrc, 0)

	e, fs := f.faulty()
	fs.FailReads(testutil.ErrInjected)

	v := e.ValidateQuantity(f.ctx, rec, 500)
	assert.Equal(t, ops.Validation{Valid: true}, v)

	// A record already in hand, with the snapshot read failing.
	v = e.ValidateRecord(f.ctx, f.get(rec), 500)
	assert.Equal(t, ops.Validation{Valid: true}, v)

	fs.FailReads(nil)
	require.False(t, e.ValidateQuantity(f.ctx, rec, 500).Valid)
}
