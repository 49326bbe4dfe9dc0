package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opsledger/internal/engine"
	"github.com/roach88/opsledger/internal/ops"
)

func TestWriteSummary_Golden(t *testing.T) {
	jobs := []engine.JobSummary{
		{
			Source: ops.Record{ID: "rec-1", InternalCode: "FO2026-20260302-IMP-093015-1", PlanName: "Fachada principal"},
			Progress: ops.Progress{
				Job:     ops.JobRef{Class: ops.ClassPrint, ID: "job-1"},
				Planned: 120, Executed: 70, Remaining: 50, Percent: 58,
			},
			Executions: 3,
			Drafts:     1,
		},
		{
			Source: ops.Record{ID: "rec-2", InternalCode: "FO2026-20260302-IMP-093015-1-CORTE", PlanName: "Fachada principal"},
			Progress: ops.Progress{
				Job:     ops.JobRef{Class: ops.ClassCutFromPrint, ID: "rec-1"},
				Planned: 120, Executed: 40, Remaining: 30, Percent: 33,
				TotalPrinted: ops.Int64(70),
				CanCut:       ops.Bool(true),
			},
			Executions: 2,
		},
		{
			Source: ops.Record{ID: "rec-3", InternalCode: "FO2026-20260302-CRT-093015-2", PlanName: "Recorte letras", Completed: true},
			Progress: ops.Progress{
				Job:     ops.JobRef{Class: ops.ClassCut, ID: "job-3"},
				Planned: 40, Executed: 40, Remaining: 0, Percent: 100,
			},
			Executions: 1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, "item-1", jobs))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "summary", buf.Bytes())
}

func TestWriteSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, "item-9", nil))
	assert.Equal(t, "Item item-9: 0 job(s)\n", buf.String())
}

func TestWriteProgress_NothingToCut(t *testing.T) {
	var buf bytes.Buffer
	p := ops.Progress{Planned: 10, TotalPrinted: ops.Int64(0), CanCut: ops.Bool(false)}
	require.NoError(t, writeProgress(&buf, p))
	assert.Equal(t, "  planned 10  executed 0  remaining 0  0%  printed 0  nothing to cut\n", buf.String())
}

func TestWriteRecords(t *testing.T) {
	recs := []ops.Record{
		{ID: "rec-1", Kind: ops.KindPrint, Flexible: true, IsSource: true, Planned: 30, InternalCode: "FO2026-20260302-FLX-093015-1"},
		{ID: "rec-4", Kind: ops.KindCut, Executed: 12, Draft: true},
	}

	var buf bytes.Buffer
	require.NoError(t, writeRecords(&buf, recs))
	assert.Equal(t,
		"rec-1  src  print/flex     30  FO2026-20260302-FLX-093015-1\n"+
			"rec-4  exec cut            12 draft\n",
		buf.String())

	buf.Reset()
	require.NoError(t, writeRecords(&buf, nil))
	assert.Equal(t, "No records\n", buf.String())
}
