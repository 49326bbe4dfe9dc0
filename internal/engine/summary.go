package engine

import (
	"context"

	"github.com/roach88/opsledger/internal/ops"
)

// JobSummary is one job grouping of an item with its live progress.
type JobSummary struct {
	Source     ops.Record   `json:"source"`
	Progress   ops.Progress `json:"progress"`
	Executions int          `json:"executions"`
	Drafts     int          `json:"drafts"`
}

// Summarize returns the progress of every job grouping of itemID, print
// jobs first, then cut-from-print chains, then standalone cut jobs. Within
// each group, jobs keep their creation order. All groupings are read from
// one snapshot.
func (e *Engine) Summarize(ctx context.Context, itemID string) ([]JobSummary, error) {
	if itemID == "" {
		return []JobSummary{}, nil
	}

	var prints, chains, cuts []JobSummary
	err := e.store.View(ctx, func(r ops.Reader) error {
		sources, err := r.ListRecords(ctx, ops.Filter{ItemID: itemID, IsSource: ops.Bool(true)})
		if err != nil {
			return err
		}
		for _, src := range sources {
			job, ok := ops.JobOf(src)
			if !ok {
				continue
			}
			s, err := summarize(ctx, r, src, job)
			if err != nil {
				return err
			}
			switch job.Class {
			case ops.ClassPrint:
				prints = append(prints, s)
			case ops.ClassCutFromPrint:
				chains = append(chains, s)
			default:
				cuts = append(cuts, s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeError("summary", "", err)
	}

	out := make([]JobSummary, 0, len(prints)+len(chains)+len(cuts))
	out = append(out, prints...)
	out = append(out, chains...)
	return append(out, cuts...), nil
}

func summarize(ctx context.Context, r ops.Reader, src ops.Record, job ops.JobRef) (JobSummary, error) {
	t, err := tally(ctx, r, job, "")
	if err != nil {
		return JobSummary{}, err
	}

	var f ops.Filter
	switch job.Class {
	case ops.ClassPrint:
		f = ops.Filter{PrintJobID: job.ID, IsSource: ops.Bool(false)}
	case ops.ClassCutFromPrint:
		f = ops.Filter{SourcePrintID: job.ID, Kind: ops.KindCut, IsSource: ops.Bool(false)}
	default:
		f = ops.Filter{CutJobID: job.ID, IsSource: ops.Bool(false)}
	}
	recs, err := r.ListRecords(ctx, f)
	if err != nil {
		return JobSummary{}, err
	}

	s := JobSummary{Source: src, Progress: t.progress(job), Executions: len(recs)}
	for _, rec := range recs {
		if rec.Draft {
			s.Drafts++
		}
	}
	return s, nil
}
