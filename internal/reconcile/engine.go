package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"alternator-reqgen/internal/common/config"
	"alternator-reqgen/internal/common/logger"
	"alternator-reqgen/internal/common/metrics"
	"alternator-reqgen/internal/common/observability"
	"alternator-reqgen/internal/models"
)

// Files names every file a pass reads or writes.
type Files struct {
	Generated        string
	ReferencePending string
	ReferenceReply   string
	CandidatePending string
	CandidateReply   string
	FullInvalid      string
	FullValid        string
	FullOther        string
	TestInvalid      string
	TestValid        string
}

// FilesFromConfig resolves the configured paths against the work dir.
func FilesFromConfig(p config.PathsConfig) Files {
	return Files{
		Generated:        p.Resolve(p.Generated),
		ReferencePending: p.Resolve(p.ReferencePending),
		ReferenceReply:   p.Resolve(p.ReferenceReply),
		CandidatePending: p.Resolve(p.CandidatePending),
		CandidateReply:   p.Resolve(p.CandidateReply),
		FullInvalid:      p.Resolve(p.FullInvalid),
		FullValid:        p.Resolve(p.FullValid),
		FullOther:        p.Resolve(p.FullOther),
		TestInvalid:      p.Resolve(p.TestInvalid),
		TestValid:        p.Resolve(p.TestValid),
	}
}

// PassResult summarizes one reconciliation pass.
type PassResult struct {
	RunID      string
	Merged     int
	Pending    int
	Resolved   int
	Classified map[models.Bucket]int
}

// Engine runs merge, split and classify over the workspace files.
type Engine struct {
	store      Store
	workspace  Workspace
	files      Files
	classifier *Classifier
	obs        *observability.Observability
	log        logger.Logger
}

func NewEngine(store Store, ws Workspace, files Files, classifier *Classifier, obs *observability.Observability, log logger.Logger) *Engine {
	if obs == nil {
		obs = observability.Noop()
	}
	return &Engine{
		store:      store,
		workspace:  ws,
		files:      files,
		classifier: classifier,
		obs:        obs,
		log:        log,
	}
}

// Pass runs one reconciliation pass. Running it again with no new replies
// changes nothing.
func (e *Engine) Pass(ctx context.Context) (*PassResult, error) {
	res := &PassResult{
		RunID:      uuid.NewString(),
		Classified: make(map[models.Bucket]int, len(models.Buckets)),
	}
	log := e.log.WithFields(map[string]interface{}{"runId": res.RunID})
	log.Info("Reconciliation pass started", nil)

	for _, p := range []string{e.files.TestInvalid, e.files.TestValid} {
		if err := e.workspace.EnsureEmptyList(p); err != nil {
			return nil, err
		}
	}

	history, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	err = e.obs.Track(ctx, observability.PhaseMerge, func() error {
		res.Merged, err = e.merge(ctx, history)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("merge replies: %w", err)
	}

	err = e.obs.Track(ctx, observability.PhaseSplit, func() error {
		res.Pending, res.Resolved, err = e.split(history)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("split generated cases: %w", err)
	}

	err = e.obs.Track(ctx, observability.PhaseClassify, func() error {
		return e.classify(res.Classified)
	})
	if err != nil {
		return nil, fmt.Errorf("classify replies: %w", err)
	}

	log.Info("Reconciliation pass finished", map[string]interface{}{
		"merged":   res.Merged,
		"pending":  res.Pending,
		"resolved": res.Resolved,
		"invalid":  res.Classified[models.BucketInvalid],
		"other":    res.Classified[models.BucketOther],
		"valid":    res.Classified[models.BucketValid],
	})
	return res, nil
}

// merge folds the reference reply buffer into history and clears the buffer.
func (e *Engine) merge(ctx context.Context, history *History) (int, error) {
	if !e.workspace.Exists(e.files.ReferenceReply) {
		return 0, nil
	}
	replies, err := e.workspace.ReadResolved(e.files.ReferenceReply)
	if err != nil {
		return 0, err
	}
	merged := 0
	if len(replies) > 0 {
		merged = history.Merge(replies)
		if err := e.store.Persist(ctx, history); err != nil {
			return 0, err
		}
		metrics.ResponsesMerged.Add(float64(merged))
	}
	if err := e.workspace.Truncate(e.files.ReferenceReply); err != nil {
		return 0, err
	}
	return merged, nil
}

// split routes generated cases with a cached reference response to the
// candidate pending file and the rest to the reference pending file.
func (e *Engine) split(history *History) (int, int, error) {
	generated, err := e.workspace.ReadCases(e.files.Generated)
	if err != nil {
		return 0, 0, err
	}
	var pending []models.TestCase
	var resolved []models.ResolvedCase
	for _, tc := range generated {
		if resp, ok := history.Lookup(tc.Request, tc.Body); ok {
			resolved = append(resolved, models.ResolvedCase{TestCase: tc, Reference: resp})
			continue
		}
		pending = append(pending, tc)
	}
	if err := e.workspace.WriteCases(e.files.ReferencePending, pending); err != nil {
		return 0, 0, err
	}
	if err := e.workspace.WriteResolved(e.files.CandidatePending, resolved); err != nil {
		return 0, 0, err
	}
	metrics.CasesSplit.WithLabelValues(metrics.StatePending).Add(float64(len(pending)))
	metrics.CasesSplit.WithLabelValues(metrics.StateResolved).Add(float64(len(resolved)))
	return len(pending), len(resolved), nil
}

// classify buckets the candidate reply buffer. A malformed response aborts
// before anything is written and leaves the buffer in place.
func (e *Engine) classify(counts map[models.Bucket]int) error {
	if !e.workspace.Exists(e.files.CandidateReply) {
		return nil
	}
	replies, err := e.workspace.ReadResolved(e.files.CandidateReply)
	if err != nil {
		return err
	}
	if len(replies) == 0 {
		return e.workspace.Truncate(e.files.CandidateReply)
	}

	full := make(map[models.Bucket][]models.ResolvedCase, len(models.Buckets))
	trimmed := make(map[models.Bucket][]models.TestCase, len(models.Buckets))
	for _, r := range replies {
		bucket, err := e.classifier.Classify(r)
		if err != nil {
			return err
		}
		full[bucket] = append(full[bucket], r)
		trimmed[bucket] = append(trimmed[bucket], r.Trim())
		counts[bucket]++
	}

	writes := []struct {
		path  string
		cases []models.ResolvedCase
	}{
		{e.files.FullInvalid, full[models.BucketInvalid]},
		{e.files.FullValid, full[models.BucketValid]},
		{e.files.FullOther, full[models.BucketOther]},
	}
	for _, w := range writes {
		if err := e.workspace.WriteResolved(w.path, w.cases); err != nil {
			return err
		}
	}
	if err := e.workspace.WriteCases(e.files.TestInvalid, trimmed[models.BucketInvalid]); err != nil {
		return err
	}
	if err := e.workspace.WriteCases(e.files.TestValid, trimmed[models.BucketValid]); err != nil {
		return err
	}

	for _, b := range models.Buckets {
		metrics.CasesClassified.WithLabelValues(string(b)).Add(float64(counts[b]))
	}
	return e.workspace.Truncate(e.files.CandidateReply)
}
