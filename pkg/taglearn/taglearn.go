package taglearn

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taglearn/taglearn/pkg/taglearn/artifact"
	"github.com/taglearn/taglearn/pkg/taglearn/corpus"
	"github.com/taglearn/taglearn/pkg/taglearn/feedback"
	"github.com/taglearn/taglearn/pkg/taglearn/ingest"
	"github.com/taglearn/taglearn/pkg/taglearn/internalerr"
	"github.com/taglearn/taglearn/pkg/taglearn/learn"
	"github.com/taglearn/taglearn/pkg/taglearn/store"
	"github.com/taglearn/taglearn/pkg/taglearn/tfidf"
)

// Tagger is the pipeline facade: tag generation, feedback synthesis, and
// weight learning over a document corpus, with learned weights feeding back
// into the next run through the store.
type Tagger struct {
	store     store.Store
	pipeline  *ingest.Pipeline
	generator *tfidf.Generator
	collector feedback.Collector
	learner   *learn.Learner
	outputDir string
	entropy   *ulid.MonotonicEntropy
	logger    *slog.Logger
}

// Options configures a Tagger instance. Store, Pipeline, Generator,
// Collector, and Learner are required. OutputDir is optional: when set, the
// three JSON artifacts are written there after each run.
type Options struct {
	Store     store.Store
	Pipeline  *ingest.Pipeline
	Generator *tfidf.Generator
	Collector feedback.Collector
	Learner   *learn.Learner
	OutputDir string
	Logger    *slog.Logger
}

// New creates a Tagger instance with the given dependencies.
func New(opts Options) (*Tagger, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", internalerr.ErrInvalidConfig)
	}
	if opts.Pipeline == nil || opts.Generator == nil || opts.Collector == nil || opts.Learner == nil {
		return nil, fmt.Errorf("%w: pipeline, generator, collector, and learner are required", internalerr.ErrInvalidConfig)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Tagger{
		store:     opts.Store,
		pipeline:  opts.Pipeline,
		generator: opts.Generator,
		collector: opts.Collector,
		learner:   opts.Learner,
		outputDir: opts.OutputDir,
		entropy:   ulid.Monotonic(rand.Reader, 0),
		logger:    logger,
	}, nil
}

// Close cleanly shuts down the Tagger instance
func (t *Tagger) Close() error {
	return t.store.Close()
}

// RunResult holds everything one pipeline run produced.
type RunResult struct {
	RunID    string
	Tags     []tfidf.DocumentTags
	Feedback []feedback.DocumentFeedback
	Weights  map[string]float64
	Metrics  Metrics
}

// Metrics summarizes a run.
type Metrics struct {
	Documents     int
	TagsGenerated int
	Approved      int
	Rejected      int
	Boosted       int
	Penalized     int
	Elapsed       time.Duration
}

// ApprovalRate returns the fraction of tags approved, in [0,1].
func (m Metrics) ApprovalRate() float64 {
	total := m.Approved + m.Rejected
	if total == 0 {
		return 0.0
	}
	return float64(m.Approved) / float64(total)
}

// Run executes the full pipeline over the given documents: generate tags
// with the previously learned weights, synthesize feedback, learn a fresh
// weight table, persist it (replacing the old one), and record the run.
func (t *Tagger) Run(ctx context.Context, docs []corpus.Document) (RunResult, error) {
	if len(docs) == 0 {
		return RunResult{}, fmt.Errorf("%w: nothing to process", internalerr.ErrNoDocuments)
	}

	started := time.Now()
	runID := ulid.MustNew(ulid.Timestamp(started), t.entropy).String()

	weights, err := t.store.LoadWeights(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("load weights: %w", err)
	}
	t.logger.Info("pipeline start", "run_id", runID, "documents", len(docs), "known_weights", len(weights))

	// Normalize every document once; stats and both downstream stages
	// reuse the processed form.
	processed := make([]ingest.ProcessedDoc, len(docs))
	stats := tfidf.NewCorpusStats()
	gendocs := make([]tfidf.Document, len(docs))
	for i, doc := range docs {
		processed[i] = t.pipeline.Process(doc.Text)
		keys := processed[i].Keys()
		stats.Add(keys, processed[i].Forms())
		gendocs[i] = tfidf.Document{Name: doc.Name, Keys: keys}
	}

	tags, err := t.generator.Generate(ctx, gendocs, stats, tfidf.Weights(weights))
	if err != nil {
		return RunResult{}, fmt.Errorf("generate tags: %w", err)
	}

	fb := make([]feedback.DocumentFeedback, len(docs))
	for i, doc := range docs {
		records, err := t.collector.Collect(ctx, feedback.Document{
			Name:    doc.Name,
			RawText: doc.Text,
			Keys:    gendocs[i].Keys,
		}, tags[i].Tags)
		if err != nil {
			return RunResult{}, fmt.Errorf("collect feedback for %s: %w", doc.Name, err)
		}
		fb[i] = feedback.DocumentFeedback{Filename: doc.Name, Records: records}
	}

	learned := t.learner.Learn(fb)

	if err := t.store.SaveWeights(ctx, learned); err != nil {
		return RunResult{}, fmt.Errorf("save weights: %w", err)
	}

	result := RunResult{
		RunID:    runID,
		Tags:     tags,
		Feedback: fb,
		Weights:  learned,
		Metrics:  buildMetrics(tags, fb, learned, time.Since(started)),
	}

	if err := t.store.SaveRun(ctx, toStoreRun(runID, started, result)); err != nil {
		return RunResult{}, fmt.Errorf("save run: %w", err)
	}

	if t.outputDir != "" {
		if err := t.writeArtifacts(result); err != nil {
			return RunResult{}, err
		}
	}

	t.logger.Info("pipeline done",
		"run_id", runID,
		"tags_generated", result.Metrics.TagsGenerated,
		"approval_rate", result.Metrics.ApprovalRate(),
		"tags_learned", len(learned),
		"elapsed", result.Metrics.Elapsed)

	return result, nil
}

// writeArtifacts persists the three JSON artifacts. Failures surface to the
// caller: a run whose results cannot be written is a failed run.
func (t *Tagger) writeArtifacts(res RunResult) error {
	if err := artifact.WriteTags(t.outputDir, res.Tags); err != nil {
		return fmt.Errorf("write tags artifact: %w", err)
	}
	if err := artifact.WriteFeedback(t.outputDir, res.Feedback); err != nil {
		return fmt.Errorf("write feedback artifact: %w", err)
	}
	if err := artifact.WriteWeights(t.outputDir, res.Weights); err != nil {
		return fmt.Errorf("write weights artifact: %w", err)
	}
	return nil
}

func buildMetrics(tags []tfidf.DocumentTags, fb []feedback.DocumentFeedback, weights map[string]float64, elapsed time.Duration) Metrics {
	m := Metrics{Documents: len(tags), Elapsed: elapsed}
	for _, doc := range tags {
		m.TagsGenerated += len(doc.Tags)
	}
	for _, doc := range fb {
		for _, rec := range doc.Records {
			if rec.Status == feedback.StatusApproved {
				m.Approved++
			} else {
				m.Rejected++
			}
		}
	}
	for _, w := range weights {
		switch {
		case w > 1.0:
			m.Boosted++
		case w < 1.0:
			m.Penalized++
		}
	}
	return m
}

func toStoreRun(runID string, started time.Time, res RunResult) store.Run {
	run := store.Run{
		ID:        runID,
		StartedAt: started,
		Weights:   res.Weights,
	}

	run.Tags = make([]store.DocTags, len(res.Tags))
	for i, doc := range res.Tags {
		dt := store.DocTags{Filename: doc.Filename}
		for _, tag := range doc.Tags {
			dt.Tags = append(dt.Tags, store.Tag{
				Tag:      tag.Tag,
				Term:     tag.Term,
				Raw:      tag.Raw,
				Adjusted: tag.Adjusted,
			})
		}
		run.Tags[i] = dt
	}

	run.Feedback = make([]store.DocFeedback, len(res.Feedback))
	for i, doc := range res.Feedback {
		df := store.DocFeedback{Filename: doc.Filename}
		for _, rec := range doc.Records {
			df.Records = append(df.Records, store.FeedbackEntry{
				Tag:       rec.Tag,
				Status:    string(rec.Status),
				Relevance: rec.Relevance,
			})
		}
		run.Feedback[i] = df
	}

	return run
}
