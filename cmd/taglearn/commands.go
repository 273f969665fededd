package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/taglearn/taglearn/pkg/taglearn"
	"github.com/taglearn/taglearn/pkg/taglearn/artifact"
	"github.com/taglearn/taglearn/pkg/taglearn/config"
	"github.com/taglearn/taglearn/pkg/taglearn/corpus"
	"github.com/taglearn/taglearn/pkg/taglearn/feedback"
	"github.com/taglearn/taglearn/pkg/taglearn/ingest"
	"github.com/taglearn/taglearn/pkg/taglearn/internalerr"
	"github.com/taglearn/taglearn/pkg/taglearn/learn"
	"github.com/taglearn/taglearn/pkg/taglearn/store"
	"github.com/taglearn/taglearn/pkg/taglearn/store/sqlite"
	"github.com/taglearn/taglearn/pkg/taglearn/tfidf"
)

// loadConfig merges the YAML config with command-line overrides and
// validates the result.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagFolder != "" {
		cfg.DocumentsFolder = flagFolder
	}
	if flagOutput != "" {
		cfg.OutputDir = flagOutput
	}
	if flagStore != "" {
		cfg.StorePath = flagStore
	}
	if flagTopK > 0 {
		cfg.TopK = flagTopK
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	st, err := sqlite.Open(ctx, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrStoreUnavailable, cfg.StorePath, err)
	}
	return st, nil
}

func buildPipeline(cfg config.Config) *ingest.Pipeline {
	tokenizer := ingest.NewTokenizer(cfg.Stopwords())
	phrases := ingest.NewPhraseParser(cfg.Phrases)
	return ingest.NewPipeline(tokenizer, phrases)
}

// --- run ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: generate → feedback → learn",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		docs, err := corpus.LoadFolder(cfg.DocumentsFolder)
		if err != nil {
			return err
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}

		generator, err := tfidf.NewGenerator(cfg.TopK)
		if err != nil {
			return err
		}
		collector, err := feedback.NewSimulator(cfg.Signals, cfg.ApprovalThreshold, cfg.Positions)
		if err != nil {
			return err
		}
		learner, err := learn.NewLearner(cfg.Buckets)
		if err != nil {
			return err
		}

		tagger, err := taglearn.New(taglearn.Options{
			Store:     st,
			Pipeline:  buildPipeline(cfg),
			Generator: generator,
			Collector: collector,
			Learner:   learner,
			OutputDir: cfg.OutputDir,
		})
		if err != nil {
			st.Close()
			return err
		}
		defer tagger.Close()

		res, err := tagger.Run(ctx, docs)
		if err != nil {
			return err
		}

		m := res.Metrics
		fmt.Printf("run %s: %d docs → %d tags → %.1f%% approved → %d weights learned (%d boosted, %d penalized) in %s\n",
			res.RunID, m.Documents, m.TagsGenerated, m.ApprovalRate()*100,
			len(res.Weights), m.Boosted, m.Penalized, m.Elapsed.Round(time.Millisecond))
		return nil
	},
}

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate tags for the documents folder and write tags.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		docs, err := corpus.LoadFolder(cfg.DocumentsFolder)
		if err != nil {
			return err
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		weights, err := st.LoadWeights(ctx)
		if err != nil {
			return err
		}

		generator, err := tfidf.NewGenerator(cfg.TopK)
		if err != nil {
			return err
		}

		pipeline := buildPipeline(cfg)
		stats := tfidf.NewCorpusStats()
		gendocs := make([]tfidf.Document, len(docs))
		for i, doc := range docs {
			proc := pipeline.Process(doc.Text)
			stats.Add(proc.Keys(), proc.Forms())
			gendocs[i] = tfidf.Document{Name: doc.Name, Keys: proc.Keys()}
		}

		tags, err := generator.Generate(ctx, gendocs, stats, tfidf.Weights(weights))
		if err != nil {
			return err
		}

		if err := artifact.WriteTags(cfg.OutputDir, tags); err != nil {
			return err
		}

		for _, doc := range tags {
			names := make([]string, len(doc.Tags))
			for i, t := range doc.Tags {
				names[i] = t.Tag
			}
			fmt.Printf("%s: %v\n", doc.Filename, names)
		}
		return nil
	},
}

// --- feedback ---

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Synthesize feedback for tags.json and write feedback.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		tagDocs, err := artifact.ReadTags(cfg.OutputDir)
		if err != nil {
			return err
		}

		docs, err := corpus.LoadFolder(cfg.DocumentsFolder)
		if err != nil {
			return err
		}
		byName := make(map[string]corpus.Document, len(docs))
		for _, doc := range docs {
			byName[doc.Name] = doc
		}

		collector, err := feedback.NewSimulator(cfg.Signals, cfg.ApprovalThreshold, cfg.Positions)
		if err != nil {
			return err
		}

		pipeline := buildPipeline(cfg)
		fb := make([]feedback.DocumentFeedback, 0, len(tagDocs))
		approved, total := 0, 0
		for _, td := range tagDocs {
			doc := byName[td.Filename]
			proc := pipeline.Process(doc.Text)

			// The artifact stores only display forms; recover the
			// grouping key for the frequency signal.
			tags := make([]tfidf.TagScore, len(td.Tags))
			for i, t := range td.Tags {
				tags[i] = tfidf.TagScore{
					Tag:      t.Tag,
					Term:     ingest.KeyFor(t.Tag),
					Raw:      t.RawScore,
					Adjusted: t.AdjustedScore,
				}
			}

			records, err := collector.Collect(ctx, feedback.Document{
				Name:    td.Filename,
				RawText: doc.Text,
				Keys:    proc.Keys(),
			}, tags)
			if err != nil {
				return err
			}

			for _, rec := range records {
				total++
				if rec.Status == feedback.StatusApproved {
					approved++
				}
			}
			fb = append(fb, feedback.DocumentFeedback{Filename: td.Filename, Records: records})
		}

		if err := artifact.WriteFeedback(cfg.OutputDir, fb); err != nil {
			return err
		}

		rate := 0.0
		if total > 0 {
			rate = float64(approved) / float64(total) * 100
		}
		fmt.Printf("%d/%d tags approved (%.1f%%)\n", approved, total, rate)
		return nil
	},
}

// --- learn ---

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Learn tag weights from feedback.json and persist them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fb, err := artifact.ReadFeedback(cfg.OutputDir)
		if err != nil {
			return err
		}

		learner, err := learn.NewLearner(cfg.Buckets)
		if err != nil {
			return err
		}
		weights := learner.Learn(fb)

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SaveWeights(ctx, weights); err != nil {
			return err
		}
		if err := artifact.WriteWeights(cfg.OutputDir, weights); err != nil {
			return err
		}

		boosted, penalized := 0, 0
		for _, w := range weights {
			if w > 1.0 {
				boosted++
			} else if w < 1.0 {
				penalized++
			}
		}
		fmt.Printf("learned weights for %d tags (%d boosted, %d penalized)\n", len(weights), boosted, penalized)
		return nil
	},
}

// --- weights ---

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Print the persisted tag weight table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		weights, err := st.LoadWeights(ctx)
		if err != nil {
			return err
		}
		if len(weights) == 0 {
			fmt.Println("no learned weights yet")
			return nil
		}

		tags := make([]string, 0, len(weights))
		for tag := range weights {
			tags = append(tags, tag)
		}
		sort.Slice(tags, func(i, j int) bool {
			if weights[tags[i]] != weights[tags[j]] {
				return weights[tags[i]] > weights[tags[j]]
			}
			return tags[i] < tags[j]
		})

		for _, tag := range tags {
			fmt.Printf("%-30s %.2f\n", tag, weights[tag])
		}
		return nil
	},
}

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one stored run in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		run, ok, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: run %s", internalerr.ErrNotFound, args[0])
		}

		fmt.Printf("run %s  started %s\n", run.ID, run.StartedAt.Format("2006-01-02 15:04:05"))
		for _, doc := range run.Tags {
			fmt.Printf("\n%s\n", doc.Filename)
			for i, tag := range doc.Tags {
				fmt.Printf("  %d. %-24s raw=%.4f adjusted=%.4f\n", i+1, tag.Tag, tag.Raw, tag.Adjusted)
			}
		}
		if len(run.Weights) > 0 {
			fmt.Println("\nlearned weights:")
			tags := make([]string, 0, len(run.Weights))
			for tag := range run.Weights {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			for _, tag := range tags {
				fmt.Printf("  %-24s %.2f\n", tag, run.Weights[tag])
			}
		}
		return nil
	},
}

// --- runs ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, 20)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded yet")
			return nil
		}

		for _, r := range runs {
			fmt.Printf("%s  %s  %d docs  %d tags  %d approved  %d rejected\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Documents, r.TagsGenerated, r.Approved, r.Rejected)
		}
		return nil
	},
}
