package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taglearn/taglearn/pkg/taglearn/feedback"
	"github.com/taglearn/taglearn/pkg/taglearn/ingest"
	"github.com/taglearn/taglearn/pkg/taglearn/internalerr"
	"github.com/taglearn/taglearn/pkg/taglearn/learn"
	"github.com/taglearn/taglearn/pkg/taglearn/tfidf"
)

// Config is the flat parameter surface of the pipeline.
type Config struct {
	TopK              int                     `yaml:"top_k"`
	Signals           feedback.SignalWeights  `yaml:"signals"`
	ApprovalThreshold float64                 `yaml:"approval_threshold"`
	Buckets           []learn.Bucket          `yaml:"buckets"`
	Positions         feedback.PositionScores `yaml:"positions"`
	DocumentsFolder   string                  `yaml:"documents_folder"`
	OutputDir         string                  `yaml:"output_dir"`
	StorePath         string                  `yaml:"store_path"`
	ExtraStopwords    []string                `yaml:"extra_stopwords"`
	Phrases           []ingest.PhraseEntry    `yaml:"phrases"`
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		TopK:              tfidf.DefaultTopK,
		Signals:           feedback.DefaultSignalWeights(),
		ApprovalThreshold: feedback.DefaultApprovalThreshold,
		Buckets:           learn.DefaultBuckets(),
		Positions:         feedback.DefaultPositionScores(),
		DocumentsFolder:   "documents",
		OutputDir:         "outputs",
		StorePath:         "outputs/taglearn.db",
	}
}

// Load overlays a YAML file onto the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Validate fails fast on parameter errors before any processing starts.
func (c Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", internalerr.ErrInvalidConfig, c.TopK)
	}
	if err := c.Signals.Validate(); err != nil {
		return err
	}
	if c.ApprovalThreshold < 0 {
		return fmt.Errorf("%w: approval_threshold must be non-negative, got %.4f", internalerr.ErrInvalidConfig, c.ApprovalThreshold)
	}
	if c.DocumentsFolder == "" {
		return fmt.Errorf("%w: documents_folder is required", internalerr.ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", internalerr.ErrInvalidConfig)
	}
	if _, err := learn.NewLearner(c.Buckets); err != nil {
		return err
	}
	return nil
}

// Stopwords returns the effective stopword list: the built-in defaults plus
// any configured extras.
func (c Config) Stopwords() []string {
	stops := ingest.DefaultStopwords()
	return append(stops, c.ExtraStopwords...)
}
