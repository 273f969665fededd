// Package artifact reads and writes the three JSON artifacts a pipeline run
// produces: tags, feedback, and learned weights. The artifacts are the full
// contract between the pipeline core and any presentation layer.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taglearn/taglearn/pkg/taglearn/feedback"
	"github.com/taglearn/taglearn/pkg/taglearn/tfidf"
)

// Artifact file names within the output directory
const (
	TagsFile     = "tags.json"
	FeedbackFile = "feedback.json"
	WeightsFile  = "tag_weights.json"
)

// DocumentTags is the serialized form of one document's generated tags.
type DocumentTags struct {
	Filename string `json:"filename"`
	Tags     []Tag  `json:"tags"`
}

// Tag is one serialized generated tag.
type Tag struct {
	Tag           string  `json:"tag"`
	RawScore      float64 `json:"raw_score"`
	AdjustedScore float64 `json:"adjusted_score"`
}

// DocumentFeedback is the serialized form of one document's feedback.
type DocumentFeedback struct {
	Filename string           `json:"filename"`
	Feedback []FeedbackRecord `json:"feedback"`
}

// FeedbackRecord is one serialized feedback record.
type FeedbackRecord struct {
	Tag            string  `json:"tag"`
	Status         string  `json:"status"`
	RelevanceScore float64 `json:"relevance_score"`
}

// WriteTags writes the tags artifact to dir.
func WriteTags(dir string, docs []tfidf.DocumentTags) error {
	out := make([]DocumentTags, len(docs))
	for i, doc := range docs {
		dt := DocumentTags{Filename: doc.Filename, Tags: []Tag{}}
		for _, t := range doc.Tags {
			dt.Tags = append(dt.Tags, Tag{
				Tag:           t.Tag,
				RawScore:      t.Raw,
				AdjustedScore: t.Adjusted,
			})
		}
		out[i] = dt
	}
	return writeJSON(filepath.Join(dir, TagsFile), out)
}

// ReadTags reads the tags artifact from dir. The Term key is not part of
// the artifact; readers that need it recompute it from the documents.
func ReadTags(dir string) ([]DocumentTags, error) {
	var out []DocumentTags
	if err := readJSON(filepath.Join(dir, TagsFile), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteFeedback writes the feedback artifact to dir.
func WriteFeedback(dir string, docs []feedback.DocumentFeedback) error {
	out := make([]DocumentFeedback, len(docs))
	for i, doc := range docs {
		df := DocumentFeedback{Filename: doc.Filename, Feedback: []FeedbackRecord{}}
		for _, rec := range doc.Records {
			df.Feedback = append(df.Feedback, FeedbackRecord{
				Tag:            rec.Tag,
				Status:         string(rec.Status),
				RelevanceScore: rec.Relevance,
			})
		}
		out[i] = df
	}
	return writeJSON(filepath.Join(dir, FeedbackFile), out)
}

// ReadFeedback reads the feedback artifact from dir.
func ReadFeedback(dir string) ([]feedback.DocumentFeedback, error) {
	var raw []DocumentFeedback
	if err := readJSON(filepath.Join(dir, FeedbackFile), &raw); err != nil {
		return nil, err
	}

	out := make([]feedback.DocumentFeedback, len(raw))
	for i, doc := range raw {
		df := feedback.DocumentFeedback{Filename: doc.Filename}
		for _, rec := range doc.Feedback {
			df.Records = append(df.Records, feedback.Record{
				Tag:       rec.Tag,
				Status:    feedback.Status(rec.Status),
				Relevance: rec.RelevanceScore,
			})
		}
		out[i] = df
	}
	return out, nil
}

// WriteWeights writes the weights artifact to dir.
func WriteWeights(dir string, weights map[string]float64) error {
	if weights == nil {
		weights = map[string]float64{}
	}
	return writeJSON(filepath.Join(dir, WeightsFile), weights)
}

// ReadWeights reads the weights artifact from dir.
func ReadWeights(dir string) (map[string]float64, error) {
	weights := make(map[string]float64)
	if err := readJSON(filepath.Join(dir, WeightsFile), &weights); err != nil {
		return nil, err
	}
	return weights, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
