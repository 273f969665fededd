package store

import (
	"testing"
	"time"
)

func TestSummarizeCounts(t *testing.T) {
	r := Run{
		ID:        "run-1",
		StartedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Tags: []DocTags{
			{Filename: "a.txt", Tags: []Tag{{Tag: "go"}, {Tag: "testing"}}},
			{Filename: "b.txt", Tags: []Tag{{Tag: "sql"}}},
		},
		Feedback: []DocFeedback{
			{Filename: "a.txt", Records: []FeedbackEntry{
				{Tag: "go", Status: "approved"},
				{Tag: "testing", Status: "rejected"},
			}},
			{Filename: "b.txt", Records: []FeedbackEntry{
				{Tag: "sql", Status: "approved"},
			}},
		},
	}

	s := r.Summarize()
	if s.ID != "run-1" {
		t.Errorf("ID = %q, want run-1", s.ID)
	}
	if s.Documents != 2 {
		t.Errorf("Documents = %d, want 2", s.Documents)
	}
	if s.TagsGenerated != 3 {
		t.Errorf("TagsGenerated = %d, want 3", s.TagsGenerated)
	}
	if s.Approved != 2 || s.Rejected != 1 {
		t.Errorf("Approved/Rejected = %d/%d, want 2/1", s.Approved, s.Rejected)
	}
}

func TestSummarizeEmptyRun(t *testing.T) {
	s := Run{ID: "empty"}.Summarize()
	if s.Documents != 0 || s.TagsGenerated != 0 || s.Approved != 0 || s.Rejected != 0 {
		t.Fatalf("empty run summary = %+v, want all zero counts", s)
	}
}
