package feedback

import "testing"

func TestPositionScoreBuckets(t *testing.T) {
	scores := DefaultPositionScores()

	doc := "K8s Upgrade Guide\n" +
		"# Cluster setup\n" +
		"STATUS: DRAFT\n" +
		"Audience: operators\n" +
		"\n" +
		"This guide walks through rolling upgrades on managed nodes.\n" +
		"Later sections cover autoscaling and observability tooling.\n"

	tests := []struct {
		tag  string
		want float64
	}{
		{"guide", scores.Title},             // first line
		{"cluster", scores.Header},          // markdown heading
		{"draft", scores.Header},            // all-caps line
		{"operators", scores.Header},        // short "Label:" line
		{"upgrades", scores.FirstParagraph}, // first substantial line
		{"autoscaling", scores.Body},
		{"missing", scores.NotFound},
	}

	for _, tt := range tests {
		if got := scores.Score(tt.tag, doc); got != tt.want {
			t.Errorf("Score(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestPositionScoreCaseInsensitive(t *testing.T) {
	scores := DefaultPositionScores()

	if got := scores.Score("KUBERNETES", "kubernetes basics\nbody"); got != scores.Title {
		t.Errorf("Matching should be case-insensitive, got %v", got)
	}
}

func TestPositionScoreMultiWordTag(t *testing.T) {
	scores := DefaultPositionScores()

	doc := "Intro\n\nOur machine learning platform handles feature pipelines.\n"
	if got := scores.Score("machine learning", doc); got != scores.FirstParagraph {
		t.Errorf("Multi-word tag should match by substring, got %v", got)
	}
}

func TestPositionScoreEmptyInputs(t *testing.T) {
	scores := DefaultPositionScores()

	if got := scores.Score("tag", ""); got != scores.NotFound {
		t.Errorf("Empty text should score NotFound, got %v", got)
	}
	if got := scores.Score("", "some text"); got != scores.NotFound {
		t.Errorf("Empty tag should score NotFound, got %v", got)
	}
}
