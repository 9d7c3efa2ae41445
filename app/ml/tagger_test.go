package ml

import "testing"

func TestFilterScores(t *testing.T) {
	candidates := []string{"recipes", "anime", "fitness"}
	scores := []LabelScore{
		{Label: "recipes", Confidence: 0.95},
		{Label: "anime", Confidence: 0.8},
		{Label: "fitness", Confidence: 0.81},
		{Label: "invented-label", Confidence: 0.99},
	}

	kept := FilterScores(scores, candidates, 0.8)

	if len(kept) != 2 {
		t.Fatalf("Expected 2 kept labels, got %d: %v", len(kept), kept)
	}
	if kept[0].Label != "recipes" {
		t.Errorf("Expected 'recipes' kept, got %q", kept[0].Label)
	}
	// 0.8 is not above the threshold
	if kept[1].Label != "fitness" {
		t.Errorf("Expected 'fitness' kept, got %q", kept[1].Label)
	}
}

func TestFilterScoresCaseInsensitiveCandidates(t *testing.T) {
	kept := FilterScores(
		[]LabelScore{{Label: "Recipes", Confidence: 0.9}},
		[]string{"recipes"},
		0.8,
	)
	if len(kept) != 1 {
		t.Errorf("Expected case-insensitive candidate match, got %v", kept)
	}
}
