package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestChecklistProgressReadsStoredValues(t *testing.T) {
	var details Details
	raw := `{"checklist_progress": {"el": true, "post": true, "bank": "yes", "okand": true}}`
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	progress := details.ChecklistProgress()
	if !progress["el"] || !progress["post"] || progress["bank"] {
		t.Fatalf("progress = %v", progress)
	}
	if _, ok := progress["okand"]; ok {
		t.Fatal("unknown ids must be dropped")
	}
	if len(progress) != len(ChecklistItems()) || progress.Done() != 2 {
		t.Fatalf("done = %d of %d", progress.Done(), len(progress))
	}
}

func TestChecklistToggleCopies(t *testing.T) {
	progress := Details{}.ChecklistProgress()
	toggled := progress.Toggle("el")
	if progress["el"] || !toggled["el"] {
		t.Fatal("Toggle must return a flipped copy")
	}
	if back := toggled.Toggle("el"); back["el"] {
		t.Fatal("toggling twice must restore the task")
	}
	if toggled.Percent() != 3 {
		t.Fatalf("percent = %d, want 3", toggled.Percent())
	}
	if !IsChecklistItem("packa_upp") || IsChecklistItem("photos") {
		t.Fatal("unexpected checklist membership")
	}
}

func TestReviewRoundTripsThroughDetails(t *testing.T) {
	submitted := time.Date(2030, 5, 3, 10, 0, 0, 0, time.UTC)
	review := Review{Rating: 2, Feedback: "Sen ankomst", SubmittedAt: submitted}

	got, ok := Details{"review": review.Details()}.Review()
	if !ok || got.Rating != 2 || got.Feedback != review.Feedback || !got.SubmittedAt.Equal(submitted) {
		t.Fatalf("review = %+v, %v", got, ok)
	}
	if !got.NeedsFollowUp() {
		t.Fatal("a two star review needs follow-up")
	}

	if _, ok := (Details{"review": map[string]any{"rating": 9.0}}).Review(); ok {
		t.Fatal("out of range ratings are not reviews")
	}
	if _, ok := (Details{}).Review(); ok {
		t.Fatal("no review expected")
	}
}
