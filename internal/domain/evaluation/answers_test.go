package evaluation

import (
	"errors"
	"testing"
)

func TestValidateSelfAssessment(t *testing.T) {
	cases := []struct {
		name    string
		sa      *SelfAssessment
		wantErr bool
	}{
		{"nil payload", nil, true},
		{"no answers", &SelfAssessment{}, true},
		{"valid mixed kinds", &SelfAssessment{Answers: []Answer{
			{CriterionID: "a", Kind: AnswerKindRating, Rating: 3},
			{CriterionID: "b", Kind: AnswerKindText, Text: "shipped the thing"},
		}}, false},
		{"missing criterion id", &SelfAssessment{Answers: []Answer{
			{Kind: AnswerKindRating, Rating: 3},
		}}, true},
		{"duplicate criterion", &SelfAssessment{Answers: []Answer{
			{CriterionID: "a", Kind: AnswerKindRating, Rating: 3},
			{CriterionID: "a", Kind: AnswerKindRating, Rating: 4},
		}}, true},
		{"rating below range", &SelfAssessment{Answers: []Answer{
			{CriterionID: "a", Kind: AnswerKindRating, Rating: 0},
		}}, true},
		{"rating above range", &SelfAssessment{Answers: []Answer{
			{CriterionID: "a", Kind: AnswerKindRating, Rating: 6},
		}}, true},
		{"blank text answer", &SelfAssessment{Answers: []Answer{
			{CriterionID: "a", Kind: AnswerKindText, Text: "   "},
		}}, true},
		{"unknown kind", &SelfAssessment{Answers: []Answer{
			{CriterionID: "a", Kind: "emoji", Rating: 3},
		}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSelfAssessment(tc.sa)
			if tc.wantErr {
				if !errors.Is(err, ErrValidationFailed) {
					t.Fatalf("want ErrValidationFailed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMergeSelfAssessment(t *testing.T) {
	existing := &SelfAssessment{
		Answers: []Answer{
			{CriterionID: "a", Kind: AnswerKindRating, Rating: 2},
			{CriterionID: "b", Kind: AnswerKindText, Text: "first draft"},
		},
		Comment: "initial",
	}
	incoming := &SelfAssessment{
		Answers: []Answer{
			{CriterionID: "b", Kind: AnswerKindText, Text: "revised"},
			{CriterionID: "c", Kind: AnswerKindRating, Rating: 5},
		},
	}

	merged := MergeSelfAssessment(existing, incoming)
	if len(merged.Answers) != 3 {
		t.Fatalf("merged answers = %d, want 3", len(merged.Answers))
	}
	if merged.Answers[0].Rating != 2 {
		t.Fatalf("untouched answer must survive the merge")
	}
	if merged.Answers[1].Text != "revised" {
		t.Fatalf("overlapping answer must take the incoming value, got %q", merged.Answers[1].Text)
	}
	if merged.Answers[2].CriterionID != "c" {
		t.Fatalf("new answer must be appended")
	}
	if merged.Comment != "initial" {
		t.Fatalf("empty incoming comment must keep the existing one, got %q", merged.Comment)
	}

	// The existing record is not mutated.
	if existing.Answers[1].Text != "first draft" {
		t.Fatalf("merge mutated the existing assessment")
	}

	withComment := MergeSelfAssessment(existing, &SelfAssessment{Comment: "final thoughts"})
	if withComment.Comment != "final thoughts" {
		t.Fatalf("non-empty incoming comment must win, got %q", withComment.Comment)
	}

	fromNil := MergeSelfAssessment(nil, incoming)
	if len(fromNil.Answers) != 2 {
		t.Fatalf("merge into nil must copy the incoming payload")
	}
}

func TestMergeManagerReview(t *testing.T) {
	existing := &ManagerReview{
		Scores: []CompetencyScore{
			{CriterionID: "quality", Score: 5},
			{CriterionID: "teamwork", Score: 3, Comment: "solid"},
		},
		Comment: "first pass",
	}
	incoming := &ManagerReview{
		Scores: []CompetencyScore{
			{CriterionID: "teamwork", Score: 4},
			{CriterionID: "growth", Score: 4},
		},
	}

	merged := MergeManagerReview(existing, incoming)
	if len(merged.Scores) != 3 {
		t.Fatalf("merged scores = %d, want 3", len(merged.Scores))
	}
	if merged.Scores[0].Score != 5 {
		t.Fatalf("untouched score must survive the merge")
	}
	if merged.Scores[1].Score != 4 || merged.Scores[1].Comment != "" {
		t.Fatalf("overlapping score must take the incoming value, got %+v", merged.Scores[1])
	}
	if merged.Scores[2].CriterionID != "growth" {
		t.Fatalf("new score must be appended")
	}
	if merged.Comment != "first pass" {
		t.Fatalf("empty incoming comment must keep the existing one, got %q", merged.Comment)
	}

	// The existing record is not mutated.
	if existing.Scores[1].Score != 3 {
		t.Fatalf("merge mutated the existing review")
	}

	withComment := MergeManagerReview(existing, &ManagerReview{Comment: "ready to approve"})
	if withComment.Comment != "ready to approve" {
		t.Fatalf("non-empty incoming comment must win, got %q", withComment.Comment)
	}

	fromNil := MergeManagerReview(nil, incoming)
	if len(fromNil.Scores) != 2 {
		t.Fatalf("merge into nil must copy the incoming payload")
	}
}

func TestValidateManagerReview(t *testing.T) {
	if err := ValidateManagerReview(nil, false); err != nil {
		t.Fatalf("nil review is fine for a draft save: %v", err)
	}
	if err := ValidateManagerReview(nil, true); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("nil review must fail on approve, got %v", err)
	}
	if err := ValidateManagerReview(&ManagerReview{}, true); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("empty scores must fail on approve, got %v", err)
	}
	if err := ValidateManagerReview(&ManagerReview{Scores: []CompetencyScore{
		{CriterionID: "a", Score: 6},
	}}, false); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("out-of-range score must fail even on save, got %v", err)
	}
	if err := ValidateManagerReview(&ManagerReview{Scores: []CompetencyScore{
		{CriterionID: "a", Score: 4},
		{CriterionID: "a", Score: 3},
	}}, false); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("duplicate criterion must fail, got %v", err)
	}
	if err := ValidateManagerReview(&ManagerReview{Scores: []CompetencyScore{
		{CriterionID: "a", Score: 4},
		{CriterionID: "b", Score: 3},
	}, Comment: "solid"}, true); err != nil {
		t.Fatalf("complete review: %v", err)
	}
}

func TestFinalScore(t *testing.T) {
	cases := []struct {
		name   string
		scores []CompetencyScore
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []CompetencyScore{{Score: 4}}, 4},
		{"even mean", []CompetencyScore{{Score: 4}, {Score: 5}}, 4.5},
		{"rounded to two decimals", []CompetencyScore{{Score: 3}, {Score: 3}, {Score: 4}}, 3.33},
		{"rounds up", []CompetencyScore{{Score: 5}, {Score: 5}, {Score: 4}}, 4.67},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FinalScore(tc.scores); got != tc.want {
				t.Fatalf("FinalScore = %v, want %v", got, tc.want)
			}
		})
	}
}
