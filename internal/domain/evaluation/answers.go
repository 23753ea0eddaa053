package evaluation

import (
	"fmt"
	"math"
	"strings"
)

// ValidateSelfAssessment checks the payload at the action boundary, before
// anything is merged into the record.
func ValidateSelfAssessment(sa *SelfAssessment) error {
	if sa == nil || len(sa.Answers) == 0 {
		return fmt.Errorf("%w: self-assessment answers are required", ErrValidationFailed)
	}
	seen := make(map[string]bool, len(sa.Answers))
	for i, answer := range sa.Answers {
		if strings.TrimSpace(answer.CriterionID) == "" {
			return fmt.Errorf("%w: answer %d is missing a criterion id", ErrValidationFailed, i)
		}
		if seen[answer.CriterionID] {
			return fmt.Errorf("%w: duplicate answer for criterion %s", ErrValidationFailed, answer.CriterionID)
		}
		seen[answer.CriterionID] = true

		switch answer.Kind {
		case AnswerKindRating:
			if answer.Rating < ScoreMin || answer.Rating > ScoreMax {
				return fmt.Errorf("%w: rating for criterion %s must be between %d and %d",
					ErrValidationFailed, answer.CriterionID, ScoreMin, ScoreMax)
			}
		case AnswerKindText:
			if strings.TrimSpace(answer.Text) == "" {
				return fmt.Errorf("%w: text answer for criterion %s is empty", ErrValidationFailed, answer.CriterionID)
			}
		default:
			return fmt.Errorf("%w: unknown answer kind %q for criterion %s",
				ErrValidationFailed, answer.Kind, answer.CriterionID)
		}
	}
	return nil
}

// MergeSelfAssessment overlays incoming answers onto existing ones by
// criterion id, keeping answers the new payload does not touch. Saving a
// draft is repeatable; merging keeps partial progress.
func MergeSelfAssessment(existing, incoming *SelfAssessment) *SelfAssessment {
	if existing == nil {
		clone := *incoming
		return &clone
	}

	merged := SelfAssessment{Comment: existing.Comment}
	if incoming.Comment != "" {
		merged.Comment = incoming.Comment
	}

	byID := make(map[string]int, len(existing.Answers))
	for i, answer := range existing.Answers {
		merged.Answers = append(merged.Answers, answer)
		byID[answer.CriterionID] = i
	}
	for _, answer := range incoming.Answers {
		if i, ok := byID[answer.CriterionID]; ok {
			merged.Answers[i] = answer
		} else {
			merged.Answers = append(merged.Answers, answer)
		}
	}
	return &merged
}

// MergeManagerReview overlays incoming competency scores onto existing ones
// by criterion id, same contract as MergeSelfAssessment: a partial save keeps
// the scores it does not touch.
func MergeManagerReview(existing, incoming *ManagerReview) *ManagerReview {
	if existing == nil {
		clone := *incoming
		return &clone
	}

	merged := ManagerReview{Comment: existing.Comment}
	if incoming.Comment != "" {
		merged.Comment = incoming.Comment
	}

	byID := make(map[string]int, len(existing.Scores))
	for i, score := range existing.Scores {
		merged.Scores = append(merged.Scores, score)
		byID[score.CriterionID] = i
	}
	for _, score := range incoming.Scores {
		if i, ok := byID[score.CriterionID]; ok {
			merged.Scores[i] = score
		} else {
			merged.Scores = append(merged.Scores, score)
		}
	}
	return &merged
}

// ValidateManagerReview checks competency scores. requireComplete is set on
// approve: scores must exist and the overall comment must be non-empty.
func ValidateManagerReview(mr *ManagerReview, requireComplete bool) error {
	if mr == nil {
		if requireComplete {
			return fmt.Errorf("%w: manager review scores are required to approve", ErrValidationFailed)
		}
		return nil
	}
	if requireComplete && len(mr.Scores) == 0 {
		return fmt.Errorf("%w: manager review scores are required to approve", ErrValidationFailed)
	}
	seen := make(map[string]bool, len(mr.Scores))
	for i, score := range mr.Scores {
		if strings.TrimSpace(score.CriterionID) == "" {
			return fmt.Errorf("%w: score %d is missing a criterion id", ErrValidationFailed, i)
		}
		if seen[score.CriterionID] {
			return fmt.Errorf("%w: duplicate score for criterion %s", ErrValidationFailed, score.CriterionID)
		}
		seen[score.CriterionID] = true
		if score.Score < ScoreMin || score.Score > ScoreMax {
			return fmt.Errorf("%w: score for criterion %s must be between %d and %d",
				ErrValidationFailed, score.CriterionID, ScoreMin, ScoreMax)
		}
	}
	return nil
}

// FinalScore is the mean of the competency scores, rounded to two decimals.
func FinalScore(scores []CompetencyScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	total := 0
	for _, s := range scores {
		total += s.Score
	}
	mean := float64(total) / float64(len(scores))
	return math.Round(mean*100) / 100
}
