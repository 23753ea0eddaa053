package periods

import (
	"testing"
	"time"
)

func testPeriod() Period {
	return Period{
		ID:                     "p1",
		Name:                   "2026 H1",
		StartDate:              time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		SelfAssessmentDeadline: time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC),
		ApprovalDeadline:       time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC),
		EndDate:                time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Active:                 true,
	}
}

func TestOpenForSelfAssessment(t *testing.T) {
	p := testPeriod()

	if !p.OpenForSelfAssessment(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)) {
		t.Fatal("expected open inside self-assessment window")
	}
	if p.OpenForSelfAssessment(time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)) {
		t.Fatal("expected closed before period start")
	}
	if p.OpenForSelfAssessment(time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("expected closed after self-assessment deadline")
	}
}

func TestOpenForManagerReview(t *testing.T) {
	p := testPeriod()

	if p.OpenForManagerReview(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("expected manager window closed before self-assessment deadline")
	}
	if !p.OpenForManagerReview(time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("expected open inside manager review window")
	}
	if p.OpenForManagerReview(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatal("expected closed after approval deadline")
	}
}

func TestHardEndDateClosesBothWindows(t *testing.T) {
	p := testPeriod()
	p.EndDate = time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	after := time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)
	if p.OpenForSelfAssessment(after) {
		t.Fatal("expected self-assessment window closed past end date")
	}
	if p.OpenForManagerReview(after) {
		t.Fatal("expected manager window closed past end date")
	}
}

func TestInactivePeriodIsClosed(t *testing.T) {
	p := testPeriod()
	p.Active = false
	if p.OpenForSelfAssessment(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("expected inactive period closed")
	}
}
