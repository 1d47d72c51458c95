package compensation_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/club-engine/club"
	"github.com/warp/club-engine/compensation"
)

func money(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestCompute_ReferenceScenario(t *testing.T) {
	// GIVEN: activity {enrolled: 10, fee: 1000}, ShareRatio = 0.7
	// THEN: grossRevenue = 10000, staffShare = 7000
	b := compensation.Compute(club.ActivityView{
		ID:            club.ID("1"),
		Fee:           money(1000),
		EnrolledCount: 10,
	})

	if !b.GrossRevenue.Equal(money(10000)) {
		t.Errorf("expected gross 10000, got %v", b.GrossRevenue)
	}
	if !b.StaffShare.Equal(money(7000)) {
		t.Errorf("expected share 7000, got %v", b.StaffShare)
	}
}

func TestCompute_ZeroEnrollmentYieldsZeroNotError(t *testing.T) {
	b := compensation.Compute(club.ActivityView{Fee: money(1000)})
	if !b.StaffShare.IsZero() || !b.GrossRevenue.IsZero() {
		t.Errorf("zero enrollment should yield zero, got gross=%v share=%v", b.GrossRevenue, b.StaffShare)
	}
}

func TestCompute_MonotonicInEnrollment(t *testing.T) {
	// GIVEN: Two activities identical except enrolled count differs by 1
	// THEN: The larger count yields a strictly larger share (fee nonzero)
	a := club.ActivityView{Fee: money(500), EnrolledCount: 7}
	b := a
	b.EnrolledCount = 8

	shareA := compensation.Compute(a).StaffShare
	shareB := compensation.Compute(b).StaffShare
	if !shareB.GreaterThan(shareA) {
		t.Errorf("share must strictly increase with enrollment: %v vs %v", shareA, shareB)
	}

	// Unless the fee is zero.
	free := club.ActivityView{Fee: decimal.Zero, EnrolledCount: 7}
	freeMore := free
	freeMore.EnrolledCount = 8
	if !compensation.Compute(free).StaffShare.Equal(compensation.Compute(freeMore).StaffShare) {
		t.Error("zero fee shares must stay equal regardless of enrollment")
	}
}

func TestSummarize_Totals(t *testing.T) {
	s := compensation.Summarize([]club.ActivityView{
		{ID: club.ID("1"), Fee: money(1000), EnrolledCount: 10},
		{ID: club.ID("2"), Fee: money(200), EnrolledCount: 5},
	})

	if s.TotalEnrolled != 15 {
		t.Errorf("expected 15 enrolled, got %d", s.TotalEnrolled)
	}
	if !s.TotalGross.Equal(money(11000)) {
		t.Errorf("expected gross 11000, got %v", s.TotalGross)
	}
	if !s.TotalShare.Equal(money(7700)) {
		t.Errorf("expected share 7700, got %v", s.TotalShare)
	}
}

func TestForStaff_FiltersByInstructor(t *testing.T) {
	catalog := []club.ActivityView{
		{ID: club.ID("1"), StaffID: club.ID("3"), Fee: money(100), EnrolledCount: 2},
		{ID: club.ID("2"), StaffID: club.ID("4"), Fee: money(100), EnrolledCount: 9},
	}
	s := compensation.ForStaff(catalog, club.ID("3"))
	if len(s.Activities) != 1 || s.Activities[0].ActivityID != club.ID("1") {
		t.Errorf("expected only staff 3's activity, got %v", s.Activities)
	}
}
