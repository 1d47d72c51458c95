/*
Package compensation derives staff earnings from activity enrollment revenue.

PURPOSE:
  A staff member earns a fixed share of the enrollment revenue of each
  activity they instruct. This package computes that share from an adapted
  activity view; it is a pure calculation over already-fetched data and is
  never persisted by this layer (the upstream owns the stored
  compensaciones records).

FORMULA:
  grossRevenue = enrolledCount * feePerMember
  staffShare   = grossRevenue * ShareRatio

  ShareRatio is 0.70 and lives HERE, once. The previous implementation
  inlined the ratio in every view that displayed it.

SEE ALSO:
  - club/types.go: ActivityView input shape
  - clubapi:       wrappers for the stored /compensaciones/ records
*/
package compensation

import (
	"github.com/shopspring/decimal"

	"github.com/warp/club-engine/club"
)

// ShareRatio is the fraction of enrollment-fee revenue paid to the
// instructing staff member.
var ShareRatio = decimal.NewFromFloat(0.70)

// =============================================================================
// PER-ACTIVITY COMPENSATION
// =============================================================================

// Breakdown is the derived compensation for one activity.
type Breakdown struct {
	ActivityID     club.ID
	ActivityName   string
	InstructorName string
	EnrolledCount  int
	FeePerMember   decimal.Decimal
	GrossRevenue   decimal.Decimal
	StaffShare     decimal.Decimal
}

// Compute derives the compensation breakdown for one activity. Safe for
// zero-enrollment activities: everything comes out zero.
func Compute(a club.ActivityView) Breakdown {
	return ComputeWithRatio(a, ShareRatio)
}

// ComputeWithRatio is Compute with an explicit ratio, for deployments that
// override the default share.
func ComputeWithRatio(a club.ActivityView, ratio decimal.Decimal) Breakdown {
	enrolled := a.EnrolledCount
	if enrolled < 0 {
		enrolled = 0
	}
	gross := a.Fee.Mul(decimal.NewFromInt(int64(enrolled)))
	return Breakdown{
		ActivityID:     a.ID,
		ActivityName:   a.Name,
		InstructorName: a.InstructorName,
		EnrolledCount:  enrolled,
		FeePerMember:   a.Fee,
		GrossRevenue:   gross,
		StaffShare:     gross.Mul(ratio),
	}
}

// =============================================================================
// SUMMARY OVER A STAFF MEMBER'S ACTIVITIES
// =============================================================================

// Summary aggregates breakdowns across the activities a staff member
// instructs, mirroring the por_periodo roll-up the upstream exposes.
type Summary struct {
	Activities    []Breakdown
	TotalEnrolled int
	TotalGross    decimal.Decimal
	TotalShare    decimal.Decimal
}

// Summarize computes per-activity breakdowns plus totals for the given
// catalog slice (typically pre-filtered to one staff member's activities).
func Summarize(activities []club.ActivityView) Summary {
	return SummarizeWithRatio(activities, ShareRatio)
}

// SummarizeWithRatio is Summarize with an explicit ratio.
func SummarizeWithRatio(activities []club.ActivityView, ratio decimal.Decimal) Summary {
	s := Summary{
		Activities: make([]Breakdown, 0, len(activities)),
		TotalGross: decimal.Zero,
		TotalShare: decimal.Zero,
	}
	for _, a := range activities {
		b := ComputeWithRatio(a, ratio)
		s.Activities = append(s.Activities, b)
		s.TotalEnrolled += b.EnrolledCount
		s.TotalGross = s.TotalGross.Add(b.GrossRevenue)
		s.TotalShare = s.TotalShare.Add(b.StaffShare)
	}
	return s
}

// ForStaff filters the catalog down to one instructor's activities and
// summarizes them.
func ForStaff(catalog []club.ActivityView, staffID club.ID) Summary {
	var mine []club.ActivityView
	for _, a := range catalog {
		if a.StaffID == staffID {
			mine = append(mine, a)
		}
	}
	return Summarize(mine)
}
