/*
Package enrollment reconciles raw enrollment records against the activity
catalog.

PURPOSE:
  Derives a member's enrolled-activity list: filters to confirmed
  enrollments belonging to the member, joins each to its activity by
  canonical id, and flattens the pair into one view. Orphaned enrollments
  (activity no longer resolves) are dropped from the result and reported as
  IntegrityWarnings, never as fatal errors.

WHY THE ENROLLMENT ID MATTERS:
  Cancellation is requested upstream by ENROLLMENT id, not activity id.
  Catalog browsing only has the activity id at hand, so the flattened view
  carries the enrollment id explicitly for the cancel action.

PURITY:
  ResolveMemberEnrollments is a pure function of its inputs: same inputs,
  same outputs, no hidden state. Callers may invoke it as often as they
  re-fetch.

SEE ALSO:
  - activity: classification of the joined views
  - club/errors.go: IntegrityWarning
*/
package enrollment

import (
	"github.com/shopspring/decimal"

	"github.com/warp/club-engine/club"
)

// =============================================================================
// FLATTENED VIEW
// =============================================================================

// EnrolledActivity combines activity fields with enrollment-specific fields.
// Fee is a snapshot of the activity's fee at reconciliation time, kept on
// the view so dues surcharge displays do not need a second join.
type EnrolledActivity struct {
	EnrollmentID club.ID
	Activity     club.ActivityView
	Fee          decimal.Decimal
	EnrolledAt   string
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// ActivityIndex is a canonical-id lookup over the catalog.
type ActivityIndex map[club.ID]club.ActivityView

// NewActivityIndex builds an ActivityIndex from a catalog slice.
func NewActivityIndex(catalog []club.ActivityView) ActivityIndex {
	idx := make(ActivityIndex, len(catalog))
	for _, a := range catalog {
		if !a.ID.IsZero() {
			idx[a.ID] = a
		}
	}
	return idx
}

// ResolveMemberEnrollments filters enrollments to the member's confirmed
// ones and joins each to its activity. Enrollments whose activity does not
// resolve are dropped and reported in the warning slice.
//
// Ids on both sides are canonical (normalized at the adapter boundary), so
// an enrollment serialized with activity 7 joins an activity serialized
// with id "7".
func ResolveMemberEnrollments(
	enrollments []club.Enrollment,
	catalog []club.ActivityView,
	memberID club.ID,
) ([]EnrolledActivity, []club.IntegrityWarning) {
	idx := NewActivityIndex(catalog)

	var views []EnrolledActivity
	var warnings []club.IntegrityWarning

	for _, e := range enrollments {
		if e.State != club.EnrollmentConfirmed {
			continue
		}
		if e.MemberID != memberID {
			continue
		}

		a, ok := idx[e.ActivityID]
		if !ok {
			warnings = append(warnings, club.IntegrityWarning{
				Kind:    "orphaned_enrollment",
				Detail:  "enrollment references an activity that no longer resolves",
				Subject: e.ID,
			})
			continue
		}

		enrolledAt := ""
		if e.EnrolledAt != nil {
			enrolledAt = e.EnrolledAt.Format("2006-01-02")
		}

		views = append(views, EnrolledActivity{
			EnrollmentID: e.ID,
			Activity:     a,
			Fee:          a.Fee,
			EnrolledAt:   enrolledAt,
		})
	}

	return views, warnings
}

// MonthlySurcharge sums the fee snapshots of the member's enrolled
// activities: the amount added to the base cuota each month.
func MonthlySurcharge(views []EnrolledActivity) decimal.Decimal {
	total := decimal.Zero
	for _, v := range views {
		total = total.Add(v.Fee)
	}
	return total
}
