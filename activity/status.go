/*
Package activity implements the activity status engine.

PURPOSE:
  Classifies activities relative to "now" and to a member's enrollment set.
  This is the single source of truth for the expired/full/enrolled rules
  that every role view (socio catalog, staff listing, admin management)
  used to re-derive on its own.

CLASSIFICATION:
  Each activity lands in EXACTLY ONE of four buckets for a given member:
    enrolled-active     enrolled, not expired
    available           not enrolled, not expired
    enrolled-expired    enrolled, expired (historical record)
    expired-unenrolled  expired, never enrolled (hidden from default lists)

EXPIRY RULE (fail open):
  An activity is expired iff its end timestamp is present, parseable and
  strictly earlier than now. A missing or unparseable end date classifies
  as NOT expired: an activity without a trustworthy end date should stay
  visible rather than silently disappear.

SEE ALSO:
  - club/types.go: ActivityView input shape
  - enrollment:    joins enrollments to the catalog before classification
*/
package activity

import (
	"time"

	"github.com/warp/club-engine/club"
)

// =============================================================================
// PER-ACTIVITY PREDICATES
// =============================================================================

// IsExpired reports whether the activity's end timestamp is a valid instant
// strictly earlier than now. Fail open: no end, or an unparseable end,
// means not expired.
func IsExpired(a club.ActivityView, now time.Time) bool {
	if a.End == nil {
		return false
	}
	return a.End.Before(now)
}

// IsFull reports whether the activity has reached its capacity. A capacity
// of zero or less means the domain does not model a cap.
func IsFull(a club.ActivityView) bool {
	if a.Capacity <= 0 {
		return false
	}
	return a.EnrolledCount >= a.Capacity
}

// =============================================================================
// MEMBER-RELATIVE CLASSIFICATION
// =============================================================================

// Relation is a member's relationship to one activity. The four values are
// mutually exclusive and jointly exhaustive.
type Relation string

const (
	RelationEnrolledActive    Relation = "enrolled-active"
	RelationAvailable         Relation = "available"
	RelationEnrolledExpired   Relation = "enrolled-expired"
	RelationExpiredUnenrolled Relation = "expired-unenrolled"
)

// EnrolledSet is the set of activity ids a member holds confirmed
// enrollments for, keyed by canonical id.
type EnrolledSet map[club.ID]struct{}

// NewEnrolledSet builds an EnrolledSet from confirmed enrollments. Ids are
// already canonical because adaptation normalized them at the boundary.
func NewEnrolledSet(enrollments []club.Enrollment) EnrolledSet {
	set := make(EnrolledSet, len(enrollments))
	for _, e := range enrollments {
		if e.State != club.EnrollmentConfirmed {
			continue
		}
		if !e.ActivityID.IsZero() {
			set[e.ActivityID] = struct{}{}
		}
	}
	return set
}

// Contains reports membership.
func (s EnrolledSet) Contains(id club.ID) bool {
	_, ok := s[id]
	return ok
}

// Classify assigns the activity to exactly one relation bucket.
func Classify(a club.ActivityView, enrolled EnrolledSet, now time.Time) Relation {
	isEnrolled := enrolled.Contains(a.ID)
	expired := IsExpired(a, now)

	switch {
	case isEnrolled && !expired:
		return RelationEnrolledActive
	case isEnrolled && expired:
		return RelationEnrolledExpired
	case expired:
		return RelationExpiredUnenrolled
	default:
		return RelationAvailable
	}
}

// =============================================================================
// CATALOG PARTITION
// =============================================================================

// Buckets holds a catalog partitioned by relation. Every input activity
// appears in exactly one slice; order within each bucket follows catalog
// order.
type Buckets struct {
	EnrolledActive    []club.ActivityView
	Available         []club.ActivityView
	EnrolledExpired   []club.ActivityView
	ExpiredUnenrolled []club.ActivityView
}

// Partition splits the catalog into the four relation buckets for a member.
func Partition(catalog []club.ActivityView, enrolled EnrolledSet, now time.Time) Buckets {
	var b Buckets
	for _, a := range catalog {
		switch Classify(a, enrolled, now) {
		case RelationEnrolledActive:
			b.EnrolledActive = append(b.EnrolledActive, a)
		case RelationEnrolledExpired:
			b.EnrolledExpired = append(b.EnrolledExpired, a)
		case RelationExpiredUnenrolled:
			b.ExpiredUnenrolled = append(b.ExpiredUnenrolled, a)
		default:
			b.Available = append(b.Available, a)
		}
	}
	return b
}

// Visible returns the default listing: everything except expired activities
// the member was never enrolled in.
func (b Buckets) Visible() []club.ActivityView {
	out := make([]club.ActivityView, 0,
		len(b.EnrolledActive)+len(b.Available)+len(b.EnrolledExpired))
	out = append(out, b.EnrolledActive...)
	out = append(out, b.Available...)
	out = append(out, b.EnrolledExpired...)
	return out
}

// CanEnroll reports whether a member may request enrollment in the
// activity: it must be active upstream, not expired, not full, and the
// member must not already hold a confirmed enrollment.
func CanEnroll(a club.ActivityView, enrolled EnrolledSet, now time.Time) bool {
	if enrolled.Contains(a.ID) {
		return false
	}
	if a.State != club.ActivityActive {
		return false
	}
	return !IsExpired(a, now) && !IsFull(a)
}
