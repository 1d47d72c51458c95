/*
Package club provides the core domain model for the club membership engine.

PURPOSE:
  This package contains the normalized, UI-facing shapes for members, staff,
  activities, enrollments and dues, plus the adapters that produce them from
  raw API records. Everything downstream (status engine, reconciliation,
  dues computation, role projection) operates on these types only.

KEY CONCEPTS IN THIS FILE (types.go):
  - ID: Canonical identifier, normalized from JSON numbers OR strings
  - Member/StaffMember: Normalized user shapes with role flags
  - ActivityView: Activity joined with its resolved instructor name
  - Enrollment: Link between a member and an activity
  - Due: A member's monthly cuota with base amount and activity surcharges

DESIGN PRINCIPLES:
  1. Totality: Adapters never fail; malformed fields degrade to defaults
  2. Precision: Uses decimal.Decimal for all money (ARS), never float
  3. Canonical IDs: "7" and 7 normalize to the same ID at the boundary,
     so joins never compare mixed representations
  4. No I/O: This package has no network or storage dependencies

SEE ALSO:
  - raw.go:     Tolerant wire-level record shapes
  - adapter.go: Raw record -> domain shape conversion
  - errors.go:  Error taxonomy shared by the whole engine
*/
package club

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ID is the canonical identifier representation used for every join in the
// engine. The upstream API is inconsistent about whether ids arrive as JSON
// numbers or strings; NormalizeID folds both into one comparable form.
type ID string

// NormalizeID converts a raw id value into its canonical form. Integer-like
// strings are reduced to their decimal representation ("007" -> "7") so they
// compare equal to the same id serialized as a number. Non-numeric ids pass
// through trimmed but otherwise untouched.
func NormalizeID(raw string) ID {
	s := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(strconv.FormatInt(n, 10))
	}
	return ID(s)
}

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

// =============================================================================
// LIFECYCLE STATES
// =============================================================================

// UserState is the lifecycle state of a user. Users are never hard-deleted;
// "baja" is the soft-delete terminal state.
type UserState string

const (
	UserActive    UserState = "activo"
	UserInactive  UserState = "inactivo"
	UserSuspended UserState = "baja"
)

// ParseUserState maps a raw state string to a known state. Unknown or missing
// values default to active so a record with a garbled state stays visible.
func ParseUserState(raw string) UserState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inactivo":
		return UserInactive
	case "baja":
		return UserSuspended
	default:
		return UserActive
	}
}

// ActivityState is the lifecycle state of an activity.
type ActivityState string

const (
	ActivityActive   ActivityState = "activa"
	ActivityFinished ActivityState = "finalizada"
	ActivityArchived ActivityState = "archivada"
)

// ParseActivityState defaults unknown values to active, mirroring
// ParseUserState: a bad state string must not hide the record.
func ParseActivityState(raw string) ActivityState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "finalizada":
		return ActivityFinished
	case "archivada":
		return ActivityArchived
	default:
		return ActivityActive
	}
}

// EnrollmentState is the state of an enrollment. Withdrawal is a transition
// to cancelled, never a deletion, so dues history stays auditable.
type EnrollmentState string

const (
	EnrollmentConfirmed EnrollmentState = "confirmada"
	EnrollmentCancelled EnrollmentState = "cancelada"
)

// ParseEnrollmentState defaults to confirmed (the upstream default on create).
func ParseEnrollmentState(raw string) EnrollmentState {
	if strings.EqualFold(strings.TrimSpace(raw), "cancelada") {
		return EnrollmentCancelled
	}
	return EnrollmentConfirmed
}

// DueState is the state of a cuota. This is a CLOSED enumeration: anything
// the engine does not recognize is treated as overdue, because silently
// hiding an unclassified due is worse than over-flagging it.
type DueState string

const (
	DueOnTime        DueState = "al_dia"
	DuePendingReview DueState = "pendiente_revision"
	DueOverdue       DueState = "atrasada"
)

// ParseDueState maps raw state strings; unknown -> overdue (safe default).
func ParseDueState(raw string) DueState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "al_dia":
		return DueOnTime
	case "pendiente_revision":
		return DuePendingReview
	default:
		return DueOverdue
	}
}

// =============================================================================
// USERS
// =============================================================================

// RoleFlags are the group memberships of a user. The flags are not mutually
// exclusive; a user may be staff AND socio at the same time. View projection
// must union over all set flags (see the roles package).
type RoleFlags struct {
	Admin  bool
	Staff  bool
	Member bool
}

// Member is the normalized shape for a club member (socio).
type Member struct {
	ID         ID
	Username   string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	NationalID string
	State      UserState
	Roles      RoleFlags
	JoinedAt   *time.Time
}

// DisplayName returns "First Last", falling back to the username when both
// name parts are empty, matching how the upstream renders users.
func (m Member) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(m.FirstName) + " " + strings.TrimSpace(m.LastName))
	if full != "" {
		return full
	}
	if m.Username != "" {
		return m.Username
	}
	return "Sin nombre"
}

// StaffMember is the normalized shape for a staff user (instructor).
type StaffMember struct {
	ID         ID
	FullName   string
	Email      string
	Phone      string
	NationalID string
	State      UserState
}

// StaffIndex is a lookup from staff id to staff member, used when adapting
// activities to resolve the instructor display name.
type StaffIndex map[ID]StaffMember

// NewStaffIndex builds a StaffIndex from a slice of staff members.
func NewStaffIndex(staff []StaffMember) StaffIndex {
	idx := make(StaffIndex, len(staff))
	for _, s := range staff {
		if !s.ID.IsZero() {
			idx[s.ID] = s
		}
	}
	return idx
}

// =============================================================================
// ACTIVITIES
// =============================================================================

// UnassignedInstructor is the placeholder shown when an activity references
// a staff id that cannot be resolved against the staff catalog.
const UnassignedInstructor = "A designar"

// ActivityView is an activity joined with its resolved instructor name.
// Start/End keep both the raw wire string and the parsed instant: expiry
// classification is fail-open, so an unparseable end date must survive
// adaptation instead of being zeroed out.
type ActivityView struct {
	ID            ID
	Name          string
	Description   string
	Fee           decimal.Decimal
	StartRaw      string
	EndRaw        string
	Start         *time.Time
	End           *time.Time
	State         ActivityState
	StaffID       ID
	InstructorName string
	EnrolledCount int
	// Capacity <= 0 means the domain does not model a cap (unbounded).
	Capacity int
}

// =============================================================================
// ENROLLMENTS
// =============================================================================

// Enrollment links a member to an activity. Both references are non-owning
// lookup keys; the authoritative records live upstream.
type Enrollment struct {
	ID         ID
	MemberID   ID
	ActivityID ID
	MemberName string
	ActivityName string
	State      EnrollmentState
	EnrolledAt *time.Time
}

// =============================================================================
// DUES (CUOTAS)
// =============================================================================

// Due is a member's monthly cuota. Total carries the server-supplied total
// when present; the dues package only recomputes base + surcharges as a
// display fallback, never as a value written back upstream.
type Due struct {
	ID          ID
	MemberID    ID
	MemberName  string
	Period      string // "YYYY-MM"
	Base        decimal.Decimal
	Surcharges  []decimal.Decimal
	Total       *decimal.Decimal
	DueDate     *time.Time
	PaymentDate *time.Time
	State       DueState
	DaysOverdue int
	ProofRef    string
}

// =============================================================================
// COMPENSATIONS
// =============================================================================

// CompensationRecord is a stored compensation row owned by the upstream.
// The compensation package derives the same numbers live from the catalog;
// this shape only carries what the upstream already settled.
type CompensationRecord struct {
	ID           ID
	Period       string // "YYYY-MM"
	StaffID      ID
	StaffName    string
	ActivityID   ID
	ActivityName string
	Amount       decimal.Decimal
}
