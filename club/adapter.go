/*
adapter.go - Raw record to domain shape conversion

PURPOSE:
  Converts raw API records into the normalized shapes the rest of the engine
  consumes. Every adapter is a TOTAL function: any input with at least an id
  produces a valid output, with documented defaults for whatever is missing
  or malformed. Nothing here ever returns an error.

DEFAULTS:
  names/emails/phones  -> empty string
  amounts              -> zero
  user/activity state  -> active
  instructor           -> "A designar" when the staff id does not resolve

ID NORMALIZATION:
  All ids pass through NormalizeID here, at the boundary, so downstream
  joins never see mixed string/number representations.

SEE ALSO:
  - raw.go:   Input shapes
  - types.go: Output shapes
*/
package club

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// USER ADAPTERS
// =============================================================================

// AdaptMember converts a raw user record into a Member.
func AdaptMember(raw RawUser) Member {
	return Member{
		ID:         raw.ID.ID(),
		Username:   strings.TrimSpace(raw.Username),
		FirstName:  strings.TrimSpace(raw.FirstName),
		LastName:   strings.TrimSpace(raw.LastName),
		Email:      strings.TrimSpace(raw.Email),
		Phone:      strings.TrimSpace(raw.Phone),
		NationalID: strings.TrimSpace(raw.NationalID),
		State:      ParseUserState(raw.State),
		Roles: RoleFlags{
			Admin:  raw.IsAdmin.Bool(),
			Staff:  raw.IsStaff.Bool(),
			Member: raw.IsMember.Bool(),
		},
		JoinedAt: ParseInstant(raw.JoinedAt),
	}
}

// AdaptStaff converts a raw user record into a StaffMember. The full name
// falls back to the username, then to the generic placeholder, matching the
// upstream rendering rules.
func AdaptStaff(raw RawUser) StaffMember {
	m := AdaptMember(raw)
	return StaffMember{
		ID:         m.ID,
		FullName:   m.DisplayName(),
		Email:      m.Email,
		Phone:      m.Phone,
		NationalID: m.NationalID,
		State:      m.State,
	}
}

// =============================================================================
// ACTIVITY ADAPTER
// =============================================================================

// AdaptActivity converts a raw activity record, resolving the instructor
// display name through the staff index. Resolution order: the index entry,
// then the upstream-provided display name, then the placeholder.
//
// End-before-start is a data error owned upstream; the adapter keeps the
// record as-is and reports it through the returned warning slice so the
// caller can log it without losing the activity.
func AdaptActivity(raw RawActivity, staff StaffIndex) (ActivityView, []IntegrityWarning) {
	var warnings []IntegrityWarning

	instructor := UnassignedInstructor
	staffID := raw.StaffID.ID()
	if s, ok := staff[staffID]; ok && s.FullName != "" {
		instructor = s.FullName
	} else if name := strings.TrimSpace(raw.StaffName); name != "" {
		instructor = name
	}

	view := ActivityView{
		ID:             raw.ID.ID(),
		Name:           strings.TrimSpace(raw.Name),
		Description:    strings.TrimSpace(raw.Description),
		Fee:            raw.Fee.Decimal,
		StartRaw:       strings.TrimSpace(raw.Start),
		EndRaw:         strings.TrimSpace(raw.End),
		Start:          ParseInstant(raw.Start),
		End:            ParseInstant(raw.End),
		State:          ParseActivityState(raw.State),
		StaffID:        staffID,
		InstructorName: instructor,
		EnrolledCount:  raw.EnrolledCount.Int(),
		Capacity:       raw.Capacity.Int(),
	}

	if view.Start != nil && view.End != nil && view.End.Before(*view.Start) {
		warnings = append(warnings, IntegrityWarning{
			Kind:    "end_before_start",
			Detail:  "activity ends before it starts",
			Subject: view.ID,
		})
	}

	return view, warnings
}

// AdaptActivities adapts a whole catalog, accumulating warnings.
func AdaptActivities(raws []RawActivity, staff StaffIndex) ([]ActivityView, []IntegrityWarning) {
	views := make([]ActivityView, 0, len(raws))
	var warnings []IntegrityWarning
	for _, raw := range raws {
		v, w := AdaptActivity(raw, staff)
		views = append(views, v)
		warnings = append(warnings, w...)
	}
	return views, warnings
}

// =============================================================================
// ENROLLMENT ADAPTER
// =============================================================================

// AdaptEnrollment converts a raw enrollment record.
func AdaptEnrollment(raw RawEnrollment) Enrollment {
	return Enrollment{
		ID:           raw.ID.ID(),
		MemberID:     raw.MemberID.ID(),
		ActivityID:   raw.ActivityID.ID(),
		MemberName:   strings.TrimSpace(raw.MemberName),
		ActivityName: strings.TrimSpace(raw.ActivityName),
		State:        ParseEnrollmentState(raw.State),
		EnrolledAt:   ParseInstant(raw.EnrolledAt),
	}
}

// AdaptEnrollments adapts a slice of raw enrollment records.
func AdaptEnrollments(raws []RawEnrollment) []Enrollment {
	out := make([]Enrollment, 0, len(raws))
	for _, raw := range raws {
		out = append(out, AdaptEnrollment(raw))
	}
	return out
}

// =============================================================================
// DUE ADAPTER
// =============================================================================

// AdaptDue converts a raw cuota record. When the upstream omits the period
// it is derived from the due date; amounts default to zero.
func AdaptDue(raw RawDue) Due {
	surcharges := make([]decimal.Decimal, 0, len(raw.Surcharges))
	for _, s := range raw.Surcharges {
		surcharges = append(surcharges, s.Decimal)
	}

	dueDate := ParseInstant(raw.DueDate)
	period := strings.TrimSpace(raw.Period)
	if period == "" && dueDate != nil {
		period = dueDate.Format("2006-01")
	}

	return Due{
		ID:          raw.ID.ID(),
		MemberID:    raw.MemberID.ID(),
		MemberName:  strings.TrimSpace(raw.MemberName),
		Period:      period,
		Base:        raw.Base.Decimal,
		Surcharges:  surcharges,
		Total:       raw.Total.Value,
		DueDate:     dueDate,
		PaymentDate: ParseInstant(raw.PaymentDate),
		State:       ParseDueState(raw.State),
		DaysOverdue: raw.DaysOverdue.Int(),
		ProofRef:    strings.TrimSpace(raw.ProofRef),
	}
}

// AdaptDues adapts a slice of raw cuota records.
func AdaptDues(raws []RawDue) []Due {
	out := make([]Due, 0, len(raws))
	for _, raw := range raws {
		out = append(out, AdaptDue(raw))
	}
	return out
}

// =============================================================================
// COMPENSATION ADAPTER
// =============================================================================

// AdaptCompensation converts a stored compensation row.
func AdaptCompensation(raw RawCompensation) CompensationRecord {
	return CompensationRecord{
		ID:           raw.ID.ID(),
		Period:       strings.TrimSpace(raw.Period),
		StaffID:      raw.StaffID.ID(),
		StaffName:    strings.TrimSpace(raw.StaffName),
		ActivityID:   raw.ActivityID.ID(),
		ActivityName: strings.TrimSpace(raw.ActivityName),
		Amount:       raw.Amount.Decimal,
	}
}

// AdaptCompensations adapts a slice of stored compensation rows.
func AdaptCompensations(raws []RawCompensation) []CompensationRecord {
	out := make([]CompensationRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, AdaptCompensation(raw))
	}
	return out
}
