package club_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/club-engine/club"
)

// =============================================================================
// ID NORMALIZATION TESTS
// =============================================================================

func TestNormalizeID_NumberAndStringFormsAreEqual(t *testing.T) {
	// GIVEN: The same id serialized as a number and as a string
	// WHEN: Both pass through NormalizeID
	// THEN: They compare equal

	if club.NormalizeID("7") != club.NormalizeID(" 7 ") {
		t.Error("whitespace should not affect normalization")
	}
	if club.NormalizeID("007") != club.NormalizeID("7") {
		t.Error("leading zeros should fold into the canonical numeric form")
	}
	if club.NormalizeID("abc-1") != club.ID("abc-1") {
		t.Error("non-numeric ids should pass through unchanged")
	}
}

func TestFlexID_UnmarshalsNumbersAndStrings(t *testing.T) {
	var payload struct {
		A club.FlexID `json:"a"`
		B club.FlexID `json:"b"`
		C club.FlexID `json:"c"`
	}
	raw := []byte(`{"a": 7, "b": "7", "c": null}`)
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if payload.A.ID() != payload.B.ID() {
		t.Errorf("number 7 and string \"7\" should normalize equal, got %q vs %q", payload.A.ID(), payload.B.ID())
	}
	if !payload.C.ID().IsZero() {
		t.Errorf("null id should be zero, got %q", payload.C.ID())
	}
}

// =============================================================================
// ADAPTER TOTALITY TESTS
// =============================================================================

func TestAdaptMember_DefaultsForMissingFields(t *testing.T) {
	// GIVEN: A raw user with nothing but an id
	// WHEN: Adapted
	// THEN: All optional fields resolve to their documented defaults

	m := club.AdaptMember(club.RawUser{ID: club.FlexID("42")})

	if m.ID != club.ID("42") {
		t.Fatalf("expected id 42, got %q", m.ID)
	}
	if m.Email != "" || m.Phone != "" {
		t.Error("missing contact fields should be empty strings")
	}
	if m.State != club.UserActive {
		t.Errorf("missing state should default to active, got %q", m.State)
	}
	if m.DisplayName() != "Sin nombre" {
		t.Errorf("nameless user should render the placeholder, got %q", m.DisplayName())
	}
}

func TestAdaptMember_GarbledStateStaysVisible(t *testing.T) {
	m := club.AdaptMember(club.RawUser{ID: club.FlexID("1"), State: "???"})
	if m.State != club.UserActive {
		t.Errorf("unknown state should coerce to active, got %q", m.State)
	}
}

func TestAdaptActivity_ResolvesInstructorThroughIndex(t *testing.T) {
	// GIVEN: An activity referencing staff id 3 and an index containing it
	staff := club.NewStaffIndex([]club.StaffMember{
		{ID: club.ID("3"), FullName: "Marta Pereyra"},
	})

	// WHEN: Adapting with the index
	view, warnings := club.AdaptActivity(club.RawActivity{
		ID:      club.FlexID("10"),
		Name:    "Yoga",
		StaffID: club.FlexID("3"),
	}, staff)

	// THEN: The instructor name resolves and no warnings are emitted
	if view.InstructorName != "Marta Pereyra" {
		t.Errorf("expected resolved instructor, got %q", view.InstructorName)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestAdaptActivity_UnresolvedStaffGetsPlaceholder(t *testing.T) {
	view, _ := club.AdaptActivity(club.RawActivity{
		ID:      club.FlexID("10"),
		StaffID: club.FlexID("99"),
	}, club.StaffIndex{})

	if view.InstructorName != club.UnassignedInstructor {
		t.Errorf("expected %q, got %q", club.UnassignedInstructor, view.InstructorName)
	}
}

func TestAdaptActivity_EndBeforeStartIsWarnedNotRejected(t *testing.T) {
	// GIVEN: An activity whose end precedes its start
	view, warnings := club.AdaptActivity(club.RawActivity{
		ID:    club.FlexID("5"),
		Start: "2025-06-01T10:00:00Z",
		End:   "2025-05-01T10:00:00Z",
	}, nil)

	// THEN: The record survives and a data-integrity warning is emitted
	if view.ID != club.ID("5") {
		t.Fatal("record should survive adaptation")
	}
	if len(warnings) != 1 || warnings[0].Kind != "end_before_start" {
		t.Errorf("expected a single end_before_start warning, got %v", warnings)
	}
}

func TestAdaptActivity_UnparseableEndSurvivesAsRawString(t *testing.T) {
	view, _ := club.AdaptActivity(club.RawActivity{
		ID:  club.FlexID("5"),
		End: "not-a-date",
	}, nil)

	if view.End != nil {
		t.Error("unparseable end should stay nil")
	}
	if view.EndRaw != "not-a-date" {
		t.Errorf("raw end string should be preserved, got %q", view.EndRaw)
	}
}

func TestAdaptDue_MoneyTolerance(t *testing.T) {
	// GIVEN: A cuota payload with money serialized as quoted decimals,
	// a null total and a missing period
	var raw club.RawDue
	payload := []byte(`{
		"id": "12",
		"valor_base": "5000.00",
		"valor_actividades": ["1500.00", 300],
		"monto_total": null,
		"fecha_vencimiento": "2025-03-10T00:00:00Z",
		"estado": "atrasada",
		"dias_atraso": 4
	}`)
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}

	due := club.AdaptDue(raw)

	if !due.Base.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected base 5000, got %v", due.Base)
	}
	if len(due.Surcharges) != 2 {
		t.Fatalf("expected 2 surcharges, got %d", len(due.Surcharges))
	}
	if due.Total != nil {
		t.Error("null total should stay absent")
	}
	if due.Period != "2025-03" {
		t.Errorf("period should derive from the due date, got %q", due.Period)
	}
	if due.DaysOverdue != 4 {
		t.Errorf("days overdue should pass through, got %d", due.DaysOverdue)
	}
}
