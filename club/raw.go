/*
raw.go - Tolerant wire-level record shapes

PURPOSE:
  Defines the raw shapes of upstream API records along with JSON field types
  that never fail to unmarshal. The upstream serializes ids sometimes as
  numbers and sometimes as strings, money as quoted decimals, and omits
  optional fields freely; these types absorb all of that so the adapters
  can stay total.

TOLERANT FIELD TYPES:
  FlexID      number | string | null        -> canonical ID
  FlexMoney   number | "123.45" | null | "" -> decimal (garbage -> zero)
  FlexBool    bool | "true" | 1 | null      -> bool
  FlexInt     number | "12" | null          -> int

NOTE:
  UnmarshalJSON on these types deliberately swallows malformed input and
  substitutes the documented default. Propagating a parse error here would
  make one bad field take down a whole list response.

SEE ALSO:
  - adapter.go: Consumes these shapes
  - types.go:   The normalized output shapes
*/
package club

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TOLERANT JSON FIELD TYPES
// =============================================================================

// FlexID accepts a JSON number, string or null and normalizes it.
type FlexID ID

func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" || s == `""` || s == "" {
		*f = ""
		return nil
	}
	s = strings.Trim(s, `"`)
	*f = FlexID(NormalizeID(s))
	return nil
}

// ID returns the canonical form.
func (f FlexID) ID() ID { return ID(f) }

// FlexMoney accepts a JSON number, a quoted decimal string, null or an empty
// string. Anything unparseable degrades to zero.
type FlexMoney struct {
	decimal.Decimal
}

func (f *FlexMoney) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "null" || s == "" {
		f.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		f.Decimal = decimal.Zero
		return nil
	}
	f.Decimal = d
	return nil
}

// FlexOptMoney is FlexMoney that preserves absence: null/missing stays nil.
type FlexOptMoney struct {
	Value *decimal.Decimal
}

func (f *FlexOptMoney) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "null" || s == "" {
		f.Value = nil
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		f.Value = nil
		return nil
	}
	f.Value = &d
	return nil
}

// FlexBool accepts bool, "true"/"false", 0/1 or null.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	switch strings.ToLower(s) {
	case "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Bool returns the plain bool value.
func (f FlexBool) Bool() bool { return bool(f) }

// FlexInt accepts a JSON number, a numeric string or null; garbage -> 0.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	// Accept "12.0" style numbers too; truncate toward zero.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexInt(int(fl))
		return nil
	}
	*f = 0
	return nil
}

// Int returns the plain int value.
func (f FlexInt) Int() int { return int(f) }

// =============================================================================
// RAW RECORDS
// =============================================================================

// RawUser is a record from /usuarios/.
type RawUser struct {
	ID         FlexID   `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	NationalID string   `json:"dni"`
	Phone      string   `json:"telefono"`
	State      string   `json:"estado"`
	JoinedAt   string   `json:"date_joined"`
	IsAdmin    FlexBool `json:"es_admin"`
	IsStaff    FlexBool `json:"es_staff"`
	IsMember   FlexBool `json:"es_socio"`
}

// RawActivity is a record from /actividades/.
type RawActivity struct {
	ID            FlexID    `json:"id"`
	Name          string    `json:"nombre"`
	Description   string    `json:"descripcion"`
	Start         string    `json:"fecha_hora_inicio"`
	End           string    `json:"fecha_hora_fin"`
	Fee           FlexMoney `json:"cargo_inscripcion"`
	State         string    `json:"estado"`
	StaffID       FlexID    `json:"usuario_staff"`
	StaffName     string    `json:"usuario_staff_nombre"`
	EnrolledCount FlexInt   `json:"cantidad_inscriptos"`
	Capacity      FlexInt   `json:"cupo"`
}

// RawEnrollment is a record from /inscripciones/.
type RawEnrollment struct {
	ID           FlexID `json:"id"`
	EnrolledAt   string `json:"fecha_inscripcion"`
	State        string `json:"estado"`
	MemberID     FlexID `json:"usuario_socio"`
	MemberName   string `json:"usuario_socio_nombre"`
	ActivityID   FlexID `json:"actividad"`
	ActivityName string `json:"actividad_nombre"`
}

// RawDue is a record from /cuotas/.
type RawDue struct {
	ID          FlexID       `json:"id"`
	DueDate     string       `json:"fecha_vencimiento"`
	PaymentDate string       `json:"fecha_pago"`
	Base        FlexMoney    `json:"valor_base"`
	Surcharges  []FlexMoney  `json:"valor_actividades"`
	Total       FlexOptMoney `json:"monto_total"`
	Period      string       `json:"periodo"`
	MemberID    FlexID       `json:"usuario_socio"`
	MemberName  string       `json:"usuario_socio_nombre"`
	State       string       `json:"estado"`
	DaysOverdue FlexInt      `json:"dias_atraso"`
	ProofRef    string       `json:"comprobante"`
}

// RawCompensation is a record from /compensaciones/.
type RawCompensation struct {
	ID           FlexID    `json:"id"`
	Period       string    `json:"periodo"`
	StaffID      FlexID    `json:"usuario_staff"`
	StaffName    string    `json:"usuario_staff_nombre"`
	ActivityID   FlexID    `json:"actividad"`
	ActivityName string    `json:"actividad_nombre"`
	Amount       FlexMoney `json:"monto"`
}

// ParseInstant parses the timestamp formats the upstream emits. Returns nil
// (not an error) when the value is missing or unparseable; callers decide
// what a missing instant means (the status engine fails open, for example).
func ParseInstant(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
