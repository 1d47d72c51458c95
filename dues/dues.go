/*
Package dues derives display state for cuotas (monthly member dues).

PURPOSE:
  Computes what a due LOOKS like — total amount, state label, overdue days —
  from the raw record plus its linked enrollment detail. The upstream is
  authoritative for every number here; client-side recomputation exists only
  as a display fallback and is NEVER written back.

RULES:
  total    = server monto_total when present,
             else valor_base + sum(activity surcharges)
  state    = closed enumeration {al_dia, pendiente_revision, atrasada};
             anything unrecognized maps to atrasada (never hide a due)
  overdue  = dias_atraso pass-through; not recomputed locally because there
             is no trustworthy shared clock across admin/member sessions

SEE ALSO:
  - proof.go:        payment-proof upload validation
  - club/adapter.go: AdaptDue (state parsing happens there)
*/
package dues

import (
	"github.com/shopspring/decimal"

	"github.com/warp/club-engine/club"
)

// =============================================================================
// DISPLAY LABELS
// =============================================================================

// Display labels for the closed due-state enumeration.
const (
	LabelOnTime        = "Al día"
	LabelPendingReview = "Pendiente de revisión"
	LabelOverdue       = "Atrasada"
)

// StateLabel maps a due state to its fixed display label. The enumeration
// is closed: unknown states already collapsed to overdue during adaptation,
// and this mapping applies the same safe default.
func StateLabel(s club.DueState) string {
	switch s {
	case club.DueOnTime:
		return LabelOnTime
	case club.DuePendingReview:
		return LabelPendingReview
	default:
		return LabelOverdue
	}
}

// =============================================================================
// AMOUNTS
// =============================================================================

// DisplayTotal returns the amount to show for a due: the server-supplied
// total when present, otherwise base plus the sum of activity surcharges.
// The fallback is display-only; it is never sent upstream.
func DisplayTotal(d club.Due) decimal.Decimal {
	if d.Total != nil {
		return *d.Total
	}
	total := d.Base
	for _, s := range d.Surcharges {
		total = total.Add(s)
	}
	return total
}

// SurchargeTotal returns the activity-surcharge portion alone.
func SurchargeTotal(d club.Due) decimal.Decimal {
	total := decimal.Zero
	for _, s := range d.Surcharges {
		total = total.Add(s)
	}
	return total
}

// =============================================================================
// DUE VIEW
// =============================================================================

// View is the fully derived display shape for one due.
type View struct {
	ID          club.ID
	MemberID    club.ID
	MemberName  string
	Period      string
	Base        decimal.Decimal
	Surcharges  decimal.Decimal
	Total       decimal.Decimal
	State       club.DueState
	StateLabel  string
	DueDate     string
	PaymentDate string
	DaysOverdue int
	HasProof    bool
	// Payable reports whether the due is in a state an admin may act on
	// (approve a payment): overdue or pending review.
	Payable bool
}

// BuildView derives the display view for one due.
func BuildView(d club.Due) View {
	v := View{
		ID:          d.ID,
		MemberID:    d.MemberID,
		MemberName:  d.MemberName,
		Period:      d.Period,
		Base:        d.Base,
		Surcharges:  SurchargeTotal(d),
		Total:       DisplayTotal(d),
		State:       d.State,
		StateLabel:  StateLabel(d.State),
		DaysOverdue: d.DaysOverdue,
		HasProof:    d.ProofRef != "",
		Payable:     d.State == club.DueOverdue || d.State == club.DuePendingReview,
	}
	if d.DueDate != nil {
		v.DueDate = d.DueDate.Format("2006-01-02")
	}
	if d.PaymentDate != nil {
		v.PaymentDate = d.PaymentDate.Format("2006-01-02")
	}
	return v
}

// BuildViews derives display views for a slice of dues.
func BuildViews(ds []club.Due) []View {
	out := make([]View, 0, len(ds))
	for _, d := range ds {
		out = append(out, BuildView(d))
	}
	return out
}

// =============================================================================
// AGGREGATES
// =============================================================================

// Totals summarizes a member's dues for the payments panel.
type Totals struct {
	Paid        int
	Outstanding int
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
}

// Summarize counts paid vs outstanding dues and sums amounts.
func Summarize(views []View) Totals {
	t := Totals{TotalAmount: decimal.Zero, PaidAmount: decimal.Zero}
	for _, v := range views {
		t.TotalAmount = t.TotalAmount.Add(v.Total)
		if v.State == club.DueOnTime {
			t.Paid++
			t.PaidAmount = t.PaidAmount.Add(v.Total)
		} else {
			t.Outstanding++
		}
	}
	return t
}
