/*
dto.go - Data Transfer Objects for the derived-view API

PURPOSE:
  Defines the JSON structures served to the SPA. These are projections of
  the engine's derived views; amounts serialize as decimal strings so the
  frontend never sees float artifacts.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Producers of these shapes
*/
package api

import (
	"github.com/warp/club-engine/activity"
	"github.com/warp/club-engine/club"
	"github.com/warp/club-engine/compensation"
	"github.com/warp/club-engine/dues"
	"github.com/warp/club-engine/enrollment"
	"github.com/warp/club-engine/roles"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// EnrollRequest is the body for POST /api/socios/{id}/inscripciones.
type EnrollRequest struct {
	ActivityID string `json:"actividad"`
}

// =============================================================================
// ACTIVITIES
// =============================================================================

// ActivityDTO is one activity as the SPA consumes it.
type ActivityDTO struct {
	ID            string `json:"id"`
	Name          string `json:"nombre"`
	Description   string `json:"descripcion,omitempty"`
	Fee           string `json:"cargo_inscripcion"`
	Start         string `json:"fecha_hora_inicio,omitempty"`
	End           string `json:"fecha_hora_fin,omitempty"`
	State         string `json:"estado"`
	Instructor    string `json:"instructor"`
	EnrolledCount int    `json:"cantidad_inscriptos"`
	Capacity      int    `json:"cupo,omitempty"`
	Full          bool   `json:"completa"`
	Expired       bool   `json:"vencida"`
	CanEnroll     bool   `json:"puede_inscribirse"`
}

func toActivityDTO(a club.ActivityView, full, expired, canEnroll bool) ActivityDTO {
	return ActivityDTO{
		ID:            a.ID.String(),
		Name:          a.Name,
		Description:   a.Description,
		Fee:           a.Fee.String(),
		Start:         a.StartRaw,
		End:           a.EndRaw,
		State:         string(a.State),
		Instructor:    a.InstructorName,
		EnrolledCount: a.EnrolledCount,
		Capacity:      a.Capacity,
		Full:          full,
		Expired:       expired,
		CanEnroll:     canEnroll,
	}
}

// BucketsDTO is the four-way partition of the catalog for one member.
type BucketsDTO struct {
	EnrolledActive    []ActivityDTO `json:"inscriptas_activas"`
	Available         []ActivityDTO `json:"disponibles"`
	EnrolledExpired   []ActivityDTO `json:"inscriptas_vencidas"`
	ExpiredUnenrolled []ActivityDTO `json:"vencidas_sin_inscripcion"`
}

// bucketsToDTO converts the engine partition for one member, attaching the
// per-activity classification flags the SPA renders badges from.
func bucketsToDTO(b activity.Buckets, enrolled activity.EnrolledSet, now nowFunc) BucketsDTO {
	convert := func(list []club.ActivityView) []ActivityDTO {
		out := make([]ActivityDTO, 0, len(list))
		for _, a := range list {
			out = append(out, toActivityDTO(a,
				activity.IsFull(a),
				activity.IsExpired(a, now()),
				activity.CanEnroll(a, enrolled, now()),
			))
		}
		return out
	}
	return BucketsDTO{
		EnrolledActive:    convert(b.EnrolledActive),
		Available:         convert(b.Available),
		EnrolledExpired:   convert(b.EnrolledExpired),
		ExpiredUnenrolled: convert(b.ExpiredUnenrolled),
	}
}

// =============================================================================
// ENROLLMENTS
// =============================================================================

// EnrolledActivityDTO flattens an enrollment with its activity. The
// enrollment id is what the cancel endpoint wants.
type EnrolledActivityDTO struct {
	EnrollmentID string `json:"inscripcion_id"`
	ActivityID   string `json:"actividad_id"`
	Name         string `json:"nombre"`
	Instructor   string `json:"instructor"`
	Fee          string `json:"cargo_inscripcion"`
	EnrolledAt   string `json:"fecha_inscripcion,omitempty"`
}

func toEnrolledDTOs(views []enrollment.EnrolledActivity) []EnrolledActivityDTO {
	out := make([]EnrolledActivityDTO, 0, len(views))
	for _, v := range views {
		out = append(out, EnrolledActivityDTO{
			EnrollmentID: v.EnrollmentID.String(),
			ActivityID:   v.Activity.ID.String(),
			Name:         v.Activity.Name,
			Instructor:   v.Activity.InstructorName,
			Fee:          v.Fee.String(),
			EnrolledAt:   v.EnrolledAt,
		})
	}
	return out
}

// =============================================================================
// DUES
// =============================================================================

// DueDTO is one cuota display view.
type DueDTO struct {
	ID          string `json:"id"`
	MemberName  string `json:"socio,omitempty"`
	Period      string `json:"periodo"`
	Base        string `json:"valor_base"`
	Surcharges  string `json:"valor_actividades"`
	Total       string `json:"monto_total"`
	State       string `json:"estado"`
	StateLabel  string `json:"estado_display"`
	DueDate     string `json:"fecha_vencimiento,omitempty"`
	PaymentDate string `json:"fecha_pago,omitempty"`
	DaysOverdue int    `json:"dias_atraso"`
	HasProof    bool   `json:"tiene_comprobante"`
}

// MemberDuesDTO is the dues panel payload: views plus the roll-up.
type MemberDuesDTO struct {
	Dues        []DueDTO `json:"cuotas"`
	Paid        int      `json:"pagadas"`
	Outstanding int      `json:"pendientes"`
	TotalAmount string   `json:"monto_total"`
	PaidAmount  string   `json:"monto_pagado"`
}

func toDueDTOs(views []dues.View) []DueDTO {
	out := make([]DueDTO, 0, len(views))
	for _, v := range views {
		out = append(out, DueDTO{
			ID:          v.ID.String(),
			MemberName:  v.MemberName,
			Period:      v.Period,
			Base:        v.Base.String(),
			Surcharges:  v.Surcharges.String(),
			Total:       v.Total.String(),
			State:       string(v.State),
			StateLabel:  v.StateLabel,
			DueDate:     v.DueDate,
			PaymentDate: v.PaymentDate,
			DaysOverdue: v.DaysOverdue,
			HasProof:    v.HasProof,
		})
	}
	return out
}

// =============================================================================
// COMPENSATIONS
// =============================================================================

// CompensationDTO is one activity's derived compensation.
type CompensationDTO struct {
	ActivityID    string `json:"actividad_id"`
	ActivityName  string `json:"actividad"`
	EnrolledCount int    `json:"inscriptos"`
	FeePerMember  string `json:"cargo_por_socio"`
	GrossRevenue  string `json:"ingresos"`
	StaffShare    string `json:"compensacion"`
}

// StaffCompensationsDTO is the staff earnings panel payload.
type StaffCompensationsDTO struct {
	Activities    []CompensationDTO `json:"actividades"`
	TotalEnrolled int               `json:"total_inscriptos"`
	TotalGross    string            `json:"total_ingresos"`
	TotalShare    string            `json:"total_compensacion"`
}

func toCompensationsDTO(s compensation.Summary) StaffCompensationsDTO {
	dto := StaffCompensationsDTO{
		Activities:    make([]CompensationDTO, 0, len(s.Activities)),
		TotalEnrolled: s.TotalEnrolled,
		TotalGross:    s.TotalGross.String(),
		TotalShare:    s.TotalShare.String(),
	}
	for _, b := range s.Activities {
		dto.Activities = append(dto.Activities, CompensationDTO{
			ActivityID:    b.ActivityID.String(),
			ActivityName:  b.ActivityName,
			EnrolledCount: b.EnrolledCount,
			FeePerMember:  b.FeePerMember.String(),
			GrossRevenue:  b.GrossRevenue.String(),
			StaffShare:    b.StaffShare.String(),
		})
	}
	return dto
}

// =============================================================================
// SESSION
// =============================================================================

// SessionDTO describes what the session user may see and do.
type SessionDTO struct {
	UserID  string              `json:"usuario_id"`
	Name    string              `json:"nombre"`
	Roles   RolesDTO            `json:"roles"`
	Landing string              `json:"vista_inicial"`
	Views   []string            `json:"vistas"`
	Actions map[string][]string `json:"acciones"`
}

// RolesDTO mirrors the upstream role flags.
type RolesDTO struct {
	Admin  bool `json:"es_admin"`
	Staff  bool `json:"es_staff"`
	Member bool `json:"es_socio"`
}

func toSessionDTO(user club.Member) SessionDTO {
	viewSet := roles.PermittedViews(user.Roles)
	views := viewSet.Sorted()

	dto := SessionDTO{
		UserID: user.ID.String(),
		Name:   user.DisplayName(),
		Roles: RolesDTO{
			Admin:  user.Roles.Admin,
			Staff:  user.Roles.Staff,
			Member: user.Roles.Member,
		},
		Landing: string(roles.LandingView(user.Roles)),
		Views:   make([]string, 0, len(views)),
		Actions: make(map[string][]string, len(views)),
	}
	for _, v := range views {
		dto.Views = append(dto.Views, string(v))
		actions := roles.PermittedActions(user.Roles, v).Sorted()
		list := make([]string, 0, len(actions))
		for _, a := range actions {
			list = append(list, string(a))
		}
		dto.Actions[string(v)] = list
	}
	return dto
}
