/*
handlers.go - HTTP handlers for the derived-view API

PURPOSE:
  Serves the SPA pre-derived, role-projected views so the rules live in one
  place instead of being re-implemented per screen. Every read goes through
  the engine packages (activity, enrollment, dues, compensation, roles);
  every mutation is proxied to the upstream and followed by cache
  invalidation — authoritative state is re-fetched, never merged.

ENDPOINTS:
  Socios:
    GET  /api/socios/{id}/actividades     Four-bucket catalog partition
    GET  /api/socios/{id}/inscripciones   Reconciled enrolled activities
    GET  /api/socios/{id}/cuotas          Dues display views + roll-up
    POST /api/socios/{id}/inscripciones   Enroll (proxied)

  Inscripciones:
    POST /api/inscripciones/{id}/cancelar Cancel enrollment (proxied)

  Cuotas:
    POST /api/cuotas/{id}/comprobante     Upload payment proof

  Staff:
    GET  /api/staff/{id}/compensaciones   Per-activity compensation + totals

  Session:
    GET  /api/session/views               Permitted views/actions

  Reportes:
    GET  /api/reportes/cuotas.xlsx        Workbook export

CACHING:
  Slow upstream catalogs (staff, activities) are read through the snapshot
  cache. Refreshes are guarded by the fetch coordinator so a slower, older
  fetch can never overwrite a newer snapshot.

ERROR HANDLING:
  Upstream/domain errors map onto HTTP statuses:
  - 400: ValidationError (field map included)
  - 404: NotFoundError
  - 409: ConflictError
  - 502: TransportError (upstream unreachable or misbehaving)
  - 500: anything else

SEE ALSO:
  - dto.go:    Response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/club-engine/activity"
	"github.com/warp/club-engine/club"
	"github.com/warp/club-engine/clubapi"
	"github.com/warp/club-engine/compensation"
	"github.com/warp/club-engine/dues"
	"github.com/warp/club-engine/enrollment"
	"github.com/warp/club-engine/report"
	"github.com/warp/club-engine/store/cache"
)

type nowFunc func() time.Time

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Client *clubapi.Client
	Cache  *cache.Cache
	Coord  *clubapi.FetchCoordinator
	Log    *zap.Logger

	// Now is replaceable for tests.
	Now nowFunc

	// ShareRatio overrides the default compensation split when set.
	ShareRatio decimal.Decimal
}

// NewHandler creates a handler with the given collaborators.
func NewHandler(client *clubapi.Client, c *cache.Cache, log *zap.Logger) *Handler {
	return &Handler{
		Client:     client,
		Cache:      c,
		Coord:      clubapi.NewFetchCoordinator(),
		Log:        log,
		Now:        time.Now,
		ShareRatio: compensation.ShareRatio,
	}
}

// =============================================================================
// CATALOG ACCESS (read-through cache)
// =============================================================================

// staffIndex returns the staff catalog, from cache when fresh.
func (h *Handler) staffIndex(r *http.Request) (club.StaffIndex, error) {
	ctx := r.Context()

	var staff []club.StaffMember
	if ok, _ := h.Cache.Get(ctx, cache.ResourceStaff, &staff); ok {
		return club.NewStaffIndex(staff), nil
	}

	token := h.Coord.Begin(cache.ResourceStaff)
	staff, err := h.Client.ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	if h.Coord.Commit(cache.ResourceStaff, token) {
		if err := h.Cache.Put(ctx, cache.ResourceStaff, staff); err != nil {
			h.Log.Warn("staff snapshot write failed", zap.Error(err))
		}
	}
	return club.NewStaffIndex(staff), nil
}

// catalog returns the adapted activity catalog, from cache when fresh. The
// staff index resolves first because adaptation attaches instructor names.
func (h *Handler) catalog(r *http.Request) ([]club.ActivityView, error) {
	ctx := r.Context()

	var views []club.ActivityView
	if ok, _ := h.Cache.Get(ctx, cache.ResourceActivities, &views); ok {
		return views, nil
	}

	staff, err := h.staffIndex(r)
	if err != nil {
		return nil, err
	}

	token := h.Coord.Begin(cache.ResourceActivities)
	views, _, err = h.Client.ListActivities(ctx, clubapi.ActivityFilter{}, staff)
	if err != nil {
		return nil, err
	}
	if h.Coord.Commit(cache.ResourceActivities, token) {
		if err := h.Cache.Put(ctx, cache.ResourceActivities, views); err != nil {
			h.Log.Warn("activity snapshot write failed", zap.Error(err))
		}
	}
	return views, nil
}

// =============================================================================
// SOCIO HANDLERS
// =============================================================================

// GetMemberActivities partitions the catalog into the four buckets for one
// member.
func (h *Handler) GetMemberActivities(w http.ResponseWriter, r *http.Request) {
	memberID := club.NormalizeID(chi.URLParam(r, "id"))

	catalog, err := h.catalog(r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	enrollments, err := h.Client.ListEnrollments(r.Context(), clubapi.EnrollmentFilter{MemberID: memberID})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	enrolled := activity.NewEnrolledSet(enrollments)
	buckets := activity.Partition(catalog, enrolled, h.Now())
	writeJSON(w, http.StatusOK, bucketsToDTO(buckets, enrolled, h.Now))
}

// GetMemberEnrollments returns the member's reconciled enrolled-activity
// list.
func (h *Handler) GetMemberEnrollments(w http.ResponseWriter, r *http.Request) {
	memberID := club.NormalizeID(chi.URLParam(r, "id"))

	catalog, err := h.catalog(r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	enrollments, err := h.Client.ListEnrollments(r.Context(), clubapi.EnrollmentFilter{MemberID: memberID})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	views, warnings := enrollment.ResolveMemberEnrollments(enrollments, catalog, memberID)
	for _, warn := range warnings {
		h.Log.Warn("integrity warning",
			zap.String("kind", warn.Kind),
			zap.String("subject", warn.Subject.String()))
	}
	writeJSON(w, http.StatusOK, toEnrolledDTOs(views))
}

// GetMemberDues returns the member's cuota display views plus the roll-up.
func (h *Handler) GetMemberDues(w http.ResponseWriter, r *http.Request) {
	memberID := club.NormalizeID(chi.URLParam(r, "id"))

	records, err := h.Client.ListDues(r.Context(), clubapi.DueFilter{MemberID: memberID})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	views := dues.BuildViews(records)
	totals := dues.Summarize(views)
	writeJSON(w, http.StatusOK, MemberDuesDTO{
		Dues:        toDueDTOs(views),
		Paid:        totals.Paid,
		Outstanding: totals.Outstanding,
		TotalAmount: totals.TotalAmount.String(),
		PaidAmount:  totals.PaidAmount.String(),
	})
}

// Enroll creates an enrollment after checking the engine's gates locally.
// The upstream remains the final authority; a duplicate races through as a
// ConflictError.
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	memberID := club.NormalizeID(chi.URLParam(r, "id"))

	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de solicitud inválido", nil)
		return
	}
	activityID := club.NormalizeID(req.ActivityID)
	if activityID.IsZero() {
		writeError(w, http.StatusBadRequest, "actividad requerida", map[string]string{"actividad": "requerida"})
		return
	}

	catalog, err := h.catalog(r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	enrollments, err := h.Client.ListEnrollments(r.Context(), clubapi.EnrollmentFilter{MemberID: memberID})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	enrolled := activity.NewEnrolledSet(enrollments)
	idx := enrollment.NewActivityIndex(catalog)
	target, ok := idx[activityID]
	if !ok {
		h.writeDomainError(w, &club.NotFoundError{Resource: "actividades", ID: activityID})
		return
	}
	if !activity.CanEnroll(target, enrolled, h.Now()) {
		h.writeDomainError(w, &club.ConflictError{
			Resource: "inscripciones",
			Message:  "la actividad no admite nuevas inscripciones para este socio",
		})
		return
	}

	created, err := h.Client.Enroll(r.Context(), memberID, activityID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.invalidate(r, cache.ResourceActivities, cache.ResourceEnrollments)

	writeJSON(w, http.StatusCreated, map[string]any{
		"inscripcion_id": created.ID.String(),
		"actividad_id":   created.ActivityID.String(),
		"estado":         string(created.State),
	})
}

// CancelEnrollment cancels by ENROLLMENT id (a state transition upstream,
// never a delete).
func (h *Handler) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollmentID := club.NormalizeID(chi.URLParam(r, "id"))

	if err := h.Client.CancelEnrollment(r.Context(), enrollmentID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.invalidate(r, cache.ResourceActivities, cache.ResourceEnrollments)

	writeJSON(w, http.StatusOK, map[string]string{"estado": "cancelada"})
}

// =============================================================================
// CUOTA HANDLERS
// =============================================================================

// UploadProof forwards a payment proof after local validation.
func (h *Handler) UploadProof(w http.ResponseWriter, r *http.Request) {
	dueID := club.NormalizeID(chi.URLParam(r, "id"))

	if err := r.ParseMultipartForm(dues.MaxProofSize + 1024); err != nil {
		writeError(w, http.StatusBadRequest, "formulario multipart inválido", nil)
		return
	}
	file, header, err := r.FormFile("comprobante")
	if err != nil {
		writeError(w, http.StatusBadRequest, "falta el archivo comprobante",
			map[string]string{"comprobante": "requerido"})
		return
	}
	defer file.Close()

	updated, err := h.Client.UploadProof(r.Context(), dueID,
		header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.invalidate(r, cache.ResourceDues)

	writeJSON(w, http.StatusOK, toDueDTOs(dues.BuildViews([]club.Due{updated}))[0])
}

// =============================================================================
// STAFF HANDLERS
// =============================================================================

// GetStaffCompensations derives per-activity compensation for one staff
// member from the live catalog.
func (h *Handler) GetStaffCompensations(w http.ResponseWriter, r *http.Request) {
	staffID := club.NormalizeID(chi.URLParam(r, "id"))

	catalog, err := h.catalog(r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	var mine []club.ActivityView
	for _, a := range catalog {
		if a.StaffID == staffID {
			mine = append(mine, a)
		}
	}
	summary := compensation.SummarizeWithRatio(mine, h.ShareRatio)
	writeJSON(w, http.StatusOK, toCompensationsDTO(summary))
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// GetSessionViews projects the session user's role flags onto permitted
// views and actions.
func (h *Handler) GetSessionViews(w http.ResponseWriter, r *http.Request) {
	user, err := h.Client.Profile(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(user))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// ExportDuesReport streams the period's workbook.
func (h *Handler) ExportDuesReport(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("periodo")

	records, err := h.Client.ListDues(r.Context(), clubapi.DueFilter{Period: period})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	catalog, err := h.catalog(r)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	summary := compensation.SummarizeWithRatio(catalog, h.ShareRatio)
	rep := report.DuesReport{
		Period:        period,
		Dues:          dues.BuildViews(records),
		Compensations: summary.Activities,
	}

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(period)+`"`)
	if err := report.Write(w, rep); err != nil {
		h.Log.Error("report write failed", zap.Error(err))
	}
}

// Healthz answers liveness probes.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// invalidate drops cache snapshots after a mutation; failures are logged,
// not surfaced, because the mutation itself already succeeded.
func (h *Handler) invalidate(r *http.Request, resources ...string) {
	if err := h.Cache.Invalidate(r.Context(), resources...); err != nil {
		h.Log.Warn("cache invalidation failed", zap.Error(err))
	}
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var verr *club.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Message, Fields: verr.Fields})
		return
	}

	switch {
	case club.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, club.ErrConflict):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case club.IsRetryable(err):
		h.Log.Warn("upstream failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "el servicio externo no respondió", nil)
	default:
		h.Log.Error("unexpected failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "error interno", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	writeJSON(w, status, ErrorResponse{Error: message, Fields: fields})
}
