/*
actividades.go - Wrappers for the /actividades/ resource

Activity listings come back already adapted: the caller supplies the staff
index (resolved first, see ListStaff) and gets ActivityViews with
instructor names attached, plus any integrity warnings the adaptation
surfaced. Lifecycle actions cover finalizar and archivar; inscriptos lists
the activity's enrollments for the staff roster view.
*/
package clubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/warp/club-engine/club"
)

// ActivityFilter narrows an activity listing. Zero values mean "no filter".
type ActivityFilter struct {
	State   club.ActivityState
	StaffID club.ID
}

func (f ActivityFilter) query() url.Values {
	q := url.Values{}
	if f.State != "" {
		q.Set("estado", string(f.State))
	}
	if !f.StaffID.IsZero() {
		q.Set("usuario_staff", f.StaffID.String())
	}
	return q
}

// ListActivities lists activities adapted against the given staff index.
func (c *Client) ListActivities(ctx context.Context, filter ActivityFilter, staff club.StaffIndex) ([]club.ActivityView, []club.IntegrityWarning, error) {
	raws, err := fetchList[club.RawActivity](ctx, c, "actividades.list", "actividades/", filter.query())
	if err != nil {
		return nil, nil, err
	}
	views, warnings := club.AdaptActivities(raws, staff)
	c.logWarnings(warnings)
	return views, warnings, nil
}

// GetActivity fetches one activity.
func (c *Client) GetActivity(ctx context.Context, id club.ID, staff club.StaffIndex) (club.ActivityView, error) {
	data, err := c.do(ctx, "actividades.get", http.MethodGet, fmt.Sprintf("actividades/%s/", id), nil, nil)
	if err != nil {
		return club.ActivityView{}, err
	}
	raw, err := decodeOne[club.RawActivity]("actividades.get", data)
	if err != nil {
		return club.ActivityView{}, err
	}
	view, warnings := club.AdaptActivity(raw, staff)
	c.logWarnings(warnings)
	return view, nil
}

// ActivityRequest is the payload for activity creation and full update.
type ActivityRequest struct {
	Name        string          `json:"nombre"            validate:"required"`
	Description string          `json:"descripcion"       validate:"omitempty"`
	Start       string          `json:"fecha_hora_inicio" validate:"required"`
	End         string          `json:"fecha_hora_fin"    validate:"required"`
	Fee         decimal.Decimal `json:"cargo_inscripcion"`
	StaffID     club.ID         `json:"usuario_staff"     validate:"omitempty"`
	Capacity    int             `json:"cupo"              validate:"omitempty,min=0"`
}

// CreateActivity creates an activity.
func (c *Client) CreateActivity(ctx context.Context, req ActivityRequest) (club.ActivityView, error) {
	if err := c.checkPayload(req); err != nil {
		return club.ActivityView{}, err
	}
	data, err := c.do(ctx, "actividades.create", http.MethodPost, "actividades/", nil, req)
	if err != nil {
		return club.ActivityView{}, err
	}
	raw, err := decodeOne[club.RawActivity]("actividades.create", data)
	if err != nil {
		return club.ActivityView{}, err
	}
	view, warnings := club.AdaptActivity(raw, nil)
	c.logWarnings(warnings)
	return view, nil
}

// UpdateActivity PATCHes an activity with the non-zero fields of req.
func (c *Client) UpdateActivity(ctx context.Context, id club.ID, req ActivityRequest) (club.ActivityView, error) {
	data, err := c.do(ctx, "actividades.update", http.MethodPatch, fmt.Sprintf("actividades/%s/", id), nil, req)
	if err != nil {
		return club.ActivityView{}, err
	}
	raw, err := decodeOne[club.RawActivity]("actividades.update", data)
	if err != nil {
		return club.ActivityView{}, err
	}
	view, warnings := club.AdaptActivity(raw, nil)
	c.logWarnings(warnings)
	return view, nil
}

// DeleteActivity deletes an activity.
func (c *Client) DeleteActivity(ctx context.Context, id club.ID) error {
	_, err := c.do(ctx, "actividades.delete", http.MethodDelete, fmt.Sprintf("actividades/%s/", id), nil, nil)
	return err
}

// FinalizeActivity transitions an activity to finalizada.
func (c *Client) FinalizeActivity(ctx context.Context, id club.ID) error {
	_, err := c.do(ctx, "actividades.finalizar", http.MethodPost,
		fmt.Sprintf("actividades/%s/finalizar/", id), nil, struct{}{})
	return err
}

// ArchiveActivity transitions an activity to archivada.
func (c *Client) ArchiveActivity(ctx context.Context, id club.ID) error {
	_, err := c.do(ctx, "actividades.archivar", http.MethodPost,
		fmt.Sprintf("actividades/%s/archivar/", id), nil, struct{}{})
	return err
}

// ListEnrolled lists the enrollments of one activity (the roster view).
func (c *Client) ListEnrolled(ctx context.Context, id club.ID) ([]club.Enrollment, error) {
	raws, err := fetchList[club.RawEnrollment](ctx, c, "actividades.inscriptos",
		fmt.Sprintf("actividades/%s/inscriptos/", id), nil)
	if err != nil {
		return nil, err
	}
	return club.AdaptEnrollments(raws), nil
}
