/*
compensaciones.go - Wrappers for the /compensaciones/ resource

Stored compensation rows settled by the upstream, plus the por_periodo
roll-up. Live (unsettled) numbers come from the compensation package
instead; these wrappers only read what the upstream already persisted.
*/
package clubapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/warp/club-engine/club"
)

// CompensationFilter narrows a compensation listing. Zero values mean "no
// filter".
type CompensationFilter struct {
	StaffID    club.ID
	ActivityID club.ID
	Period     string
}

func (f CompensationFilter) query() url.Values {
	q := url.Values{}
	if !f.StaffID.IsZero() {
		q.Set("usuario_staff", f.StaffID.String())
	}
	if !f.ActivityID.IsZero() {
		q.Set("actividad", f.ActivityID.String())
	}
	if f.Period != "" {
		q.Set("periodo", f.Period)
	}
	return q
}

// ListCompensations lists stored compensation rows.
func (c *Client) ListCompensations(ctx context.Context, filter CompensationFilter) ([]club.CompensationRecord, error) {
	raws, err := fetchList[club.RawCompensation](ctx, c, "compensaciones.list", "compensaciones/", filter.query())
	if err != nil {
		return nil, err
	}
	return club.AdaptCompensations(raws), nil
}

// PeriodTotal is the por_periodo aggregate for one period.
type PeriodTotal struct {
	Period string
	Total  decimal.Decimal
	Count  int
}

// CompensationsByPeriod fetches the upstream's per-period roll-up.
func (c *Client) CompensationsByPeriod(ctx context.Context, period string) (PeriodTotal, error) {
	q := url.Values{}
	if period != "" {
		q.Set("periodo", period)
	}
	data, err := c.do(ctx, "compensaciones.por_periodo", http.MethodGet, "compensaciones/por_periodo/", q, nil)
	if err != nil {
		return PeriodTotal{}, err
	}
	raw, err := decodeOne[struct {
		Period string         `json:"periodo"`
		Total  club.FlexMoney `json:"total"`
		Count  club.FlexInt   `json:"cantidad"`
	}]("compensaciones.por_periodo", data)
	if err != nil {
		return PeriodTotal{}, err
	}
	return PeriodTotal{
		Period: raw.Period,
		Total:  raw.Total.Decimal,
		Count:  raw.Count.Int(),
	}, nil
}
