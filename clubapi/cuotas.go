/*
cuotas.go - Wrappers for the /cuotas/ resource

Covers the full cuota lifecycle: batch generation for a period, listing
(including the atrasadas shortcut), member proof upload, and the admin
registrar/aprobar/rechazar transitions. Proof uploads run the local
allow-list and size validation BEFORE the multipart body is even built;
the server remains the final authority and may still reject.
*/
package clubapi

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/warp/club-engine/club"
	"github.com/warp/club-engine/dues"
)

// DueFilter narrows a cuota listing. Zero values mean "no filter".
type DueFilter struct {
	MemberID club.ID
	State    club.DueState
	Period   string
}

func (f DueFilter) query() url.Values {
	q := url.Values{}
	if !f.MemberID.IsZero() {
		q.Set("usuario_socio", f.MemberID.String())
	}
	if f.State != "" {
		q.Set("estado", string(f.State))
	}
	if f.Period != "" {
		q.Set("periodo", f.Period)
	}
	return q
}

// ListDues lists cuotas.
func (c *Client) ListDues(ctx context.Context, filter DueFilter) ([]club.Due, error) {
	raws, err := fetchList[club.RawDue](ctx, c, "cuotas.list", "cuotas/", filter.query())
	if err != nil {
		return nil, err
	}
	return club.AdaptDues(raws), nil
}

// ListOverdueDues lists the upstream's atrasadas shortcut collection.
func (c *Client) ListOverdueDues(ctx context.Context) ([]club.Due, error) {
	raws, err := fetchList[club.RawDue](ctx, c, "cuotas.atrasadas", "cuotas/atrasadas/", nil)
	if err != nil {
		return nil, err
	}
	return club.AdaptDues(raws), nil
}

// RegisterPayment records a direct payment on a cuota (admin action).
func (c *Client) RegisterPayment(ctx context.Context, dueID club.ID) error {
	_, err := c.do(ctx, "cuotas.registrar_pago", http.MethodPost,
		fmt.Sprintf("cuotas/%s/registrar_pago/", dueID), nil, struct{}{})
	return err
}

// UploadProof uploads a payment proof for a cuota. The file is validated
// locally (type allow-list, 3 MiB cap) and rejected with a ValidationError
// before any bytes are transmitted.
func (c *Client) UploadProof(ctx context.Context, dueID club.ID, filename, contentType string, size int64, file io.Reader) (club.Due, error) {
	if err := dues.ValidateProof(filename, contentType, size); err != nil {
		return club.Due{}, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("comprobante", filename)
		if err == nil {
			_, err = io.Copy(part, io.LimitReader(file, size))
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, "cuotas.subir_comprobante", http.MethodPost,
		fmt.Sprintf("cuotas/%s/subir_comprobante/", dueID), nil, pr)
	if err != nil {
		return club.Due{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := c.send(req, "cuotas.subir_comprobante")
	if err != nil {
		return club.Due{}, err
	}
	raw, err := decodeOne[club.RawDue]("cuotas.subir_comprobante", data)
	if err != nil {
		return club.Due{}, err
	}
	return club.AdaptDue(raw), nil
}

// ApprovePayment accepts an uploaded proof, transitioning the cuota to
// al_dia.
func (c *Client) ApprovePayment(ctx context.Context, dueID club.ID) error {
	_, err := c.do(ctx, "cuotas.aprobar_pago", http.MethodPost,
		fmt.Sprintf("cuotas/%s/aprobar_pago/", dueID), nil, struct{}{})
	return err
}

// RejectPayment rejects an uploaded proof with a reason; the cuota returns
// to atrasada.
func (c *Client) RejectPayment(ctx context.Context, dueID club.ID, reason string) error {
	payload := struct {
		Reason string `json:"motivo" validate:"required"`
	}{Reason: reason}
	if err := c.checkPayload(payload); err != nil {
		return err
	}
	_, err := c.do(ctx, "cuotas.rechazar_pago", http.MethodPost,
		fmt.Sprintf("cuotas/%s/rechazar_pago/", dueID), nil, payload)
	return err
}

// GenerateDuesRequest is the payload for batch cuota generation.
type GenerateDuesRequest struct {
	Month  int             `json:"mes"              validate:"required,min=1,max=12"`
	Year   int             `json:"anio"             validate:"required,min=2000,max=2100"`
	Base   decimal.Decimal `json:"valor_base"`
	DueDay int             `json:"dia_vencimiento"  validate:"omitempty,min=1,max=28"`
}

// GenerateDues creates the period's cuotas for every active member. DueDay
// defaults to the 10th when unset; 28 is the cap so the date exists in
// February too.
func (c *Client) GenerateDues(ctx context.Context, req GenerateDuesRequest) (int, error) {
	if req.DueDay == 0 {
		req.DueDay = 10
	}
	if err := c.checkPayload(req); err != nil {
		return 0, err
	}

	data, err := c.do(ctx, "cuotas.generar", http.MethodPost, "cuotas/generar_cuotas/", nil, req)
	if err != nil {
		return 0, err
	}
	result, err := decodeOne[struct {
		Created club.FlexInt `json:"cuotas_generadas"`
	}]("cuotas.generar", data)
	if err != nil {
		return 0, err
	}
	return result.Created.Int(), nil
}
