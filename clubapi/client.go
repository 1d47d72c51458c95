/*
Package clubapi is the typed client for the external club membership API.

PURPOSE:
  Thin, typed wrappers around each upstream resource (usuarios, actividades,
  inscripciones, cuotas, compensaciones, auth). Every wrapper takes a
  context, sends one HTTP request, and returns normalized domain values or
  an error from the club taxonomy — never a raw transport error.

TRANSPORT (client.go):
  - Session: cookie jar; the upstream sets the session cookie on login
  - CSRF: the csrftoken cookie is echoed back as X-CSRFToken on every
    mutating request (Django convention)
  - Tracing: X-Request-ID (uuid) on every outbound request
  - Lists: the upstream answers either a bare JSON array or a paginated
    {count, next, results} envelope; fetchList absorbs both and follows
    next links
  - Local validation: request payloads are checked with validator tags
    before any bytes are sent

ERROR MAPPING:
  400 -> ValidationError (field map from the response body), or
         ConflictError when the body signals a uniqueness violation
  404 -> NotFoundError (resource/id recovered from the request path)
  409 -> ConflictError
  anything else non-2xx, or a network failure -> TransportError

SEE ALSO:
  - coordinator.go: stale-response guard for concurrent re-fetches
  - club/errors.go: the error taxonomy
*/
package clubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/club-engine/club"
)

const (
	defaultTimeout = 15 * time.Second
	csrfCookie     = "csrftoken"
	csrfHeader     = "X-CSRFToken"

	// maxListPages bounds pagination link-following so a broken upstream
	// cannot loop the client forever.
	maxListPages = 50
)

// Client talks to the upstream club API.
type Client struct {
	base     *url.URL
	http     *http.Client
	log      *zap.Logger
	validate *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The replacement gets
// the cookie jar installed if it does not carry one already.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New builds a Client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	c := &Client{
		base:     base,
		http:     &http.Client{Timeout: defaultTimeout},
		log:      zap.NewNop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// =============================================================================
// REQUEST EXECUTION
// =============================================================================

// do sends a JSON request to path (relative to the base URL, or absolute for
// pagination links) and returns the raw response body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &club.TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, op, method, path, query, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, op)
}

// newRequest builds a request with tracing and CSRF headers attached.
func (c *Client) newRequest(ctx context.Context, op, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, &club.TransportError{Op: op, Err: err}
	}
	u := c.base.ResolveReference(ref)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &club.TransportError{Op: op, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if mutating(method) {
		if token := c.csrfToken(); token != "" {
			req.Header.Set(csrfHeader, token)
		}
	}
	return req, nil
}

// send executes the request and maps the response onto the error taxonomy.
func (c *Client) send(req *http.Request, op string) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("upstream request failed",
			zap.String("op", op),
			zap.String("url", req.URL.Path),
			zap.Error(err))
		return nil, &club.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &club.TransportError{Op: op, Err: err}
	}

	c.log.Debug("upstream request",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("url", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	resource, id := resourceFromPath(req.URL.Path)
	switch resp.StatusCode {
	case http.StatusBadRequest:
		return nil, classifyBadRequest(resource, data)
	case http.StatusNotFound:
		return nil, &club.NotFoundError{Resource: resource, ID: id}
	case http.StatusConflict:
		return nil, &club.ConflictError{Resource: resource, Message: firstDetail(data)}
	default:
		return nil, &club.TransportError{Op: op, Status: resp.StatusCode}
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// logWarnings reports integrity warnings at Warn level. Dropped or degraded
// entries are a data signal, not a control-flow error.
func (c *Client) logWarnings(warnings []club.IntegrityWarning) {
	for _, w := range warnings {
		c.log.Warn("integrity warning",
			zap.String("kind", w.Kind),
			zap.String("detail", w.Detail),
			zap.String("subject", w.Subject.String()))
	}
}

// csrfToken reads the Django CSRF cookie from the jar, if the upstream has
// set one on a previous response.
func (c *Client) csrfToken() string {
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == csrfCookie {
			return cookie.Value
		}
	}
	return ""
}

// =============================================================================
// RESPONSE DECODING
// =============================================================================

// listPage is the DRF paginated envelope.
type listPage[T any] struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// decodePage decodes one list response, which is either a bare array or a
// paginated envelope. Returns the items and the next-page URL (if any).
func decodePage[T any](op string, data []byte) ([]T, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", &club.TransportError{Op: op, Err: err}
		}
		return items, "", nil
	}
	var page listPage[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, "", &club.TransportError{Op: op, Err: err}
	}
	next := ""
	if page.Next != nil {
		next = *page.Next
	}
	return page.Results, next, nil
}

// fetchList GETs a collection, following pagination links.
func fetchList[T any](ctx context.Context, c *Client, op, path string, query url.Values) ([]T, error) {
	var all []T
	next := path
	for page := 0; next != "" && page < maxListPages; page++ {
		if page > 0 {
			// Pagination links already carry the query string.
			query = nil
		}
		data, err := c.do(ctx, op, http.MethodGet, next, query, nil)
		if err != nil {
			return nil, err
		}
		items, n, err := decodePage[T](op, data)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		next = n
	}
	return all, nil
}

// decodeOne decodes a single-object response.
func decodeOne[T any](op string, data []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &club.TransportError{Op: op, Err: err}
	}
	return out, nil
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// conflictMarkers are the substrings DRF uniqueness violations show up with.
var conflictMarkers = []string{"ya existe", "already exists", "unique", "duplicad"}

// classifyBadRequest turns a DRF 400 body into a ValidationError, or a
// ConflictError when the field messages signal a uniqueness violation.
func classifyBadRequest(resource string, data []byte) error {
	fields := map[string]string{}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err == nil {
		for field, raw := range body {
			fields[field] = flattenDetail(raw)
		}
	}

	for _, msg := range fields {
		lower := strings.ToLower(msg)
		for _, marker := range conflictMarkers {
			if strings.Contains(lower, marker) {
				return &club.ConflictError{Resource: resource, Message: msg}
			}
		}
	}
	return &club.ValidationError{Message: "upstream rejected the request", Fields: fields}
}

// flattenDetail renders a DRF error value (string or list of strings) as one
// message.
func flattenDetail(raw json.RawMessage) string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return string(raw)
}

// firstDetail extracts the "detail" message from an error body, if present.
func firstDetail(data []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return "conflict"
}

// resourceFromPath recovers the resource name and trailing id from a request
// path like /api/usuarios/5/ or /api/cuotas/12/aprobar_pago/.
func resourceFromPath(path string) (string, club.ID) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	resource := ""
	var id club.ID
	for _, seg := range segments {
		if seg == "" || seg == "api" {
			continue
		}
		if n := club.NormalizeID(seg); looksNumeric(seg) {
			id = n
			continue
		}
		if id.IsZero() {
			resource = seg
		}
	}
	if resource == "" {
		resource = "recurso"
	}
	return resource, id
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// checkPayload validates an outbound payload struct, converting validator
// failures into the local taxonomy before any network round trip.
func (c *Client) checkPayload(payload any) error {
	err := c.validate.Struct(payload)
	if err == nil {
		return nil
	}
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fmt.Sprintf("failed %q validation", fe.Tag())
		}
	}
	return &club.ValidationError{Message: "invalid request payload", Fields: fields}
}
