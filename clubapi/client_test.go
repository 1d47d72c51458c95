package clubapi_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/club-engine/club"
	"github.com/warp/club-engine/clubapi"
)

func newClient(t *testing.T, handler http.Handler) (*clubapi.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := clubapi.New(srv.URL)
	require.NoError(t, err)
	return c, srv
}

// =============================================================================
// LIST DECODING
// =============================================================================

func TestListUsers_BareArrayResponse(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usuarios/", r.URL.Path)
		fmt.Fprint(w, `[{"id": 1, "username": "ana", "es_socio": true}]`)
	}))

	members, err := c.ListUsers(context.Background(), clubapi.UserFilter{})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, club.ID("1"), members[0].ID)
	assert.True(t, members[0].Roles.Member)
}

func TestListUsers_PaginatedEnvelope(t *testing.T) {
	var srvURL string
	c, srv := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"count": 2, "next": null, "results": [{"id": 2}]}`)
			return
		}
		fmt.Fprintf(w, `{"count": 2, "next": %q, "results": [{"id": 1}]}`, srvURL+"/usuarios/?page=2")
	}))
	srvURL = srv.URL

	members, err := c.ListUsers(context.Background(), clubapi.UserFilter{})
	require.NoError(t, err)
	require.Len(t, members, 2, "both pages must be followed")
	assert.Equal(t, club.ID("2"), members[1].ID)
}

func TestListActivities_AdaptsAgainstStaffIndex(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 7, "nombre": "Tenis", "usuario_staff": "3", "cargo_inscripcion": "1500.00"},
		                {"id": 8, "nombre": "Yoga"}]`)
	}))

	staff := club.NewStaffIndex([]club.StaffMember{{ID: club.ID("3"), FullName: "Laura Pérez"}})
	views, _, err := c.ListActivities(context.Background(), clubapi.ActivityFilter{}, staff)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Laura Pérez", views[0].InstructorName)
	assert.Equal(t, club.UnassignedInstructor, views[1].InstructorName)
	assert.True(t, views[0].Fee.Equal(decimal.NewFromInt(1500)))
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestErrorMapping(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/99/"):
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail": "No encontrado."}`)
		case strings.Contains(r.URL.Path, "/50/"):
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"detail": "la cuota ya fue pagada"}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))

	ctx := context.Background()

	// 404 -> NotFoundError carrying the resource and id
	err := c.RegisterPayment(ctx, club.ID("99"))
	var nf *club.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "cuotas", nf.Resource)
	assert.Equal(t, club.ID("99"), nf.ID)
	assert.True(t, club.IsNotFound(err))

	// 409 -> ConflictError with the upstream detail
	err = c.RegisterPayment(ctx, club.ID("50"))
	var conflict *club.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "ya fue pagada")

	// 502 -> TransportError, retryable
	err = c.RegisterPayment(ctx, club.ID("1"))
	assert.True(t, club.IsRetryable(err))
}

func TestBadRequest_FieldErrorsBecomeValidation(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"email": ["Introduzca una dirección de correo válida."]}`)
	}))

	_, err := c.Enroll(context.Background(), club.ID("5"), club.ID("7"))
	var verr *club.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["email"], "dirección de correo")
}

func TestBadRequest_UniquenessBecomesConflict(t *testing.T) {
	// DRF reports duplicate enrollments as a 400 with a uniqueness message.
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"non_field_errors": ["Ya existe una inscripción para este socio y actividad."]}`)
	}))

	_, err := c.Enroll(context.Background(), club.ID("5"), club.ID("7"))
	assert.True(t, errors.Is(err, club.ErrConflict), "uniqueness 400 must classify as conflict, got %v", err)
}

func TestLocalValidation_RejectsBeforeNetwork(t *testing.T) {
	hit := false
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))

	_, err := c.CreateUser(context.Background(), clubapi.CreateUserRequest{Username: "ana"})
	assert.True(t, errors.Is(err, club.ErrValidation))
	assert.False(t, hit, "invalid payload must never reach the wire")
}

// =============================================================================
// CSRF
// =============================================================================

func TestCSRF_CookieEchoedAsHeader(t *testing.T) {
	var gotToken string
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/csrf/":
			http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok-123", Path: "/"})
		case "/auth/login/":
			gotToken = r.Header.Get("X-CSRFToken")
			fmt.Fprint(w, `{"id": 1, "username": "ana"}`)
		}
	}))

	_, err := c.Login(context.Background(), "ana", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", gotToken, "login must echo the csrftoken cookie as X-CSRFToken")
}

func TestRequestID_AttachedToEveryCall(t *testing.T) {
	var got string
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		fmt.Fprint(w, `[]`)
	}))

	_, err := c.ListDues(context.Background(), clubapi.DueFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

// =============================================================================
// UPLOADS AND BATCH GENERATION
// =============================================================================

func TestUploadProof_LocallyRejectedBeforeNetwork(t *testing.T) {
	hit := false
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))

	_, err := c.UploadProof(context.Background(), club.ID("1"),
		"huge.png", "image/png", 10<<20, strings.NewReader("x"))
	assert.True(t, errors.Is(err, club.ErrValidation))
	assert.False(t, hit, "oversized proof must be rejected before transmission")
}

func TestUploadProof_SendsMultipart(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(4<<20))
		file, header, err := r.FormFile("comprobante")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "recibo.pdf", header.Filename)
		fmt.Fprint(w, `{"id": 1, "estado": "pendiente_revision", "comprobante": "comprobantes/recibo.pdf"}`)
	}))

	due, err := c.UploadProof(context.Background(), club.ID("1"),
		"recibo.pdf", "application/pdf", 8, strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, club.DuePendingReview, due.State)
	assert.Equal(t, "comprobantes/recibo.pdf", due.ProofRef)
}

func TestGenerateDues_DefaultsDueDay(t *testing.T) {
	var gotBody string
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, `{"cuotas_generadas": 42}`)
	}))

	created, err := c.GenerateDues(context.Background(), clubapi.GenerateDuesRequest{
		Month: 3, Year: 2025, Base: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, 42, created)
	assert.Contains(t, gotBody, `"dia_vencimiento":10`, "unset due day must default to the 10th")
}

func TestGenerateDues_RejectsImpossibleDueDay(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid due day must not reach the wire")
	}))

	_, err := c.GenerateDues(context.Background(), clubapi.GenerateDuesRequest{
		Month: 2, Year: 2025, DueDay: 30,
	})
	assert.True(t, errors.Is(err, club.ErrValidation))
}
