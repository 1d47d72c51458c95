/*
handlers_test.go - End-to-end handler tests

Each test stands up a fake upstream, points a real client at it, and
drives the router the way the SPA would. Derived views (buckets, dues
totals, compensations, session projection) are asserted on the JSON the
SPA actually receives.
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/club-engine/clubapi"
	"github.com/warp/club-engine/store/cache"
)

// fixedNow keeps activity classification deterministic.
var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

// newTestServer wires a fake upstream through the real client, handler and
// router.
func newTestServer(t *testing.T, upstream http.Handler) *httptest.Server {
	t.Helper()

	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	client, err := clubapi.New(up.URL)
	require.NoError(t, err)

	c, err := cache.New(filepath.Join(t.TempDir(), "cache.db"), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	h := NewHandler(client, c, zap.NewNop())
	h.Now = func() time.Time { return fixedNow }

	srv := httptest.NewServer(NewRouter(h, NewMetrics(), []string{"http://localhost:5173"}))
	t.Cleanup(srv.Close)
	return srv
}

// clubUpstream is a minimal fake of the upstream API.
func clubUpstream(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/usuarios/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 3, "first_name": "Laura", "last_name": "Pérez", "es_staff": true}]`)
	})
	mux.HandleFunc("/actividades/", func(w http.ResponseWriter, r *http.Request) {
		// 1: open with room; 2: full; 3: already ended.
		fmt.Fprint(w, `[
			{"id": 1, "nombre": "Tenis", "usuario_staff": 3, "cargo_inscripcion": "1500.00",
			 "fecha_hora_fin": "2025-12-01T10:00:00Z", "cantidad_inscriptos": 2, "cupo": 10},
			{"id": 2, "nombre": "Yoga", "usuario_staff": 3, "cargo_inscripcion": "1000.00",
			 "fecha_hora_fin": "2025-12-01T10:00:00Z", "cantidad_inscriptos": 5, "cupo": 5},
			{"id": 3, "nombre": "Natación", "usuario_staff": 3, "cargo_inscripcion": "2000.00",
			 "fecha_hora_fin": "2025-01-01T10:00:00Z", "cantidad_inscriptos": 8, "cupo": 10}
		]`)
	})
	mux.HandleFunc("/inscripciones/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id": 50, "usuario_socio": 7, "actividad": 1, "estado": "activa"}`)
			return
		}
		fmt.Fprint(w, `[{"id": 20, "usuario_socio": 7, "actividad": 3, "estado": "activa",
		                 "fecha_inscripcion": "2025-01-10"}]`)
	})
	mux.HandleFunc("/cuotas/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id": 9, "usuario_socio": 7, "periodo": "2025-03", "valor_base": "5000",
			 "valor_actividades": ["1500", "300"], "estado": "pendiente",
			 "fecha_vencimiento": "2025-03-10", "dias_atraso": 5},
			{"id": 10, "usuario_socio": 7, "periodo": "2025-02", "valor_base": "5000",
			 "monto_total": "5000", "estado": "al_dia", "fecha_pago": "2025-02-08"}
		]`)
	})
	mux.HandleFunc("/auth/perfil/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 7, "first_name": "Ana", "last_name": "García",
		                "es_socio": true, "es_staff": true}`)
	})
	return mux
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// =============================================================================
// SOCIO VIEWS
// =============================================================================

func TestGetMemberActivities_FourBuckets(t *testing.T) {
	// GIVEN: catalog {open, full, ended}, member enrolled in the ended one
	// WHEN:  GET /api/socios/7/actividades
	// THEN:  open and full both land in disponibles (fullness only gates
	//        enrollment), ended lands in inscriptas_vencidas
	srv := newTestServer(t, clubUpstream(t))

	var buckets BucketsDTO
	resp := getJSON(t, srv, "/api/socios/7/actividades", &buckets)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, buckets.Available, 2)
	assert.Equal(t, "Tenis", buckets.Available[0].Name)
	assert.True(t, buckets.Available[0].CanEnroll)
	assert.Equal(t, "Laura Pérez", buckets.Available[0].Instructor)
	assert.Equal(t, "Yoga", buckets.Available[1].Name)
	assert.True(t, buckets.Available[1].Full)
	assert.False(t, buckets.Available[1].CanEnroll)

	require.Len(t, buckets.EnrolledExpired, 1)
	assert.Equal(t, "Natación", buckets.EnrolledExpired[0].Name)
	assert.True(t, buckets.EnrolledExpired[0].Expired)

	assert.Empty(t, buckets.EnrolledActive)
	assert.Empty(t, buckets.ExpiredUnenrolled)
}

func TestGetMemberDues_DerivedTotals(t *testing.T) {
	// GIVEN: an open due without monto_total and a paid due with one
	// WHEN:  GET /api/socios/7/cuotas
	// THEN:  the open due totals base+surcharges; the roll-up counts one paid
	srv := newTestServer(t, clubUpstream(t))

	var panel MemberDuesDTO
	resp := getJSON(t, srv, "/api/socios/7/cuotas", &panel)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, panel.Dues, 2)
	assert.Equal(t, "6800", panel.Dues[0].Total)
	assert.Equal(t, "Atrasada", panel.Dues[0].StateLabel)
	assert.Equal(t, 5, panel.Dues[0].DaysOverdue)
	assert.Equal(t, "Al día", panel.Dues[1].StateLabel)

	assert.Equal(t, 1, panel.Paid)
	assert.Equal(t, 1, panel.Outstanding)
	assert.Equal(t, "11800", panel.TotalAmount)
}

func TestEnroll_LocalGateRejectsFullActivity(t *testing.T) {
	// GIVEN: Yoga is at capacity
	// WHEN:  POST /api/socios/7/inscripciones {"actividad": "2"}
	// THEN:  409 without hitting the upstream create endpoint
	upstreamPosts := 0
	base := clubUpstream(t)
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/inscripciones/" {
			upstreamPosts++
		}
		base.ServeHTTP(w, r)
	}))

	resp, err := http.Post(srv.URL+"/api/socios/7/inscripciones", "application/json",
		strings.NewReader(`{"actividad": "2"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 0, upstreamPosts, "full activity must be rejected before the upstream sees it")
}

func TestEnroll_OpenActivitySucceeds(t *testing.T) {
	srv := newTestServer(t, clubUpstream(t))

	resp, err := http.Post(srv.URL+"/api/socios/7/inscripciones", "application/json",
		strings.NewReader(`{"actividad": "1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "50", body["inscripcion_id"])
}

// =============================================================================
// STAFF AND SESSION VIEWS
// =============================================================================

func TestGetStaffCompensations_DerivedFromCatalog(t *testing.T) {
	// GIVEN: Laura teaches all three activities (2+5+8 enrolled)
	// WHEN:  GET /api/staff/3/compensaciones
	// THEN:  gross = 2*1500 + 5*1000 + 8*2000 = 24000, share = 16800
	srv := newTestServer(t, clubUpstream(t))

	var dto StaffCompensationsDTO
	resp := getJSON(t, srv, "/api/staff/3/compensaciones", &dto)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, dto.Activities, 3)
	assert.Equal(t, 15, dto.TotalEnrolled)
	assert.True(t, decimal.RequireFromString(dto.TotalGross).Equal(decimal.NewFromInt(24000)),
		"unexpected gross: %s", dto.TotalGross)
	assert.True(t, decimal.RequireFromString(dto.TotalShare).Equal(decimal.NewFromInt(16800)),
		"unexpected share: %s", dto.TotalShare)
}

func TestGetSessionViews_UnionOfRoles(t *testing.T) {
	// GIVEN: profile with es_socio and es_staff
	// WHEN:  GET /api/session/views
	// THEN:  views are the union of both role sets and landing follows
	//        staff precedence
	srv := newTestServer(t, clubUpstream(t))

	var session SessionDTO
	resp := getJSON(t, srv, "/api/session/views", &session)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "Ana García", session.Name)
	assert.True(t, session.Roles.Staff)
	assert.True(t, session.Roles.Member)
	assert.Equal(t, "misActividades", session.Landing)
	assert.Contains(t, session.Views, "compensaciones")
	assert.Contains(t, session.Views, "pagosCuota")
	assert.NotContains(t, session.Views, "configuracion")
	assert.Contains(t, session.Actions["pagosCuota"], "subir_comprobante")
}

// =============================================================================
// ERROR MAPPING AND PLUMBING
// =============================================================================

func TestUpstreamFailure_MapsToBadGateway(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	resp := getJSON(t, srv, "/api/socios/7/cuotas", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(t, clubUpstream(t))

	resp := getJSON(t, srv, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The healthz request above must already be counted.
	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}
