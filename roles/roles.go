/*
Package roles projects role flags onto permitted views and actions.

PURPOSE:
  Pure authorization MAPPING, not enforcement: the upstream API re-validates
  every mutating call, so this projection only decides what the UI composes.
  View and action keys are closed enumerations.

THE UNION RULE:
  Role flags are not mutually exclusive. A user who is both staff and socio
  gets the UNION of each role's permitted views and actions. The previous
  implementation evaluated roles in sequence and the last one silently won,
  which hid the member views from staff-socios.

SEE ALSO:
  - club/types.go: RoleFlags
  - api:           uses PermittedViews to shape the session payload
*/
package roles

import (
	"sort"

	"github.com/warp/club-engine/club"
)

// =============================================================================
// VIEW KEYS
// =============================================================================

// ViewKey identifies one navigable view. Closed enumeration.
type ViewKey string

const (
	// Admin views.
	ViewDashboard  ViewKey = "dashboard"
	ViewMembers    ViewKey = "socios"
	ViewStaff      ViewKey = "staff"
	ViewActivities ViewKey = "actividades"
	ViewPayments   ViewKey = "pagos"
	ViewSettings   ViewKey = "configuracion"

	// Staff views.
	ViewMyActivities  ViewKey = "misActividades"
	ViewCompensations ViewKey = "compensaciones"

	// Member (socio) views.
	ViewClasses   ViewKey = "clases"
	ViewMyClasses ViewKey = "misClases"
	ViewMyDues    ViewKey = "pagosCuota"
	ViewProfile   ViewKey = "perfil"
)

// ActionKey identifies one UI-level action within a view. Closed enumeration.
type ActionKey string

const (
	ActionCreateMember     ActionKey = "crear_socio"
	ActionEditMember       ActionKey = "editar_socio"
	ActionSuspendMember    ActionKey = "dar_baja_socio"
	ActionCreateStaff      ActionKey = "crear_staff"
	ActionEditStaff        ActionKey = "editar_staff"
	ActionCreateActivity   ActionKey = "crear_actividad"
	ActionEditActivity     ActionKey = "editar_actividad"
	ActionFinalizeActivity ActionKey = "finalizar_actividad"
	ActionArchiveActivity  ActionKey = "archivar_actividad"
	ActionGenerateDues     ActionKey = "generar_cuotas"
	ActionRegisterPayment  ActionKey = "registrar_pago"
	ActionApprovePayment   ActionKey = "aprobar_pago"
	ActionRejectPayment    ActionKey = "rechazar_pago"
	ActionExportReport     ActionKey = "exportar_reporte"
	ActionEditSettings     ActionKey = "editar_configuracion"
	ActionListEnrolled     ActionKey = "ver_inscriptos"
	ActionEnroll           ActionKey = "inscribirse"
	ActionCancelEnrollment ActionKey = "cancelar_inscripcion"
	ActionUploadProof      ActionKey = "subir_comprobante"
	ActionEditProfile      ActionKey = "editar_perfil"
	ActionChangePassword   ActionKey = "cambiar_password"
)

// =============================================================================
// PER-ROLE GRIDS
// =============================================================================

var adminViews = []ViewKey{
	ViewDashboard, ViewMembers, ViewStaff, ViewActivities, ViewPayments, ViewSettings,
}

var staffViews = []ViewKey{
	ViewMyActivities, ViewCompensations,
}

var memberViews = []ViewKey{
	ViewClasses, ViewMyClasses, ViewMyDues, ViewProfile,
}

// viewActions is the closed view -> actions grid. An action is only
// reachable through a permitted view, so the grid needs no role dimension.
var viewActions = map[ViewKey][]ActionKey{
	ViewDashboard:  {ActionExportReport},
	ViewMembers:    {ActionCreateMember, ActionEditMember, ActionSuspendMember},
	ViewStaff:      {ActionCreateStaff, ActionEditStaff},
	ViewActivities: {ActionCreateActivity, ActionEditActivity, ActionFinalizeActivity, ActionArchiveActivity},
	ViewPayments: {
		ActionGenerateDues, ActionRegisterPayment, ActionApprovePayment,
		ActionRejectPayment, ActionExportReport,
	},
	ViewSettings:      {ActionEditSettings},
	ViewMyActivities:  {ActionListEnrolled},
	ViewCompensations: {ActionExportReport},
	ViewClasses:       {ActionEnroll},
	ViewMyClasses:     {ActionCancelEnrollment},
	ViewMyDues:        {ActionUploadProof},
	ViewProfile:       {ActionEditProfile, ActionChangePassword},
}

// =============================================================================
// PROJECTION
// =============================================================================

// ViewSet is a set of permitted view keys.
type ViewSet map[ViewKey]bool

// ActionSet is a set of permitted action keys.
type ActionSet map[ActionKey]bool

// PermittedViews returns the union of the views permitted by every role
// flag the user carries. A user with no flags gets an empty set.
func PermittedViews(flags club.RoleFlags) ViewSet {
	set := make(ViewSet)
	if flags.Admin {
		for _, v := range adminViews {
			set[v] = true
		}
	}
	if flags.Staff {
		for _, v := range staffViews {
			set[v] = true
		}
	}
	if flags.Member {
		for _, v := range memberViews {
			set[v] = true
		}
	}
	return set
}

// PermittedActions returns the actions available to the user within one
// view. Empty when the view itself is not permitted.
func PermittedActions(flags club.RoleFlags, view ViewKey) ActionSet {
	set := make(ActionSet)
	if !PermittedViews(flags)[view] {
		return set
	}
	for _, a := range viewActions[view] {
		set[a] = true
	}
	return set
}

// LandingView picks the first view to route to after login: admin views
// win over staff views, staff over member. Empty when no role is set.
func LandingView(flags club.RoleFlags) ViewKey {
	switch {
	case flags.Admin:
		return ViewDashboard
	case flags.Staff:
		return ViewMyActivities
	case flags.Member:
		return ViewClasses
	}
	return ""
}

// Sorted returns the set's keys in stable order, for serialization.
func (s ViewSet) Sorted() []ViewKey {
	out := make([]ViewKey, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sorted returns the set's keys in stable order, for serialization.
func (s ActionSet) Sorted() []ActionKey {
	out := make([]ActionKey, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
