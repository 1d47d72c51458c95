package roles_test

import (
	"testing"

	"github.com/warp/club-engine/club"
	"github.com/warp/club-engine/roles"
)

func TestPermittedViews_SingleRoles(t *testing.T) {
	admin := roles.PermittedViews(club.RoleFlags{Admin: true})
	if !admin[roles.ViewDashboard] || !admin[roles.ViewPayments] || len(admin) != 6 {
		t.Errorf("unexpected admin views: %v", admin.Sorted())
	}

	staff := roles.PermittedViews(club.RoleFlags{Staff: true})
	if !staff[roles.ViewMyActivities] || !staff[roles.ViewCompensations] || len(staff) != 2 {
		t.Errorf("unexpected staff views: %v", staff.Sorted())
	}

	member := roles.PermittedViews(club.RoleFlags{Member: true})
	if !member[roles.ViewClasses] || !member[roles.ViewMyDues] || len(member) != 4 {
		t.Errorf("unexpected member views: %v", member.Sorted())
	}
}

func TestPermittedViews_UnionOfRoles(t *testing.T) {
	// GIVEN: A user who is BOTH staff and socio
	both := roles.PermittedViews(club.RoleFlags{Staff: true, Member: true})
	staffOnly := roles.PermittedViews(club.RoleFlags{Staff: true})
	memberOnly := roles.PermittedViews(club.RoleFlags{Member: true})

	// THEN: Their views are the union, not whichever role was evaluated last
	for v := range staffOnly {
		if !both[v] {
			t.Errorf("staff view %q missing from union", v)
		}
	}
	for v := range memberOnly {
		if !both[v] {
			t.Errorf("member view %q missing from union", v)
		}
	}
	if len(both) != len(staffOnly)+len(memberOnly) {
		t.Errorf("union size mismatch: %d vs %d + %d", len(both), len(staffOnly), len(memberOnly))
	}
}

func TestPermittedViews_NoRolesNoViews(t *testing.T) {
	if got := roles.PermittedViews(club.RoleFlags{}); len(got) != 0 {
		t.Errorf("flagless user must see nothing, got %v", got.Sorted())
	}
}

func TestPermittedActions_GatedByView(t *testing.T) {
	member := club.RoleFlags{Member: true}

	// Member can upload a proof in their dues view...
	if got := roles.PermittedActions(member, roles.ViewMyDues); !got[roles.ActionUploadProof] {
		t.Errorf("member should be able to upload a proof, got %v", got.Sorted())
	}

	// ...but gets nothing in an admin view they cannot reach.
	if got := roles.PermittedActions(member, roles.ViewPayments); len(got) != 0 {
		t.Errorf("member must get no actions in pagos, got %v", got.Sorted())
	}
}

func TestLandingView_AdminWins(t *testing.T) {
	cases := []struct {
		flags club.RoleFlags
		want  roles.ViewKey
	}{
		{club.RoleFlags{Admin: true, Staff: true, Member: true}, roles.ViewDashboard},
		{club.RoleFlags{Staff: true, Member: true}, roles.ViewMyActivities},
		{club.RoleFlags{Member: true}, roles.ViewClasses},
		{club.RoleFlags{}, roles.ViewKey("")},
	}
	for _, c := range cases {
		if got := roles.LandingView(c.flags); got != c.want {
			t.Errorf("LandingView(%+v) = %q, want %q", c.flags, got, c.want)
		}
	}
}
