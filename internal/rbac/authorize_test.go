package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/teamhub/internal/shared"
)

func allRoleNames() []string {
	names := []string{"personal", "designer", ""}
	for role := range levels {
		names = append(names, string(role))
	}
	return names
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, 11, LevelOf("admin"))
	assert.Equal(t, 11, LevelOf("ADMIN"))
	assert.Equal(t, 9, LevelOf("cfo"))
	assert.Equal(t, 9, LevelOf("Cto"))
	assert.Equal(t, 6, LevelOf("senior_manager"))
	assert.Equal(t, 1, LevelOf("intern"))
	assert.Equal(t, 0, LevelOf("personal"))
	assert.Equal(t, 0, LevelOf("designer"))
	assert.Equal(t, 0, LevelOf(""))
	assert.Equal(t, 0, LevelOf(" admin "))
	assert.Equal(t, 0, LevelOf("cfo\n"))
}

func TestPaddedRoleNamesGrantNothing(t *testing.T) {
	assert.False(t, CanManageRole(" admin", "admin"))
	assert.False(t, CanManageRole("admin ", "intern"))
	assert.False(t, CanCreateTasks(Actor{Username: "mallory", Role: " admin"}))
	assert.False(t, CanAssignTaskToUser(Actor{Username: "mallory", Role: "admin "}, Actor{Username: "bob", Role: "manager"}))
	assert.False(t, CanAccessRoleManagement(" admin "))
	assert.False(t, CanCreateCustomRole(" ceo"))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Team_Lead ")
	require.NoError(t, err)
	assert.Equal(t, RoleTeamLead, role)

	role, err = ParseRole("personal")
	require.NoError(t, err)
	assert.Equal(t, RolePersonal, role)

	_, err = ParseRole("overlord")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCanManageRole(t *testing.T) {
	cases := []struct {
		actor, target string
		want          bool
	}{
		{"admin", "admin", true},
		{"Admin", "ceo", true},
		{"ceo", "admin", false},
		{"manager", "manager", false},
		{"manager", "team_lead", true},
		{"cfo", "cto", false},
		{"intern", "employee", false},
		{"employee", "designer", true},
		{"designer", "intern", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanManageRole(tc.actor, tc.target), "%s -> %s", tc.actor, tc.target)
	}
}

func TestCanManageRoleIsStrictOutsideAdmin(t *testing.T) {
	for _, a := range allRoleNames() {
		for _, b := range allRoleNames() {
			if a == "admin" || b == "admin" {
				continue
			}
			assert.False(t, CanManageRole(a, b) && CanManageRole(b, a), "%s and %s manage each other", a, b)
		}
		assert.True(t, CanManageRole("admin", a))
	}
}

func TestCanManageRoleIsTransitive(t *testing.T) {
	names := allRoleNames()
	for _, a := range names {
		if a == "admin" {
			continue
		}
		for _, b := range names {
			for _, c := range names {
				if CanManageRole(a, b) && CanManageRole(b, c) {
					assert.True(t, CanManageRole(a, c), "%s > %s > %s", a, b, c)
				}
			}
		}
	}
}

func TestTaskCapabilities(t *testing.T) {
	owner := Actor{Username: "alice", Role: "employee", CompanyAdmin: "alice"}
	senior := Actor{Username: "sam", Role: "senior_employee", CompanyAdmin: "alice"}
	employee := Actor{Username: "erin", Role: "employee", CompanyAdmin: "alice"}
	admin := Actor{Username: "root", Role: "admin"}
	loner := Actor{Username: "lee", Role: "personal"}

	assert.True(t, CanCreateTasks(owner))
	assert.True(t, CanCreateTasks(admin))
	assert.False(t, CanCreateTasks(senior))
	assert.False(t, CanCreateTasks(loner))

	assert.True(t, CanAssignTasks(owner))
	assert.True(t, CanAssignTasks(senior))
	assert.False(t, CanAssignTasks(employee))

	assert.True(t, CanAssignTaskToUser(senior, employee))
	assert.False(t, CanAssignTaskToUser(employee, senior))
	assert.True(t, CanAssignTaskToUser(admin, Actor{Username: "x", Role: "admin"}))
}

func TestRoleManagementAccess(t *testing.T) {
	assert.True(t, CanAccessRoleManagement("admin"))
	assert.True(t, CanAccessRoleManagement("senior_employee"))
	assert.False(t, CanAccessRoleManagement("employee"))
	assert.False(t, CanAccessRoleManagement("intern"))

	for _, role := range []string{"admin", "ceo", "cfo", "cto"} {
		assert.True(t, CanCreateCustomRole(role))
	}
	assert.False(t, CanCreateCustomRole("vp"))
}

func TestDisplayNameAndHierarchy(t *testing.T) {
	assert.Equal(t, "Senior Manager", DisplayName("senior_manager"))
	assert.Equal(t, "Ceo", DisplayName("CEO"))

	h := Hierarchy()
	require.Len(t, h, 12)
	assert.Equal(t, RoleAdmin, h[0].Role)
	assert.Equal(t, RoleIntern, h[len(h)-1].Role)
	for i := 1; i < len(h); i++ {
		assert.GreaterOrEqual(t, h[i-1].Level, h[i].Level)
	}
}
