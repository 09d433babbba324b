// Package rbac holds the fixed role hierarchy and the authorization checks
// built on it.
package rbac

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Role is one of the fixed hierarchy names.
type Role string

// Fixed roles, highest first.
const (
	RoleAdmin          Role = "admin"
	RoleCEO            Role = "ceo"
	RoleCFO            Role = "cfo"
	RoleCTO            Role = "cto"
	RoleVP             Role = "vp"
	RoleDirector       Role = "director"
	RoleSeniorManager  Role = "senior_manager"
	RoleManager        Role = "manager"
	RoleTeamLead       Role = "team_lead"
	RoleSeniorEmployee Role = "senior_employee"
	RoleEmployee       Role = "employee"
	RoleIntern         Role = "intern"

	// RolePersonal belongs to users without a company. It has no level.
	RolePersonal Role = "personal"
)

var levels = map[Role]int{
	RoleAdmin:          11,
	RoleCEO:            10,
	RoleCFO:            9,
	RoleCTO:            9,
	RoleVP:             8,
	RoleDirector:       7,
	RoleSeniorManager:  6,
	RoleManager:        5,
	RoleTeamLead:       4,
	RoleSeniorEmployee: 3,
	RoleEmployee:       2,
	RoleIntern:         1,
}

// customRoleCreators may define company specific roles.
var customRoleCreators = map[Role]struct{}{
	RoleAdmin: {},
	RoleCEO:   {},
	RoleCFO:   {},
	RoleCTO:   {},
}

// LevelOf returns the level of a role name. Unknown names, including custom
// roles and "personal", are level 0.
func LevelOf(role string) int {
	return levels[normalize(role)]
}

// ParseRole accepts fixed hierarchy roles and "personal", ignoring
// surrounding whitespace.
func ParseRole(name string) (Role, error) {
	role := normalize(strings.TrimSpace(name))
	if role == RolePersonal {
		return role, nil
	}
	if _, ok := levels[role]; !ok {
		return "", fmt.Errorf("%w: unknown role %q", shared.ErrValidation, name)
	}
	return role, nil
}

// IsFixed reports whether name is part of the hierarchy table.
func IsFixed(name string) bool {
	_, ok := levels[normalize(name)]
	return ok
}

// Level returns the role's hierarchy level.
func (r Role) Level() int { return LevelOf(string(r)) }

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

var titler = cases.Title(language.English)

// DisplayName renders a role for humans: "senior_manager" becomes
// "Senior Manager".
func DisplayName(role string) string {
	return titler.String(strings.ReplaceAll(strings.ToLower(role), "_", " "))
}

// Entry describes one hierarchy row.
type Entry struct {
	Role  Role   `json:"role"`
	Level int    `json:"level"`
	Title string `json:"title"`
}

// Hierarchy lists the fixed roles from highest to lowest level.
func Hierarchy() []Entry {
	out := make([]Entry, 0, len(levels))
	for role, level := range levels {
		out = append(out, Entry{Role: role, Level: level, Title: DisplayName(string(role))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].Role < out[j].Role
	})
	return out
}

// Actor is the snapshot of a user that authorization checks operate on.
type Actor struct {
	Username string
	Role     string
	// CompanyAdmin is the admin_username of the actor's company, empty
	// when the actor has none.
	CompanyAdmin string
}

// IsCompanyAdmin reports whether the actor created their company.
func (a Actor) IsCompanyAdmin() bool {
	return a.CompanyAdmin != "" && a.CompanyAdmin == a.Username
}

// normalize folds case only. Padded names are not in the table.
func normalize(role string) Role {
	return Role(strings.ToLower(role))
}
