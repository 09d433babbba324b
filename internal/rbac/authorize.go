package rbac

// CanManageRole reports whether an actor holding actorRole may change the
// role of a user holding targetRole. Admins may manage anyone, including
// other admins; everyone else needs a strictly higher level.
func CanManageRole(actorRole, targetRole string) bool {
	if normalize(actorRole) == RoleAdmin {
		return true
	}
	return LevelOf(actorRole) > LevelOf(targetRole)
}

// CanCreateTasks gates company task creation.
func CanCreateTasks(actor Actor) bool {
	return actor.IsCompanyAdmin() || normalize(actor.Role) == RoleAdmin
}

// CanAssignTasks reports whether the actor may assign tasks at all.
func CanAssignTasks(actor Actor) bool {
	if CanCreateTasks(actor) {
		return true
	}
	return LevelOf(actor.Role) >= LevelOf(string(RoleSeniorEmployee))
}

// CanAssignTaskToUser reports whether actor may assign a task to target.
func CanAssignTaskToUser(actor, target Actor) bool {
	if normalize(actor.Role) == RoleAdmin {
		return true
	}
	return CanManageRole(actor.Role, target.Role)
}

// CanAccessRoleManagement gates the role management surface.
func CanAccessRoleManagement(role string) bool {
	return normalize(role) == RoleAdmin || CanManageRole(role, string(RoleEmployee))
}

// CanCreateCustomRole reports whether role may define company roles.
func CanCreateCustomRole(role string) bool {
	_, ok := customRoleCreators[normalize(role)]
	return ok
}

// Capabilities summarises the checks for one actor.
type Capabilities struct {
	CreateTasks      bool `json:"create_tasks"`
	AssignTasks      bool `json:"assign_tasks"`
	ManageRoles      bool `json:"manage_roles"`
	CreateCustomRole bool `json:"create_custom_role"`
}

// CapabilitiesOf evaluates every capability for actor.
func CapabilitiesOf(actor Actor) Capabilities {
	return Capabilities{
		CreateTasks:      CanCreateTasks(actor),
		AssignTasks:      CanAssignTasks(actor),
		ManageRoles:      CanAccessRoleManagement(actor.Role),
		CreateCustomRole: CanCreateCustomRole(actor.Role),
	}
}
