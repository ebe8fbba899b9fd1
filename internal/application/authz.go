package application

// Authorization is a fixed set of role predicates over an already
// authenticated identity. Checks are pure and never touch credentials.

// ManagementRoles are permitted management-grade read operations. The set is
// intentionally coarse.
var ManagementRoles = []string{RoleAdministrator, RoleDoctor}

// ApprovalRoles may approve submitted monthly reports.
var ApprovalRoles = []string{RoleAdministrator, RoleDoctor}

// RequireRole allows the identity only when its role is in the allow-list.
// Matching is exact; there is no role hierarchy.
func RequireRole(identity Identity, allowedRoles ...string) error {
	for _, role := range allowedRoles {
		if identity.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// RequireAdmin allows administrators only.
func RequireAdmin(identity Identity) error {
	return RequireRole(identity, RoleAdministrator)
}

// RequireManagement allows administrators and doctors.
func RequireManagement(identity Identity) error {
	return RequireRole(identity, ManagementRoles...)
}

// RequireDepartmentAccess allows the identity when it belongs to the target
// department, or when it is an administrator and the override is enabled.
func RequireDepartmentAccess(identity Identity, departmentID string, allowAdminOverride bool) error {
	if allowAdminOverride && identity.Role == RoleAdministrator {
		return nil
	}
	if identity.DepartmentID == departmentID {
		return nil
	}
	return ErrForbidden
}
