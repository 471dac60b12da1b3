package auth

const (
	RoleHR          = "HR"
	RoleAreaManager = "AREA_MANAGER"
	RoleEmployee    = "EMPLOYEE"
)

const (
	PermCalibrationView   = "calibration.view"
	PermCalibrationManage = "calibration.manage"
	PermAuditRead         = "audit.read"
)

// RolePermissions is the fixed capability vocabulary. Roles are not
// tenant-configurable; hierarchical scope narrowing for AREA_MANAGER happens
// in the org package, not here.
var RolePermissions = map[string][]string{
	RoleHR: {
		PermCalibrationView,
		PermCalibrationManage,
		PermAuditRead,
	},
	RoleAreaManager: {
		PermCalibrationView,
		PermCalibrationManage,
	},
	RoleEmployee: {},
}

func HasPermission(role, permission string) bool {
	for _, granted := range RolePermissions[role] {
		if granted == permission {
			return true
		}
	}
	return false
}

// ScopedRoles lists roles whose visibility is restricted to their own
// department subtree.
var ScopedRoles = map[string]bool{
	RoleAreaManager: true,
}

func IsScopedRole(role string) bool {
	return ScopedRoles[role]
}
