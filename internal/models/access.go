package models

// Role represents API caller roles
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Actions checked by RequirePermission
const (
	ActionViewDashboard = "view_dashboard"
	ActionViewVehicles  = "view_vehicles"
	ActionUpdateMileage = "update_mileage"
	ActionViewRules     = "view_rules"
	ActionManageRules   = "manage_rules"
	ActionExportReports = "export_reports"
)

// Claims represents JWT claims
type Claims struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	Exp     int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleOperator, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a role may perform an action
func (r Role) HasPermission(action string) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleManager:
		return true
	case RoleOperator:
		return action == ActionViewDashboard || action == ActionViewVehicles ||
			action == ActionViewRules || action == ActionUpdateMileage ||
			action == ActionExportReports
	case RoleViewer:
		return action == ActionViewDashboard || action == ActionViewVehicles ||
			action == ActionViewRules
	default:
		return false
	}
}
