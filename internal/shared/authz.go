package shared

// Permission names form a closed vocabulary. Every permission check in the
// application goes through the authz resolver with one of these constants;
// ad hoc string checks are not allowed.
const (
	PermViewOwnRNCs       = "view_own_rncs"
	PermEditRNCs          = "edit_rncs"
	PermCreateRNC         = "create_rnc"
	PermViewAllRNCs       = "view_all_rncs"
	PermViewFinalizedRNCs = "view_finalized_rncs"
	PermDeleteRNCs        = "delete_rncs"
	PermFinalizeRNC       = "finalize_rnc"
	PermAssignRNC         = "assign_rnc"
	PermViewCharts        = "view_charts"
	PermViewReports       = "view_reports"
	PermAdminAccess       = "admin_access"
	PermManageUsers       = "manage_users"
)

// AllPermissions lists the full permission vocabulary.
func AllPermissions() []string {
	return []string{
		PermViewOwnRNCs,
		PermEditRNCs,
		PermCreateRNC,
		PermViewAllRNCs,
		PermViewFinalizedRNCs,
		PermDeleteRNCs,
		PermFinalizeRNC,
		PermAssignRNC,
		PermViewCharts,
		PermViewReports,
		PermAdminAccess,
		PermManageUsers,
	}
}

// KnownPermission reports whether name belongs to the vocabulary.
func KnownPermission(name string) bool {
	for _, p := range AllPermissions() {
		if p == name {
			return true
		}
	}
	return false
}
