package authz

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Canonical department names used by the default policy table.
const (
	DeptAdministration = "administration"
	DeptIT             = "it"
	DeptQuality        = "quality"
)

var deptFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDepartment lowercases a department name and strips diacritics, so
// "Administração" and "administracao" compare equal.
func FoldDepartment(name string) string {
	folded, _, err := transform.String(deptFolder, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

var deptAliases = map[string]string{
	"administracao": DeptAdministration,
	"ti":            DeptIT,
	"qualidade":     DeptQuality,
}

func canonicalDepartment(name string) string {
	folded := FoldDepartment(name)
	if canon, ok := deptAliases[folded]; ok {
		return canon
	}
	return folded
}

// departmentDefault is the fixed fallback policy applied when neither the
// role nor the group configuration decides a permission.
func departmentDefault(department, permission string) bool {
	dept := canonicalDepartment(department)
	if dept == "" {
		return false
	}
	switch permission {
	case shared.PermViewOwnRNCs, shared.PermEditRNCs, shared.PermCreateRNC, shared.PermAssignRNC:
		return true
	case shared.PermViewAllRNCs, shared.PermViewFinalizedRNCs, shared.PermViewCharts, shared.PermViewReports:
		return dept == DeptAdministration || dept == DeptIT || dept == DeptQuality
	case shared.PermAdminAccess, shared.PermManageUsers:
		return dept == DeptAdministration || dept == DeptIT
	}
	return false
}
