// Package permissions provides utilities for checking module-scoped permission
// strings against required permissions with support for wildcards.
//
// Permission Format:
//   - "*" - Full access (all permissions)
//   - "module.*" - All actions in a module (e.g., "inventaire.*")
//   - "module.action" - Specific action (e.g., "inventaire.read")
//   - "module.subresource.action" - Nested permission (e.g., "rh.conges.approve")
package permissions

import (
	"strings"
)

// HasPermission checks if the user's permissions include the required permission.
// Supports wildcard matching:
//   - "*" matches everything
//   - "inventaire.*" matches "inventaire.read", "inventaire.write", etc.
//   - Exact match for specific permissions
func HasPermission(userPerms []string, required string) bool {
	if required == "" {
		return true // No permission required
	}

	for _, p := range userPerms {
		if p == "*" {
			return true
		}
		if p == required {
			return true
		}
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission checks if the user has any of the required permissions.
func HasAnyPermission(userPerms []string, required []string) bool {
	for _, req := range required {
		if HasPermission(userPerms, req) {
			return true
		}
	}
	return false
}

// HasAllPermissions checks if the user has all of the required permissions.
func HasAllPermissions(userPerms []string, required []string) bool {
	for _, req := range required {
		if !HasPermission(userPerms, req) {
			return false
		}
	}
	return true
}

// MergePermissions merges multiple permission sets, removing duplicates.
func MergePermissions(sets ...[]string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, set := range sets {
		for _, p := range set {
			if !seen[p] {
				seen[p] = true
				result = append(result, p)
			}
		}
	}

	return result
}

// CommonPermissions is the list of standard permissions used in AgroFlow.
// This can be used for validation and autocomplete.
var CommonPermissions = []string{
	// Inventory permissions
	"inventaire.read",
	"inventaire.write",
	"inventaire.delete",
	"inventaire.movements.apply",
	"inventaire.*",

	// Production permissions
	"production.read",
	"production.write",
	"production.delete",
	"production.tasks.complete",
	"production.*",

	// HR permissions
	"rh.read",
	"rh.write",
	"rh.delete",
	"rh.conges.approve",
	"rh.*",

	// Finance / reporting permissions
	"finance.read",
	"reports.read",
	"reports.*",

	// Settings permissions
	"parametres.read",
	"parametres.write",
	"parametres.*",

	// Admin permissions
	"admin.users.manage",
	"admin.*",

	// Full access
	"*",
}

// IsValidPermission checks if a permission string is in the known list.
// Allows wildcards and custom permissions that follow the module.action pattern.
func IsValidPermission(perm string) bool {
	if perm == "*" {
		return true
	}

	for _, p := range CommonPermissions {
		if p == perm {
			return true
		}
	}

	parts := strings.Split(perm, ".")
	return len(parts) >= 2
}
