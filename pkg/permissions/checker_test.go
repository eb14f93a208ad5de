package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agroflow/agroflow-backend/pkg/permissions"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name      string
		userPerms []string
		required  string
		want      bool
	}{
		{"empty required always passes", []string{}, "", true},
		{"exact match", []string{"inventaire.read"}, "inventaire.read", true},
		{"global wildcard", []string{"*"}, "rh.conges.approve", true},
		{"module wildcard covers action", []string{"inventaire.*"}, "inventaire.movements.apply", true},
		{"module wildcard covers nested action", []string{"rh.*"}, "rh.conges.approve", true},
		{"module wildcard does not cross modules", []string{"inventaire.*"}, "production.read", false},
		{"wildcard prefix must match whole segment", []string{"inventaire.*"}, "inventaires.read", false},
		{"no match", []string{"production.read"}, "production.write", false},
		{"nil permissions", nil, "inventaire.read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permissions.HasPermission(tt.userPerms, tt.required))
		})
	}
}

func TestHasAnyPermission(t *testing.T) {
	perms := []string{"inventaire.read"}

	assert.True(t, permissions.HasAnyPermission(perms, []string{"rh.read", "inventaire.read"}))
	assert.False(t, permissions.HasAnyPermission(perms, []string{"rh.read", "production.read"}))
	assert.False(t, permissions.HasAnyPermission(perms, nil))
}

func TestHasAllPermissions(t *testing.T) {
	perms := []string{"inventaire.*", "rh.read"}

	assert.True(t, permissions.HasAllPermissions(perms, []string{"inventaire.write", "rh.read"}))
	assert.False(t, permissions.HasAllPermissions(perms, []string{"inventaire.write", "rh.write"}))
	assert.True(t, permissions.HasAllPermissions(perms, nil))
}

func TestMergePermissions(t *testing.T) {
	merged := permissions.MergePermissions(
		[]string{"inventaire.read", "rh.read"},
		[]string{"rh.read", "production.*"},
	)

	assert.Equal(t, []string{"inventaire.read", "rh.read", "production.*"}, merged)
}

func TestIsValidPermission(t *testing.T) {
	assert.True(t, permissions.IsValidPermission("*"))
	assert.True(t, permissions.IsValidPermission("inventaire.read"))
	assert.True(t, permissions.IsValidPermission("custom.module.action"))
	assert.False(t, permissions.IsValidPermission("standalone"))
}
