package policy

import (
	"context"
	"sort"

	"github.com/diewo77/go-retail/internal/models"
)

// Profile is the set of permissions granted to a user.
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver resolves a user to their profile.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// StaticProfile is an in-memory profile.
type StaticProfile struct {
	name        string
	permissions map[Permission]bool
}

// NewStaticProfile creates a profile with the given permissions.
func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{name: name, permissions: make(map[Permission]bool, len(permissions))}
	for _, perm := range permissions {
		p.permissions[perm] = true
	}
	return p
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns the granted permissions in sorted order.
func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// HasPermission checks the requested permission, honouring wildcards.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

var roleProfiles = map[models.Role]*StaticProfile{
	models.RoleAdmin: NewStaticProfile(string(models.RoleAdmin), PermissionSuperAdmin),
	models.RoleManager: NewStaticProfile(string(models.RoleManager),
		"product:*", "category:*", "stock:*", "client:*", "order:*", "invoice:*",
		NewPermission(ResourceDashboard, ActionView),
	),
	models.RoleSeller: NewStaticProfile(string(models.RoleSeller),
		NewPermission(ResourceProduct, ActionView),
		NewPermission(ResourceProduct, ActionList),
		NewPermission(ResourceCategory, ActionList),
		"client:*",
		NewPermission(ResourceOrder, ActionCreate),
		NewPermission(ResourceOrder, ActionView),
		NewPermission(ResourceOrder, ActionList),
		NewPermission(ResourceInvoice, ActionView),
		NewPermission(ResourceInvoice, ActionList),
		NewPermission(ResourceInvoice, ActionRender),
		NewPermission(ResourceDashboard, ActionView),
	),
}

// RoleProfile returns the profile attached to a staff role, or nil for an unknown role.
func RoleProfile(role models.Role) Profile {
	if p, ok := roleProfiles[role]; ok {
		return p
	}
	return nil
}
