package policy

import "strings"

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
	ActionRender Action = "render"
	ActionPay    Action = "pay"
)

// Resource types guarded by the API.
const (
	ResourceProduct   = "product"
	ResourceCategory  = "category"
	ResourceClient    = "client"
	ResourceOrder     = "order"
	ResourceInvoice   = "invoice"
	ResourceStock     = "stock"
	ResourceDashboard = "dashboard"
)

// Permission represents an allowed action on a resource type.
// Format: "resource:action" (e.g. "order:create").
type Permission string

// NewPermission creates a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
func (p Permission) Parse() (resourceType string, action Action) {
	parts := strings.SplitN(string(p), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], Action(parts[1])
}

const (
	WildcardAll                    = "*"
	PermissionSuperAdmin Permission = "*:*"
)

// Matches reports whether p grants requested.
// "*:*" matches everything and "order:*" matches every order action.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, _ := requested.Parse()
	return res != "" && res == reqRes && string(act) == WildcardAll
}
