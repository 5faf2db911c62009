// Package policy is the single place where role and ownership rules are decided.
package policy

import "github.com/modaltela/modal-tela-api/app/models"

// Actor is whoever issued the request. The zero value is an anonymous caller
// without a session.
type Actor struct {
	UserID     string
	Role       string
	SessionKey string
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != ""
}

func (a Actor) IsStaff() bool {
	return a.IsAuthenticated() && models.IsStaffRole(a.Role)
}

func (a Actor) IsSuperAdmin() bool {
	return a.IsAuthenticated() && a.Role == models.RoleSuperAdmin
}

type Action int

const (
	ViewOrder Action = iota + 1
	PayOrder
	ViewOrderAdmin
	ListAllOrders
	UpdateOrderStatus
	RejectOrder
	PrepareOrder
	AssignOrder
	ManageCatalog
	ViewInactiveCatalog
	ListUsers
	ManageUsers
)

var actionNames = map[Action]string{
	ViewOrder:           "view_order",
	PayOrder:            "pay_order",
	ViewOrderAdmin:      "view_order_admin",
	ListAllOrders:       "list_all_orders",
	UpdateOrderStatus:   "update_order_status",
	RejectOrder:         "reject_order",
	PrepareOrder:        "prepare_order",
	AssignOrder:         "assign_order",
	ManageCatalog:       "manage_catalog",
	ViewInactiveCatalog: "view_inactive_catalog",
	ListUsers:           "list_users",
	ManageUsers:         "manage_users",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Resource describes who owns the target of an action. Empty fields mean
// "no owner of that kind".
type Resource struct {
	OwnerUserID     string
	OwnerSessionKey string
	AssignedAdminID string
}

func OrderResource(o *models.Order) Resource {
	res := Resource{}
	if o.UserID != nil {
		res.OwnerUserID = *o.UserID
	}
	if o.GuestUser != nil {
		res.OwnerSessionKey = o.GuestUser.SessionKey
	}
	if o.AssignedAdminID != nil {
		res.AssignedAdminID = *o.AssignedAdminID
	}
	return res
}

func (r Resource) ownedBy(actor Actor) bool {
	if r.OwnerUserID != "" && r.OwnerUserID == actor.UserID {
		return true
	}
	return r.OwnerSessionKey != "" && r.OwnerSessionKey == actor.SessionKey
}

func (r Resource) assignedTo(actor Actor) bool {
	return actor.IsAuthenticated() && r.AssignedAdminID != "" && r.AssignedAdminID == actor.UserID
}

// CanPerform reports whether actor may perform action on res. super_admin
// passes every check; admins are limited to orders assigned to them.
func CanPerform(actor Actor, action Action, res Resource) bool {
	if actor.IsSuperAdmin() {
		return true
	}

	switch action {
	case ViewOrder:
		return res.ownedBy(actor) || (actor.IsStaff() && res.assignedTo(actor))
	case PayOrder:
		return res.ownedBy(actor)
	case ViewOrderAdmin, UpdateOrderStatus, RejectOrder, PrepareOrder:
		return actor.IsStaff() && res.assignedTo(actor)
	case ManageCatalog, ViewInactiveCatalog, ListUsers:
		return actor.IsStaff()
	case ListAllOrders, AssignOrder, ManageUsers:
		return false
	}
	return false
}
