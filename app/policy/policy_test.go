package policy

import (
	"testing"

	"github.com/modaltela/modal-tela-api/app/models"
)

func TestCanPerform(t *testing.T) {
	customer := Actor{UserID: "u-customer", Role: models.RoleCustomer}
	otherCustomer := Actor{UserID: "u-other", Role: models.RoleCustomer}
	guest := Actor{SessionKey: "sess-1"}
	otherGuest := Actor{SessionKey: "sess-2"}
	admin := Actor{UserID: "u-admin", Role: models.RoleAdmin}
	otherAdmin := Actor{UserID: "u-admin-2", Role: models.RoleAdmin}
	superAdmin := Actor{UserID: "u-super", Role: models.RoleSuperAdmin}
	anonymous := Actor{}

	customerOrder := Resource{OwnerUserID: "u-customer", AssignedAdminID: "u-admin"}
	guestOrder := Resource{OwnerSessionKey: "sess-1", AssignedAdminID: "u-super"}
	unassigned := Resource{OwnerUserID: "u-customer"}

	cases := []struct {
		name   string
		actor  Actor
		action Action
		res    Resource
		want   bool
	}{
		{"owner views own order", customer, ViewOrder, customerOrder, true},
		{"other customer cannot view", otherCustomer, ViewOrder, customerOrder, false},
		{"guest views by session", guest, ViewOrder, guestOrder, true},
		{"other guest cannot view", otherGuest, ViewOrder, guestOrder, false},
		{"anonymous cannot view", anonymous, ViewOrder, guestOrder, false},
		{"empty session never matches", anonymous, ViewOrder, Resource{}, false},
		{"assigned admin views", admin, ViewOrder, customerOrder, true},
		{"unassigned admin cannot view", otherAdmin, ViewOrder, customerOrder, false},
		{"super admin views anything", superAdmin, ViewOrder, customerOrder, true},

		{"owner pays", customer, PayOrder, customerOrder, true},
		{"assigned admin does not pay", admin, PayOrder, customerOrder, false},

		{"assigned admin updates status", admin, UpdateOrderStatus, customerOrder, true},
		{"other admin cannot update status", otherAdmin, UpdateOrderStatus, customerOrder, false},
		{"customer cannot update status", customer, UpdateOrderStatus, customerOrder, false},
		{"admin cannot touch unassigned order", admin, UpdateOrderStatus, unassigned, false},
		{"super admin updates unassigned", superAdmin, UpdateOrderStatus, unassigned, true},

		{"assigned admin rejects", admin, RejectOrder, customerOrder, true},
		{"assigned admin prepares", admin, PrepareOrder, customerOrder, true},
		{"other admin cannot prepare", otherAdmin, PrepareOrder, customerOrder, false},
		{"assigned admin admin-detail", admin, ViewOrderAdmin, customerOrder, true},

		{"admin cannot assign", admin, AssignOrder, customerOrder, false},
		{"super admin assigns", superAdmin, AssignOrder, customerOrder, true},
		{"admin cannot list all", admin, ListAllOrders, Resource{}, false},
		{"super admin lists all", superAdmin, ListAllOrders, Resource{}, true},

		{"admin manages catalog", admin, ManageCatalog, Resource{}, true},
		{"customer cannot manage catalog", customer, ManageCatalog, Resource{}, false},
		{"admin sees inactive catalog", admin, ViewInactiveCatalog, Resource{}, true},
		{"admin lists users", admin, ListUsers, Resource{}, true},
		{"admin cannot manage users", admin, ManageUsers, Resource{}, false},
		{"super admin manages users", superAdmin, ManageUsers, Resource{}, true},

		{"role without user id is not staff", Actor{Role: models.RoleSuperAdmin}, ManageCatalog, Resource{}, false},
		{"unknown action denied", customer, Action(999), customerOrder, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanPerform(tc.actor, tc.action, tc.res); got != tc.want {
				t.Fatalf("CanPerform(%+v, %s, %+v) = %v, want %v", tc.actor, tc.action, tc.res, got, tc.want)
			}
		})
	}
}

func TestOrderResource(t *testing.T) {
	userID := "u-1"
	adminID := "u-2"
	order := &models.Order{
		UserID:          &userID,
		AssignedAdminID: &adminID,
		GuestUser:       &models.GuestUser{SessionKey: "sess"},
	}
	res := OrderResource(order)
	if res.OwnerUserID != userID || res.AssignedAdminID != adminID || res.OwnerSessionKey != "sess" {
		t.Fatalf("unexpected resource %+v", res)
	}
	if got := OrderResource(&models.Order{}); got != (Resource{}) {
		t.Fatalf("expected empty resource, got %+v", got)
	}
}
