package policy

import (
	"testing"

	"rateMyStore/domain"
)

func TestAllows(t *testing.T) {
	cases := []struct {
		role   string
		action Action
		want   bool
	}{
		{domain.RoleNormalUser, RatingWrite, true},
		{domain.RoleNormalUser, StoreRead, true},
		{domain.RoleNormalUser, StoreCreate, false},
		{domain.RoleNormalUser, UserManage, false},
		{domain.RoleStoreOwner, RatingWrite, false},
		{domain.RoleStoreOwner, StoreWrite, true},
		{domain.RoleStoreOwner, StoreReadAll, false},
		{domain.RoleSystemAdministrator, RatingWrite, false},
		{domain.RoleSystemAdministrator, UserManage, true},
		{domain.RoleSystemAdministrator, StoreReadAll, true},
		{"unknown_role", StoreRead, false},
		{"", RatingRead, false},
	}

	for _, tc := range cases {
		if got := Allows(tc.role, tc.action); got != tc.want {
			t.Errorf("Allows(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestCanViewStore(t *testing.T) {
	admin := domain.Principal{ID: 1, Role: domain.RoleSystemAdministrator}
	owner := domain.Principal{ID: 2, Role: domain.RoleStoreOwner}
	user := domain.Principal{ID: 3, Role: domain.RoleNormalUser}

	if !CanViewStore(admin, 99, false) {
		t.Error("admin should see inactive stores")
	}
	if !CanViewStore(owner, 2, false) {
		t.Error("owner should see their own inactive store")
	}
	if CanViewStore(owner, 99, false) {
		t.Error("owner should not see someone else's inactive store")
	}
	if !CanViewStore(user, 99, true) {
		t.Error("normal user should see active stores")
	}
	if CanViewStore(user, 99, false) {
		t.Error("normal user should not see inactive stores")
	}
}

func TestCanModifyStore(t *testing.T) {
	admin := domain.Principal{ID: 1, Role: domain.RoleSystemAdministrator}
	owner := domain.Principal{ID: 2, Role: domain.RoleStoreOwner}
	user := domain.Principal{ID: 3, Role: domain.RoleNormalUser}

	if !CanModifyStore(admin, 99) {
		t.Error("admin should modify any store")
	}
	if !CanModifyStore(owner, 2) {
		t.Error("owner should modify their own store")
	}
	if CanModifyStore(owner, 99) {
		t.Error("owner should not modify someone else's store")
	}
	if CanModifyStore(user, 3) {
		t.Error("normal user should never modify stores")
	}
}
