// Package policy is the single place deciding which role may perform which
// action. Services consult it before touching a repository; handlers never
// duplicate role checks beyond route-level gating.
package policy

import "rateMyStore/domain"

type Action string

const (
	StoreRead    Action = "store:read"     // view active stores
	StoreReadAll Action = "store:read_all" // view stores regardless of is_active
	StoreWrite   Action = "store:write"    // update own store(s)
	StoreCreate  Action = "store:create"   // create stores / assign owners
	RatingRead   Action = "rating:read"    // ratings are public to all roles
	RatingWrite  Action = "rating:write"   // create/update/delete own rating
	UserManage   Action = "user:manage"    // create users, change roles
	StatsView    Action = "stats:view"
)

// grants is the role × action table. Row-level ownership (a store owner
// touching somebody else's store) is decided by the helpers below, on top of
// a granted action.
var grants = map[string]map[Action]bool{
	domain.RoleNormalUser: {
		StoreRead:   true,
		RatingRead:  true,
		RatingWrite: true,
	},
	domain.RoleStoreOwner: {
		StoreRead:  true,
		StoreWrite: true,
		RatingRead: true,
	},
	domain.RoleSystemAdministrator: {
		StoreRead:    true,
		StoreReadAll: true,
		StoreWrite:   true,
		StoreCreate:  true,
		RatingRead:   true,
		UserManage:   true,
		StatsView:    true,
	},
}

func Allows(role string, action Action) bool {
	return grants[role][action]
}

// CanViewStore reports whether the principal may resolve this store at all.
// Callers translate a false into domain.ErrNotFound, never ErrForbidden, so
// that inactive stores do not leak their existence.
func CanViewStore(p domain.Principal, ownerID uint, active bool) bool {
	if Allows(p.Role, StoreReadAll) {
		return true
	}
	if p.Role == domain.RoleStoreOwner && p.ID == ownerID {
		return true
	}
	return active && Allows(p.Role, StoreRead)
}

// CanModifyStore reports whether the principal may update this store.
func CanModifyStore(p domain.Principal, ownerID uint) bool {
	if Allows(p.Role, StoreCreate) {
		return true
	}
	return Allows(p.Role, StoreWrite) && p.ID == ownerID
}
