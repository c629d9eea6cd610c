package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleSystemAdministrator = "system_administrator"
	RoleNormalUser          = "normal_user"
	RoleStoreOwner          = "store_owner"
)

var ValidRoles = map[string]bool{
	RoleSystemAdministrator: true,
	RoleNormalUser:          true,
	RoleStoreOwner:          true,
}

type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"column:name;size:60;not null" json:"name"`
	Email         string         `gorm:"column:email;size:255;unique;not null" json:"email"`
	Password      string         `gorm:"column:password;size:255;not null" json:"-"`
	Address       string         `gorm:"column:address;size:400" json:"address,omitempty"`
	Role          string         `gorm:"column:role;size:30;default:normal_user;index" json:"role"`
	IsActive      bool           `gorm:"column:is_active;default:true;index" json:"isActive"`
	EmailVerified bool           `gorm:"column:email_verified;default:false" json:"emailVerified"`
	LastLogin     *time.Time     `gorm:"column:last_login" json:"lastLogin,omitempty"`
	LoginAttempts int            `gorm:"column:login_attempts;default:0" json:"-"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Principal is the authenticated actor behind a request, resolved by the auth
// middleware from the JWT claims.
type Principal struct {
	ID   uint
	Role string
}
