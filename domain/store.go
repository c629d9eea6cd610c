package domain

import (
	"time"
)

type Store struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"column:owner_id;not null;index" json:"ownerId"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Name        string    `gorm:"column:name;size:100;not null;index" json:"name"`
	Email       string    `gorm:"column:email;size:255;unique;not null" json:"email"`
	Address     string    `gorm:"column:address;size:400;not null" json:"address"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Phone       string    `gorm:"column:phone;size:20" json:"phone,omitempty"`
	IsActive    bool      `gorm:"column:is_active;default:true;index" json:"isActive"`
	// AverageRating and TotalRatings are cached aggregates. The rating rows
	// are the source of truth; both fields are recomputed inside the same
	// transaction as every rating write.
	AverageRating float64   `gorm:"column:average_rating;default:0" json:"averageRating"`
	TotalRatings  int       `gorm:"column:total_ratings;default:0" json:"totalRatings"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Store) TableName() string {
	return "stores"
}

// StoreFilter narrows store listings. Empty fields match everything.
type StoreFilter struct {
	Name    string
	Email   string
	Address string
}

// Sort fields accepted by store listings. Anything else falls back to
// SortByCreatedAt ascending.
const (
	SortByName          = "name"
	SortByAverageRating = "averageRating"
	SortByCreatedAt     = "createdAt"
)

type StoreSort struct {
	Field     string
	Direction string // "asc" or "desc"
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}
