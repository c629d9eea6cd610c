package domain

import (
	"time"
)

type Rating struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"column:user_id;not null;uniqueIndex:uniq_user_store_rating" json:"userId"`
	User    *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	StoreID uint   `gorm:"column:store_id;not null;uniqueIndex:uniq_user_store_rating;index" json:"storeId"`
	Store   *Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"-"`
	// 1..5 inclusive, validated before it reaches the repository.
	Value     int       `gorm:"column:rating;not null" json:"rating"`
	Review    string    `gorm:"column:review;type:text" json:"review,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Rating) TableName() string {
	return "store_ratings"
}

// RatingWithUser is the public rating row: the rating plus who wrote it.
type RatingWithUser struct {
	Rating
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}
