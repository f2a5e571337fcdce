package model

import (
	"time"
)

// MenuItem is one entry of a terminal's navigation tree. Items nest one
// level deep via ParentKey. Only active items are candidates for resolution.
type MenuItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"type:varchar(50);uniqueIndex;not null"`
	Terminal  Terminal  `json:"terminal" gorm:"type:varchar(20);index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Path      string    `json:"path" gorm:"type:varchar(255)"`
	Icon      string    `json:"icon" gorm:"type:varchar(50)"`
	ParentKey *string   `json:"parent_key,omitempty" gorm:"type:varchar(50);index"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
