package model

import "time"

type Farm struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FarmerID   int64     `gorm:"not null;index" json:"farmer_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Address    string    `gorm:"type:text;not null" json:"address"`
	GeoLoc     string    `gorm:"type:varchar(255)" json:"geo_loc"`
	Size       string    `gorm:"type:varchar(50)" json:"size"`
	CropTypes  string    `gorm:"type:text" json:"crop_types"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
