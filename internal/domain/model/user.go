package model

import "time"

type Role string

const (
	RoleFarmer Role = "Farmer"
	RoleBuyer  Role = "Buyer"
	RoleAdmin  Role = "Admin"
)

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(150);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(150);not null" json:"last_name"`
	Phone        string    `gorm:"type:varchar(15)" json:"phone,omitempty"`
	Role         Role      `gorm:"type:varchar(10);not null;default:'Buyer'" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// Buyer⇔Farmerだけ切替可。Adminは切替不可。
func (u *User) SwitchedRole() (Role, bool) {
	switch u.Role {
	case RoleBuyer:
		return RoleFarmer, true
	case RoleFarmer:
		return RoleBuyer, true
	default:
		return u.Role, false
	}
}
