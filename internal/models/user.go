package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	Email            string           `json:"email" gorm:"unique;not null"`
	Password         string           `json:"-" gorm:"not null"` // Hide password in JSON
	Name             string           `json:"name" gorm:"not null"`
	CompanyName      *string          `json:"company_name"`
	GoogleBusinessID *string          `json:"google_business_id"`
	SubscriptionPlan SubscriptionPlan `json:"subscription_plan" gorm:"type:varchar(16);not null"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	// Owned entities, removed together with the user
	Reviews    []Review            `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Campaigns  []Campaign          `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Templates  []ResponseTemplate  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Automation *AutomationSettings `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate hook for password hashing
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.SubscriptionPlan == "" {
		u.SubscriptionPlan = PlanFree
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies the password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func (u *User) UpdatePassword(newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}
