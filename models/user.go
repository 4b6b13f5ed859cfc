package models

import "time"

type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	FullName        string     `gorm:"type:varchar(255)" json:"full_name"`
	Email           string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PhoneNumber     string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone_number"`
	Password        string     `gorm:"type:varchar(255);not null" json:"-"`
	IsStaff         bool       `gorm:"default:false" json:"is_staff"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	IsEmailVerified bool       `gorm:"default:false" json:"is_email_verified"`
	IsPhoneVerified bool       `gorm:"default:false" json:"is_phone_verified"`
	EmailOTP        string     `gorm:"type:varchar(6)" json:"-"`
	PhoneOTP        string     `gorm:"type:varchar(6)" json:"-"`
	EmailOTPSentAt  *time.Time `json:"-"`
	PhoneOTPSentAt  *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
