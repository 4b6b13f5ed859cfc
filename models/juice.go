package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Juice struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL    string          `gorm:"type:varchar(500)" json:"image_url"`
	Stock       int             `gorm:"default:0" json:"stock"`
	IsAvailable bool            `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
