package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Address is the optional structured mailing address of a client.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Client is a billable party who receives invoices.
type Client struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null"`
	Email     string       `gorm:"type:text;not null;uniqueIndex:ux_clients_email"`
	Phone     *string      `gorm:"type:text"`
	Address   *Address     `gorm:"serializer:json"`
	Company   *string      `gorm:"type:text"`
	Website   *string      `gorm:"type:text"`
	Notes     *string      `gorm:"type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }
