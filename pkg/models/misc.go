package models

import "github.com/okestore/storefront-sync/pkg/enums"

type SupportTicket struct {
	ID          string             `json:"id"`
	Category    string             `json:"category" validate:"required"`
	Description string             `json:"description" validate:"required"`
	Name        string             `json:"name"`
	Phone       string             `json:"phone"`
	Email       string             `json:"email" validate:"omitempty,email"`
	Status      enums.TicketStatus `json:"status"`
	CreatedAt   string             `json:"createdAt"`
}

type Notification struct {
	ID        string `json:"id"`
	Icon      string `json:"icon,omitempty"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

// SavedReading is a generated reading kept by the account, delivered by the saved-items stream.
type SavedReading struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

type SocialPost struct {
	ID        string   `json:"id"`
	Content   string   `json:"content" validate:"required"`
	ImageURL  string   `json:"image,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
	CreatedAt string   `json:"createdAt"`
}

// ExtendedProfile holds the locally kept contact extras for an account.
type ExtendedProfile struct {
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}
