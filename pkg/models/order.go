package models

import (
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/shopspring/decimal"
)

// CustomerDetails is the shipping contact captured at checkout.
type CustomerDetails struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// Order is a placed purchase. Only Status and PaymentStatus change after creation.
type Order struct {
	ID            string              `json:"id"`
	UserID        string              `json:"userId,omitempty"`
	Items         []CartLine          `json:"items"`
	Customer      CustomerDetails     `json:"customerDetails"`
	Total         decimal.Decimal     `json:"total"`
	Date          string              `json:"date"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus"`
	TransactionID string              `json:"transactionId,omitempty"`
	EvidenceImage string              `json:"paymentScreenshot,omitempty"`
}

// Order field names accepted by partial order updates.
const (
	OrderFieldStatus        = "status"
	OrderFieldPaymentStatus = "paymentStatus"
)
