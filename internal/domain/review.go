package domain

import "time"

type Review struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId"`
	SellerID      string    `json:"sellerId"`
	AppointmentID string    `json:"appointmentId"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	IsDeleted     bool      `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Customer *PartySummary `json:"customer,omitempty"`
	Seller   *PartySummary `json:"seller,omitempty"`
}
