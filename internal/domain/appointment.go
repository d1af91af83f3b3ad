package domain

import "time"

// AppointmentStatus modela el ciclo de vida de una cita.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID              string            `json:"id"`
	CustomerID      string            `json:"customerId"`
	SellerID        string            `json:"sellerId"`
	ServiceType     string            `json:"serviceType"`
	AppointmentDate time.Time         `json:"appointmentDate"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	IsDeleted       bool              `json:"-"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`

	// Resúmenes de las partes, poblados en listados.
	Customer *PartySummary `json:"customer,omitempty"`
	Seller   *PartySummary `json:"seller,omitempty"`
}

// PartySummary es la vista reducida de un usuario dentro de citas y reseñas.
type PartySummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Speciality string `json:"speciality,omitempty"`
}
