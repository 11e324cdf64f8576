package model

import "github.com/google/uuid"

// Vendor is a service-provider account able to receive bookings and payments.
// UserID is the identity provider subject the vendor signs in with.
type Vendor struct {
	Base
	UserID       string `json:"userId" db:"user_id"`
	BusinessName string `json:"businessName" db:"business_name"`
	Email        string `json:"email" db:"email"`
	DeviceToken  string `json:"-" db:"device_token"`
}

// Booking is an end user's reservation of a vendor's service.
type Booking struct {
	Base
	VendorID    uuid.UUID `json:"vendorId" db:"vendor_id"`
	CustomerID  string    `json:"customerId" db:"customer_id"`
	ServiceName string    `json:"serviceName" db:"service_name"`
	Status      string    `json:"status" db:"status"`
}
