// Package transport defines request DTOs for the scheduling endpoints.
package transport

import "time"

// CreateMeetingRequest schedules a new meeting. The date is an RFC 3339
// instant; city, street and house number are free-form and go through
// address resolution.
type CreateMeetingRequest struct {
	Date        time.Time `json:"date" validate:"required"`
	City        string    `json:"city" validate:"required,max=100"`
	Street      string    `json:"street" validate:"required,max=200"`
	HouseNumber string    `json:"houseNumber" validate:"required,max=20"`
	DealType    string    `json:"dealType" validate:"required,max=100"`
}

// ChangeStreetRequest moves a pending meeting to another street.
type ChangeStreetRequest struct {
	Street string `json:"street" validate:"required,max=200"`
}

// ChangeHouseNumberRequest moves a pending meeting to another house.
type ChangeHouseNumberRequest struct {
	HouseNumber string `json:"houseNumber" validate:"required,max=20"`
}

// ChangeDealRequest points a pending meeting at another deal type.
type ChangeDealRequest struct {
	DealType string `json:"dealType" validate:"required,max=100"`
}
