package models

// CreateUserRequest represents the request body for registering a client.
type CreateUserRequest struct {
	FirstName      string `json:"firstName" binding:"required"`
	LastName       string `json:"lastName" binding:"required"`
	DocumentType   string `json:"documentType" binding:"required,documenttype"`
	DocumentNumber string `json:"documentNumber" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	PhoneCode      string `json:"phoneCode" binding:"required"`
	PhoneNumber    string `json:"phoneNumber" binding:"required"`
	Birthdate      string `json:"birthdate" binding:"required,isodate"`
}

// AddReservationRequest represents the request body for adding a reservation to a user.
// NeedParking is a pointer so that an omitted value defaults to false explicitly.
type AddReservationRequest struct {
	Enterprise  string `json:"enterprise" binding:"required,enterprise"`
	NeedParking *bool  `json:"needParking,omitempty"`
	Date        string `json:"date" binding:"required,isodate"`
}

// UseReservationRequest represents the request body of POST /reservations/use.
type UseReservationRequest struct {
	ID string `json:"id" binding:"required"`
}

// GetReservationsQuery holds the query string of GET /reservations.
type GetReservationsQuery struct {
	Date       string `form:"date" binding:"required,isodate"`
	Enterprise string `form:"enterprise" binding:"required,enterprise"`
}

// GetVisitsQuery holds the query string of GET /reservations/visits.
type GetVisitsQuery struct {
	From string `form:"from" binding:"required,isodate"`
	To   string `form:"to" binding:"required,isodate"`
}

// GetUsersQuery holds the query string of GET /users. Every field is optional.
type GetUsersQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1,max=100000"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search"`
	SortBy string `form:"sortBy" binding:"omitempty,oneof=firstName email createdAt"`
	Sort   string `form:"sort" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// GetClientURI holds the path parameters of GET /users/by-document/:documentType/:documentNumber.
type GetClientURI struct {
	DocumentType   string `uri:"documentType" binding:"required,documenttype"`
	DocumentNumber string `uri:"documentNumber" binding:"required"`
}
