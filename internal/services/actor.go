package services

import "brotodesk/internal/models"

// Actor is the authenticated caller of a service operation
type Actor struct {
	ID        string
	Email     string
	Role      models.Role
	IPAddress string
	UserAgent string
}

func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}
