package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates the route handlers for registration.
type HandlerBundle struct {
	// Client endpoints.
	LoginHandler  gin.HandlerFunc
	LogoutHandler gin.HandlerFunc

	// Booking endpoints.
	AvailabilityHandler gin.HandlerFunc
	BookHandler         gin.HandlerFunc

	// Admin endpoints.
	AdminLoginHandler        gin.HandlerFunc
	CreateClientHandler      gin.HandlerFunc
	ListClientsHandler       gin.HandlerFunc
	DeactivateClientHandler  gin.HandlerFunc
	PurgeVisitsHandler       gin.HandlerFunc
	AdminAvailabilityHandler gin.HandlerFunc
	ManualBookHandler        gin.HandlerFunc
}
