package api

import (
	"github.com/booklendapp/booklend-server/internal/backup"
	"github.com/booklendapp/booklend-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth        *service.AuthService
	Session     *service.SessionService
	Catalog     *service.CatalogService
	Loan        *service.LoanService
	Reservation *service.ReservationService
	Backup      *backup.Service
}
