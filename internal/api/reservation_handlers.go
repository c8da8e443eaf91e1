package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/service"
)

func (s *Server) registerReservationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createReservation",
		Method:      http.MethodPost,
		Path:        "/api/v1/reservations",
		Summary:     "Reserve a title",
		Description: "Queues the authenticated member for the copy of the title expected back soonest. Only legal when every copy is checked out.",
		Tags:        []string{"Reservations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReservation)
}

// === DTOs ===

// CreateReservationRequest is the request body for reserving a title.
type CreateReservationRequest struct {
	ISBN string `json:"isbn" validate:"required,max=20" doc:"ISBN of the title to reserve"`
}

// CreateReservationInput wraps the reservation request for Huma.
type CreateReservationInput struct {
	Body CreateReservationRequest
}

// ReservationResponse describes a reservation.
type ReservationResponse struct {
	ID              int64     `json:"id" doc:"Reservation ID"`
	CopyID          string    `json:"copy_id" doc:"Reserved copy ID"`
	ISBN            string    `json:"isbn" doc:"Title ISBN"`
	Username        string    `json:"username" doc:"Holder username"`
	ReservationDate time.Time `json:"reservation_date" doc:"Reservation date"`
	PositionInQueue int       `json:"position_in_queue" doc:"Queue position at creation time"`
}

// ReservationOutput wraps a reservation response for Huma.
type ReservationOutput struct {
	Body ReservationResponse
}

// === Handlers ===

func (s *Server) handleCreateReservation(ctx context.Context, input *CreateReservationInput) (*ReservationOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Reservation.CreateReservation(ctx, service.CreateReservationRequest{
		Username: user.Username,
		ISBN:     input.Body.ISBN,
	})
	if err != nil {
		return nil, err
	}

	return &ReservationOutput{Body: mapReservationResponse(res)}, nil
}

// === Helpers ===

func mapReservationResponse(res *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              res.ID,
		CopyID:          res.BookID,
		ISBN:            res.ISBN,
		Username:        res.Username,
		ReservationDate: res.ReservationDate,
		PositionInQueue: res.PositionInQueue,
	}
}
