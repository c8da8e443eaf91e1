package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklendapp/booklend-server/internal/domain"
	"github.com/booklendapp/booklend-server/internal/service"
)

func (s *Server) registerLoanRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createLoan",
		Method:      http.MethodPost,
		Path:        "/api/v1/loans",
		Summary:     "Borrow a title",
		Description: "Lends an available copy of the requested title to the authenticated member",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateLoan)

	huma.Register(s.api, huma.Operation{
		OperationID: "extendLoan",
		Method:      http.MethodPost,
		Path:        "/api/v1/loans/{loanId}/extend",
		Summary:     "Extend a loan",
		Description: "Pushes the due date out by the extension period. Legal from one day before the due date, up to the extension cap.",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleExtendLoan)

	huma.Register(s.api, huma.Operation{
		OperationID: "listActiveLoans",
		Method:      http.MethodGet,
		Path:        "/api/v1/loans",
		Summary:     "List active loans",
		Description: "Returns the authenticated member's outstanding loans",
		Tags:        []string{"Loans"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListActiveLoans)
}

// === DTOs ===

// CreateLoanRequest is the request body for borrowing a title.
type CreateLoanRequest struct {
	ISBN string `json:"isbn" validate:"required,max=20" doc:"ISBN of the title to borrow"`
}

// CreateLoanInput wraps the loan request for Huma.
type CreateLoanInput struct {
	Body CreateLoanRequest
}

// ExtendLoanInput identifies the loan to extend.
type ExtendLoanInput struct {
	LoanID int64 `path:"loanId" doc:"Loan ID"`
}

// LoanResponse describes a loan.
type LoanResponse struct {
	LoanID             int64     `json:"loan_id" doc:"Loan ID"`
	CopyID             string    `json:"copy_id" doc:"Borrowed copy ID"`
	ISBN               string    `json:"isbn" doc:"Title ISBN"`
	Username           string    `json:"username" doc:"Borrower username"`
	BorrowDate         time.Time `json:"borrow_date" doc:"Borrow date"`
	DueDate            time.Time `json:"due_date" doc:"Due date"`
	Returned           bool      `json:"returned" doc:"Whether the loan has been returned"`
	NumberOfExtensions int       `json:"number_of_extensions" doc:"Extensions used so far"`
}

// LoanOutput wraps a loan response for Huma.
type LoanOutput struct {
	Body LoanResponse
}

// LoanListResponse is a list of loans.
type LoanListResponse struct {
	Loans []LoanResponse `json:"loans" doc:"Outstanding loans"`
	Total int            `json:"total" doc:"Number of loans"`
}

// LoanListOutput wraps the loan list for Huma.
type LoanListOutput struct {
	Body LoanListResponse
}

// === Handlers ===

func (s *Server) handleCreateLoan(ctx context.Context, input *CreateLoanInput) (*LoanOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	loan, err := s.services.Loan.CreateLoan(ctx, service.CreateLoanRequest{
		Username: user.Username,
		ISBN:     input.Body.ISBN,
	})
	if err != nil {
		return nil, err
	}

	return &LoanOutput{Body: mapLoanResponse(loan)}, nil
}

func (s *Server) handleExtendLoan(ctx context.Context, input *ExtendLoanInput) (*LoanOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	loan, err := s.services.Loan.ExtendLoan(ctx, input.LoanID, user.Username)
	if err != nil {
		return nil, err
	}

	return &LoanOutput{Body: mapLoanResponse(loan)}, nil
}

func (s *Server) handleListActiveLoans(ctx context.Context, _ *struct{}) (*LoanListOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	loans, err := s.services.Loan.GetActiveLoans(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	resp := LoanListResponse{
		Loans: make([]LoanResponse, 0, len(loans)),
		Total: len(loans),
	}
	for _, loan := range loans {
		resp.Loans = append(resp.Loans, mapLoanResponse(loan))
	}

	return &LoanListOutput{Body: resp}, nil
}

// === Helpers ===

func mapLoanResponse(loan *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:             loan.LoanID,
		CopyID:             loan.BookID,
		ISBN:               loan.ISBN,
		Username:           loan.Username,
		BorrowDate:         loan.BorrowDate,
		DueDate:            loan.DueDate,
		Returned:           loan.Returned,
		NumberOfExtensions: loan.NumberOfExtensions,
	}
}
