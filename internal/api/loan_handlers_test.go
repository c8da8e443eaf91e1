package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBookISBN = "9780134190440"

// borrowBook creates a loan and returns it.
func (ts *testServer) borrowBook(t *testing.T, token, isbn string) LoanResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/loans",
		"Authorization: Bearer "+token,
		map[string]any{"isbn": isbn})
	require.Equal(t, http.StatusOK, resp.Code, "borrow failed: %s", resp.Body.String())

	var body LoanResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestCreateLoan_EndToEnd(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerUser(t, "admin1")
	member := ts.registerUser(t, "alice")
	ts.addBook(t, admin.AccessToken, testBookISBN, "Effective Java", 1)

	loan := ts.borrowBook(t, member.AccessToken, testBookISBN)

	assert.Positive(t, loan.LoanID)
	assert.Equal(t, "alice", loan.Username)
	assert.Equal(t, testBookISBN, loan.ISBN)
	assert.False(t, loan.Returned)
	assert.Equal(t, 0, loan.NumberOfExtensions)
	// Standard loan period
	assert.Equal(t, loan.BorrowDate.AddDate(0, 0, 30), loan.DueDate)

	// The copy is now checked out
	resp := ts.api.Get("/api/v1/books/"+testBookISBN, "Authorization: Bearer "+member.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var copies CopyListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &copies))
	require.Equal(t, 1, copies.Total)
	assert.Equal(t, "BORROWED", copies.Copies[0].State)
}

func TestCreateLoan_Conflicts(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerUser(t, "admin1")
	alice := ts.registerUser(t, "alice")
	bob := ts.registerUser(t, "bob")
	ts.addBook(t, admin.AccessToken, testBookISBN, "Effective Java", 2)

	ts.borrowBook(t, alice.AccessToken, testBookISBN)

	// Second loan for the same member conflicts even with a copy left
	resp := ts.api.Post("/api/v1/loans",
		"Authorization: Bearer "+alice.AccessToken,
		map[string]any{"isbn": testBookISBN})
	assert.Equal(t, http.StatusConflict, resp.Code)

	// A different member can still borrow the remaining copy
	ts.borrowBook(t, bob.AccessToken, testBookISBN)

	// Now the title is exhausted
	carol := ts.registerUser(t, "carol")
	resp = ts.api.Post("/api/v1/loans",
		"Authorization: Bearer "+carol.AccessToken,
		map[string]any{"isbn": testBookISBN})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCreateLoan_UnknownISBN(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	member := ts.registerUser(t, "alice")

	resp := ts.api.Post("/api/v1/loans",
		"Authorization: Bearer "+member.AccessToken,
		map[string]any{"isbn": "9999999999999"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestExtendLoan_TooEarly(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerUser(t, "admin1")
	member := ts.registerUser(t, "alice")
	ts.addBook(t, admin.AccessToken, testBookISBN, "Effective Java", 1)

	loan := ts.borrowBook(t, member.AccessToken, testBookISBN)

	// A fresh loan is 29 days away from its extension window
	resp := ts.api.Post("/api/v1/loans/"+formatLoanID(loan.LoanID)+"/extend",
		"Authorization: Bearer "+member.AccessToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestExtendLoan_NotBorrower(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerUser(t, "admin1")
	alice := ts.registerUser(t, "alice")
	mallory := ts.registerUser(t, "mallory")
	ts.addBook(t, admin.AccessToken, testBookISBN, "Effective Java", 1)

	loan := ts.borrowBook(t, alice.AccessToken, testBookISBN)

	resp := ts.api.Post("/api/v1/loans/"+formatLoanID(loan.LoanID)+"/extend",
		"Authorization: Bearer "+mallory.AccessToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestExtendLoan_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	member := ts.registerUser(t, "alice")

	resp := ts.api.Post("/api/v1/loans/424242/extend",
		"Authorization: Bearer "+member.AccessToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListActiveLoans(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerUser(t, "admin1")
	member := ts.registerUser(t, "alice")

	// No loans yet
	resp := ts.api.Get("/api/v1/loans", "Authorization: Bearer "+member.AccessToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	ts.addBook(t, admin.AccessToken, testBookISBN, "Effective Java", 1)
	ts.borrowBook(t, member.AccessToken, testBookISBN)

	resp = ts.api.Get("/api/v1/loans", "Authorization: Bearer "+member.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var body LoanListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
}

func TestCreateReservation_EndToEnd(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerUser(t, "admin1")
	alice := ts.registerUser(t, "alice")
	bob := ts.registerUser(t, "bob")
	ts.addBook(t, admin.AccessToken, testBookISBN, "Effective Java", 1)

	// Copy still on the shelf: reserving is refused
	resp := ts.api.Post("/api/v1/reservations",
		"Authorization: Bearer "+bob.AccessToken,
		map[string]any{"isbn": testBookISBN})
	assert.Equal(t, http.StatusConflict, resp.Code)

	loan := ts.borrowBook(t, alice.AccessToken, testBookISBN)

	// The borrower cannot also reserve
	resp = ts.api.Post("/api/v1/reservations",
		"Authorization: Bearer "+alice.AccessToken,
		map[string]any{"isbn": testBookISBN})
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Another member queues on the borrowed copy
	resp = ts.api.Post("/api/v1/reservations",
		"Authorization: Bearer "+bob.AccessToken,
		map[string]any{"isbn": testBookISBN})
	require.Equal(t, http.StatusOK, resp.Code, "reserve failed: %s", resp.Body.String())

	var res ReservationResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Positive(t, res.ID)
	assert.Equal(t, loan.CopyID, res.CopyID)
	assert.Equal(t, "bob", res.Username)
	assert.Equal(t, 1, res.PositionInQueue)

	// Reserving twice conflicts
	resp = ts.api.Post("/api/v1/reservations",
		"Authorization: Bearer "+bob.AccessToken,
		map[string]any{"isbn": testBookISBN})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

// formatLoanID renders a loan ID for URL paths.
func formatLoanID(id int64) string {
	return strconv.FormatInt(id, 10)
}
