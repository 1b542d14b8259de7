package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"laxmi-banking/bank"
	"laxmi-banking/billers"
	"laxmi-banking/models"
	"laxmi-banking/store"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	a := &app{
		svc: bank.New(store.New(0)),
		dir: billers.NewMockDirectory(),
	}
	return a.router(Config{FrontendURL: "http://localhost:5173"})
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func openTestAccount(t *testing.T, r *gin.Engine, customerID, typ string, deposit float64) models.Account {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/customers/"+customerID+"/accounts", gin.H{
		"type":           typ,
		"initialDeposit": deposit,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Account](t, w)
}

func TestHealth(t *testing.T) {
	r := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOpenAccountEndpoint(t *testing.T) {
	r := newTestRouter()

	account := openTestAccount(t, r, "u1", "Savings", 500)
	require.Equal(t, "u1", account.OwnerID)
	require.Len(t, account.AccountNumber, 10)
	require.Equal(t, models.Active, account.Status)

	// Missing type fails validation before the service is invoked.
	w := doJSON(t, r, http.MethodPost, "/api/customers/u1/accounts", gin.H{"initialDeposit": 10})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Second Savings account is rejected.
	w = doJSON(t, r, http.MethodPost, "/api/customers/u1/accounts", gin.H{"type": "Savings"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransferEndpoint(t *testing.T) {
	r := newTestRouter()
	src := openTestAccount(t, r, "u1", "Savings", 500)
	dst := openTestAccount(t, r, "u2", "Savings", 100)

	w := doJSON(t, r, http.MethodPost, "/api/customers/u1/transfers", gin.H{
		"fromAccountId":   src.ID,
		"toAccountNumber": dst.AccountNumber,
		"amount":          200,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[map[string]any](t, w)
	require.Equal(t, "Transfer successful", resp["message"])
	require.NotEmpty(t, resp["referenceId"])

	// Insufficient funds maps to 409 with the precondition message.
	w = doJSON(t, r, http.MethodPost, "/api/customers/u1/transfers", gin.H{
		"fromAccountId":   src.ID,
		"toAccountNumber": dst.AccountNumber,
		"amount":          10000,
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "insufficient funds")

	// Unknown recipient maps to 404.
	w = doJSON(t, r, http.MethodPost, "/api/customers/u1/transfers", gin.H{
		"fromAccountId":   src.ID,
		"toAccountNumber": "0000000000",
		"amount":          10,
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountReadsAreOwnerScoped(t *testing.T) {
	r := newTestRouter()
	a := openTestAccount(t, r, "u1", "Savings", 100)

	w := doJSON(t, r, http.MethodGet, "/api/customers/u2/accounts/"+a.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/customers/u1/accounts/"+a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestStatementEndpoint(t *testing.T) {
	r := newTestRouter()
	src := openTestAccount(t, r, "u1", "Savings", 500)

	w := doJSON(t, r, http.MethodPost, "/api/customers/u1/bill-payments", gin.H{
		"fromAccountId": src.ID,
		"payeeName":     "Electric Co",
		"accountNumber": "EL-884421",
		"amount":        75,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/customers/u1/accounts/"+src.ID+"/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]models.Transaction](t, w)
	require.Len(t, all, 2)

	w = doJSON(t, r, http.MethodGet, "/api/customers/u1/accounts/"+src.ID+"/transactions?q=electric", nil)
	require.Equal(t, http.StatusOK, w.Code)
	filtered := decode[[]models.Transaction](t, w)
	require.Len(t, filtered, 1)
	require.Contains(t, filtered[0].Description, "Electric Co")

	w = doJSON(t, r, http.MethodGet, "/api/customers/u1/accounts/"+src.ID+"/transactions?from=not-a-date", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminEndpoints(t *testing.T) {
	r := newTestRouter()
	a := openTestAccount(t, r, "u1", "Savings", 250)
	openTestAccount(t, r, "u2", "Current", 50)

	w := doJSON(t, r, http.MethodGet, "/api/admin/accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	accounts := decode[[]models.Account](t, w)
	require.Len(t, accounts, 2)

	w = doJSON(t, r, http.MethodPut, "/api/admin/accounts/"+a.ID+"/status", gin.H{"status": "Frozen"})
	require.Equal(t, http.StatusOK, w.Code)
	frozen := decode[models.Account](t, w)
	require.Equal(t, models.Frozen, frozen.Status)

	// Transfers from the frozen account now fail with a state error.
	w = doJSON(t, r, http.MethodPost, "/api/customers/u1/transfers", gin.H{
		"fromAccountId":   a.ID,
		"toAccountNumber": accounts[0].AccountNumber,
		"amount":          10,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/admin/transactions?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]models.Transaction](t, w), 1)

	w = doJSON(t, r, http.MethodGet, "/api/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.DashboardStats](t, w)
	require.Equal(t, 2, stats.TotalAccounts)
}

func TestLoanEndpoints(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/customers/u1/loans", gin.H{"amount": 5000, "income": 1200})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loan := decode[models.Loan](t, w)
	require.Equal(t, models.LoanPending, loan.Status)

	w = doJSON(t, r, http.MethodPost, "/api/customers/u1/loans", gin.H{"amount": 50, "income": 1200})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/customers/u1/loans", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]models.Loan](t, w), 1)
}

func TestBillersEndpoint(t *testing.T) {
	r := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/api/billers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Billers []billers.Biller `json:"billers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Billers)
}
