package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"laxmi-banking/bank"
	"laxmi-banking/models"
	"laxmi-banking/store"
)

type OpenAccountRequest struct {
	Type                string          `json:"type"`
	InitialDeposit      decimal.Decimal `json:"initialDeposit"`
	NomineeName         string          `json:"nomineeName"`
	NomineeRelationship string          `json:"nomineeRelationship"`
	BeneficiaryMobile   string          `json:"beneficiaryMobile"`
}

type TransferRequest struct {
	FromAccountID   string          `json:"fromAccountId"`
	ToAccountNumber string          `json:"toAccountNumber"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
}

type BillPayRequest struct {
	FromAccountID string          `json:"fromAccountId"`
	PayeeName     string          `json:"payeeName"`
	AccountNumber string          `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount"`
}

type LoanRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Income decimal.Decimal `json:"income"`
}

// errStatus maps domain failures to HTTP codes: validation 400,
// not-found 404, ledger-state conflicts 409, scope timeout 503.
func errStatus(err error) int {
	switch {
	case errors.Is(err, bank.ErrAccountNotFound), errors.Is(err, bank.ErrRecipientNotFound):
		return http.StatusNotFound
	case errors.Is(err, bank.ErrSourceInactive),
		errors.Is(err, bank.ErrRecipientInactive),
		errors.Is(err, bank.ErrInsufficientFunds):
		return http.StatusConflict
	case errors.Is(err, store.ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(errStatus(err), gin.H{"error": err.Error()})
}

func (a *app) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *app) openAccount(c *gin.Context) {
	customerID := c.Param("customerId")
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Invalid request body"}})
		return
	}

	var errs []string
	if req.Type == "" {
		errs = append(errs, "Account type cannot be empty")
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	account, err := a.svc.OpenAccount(customerID, models.AccountType(req.Type), req.InitialDeposit, models.Nominee{
		Name:              req.NomineeName,
		Relationship:      req.NomineeRelationship,
		BeneficiaryMobile: req.BeneficiaryMobile,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (a *app) accountSummary(c *gin.Context) {
	summary, err := a.svc.AccountSummary(c.Param("customerId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (a *app) getAccount(c *gin.Context) {
	account, err := a.svc.GetAccount(c.Param("customerId"), c.Param("accountId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (a *app) transfer(c *gin.Context) {
	customerID := c.Param("customerId")
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Invalid request body"}})
		return
	}

	var errs []string
	if req.FromAccountID == "" {
		errs = append(errs, "From account ID cannot be empty")
	}
	if req.ToAccountNumber == "" {
		errs = append(errs, "Recipient account number cannot be empty")
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	referenceID, err := a.svc.Transfer(customerID, req.FromAccountID, req.ToAccountNumber, req.Amount, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transfer successful", "referenceId": referenceID})
}

func (a *app) payBill(c *gin.Context) {
	customerID := c.Param("customerId")
	var req BillPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Invalid request body"}})
		return
	}

	var errs []string
	if req.FromAccountID == "" {
		errs = append(errs, "From account ID cannot be empty")
	}
	if req.PayeeName == "" {
		errs = append(errs, "Payee name cannot be empty")
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	referenceID, entry, err := a.svc.PayBill(customerID, req.FromAccountID, req.PayeeName, req.AccountNumber, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}

	// The ledger has committed; telling the payment network is
	// best-effort and must not affect the response.
	if token, tokenErr := a.dir.GetToken(); tokenErr != nil {
		log.Println("bill-pay notification skipped:", tokenErr)
	} else if _, notifyErr := a.dir.NotifyPayment(token, req.PayeeName, req.AccountNumber, req.Amount, referenceID); notifyErr != nil {
		log.Println("bill-pay notification failed:", notifyErr)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Bill payment successful",
		"referenceId": referenceID,
		"transaction": entry,
	})
}

// parseStatementTime accepts RFC 3339 timestamps or plain dates. A
// plain date used as the upper bound covers the whole day.
func parseStatementTime(s string, upperBound bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if upperBound {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (a *app) listTransactions(c *gin.Context) {
	from, err := parseStatementTime(c.Query("from"), false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date"})
		return
	}
	to, err := parseStatementTime(c.Query("to"), true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date"})
		return
	}

	seq, err := a.svc.ListTransactions(c.Param("customerId"), c.Param("accountId"), bank.StatementFilter{
		Query: c.Query("q"),
		From:  from,
		To:    to,
	})
	if err != nil {
		fail(c, err)
		return
	}

	transactions := []models.Transaction{}
	for t := range seq {
		transactions = append(transactions, t)
	}
	c.JSON(http.StatusOK, transactions)
}

func (a *app) requestLoan(c *gin.Context) {
	customerID := c.Param("customerId")
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Invalid request body"}})
		return
	}

	loan, err := a.svc.RequestLoan(customerID, req.Amount, req.Income)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}

func (a *app) listLoans(c *gin.Context) {
	loans, err := a.svc.ListLoans(c.Param("customerId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}

func (a *app) listBillers(c *gin.Context) {
	token, err := a.dir.GetToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate with payment network"})
		return
	}
	catalog, err := a.dir.List(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch billers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"billers": catalog})
}
