package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"laxmi-banking/models"
)

// adminTransactionLimit caps the admin transaction feed when no limit
// is given.
const adminTransactionLimit = 100

type StatusRequest struct {
	Status string `json:"status"`
}

func (a *app) dashboard(c *gin.Context) {
	stats, err := a.svc.Dashboard()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *app) adminListAccounts(c *gin.Context) {
	accounts, err := a.svc.ListAllAccounts()
	if err != nil {
		fail(c, err)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	c.JSON(http.StatusOK, accounts)
}

func (a *app) adminSetAccountStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Invalid request body"}})
		return
	}

	account, err := a.svc.SetStatus(c.Param("accountId"), models.AccountStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (a *app) adminListTransactions(c *gin.Context) {
	limit := adminTransactionLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	transactions, err := a.svc.ListAllTransactions(limit)
	if err != nil {
		fail(c, err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	c.JSON(http.StatusOK, transactions)
}
