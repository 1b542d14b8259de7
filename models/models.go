package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the product type of an account.
type AccountType string

const (
	Savings AccountType = "Savings"
	Current AccountType = "Current"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == Savings || t == Current
}

// AccountStatus is the lifecycle state of an account. Only Active
// accounts may originate or receive money movements. Closed is terminal
// but the record is never deleted.
type AccountStatus string

const (
	Active AccountStatus = "Active"
	Closed AccountStatus = "Closed"
	Frozen AccountStatus = "Frozen"
)

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	return s == Active || s == Closed || s == Frozen
}

// Direction is the side of a ledger entry.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// MaxAccountsPerOwner is the hard cap on accounts one customer may hold.
const MaxAccountsPerOwner = 2

// Account represents a customer bank account (Savings or Current).
// Ownership is immutable after creation. Balance is only ever written
// inside a ledger store atomic scope.
type Account struct {
	ID                  string          `json:"id"`
	OwnerID             string          `json:"userId"`
	AccountNumber       string          `json:"accountNumber"` // 10-digit numeric, globally unique
	Type                AccountType     `json:"type"`
	Balance             decimal.Decimal `json:"balance"`
	BranchID            string          `json:"branchId"`
	IFSCCode            string          `json:"ifscCode"`
	NomineeName         string          `json:"nomineeName,omitempty"`
	NomineeRelationship string          `json:"nomineeRelationship,omitempty"`
	BeneficiaryMobile   string          `json:"beneficiaryMobile,omitempty"`
	Status              AccountStatus   `json:"status"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// Nominee carries the administrative beneficiary details captured at
// account opening. Not behaviorally load-bearing.
type Nominee struct {
	Name              string `json:"nomineeName"`
	Relationship      string `json:"nomineeRelationship"`
	BeneficiaryMobile string `json:"beneficiaryMobile"`
}

// Transaction is one leg of a money movement. Records are append-only:
// corrections are made by new offsetting entries, never by editing
// history. The two legs of a transfer share one ReferenceID; a bill
// payment has a single debit leg.
type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	Direction   Direction       `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReferenceID string          `json:"referenceId"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// LoanStatus is the review state of a loan request. Approval and
// rejection happen in the admin review component outside this service;
// here loans are only created Pending and listed.
type LoanStatus string

const (
	LoanPending  LoanStatus = "Pending"
	LoanApproved LoanStatus = "Approved"
	LoanRejected LoanStatus = "Rejected"
)

// Loan is a customer loan request. No disbursement transaction is ever
// created for a loan.
type Loan struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Income      decimal.Decimal `json:"income"`
	Status      LoanStatus      `json:"status"`
	RequestedAt time.Time       `json:"requestedAt"`
}

// Summary is the read-side aggregation of one customer's accounts.
type Summary struct {
	Accounts     []Account       `json:"accounts"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

// DashboardStats is the admin dashboard aggregation.
type DashboardStats struct {
	TotalAccounts int             `json:"totalAccounts"`
	TotalAssets   decimal.Decimal `json:"totalAssets"`
	PendingLoans  int             `json:"pendingLoans"`
}
