// Package bank errors. These are domain-level failures the HTTP layer
// translates into status codes and user-facing messages; storage-level
// failures (store.ErrTimeout) pass through untranslated so callers can
// tell retryable conditions apart.
package bank

import "errors"

var (
	// ErrInvalidAmount rejects amounts that are not positive or carry
	// more than two decimal places.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInvalidAccountType rejects unknown account types.
	ErrInvalidAccountType = errors.New("account type must be Savings or Current")

	// ErrInvalidStatus rejects unknown account statuses.
	ErrInvalidStatus = errors.New("account status must be Active, Closed or Frozen")

	// ErrDuplicateAccountType means the owner already holds an account
	// of the requested type.
	ErrDuplicateAccountType = errors.New("only one account per type is allowed")

	// ErrAccountLimitExceeded means the owner already holds the maximum
	// number of accounts.
	ErrAccountLimitExceeded = errors.New("maximum accounts per customer reached")

	// ErrAccountNotFound means the account does not exist or does not
	// belong to the requesting owner. Ownership failures deliberately
	// look identical to missing accounts.
	ErrAccountNotFound = errors.New("account not found")

	// ErrRecipientNotFound means no account carries the recipient
	// account number.
	ErrRecipientNotFound = errors.New("recipient account not found")

	// ErrSourceInactive means the source account is Closed or Frozen.
	ErrSourceInactive = errors.New("source account is not active")

	// ErrRecipientInactive means the recipient account is Closed or
	// Frozen.
	ErrRecipientInactive = errors.New("recipient account is not active")

	// ErrInsufficientFunds means the source balance does not cover the
	// requested amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrLoanTooSmall rejects loan requests below the minimum amount.
	ErrLoanTooSmall = errors.New("loan amount is below the minimum")
)
