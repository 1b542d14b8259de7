// Package bank implements the account service, the transfer engine and
// the statement/query layer over the ledger store.
//
// Every balance mutation in the system goes through this package, and
// every mutation runs inside one store atomic scope: either all balance
// deltas and transaction inserts of an operation commit, or none do.
// The engine itself is stateless; each call is a fresh all-or-nothing
// attempt, and concurrent conflicting operations are serialized by the
// store, not here.
package bank

import (
	"errors"
	"fmt"
	"iter"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"laxmi-banking/models"
	"laxmi-banking/store"
)

const (
	defaultBranchID = "LXMB001"
	defaultIFSC     = "LXMB0001001"

	// numberAttempts bounds the draw-and-insert retry loop for account
	// numbers. The 10-digit space is sparse, so collisions are rare but
	// the store is still the authority on uniqueness.
	numberAttempts = 5
)

// minLoanAmount is the smallest loan request accepted for review.
var minLoanAmount = decimal.NewFromInt(100)

// Service exposes the ledger core to the surrounding routes.
type Service struct {
	store *store.Store

	// newNumber draws a candidate account number. Swappable in tests to
	// force collisions.
	newNumber func() string
}

// New creates a Service over the given ledger store.
func New(st *store.Store) *Service {
	return &Service{store: st, newNumber: randomAccountNumber}
}

// randomAccountNumber draws a 10-digit numeric string.
func randomAccountNumber() string {
	return strconv.FormatInt(1_000_000_000+rand.Int63n(9_000_000_000), 10)
}

// validAmount reports whether amt is positive with at most two decimal
// places.
func validAmount(amt decimal.Decimal) bool {
	return amt.IsPositive() && amt.Equal(amt.Round(2))
}

// OpenAccount creates an account for ownerID. An owner may hold at most
// one account per type and models.MaxAccountsPerOwner accounts total.
// A positive initial deposit becomes the account's first credit entry,
// recorded in the same atomic scope as the account itself.
func (s *Service) OpenAccount(ownerID string, typ models.AccountType, initialDeposit decimal.Decimal, nominee models.Nominee) (models.Account, error) {
	if !typ.Valid() {
		return models.Account{}, ErrInvalidAccountType
	}
	if initialDeposit.IsNegative() || !initialDeposit.Equal(initialDeposit.Round(2)) {
		return models.Account{}, ErrInvalidAmount
	}

	now := time.Now().UTC()
	account := models.Account{
		ID:                  uuid.New().String(),
		OwnerID:             ownerID,
		Type:                typ,
		Balance:             initialDeposit,
		BranchID:            defaultBranchID,
		IFSCCode:            defaultIFSC,
		NomineeName:         nominee.Name,
		NomineeRelationship: nominee.Relationship,
		BeneficiaryMobile:   nominee.BeneficiaryMobile,
		Status:              models.Active,
		CreatedAt:           now,
	}

	err := s.store.Atomically(func(tx *store.Tx) error {
		existing := tx.AccountsByOwner(ownerID)
		if len(existing) >= models.MaxAccountsPerOwner {
			return ErrAccountLimitExceeded
		}
		for _, a := range existing {
			if a.Type == typ {
				return ErrDuplicateAccountType
			}
		}

		var createErr error
		for i := 0; i < numberAttempts; i++ {
			account.AccountNumber = s.newNumber()
			createErr = tx.CreateAccount(account)
			if !errors.Is(createErr, store.ErrAccountNumberTaken) {
				break
			}
		}
		if createErr != nil {
			return fmt.Errorf("allocating account number: %w", createErr)
		}

		if initialDeposit.IsPositive() {
			tx.InsertTransaction(models.Transaction{
				ID:          uuid.New().String(),
				AccountID:   account.ID,
				Direction:   models.Credit,
				Amount:      initialDeposit,
				Description: "Initial Deposit",
				ReferenceID: uuid.New().String(),
				CreatedAt:   now,
			})
		}
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// GetAccount returns the account only if it belongs to ownerID. The
// ownership check is mandatory on every account read; a foreign account
// is indistinguishable from a missing one.
func (s *Service) GetAccount(ownerID, accountID string) (models.Account, error) {
	a, err := s.store.Account(accountID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	if a.OwnerID != ownerID {
		return models.Account{}, ErrAccountNotFound
	}
	return a, nil
}

// FindByAccountNumber resolves an account regardless of owner. Used to
// resolve transfer recipients.
func (s *Service) FindByAccountNumber(number string) (models.Account, error) {
	a, err := s.store.AccountByNumber(number)
	if errors.Is(err, store.ErrNotFound) {
		return models.Account{}, ErrAccountNotFound
	}
	return a, err
}

// SetStatus unconditionally moves an account to the given status. This
// is an administrative operation; any approval workflow lives with the
// caller.
func (s *Service) SetStatus(accountID string, status models.AccountStatus) (models.Account, error) {
	if !status.Valid() {
		return models.Account{}, ErrInvalidStatus
	}
	var updated models.Account
	err := s.store.Atomically(func(tx *store.Tx) error {
		a, ok := tx.Account(accountID)
		if !ok {
			return ErrAccountNotFound
		}
		a.Status = status
		tx.PutAccount(a)
		updated = a
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	return updated, nil
}

// Transfer moves amount from the owner's source account to the account
// holding recipientNumber as one atomic unit: debit, credit and both
// ledger legs commit together or not at all. The returned reference id
// links the two legs. Preconditions are checked in a fixed order and
// the first failure aborts with no side effect.
func (s *Service) Transfer(ownerID, sourceAccountID, recipientNumber string, amount decimal.Decimal, description string) (string, error) {
	if !validAmount(amount) {
		return "", ErrInvalidAmount
	}

	referenceID := uuid.New().String()
	err := s.store.Atomically(func(tx *store.Tx) error {
		src, ok := tx.Account(sourceAccountID)
		if !ok || src.OwnerID != ownerID {
			return ErrAccountNotFound
		}
		if src.Status != models.Active {
			return ErrSourceInactive
		}
		if src.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		dst, ok := tx.AccountByNumber(recipientNumber)
		if !ok {
			return ErrRecipientNotFound
		}
		if dst.Status != models.Active {
			return ErrRecipientInactive
		}

		src.Balance = src.Balance.Sub(amount)
		tx.PutAccount(src)
		if dst.ID == src.ID {
			// Transfer to own account number nets to zero; both legs
			// are still recorded.
			dst = src
		}
		dst.Balance = dst.Balance.Add(amount)
		tx.PutAccount(dst)

		debitDesc := description
		if debitDesc == "" {
			debitDesc = fmt.Sprintf("Transfer to %s", recipientNumber)
		}
		now := time.Now().UTC()
		tx.InsertTransaction(models.Transaction{
			ID:          uuid.New().String(),
			AccountID:   src.ID,
			Direction:   models.Debit,
			Amount:      amount,
			Description: debitDesc,
			ReferenceID: referenceID,
			CreatedAt:   now,
		})
		tx.InsertTransaction(models.Transaction{
			ID:          uuid.New().String(),
			AccountID:   dst.ID,
			Direction:   models.Credit,
			Amount:      amount,
			Description: fmt.Sprintf("Transfer from %s", src.AccountNumber),
			ReferenceID: referenceID,
			CreatedAt:   now,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return referenceID, nil
}

// PayBill debits the owner's source account in favor of an external
// payee. A bill payment has a single debit leg; the payee is outside
// the ledger, so there is no recipient check and no credit leg.
func (s *Service) PayBill(ownerID, sourceAccountID, payeeName, externalAccountNumber string, amount decimal.Decimal) (string, models.Transaction, error) {
	if !validAmount(amount) {
		return "", models.Transaction{}, ErrInvalidAmount
	}

	referenceID := uuid.New().String()
	var entry models.Transaction
	err := s.store.Atomically(func(tx *store.Tx) error {
		src, ok := tx.Account(sourceAccountID)
		if !ok || src.OwnerID != ownerID {
			return ErrAccountNotFound
		}
		if src.Status != models.Active {
			return ErrSourceInactive
		}
		if src.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		src.Balance = src.Balance.Sub(amount)
		tx.PutAccount(src)

		entry = models.Transaction{
			ID:          uuid.New().String(),
			AccountID:   src.ID,
			Direction:   models.Debit,
			Amount:      amount,
			Description: fmt.Sprintf("Bill Payment to %s (Acct: %s)", payeeName, externalAccountNumber),
			ReferenceID: referenceID,
			CreatedAt:   time.Now().UTC(),
		}
		tx.InsertTransaction(entry)
		return nil
	})
	if err != nil {
		return "", models.Transaction{}, err
	}
	return referenceID, entry, nil
}

// StatementFilter narrows a transaction listing. Zero values mean no
// constraint; the date bounds are inclusive.
type StatementFilter struct {
	Query string // case-insensitive match on description or entry type
	From  *time.Time
	To    *time.Time
}

func (f StatementFilter) matches(t models.Transaction) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(t.Description), q) &&
			!strings.Contains(string(t.Direction), q) {
			return false
		}
	}
	if f.From != nil && t.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && t.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// ListTransactions returns the account's ledger entries newest first as
// a lazy, restartable sequence over a stable snapshot. Ranging over the
// sequence never mutates ledger state.
func (s *Service) ListTransactions(ownerID, accountID string, filter StatementFilter) (iter.Seq[models.Transaction], error) {
	if _, err := s.GetAccount(ownerID, accountID); err != nil {
		return nil, err
	}
	entries, err := s.store.TransactionsByAccount(accountID)
	if err != nil {
		return nil, err
	}
	return func(yield func(models.Transaction) bool) {
		for _, t := range entries {
			if !filter.matches(t) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}, nil
}

// AccountSummary aggregates the owner's accounts and their combined
// balance. Read-only.
func (s *Service) AccountSummary(ownerID string) (models.Summary, error) {
	accounts, err := s.store.AccountsByOwner(ownerID)
	if err != nil {
		return models.Summary{}, err
	}
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return models.Summary{Accounts: accounts, TotalBalance: total}, nil
}

// ListAllAccounts returns every account, newest first. Administrative;
// authorization is the caller's concern.
func (s *Service) ListAllAccounts() ([]models.Account, error) {
	return s.store.AllAccounts()
}

// ListAllTransactions returns up to limit ledger entries across all
// accounts, newest first. Administrative.
func (s *Service) ListAllTransactions(limit int) ([]models.Transaction, error) {
	return s.store.AllTransactions(limit)
}

// Dashboard aggregates the admin overview numbers.
func (s *Service) Dashboard() (models.DashboardStats, error) {
	accounts, err := s.store.AllAccounts()
	if err != nil {
		return models.DashboardStats{}, err
	}
	pending, err := s.store.CountPendingLoans()
	if err != nil {
		return models.DashboardStats{}, err
	}
	assets := decimal.Zero
	for _, a := range accounts {
		assets = assets.Add(a.Balance)
	}
	return models.DashboardStats{
		TotalAccounts: len(accounts),
		TotalAssets:   assets,
		PendingLoans:  pending,
	}, nil
}

// RequestLoan records a loan request for review. Loans never touch
// account balances here: approval happens elsewhere and no disbursement
// transaction is created.
func (s *Service) RequestLoan(ownerID string, amount, income decimal.Decimal) (models.Loan, error) {
	if !validAmount(amount) || income.IsNegative() {
		return models.Loan{}, ErrInvalidAmount
	}
	if amount.LessThan(minLoanAmount) {
		return models.Loan{}, ErrLoanTooSmall
	}
	loan := models.Loan{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Amount:      amount,
		Income:      income,
		Status:      models.LoanPending,
		RequestedAt: time.Now().UTC(),
	}
	err := s.store.Atomically(func(tx *store.Tx) error {
		tx.PutLoan(loan)
		return nil
	})
	if err != nil {
		return models.Loan{}, err
	}
	return loan, nil
}

// ListLoans returns the owner's loan requests, newest first.
func (s *Service) ListLoans(ownerID string) ([]models.Loan, error) {
	loans, err := s.store.LoansByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	if loans == nil {
		loans = []models.Loan{}
	}
	return loans, nil
}
