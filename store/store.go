// Package store is the ledger store: durable keyed storage for Account,
// Transaction and Loan records with an atomic multi-record
// read-modify-write primitive on top.
//
// All state lives behind a single scope lock, so concurrent scopes are
// fully serialized and no caller ever observes a partially applied
// scope. Writes inside a scope are staged and only applied on commit;
// returning an error from the scope function discards every staged
// write. The lock is acquired with a bounded wait so a contended ledger
// surfaces ErrTimeout instead of hanging.
package store

import (
	"errors"
	"sort"
	"time"

	"laxmi-banking/models"
)

var (
	// ErrTimeout means the scope lock could not be acquired within the
	// configured wait. Nothing was read or written; callers may retry.
	ErrTimeout = errors.New("ledger busy, timed out waiting for atomic scope")

	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAccountNumberTaken means the account number chosen for a new
	// account collides with an existing one. The caller should draw a
	// new number and retry.
	ErrAccountNumberTaken = errors.New("account number already in use")
)

// DefaultLockWait bounds how long a scope or read waits for the ledger.
const DefaultLockWait = 3 * time.Second

// Store holds all ledger state. Use New to create one.
type Store struct {
	lock     chan struct{} // capacity 1, held while any scope or read runs
	lockWait time.Duration

	accounts map[string]models.Account // account id -> record
	byNumber map[string]string         // account number -> account id (uniqueness index)
	log      []models.Transaction      // append-only, insertion ordered
	loans    []models.Loan             // append-only
}

// New creates an empty ledger store. lockWait <= 0 selects
// DefaultLockWait.
func New(lockWait time.Duration) *Store {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Store{
		lock:     make(chan struct{}, 1),
		lockWait: lockWait,
		accounts: make(map[string]models.Account),
		byNumber: make(map[string]string),
	}
}

func (s *Store) acquire() error {
	select {
	case s.lock <- struct{}{}:
		return nil
	case <-time.After(s.lockWait):
		return ErrTimeout
	}
}

func (s *Store) release() {
	<-s.lock
}

// Atomically runs fn against a staged view of the store. Every write fn
// performs through the Tx commits if and only if fn returns nil; any
// error leaves the store exactly as it was. Scopes are serialized, and
// a scope that cannot start within the lock wait fails with ErrTimeout.
func (s *Store) Atomically(fn func(tx *Tx) error) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	tx := &Tx{s: s, accounts: make(map[string]models.Account)}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Tx is the staged view handed to an atomic scope. Reads see the
// scope's own staged writes before committed state. A Tx must not be
// used after its scope function returns.
type Tx struct {
	s        *Store
	accounts map[string]models.Account
	inserts  []models.Transaction
	loans    []models.Loan
}

// Account returns the account by id, staged writes first.
func (tx *Tx) Account(id string) (models.Account, bool) {
	if a, ok := tx.accounts[id]; ok {
		return a, true
	}
	a, ok := tx.s.accounts[id]
	return a, ok
}

// AccountByNumber resolves an account through the uniqueness index,
// staged creations included.
func (tx *Tx) AccountByNumber(number string) (models.Account, bool) {
	for _, a := range tx.accounts {
		if a.AccountNumber == number {
			return a, true
		}
	}
	id, ok := tx.s.byNumber[number]
	if !ok {
		return models.Account{}, false
	}
	return tx.Account(id)
}

// AccountsByOwner returns the owner's accounts as the scope currently
// sees them.
func (tx *Tx) AccountsByOwner(ownerID string) []models.Account {
	var out []models.Account
	for id, a := range tx.s.accounts {
		if _, staged := tx.accounts[id]; staged {
			continue
		}
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	for _, a := range tx.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out
}

// PutAccount stages an update to an existing account.
func (tx *Tx) PutAccount(a models.Account) {
	tx.accounts[a.ID] = a
}

// CreateAccount stages a new account, enforcing account-number
// uniqueness against both committed and staged state. Uniqueness is the
// store's responsibility: the random draw alone is never trusted.
func (tx *Tx) CreateAccount(a models.Account) error {
	if _, taken := tx.s.byNumber[a.AccountNumber]; taken {
		return ErrAccountNumberTaken
	}
	for _, staged := range tx.accounts {
		if staged.AccountNumber == a.AccountNumber && staged.ID != a.ID {
			return ErrAccountNumberTaken
		}
	}
	tx.accounts[a.ID] = a
	return nil
}

// InsertTransaction stages a ledger entry.
func (tx *Tx) InsertTransaction(t models.Transaction) {
	tx.inserts = append(tx.inserts, t)
}

// PutLoan stages a loan request.
func (tx *Tx) PutLoan(l models.Loan) {
	tx.loans = append(tx.loans, l)
}

// commit applies every staged write. Called with the scope lock held.
func (tx *Tx) commit() {
	for id, a := range tx.accounts {
		tx.s.accounts[id] = a
		if _, ok := tx.s.byNumber[a.AccountNumber]; !ok {
			tx.s.byNumber[a.AccountNumber] = id
		}
	}
	tx.s.log = append(tx.s.log, tx.inserts...)
	tx.s.loans = append(tx.s.loans, tx.loans...)
}

// Account returns the committed account by id.
func (s *Store) Account(id string) (models.Account, error) {
	if err := s.acquire(); err != nil {
		return models.Account{}, err
	}
	defer s.release()
	a, ok := s.accounts[id]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	return a, nil
}

// AccountByNumber resolves a committed account through the uniqueness
// index.
func (s *Store) AccountByNumber(number string) (models.Account, error) {
	if err := s.acquire(); err != nil {
		return models.Account{}, err
	}
	defer s.release()
	id, ok := s.byNumber[number]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	return s.accounts[id], nil
}

// AccountsByOwner returns the owner's accounts, oldest first.
func (s *Store) AccountsByOwner(ownerID string) ([]models.Account, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()
	var out []models.Account
	for _, a := range s.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sortAccounts(out, false)
	return out, nil
}

// AllAccounts returns every account, newest first.
func (s *Store) AllAccounts() ([]models.Account, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()
	out := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sortAccounts(out, true)
	return out, nil
}

// TransactionsByAccount returns the account's ledger entries, newest
// first. The two legs of a transfer share a timestamp, so recency is
// insertion order, which keeps repeated reads identical.
func (s *Store) TransactionsByAccount(accountID string) ([]models.Transaction, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()
	var out []models.Transaction
	for i := len(s.log) - 1; i >= 0; i-- {
		if s.log[i].AccountID == accountID {
			out = append(out, s.log[i])
		}
	}
	return out, nil
}

// AllTransactions returns up to limit ledger entries across all
// accounts, newest first. limit <= 0 means no limit.
func (s *Store) AllTransactions(limit int) ([]models.Transaction, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()
	var out []models.Transaction
	for i := len(s.log) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.log[i])
	}
	return out, nil
}

// LoansByOwner returns the owner's loan requests, newest first.
func (s *Store) LoansByOwner(ownerID string) ([]models.Loan, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()
	var out []models.Loan
	for i := len(s.loans) - 1; i >= 0; i-- {
		if s.loans[i].OwnerID == ownerID {
			out = append(out, s.loans[i])
		}
	}
	return out, nil
}

// CountPendingLoans reports how many loan requests await review.
func (s *Store) CountPendingLoans() (int, error) {
	if err := s.acquire(); err != nil {
		return 0, err
	}
	defer s.release()
	n := 0
	for _, l := range s.loans {
		if l.Status == models.LoanPending {
			n++
		}
	}
	return n, nil
}

// sortAccounts orders by creation time with id as tiebreak, so map
// iteration order never leaks into responses.
func sortAccounts(accts []models.Account, newestFirst bool) {
	sort.Slice(accts, func(i, j int) bool {
		if !accts[i].CreatedAt.Equal(accts[j].CreatedAt) {
			if newestFirst {
				return accts[i].CreatedAt.After(accts[j].CreatedAt)
			}
			return accts[i].CreatedAt.Before(accts[j].CreatedAt)
		}
		return accts[i].ID < accts[j].ID
	})
}
