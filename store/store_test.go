package store

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"laxmi-banking/models"
)

func testAccount(id, owner, number string, balance int64) models.Account {
	return models.Account{
		ID:            id,
		OwnerID:       owner,
		AccountNumber: number,
		Type:          models.Savings,
		Balance:       decimal.NewFromInt(balance),
		Status:        models.Active,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestAtomicScopeCommits(t *testing.T) {
	st := New(0)

	err := st.Atomically(func(tx *Tx) error {
		require.NoError(t, tx.CreateAccount(testAccount("a1", "u1", "1000000001", 100)))
		tx.InsertTransaction(models.Transaction{
			ID:        "t1",
			AccountID: "a1",
			Direction: models.Credit,
			Amount:    decimal.NewFromInt(100),
		})
		return nil
	})
	require.NoError(t, err)

	a, err := st.Account("a1")
	require.NoError(t, err)
	require.True(t, a.Balance.Equal(decimal.NewFromInt(100)))

	entries, err := st.TransactionsByAccount("a1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestAtomicScopeRollsBackOnError(t *testing.T) {
	st := New(0)
	require.NoError(t, st.Atomically(func(tx *Tx) error {
		return tx.CreateAccount(testAccount("a1", "u1", "1000000001", 100))
	}))

	boom := errors.New("mid-flight failure")
	err := st.Atomically(func(tx *Tx) error {
		a, ok := tx.Account("a1")
		require.True(t, ok)
		a.Balance = a.Balance.Sub(decimal.NewFromInt(40))
		tx.PutAccount(a)
		tx.InsertTransaction(models.Transaction{ID: "t1", AccountID: "a1", Direction: models.Debit})
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := st.Account("a1")
	require.NoError(t, err)
	require.True(t, a.Balance.Equal(decimal.NewFromInt(100)), "balance must be untouched after rollback")

	entries, err := st.TransactionsByAccount("a1")
	require.NoError(t, err)
	require.Empty(t, entries, "no ledger entry may survive a rolled-back scope")
}

func TestScopeReadsItsOwnWrites(t *testing.T) {
	st := New(0)
	require.NoError(t, st.Atomically(func(tx *Tx) error {
		return tx.CreateAccount(testAccount("a1", "u1", "1000000001", 100))
	}))

	err := st.Atomically(func(tx *Tx) error {
		a, _ := tx.Account("a1")
		a.Balance = a.Balance.Sub(decimal.NewFromInt(30))
		tx.PutAccount(a)

		again, ok := tx.Account("a1")
		require.True(t, ok)
		require.True(t, again.Balance.Equal(decimal.NewFromInt(70)), "staged write must be visible inside the scope")

		byNum, ok := tx.AccountByNumber("1000000001")
		require.True(t, ok)
		require.True(t, byNum.Balance.Equal(decimal.NewFromInt(70)))
		return nil
	})
	require.NoError(t, err)
}

func TestAccountNumberUniqueness(t *testing.T) {
	st := New(0)
	require.NoError(t, st.Atomically(func(tx *Tx) error {
		return tx.CreateAccount(testAccount("a1", "u1", "1234567890", 0))
	}))

	err := st.Atomically(func(tx *Tx) error {
		return tx.CreateAccount(testAccount("a2", "u2", "1234567890", 0))
	})
	require.ErrorIs(t, err, ErrAccountNumberTaken)

	_, err = st.Account("a2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUniquenessAgainstStagedCreations(t *testing.T) {
	st := New(0)
	err := st.Atomically(func(tx *Tx) error {
		require.NoError(t, tx.CreateAccount(testAccount("a1", "u1", "1234567890", 0)))
		return tx.CreateAccount(testAccount("a2", "u2", "1234567890", 0))
	})
	require.ErrorIs(t, err, ErrAccountNumberTaken)
}

func TestScopeTimeout(t *testing.T) {
	st := New(50 * time.Millisecond)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- st.Atomically(func(tx *Tx) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	err := st.Atomically(func(tx *Tx) error { return nil })
	require.ErrorIs(t, err, ErrTimeout)

	_, err = st.Account("a1")
	require.ErrorIs(t, err, ErrTimeout, "reads are bounded too")

	close(release)
	require.NoError(t, <-done)
}

func TestTransactionsNewestFirst(t *testing.T) {
	st := New(0)
	require.NoError(t, st.Atomically(func(tx *Tx) error {
		return tx.CreateAccount(testAccount("a1", "u1", "1000000001", 0))
	}))

	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, st.Atomically(func(tx *Tx) error {
			tx.InsertTransaction(models.Transaction{ID: id, AccountID: "a1", Direction: models.Credit})
			return nil
		}))
	}

	entries, err := st.TransactionsByAccount("a1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "t3", entries[0].ID)
	require.Equal(t, "t1", entries[2].ID)

	limited, err := st.AllTransactions(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, "t3", limited[0].ID)
}

func TestLoans(t *testing.T) {
	st := New(0)
	require.NoError(t, st.Atomically(func(tx *Tx) error {
		tx.PutLoan(models.Loan{ID: "l1", OwnerID: "u1", Status: models.LoanPending})
		tx.PutLoan(models.Loan{ID: "l2", OwnerID: "u2", Status: models.LoanPending})
		return nil
	}))

	loans, err := st.LoansByOwner("u1")
	require.NoError(t, err)
	require.Len(t, loans, 1)
	require.Equal(t, "l1", loans[0].ID)

	pending, err := st.CountPendingLoans()
	require.NoError(t, err)
	require.Equal(t, 2, pending)
}
