package store

import (
	"slices"

	"budgetku/internal/core"
)

// AddTransaction stores a new transaction with a fresh ID and runs the
// overspending check.
func (s *Store) AddTransaction(in core.TransactionInput) (core.Transaction, error) {
	var added core.Transaction
	err := s.mutate(OpAddTransaction, true, func() (bool, error) {
		tx := in.Transaction(0)
		if err := s.check(tx); err != nil {
			return false, err
		}
		tx.ID = s.nextID()
		s.state.Transactions = append(s.state.Transactions, tx)
		added = tx.Clone()
		return true, nil
	})
	return added, err
}

// EditTransaction merges patch into the transaction with the given ID.
// An unknown ID is a no-op and reports false. The overspending check runs
// either way.
func (s *Store) EditTransaction(id int64, patch core.TransactionPatch) (core.Transaction, bool, error) {
	var (
		edited core.Transaction
		found  bool
	)
	err := s.mutate(OpEditTransaction, true, func() (bool, error) {
		i := s.indexOf(id)
		if i < 0 {
			return false, nil
		}
		tx := s.state.Transactions[i].Apply(patch)
		if err := s.check(tx); err != nil {
			return false, err
		}
		s.state.Transactions[i] = tx
		edited, found = tx.Clone(), true
		return true, nil
	})
	return edited, found, err
}

// DeleteTransaction removes the transaction with the given ID. Unknown IDs are a no-op.
func (s *Store) DeleteTransaction(id int64) bool {
	var found bool
	_ = s.mutate(OpDeleteTransaction, false, func() (bool, error) {
		i := s.indexOf(id)
		if i < 0 {
			return false, nil
		}
		s.state.Transactions = slices.Delete(s.state.Transactions, i, i+1)
		found = true
		return true, nil
	})
	return found
}

// Transaction looks a transaction up by ID.
func (s *Store) Transaction(id int64) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.state.Transactions[i].Clone(), true
	}
	return core.Transaction{}, false
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.state.Transactions, func(tx core.Transaction) bool { return tx.ID == id })
}

func (s *Store) check(tx core.Transaction) error {
	if s.validate == nil {
		return nil
	}
	return s.validate(tx)
}
