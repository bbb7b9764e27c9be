package runtime

import (
	"context"
	"sync"

	"messenger-lab/domain"
	"messenger-lab/errors"
)

// recordingSink captures every event pushed to it, in order.
type recordingSink struct {
	mu     sync.Mutex
	events []any
}

func (s *recordingSink) Send(_ context.Context, event any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Events() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.events...)
}

// stubAccounts is an in-memory account repository keyed by id.
type stubAccounts struct {
	byID    map[string]domain.Account
	listErr error
}

func newStubAccounts(accounts ...domain.Account) *stubAccounts {
	byID := make(map[string]domain.Account)
	for _, account := range accounts {
		byID[account.ID] = account
	}
	return &stubAccounts{byID: byID}
}

func (s *stubAccounts) InsertUnique(account domain.Account) (string, error) {
	s.byID[account.ID] = account
	return account.ID, nil
}

func (s *stubAccounts) FindByUsername(username string) (domain.Account, error) {
	for _, account := range s.byID {
		if account.Username == username {
			return account, nil
		}
	}
	return domain.Account{}, errors.ErrNotFound
}

func (s *stubAccounts) FindByID(id string) (domain.Account, error) {
	account, ok := s.byID[id]
	if !ok {
		return domain.Account{}, errors.ErrNotFound
	}
	return account, nil
}

func (s *stubAccounts) UpdateFields(id string, patch domain.AccountPatch) error {
	account, ok := s.byID[id]
	if !ok {
		return errors.ErrNotFound
	}
	if patch.DisplayName != nil {
		account.DisplayName = *patch.DisplayName
	}
	if patch.Bio != nil {
		account.Bio = *patch.Bio
	}
	if patch.Banned != nil {
		account.Banned = *patch.Banned
	}
	if patch.Role != nil {
		account.Role = *patch.Role
	}
	s.byID[id] = account
	return nil
}

func (s *stubAccounts) ListAll() ([]domain.Account, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	accounts := make([]domain.Account, 0, len(s.byID))
	for _, account := range s.byID {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// stubMessages is an in-memory append-only message log.
type stubMessages struct {
	stored    []domain.Message
	insertErr error
}

func (s *stubMessages) Insert(message domain.Message) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.stored = append(s.stored, message)
	return nil
}

func (s *stubMessages) FindBetween(idA, idB string) ([]domain.Message, error) {
	var messages []domain.Message
	for _, message := range s.stored {
		pair := message.SenderID == idA && message.RecipientID == idB
		reverse := message.SenderID == idB && message.RecipientID == idA
		if pair || reverse {
			messages = append(messages, message)
		}
	}
	return messages, nil
}
