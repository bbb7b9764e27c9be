package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"messenger-lab/domain"
	"messenger-lab/errors"
)

type IAccountRepository interface {
	InsertUnique(account domain.Account) (string, error)
	FindByUsername(username string) (domain.Account, error)
	FindByID(id string) (domain.Account, error)
	UpdateFields(id string, patch domain.AccountPatch) error
	ListAll() ([]domain.Account, error)
}

// AccountRepository persists accounts in BadgerDB in two tiers,
// mirroring the split between plain user records and administrative
// records:
//
//	acct:user:{username}  -> account JSON
//	acct:admin:{username} -> account JSON
//	acctid:{id}           -> tier key (secondary index for id lookups)
//
// Lookups by username consult the admin tier first; an administrative
// record always shadows a plain-user record with the same username.
type AccountRepository struct {
	db *badger.DB
}

func NewAccountRepository(db *badger.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func tierKey(role domain.Role, username string) []byte {
	if role.Administrative() {
		return []byte("acct:admin:" + username)
	}
	return []byte("acct:user:" + username)
}

func idKey(id string) []byte {
	return []byte("acctid:" + id)
}

// InsertUnique persists a new account and returns its generated ID.
// Uniqueness is enforced across both tiers inside a single transaction:
// two concurrent registrations for the same username cannot both
// succeed, the loser gets ErrUsernameTaken.
func (r *AccountRepository) InsertUnique(account domain.Account) (string, error) {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(account)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		for _, key := range [][]byte{
			[]byte("acct:user:" + account.Username),
			[]byte("acct:admin:" + account.Username),
		} {
			if _, err := txn.Get(key); err == nil {
				return errors.ErrUsernameTaken
			} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		key := tierKey(account.Role, account.Username)
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(idKey(account.ID), key)
	})
	if err != nil {
		return "", err
	}
	return account.ID, nil
}

// FindByUsername returns the account registered under a username, with
// the admin tier taking precedence.
func (r *AccountRepository) FindByUsername(username string) (domain.Account, error) {
	var account domain.Account
	err := r.db.View(func(txn *badger.Txn) error {
		for _, key := range [][]byte{
			[]byte("acct:admin:" + username),
			[]byte("acct:user:" + username),
		} {
			item, err := txn.Get(key)
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, &account)
			})
		}
		return errors.ErrNotFound
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

// FindByID resolves an account through the id index.
func (r *AccountRepository) FindByID(id string) (domain.Account, error) {
	var account domain.Account
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := resolveID(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &account)
		})
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

// UpdateFields applies a patch to an account. A role change moves the
// record to its new tier and rewrites the id index.
func (r *AccountRepository) UpdateFields(id string, patch domain.AccountPatch) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key, err := resolveID(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrNotFound
		}
		if err != nil {
			return err
		}

		var account domain.Account
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &account)
		}); err != nil {
			return err
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

		data, err := json.Marshal(account)
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}

		newKey := tierKey(account.Role, account.Username)
		if string(newKey) != string(key) {
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Set(idKey(account.ID), newKey); err != nil {
				return err
			}
		}
		return txn.Set(newKey, data)
	})
}

// ListAll merges both tiers into one account per id, administrative
// records overriding plain-user records.
func (r *AccountRepository) ListAll() ([]domain.Account, error) {
	merged := make(map[string]domain.Account)

	err := r.db.View(func(txn *badger.Txn) error {
		// User tier first so the admin tier overwrites on merge.
		for _, prefix := range []string{"acct:user:", "acct:admin:"} {
			options := badger.DefaultIteratorOptions
			it := txn.NewIterator(options)

			prefixBytes := []byte(prefix)
			for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
				var account domain.Account
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &account)
				})
				if err != nil {
					it.Close()
					return err
				}
				merged[account.ID] = account
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(merged))
	for _, account := range merged {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func resolveID(txn *badger.Txn, id string) ([]byte, error) {
	item, err := txn.Get(idKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var key []byte
	err = item.Value(func(val []byte) error {
		key = append([]byte(nil), val...)
		return nil
	})
	return key, err
}
