package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"messenger-lab/domain"
	"messenger-lab/errors"
)

func TestAccountService_UpdateProfile(t *testing.T) {
	t.Run("should persist display name and bio for the owner", func(t *testing.T) {
		req := require.New(t)
		accounts := newStubAccounts(domain.Account{ID: "a-1", Username: "alice", DisplayName: "alice"})
		svc := NewAccountService(accounts)

		err := svc.UpdateProfile("a-1", "a-1", "Alice A.", "likes go")

		req.NoError(err)
		updated := accounts.byUsername["alice"]
		req.Equal("Alice A.", updated.DisplayName)
		req.Equal("likes go", updated.Bio)
	})

	t.Run("should refuse to touch another identity", func(t *testing.T) {
		req := require.New(t)
		accounts := newStubAccounts(domain.Account{ID: "b-1", Username: "bob", DisplayName: "bob"})
		svc := NewAccountService(accounts)

		err := svc.UpdateProfile("a-1", "b-1", "Hacked", "pwned")

		req.ErrorIs(err, errors.ErrNotAuthorized)
		req.Equal("bob", accounts.byUsername["bob"].DisplayName)
	})

	t.Run("should reject a bio over 100 characters without persisting", func(t *testing.T) {
		req := require.New(t)
		accounts := newStubAccounts(domain.Account{ID: "a-1", Username: "alice", Bio: "old"})
		svc := NewAccountService(accounts)

		err := svc.UpdateProfile("a-1", "a-1", "Alice", strings.Repeat("x", 150))

		req.ErrorIs(err, errors.ErrInvalidProfile)
		// The stored value never exceeds 100 characters: the old bio
		// survives untouched
		req.Equal("old", accounts.byUsername["alice"].Bio)
	})

	t.Run("should accept a bio of exactly 100 characters", func(t *testing.T) {
		req := require.New(t)
		accounts := newStubAccounts(domain.Account{ID: "a-1", Username: "alice"})
		svc := NewAccountService(accounts)

		bio := strings.Repeat("x", 100)
		req.NoError(svc.UpdateProfile("a-1", "a-1", "Alice", bio))
		req.Equal(bio, accounts.byUsername["alice"].Bio)
	})
}
