package services

import (
	"messenger-lab/auth"
	"messenger-lab/domain"
	"messenger-lab/errors"
	"messenger-lab/repositories"

	"github.com/samber/lo"
)

type IAccountService interface {
	UpdateProfile(actorID, targetID, displayName, bio string) error
}

type AccountService struct {
	accounts repositories.IAccountRepository
}

func NewAccountService(accounts repositories.IAccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

// UpdateProfile persists a display name and bio change. Only the owner
// of the profile may change it: a mismatched actor is protocol misuse
// and yields ErrNotAuthorized for the caller to drop silently.
func (s *AccountService) UpdateProfile(actorID, targetID, displayName, bio string) error {
	if actorID != targetID {
		return errors.ErrNotAuthorized
	}

	if err := auth.ValidateProfile(auth.ProfileRequest{
		DisplayName: displayName,
		Bio:         bio,
	}); err != nil {
		return err
	}

	return s.accounts.UpdateFields(targetID, domain.AccountPatch{
		DisplayName: lo.ToPtr(displayName),
		Bio:         lo.ToPtr(bio),
	})
}
