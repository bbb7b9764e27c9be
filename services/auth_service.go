package services

import (
	stderrors "errors"
	"fmt"

	"messenger-lab/auth"
	"messenger-lab/domain"
	"messenger-lab/errors"
	"messenger-lab/repositories"
)

type IAuthService interface {
	Register(username, password string) error
	Login(username, password string) (domain.Account, string, error)
	Resume(username, token string) (domain.Account, string, error)
}

type AuthService struct {
	accounts repositories.IAccountRepository
	issuer   auth.TokenIssuer
}

func NewAuthService(accounts repositories.IAccountRepository, issuer auth.TokenIssuer) *AuthService {
	return &AuthService{accounts: accounts, issuer: issuer}
}

// Register validates the credentials, hashes the password and persists
// a new plain-user account. The caller must still log in afterwards;
// registration never opens a session.
func (s *AuthService) Register(username, password string) error {
	// Validate business rules before any expensive cryptographic
	// operation.
	if err := auth.ValidateRegister(auth.RegisterRequest{
		Username: username,
		Password: password,
	}); err != nil {
		return err
	}

	// Hashing happens in the service layer to keep the repository
	// unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing failed: %w", err)
	}

	_, err = s.accounts.InsertUnique(domain.Account{
		Username:     username,
		PasswordHash: hashedPassword,
		DisplayName:  username,
		Bio:          "",
		Role:         domain.RoleUser,
	})
	// Propagates ErrUsernameTaken when the username is already used.
	return err
}

// Login verifies a password against the stored hash and, on success,
// issues a short-lived resumption token. Unknown usernames and wrong
// passwords are indistinguishable to prevent enumeration.
func (s *AuthService) Login(username, password string) (domain.Account, string, error) {
	account, err := s.accounts.FindByUsername(username)
	if err != nil {
		// Only an absent account maps to the generic credentials
		// failure; a store failure must surface as itself.
		if stderrors.Is(err, errors.ErrNotFound) {
			return domain.Account{}, "", errors.ErrInvalidCredentials
		}
		return domain.Account{}, "", err
	}
	if account.Banned {
		return domain.Account{}, "", errors.ErrAccountBanned
	}

	match, err := auth.ComparePassword(password, account.PasswordHash)
	if err != nil || !match {
		return domain.Account{}, "", errors.ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(account.ID, account.Username)
	if err != nil {
		return domain.Account{}, "", err
	}
	return account, token, nil
}

// Resume re-establishes a session from a resumption token instead of a
// password. The token only proves a recent credential check, so the
// ban flag is re-checked and a fresh token is issued.
func (s *AuthService) Resume(username, token string) (domain.Account, string, error) {
	claims, err := s.issuer.Validate(token)
	if err != nil {
		return domain.Account{}, "", errors.ErrInvalidCredentials
	}
	if claims.Username != username {
		return domain.Account{}, "", errors.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByID(claims.UserID)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return domain.Account{}, "", errors.ErrInvalidCredentials
		}
		return domain.Account{}, "", err
	}
	if account.Banned {
		return domain.Account{}, "", errors.ErrAccountBanned
	}

	fresh, err := s.issuer.Generate(account.ID, account.Username)
	if err != nil {
		return domain.Account{}, "", err
	}
	return account, fresh, nil
}
