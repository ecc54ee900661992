package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/security"
	"socialgraph/src/repositories"
)

// IdentityService is the identity store: registration, credential checks,
// token issuance and the explicit delete cascade. It produces the
// domain.Identity value the rest of the core receives as a parameter.
type IdentityService struct {
	userRepo   *repositories.UserRepository
	cachedRepo *repositories.CachedRelationshipRepository
	hasher     *security.Argon2Hasher
	tokens     *security.JWTProvider
}

func NewIdentityService(
	userRepo *repositories.UserRepository,
	cachedRepo *repositories.CachedRelationshipRepository,
	hasher *security.Argon2Hasher,
	tokens *security.JWTProvider,
) *IdentityService {
	return &IdentityService{
		userRepo:   userRepo,
		cachedRepo: cachedRepo,
		hasher:     hasher,
		tokens:     tokens,
	}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*entities.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if input.Username == "" || input.Email == "" || len(input.Password) < 8 {
		return nil, fmt.Errorf("username, email and a password of at least 8 characters are required: %w", domain.ErrInvalidOperation)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("IdentityService.Register - hashing failed: %w", err)
	}

	user := &entities.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate exchanges a username/password for a token pair. Unknown
// user and wrong password are indistinguishable to the caller.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	match, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("IdentityService.Authenticate - hash comparison failed: %w", err)
	}
	if !match {
		return nil, domain.ErrUnauthorized
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a fresh pair. The user must
// still exist; deleting an account revokes its refresh tokens.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken, security.TokenKindRefresh)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	return s.issueTokens(user)
}

// IdentityFromToken resolves the Bearer token into the explicit caller
// identity handed to every core operation.
func (s *IdentityService) IdentityFromToken(accessToken string) (domain.Identity, error) {
	claims, err := s.tokens.Validate(accessToken, security.TokenKindAccess)
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}

	return domain.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

func (s *IdentityService) GetSelf(ctx context.Context, actor domain.Identity) (*entities.User, error) {
	return s.userRepo.GetByID(ctx, actor.UserID)
}

func (s *IdentityService) UpdateSelf(ctx context.Context, actor domain.Identity, update domain.ProfileUpdate) (*entities.User, error) {
	return s.userRepo.UpdateProfile(ctx, actor.UserID, update)
}

func (s *IdentityService) Search(ctx context.Context, term string, limit int) ([]entities.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.Search(ctx, term, limit)
}

// DeleteSelf removes the account and all dependent graph state in one
// transaction, then drops the cached graph entries derived from it.
func (s *IdentityService) DeleteSelf(ctx context.Context, actor domain.Identity) error {
	if err := s.userRepo.DeleteCascade(ctx, actor.UserID); err != nil {
		return err
	}

	if s.cachedRepo != nil {
		if err := s.cachedRepo.InvalidateByUserIDs(ctx, []int64{actor.UserID}); err != nil {
			return fmt.Errorf("IdentityService.DeleteSelf - cache invalidation failed: %w", err)
		}
	}

	return nil
}

func (s *IdentityService) issueTokens(user *entities.User) (*domain.TokenPair, error) {
	access, refresh, err := s.tokens.GenerateTokens(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("IdentityService - token generation failed: %w", err)
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
