package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sanjitgh/authorization-server-side/internal/auth"
	usermodel "github.com/sanjitgh/authorization-server-side/internal/models/user"
	"github.com/sanjitgh/authorization-server-side/internal/storage"
)

var (
	ErrInvalidInput  = errors.New("userName and password are required")
	ErrShopNameTaken = errors.New("one or more shop names already exist")
	ErrUserNameTaken = errors.New("user name already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrNoToken       = errors.New("no token provided")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// SessionService owns the signup/signin/userinfo transitions over the user
// store.
type SessionService struct {
	store storage.UserStore
	jwt   *auth.JWTManager
}

func NewSessionService(store storage.UserStore, jwtManager *auth.JWTManager) *SessionService {
	return &SessionService{
		store: store,
		jwt:   jwtManager,
	}
}

// Signup registers a new user. Shop names are normalized before any check,
// and both the shop-name set and the user name must be unused. The lookup and
// the insert are separate store calls; the store's unique indexes catch the
// race where two identical signups pass the lookup concurrently.
func (s *SessionService) Signup(ctx context.Context, req *usermodel.SignupRequest) (*usermodel.User, error) {
	if req.UserName == "" || req.Password == "" {
		return nil, ErrInvalidInput
	}

	shopNames := NormalizeShopNames(req.ShopNames)

	if len(shopNames) > 0 {
		existing, err := s.store.FindByShopNameAny(ctx, shopNames)
		if err != nil {
			return nil, fmt.Errorf("failed to check shop names: %w", err)
		}
		if existing != nil {
			return nil, ErrShopNameTaken
		}
	}

	existing, err := s.store.FindByUserName(ctx, req.UserName)
	if err != nil {
		return nil, fmt.Errorf("failed to check user name: %w", err)
	}
	if existing != nil {
		return nil, ErrUserNameTaken
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.Insert(ctx, &usermodel.User{
		UserName:     req.UserName,
		PasswordHash: passwordHash,
		ShopNames:    shopNames,
	})
	if errors.Is(err, storage.ErrDuplicateShopName) {
		return nil, ErrShopNameTaken
	}
	if errors.Is(err, storage.ErrDuplicateUserName) {
		return nil, ErrUserNameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Signin verifies credentials and mints a session token. The error grain
// distinguishes an unknown user name from a wrong password, matching the
// original API's messages.
func (s *SessionService) Signin(ctx context.Context, req *usermodel.SigninRequest) (*usermodel.Session, error) {
	user, err := s.store.FindByUserName(ctx, req.UserName)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrWrongPassword
	}

	token, expiresAt, err := s.jwt.GenerateToken(user.ID, req.Remember)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &usermodel.Session{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// GetUserInfo resolves a raw token back to its user record.
func (s *SessionService) GetUserInfo(ctx context.Context, token string) (*usermodel.User, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// NormalizeShopNames trims and lowercases each entry, drops empties, and
// dedupes while preserving order, so two spellings of the same shop in one
// request collapse to a single stored name. User names are deliberately not
// normalized; only shop names are.
func NormalizeShopNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
