package storage

import (
	"context"
	"errors"

	usermodel "github.com/sanjitgh/authorization-server-side/internal/models/user"
)

// Unique-index violations surfaced by a backend. Callers pre-check for
// conflicts, but the check and the insert are separate operations; the store
// constraint is what turns a lost race into a detectable error.
var (
	ErrDuplicateUserName = errors.New("user name already exists")
	ErrDuplicateShopName = errors.New("shop name already exists")
)

// UserStore is the single users collection. Lookups return (nil, nil) when no
// record matches.
type UserStore interface {
	// FindByUserName is an exact, case-sensitive match.
	FindByUserName(ctx context.Context, userName string) (*usermodel.User, error)
	// FindByShopNameAny returns a record whose shop names intersect the given
	// set. Names must already be normalized (trimmed, lowercased).
	FindByShopNameAny(ctx context.Context, names []string) (*usermodel.User, error)
	FindByID(ctx context.Context, id string) (*usermodel.User, error)
	// Insert assigns the record ID and persists it. Unique violations map to
	// ErrDuplicateUserName / ErrDuplicateShopName.
	Insert(ctx context.Context, u *usermodel.User) (*usermodel.User, error)
	Close(ctx context.Context) error
}
