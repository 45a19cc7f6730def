package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	usermodel "github.com/sanjitgh/authorization-server-side/internal/models/user"
)

// PostgresStorage keeps users in a relational shape: shop names live in a
// side table with the name as primary key, which is what enforces global
// shop-name uniqueness.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			user_name TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS shop_names (
			name TEXT PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			position INT NOT NULL
		);
	`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const selectUser = `
	SELECT u.id, u.user_name, u.password_hash, u.created_at,
	       COALESCE(array_agg(s.name ORDER BY s.position) FILTER (WHERE s.name IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN shop_names s ON s.user_id = u.id
`

func (s *PostgresStorage) FindByUserName(ctx context.Context, userName string) (*usermodel.User, error) {
	query := selectUser + `
		WHERE u.user_name = $1
		GROUP BY u.id
	`
	return s.findOne(ctx, query, userName)
}

func (s *PostgresStorage) FindByShopNameAny(ctx context.Context, names []string) (*usermodel.User, error) {
	query := selectUser + `
		WHERE u.id IN (SELECT user_id FROM shop_names WHERE name = ANY($1))
		GROUP BY u.id
		LIMIT 1
	`
	return s.findOne(ctx, query, names)
}

func (s *PostgresStorage) FindByID(ctx context.Context, id string) (*usermodel.User, error) {
	query := selectUser + `
		WHERE u.id = $1
		GROUP BY u.id
	`
	return s.findOne(ctx, query, id)
}

func (s *PostgresStorage) findOne(ctx context.Context, query string, arg interface{}) (*usermodel.User, error) {
	var u usermodel.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.UserName,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.ShopNames,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

func (s *PostgresStorage) Insert(ctx context.Context, u *usermodel.User) (*usermodel.User, error) {
	stored := *u
	stored.ID = uuid.New().String()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, user_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, stored.ID, stored.UserName, stored.PasswordHash, stored.CreatedAt)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	for i, name := range stored.ShopNames {
		_, err = tx.Exec(ctx, `
			INSERT INTO shop_names (name, user_id, position)
			VALUES ($1, $2, $3)
		`, name, stored.ID, i)
		if err != nil {
			return nil, mapUniqueViolation(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &stored, nil
}

func (s *PostgresStorage) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "shop_names_pkey":
			return ErrDuplicateShopName
		case "users_user_name_key":
			return ErrDuplicateUserName
		}
	}
	return fmt.Errorf("failed to insert user: %w", err)
}
