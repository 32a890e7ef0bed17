package space

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a space does not exist.
var ErrNotFound = errors.New("space not found")

// ErrAlreadyExists is returned when the owner already has a space.
var ErrAlreadyExists = errors.New("space already exists for owner")

// Repository handles all space database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const spaceColumns = `id, owner_id, name, level, max_count, max_size, total_count, total_size, created_at, updated_at`

func scanSpace(row pgx.Row) (*Space, error) {
	s := &Space{}
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Level, &s.MaxCount, &s.MaxSize,
		&s.TotalCount, &s.TotalSize, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new space and returns the created record.
func (r *Repository) Create(ctx context.Context, s *Space) (*Space, error) {
	created, err := scanSpace(r.db.QueryRow(ctx,
		`INSERT INTO spaces (owner_id, name, level, max_count, max_size)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+spaceColumns,
		s.OwnerID, s.Name, s.Level, s.MaxCount, s.MaxSize,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create space: %w", err)
	}
	return created, nil
}

// GetByID fetches a space by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Space, error) {
	s, err := scanSpace(r.db.QueryRow(ctx,
		`SELECT `+spaceColumns+` FROM spaces WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get space by id: %w", err)
	}
	return s, nil
}

// GetByOwner fetches the space owned by the given user.
func (r *Repository) GetByOwner(ctx context.Context, ownerID string) (*Space, error) {
	s, err := scanSpace(r.db.QueryRow(ctx,
		`SELECT `+spaceColumns+` FROM spaces WHERE owner_id = $1`, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get space by owner: %w", err)
	}
	return s, nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
