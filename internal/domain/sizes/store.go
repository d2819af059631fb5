package sizes

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/infra/dbx"
)

var (
	ErrSizeNotFound  = errors.New("size not found")
	ErrDuplicateSize = errors.New("size with this name already exists")
)

type Store interface {
	Create(ctx context.Context, s *Size) error
	List(ctx context.Context) ([]*Size, error)
	FindByNames(ctx context.Context, names []string) ([]*Size, error)
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, s *Size) error {
	query := `INSERT INTO sizes (size_name) VALUES ($1) RETURNING id, created_at;`
	if err := r.db.QueryRow(ctx, query, s.SizeName).Scan(&s.ID, &s.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return ErrDuplicateSize
		}
		return fmt.Errorf("create size: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]*Size, error) {
	return r.query(ctx, `SELECT id, size_name, created_at FROM sizes ORDER BY id;`)
}

func (r *Repository) FindByNames(ctx context.Context, names []string) ([]*Size, error) {
	if len(names) == 0 {
		return []*Size{}, nil
	}
	return r.query(ctx, `SELECT id, size_name, created_at FROM sizes WHERE size_name = ANY($1) ORDER BY id;`, names)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM sizes WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete size: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrSizeNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]*Size, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sizes: %w", err)
	}
	defer rows.Close()

	list := []*Size{}
	for rows.Next() {
		var s Size
		if err := rows.Scan(&s.ID, &s.SizeName, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
