package categories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

var (
	ErrTopNotFound    = errors.New("top category not found")
	ErrParentNotFound = errors.New("parent category not found")
	ErrChildNotFound  = errors.New("child category not found")
	ErrDuplicateName  = errors.New("category with this name already exists")
)

// Store is the data access abstraction for the three category tiers and the
// child<->parent edges. Implemented by Repository (pgx) and the in-memory store.
type Store interface {
	// Top categories
	CreateTop(ctx context.Context, t *TopCategory) error
	GetTopByID(ctx context.Context, id int64) (*TopCategory, error)
	GetTopByName(ctx context.Context, name string) (*TopCategory, error)
	ListTops(ctx context.Context) ([]*TopCategory, error)
	UpdateTop(ctx context.Context, t *TopCategory) error
	DeleteTop(ctx context.Context, id int64) error

	// Parent categories
	CreateParent(ctx context.Context, p *ParentCategory) error
	GetParentByID(ctx context.Context, id int64) (*ParentCategory, error)
	GetParentsByIDs(ctx context.Context, ids []int64) ([]*ParentCategory, error)
	FindParentsByNames(ctx context.Context, names []string) ([]*ParentCategory, error)
	ListParents(ctx context.Context) ([]*ParentCategory, error)
	ListParentsByTop(ctx context.Context, topID int64) ([]*ParentCategory, error)
	UpdateParent(ctx context.Context, p *ParentCategory) error
	ClearTop(ctx context.Context, topID int64) error
	DeleteParent(ctx context.Context, id int64) error

	// Child categories
	CreateChild(ctx context.Context, c *ChildCategory) error
	GetChildByID(ctx context.Context, id int64) (*ChildCategory, error)
	FindChildrenByName(ctx context.Context, name string) ([]*ChildCategory, error)
	ListChildren(ctx context.Context) ([]*ChildCategory, error)
	ListChildrenByParent(ctx context.Context, parentID int64) ([]*ChildCategory, error)
	UpdateChild(ctx context.Context, c *ChildCategory) error
	DeleteChild(ctx context.Context, id int64) error

	// Edges
	AddEdges(ctx context.Context, childID int64, parentIDs []int64) error
	RemoveEdges(ctx context.Context, childID int64, parentIDs []int64) error
	RemoveChildEdges(ctx context.Context, childID int64) error
	RemoveParentEdges(ctx context.Context, parentID int64) error
	// LockChildName serializes child writes that share a name until the
	// surrounding transaction ends. Only meaningful inside a transaction.
	LockChildName(ctx context.Context, name string) error
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

// ------------------------------------
// Top categories
// ------------------------------------

const topColumns = `
	t.id, t.name, t.is_active, t.show_in_navbar, t.created_at, t.updated_at,
	COALESCE((SELECT array_agg(p.id ORDER BY p.id) FROM parent_categories p WHERE p.top_id = t.id), '{}')`

func scanTop(row pgx.Row) (*TopCategory, error) {
	t := &TopCategory{}
	if err := row.Scan(&t.ID, &t.Name, &t.IsActive, &t.ShowInNavbar, &t.CreatedAt, &t.UpdatedAt, &t.ParentIDs); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Repository) CreateTop(ctx context.Context, t *TopCategory) error {
	query := `
		INSERT INTO top_categories (name, is_active, show_in_navbar)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query, t.Name, t.IsActive, t.ShowInNavbar).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create top category: %w", err)
	}
	t.ParentIDs = []int64{}
	return nil
}

func (r *Repository) GetTopByID(ctx context.Context, id int64) (*TopCategory, error) {
	query := `SELECT ` + topColumns + ` FROM top_categories t WHERE t.id = $1;`
	t, err := scanTop(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTopNotFound
		}
		return nil, fmt.Errorf("get top category: %w", err)
	}
	return t, nil
}

func (r *Repository) GetTopByName(ctx context.Context, name string) (*TopCategory, error) {
	query := `SELECT ` + topColumns + ` FROM top_categories t WHERE t.name = $1;`
	t, err := scanTop(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTopNotFound
		}
		return nil, fmt.Errorf("get top category by name: %w", err)
	}
	return t, nil
}

func (r *Repository) ListTops(ctx context.Context) ([]*TopCategory, error) {
	query := `SELECT ` + topColumns + ` FROM top_categories t ORDER BY t.id;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list top categories: %w", err)
	}
	defer rows.Close()

	list := []*TopCategory{}
	for rows.Next() {
		t, err := scanTop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan top category: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *Repository) UpdateTop(ctx context.Context, t *TopCategory) error {
	query := `
		UPDATE top_categories
		SET name = $1, is_active = $2, show_in_navbar = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at;
	`
	err := r.db.QueryRow(ctx, query, t.Name, t.IsActive, t.ShowInNavbar, t.ID).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTopNotFound
		}
		if dbx.IsUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("update top category: %w", err)
	}
	return nil
}

func (r *Repository) DeleteTop(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM top_categories WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete top category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrTopNotFound
	}
	return nil
}

// ------------------------------------
// Parent categories
// ------------------------------------

const parentColumns = `
	p.id, p.name, p.top_id, p.is_active, p.show_in_navbar, p.created_at, p.updated_at,
	COALESCE((SELECT array_agg(e.child_id ORDER BY e.child_id) FROM child_category_parents e WHERE e.parent_id = p.id), '{}')`

func scanParent(row pgx.Row) (*ParentCategory, error) {
	p := &ParentCategory{}
	if err := row.Scan(&p.ID, &p.Name, &p.TopID, &p.IsActive, &p.ShowInNavbar, &p.CreatedAt, &p.UpdatedAt, &p.ChildIDs); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) queryParents(ctx context.Context, where string, args ...any) ([]*ParentCategory, error) {
	query := `SELECT ` + parentColumns + ` FROM parent_categories p ` + where + ` ORDER BY p.id;`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query parent categories: %w", err)
	}
	defer rows.Close()

	list := []*ParentCategory{}
	for rows.Next() {
		p, err := scanParent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan parent category: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *Repository) CreateParent(ctx context.Context, p *ParentCategory) error {
	query := `
		INSERT INTO parent_categories (name, top_id, is_active, show_in_navbar)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query, p.Name, p.TopID, p.IsActive, p.ShowInNavbar).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create parent category: %w", err)
	}
	p.ChildIDs = []int64{}
	return nil
}

func (r *Repository) GetParentByID(ctx context.Context, id int64) (*ParentCategory, error) {
	query := `SELECT ` + parentColumns + ` FROM parent_categories p WHERE p.id = $1;`
	p, err := scanParent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrParentNotFound
		}
		return nil, fmt.Errorf("get parent category: %w", err)
	}
	return p, nil
}

func (r *Repository) GetParentsByIDs(ctx context.Context, ids []int64) ([]*ParentCategory, error) {
	if len(ids) == 0 {
		return []*ParentCategory{}, nil
	}
	return r.queryParents(ctx, `WHERE p.id = ANY($1)`, ids)
}

func (r *Repository) FindParentsByNames(ctx context.Context, names []string) ([]*ParentCategory, error) {
	if len(names) == 0 {
		return []*ParentCategory{}, nil
	}
	return r.queryParents(ctx, `WHERE p.name = ANY($1)`, names)
}

func (r *Repository) ListParents(ctx context.Context) ([]*ParentCategory, error) {
	return r.queryParents(ctx, ``)
}

func (r *Repository) ListParentsByTop(ctx context.Context, topID int64) ([]*ParentCategory, error) {
	return r.queryParents(ctx, `WHERE p.top_id = $1`, topID)
}

func (r *Repository) UpdateParent(ctx context.Context, p *ParentCategory) error {
	query := `
		UPDATE parent_categories
		SET name = $1, top_id = $2, is_active = $3, show_in_navbar = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at;
	`
	err := r.db.QueryRow(ctx, query, p.Name, p.TopID, p.IsActive, p.ShowInNavbar, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrParentNotFound
		}
		if dbx.IsUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("update parent category: %w", err)
	}
	return nil
}

func (r *Repository) ClearTop(ctx context.Context, topID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE parent_categories SET top_id = NULL, updated_at = now() WHERE top_id = $1;`, topID)
	if err != nil {
		return fmt.Errorf("clear top category: %w", err)
	}
	return nil
}

func (r *Repository) DeleteParent(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM parent_categories WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete parent category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrParentNotFound
	}
	return nil
}

// ------------------------------------
// Child categories
// ------------------------------------

const childColumns = `
	c.id, c.name, c.is_active, c.show_in_navbar, c.created_at, c.updated_at,
	COALESCE((SELECT array_agg(e.parent_id ORDER BY e.parent_id) FROM child_category_parents e WHERE e.child_id = c.id), '{}'),
	COALESCE((SELECT array_agg(pr.id ORDER BY pr.id) FROM products pr WHERE pr.category_id = c.id), '{}')`

func scanChild(row pgx.Row) (*ChildCategory, error) {
	c := &ChildCategory{}
	if err := row.Scan(&c.ID, &c.Name, &c.IsActive, &c.ShowInNavbar, &c.CreatedAt, &c.UpdatedAt, &c.ParentIDs, &c.ProductIDs); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) queryChildren(ctx context.Context, where string, args ...any) ([]*ChildCategory, error) {
	query := `SELECT ` + childColumns + ` FROM child_categories c ` + where + ` ORDER BY c.id;`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query child categories: %w", err)
	}
	defer rows.Close()

	list := []*ChildCategory{}
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *Repository) CreateChild(ctx context.Context, c *ChildCategory) error {
	query := `
		INSERT INTO child_categories (name, is_active, show_in_navbar)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query, c.Name, c.IsActive, c.ShowInNavbar).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create child category: %w", err)
	}
	c.ParentIDs = []int64{}
	c.ProductIDs = []int64{}
	return nil
}

func (r *Repository) GetChildByID(ctx context.Context, id int64) (*ChildCategory, error) {
	query := `SELECT ` + childColumns + ` FROM child_categories c WHERE c.id = $1;`
	c, err := scanChild(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChildNotFound
		}
		return nil, fmt.Errorf("get child category: %w", err)
	}
	return c, nil
}

func (r *Repository) FindChildrenByName(ctx context.Context, name string) ([]*ChildCategory, error) {
	return r.queryChildren(ctx, `WHERE c.name = $1`, name)
}

func (r *Repository) ListChildren(ctx context.Context) ([]*ChildCategory, error) {
	return r.queryChildren(ctx, ``)
}

func (r *Repository) ListChildrenByParent(ctx context.Context, parentID int64) ([]*ChildCategory, error) {
	return r.queryChildren(ctx,
		`WHERE EXISTS (SELECT 1 FROM child_category_parents e WHERE e.child_id = c.id AND e.parent_id = $1)`,
		parentID)
}

func (r *Repository) UpdateChild(ctx context.Context, c *ChildCategory) error {
	query := `
		UPDATE child_categories
		SET name = $1, is_active = $2, show_in_navbar = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at;
	`
	err := r.db.QueryRow(ctx, query, c.Name, c.IsActive, c.ShowInNavbar, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrChildNotFound
		}
		return fmt.Errorf("update child category: %w", err)
	}
	return nil
}

func (r *Repository) DeleteChild(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM child_categories WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete child category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrChildNotFound
	}
	return nil
}

// ------------------------------------
// Edges
// ------------------------------------

// AddEdges is idempotent: existing edges are left alone.
func (r *Repository) AddEdges(ctx context.Context, childID int64, parentIDs []int64) error {
	if len(parentIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO child_category_parents (child_id, parent_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING;
	`
	if _, err := r.db.Exec(ctx, query, childID, parentIDs); err != nil {
		return fmt.Errorf("add category edges: %w", err)
	}
	return nil
}

func (r *Repository) RemoveEdges(ctx context.Context, childID int64, parentIDs []int64) error {
	if len(parentIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`DELETE FROM child_category_parents WHERE child_id = $1 AND parent_id = ANY($2);`,
		childID, parentIDs)
	if err != nil {
		return fmt.Errorf("remove category edges: %w", err)
	}
	return nil
}

func (r *Repository) RemoveChildEdges(ctx context.Context, childID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM child_category_parents WHERE child_id = $1;`, childID); err != nil {
		return fmt.Errorf("remove child edges: %w", err)
	}
	return nil
}

func (r *Repository) RemoveParentEdges(ctx context.Context, parentID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM child_category_parents WHERE parent_id = $1;`, parentID); err != nil {
		return fmt.Errorf("remove parent edges: %w", err)
	}
	return nil
}

func (r *Repository) LockChildName(ctx context.Context, name string) error {
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('child_category:' || $1));`, name); err != nil {
		return fmt.Errorf("lock child name: %w", err)
	}
	return nil
}
