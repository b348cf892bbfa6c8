package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed reference data access.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCategories returns active categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(description, ''), is_active, created_at FROM categories WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, c Category) (Category, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id, created_at`,
		c.Name, c.Description).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return Category{}, mapPgError(err)
	}
	c.IsActive = true
	return c, nil
}

// ListUnits returns all units of measure ordered by name.
func (r *Repository) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, abbreviation FROM units_of_measure ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Unit{}
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Abbreviation); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// CreateUnit inserts a unit of measure.
func (r *Repository) CreateUnit(ctx context.Context, u Unit) (Unit, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO units_of_measure (name, abbreviation) VALUES ($1, $2) RETURNING id`,
		u.Name, u.Abbreviation).Scan(&u.ID)
	if err != nil {
		return Unit{}, mapPgError(err)
	}
	return u, nil
}

// ListDepartments returns active departments ordered by name.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, is_active, created_at FROM departments WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Department{}
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// CreateDepartment inserts a department.
func (r *Repository) CreateDepartment(ctx context.Context, d Department) (Department, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO departments (name) VALUES ($1) RETURNING id, created_at`,
		d.Name).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return Department{}, mapPgError(err)
	}
	d.IsActive = true
	return d, nil
}

// ListSuppliers returns active suppliers ordered by name.
func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(contact_person, ''), COALESCE(phone, ''), COALESCE(email, ''), COALESCE(address, ''), is_active, created_at FROM suppliers WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Email, &s.Address, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// CreateSupplier inserts a supplier.
func (r *Repository) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (name, contact_person, phone, email, address) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		s.Name, s.ContactPerson, s.Phone, s.Email, s.Address).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return Supplier{}, mapPgError(err)
	}
	s.IsActive = true
	return s, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateName
	}
	return err
}
