package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAttributeNotFound  = errors.New("attribute not found")
	ErrDuplicateAttribute = errors.New("attribute with this name already exists")
)

// Store is the data access abstraction for the attribute catalog.
type Store interface {
	ListAttributes(ctx context.Context) ([]*Attribute, error)
	GetAttributeByID(ctx context.Context, id int64) (*Attribute, error)
	AttributeExistsByName(ctx context.Context, name string) (bool, error)
	CreateAttribute(ctx context.Context, name string, values []string) (*Attribute, error)
	AppendValues(ctx context.Context, attributeID int64, values []string) ([]AttributeValue, error)
	GetValuesByIDs(ctx context.Context, ids []int64) (map[int64]AttributeValue, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) ListAttributes(ctx context.Context) ([]*Attribute, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM attributes
		ORDER BY name;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}
	defer rows.Close()

	var attrs []*Attribute
	byID := make(map[int64]*Attribute)
	for rows.Next() {
		a := &Attribute{Values: []AttributeValue{}}
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		attrs = append(attrs, a)
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	valueQuery := `
		SELECT id, attribute_id, name, sort_order, created_at
		FROM attribute_values
		ORDER BY attribute_id, sort_order, id;
	`
	vrows, err := r.db.Query(ctx, valueQuery)
	if err != nil {
		return nil, fmt.Errorf("list attribute values: %w", err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var v AttributeValue
		if err := vrows.Scan(&v.ID, &v.AttributeID, &v.Name, &v.SortOrder, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attribute value: %w", err)
		}
		if a, ok := byID[v.AttributeID]; ok {
			a.Values = append(a.Values, v)
		}
	}
	return attrs, vrows.Err()
}

func (r *Repository) GetAttributeByID(ctx context.Context, id int64) (*Attribute, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM attributes
		WHERE id = $1;
	`
	a := &Attribute{Values: []AttributeValue{}}
	if err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttributeNotFound
		}
		return nil, fmt.Errorf("get attribute: %w", err)
	}

	valueQuery := `
		SELECT id, attribute_id, name, sort_order, created_at
		FROM attribute_values
		WHERE attribute_id = $1
		ORDER BY sort_order, id;
	`
	rows, err := r.db.Query(ctx, valueQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get attribute values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v AttributeValue
		if err := rows.Scan(&v.ID, &v.AttributeID, &v.Name, &v.SortOrder, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attribute value: %w", err)
		}
		a.Values = append(a.Values, v)
	}
	return a, rows.Err()
}

func (r *Repository) AttributeExistsByName(ctx context.Context, name string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM attributes WHERE LOWER(name) = LOWER($1)
		);
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("attribute exists: %w", err)
	}
	return exists, nil
}

// CreateAttribute inserts the definition and its initial values in one
// transaction so a half-created attribute never becomes visible.
func (r *Repository) CreateAttribute(ctx context.Context, name string, values []string) (*Attribute, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a := &Attribute{Values: []AttributeValue{}}
	insertAttr := `
		INSERT INTO attributes (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at;
	`
	if err := tx.QueryRow(ctx, insertAttr, name).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateAttribute
		}
		return nil, fmt.Errorf("insert attribute: %w", err)
	}

	insertValue := `
		INSERT INTO attribute_values (attribute_id, name, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id, attribute_id, name, sort_order, created_at;
	`
	for i, name := range values {
		var v AttributeValue
		if err := tx.QueryRow(ctx, insertValue, a.ID, name, i).Scan(&v.ID, &v.AttributeID, &v.Name, &v.SortOrder, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("insert attribute value: %w", err)
		}
		a.Values = append(a.Values, v)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return a, nil
}

// AppendValues adds new values after the attribute's current highest sort
// position, preserving the catalog's display order.
func (r *Repository) AppendValues(ctx context.Context, attributeID int64, values []string) ([]AttributeValue, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var next int
	nextQuery := `
		SELECT COALESCE(MAX(sort_order), -1) + 1
		FROM attribute_values
		WHERE attribute_id = $1;
	`
	if err := tx.QueryRow(ctx, nextQuery, attributeID).Scan(&next); err != nil {
		return nil, fmt.Errorf("next sort order: %w", err)
	}

	insert := `
		INSERT INTO attribute_values (attribute_id, name, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id, attribute_id, name, sort_order, created_at;
	`
	appended := make([]AttributeValue, 0, len(values))
	for i, name := range values {
		var v AttributeValue
		if err := tx.QueryRow(ctx, insert, attributeID, name, next+i).Scan(&v.ID, &v.AttributeID, &v.Name, &v.SortOrder, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("insert attribute value: %w", err)
		}
		appended = append(appended, v)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return appended, nil
}

func (r *Repository) GetValuesByIDs(ctx context.Context, ids []int64) (map[int64]AttributeValue, error) {
	out := make(map[int64]AttributeValue, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `
		SELECT id, attribute_id, name, sort_order, created_at
		FROM attribute_values
		WHERE id = ANY($1);
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get values by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v AttributeValue
		if err := rows.Scan(&v.ID, &v.AttributeID, &v.Name, &v.SortOrder, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attribute value: %w", err)
		}
		out[v.ID] = v
	}
	return out, rows.Err()
}
