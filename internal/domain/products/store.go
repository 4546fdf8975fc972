package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrBrandNotFound     = errors.New("brand not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrInvalidTransition = errors.New("variant is not in the required sell state")
)

// PersistVariant is one fully validated, fully uploaded variant ready to be
// written: image fields are final URLs, slots carry resolved attribute/value
// ids in shared slot order. ID zero means insert.
type PersistVariant struct {
	ID          int64
	Price       int64
	Stock       int
	ImageURL    string
	GalleryURLs []string
	Slots       []AttributeSlot
	Promotion   *PromotionDraft
}

// Store is the data access abstraction for the products domain.
type Store interface {
	// Reference data
	ListBrands(ctx context.Context, limit, offset int) ([]*Brand, int, error)
	ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error)
	GetBrandByID(ctx context.Context, id int64) (*Brand, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)

	// Products
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	GetProductDetail(ctx context.Context, id int64, now time.Time) (*ProductDetail, error)
	CreateProductAggregate(ctx context.Context, p *Product, rows []*PersistVariant) (*Product, error)
	UpdateProductAggregate(ctx context.Context, p *Product, rows []*PersistVariant) error

	// Variants
	GetVariantByID(ctx context.Context, id int64) (*Variant, error)
	ListAdminVariants(ctx context.Context, productID int64, now time.Time) ([]*AdminVariant, error)
	TransitionSellState(ctx context.Context, id int64, from, to SellState) error

	// Promotions
	GetPromotionByID(ctx context.Context, id int64) (*Promotion, error)
	GetPromotionsByProduct(ctx context.Context, productID int64) (map[int64]*Promotion, error)
	UpdatePromotion(ctx context.Context, p *Promotion) error
}

type Repository struct {
	db     *pgxpool.Pool
	minter *SKUMinter
}

func NewRepository(db *pgxpool.Pool, minter *SKUMinter) Store {
	return &Repository{db: db, minter: minter}
}

func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ------------------------------------
// Reference data
// ------------------------------------

func (r *Repository) ListBrands(ctx context.Context, limit, offset int) ([]*Brand, int, error) {
	query := `
		SELECT id, name, logo_url, created_at, updated_at, COUNT(*) OVER() AS total
		FROM brands
		ORDER BY name
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []*Brand
	var total int
	for rows.Next() {
		b := &Brand{}
		if err := rows.Scan(&b.ID, &b.Name, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, total, rows.Err()
}

func (r *Repository) ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error) {
	query := `
		SELECT id, name, parent_id, created_at, updated_at, COUNT(*) OVER() AS total
		FROM categories
		ORDER BY name
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	var total int
	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *Repository) GetBrandByID(ctx context.Context, id int64) (*Brand, error) {
	query := `SELECT id, name, logo_url, created_at, updated_at FROM brands WHERE id = $1;`
	b := &Brand{}
	if err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return b, nil
}

func (r *Repository) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	query := `SELECT id, name, parent_id, created_at, updated_at FROM categories WHERE id = $1;`
	c := &Category{}
	if err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ------------------------------------
// Products
// ------------------------------------

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	query := `
		SELECT id, name, description, ingredient, instruction, image_url,
		       category_id, brand_id, created_at, updated_at
		FROM products
		WHERE id = $1;
	`
	p := &Product{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Ingredient, &p.Instruction,
		&p.ImageURL, &p.CategoryID, &p.BrandID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) GetProductDetail(ctx context.Context, id int64, now time.Time) (*ProductDetail, error) {
	p, err := r.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{Product: p}
	if detail.Brand, err = r.GetBrandByID(ctx, p.BrandID); err != nil && !errors.Is(err, ErrBrandNotFound) {
		return nil, err
	}
	if detail.Category, err = r.GetCategoryByID(ctx, p.CategoryID); err != nil && !errors.Is(err, ErrCategoryNotFound) {
		return nil, err
	}
	if detail.Variants, err = r.ListAdminVariants(ctx, id, now); err != nil {
		return nil, err
	}
	return detail, nil
}

// CreateProductAggregate writes the product, every variant with its attribute
// choices, and any pending promotions in a single transaction. Submission is
// all-or-nothing from the client's point of view; this is the server half of
// that contract.
func (r *Repository) CreateProductAggregate(ctx context.Context, p *Product, rows []*PersistVariant) (*Product, error) {
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		insertProduct := `
			INSERT INTO products (name, description, ingredient, instruction, image_url, category_id, brand_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at;
		`
		if err := tx.QueryRow(ctx, insertProduct,
			p.Name, p.Description, p.Ingredient, p.Instruction, p.ImageURL, p.CategoryID, p.BrandID,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		for _, row := range rows {
			if err := r.insertVariant(ctx, tx, p.ID, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProductAggregate rewrites the whole aggregate: the product row, every
// submitted variant (insert for rows without id, update otherwise), and drops
// persisted variants the operator removed from the form.
func (r *Repository) UpdateProductAggregate(ctx context.Context, p *Product, rows []*PersistVariant) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		updateProduct := `
			UPDATE products
			SET name = $2, description = $3, ingredient = $4, instruction = $5,
			    image_url = $6, category_id = $7, brand_id = $8, updated_at = NOW()
			WHERE id = $1;
		`
		tag, err := tx.Exec(ctx, updateProduct,
			p.ID, p.Name, p.Description, p.Ingredient, p.Instruction, p.ImageURL, p.CategoryID, p.BrandID)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrProductNotFound
		}

		keep := make([]int64, 0, len(rows))
		for _, row := range rows {
			if row.ID == 0 {
				if err := r.insertVariant(ctx, tx, p.ID, row); err != nil {
					return err
				}
				continue
			}
			keep = append(keep, row.ID)
			if err := r.updateVariant(ctx, tx, p.ID, row); err != nil {
				return err
			}
		}

		// Rows the operator removed from the form disappear with the save.
		deleteGone := `
			DELETE FROM variants
			WHERE product_id = $1 AND NOT (id = ANY($2));
		`
		if _, err := tx.Exec(ctx, deleteGone, p.ID, keep); err != nil {
			return fmt.Errorf("delete removed variants: %w", err)
		}
		return nil
	})
}

func (r *Repository) insertVariant(ctx context.Context, tx pgx.Tx, productID int64, row *PersistVariant) error {
	insert := `
		INSERT INTO variants (product_id, sku, price, stock, image_url, gallery_urls, sell_state)
		VALUES ($1, '', $2, $3, $4, $5, $6)
		RETURNING id;
	`
	if err := tx.QueryRow(ctx, insert,
		productID, row.Price, row.Stock, row.ImageURL, row.GalleryURLs, Selling,
	).Scan(&row.ID); err != nil {
		return fmt.Errorf("insert variant: %w", err)
	}

	sku, err := r.minter.SKU(row.ID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE variants SET sku = $2 WHERE id = $1;`, row.ID, sku); err != nil {
		return fmt.Errorf("set sku: %w", err)
	}

	if err := replaceVariantAttributes(ctx, tx, row); err != nil {
		return err
	}
	return upsertPromotion(ctx, tx, row)
}

func (r *Repository) updateVariant(ctx context.Context, tx pgx.Tx, productID int64, row *PersistVariant) error {
	update := `
		UPDATE variants
		SET price = $3, stock = $4, image_url = $5, gallery_urls = $6, updated_at = NOW()
		WHERE id = $1 AND product_id = $2;
	`
	tag, err := tx.Exec(ctx, update, row.ID, productID, row.Price, row.Stock, row.ImageURL, row.GalleryURLs)
	if err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVariantNotFound
	}

	if err := replaceVariantAttributes(ctx, tx, row); err != nil {
		return err
	}
	return upsertPromotion(ctx, tx, row)
}

func replaceVariantAttributes(ctx context.Context, tx pgx.Tx, row *PersistVariant) error {
	if _, err := tx.Exec(ctx, `DELETE FROM variant_attribute_values WHERE variant_id = $1;`, row.ID); err != nil {
		return fmt.Errorf("clear variant attributes: %w", err)
	}
	insert := `
		INSERT INTO variant_attribute_values (variant_id, attribute_id, value_id, position)
		VALUES ($1, $2, $3, $4);
	`
	for pos, slot := range row.Slots {
		if _, err := tx.Exec(ctx, insert, row.ID, slot.AttributeID, slot.ValueID, pos); err != nil {
			return fmt.Errorf("insert variant attribute: %w", err)
		}
	}
	return nil
}

// upsertPromotion writes the variant's submitted discount, or, when the form
// carries none, drops a promotion that has not started yet. Promotions whose
// window has opened are never touched here; they outlive form edits.
func upsertPromotion(ctx context.Context, tx pgx.Tx, row *PersistVariant) error {
	if row.Promotion == nil {
		deletePending := `
			DELETE FROM promotions
			WHERE variant_id = $1 AND start_at > NOW();
		`
		if _, err := tx.Exec(ctx, deletePending, row.ID); err != nil {
			return fmt.Errorf("delete pending promotion: %w", err)
		}
		return nil
	}
	upsert := `
		INSERT INTO promotions (variant_id, start_at, end_at, percent, price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (variant_id) DO UPDATE
		SET start_at = EXCLUDED.start_at, end_at = EXCLUDED.end_at,
		    percent = EXCLUDED.percent, price = EXCLUDED.price, updated_at = NOW();
	`
	d := row.Promotion
	if _, err := tx.Exec(ctx, upsert, row.ID, d.StartAt, d.EndAt, d.Percent, d.Price); err != nil {
		return fmt.Errorf("upsert promotion: %w", err)
	}
	return nil
}

// ------------------------------------
// Variants
// ------------------------------------

func (r *Repository) GetVariantByID(ctx context.Context, id int64) (*Variant, error) {
	query := `
		SELECT id, product_id, sku, price, stock, image_url, gallery_urls, sell_state, created_at, updated_at
		FROM variants
		WHERE id = $1;
	`
	v := &Variant{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.Stock, &v.ImageURL, &v.GalleryURLs,
		&v.SellState, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return v, nil
}

func (r *Repository) ListAdminVariants(ctx context.Context, productID int64, now time.Time) ([]*AdminVariant, error) {
	query := `
		SELECT id, product_id, sku, price, stock, image_url, gallery_urls, sell_state, created_at, updated_at
		FROM variants
		WHERE product_id = $1
		ORDER BY id;
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	variants := []*AdminVariant{}
	byID := make(map[int64]*AdminVariant)
	for rows.Next() {
		v := &AdminVariant{}
		if err := rows.Scan(
			&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.Stock, &v.ImageURL, &v.GalleryURLs,
			&v.SellState, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
		byID[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return variants, nil
	}

	attrQuery := `
		SELECT vav.variant_id, vav.attribute_id, a.name, vav.value_id, av.name, vav.position
		FROM variant_attribute_values vav
		JOIN attributes a ON a.id = vav.attribute_id
		JOIN attribute_values av ON av.id = vav.value_id
		WHERE vav.variant_id IN (SELECT id FROM variants WHERE product_id = $1)
		ORDER BY vav.variant_id, vav.position;
	`
	arows, err := r.db.Query(ctx, attrQuery, productID)
	if err != nil {
		return nil, fmt.Errorf("list variant attributes: %w", err)
	}
	defer arows.Close()

	for arows.Next() {
		var variantID int64
		var va VariantAttribute
		if err := arows.Scan(&variantID, &va.AttributeID, &va.AttributeName, &va.ValueID, &va.ValueName, &va.Position); err != nil {
			return nil, fmt.Errorf("scan variant attribute: %w", err)
		}
		if v, ok := byID[variantID]; ok {
			v.Attributes = append(v.Attributes, va)
		}
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}

	promos, err := r.GetPromotionsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	for id, promo := range promos {
		if v, ok := byID[id]; ok {
			v.Promotion = &PromotionView{Promotion: *promo, State: promo.StateAt(now)}
		}
	}
	return variants, nil
}

// TransitionSellState moves a variant between sell states; the WHERE guard on
// the current state makes the transition check race-free.
func (r *Repository) TransitionSellState(ctx context.Context, id int64, from, to SellState) error {
	if !from.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE variants SET sell_state = $3, updated_at = NOW() WHERE id = $1 AND sell_state = $2;`,
		id, from, to)
	if err != nil {
		return fmt.Errorf("transition sell state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// ------------------------------------
// Promotions
// ------------------------------------

func (r *Repository) GetPromotionByID(ctx context.Context, id int64) (*Promotion, error) {
	query := `
		SELECT id, variant_id, start_at, end_at, percent, price, created_at, updated_at
		FROM promotions
		WHERE id = $1;
	`
	p := &Promotion{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.VariantID, &p.StartAt, &p.EndAt, &p.Percent, &p.Price, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	return p, nil
}

// GetPromotionsByProduct returns every promotion attached to the product's
// variants, keyed by variant id.
func (r *Repository) GetPromotionsByProduct(ctx context.Context, productID int64) (map[int64]*Promotion, error) {
	query := `
		SELECT p.id, p.variant_id, p.start_at, p.end_at, p.percent, p.price, p.created_at, p.updated_at
		FROM promotions p
		JOIN variants v ON v.id = p.variant_id
		WHERE v.product_id = $1;
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*Promotion)
	for rows.Next() {
		p := &Promotion{}
		if err := rows.Scan(&p.ID, &p.VariantID, &p.StartAt, &p.EndAt, &p.Percent, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		out[p.VariantID] = p
	}
	return out, rows.Err()
}

func (r *Repository) UpdatePromotion(ctx context.Context, p *Promotion) error {
	update := `
		UPDATE promotions
		SET start_at = $2, end_at = $3, percent = $4, price = $5, updated_at = NOW()
		WHERE id = $1;
	`
	tag, err := r.db.Exec(ctx, update, p.ID, p.StartAt, p.EndAt, p.Percent, p.Price)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPromotionNotFound
	}
	return nil
}
