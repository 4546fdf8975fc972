package store

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"icommerce/internal/domain/catalog"
	"icommerce/internal/domain/products"
	"icommerce/internal/domain/users"
)

// Storage aggregates the per-domain stores behind one handle on the
// application struct.
type Storage struct {
	Products products.Store
	Catalog  catalog.Store
	Users    users.Store
}

func NewStorage(db *pgxpool.Pool, minter *products.SKUMinter) Storage {
	return Storage{
		Products: products.NewRepository(db, minter),
		Catalog:  catalog.NewRepository(db),
		Users:    users.NewRepository(db),
	}
}
