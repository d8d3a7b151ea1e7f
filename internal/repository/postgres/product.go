package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, owner_id, title, slug, description, category, price_cents, rental_price_cents,
	product_type, status, is_available, quantity, created_on, updated_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	err := s.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Slug, &p.Description, &p.Category, &p.PriceCents, &p.RentalPriceCents,
		&p.ProductType, &p.Status, &p.IsAvailable, &p.Quantity, &p.CreatedOn, &p.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (owner_id, title, slug, description, category, price_cents, rental_price_cents,
	          product_type, status, is_available, quantity, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now().UTC()
	p.CreatedOn = now
	p.UpdatedOn = now
	logger.DatabaseCall("INSERT", "products", "ownerID", p.OwnerID)
	err := r.db.QueryRowContext(ctx, query, p.OwnerID, p.Title, p.Slug, p.Description, p.Category, p.PriceCents, p.RentalPriceCents,
		p.ProductType, p.Status, p.IsAvailable, p.Quantity, p.CreatedOn, p.UpdatedOn).Scan(&p.ID)
	logger.DatabaseResult("INSERT", 1, err, "productID", p.ID)
	return mapError(err)
}

func (r *productRepository) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET title=$1, slug=$2, description=$3, category=$4, price_cents=$5, rental_price_cents=$6,
	          product_type=$7, status=$8, is_available=$9, quantity=$10, updated_on=$11 WHERE id=$12`
	p.UpdatedOn = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, p.Title, p.Slug, p.Description, p.Category, p.PriceCents, p.RentalPriceCents,
		p.ProductType, p.Status, p.IsAvailable, p.Quantity, p.UpdatedOn, p.ID)
	if err != nil {
		return mapError(err)
	}
	return requireOne(res)
}

func (r *productRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE owner_id = $1 ORDER BY created_on DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// requireOne turns a zero-row update into domain.ErrNotFound.
func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
