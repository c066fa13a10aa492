package product

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `"productId", "sellerId", "categoryId", "productName", slug, description, price, stock, available, "createdAt", "updatedAt"`

	listAvailableQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE available = TRUE AND ($1 = 0 OR "categoryId" = $1)
		ORDER BY "productId"
	`
	listBySellerQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE "sellerId" = $1
		ORDER BY "productId"
	`
	getProductQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE "productId" = $1
	`
	insertProductQuery = `
		INSERT INTO products ("sellerId", "categoryId", "productName", slug, description, price, stock, available, "createdAt", "updatedAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING "productId"
	`
	updateProductQuery = `
		UPDATE products
		SET "categoryId" = $1,
			"productName" = $2,
			slug = $3,
			description = $4,
			price = $5,
			stock = $6,
			available = $7,
			"updatedAt" = $8
		WHERE "productId" = $9
	`
	productInUseQuery  = `SELECT EXISTS(SELECT 1 FROM order_items WHERE "productId" = $1)`
	deleteProductQuery = `DELETE FROM products WHERE "productId" = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListAvailable(categoryID int) []Product {
	return r.queryProducts(listAvailableQuery, categoryID)
}

func (r *PostgresRepository) ListBySeller(sellerID int) []Product {
	return r.queryProducts(listBySellerQuery, sellerID)
}

func (r *PostgresRepository) queryProducts(query string, arg any) []Product {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return []Product{}
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	return scanProduct(r.db.QueryRow(getProductQuery, id))
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	err := r.db.QueryRow(insertProductQuery,
		p.SellerID, nullableID(p.CategoryID), p.Name, p.Slug, p.Description, p.Price, p.Stock, p.Available, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	res, err := r.db.Exec(updateProductQuery,
		nullableID(p.CategoryID), p.Name, p.Slug, p.Description, p.Price, p.Stock, p.Available, p.UpdatedAt, id)
	if err != nil {
		return Product{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Product{}, ErrNotFound
	}
	p.ID = id
	return p, nil
}

// Delete rejects products with order history: order items are financial
// records and keep a protected reference to the product row.
func (r *PostgresRepository) Delete(id int) error {
	var inUse bool
	if err := r.db.QueryRow(productInUseQuery, id).Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return ErrProductInUse
	}

	res, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var categoryID sql.NullInt64
	var description sql.NullString
	err := row.Scan(&p.ID, &p.SellerID, &categoryID, &p.Name, &p.Slug, &description, &p.Price, &p.Stock, &p.Available, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	p.CategoryID = int(categoryID.Int64)
	p.Description = description.String
	return p, nil
}

func nullableID(id int) any {
	if id == 0 {
		return nil
	}
	return id
}
