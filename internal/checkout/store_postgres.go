package checkout

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/storefront-labs/storefront-backend/internal/cart"
	"github.com/storefront-labs/storefront-backend/internal/order"
	"github.com/storefront-labs/storefront-backend/internal/product"
)

// PostgresStore runs the cart-to-order conversion as one transaction with
// row locks on the products involved.
type PostgresStore struct {
	db *sql.DB
}

const (
	findCartByUserQuery    = `SELECT "cartId" FROM carts WHERE "userId" = $1`
	findCartBySessionQuery = `SELECT "cartId" FROM carts WHERE "sessionToken" = $1`

	// Lines come back in ascending product order so concurrent checkouts
	// acquire row locks in the same order and cannot deadlock.
	cartLinesQuery = `
		SELECT "productId", quantity
		FROM cart_items
		WHERE "cartId" = $1
		ORDER BY "productId"
	`
	lockProductQuery = `
		SELECT "productName", price, stock, available
		FROM products
		WHERE "productId" = $1
		FOR UPDATE
	`
	reserveStockQuery  = `UPDATE products SET stock = stock - $2, "updatedAt" = NOW() WHERE "productId" = $1`
	dropConvertedQuery = `DELETE FROM cart_items WHERE "cartId" = $1 AND "productId" = ANY($2::int[])`
)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateOrderFromCart(ctx context.Context, key cart.Key, o order.Order) (order.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, err
	}
	defer tx.Rollback()

	cartID, err := s.findCartID(ctx, tx, key)
	if err == sql.ErrNoRows {
		return order.Order{}, ErrEmptyCart
	}
	if err != nil {
		return order.Order{}, err
	}

	ids, quantities, err := cartLines(ctx, tx, cartID)
	if err != nil {
		return order.Order{}, err
	}
	if len(ids) == 0 {
		return order.Order{}, ErrEmptyCart
	}

	items := make([]order.Item, 0, len(ids))
	for _, pid := range ids {
		qty := quantities[pid]

		var name string
		var price int64
		var stock int
		var available bool
		err := tx.QueryRowContext(ctx, lockProductQuery, pid).Scan(&name, &price, &stock, &available)
		if err == sql.ErrNoRows {
			return order.Order{}, product.ErrNotFound
		}
		if err != nil {
			return order.Order{}, err
		}
		if !available {
			return order.Order{}, &InsufficientStockError{ProductID: pid, Requested: qty, Available: 0}
		}
		if stock < qty {
			return order.Order{}, &InsufficientStockError{ProductID: pid, Requested: qty, Available: stock}
		}

		items = append(items, order.Item{
			ProductID:   pid,
			ProductName: name,
			UnitPrice:   price,
			Quantity:    qty,
		})
	}

	o.Items = items
	o.Status = order.StatusPending
	now := time.Now().UTC().Format(time.RFC3339)
	if o.CreatedAt == "" {
		o.CreatedAt = now
	}
	if o.UpdatedAt == "" {
		o.UpdatedAt = o.CreatedAt
	}

	created, err := order.InsertTx(tx, o)
	if err != nil {
		return order.Order{}, err
	}

	for _, pid := range ids {
		if _, err := tx.ExecContext(ctx, reserveStockQuery, pid, quantities[pid]); err != nil {
			return order.Order{}, err
		}
	}
	if _, err := tx.ExecContext(ctx, dropConvertedQuery, cartID, pq.Array(ids)); err != nil {
		return order.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, err
	}
	return created, nil
}

func (s *PostgresStore) findCartID(ctx context.Context, tx *sql.Tx, key cart.Key) (int, error) {
	var id int
	var err error
	if key.UserID != 0 {
		err = tx.QueryRowContext(ctx, findCartByUserQuery, key.UserID).Scan(&id)
	} else {
		err = tx.QueryRowContext(ctx, findCartBySessionQuery, key.SessionToken).Scan(&id)
	}
	return id, err
}

func cartLines(ctx context.Context, tx *sql.Tx, cartID int) ([]int, map[int]int, error) {
	rows, err := tx.QueryContext(ctx, cartLinesQuery, cartID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	quantities := make(map[int]int)
	for rows.Next() {
		var pid, qty int
		if err := rows.Scan(&pid, &qty); err != nil {
			return nil, nil, err
		}
		ids = append(ids, pid)
		quantities[pid] = qty
	}
	return ids, quantities, rows.Err()
}
