package order

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertOrderQuery = `
		INSERT INTO orders ("userId", status, "paymentRef", currency, "fullName", email, address, city, phone, "createdAt", "updatedAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING "orderId"
	`
	insertItemQuery = `
		INSERT INTO order_items ("orderId", "productId", "productName", "unitPrice", quantity)
		VALUES ($1, $2, $3, $4, $5)
	`
	orderColumns = `"orderId", COALESCE("userId", 0), status, COALESCE("paymentRef", ''), currency, "fullName", email, address, city, phone, "createdAt", "updatedAt"`

	getOrderQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE "orderId" = $1`
	listByUserQuery = `SELECT ` + orderColumns + ` FROM orders WHERE "userId" = $1 ORDER BY "orderId" DESC`
	getItemsQuery   = `
		SELECT "productId", "productName", "unitPrice", quantity
		FROM order_items
		WHERE "orderId" = $1
		ORDER BY "productId"
	`
	markPaidQuery = `
		UPDATE orders
		SET status = 'paid', "paymentRef" = $2, "updatedAt" = NOW()
		WHERE "orderId" = $1 AND status = 'pending'
	`
	getStatusQuery    = `SELECT status FROM orders WHERE "orderId" = $1`
	updateStatusQuery = `
		UPDATE orders
		SET status = $3, "updatedAt" = NOW()
		WHERE "orderId" = $1 AND status = $2
	`
	attachRefQuery = `UPDATE orders SET "paymentRef" = $2, "updatedAt" = NOW() WHERE "orderId" = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(o Order) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	created, err := InsertTx(tx, o)
	if err != nil {
		return Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return created, nil
}

// InsertTx writes an order and its items on an existing transaction. The
// checkout store uses it so order creation commits or rolls back together
// with the stock reservation.
func InsertTx(tx *sql.Tx, o Order) (Order, error) {
	err := tx.QueryRow(insertOrderQuery,
		nullableUserID(o.UserID), o.Status, o.PaymentRef, o.Currency,
		o.FullName, o.Email, o.Address, o.City, o.Phone, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return Order{}, err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(insertItemQuery, o.ID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity); err != nil {
			return Order{}, err
		}
	}
	return o, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	o, err := scanOrder(r.db.QueryRow(getOrderQuery, id))
	if err != nil {
		return Order{}, err
	}

	items, err := r.itemsFor(id)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	rows, err := r.db.Query(listByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.itemsFor(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *PostgresRepository) itemsFor(orderID int) ([]Item, error) {
	rows, err := r.db.Query(getItemsQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkPaid races against concurrent webhook deliveries, so the transition is
// a single conditional UPDATE; losers of the race fall through to a status
// read that classifies the outcome.
func (r *PostgresRepository) MarkPaid(id int, paymentRef string) (bool, error) {
	res, err := r.db.Exec(markPaidQuery, id, paymentRef)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return true, nil
	}

	var status Status
	if err := r.db.QueryRow(getStatusQuery, id).Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return false, ErrNotFound
		}
		return false, err
	}
	switch status {
	case StatusPaid, StatusShipped:
		return false, nil
	default:
		return false, ErrInvalidTransition
	}
}

func (r *PostgresRepository) UpdateStatus(id int, from, to Status) error {
	res, err := r.db.Exec(updateStatusQuery, id, from, to)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return nil
	}

	var status Status
	if err := r.db.QueryRow(getStatusQuery, id).Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return ErrInvalidTransition
}

func (r *PostgresRepository) AttachPaymentRef(id int, ref string) error {
	res, err := r.db.Exec(attachRefQuery, id, ref)
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

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentRef, &o.Currency,
		&o.FullName, &o.Email, &o.Address, &o.City, &o.Phone, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func nullableUserID(id int) any {
	if id == 0 {
		return nil
	}
	return id
}
