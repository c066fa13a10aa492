package cart

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	cartByUserQuery = `
		INSERT INTO carts ("userId") VALUES ($1)
		ON CONFLICT ("userId") DO UPDATE SET "userId" = EXCLUDED."userId"
		RETURNING "cartId"
	`
	cartBySessionQuery = `
		INSERT INTO carts ("sessionToken") VALUES ($1)
		ON CONFLICT ("sessionToken") DO UPDATE SET "sessionToken" = EXCLUDED."sessionToken"
		RETURNING "cartId"
	`
	upsertItemQuery = `
		INSERT INTO cart_items ("cartId", "productId", quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT ("cartId", "productId")
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`
	dropEmptyItemsQuery = `DELETE FROM cart_items WHERE "cartId" = $1 AND quantity <= 0`
	itemsQuery          = `
		SELECT ci."productId", p."productName", p.price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p."productId" = ci."productId"
		WHERE ci."cartId" = $1
		ORDER BY ci."productId"
	`
	clearQuery = `DELETE FROM cart_items WHERE "cartId" = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// cartID finds or creates the cart row for a key. The upsert keeps the
// get-or-create race-free under concurrent requests for the same key.
func (r *PostgresRepository) cartID(key Key) (int, error) {
	if !key.valid() {
		return 0, ErrInvalidKey
	}

	var id int
	var err error
	if key.UserID != 0 {
		err = r.db.QueryRow(cartByUserQuery, key.UserID).Scan(&id)
	} else {
		err = r.db.QueryRow(cartBySessionQuery, key.SessionToken).Scan(&id)
	}
	return id, err
}

func (r *PostgresRepository) AddItem(key Key, productID, qty int) ([]Item, error) {
	cartID, err := r.cartID(key)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.Exec(upsertItemQuery, cartID, productID, qty); err != nil {
		return nil, err
	}
	if _, err := r.db.Exec(dropEmptyItemsQuery, cartID); err != nil {
		return nil, err
	}

	return r.itemsByCartID(cartID)
}

func (r *PostgresRepository) Items(key Key) ([]Item, error) {
	cartID, err := r.cartID(key)
	if err != nil {
		return nil, err
	}
	return r.itemsByCartID(cartID)
}

func (r *PostgresRepository) itemsByCartID(cartID int) ([]Item, error) {
	rows, err := r.db.Query(itemsQuery, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		it.Subtotal = it.UnitPrice * int64(it.Quantity)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Clear(key Key) error {
	cartID, err := r.cartID(key)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(clearQuery, cartID)
	return err
}
