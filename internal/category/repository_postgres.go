package category

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() []Category {
	rows, err := r.db.Query(`SELECT "categoryId", "categoryName", slug FROM categories ORDER BY "categoryName"`)
	if err != nil {
		return []Category{}
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *PostgresRepository) GetByID(id int) (Category, error) {
	var c Category
	err := r.db.QueryRow(`SELECT "categoryId", "categoryName", slug FROM categories WHERE "categoryId" = $1`, id).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}
