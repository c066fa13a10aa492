package product

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"productId", "sellerId", "categoryId", "productName", "slug", "description", "price", "stock", "available", "createdAt", "updatedAt"}).
		AddRow(7, 1, 2, "Mug", "mug", "a mug", 1000, 5, true, "t", "u")
	mock.ExpectQuery("FROM products").WithArgs(7).WillReturnRows(rows)

	p, err := repo.GetByID(7)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if p.ID != 7 || p.Price != 1000 || p.Stock != 5 {
		t.Fatalf("unexpected product %+v", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDelete_RejectedWhenReferenced(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT EXISTS").WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := repo.Delete(7); err != ErrProductInUse {
		t.Fatalf("expected ErrProductInUse, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDelete_Unreferenced(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT EXISTS").WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("DELETE FROM products").WithArgs(8).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(8); err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
