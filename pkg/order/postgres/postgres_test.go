package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/order"
	"storefront/pkg/product"
)

func TestCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	repo := New(db, order.DefaultCapacity)

	p := product.Product{ID: "p1", Name: "Pen", Price: product.TextPrice("1.50")}
	o := order.Order{ID: "o1", Products: []product.Product{p}}
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("LOCK TABLE orders IN SHARE ROW EXCLUSIVE MODE")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders (id, products) SELECT $1, $2::json")).
		WithArgs("o1", `[{"id":"p1","name":"Pen","price":"1.50"}]`, order.DefaultCapacity).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), o))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAtCapacity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := New(db, 1)

	mock.ExpectBegin()
	mock.ExpectExec("LOCK TABLE orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	assert.ErrorIs(t, repo.Create(context.Background(), order.New(nil)), order.ErrCapacity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := New(db, order.DefaultCapacity)

	rows := sqlmock.NewRows([]string{"id", "products"}).
		AddRow("o1", []byte(`[{"id":"p1","name":"Pen","price":2}]`)).
		AddRow("o2", []byte(`[]`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, products FROM orders ORDER BY seq")).WillReturnRows(rows)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "o1", list[0].ID)
	require.Len(t, list[0].Products, 1)
	assert.Equal(t, "Pen", list[0].Products[0].Name)
	assert.Equal(t, "2", list[0].Products[0].Price.JSON())
	assert.Empty(t, list[1].Products)
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS orders")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, New(db, 1).Migrate(context.Background()))
}
