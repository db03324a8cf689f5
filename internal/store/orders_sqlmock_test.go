package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() CreateOrderRequest {
	return CreateOrderRequest{
		UserID:   "64b7f0c2a1b2c3d4e5f60718",
		Shipping: models.ShippingSnapshot{Name: "Ada", City: "Portland"},
		Items: []LineItem{
			{ProductID: 1, ProductName: "Espresso", UnitPrice: decimal.RequireFromString("3.50"), Quantity: 2},
			{ProductID: 2, ProductName: "Latte", UnitPrice: decimal.RequireFromString("4.25"), Quantity: 1},
		},
	}
}

func TestCreateOrderRollsBackWhenItemInsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version"}).
			AddRow(int64(10), now, now, 1))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(100), now))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnError(&pq.Error{Code: "23514", Message: "check violation"})
	mock.ExpectRollback()

	order, err := NewOrders(db).CreateOrder(context.Background(), sampleRequest())
	assert.Nil(t, order)

	var pErr *database.PersistenceError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, "create order", pErr.Op)
	assert.False(t, pErr.Retryable())
	assert.NoError(t, mock.ExpectationsWereMet(), "no commit may happen after a failed item insert")
}

func TestCreateOrderRollsBackWhenHeaderInsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = NewOrders(db).CreateOrder(context.Background(), sampleRequest())

	var pErr *database.PersistenceError
	assert.True(t, errors.As(err, &pErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderCommitsHeaderAndItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), models.OrderStatusPending, decimal.RequireFromString("11.25"),
			"Ada", "", "", "", "Portland", "", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version"}).
			AddRow(int64(10), now, now, 1))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(100), now))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(101), now))
	mock.ExpectCommit()

	order, err := NewOrders(db).CreateOrder(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(10), order.ID)
	assert.Regexp(t, `^ORD-[0-9A-F]{12}$`, order.OrderNumber)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("11.25")))
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].LineTotal.Equal(decimal.RequireFromString("7.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRejectsBadInputWithoutTouchingTheDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orders := NewOrders(db)
	ctx := context.Background()

	_, err = orders.CreateOrder(ctx, CreateOrderRequest{UserID: "u"})
	assert.ErrorIs(t, err, database.ErrEmptyOrder)

	req := sampleRequest()
	req.Items[1].Quantity = 0
	_, err = orders.CreateOrder(ctx, req)
	assert.ErrorIs(t, err, database.ErrInvalidLineItem)

	req = sampleRequest()
	req.Items[0].UnitPrice = decimal.NewFromInt(-1)
	_, err = orders.CreateOrder(ctx, req)
	assert.ErrorIs(t, err, database.ErrInvalidLineItem)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderTotal(t *testing.T) {
	assert.True(t, OrderTotal(nil).IsZero())
	assert.True(t, OrderTotal(sampleRequest().Items).Equal(decimal.RequireFromString("11.25")))
}
