package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/pagination"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/events"
)

var orderNow = time.Date(2024, 2, 27, 9, 30, 0, 0, time.UTC)

func newOrderService(t *testing.T) (*OrderService, *repo.GormRepo, *recorder, *counter) {
	t.Helper()
	r := newTestRepo(t)
	rec := &recorder{}
	cnt := &counter{}
	return &OrderService{Repo: r, Events: rec, Metrics: cnt, Now: func() time.Time { return orderNow }}, r, rec, cnt
}

func countRows(t *testing.T, r *repo.GormRepo, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.DB.Model(model).Count(&n).Error)
	return n
}

func TestCreateOrder_PricesAndPersists(t *testing.T) {
	svc, r, rec, cnt := newOrderService(t)
	_, products := seedProducts(t, r)
	user := seedUser(t, r, "c@example.com", models.RoleClient)

	view, err := svc.CreateOrder(context.Background(), user.ID, transport.CreateOrderRequest{
		DeliveryAddress: "1 Main St",
		Products:        []transport.OrderProduct{{ProductID: products[0].ID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, "8.00", view.TotalPrice.String())
	assert.Equal(t, orderNow, view.OrderDate)
	assert.Equal(t, orderNow.AddDate(0, 0, 5), view.PaymentDueDate)
	assert.Equal(t, []models.ProductQuantity{{ProductID: products[0].ID, Quantity: 2}}, view.Products)

	var stored models.Order
	require.NoError(t, r.DB.First(&stored, view.ID).Error)
	assert.Equal(t, "8.00", stored.TotalPrice.String())
	assert.Equal(t, user.ID, stored.CustomerID)
	assert.EqualValues(t, 1, countRows(t, r, &models.OrderItem{}))

	assert.Equal(t, 1, cnt.n)
	last := rec.last()
	assert.Equal(t, events.TopicOrder, last.Topic)
	assert.Equal(t, "order_created", last.Event.(OrderCreatedEvent).Type)
	assert.Equal(t, "8.00", last.Event.(OrderCreatedEvent).TotalPrice)
}

func TestCreateOrder_SumsEveryLine(t *testing.T) {
	svc, r, _, _ := newOrderService(t)
	_, products := seedProducts(t, r)
	user := seedUser(t, r, "c@example.com", models.RoleClient)

	view, err := svc.CreateOrder(context.Background(), user.ID, transport.CreateOrderRequest{
		DeliveryAddress: "1 Main St",
		Products: []transport.OrderProduct{
			{ProductID: products[1].ID, Quantity: 3},
			{ProductID: products[0].ID, Quantity: 1},
			{ProductID: products[1].ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "54.00", view.TotalPrice.String())
	assert.Len(t, view.Products, 3)
	assert.EqualValues(t, 3, countRows(t, r, &models.OrderItem{}))
}

func TestCreateOrder_UnknownProductWritesNothing(t *testing.T) {
	svc, r, rec, cnt := newOrderService(t)
	_, products := seedProducts(t, r)
	user := seedUser(t, r, "c@example.com", models.RoleClient)

	_, err := svc.CreateOrder(context.Background(), user.ID, transport.CreateOrderRequest{
		DeliveryAddress: "1 Main St",
		Products: []transport.OrderProduct{
			{ProductID: products[0].ID, Quantity: 1},
			{ProductID: 70, Quantity: 1},
			{ProductID: 3, Quantity: 2},
		},
	})
	require.ErrorIs(t, err, ErrProductsNotFound)

	var nf *ProductsNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []uint{70, 3}, nf.IDs)
	assert.Equal(t, "products not found: 70, 3", err.Error())

	assert.Zero(t, countRows(t, r, &models.Order{}))
	assert.Zero(t, countRows(t, r, &models.OrderItem{}))
	assert.Zero(t, cnt.n)
	assert.Empty(t, rec.events)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, r, _, _ := newOrderService(t)
	_, products := seedProducts(t, r)

	cases := []transport.CreateOrderRequest{
		{DeliveryAddress: "x"},
		{DeliveryAddress: "x", Products: []transport.OrderProduct{{ProductID: products[0].ID, Quantity: 0}}},
		{DeliveryAddress: "x", Products: []transport.OrderProduct{{ProductID: 0, Quantity: 1}}},
	}
	for _, req := range cases {
		_, err := svc.CreateOrder(context.Background(), 1, req)
		require.ErrorIs(t, err, ErrValidation)
	}
	assert.Zero(t, countRows(t, r, &models.Order{}))
}

func TestCreateOrder_UnknownCustomerIsIntegrityError(t *testing.T) {
	svc, r, _, _ := newOrderService(t)
	_, products := seedProducts(t, r)

	_, err := svc.CreateOrder(context.Background(), 404, transport.CreateOrderRequest{
		DeliveryAddress: "x",
		Products:        []transport.OrderProduct{{ProductID: products[0].ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrDataIntegrity)
	assert.Zero(t, countRows(t, r, &models.Order{}))
}

func newMockService(t *testing.T) (*OrderService, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return &OrderService{Repo: &repo.GormRepo{DB: db}, Now: func() time.Time { return orderNow }}, mock
}

func TestCreateOrder_DatabaseFailureRollsBack(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, price FROM "products"`)).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := svc.CreateOrder(context.Background(), 1, transport.CreateOrderRequest{
		DeliveryAddress: "x",
		Products:        []transport.OrderProduct{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrDatabaseOperation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_ConstraintViolationRollsBack(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, price FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price"}).AddRow(1, "4.00"))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "insert or update violates foreign key constraint"})
	mock.ExpectRollback()

	_, err := svc.CreateOrder(context.Background(), 1, transport.CreateOrderRequest{
		DeliveryAddress: "x",
		Products:        []transport.OrderProduct{{ProductID: 1, Quantity: 2}},
	})
	require.ErrorIs(t, err, ErrDataIntegrity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "23505"}), ErrDataIntegrity)
	assert.ErrorIs(t, classify(gorm.ErrCheckConstraintViolated), ErrDataIntegrity)
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "40001"}), ErrDatabaseOperation)
	assert.ErrorIs(t, classify(errors.New("io")), ErrDatabaseOperation)

	nf := &ProductsNotFoundError{IDs: []uint{1}}
	assert.Same(t, nf, classify(nf))
}

func TestListOrders_Scoping(t *testing.T) {
	svc, r, _, _ := newOrderService(t)
	_, products := seedProducts(t, r)
	alice := seedUser(t, r, "alice@example.com", models.RoleClient)
	bob := seedUser(t, r, "bob@example.com", models.RoleClient)
	seller := seedUser(t, r, "shop@example.com", models.RoleSeller)

	ctx := context.Background()
	for _, u := range []models.User{alice, bob, bob} {
		_, err := svc.CreateOrder(ctx, u.ID, transport.CreateOrderRequest{
			DeliveryAddress: "x",
			Products:        []transport.OrderProduct{{ProductID: products[0].ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	p := pagination.Params{Page: 1, PerPage: 10, BaseURL: "http://testserver/", Path: "order/orders"}

	mine, err := svc.ListOrders(ctx, &bob, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.TotalItems)
	for _, o := range mine.Results {
		assert.Equal(t, bob.ID, o.CustomerID)
	}

	all, err := svc.ListOrders(ctx, &seller, p)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.TotalItems)
}
