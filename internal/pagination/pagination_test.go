package pagination

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/query"
	pkgdb "github.com/Skotchmaster/ecommerce_api/pkg/db"
)

const base = "http://testserver/"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedCategories(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&models.Category{Name: string(rune('a' + i))}).Error)
	}
}

func categoriesPage(t *testing.T, db *gorm.DB, page, perPage int) *Page[models.Category] {
	t.Helper()
	q, err := query.ApplySort(db.Model(&models.Category{}), query.CategorySorts, "")
	require.NoError(t, err)
	res, err := Paginate[models.Category](context.Background(), q, Params{
		Page: page, PerPage: perPage, Source: "categories", BaseURL: base, Path: "category/category",
	})
	require.NoError(t, err)
	return res
}

func TestPaginate_SixItemsTwoPerPage(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, 6)

	first := categoriesPage(t, db, 1, 2)
	assert.EqualValues(t, 6, first.TotalItems)
	assert.Len(t, first.Results, 2)
	require.NotNil(t, first.NextPageURL)
	assert.Equal(t, base+"category/category?page=2&per_page=2", *first.NextPageURL)
	assert.Nil(t, first.PrevPageURL)

	last := categoriesPage(t, db, 3, 2)
	assert.Len(t, last.Results, 2)
	assert.Nil(t, last.NextPageURL)
	require.NotNil(t, last.PrevPageURL)
	assert.Equal(t, base+"category/category?page=2&per_page=2", *last.PrevPageURL)
	assert.Equal(t, "e", last.Results[0].Name)
}

func TestPaginate_BeyondLastPage(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, 3)

	res := categoriesPage(t, db, 5, 2)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
	assert.Nil(t, res.NextPageURL)
	assert.NotNil(t, res.PrevPageURL)
	assert.EqualValues(t, 3, res.TotalItems)
}

func TestPaginate_ResultsNeverExceedPerPage(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, 7)

	for page := 1; page <= 4; page++ {
		res := categoriesPage(t, db, page, 3)
		assert.LessOrEqual(t, len(res.Results), 3)
	}
}

func TestPaginate_CountsFilteredRows(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, 4)

	q, filters, err := query.ApplyFilters(db.Model(&models.Category{}), query.CategoryFilters, query.Raw{"name": "B"})
	require.NoError(t, err)

	res, err := Paginate[models.Category](context.Background(), q, Params{
		Page: 1, PerPage: 10, BaseURL: base, Path: "category/category", Filters: filters,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.TotalItems)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "b", res.Results[0].Name)
}

func TestPaginate_PreLimitedJoin(t *testing.T) {
	db := newTestDB(t)
	cat := models.Category{Name: "Tools"}
	require.NoError(t, db.Create(&cat).Error)
	p1 := models.Product{Name: "Hammer", Price: models.MustMoney("4"), CategoryID: cat.ID}
	p2 := models.Product{Name: "Saw", Price: models.MustMoney("9"), CategoryID: cat.ID}
	require.NoError(t, db.Create(&p1).Error)
	require.NoError(t, db.Create(&p2).Error)
	user := models.User{Email: "c@example.com", Password: "x", Role: models.RoleClient}
	require.NoError(t, db.Create(&user).Error)

	for i := 0; i < 3; i++ {
		o := models.Order{DeliveryAddress: "addr", TotalPrice: models.MustMoney("13"), CustomerID: user.ID}
		require.NoError(t, db.Create(&o).Error)
		require.NoError(t, db.Create(&[]models.OrderItem{
			{OrderID: o.ID, ProductID: p1.ID, Quantity: 1},
			{OrderID: o.ID, ProductID: p2.ID, Quantity: 1},
		}).Error)
	}

	var total int64
	require.NoError(t, db.Model(&models.Order{}).Count(&total).Error)

	params := Params{Page: 1, PerPage: 2, Source: "orders", BaseURL: base, Path: "order/orders", Total: &total, PreLimited: true}
	limited := db.Model(&models.Order{}).Order("id").Limit(params.PerPage).Offset(params.Offset())
	joined := db.Table("(?) AS o", limited).
		Select("o.*, order_items.product_id, order_items.quantity").
		Joins("JOIN order_items ON order_items.order_id = o.id").
		Order("o.id, order_items.id")

	res, err := Paginate[models.OrderRow](context.Background(), joined, params)
	require.NoError(t, err)
	assert.Len(t, res.Results, 4)
	assert.EqualValues(t, 3, res.TotalItems)
	require.NotNil(t, res.NextPageURL)
	assert.Equal(t, base+"order/orders?page=2&per_page=2", *res.NextPageURL)
	assert.Len(t, models.GroupOrderRows(res.Results), 2)
}

func TestLinks_PreservesFiltersAndSort(t *testing.T) {
	p := Params{
		Page: 2, PerPage: 2, BaseURL: base, Path: "product/product",
		Filters: query.Filters{
			{Field: "name", Value: "power drill"},
			{Field: "price", Value: decimal.RequireFromString("4.00")},
		},
		Sort: "-price",
	}

	next, prev := Links(p, 10)
	require.NotNil(t, next)
	require.NotNil(t, prev)
	assert.Equal(t, base+"product/product?page=3&per_page=2&name=power+drill&price=4&sort=-price", *next)
	assert.Equal(t, base+"product/product?page=1&per_page=2&name=power+drill&price=4&sort=-price", *prev)
}

func TestLinks_Boundaries(t *testing.T) {
	next, prev := Links(Params{Page: 1, PerPage: 5}, 5)
	assert.Nil(t, next)
	assert.Nil(t, prev)

	next, _ = Links(Params{Page: 1, PerPage: 5}, 6)
	assert.NotNil(t, next)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "4", formatValue(4.0))
	assert.Equal(t, "4.5", formatValue(4.5))
	assert.Equal(t, "4.5", formatValue(decimal.RequireFromString("4.50")))
	assert.Equal(t, "x", formatValue("x"))
	assert.Equal(t, "7", formatValue(7))
}
