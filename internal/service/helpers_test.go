package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	pkgdb "github.com/Skotchmaster/ecommerce_api/pkg/db"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func seedProducts(t *testing.T, r *repo.GormRepo) (models.Category, []models.Product) {
	t.Helper()
	ctx := context.Background()
	cat := models.Category{Name: "Tools"}
	require.NoError(t, r.CreateCategory(ctx, &cat))

	products := []models.Product{
		{Name: "Hammer", Price: models.MustMoney("4.00"), CategoryID: cat.ID},
		{Name: "Saw", Price: models.MustMoney("12.50"), CategoryID: cat.ID},
	}
	for i := range products {
		require.NoError(t, r.CreateProduct(ctx, &products[i]))
	}
	return cat, products
}

func seedUser(t *testing.T, r *repo.GormRepo, email, role string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x", Role: role, Confirmed: true}
	require.NoError(t, r.CreateUser(context.Background(), &u))
	return u
}

type published struct {
	Topic string
	Key   string
	Event any
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) last() published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type counter struct{ n int }

func (c *counter) OrderCreated() { c.n++ }
