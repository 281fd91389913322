package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecostore/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genProductFields() gopter.Gen {
	return gopter.CombineGens(
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`),
		gen.RegexMatch(`[A-Za-z0-9 .,!?]{10,200}`),
		gen.IntRange(1, 999999),
		gen.RegexMatch(`https?://[a-z0-9.-]+/[a-z0-9/._-]{1,50}`),
		gen.IntRange(0, 1000),
	).Map(func(values []interface{}) domain.ProductFields {
		return domain.ProductFields{
			Name:        values[0].(string),
			Description: values[1].(string),
			Price:       float64(values[2].(int)) / 100,
			Image:       values[3].(string),
			Category:    "Test " + uuid.NewString(),
			Stock:       values[4].(int),
		}
	})
}

// Feature: product-catalog, Property 1: Product creation preserves attributes
func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	requireDB(t)
	repo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(fields domain.ProductFields) bool {
			ctx := context.Background()

			created, err := repo.Create(ctx, fields)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}
			defer func() { _ = repo.Delete(ctx, created.ID) }()

			if created.ID <= 0 {
				t.Logf("FAIL: store did not assign an id")
				return false
			}

			retrieved, err := repo.FindByID(ctx, created.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Fields() != fields {
				t.Logf("FAIL: fields mismatch. Expected %+v, got %+v", fields, retrieved.Fields())
				return false
			}

			if retrieved.CreatedAt.IsZero() || retrieved.UpdatedAt.IsZero() {
				t.Logf("FAIL: timestamps not set")
				return false
			}

			return true
		},
		genProductFields(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: product-catalog, Property 2: Product updates are reflected
func TestProperty_ProductUpdatesAreReflected(t *testing.T) {
	requireDB(t)
	repo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("updating a product overwrites every field and keeps created_at", prop.ForAll(
		func(original, changed domain.ProductFields) bool {
			ctx := context.Background()

			created, err := repo.Create(ctx, original)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}
			defer func() { _ = repo.Delete(ctx, created.ID) }()

			updated, err := repo.Update(ctx, created.ID, changed)
			if err != nil {
				t.Logf("FAIL: Failed to update product: %v", err)
				return false
			}

			if updated.ID != created.ID || updated.Fields() != changed {
				t.Logf("FAIL: update not reflected: %+v", updated)
				return false
			}

			if !updated.CreatedAt.Equal(created.CreatedAt) {
				t.Logf("FAIL: created_at changed")
				return false
			}

			if updated.UpdatedAt.Before(created.UpdatedAt) {
				t.Logf("FAIL: updated_at went backwards")
				return false
			}

			retrieved, err := repo.FindByID(ctx, created.ID)
			return err == nil && retrieved.Fields() == changed
		},
		genProductFields(),
		genProductFields(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: product-catalog, Property 3: Product deletion removes from catalog
func TestProperty_ProductDeletionRemovesFromCatalog(t *testing.T) {
	requireDB(t)
	repo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("a deleted product cannot be found or deleted again", prop.ForAll(
		func(fields domain.ProductFields) bool {
			ctx := context.Background()

			created, err := repo.Create(ctx, fields)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			if err := repo.Delete(ctx, created.ID); err != nil {
				t.Logf("FAIL: Failed to delete product: %v", err)
				return false
			}

			if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, ErrProductNotFound) {
				t.Logf("FAIL: expected not found after delete, got %v", err)
				return false
			}

			return errors.Is(repo.Delete(ctx, created.ID), ErrProductNotFound)
		},
		genProductFields(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestUpdate_NonexistentProduct(t *testing.T) {
	requireDB(t)
	repo := NewProductRepository(testDB)

	_, err := repo.Update(context.Background(), 987654321, domain.ProductFields{
		Name: "Ghost", Description: "Nothing here", Price: 1, Image: "http://x/y.png", Category: "None", Stock: 0,
	})

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_RefreshesUpdatedAt(t *testing.T) {
	requireDB(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	fields := domain.ProductFields{Name: "Mug", Description: "Ceramic mug", Price: 9.99, Image: "http://x/y.png", Category: "Test " + uuid.NewString(), Stock: 5}
	created, err := repo.Create(ctx, fields)
	require.NoError(t, err)
	defer func() { _ = repo.Delete(ctx, created.ID) }()

	// NOW() is the transaction start time; separate statements need distinct clocks.
	time.Sleep(10 * time.Millisecond)

	fields.Stock = 6
	updated, err := repo.Update(ctx, created.ID, fields)
	require.NoError(t, err)

	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, 6, updated.Stock)
}

func TestCreate_CheckConstraintRejectsZeroPrice(t *testing.T) {
	requireDB(t)
	repo := NewProductRepository(testDB)

	_, err := repo.Create(context.Background(), domain.ProductFields{
		Name: "Free", Description: "Costs nothing", Price: 0, Image: "http://x/y.png", Category: "None", Stock: 1,
	})

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23514", pgErr.Code)
}

func TestList_SeededProductsNewestFirst(t *testing.T) {
	requireDB(t)
	repo := NewProductRepository(testDB)

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(products), 10)

	for i := 1; i < len(products); i++ {
		prev, cur := products[i-1], products[i]
		if prev.CreatedAt.Equal(cur.CreatedAt) {
			assert.Greater(t, prev.ID, cur.ID)
		} else {
			assert.True(t, prev.CreatedAt.After(cur.CreatedAt))
		}
	}
}

func productNames(products []*domain.Product) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}

func TestSearch_SeededCatalog(t *testing.T) {
	requireDB(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	byName, err := repo.Search(ctx, "head", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Wireless Headphones"}, productNames(byName))

	byCategory, err := repo.Search(ctx, "", "Sports")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Yoga Mat", "Water Bottle"}, productNames(byCategory))

	both, err := repo.Search(ctx, "MAT", "Sports")
	require.NoError(t, err)
	assert.Equal(t, []string{"Yoga Mat"}, productNames(both))

	none, err := repo.Search(ctx, "head", "Sports")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, err := repo.Search(ctx, "", "")
	require.NoError(t, err)
	listed, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, productNames(listed), productNames(all))
}

func TestSearch_WildcardsMatchLiterally(t *testing.T) {
	requireDB(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	category := "Test " + uuid.NewString()

	percent, err := repo.Create(ctx, domain.ProductFields{Name: "100% Cotton Tee", Description: "Soft shirt", Price: 15, Image: "http://x/t.png", Category: category, Stock: 3})
	require.NoError(t, err)
	defer func() { _ = repo.Delete(ctx, percent.ID) }()

	plain, err := repo.Create(ctx, domain.ProductFields{Name: "Cotton Socks", Description: "Warm socks", Price: 5, Image: "http://x/s.png", Category: category, Stock: 3})
	require.NoError(t, err)
	defer func() { _ = repo.Delete(ctx, plain.ID) }()

	found, err := repo.Search(ctx, "%", category)
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Cotton Tee"}, productNames(found))

	found, err = repo.Search(ctx, "_", category)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCategoryList_CountsProducts(t *testing.T) {
	requireDB(t)
	categories, err := NewCategoryRepository(testDB).List(context.Background())
	require.NoError(t, err)

	counts := map[string]int{}
	for i, c := range categories {
		counts[c.Name] = c.ProductCount
		if i > 0 {
			assert.Less(t, categories[i-1].Name, c.Name)
		}
	}

	assert.Equal(t, 3, counts["Electronics"])
	assert.Equal(t, 2, counts["Sports"])
	assert.Equal(t, 1, counts["Clothing"])
}
