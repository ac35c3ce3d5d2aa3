package services

import (
	"context"
	"fmt"
	"testing"

	"storefront-backend/cache"
	"storefront-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache records calls so cache behaviour can be asserted.
type memoryCache struct {
	values  map[string][]CategorySummary
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]CategorySummary{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dst interface{}) error {
	v, ok := m.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	*(dst.(*[]CategorySummary)) = v
	return nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	m.values[key] = value.([]CategorySummary)
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.deletes++
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}


func TestListCategories_CountsActiveProducts(t *testing.T) {
	db := freshDB(t)
	mode := seedCategory(t, db, "Mode")
	maison := seedCategory(t, db, "Maison")
	seedCategory(t, db, "Électronique")
	seedProduct(t, db, mode, "T-shirt", "24.99", 50)
	seedProduct(t, db, mode, "Sneakers", "79.99", 20)
	hidden := seedProduct(t, db, maison, "Lampe", "39.99", 12)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	svc := NewCatalogService(db, nil)

	all, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	counts := map[string]int64{}
	for _, c := range all {
		counts[c.Slug] = c.ProductCount
	}
	assert.Equal(t, int64(2), counts["mode"])
	assert.Equal(t, int64(0), counts["maison"])
	assert.Equal(t, int64(0), counts["electronique"])

	nonEmpty, err := svc.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, nonEmpty, 1)
	assert.Equal(t, "mode", nonEmpty[0].Slug)
}

func TestListCategories_ReadThroughAndInvalidation(t *testing.T) {
	db := freshDB(t)
	mode := seedCategory(t, db, "Mode")
	mc := newMemoryCache()
	svc := NewCatalogService(db, mc)

	first, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Contains(t, mc.values, categoriesAllKey)

	// Written behind the service's back: served stale from cache.
	seedCategory(t, db, "Maison")
	cached, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	_, err = svc.CreateProduct(ctx, ProductInput{Title: "T-shirt", Price: dec("24.99"), Stock: 5, CategoryID: mode.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, mc.deletes)

	fresh, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestGetCategory(t *testing.T) {
	db := freshDB(t)
	seedCategory(t, db, "Maison")
	svc := NewCatalogService(db, nil)

	c, err := svc.GetCategory(ctx, "maison")
	require.NoError(t, err)
	assert.Equal(t, "Maison", c.Name)

	_, err = svc.GetCategory(ctx, "nope")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestListProducts_Filters(t *testing.T) {
	db := freshDB(t)
	electro := seedCategory(t, db, "Électronique")
	maison := seedCategory(t, db, "Maison")
	seedProduct(t, db, electro, "Smartphone Huawei P40", "599.99", 15)
	seedProduct(t, db, electro, "Écouteurs Bluetooth Xiaomi", "89.99", 25)
	seedProduct(t, db, maison, "Cafetière programmable", "89.99", 7)
	seedProduct(t, db, maison, "Coussin décoratif", "19.99", 35)
	svc := NewCatalogService(db, nil)

	titles := func(f ProductFilter) []string {
		page, err := svc.ListProducts(ctx, f)
		require.NoError(t, err)
		out := []string{}
		for _, p := range page.Products {
			out = append(out, p.Title)
		}
		return out
	}

	assert.Len(t, titles(ProductFilter{}), 4)
	assert.ElementsMatch(t, []string{"Smartphone Huawei P40", "Écouteurs Bluetooth Xiaomi"}, titles(ProductFilter{CategorySlug: "electronique"}))
	assert.ElementsMatch(t, []string{"Écouteurs Bluetooth Xiaomi", "Cafetière programmable"}, titles(ProductFilter{MinPrice: "89.99", MaxPrice: "89.99"}))
	assert.ElementsMatch(t, []string{"Coussin décoratif"}, titles(ProductFilter{MaxPrice: "50"}))
	assert.Len(t, titles(ProductFilter{MinPrice: "cheap", MaxPrice: "lots"}), 4, "unparsable bounds are ignored")
	assert.ElementsMatch(t, []string{"Smartphone Huawei P40"}, titles(ProductFilter{Query: "HUAWEI"}))
	assert.ElementsMatch(t, []string{"Cafetière programmable", "Coussin décoratif"}, titles(ProductFilter{Query: "maison"}), "matches category name")
	assert.Empty(t, titles(ProductFilter{CategorySlug: "maison", Query: "huawei"}))
}

func TestListProducts_DescriptionSearchAndInactive(t *testing.T) {
	db := freshDB(t)
	cat := seedCategory(t, db, "Mode")
	p := seedProduct(t, db, cat, "Sneakers", "79.99", 20)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("description", "Semelle en caoutchouc").Error)
	hidden := seedProduct(t, db, cat, "Old caoutchouc boots", "9.99", 1)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)
	svc := NewCatalogService(db, nil)

	page, err := svc.ListProducts(ctx, ProductFilter{Query: "CAOUTCHOUC"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Sneakers", page.Products[0].Title)
	assert.Equal(t, "mode", page.Products[0].Category.Slug)
}

func TestListProducts_SearchWildcardsMatchLiterally(t *testing.T) {
	db := freshDB(t)
	cat := seedCategory(t, db, "Maison")
	seedProduct(t, db, cat, "Lampe", "39.99", 12)
	seedProduct(t, db, cat, "Vase", "15.00", 12)
	seedProduct(t, db, cat, "Remise 50% coussin", "9.99", 5)
	seedProduct(t, db, cat, "Plaid laine_merino", "49.99", 5)
	seedProduct(t, db, cat, `Cadre C:\photos`, "19.99", 5)
	svc := NewCatalogService(db, nil)

	titles := func(q string) []string {
		page, err := svc.ListProducts(ctx, ProductFilter{Query: q})
		require.NoError(t, err)
		var out []string
		for _, p := range page.Products {
			out = append(out, p.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Remise 50% coussin"}, titles("%"))
	assert.ElementsMatch(t, []string{"Plaid laine_merino"}, titles("_"))
	assert.ElementsMatch(t, []string{`Cadre C:\photos`}, titles(`\`))
	assert.Empty(t, titles("l%e"))
	assert.Empty(t, titles("v_se"))
}

func TestListProducts_Pagination(t *testing.T) {
	db := freshDB(t)
	cat := seedCategory(t, db, "Maison")
	for i := 0; i < 30; i++ {
		seedProduct(t, db, cat, fmt.Sprintf("Item %02d", i), "1.00", 1)
	}
	svc := NewCatalogService(db, nil)

	first, err := svc.ListProducts(ctx, ProductFilter{Page: "abc"})
	require.NoError(t, err)
	assert.Len(t, first.Products, 12)
	assert.Equal(t, 1, first.Page.Current)
	assert.Equal(t, 3, first.Page.TotalPages)
	assert.True(t, first.Page.HasNext)

	last, err := svc.ListProducts(ctx, ProductFilter{Page: "99"})
	require.NoError(t, err)
	assert.Len(t, last.Products, 6)
	assert.Equal(t, 3, last.Page.Current)
	assert.False(t, last.Page.HasNext)
	assert.True(t, last.Page.HasPrevious)

	empty, err := svc.ListProducts(ctx, ProductFilter{Query: "nothing matches", Page: "4"})
	require.NoError(t, err)
	assert.Empty(t, empty.Products)
	assert.Equal(t, 1, empty.Page.TotalPages)
}

func TestGetProduct(t *testing.T) {
	db := freshDB(t)
	cat := seedCategory(t, db, "Maison")
	p := seedProduct(t, db, cat, "Lampe de bureau LED", "39.99", 12)
	svc := NewCatalogService(db, nil)

	got, err := svc.GetProduct(ctx, "lampe-de-bureau-led")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Maison", got.Category.Name)

	require.NoError(t, svc.DeactivateProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, "lampe-de-bureau-led")
	assert.True(t, IsKind(err, KindNotFound))

	assert.True(t, IsKind(svc.DeactivateProduct(ctx, uuid.New()), KindNotFound))
}

func TestCategoryAdmin(t *testing.T) {
	db := freshDB(t)
	svc := NewCatalogService(db, nil)

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Sac à main"})
	require.NoError(t, err)
	assert.Equal(t, "sac-a-main", c.Slug)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Sac a main"})
	assert.True(t, IsKind(err, KindValidation), "duplicate slug")

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: " "})
	assert.True(t, IsKind(err, KindValidation))

	updated, err := svc.UpdateCategory(ctx, c.ID, CategoryInput{Name: "Sacs", Slug: "sacs", Description: "Tous les sacs"})
	require.NoError(t, err)
	assert.Equal(t, "sacs", updated.Slug)
	assert.Equal(t, "Tous les sacs", updated.Description)

	_, err = svc.UpdateCategory(ctx, uuid.New(), CategoryInput{Name: "x"})
	assert.True(t, IsKind(err, KindNotFound))

	_, err = svc.CreateProduct(ctx, ProductInput{Title: "Cabas", Price: dec("15"), Stock: 3, CategoryID: c.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, c.ID))
	var products int64
	db.Model(&models.Product{}).Where("category_id = ?", c.ID).Count(&products)
	assert.Zero(t, products, "products go with their category")

	assert.True(t, IsKind(svc.DeleteCategory(ctx, c.ID), KindNotFound))
}

func TestProductAdmin(t *testing.T) {
	db := freshDB(t)
	cat := seedCategory(t, db, "Maison")
	svc := NewCatalogService(db, nil)

	inactive := false
	p, err := svc.CreateProduct(ctx, ProductInput{Title: "Kit de jardinage", Price: dec("69.99"), Stock: 10, CategoryID: cat.ID, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "kit-de-jardinage", p.Slug)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", p.ID).Error)
	assert.False(t, stored.IsActive, "explicit false must be stored")

	_, err = svc.CreateProduct(ctx, ProductInput{Title: "Free", Price: dec("0"), CategoryID: cat.ID})
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.CreateProduct(ctx, ProductInput{Title: "Orphan", Price: dec("1"), CategoryID: uuid.New()})
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.CreateProduct(ctx, ProductInput{Title: "Kit de jardinage", Price: dec("1"), CategoryID: cat.ID})
	assert.True(t, IsKind(err, KindValidation), "duplicate slug")

	active := true
	updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Price: dec("59.99"), Stock: 4, IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, "Kit de jardinage", updated.Title)
	assert.True(t, updated.Price.Equal(dec("59.99")))
	assert.True(t, updated.IsActive)

	_, err = svc.UpdateProduct(ctx, p.ID, ProductInput{Price: dec("10"), Stock: -1})
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.UpdateProduct(ctx, uuid.New(), ProductInput{Price: dec("10")})
	assert.True(t, IsKind(err, KindNotFound))

	all, err := svc.ListAllProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all.Products, 1)
}
