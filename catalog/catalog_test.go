package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitshare/db/dbtest"
	"fitshare/errs"
	"fitshare/logger"
	"fitshare/models"
)

func setup(t *testing.T) (*dbtest.Memory, *httprouter.Router) {
	t.Helper()
	store := dbtest.New()
	store.AddCatalogItems(
		models.CatalogItem{Category: models.CategoryTop, Name: "Linen shirt", Image: "shirt.png"},
		models.CatalogItem{Category: models.CategoryTop, Name: "Cardigan", Image: "cardigan.png"},
		models.CatalogItem{Category: models.CategoryFootwear, Name: "Loafers", Image: "loafers.png"},
		models.CatalogItem{Category: models.CategoryAccessory, Name: "Belt", Image: "belt.png"},
	)
	h := NewHandler(store, logger.Discard())

	router := httprouter.New()
	router.GET("/tops", h.ByCategory(models.CategoryTop))
	router.GET("/bottoms", h.ByCategory(models.CategoryBottom))
	router.GET("/footwear", h.ByCategory(models.CategoryFootwear))
	router.GET("/catalog", h.List)
	return store, router
}

func get(router http.Handler, path string) (*httptest.ResponseRecorder, []models.CatalogItem) {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var items []models.CatalogItem
	_ = json.Unmarshal(rec.Body.Bytes(), &items)
	return rec, items
}

func TestByCategory(t *testing.T) {
	_, router := setup(t)

	rec, items := get(router, "/tops")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, models.CategoryTop, it.Category)
	}

	rec, items = get(router, "/bottoms")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Empty(t, items)
}

func TestList(t *testing.T) {
	_, router := setup(t)

	_, items := get(router, "/catalog")
	assert.Len(t, items, 4)

	_, items = get(router, "/catalog?category=Footwear")
	require.Len(t, items, 1)
	assert.Equal(t, "Loafers", items[0].Name)

	rec, _ := get(router, "/catalog?category=hats")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreFailure(t *testing.T) {
	store, router := setup(t)
	store.Err = errs.Internal("catalog unavailable")

	rec, _ := get(router, "/tops")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
