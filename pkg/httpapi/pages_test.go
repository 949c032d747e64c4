package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/product"
)

func (f fixture) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestAddProductForm(t *testing.T) {
	f := setup(t, product.DefaultCapacity)

	rr := f.postForm(t, "/add_product", url.Values{"name": {"Pen"}, "price": {"1.50"}})
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	list, _ := f.products.List(context.Background())
	require.Len(t, list, 1)
	assert.Equal(t, "Pen", list[0].Name)
	assert.Equal(t, `"1.50"`, list[0].Price.JSON())

	rr = f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Pen")
	assert.Contains(t, rr.Body.String(), "/view_product/"+list[0].ID)
}

func TestAddProductFormAtCapacityIsSilent(t *testing.T) {
	f := setup(t, 1)
	f.postForm(t, "/add_product", url.Values{"name": {"a"}, "price": {"1"}})

	rr := f.postForm(t, "/add_product", url.Values{"name": {"b"}, "price": {"1"}})
	assert.Equal(t, http.StatusFound, rr.Code)
	list, _ := f.products.List(context.Background())
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Name)
}

func TestAddProductFormMissingField(t *testing.T) {
	f := setup(t, product.DefaultCapacity)
	rr := f.postForm(t, "/add_product", url.Values{"name": {"Pen"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	list, _ := f.products.List(context.Background())
	assert.Empty(t, list)
}

func TestDeleteProductFormIsIdempotent(t *testing.T) {
	f := setup(t, product.DefaultCapacity)
	p := product.New("Pen", product.TextPrice("1"))
	require.NoError(t, f.products.Create(context.Background(), p))

	for i := 0; i < 2; i++ {
		rr := f.postForm(t, "/delete_product/"+p.ID, nil)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
	}
	list, _ := f.products.List(context.Background())
	assert.Empty(t, list)
}

func TestCreateOrderForm(t *testing.T) {
	ctx := context.Background()
	f := setup(t, product.DefaultCapacity)
	a := product.New("Pen", product.TextPrice("1"))
	b := product.New("Ink", product.TextPrice("2"))
	require.NoError(t, f.products.Create(ctx, a))
	require.NoError(t, f.products.Create(ctx, b))

	rr := f.do(t, http.MethodGet, "/create_order", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="`+a.ID+`"`)

	rr = f.postForm(t, "/create_order", url.Values{"products": {b.ID, "unknown", a.ID}})
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/orders", rr.Header().Get("Location"))

	orders, _ := f.orders.List(ctx)
	require.Len(t, orders, 1)
	assert.Equal(t, []product.Product{a, b}, orders[0].Products)

	rr = f.do(t, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), orders[0].ID)
	assert.Contains(t, rr.Body.String(), "Ink")
}

func TestCreateOrderFormAtCapacityIsSilent(t *testing.T) {
	f := setup(t, 1)
	f.postForm(t, "/create_order", nil)
	rr := f.postForm(t, "/create_order", nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	orders, _ := f.orders.List(context.Background())
	assert.Len(t, orders, 1)
}

func TestViewProductPage(t *testing.T) {
	f := setup(t, product.DefaultCapacity)
	p := product.New("Pen", product.TextPrice("1.50"))
	require.NoError(t, f.products.Create(context.Background(), p))

	rr := f.do(t, http.MethodGet, "/view_product/"+p.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Price: 1.50")

	rr = f.do(t, http.MethodGet, "/view_product/missing", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Product not found")
}

func TestStaticPages(t *testing.T) {
	f := setup(t, product.DefaultCapacity)
	for _, path := range []string{"/", "/add_product", "/orders", "/contacts", "/create_order"} {
		rr := f.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"), path)
	}
}

func TestDeleteProductRequiresPost(t *testing.T) {
	f := setup(t, product.DefaultCapacity)
	rr := f.do(t, http.MethodGet, "/delete_product/x", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
