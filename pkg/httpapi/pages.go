package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/order"
	"storefront/pkg/otel"
	"storefront/pkg/product"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index.html",
	"add_product.html",
	"create_order.html",
	"orders.html",
	"view_product.html",
	"contacts.html",
}

// pageSet maps a page file name to its template joined with the layout.
type pageSet map[string]*template.Template

func parsePages() (pageSet, error) {
	set := make(pageSet, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		set[name] = t
	}
	return set, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.Error(r.Context(), "render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.log.Error(r.Context(), msg, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "indexPage")
	defer span.End()

	products, err := s.products.List(ctx)
	if err != nil {
		s.internalError(w, r, "list products", err)
		return
	}
	s.render(w, r, "index.html", products)
}

func (s *Server) addProductForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "add_product.html", nil)
}

// addProductSubmit adds a product from form fields. A full catalog is a
// silent no-op; the redirect happens either way.
func (s *Server) addProductSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addProductSubmit")
	defer span.End()

	if err := r.ParseForm(); err != nil || !r.PostForm.Has("name") || !r.PostForm.Has("price") {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	p := product.New(r.PostForm.Get("name"), product.TextPrice(r.PostForm.Get("price")))
	if err := s.products.Create(ctx, p); err != nil {
		if !errors.Is(err, product.ErrCapacity) {
			s.internalError(w, r, "create product", err)
			return
		}
		s.metrics.RecordRejection("products")
		s.log.Info(ctx, "product dropped, storage full")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) deleteProductSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteProductSubmit")
	defer span.End()

	err := s.products.Delete(ctx, mux.Vars(r)["id"])
	if err != nil && !errors.Is(err, product.ErrNotFound) {
		s.internalError(w, r, "delete product", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) createOrderForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createOrderForm")
	defer span.End()

	products, err := s.products.List(ctx)
	if err != nil {
		s.internalError(w, r, "list products", err)
		return
	}
	s.render(w, r, "create_order.html", products)
}

// createOrderSubmit places an order from the multi-value "products" field.
func (s *Server) createOrderSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createOrderSubmit")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if _, err := s.orders.Place(ctx, r.PostForm["products"]); err != nil {
		if !errors.Is(err, order.ErrCapacity) {
			s.internalError(w, r, "place order", err)
			return
		}
		s.metrics.RecordRejection("orders")
		s.log.Info(ctx, "order dropped, storage full")
	}
	http.Redirect(w, r, "/orders", http.StatusFound)
}

func (s *Server) ordersPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "ordersPage")
	defer span.End()

	orders, err := s.orders.List(ctx)
	if err != nil {
		s.internalError(w, r, "list orders", err)
		return
	}
	s.render(w, r, "orders.html", orders)
}

func (s *Server) viewProductPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "viewProductPage")
	defer span.End()

	var data struct{ Product *product.Product }
	p, err := s.products.Get(ctx, mux.Vars(r)["id"])
	switch {
	case err == nil:
		data.Product = &p
	case !errors.Is(err, product.ErrNotFound):
		s.internalError(w, r, "get product", err)
		return
	}
	s.render(w, r, "view_product.html", data)
}

func (s *Server) contactsPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "contacts.html", nil)
}
