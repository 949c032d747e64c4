// Package httpapi serves the storefront pages and the product JSON API.
package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"storefront/docs"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/order"
	"storefront/pkg/product"
)

// SwaggerDocPath is where the machine-readable API description is served.
const SwaggerDocPath = "/static/swagger.json"

// Deps are the collaborators a Server needs. Log, Metrics, Tracer and Limiter
// are optional.
type Deps struct {
	Products product.Repository
	Orders   *order.Service
	Log      *logger.Logger
	Metrics  *metrics.Metrics
	Tracer   trace.Tracer
	Limiter  *RateLimiter
}

// Server holds handler state.
type Server struct {
	products product.Repository
	orders   *order.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	limiter  *RateLimiter
	pages    pageSet
}

// NewServer parses the page templates and fills in defaults for optional deps.
func NewServer(d Deps) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		products: d.Products,
		orders:   d.Orders,
		log:      d.Log,
		metrics:  d.Metrics,
		tracer:   d.Tracer,
		limiter:  d.Limiter,
		pages:    pages,
	}
	if s.log == nil {
		s.log = logger.New(io.Discard, logger.LevelError, "storefront", nil)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("storefront")
	}
	return s, nil
}

// Routes registers every route and returns the handler with middleware.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.HandleFunc("/", s.indexPage).Methods(http.MethodGet)
	r.HandleFunc("/add_product", s.addProductForm).Methods(http.MethodGet)
	r.HandleFunc("/add_product", s.addProductSubmit).Methods(http.MethodPost)
	r.HandleFunc("/delete_product/{id}", s.deleteProductSubmit).Methods(http.MethodPost)
	r.HandleFunc("/create_order", s.createOrderForm).Methods(http.MethodGet)
	r.HandleFunc("/create_order", s.createOrderSubmit).Methods(http.MethodPost)
	r.HandleFunc("/orders", s.ordersPage).Methods(http.MethodGet)
	r.HandleFunc("/view_product/{id}", s.viewProductPage).Methods(http.MethodGet)
	r.HandleFunc("/contacts", s.contactsPage).Methods(http.MethodGet)

	api := r.PathPrefix("/api/products").Subrouter()
	if s.limiter != nil {
		api.Use(s.limiter.Middleware)
	}
	api.HandleFunc("", s.listProductsHandler).Methods(http.MethodGet)
	api.HandleFunc("", s.createProductHandler).Methods(http.MethodPost)
	api.HandleFunc("/{id}", s.getProductHandler).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.updateProductHandler).Methods(http.MethodPut)
	api.HandleFunc("/{id}", s.deleteProductHandler).Methods(http.MethodDelete)

	r.HandleFunc(SwaggerDocPath, s.swaggerDocHandler).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(httpSwagger.URL(SwaggerDocPath)))
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)

	return withRequestID(s.traceMiddleware(s.withLogging(r)))
}

func (s *Server) swaggerDocHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, docs.SwaggerInfo.ReadDoc())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
