package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/service"
	"github.com/utafrali/catalog/pkg/health"
	"github.com/utafrali/catalog/pkg/middleware"
)

// Services groups the services the router exposes.
type Services struct {
	Products   *service.ProductService
	Query      *service.QueryEngine
	Categories *service.CategoryService
	Brands     *service.BrandService
}

// RouterOptions carries the cross-cutting pieces of the router. Nil metrics
// or gatherer disable request metrics and the /metrics endpoint.
type RouterOptions struct {
	ServiceName string
	CORS        middleware.CORSConfig
	Metrics     *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(svc Services, healthHandler *health.Handler, opts RouterOptions, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(opts.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(opts.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	// Health check endpoints
	healthHandler.Routes(r)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	categoryHandler := NewCategoryHandler(svc.Categories, logger)
	productHandler := NewProductHandler(svc.Products, svc.Query, logger)
	brandHandler := NewBrandHandler(svc.Brands, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentType)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/main", categoryHandler.AddCategory(domain.LevelMain))
			r.Post("/sub", categoryHandler.AddCategory(domain.LevelSub))
			r.Post("/subsub", categoryHandler.AddCategory(domain.LevelSubSub))
			r.Post("/lavel3", categoryHandler.AddCategory(domain.LevelLevel3))
			r.Post("/lavel4", categoryHandler.AddCategory(domain.LevelLevel4))
			r.Get("/getcategory", categoryHandler.ListCategories)
			r.Put("/updatecategory", categoryHandler.UpdateCategory)
			r.Delete("/deletecategory", categoryHandler.DeleteCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/add", productHandler.CreateProduct)
			r.Get("/all", productHandler.ListProducts)
			r.Put("/toggle-active/{id}", productHandler.ToggleActive)
			r.Put("/update/{id}", productHandler.UpdateProduct)
			r.Delete("/delete/{id}", productHandler.DeleteProduct)

			r.Get("/category/{categoryName}", productHandler.ListByCategory)
			r.Get("/category/{categoryName}/subcategory/{subCategoryName}", productHandler.ListByCategory)
			r.Get("/category/{categoryName}/subcategory/{subCategoryName}/subsubcategory/{subSubCategoryName}", productHandler.ListByCategory)
			r.Get("/brand/{brand}", productHandler.ListByBrand)
			r.Get("/{id}", productHandler.GetProduct)
		})

		r.Route("/brands", func(r chi.Router) {
			r.Post("/createbrand", brandHandler.CreateBrand)
			r.Get("/getbrand", brandHandler.ListBrands)
			r.Get("/getbrandcount", brandHandler.CountBrands)
			r.Put("/updatebrands/{brandId}", brandHandler.UpdateBrand)
			r.Delete("/deletebrands/{brandId}", brandHandler.DeleteBrand)
		})
	})

	return r
}
