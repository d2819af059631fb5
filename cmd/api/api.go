package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/docs" // registers swagger docs
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/metrics"
	"storefront/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type application struct {
	config        config
	catalog       *catalog.Service
	store         pinger
	logger        *zap.SugaredLogger
	metrics       *metrics.Metrics
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr           string
	env            string
	apiURL         string
	logLevel       string
	requestTimeout time.Duration
	corsOrigins    []string
	db             dbConfig
	upload         uploadConfig
	auth           authConfig
	rateLimiter    ratelimiter.Config
}

type dbConfig struct {
	driver      string
	addr        string
	maxConns    int
	maxIdleTime string
	autoMigrate bool
}

type uploadConfig struct {
	backend       string
	dir           string
	folder        string
	cloudinaryURL string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type basicConfig struct {
	user string
	pass string
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "X-Total-Count"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	if app.config.rateLimiter.Enabled {
		r.Use(app.RateLimiterMiddleware)
	}

	r.Use(middleware.Timeout(app.config.requestTimeout))

	r.Get("/health", app.healthCheckHandler)
	r.Handle("/metrics", app.metrics.Handler())
	r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if app.config.upload.backend == "disk" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.config.upload.dir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/topcategories", func(r chi.Router) {
		r.Get("/", app.listTopCategoriesHandler)
		r.Get("/{id}", app.getTopCategoryHandler)
		r.Get("/{id}/children", app.listTopCategoryParentsHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.AdminTokenMiddleware)
			r.Post("/add", app.createTopCategoryHandler)
			r.Put("/{id}", app.updateTopCategoryHandler)
			r.Delete("/{id}", app.deleteTopCategoryHandler)
		})
	})

	r.Route("/parentcategories", func(r chi.Router) {
		r.Get("/", app.listParentCategoriesHandler)
		r.Get("/{id}", app.getParentCategoryHandler)
		r.Get("/{id}/children", app.listParentCategoryChildrenHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.AdminTokenMiddleware)
			r.Post("/add", app.createParentCategoryHandler)
			r.Put("/{id}", app.updateParentCategoryHandler)
			r.Delete("/{id}", app.deleteParentCategoryHandler)
		})
	})

	r.Route("/childcategories", func(r chi.Router) {
		r.Get("/", app.listChildCategoriesHandler)
		r.Get("/{id}", app.getChildCategoryHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.AdminTokenMiddleware)
			r.Post("/add", app.createChildCategoryHandler)
			r.Put("/{id}", app.updateChildCategoryHandler)
			r.Delete("/{id}", app.deleteChildCategoryHandler)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", app.listProductsHandler)
		r.Get("/{id}", app.getProductHandler)
		r.Get("/category/{categoryId}", app.listProductsByParentHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.AdminTokenMiddleware)
			r.Post("/add", app.addProductHandler)
			r.Put("/{id}", app.updateProductHandler)
			r.Post("/{id}/variants", app.addVariantHandler)
			r.Delete("/{id}", app.deleteProductHandler)
		})
	})

	r.Route("/sizes", func(r chi.Router) {
		r.Get("/", app.listSizesHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.AdminTokenMiddleware)
			r.Post("/add", app.createSizeHandler)
			r.Delete("/{id}", app.deleteSizeHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: app.config.requestTimeout + 10*time.Second,
		ReadTimeout:  time.Second * 30,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
