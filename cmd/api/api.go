package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bulkwala/docs" //this is required to generate swagger docs
	"bulkwala/internal/auth"
	"bulkwala/internal/config"
	"bulkwala/internal/degrade"
	"bulkwala/internal/domain/offers"
	"bulkwala/internal/domain/storage"
	"bulkwala/internal/imagehost"
	"bulkwala/internal/mailer"
	"bulkwala/internal/payments"
	"bulkwala/internal/ratelimiter"
	"bulkwala/internal/slug"
	"bulkwala/internal/sms"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        *config.Config
	store         *storage.Container
	exec          *degrade.Executor
	logger        *zap.SugaredLogger
	images        *imagehost.Service
	mail          *mailer.Service
	sms           *sms.Service
	payments      *payments.Service
	offers        *offers.Service
	slugs         *slug.Generator
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.FrontendURLs(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", degradedHeader},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	if app.config.RateLimiter.Enabled {
		r.Use(app.RateLimiterMiddleware)
	}

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.Addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", app.listCategoriesHandler)
			r.Get("/{slug}", app.getCategoryHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware, app.RequireRole("admin"))
				r.Post("/", app.createCategoryHandler)
				r.Put("/{slug}", app.updateCategoryHandler)
				r.Delete("/{slug}", app.deleteCategoryHandler)
			})
		})

		r.Route("/subcategories", func(r chi.Router) {
			r.Get("/", app.listSubcategoriesHandler)
			r.Get("/{slug}", app.getSubcategoryHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware, app.RequireRole("admin"))
				r.Post("/", app.createSubcategoryHandler)
				r.Put("/{slug}", app.updateSubcategoryHandler)
				r.Delete("/{slug}", app.deleteSubcategoryHandler)
				r.Patch("/{slug}/restore", app.restoreSubcategoryHandler)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", app.listProductsHandler)
			r.Get("/{slug}", app.getProductHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware, app.RequireRole("admin", "seller"))
				r.Post("/", app.createProductHandler)
				r.Put("/{slug}", app.updateProductHandler)
				r.Delete("/{slug}", app.deleteProductHandler)
				r.Post("/{slug}/images", app.uploadProductImageHandler)
			})
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/active", app.getActiveOfferHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware, app.RequireRole("admin"))
				r.Post("/start", app.startOfferHandler)
				r.Delete("/", app.deleteOfferHandler)
			})
		})

		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.registerUserHandler)
			r.Put("/verify-email/{token}", app.verifyEmailHandler)
			r.Post("/login", app.loginHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.Post("/otp/send", app.sendOTPHandler)
			r.Post("/otp/verify", app.verifyOTPHandler)
			r.Post("/forgot-password", app.forgotPasswordHandler)
			r.Post("/reset-password/{token}", app.resetPasswordHandler)

			r.With(app.AuthTokenMiddleware).Get("/me", app.meHandler)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/methods", app.paymentMethodsHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Post("/orders", app.createPaymentOrderHandler)
				r.Post("/verify", app.verifyPaymentHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = app.config.Version
	docs.SwaggerInfo.Host = app.config.APIURL
	docs.SwaggerInfo.BasePath = "/api/v1"

	srv := &http.Server{
		Addr:         app.config.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
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

	app.logger.Infow("server has started", "addr", app.config.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.Addr, "env", app.config.Env)

	return nil
}
