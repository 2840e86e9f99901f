package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sunrisestay/internal/auth"
	"sunrisestay/internal/booking"
	"sunrisestay/internal/catalog"
	"sunrisestay/internal/config"
	"sunrisestay/internal/contact"
	"sunrisestay/internal/session"
	"sunrisestay/internal/user"
	"sunrisestay/internal/web"
)

// Deps are the long-lived services the routes are built from.
type Deps struct {
	Verifier auth.Verifier
	Sessions *session.Registry
	Profiles user.Service
	Catalog  *catalog.Store
	Cooldown *contact.Cooldown
	Mailer   Mailer
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

func New(cfg *config.Config, deps Deps) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggingMiddleware(), MetricsMiddleware(), securityHeaders())
	router.SetHTMLTemplate(web.Templates())
	router.StaticFS("/static", web.Static())

	router.GET("/health", Health(deps.Mailer, deps.Sessions))
	router.GET("/metrics", Metrics())

	catalogHandler := catalog.NewHandler(deps.Catalog, session.BookingStore, cfg.AuthSignInURL)
	bookingHandler := booking.NewHandler(session.BookingStore, cfg.StripePublishableKey, cfg.PaymentWindow)
	contactHandler := contact.NewHandler(deps.Cooldown, deps.Mailer, session.VisitorID)
	pages := newPages(cfg.AuthPublishableKey)

	limited := RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	site := router.Group("/")
	site.Use(
		deps.Sessions.Middleware(),
		auth.SessionMiddleware(deps.Verifier),
		user.ProfileSync(deps.Profiles, session.ProfileState, cfg.BackendTimeout),
	)
	{
		site.GET("/", catalogHandler.Home)
		site.GET("/rooms", catalogHandler.Rooms)
		site.GET("/rooms/:name", catalogHandler.RoomDetail)
		site.POST("/rooms/:name/book", limited, catalogHandler.Book)

		site.GET("/payment", bookingHandler.Payment)
		site.POST("/payment/confirm", limited, bookingHandler.ConfirmPayment)
		site.GET("/booking-success/:id", bookingHandler.Success)
		site.GET("/booking-failed/:id", bookingHandler.Failed)

		site.GET("/services", pages.Services)
		site.GET("/contact-us", contactHandler.Page)
		site.POST("/contact-us", limited, contactHandler.Submit)
		site.GET("/contact-us/cooldown", contactHandler.Countdown)
		site.GET("/sign-in", pages.SignIn)
	}

	account := site.Group("/my-bookings")
	account.Use(auth.RequireSignIn(cfg.AuthSignInURL))
	{
		account.GET("", bookingHandler.MyBookings)
		account.POST("/:id/cancel", limited, bookingHandler.Cancel)
	}

	router.NoRoute(auth.SessionMiddleware(deps.Verifier), pages.NotFound)

	return &Server{
		router: router,
		config: cfg,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
