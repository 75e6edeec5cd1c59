// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/app/handlers"
	"github.com/amirphl/mini-crm/app/middleware"
	"github.com/amirphl/mini-crm/config"
	"github.com/amirphl/mini-crm/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const healthPath = "/health"

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	Shutdown(ctx context.Context) error
	GetApp() *fiber.App
}

// Handlers groups the resource handlers mounted by the router
type Handlers struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Customer      *handlers.CustomerHandler
	Order         *handlers.OrderHandler
	Campaign      *handlers.CampaignHandler
	Communication *handlers.CommunicationHandler
	Email         *handlers.EmailHandler
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	cfg      *config.ProductionConfig
	handlers Handlers
	logger   *zap.Logger
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.ProductionConfig, h Handlers, logger *zap.Logger) *FiberRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &FiberRouter{
		cfg:      cfg,
		handlers: h,
		logger:   logger,
	}

	r.app = fiber.New(fiber.Config{
		AppName:      "Mini CRM API",
		ServerHeader: "mini-crm",
		ErrorHandler: r.errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	return r
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	// liveness stays outside the API prefix and never touches storage
	r.app.Get(healthPath, r.handlers.Health.Health)

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/google", r.handlers.Auth.GoogleLogin)
	auth.Post("/logout", r.handlers.Auth.Logout)

	customers := api.Group("/customers")
	customers.Get("/", r.handlers.Customer.ListCustomers)
	customers.Post("/", r.handlers.Customer.UpsertCustomer)
	customers.Get("/:id", r.handlers.Customer.GetCustomer)

	orders := api.Group("/orders")
	orders.Get("/", r.handlers.Order.ListOrders)
	orders.Post("/", r.handlers.Order.CreateOrder)

	campaigns := api.Group("/campaigns")
	campaigns.Get("/", r.handlers.Campaign.ListCampaigns)
	campaigns.Post("/", r.handlers.Campaign.CreateCampaign)
	campaigns.Get("/:id", r.handlers.Campaign.GetCampaign)
	campaigns.Patch("/:id", r.handlers.Campaign.UpdateCampaign)
	campaigns.Get("/:id/communications", r.handlers.Campaign.ListCampaignCommunications)

	communications := api.Group("/communications")
	communications.Get("/", r.handlers.Communication.ListCommunications)
	communications.Post("/", r.handlers.Communication.LogCommunication)

	email := api.Group("/email")
	email.Post("/send", r.handlers.Email.SendEmail)
	email.Post("/test", r.handlers.Email.SendTestEmail)
	email.Get("/status", r.handlers.Email.Status)

	// must be last
	r.app.Use(r.notFoundHandler)
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		ContentSecurityPolicy:     "default-src 'none'; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDNSPrefetchControl:       "off",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Security.AllowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
		},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	skip := []string{healthPath, r.cfg.Metrics.Path}
	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics(skip...))
	}
	r.app.Use(middleware.RequestLogger(r.logger, skip...))

	// Recovery middleware; the panic then reaches errorHandler as a regular error
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.logger.Error("panic recovered",
				zap.String("request_id", requestid.FromContext(c)),
				zap.Any("panic", e),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.Stack("stack"))
		},
	}))
}

// Start begins serving on address and blocks until the listener stops
func (r *FiberRouter) Start(address string) error {
	r.logger.Info("starting server", zap.String("address", address), zap.String("environment", r.cfg.Environment))
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

func (r *FiberRouter) Shutdown(ctx context.Context) error {
	return r.app.ShutdownWithContext(ctx)
}

func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.NotFoundResponse{
		Error: "Route not found",
		Path:  c.OriginalURL(),
	})
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// errorHandler renders every error a handler returns. Outside production the response
// carries the error chain's stack and request details.
func (r *FiberRouter) errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	fields := []zap.Field{
		zap.String("request_id", requestid.FromContext(c)),
		zap.Int("status", code),
		zap.String("path", c.Path()),
		zap.Error(err),
	}
	if code >= fiber.StatusInternalServerError {
		r.logger.Error("unhandled error", fields...)
	} else {
		r.logger.Debug("request error", fields...)
	}

	resp := dto.ErrorResponse{
		Error:   true,
		Message: err.Error(),
	}
	if r.cfg.IsProduction() {
		if code >= fiber.StatusInternalServerError {
			resp.Message = "Something went wrong"
		}
	} else {
		resp.Stack = stackOf(err)
		resp.Details = fiber.Map{
			"request_id": requestid.FromContext(c),
			"method":     c.Method(),
			"path":       c.Path(),
			"timestamp":  utils.UTCNow().Format(time.RFC3339),
		}
	}

	return c.Status(code).JSON(resp)
}

func stackOf(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		return strings.TrimSpace(fmt.Sprintf("%+v", st.StackTrace()))
	}
	return ""
}
