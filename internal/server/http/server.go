// Package httpserver exposes the case ledger REST API over fiber.
package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/service"
)

// Dashboards builds the statistics payload.
type Dashboards interface {
	Dashboard(ctx context.Context) (service.Dashboard, error)
}

// AuditLister reads the audit trail.
type AuditLister interface {
	List(ctx context.Context, targetType, targetID string, limit int) ([]model.AuditLogEntry, error)
}

// Deps are the services behind the API.
type Deps struct {
	Cases    service.CaseService
	Officers service.OfficerService
	Sessions service.SessionService
	Stats    Dashboards
	Audit    AuditLister
	// Ping checks record store reachability for /health; nil reports "unknown".
	Ping   func(ctx context.Context) error
	JWTKey []byte
	Log    *zap.Logger
	// Sentry enables the sentry middleware; sentry.Init must already have run.
	Sentry bool
}

type handlers struct {
	Deps
}

// New builds the fiber application with all routes registered.
func New(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	h := &handlers{Deps: d}

	app := fiber.New(fiber.Config{
		AppName:               "caseledger",
		BodyLimit:             1 << 20,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          h.errorHandler,
	})

	if d.Sentry {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(h.requestLogger)
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	h.routes(app)
	return app
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, errs.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errs.ErrVersionConflict), errors.Is(err, errs.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, errs.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errs.StoreUnavailable(err):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *handlers) errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	message := err.Error()
	switch {
	case code == fiber.StatusServiceUnavailable:
		message = "record store unavailable"
	case code >= 500:
		h.Log.Error("unhandled server error",
			zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "internal server error"
	}
	return c.Status(code).JSON(fiber.Map{"error": true, "message": message})
}

func (h *handlers) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	code := c.Response().StatusCode()
	if err != nil {
		code = statusFor(err)
	}
	h.Log.Info("http",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", code),
		zap.Duration("dur", time.Since(start)),
		zap.String("ip", c.IP()),
		zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
	)
	return err
}

// captureMessage reports a notable non-error event when sentry is wired.
func captureMessage(c *fiber.Ctx, msg string) {
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("path", c.Path())
			hub.CaptureMessage(msg)
		})
	}
}
