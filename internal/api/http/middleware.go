package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const requestIDHeader = "X-Request-Id"

// RegisterMiddlewares attaches the global middleware chain: request id
// tagging, per-request timeout, error translation, and request logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestIDMiddleware())
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

// requestIDMiddleware tags each request with an id, honoring one supplied by
// the caller. The id is echoed back in the response header and carried in
// error envelopes.
func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(observability.RequestIDKey, id)
		c.Set(requestIDHeader, id)
		return c.Next()
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware converts returned errors and panics into the JSON
// error envelope. Conflicts and dependency failures are logged at warn since
// they are expected under concurrent writes and mail or cache outages; only
// internal errors escalate to error level.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("request_id", observability.RequestID(c)),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)

				requestID := observability.RequestID(c)
				envelope := fiber.Map{
					"code":       domainErr.Code,
					"message":    domainErr.Message,
					"request_id": requestID,
				}
				if len(domainErr.Details) > 0 {
					envelope["details"] = domainErr.Details
				}

				switch {
				case domainErr.Code == apperrors.CodeConflict || domainErr.Code == apperrors.CodeDependencyFailure:
					logger.Warn("request rejected",
						zap.String("request_id", requestID),
						zap.String("code", domainErr.Code),
						zap.Error(domainErr))
				case domainErr.HTTPStatus >= 500:
					logger.Error("request failed",
						zap.String("request_id", requestID),
						zap.String("code", domainErr.Code),
						zap.Error(domainErr))
				}

				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(fiber.Map{"error": envelope})
				err = nil
			}
		}()
		return c.Next()
	}
}
