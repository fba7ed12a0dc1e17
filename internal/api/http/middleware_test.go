package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func newMiddlewareApp(metrics *observability.Metrics) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	return app
}

func TestErrorEnvelopeCarriesRequestID(t *testing.T) {
	app := newMiddlewareApp(observability.NewMetrics())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewConflict("ticket assignment changed concurrently", nil)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var body struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeConflict, body.Error.Code)
	assert.Equal(t, resp.Header.Get("X-Request-Id"), body.Error.RequestID)
}

func TestCallerRequestIDIsEchoed(t *testing.T) {
	app := newMiddlewareApp(observability.NewMetrics())
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set("X-Request-Id", "req-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-123", resp.Header.Get("X-Request-Id"))
}

func TestPanicBecomesInternalErrorEnvelope(t *testing.T) {
	metrics := observability.NewMetrics()
	app := newMiddlewareApp(metrics)
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	snap := metrics.TakeSnapshot()
	assert.Equal(t, int64(1), snap.Errors[apperrors.CodeInternalError])
}
