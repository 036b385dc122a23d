package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock with ping monitoring.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return gormDB, mock
}

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"commentId", "comment ID"},
		{"pollOptionId", "poll option ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c)
		return c.JSON(fiber.Map{"page": p.Page, "limit": p.Limit})
	})

	tests := []struct {
		query string
		page  float64
		limit float64
	}{
		{"", 1, 20},
		{"?page=3&limit=10", 3, 10},
		{"?page=0&limit=500", 1, 100},
		{"?page=-2&limit=-1", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var body map[string]float64
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.page, body["page"])
			assert.Equal(t, tt.limit, body["limit"])
		})
	}
}

func TestParseID_ContextSpecificErrorMessage(t *testing.T) {
	tests := []struct {
		param       string
		value       string
		expectedMsg string
	}{
		{"id", "abc", "Invalid ID"},
		{"id", "0", "Invalid ID"},
		{"userId", "abc", "Invalid user ID"},
		{"commentId", "-4", "Invalid comment ID"},
	}
	for _, tt := range tests {
		t.Run(tt.param+"="+tt.value, func(t *testing.T) {
			app := fiber.New()
			s := &Server{}
			app.Get("/items/:"+tt.param, func(c *fiber.Ctx) error {
				_, _ = s.parseID(c, tt.param)
				return nil
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+tt.value, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedMsg, body["error"])
			assert.Equal(t, models.CodeValidation, body["code"])
		})
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", models.NewNotFoundError("Post", uint(9)), http.StatusNotFound, models.CodeNotFound},
		{"conflict", models.NewConflictError("Friend request already exists"), http.StatusConflict, models.CodeConflict},
		{"forbidden", models.NewForbiddenError("nope"), http.StatusForbidden, models.CodeForbidden},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, models.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondServiceError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.status, resp.StatusCode)
			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Error, "connection reset")
		})
	}
}

func TestReadinessCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		mock.ExpectPing()
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		s := &Server{config: &config.Config{ServiceVersion: "test"}, db: gormDB, redis: rdb}

		app := fiber.New()
		app.Get("/health/ready", s.ReadinessCheck)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, map[string]interface{}{"database": "healthy", "redis": "healthy"}, body["checks"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database down", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		s := &Server{config: &config.Config{}, db: gormDB}

		app := fiber.New()
		app.Get("/health/ready", s.ReadinessCheck)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"database": "unhealthy", "redis": "unavailable"}, body["checks"])
	})
}
