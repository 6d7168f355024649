package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "giveaway-engine/internal/common/errors"
)

const botToken = "123456:test-token"

func init() {
	gin.SetMode(gin.TestMode)
}

// signInitData builds a Mini App init data string signed with token.
func signInitData(t *testing.T, token string, userID int64, authDate time.Time) string {
	t.Helper()
	user, err := json.Marshal(map[string]interface{}{"id": userID, "first_name": "Test"})
	require.NoError(t, err)

	params := map[string]string{
		"auth_date": strconv.FormatInt(authDate.Unix(), 10),
		"query_id":  "AAHdF6IQAAAAAN0XohDhrOrc",
		"user":      string(user),
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(token))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	r.GET("/test", handlers...)
	return r
}

func serve(r *gin.Engine, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	require.NotNil(t, body.Error)
	return body
}

func TestRequestID(t *testing.T) {
	var seen string
	r := newRouter(func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := serve(r, nil)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	w = serve(r, http.Header{RequestIDHeader: []string{"req-1"}})
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   apperrors.ErrorCode
	}{
		{"not found", apperrors.NewNotFoundError("g1"), http.StatusNotFound, apperrors.ErrCodeNotFound},
		{"conflict", apperrors.NewCapacityReachedError("g1"), http.StatusConflict, apperrors.ErrCodeCapacityReached},
		{"collaborator", apperrors.NewCollaboratorError("close", errors.New("db down")), http.StatusBadGateway, apperrors.ErrCodeCollaboratorFailure},
		{"wrapped app error", fmt.Errorf("outer: %w", apperrors.NewForbiddenError("guild")), http.StatusForbidden, apperrors.ErrCodeForbidden},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(func(c *gin.Context) {
				_ = c.Error(tt.err)
			})
			w := serve(r, http.Header{RequestIDHeader: []string{"req-2"}})

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, "req-2", body.Error.RequestID)
		})
	}
}

func TestRecovery(t *testing.T) {
	r := newRouter(func(c *gin.Context) {
		panic("kaboom")
	})
	w := serve(r, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, apperrors.ErrCodeInternal, body.Error.Code)
	assert.Equal(t, "kaboom", body.Error.Details["panic"])
}

func TestTelegramInitData(t *testing.T) {
	var userID int64
	ok := func(c *gin.Context) {
		userID = GetUserID(c)
		c.Status(http.StatusOK)
	}
	r := newRouter(TelegramInitData(botToken, time.Hour), ok)

	t.Run("valid", func(t *testing.T) {
		userID = 0
		w := serve(r, http.Header{InitDataHeader: []string{signInitData(t, botToken, 4242, time.Now())}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, int64(4242), userID)
	})

	t.Run("missing", func(t *testing.T) {
		w := serve(r, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, decode(t, w).Error.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		w := serve(r, http.Header{InitDataHeader: []string{signInitData(t, "654321:other", 4242, time.Now())}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired", func(t *testing.T) {
		w := serve(r, http.Header{InitDataHeader: []string{signInitData(t, botToken, 4242, time.Now().Add(-2*time.Hour))}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetUserID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Zero(t, GetUserID(c))
	assert.Equal(t, "unknown", GetRequestID(c))
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter(TelegramInitData(botToken, time.Hour), RequireAdmin([]int64{1, 4242}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("admin", func(t *testing.T) {
		w := serve(r, http.Header{InitDataHeader: []string{signInitData(t, botToken, 4242, time.Now())}})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("not an admin", func(t *testing.T) {
		w := serve(r, http.Header{InitDataHeader: []string{signInitData(t, botToken, 7, time.Now())}})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apperrors.ErrCodeForbidden, decode(t, w).Error.Code)
	})

	t.Run("without init data", func(t *testing.T) {
		w := serve(newRouter(RequireAdmin([]int64{1})), nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, decode(t, w).Error.Code)
	})
}
