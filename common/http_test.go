package common

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"procurely/store"
)

func testContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, target, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestRespondError(t *testing.T) {
	for name, tc := range map[string]struct {
		err  error
		code int
		body string
	}{
		"validation": {store.NewValidationError("email", "is required"), http.StatusBadRequest, `{"error":"validation failed","fields":{"email":"is required"}}`},
		"not found":  {store.ErrNotFound, http.StatusNotFound, `{"error":"not found"}`},
		"wrapped":    {errors.Join(errors.New("lookup"), store.ErrNotFound), http.StatusNotFound, `{"error":"not found"}`},
		"unexpected": {errors.New("disk on fire"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	} {
		t.Run(name, func(t *testing.T) {
			c, w := testContext(http.MethodGet, "/", "")
			RespondError(c, tc.err)
			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestBindJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email" binding:"required,email"`
	}

	c, _ := testContext(http.MethodPost, "/", `{"email":"nope"}`)
	err := BindJSON(c, &dst)
	var ve *store.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be a valid email address", ve.Fields["email"])

	c, _ = testContext(http.MethodPost, "/", `{"email":`)
	err = BindJSON(c, &dst)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "body")

	c, _ = testContext(http.MethodPost, "/", `{"email":"a@example.com"}`)
	assert.NoError(t, BindJSON(c, &dst))
}

func TestListQuery(t *testing.T) {
	params := []FilterParam{
		{Param: "is_active", Column: "is_active", Kind: BoolFilter},
		{Param: "job_id", Column: "job_id", Kind: IntFilter},
		{Param: "category", Column: "category"},
	}

	c, _ := testContext(http.MethodGet, "/?q=tmt&is_active=true&job_id=4&category=Steel&page=2&sort=-created_at&ignored=1", "")
	q, err := ListQuery(c, params)
	require.NoError(t, err)
	assert.Equal(t, "tmt", q.Search)
	assert.Equal(t, "-created_at", q.Order)
	assert.Equal(t, map[string]any{"is_active": true, "job_id": 4, "category": "Steel"}, q.Filters)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 20, q.PageSize)

	for _, target := range []string{"/?is_active=yes", "/?job_id=four", "/?page=-1", "/?pageSize=x"} {
		c, _ := testContext(http.MethodGet, target, "")
		_, err := ListQuery(c, params)
		assert.True(t, store.IsValidation(err), target)
	}
}

func TestParseID(t *testing.T) {
	for raw, want := range map[string]int{"7": 7, "0": 0, "-1": 0, "x": 0} {
		c, _ := testContext(http.MethodGet, "/", "")
		c.Params = gin.Params{{Key: "id", Value: raw}}
		id, err := ParseID(c)
		assert.Equal(t, want, id)
		if want == 0 {
			assert.ErrorIs(t, err, store.ErrNotFound)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewEngine(zap.NewNop())
	router.GET("/ping", func(c *gin.Context) {
		assert.NotNil(t, Logger(c))
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	incoming := uuid.NewString()
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, incoming)
	router.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "bad\nid")
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "bad\nid", w.Header().Get(RequestIDHeader))
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewEngine(zap.NewNop())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
