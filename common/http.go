package common

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"procurely/store"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(store.JSONFieldName)
	}
}

// RespondError maps an error onto its HTTP response. Unexpected errors are
// logged and reported without detail.
func RespondError(c *gin.Context, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		Logger(c).Error("request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// BindJSON decodes and validates the request body into dst. Failures come
// back as *store.ValidationError.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if verr := store.FromValidator(err); store.IsValidation(verr) {
			return verr
		}
		return store.NewValidationError("body", "malformed JSON")
	}
	return nil
}

// ParseID reads the :id path parameter.
func ParseID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, store.ErrNotFound
	}
	return id, nil
}

type FilterKind int

const (
	TextFilter FilterKind = iota
	BoolFilter
	IntFilter
)

// FilterParam maps a query string parameter onto an equality filter.
type FilterParam struct {
	Param  string
	Column string
	Kind   FilterKind
}

// ListQuery builds a store.Query from q, page, pageSize, sort and the given
// filter parameters.
func ListQuery(c *gin.Context, params []FilterParam) (store.Query, error) {
	q := store.Query{
		Filters: map[string]any{},
		Search:  c.Query("q"),
		Order:   c.Query("sort"),
	}

	for _, p := range params {
		raw, ok := c.GetQuery(p.Param)
		if !ok || raw == "" {
			continue
		}
		switch p.Kind {
		case BoolFilter:
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return q, store.NewValidationError(p.Param, "must be true or false")
			}
			q.Filters[p.Column] = v
		case IntFilter:
			v, err := strconv.Atoi(raw)
			if err != nil {
				return q, store.NewValidationError(p.Param, "must be an integer")
			}
			q.Filters[p.Column] = v
		default:
			q.Filters[p.Column] = raw
		}
	}

	var err error
	if raw := c.Query("page"); raw != "" {
		if q.Page, err = strconv.Atoi(raw); err != nil || q.Page < 1 {
			return q, store.NewValidationError("page", "must be a positive integer")
		}
	}
	if raw := c.Query("pageSize"); raw != "" {
		if q.PageSize, err = strconv.Atoi(raw); err != nil || q.PageSize < 1 {
			return q, store.NewValidationError("pageSize", "must be a positive integer")
		}
	}
	if q.Page > 0 && q.PageSize == 0 {
		q.PageSize = 20
	}

	q.Order = strings.TrimSpace(q.Order)
	return q, nil
}

// ListResponse is the body of every list endpoint.
type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
