package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"procurely/common"
	"procurely/store"
)

// resource serves the admin CRUD endpoints of one entity. T is the model and
// P its patch type.
type resource[T any, P any] struct {
	repo    *store.Repository[T]
	filters []common.FilterParam

	// invalidate drops public cache entries after a write.
	invalidate func()

	// decode reads the body of a create request. The default binds T.
	decode func(c *gin.Context) (*T, error)
	// decodePatch reads the body of an update request. The default binds P.
	decodePatch func(c *gin.Context) (*P, error)

	beforeUpdate func(c *gin.Context, id int, patch *P) error
	beforeDelete func(c *gin.Context, id int) error

	// hide, when set, turns DELETE into an update applying the returned
	// patch.
	hide func() *P
}

func (r *resource[T, P]) register(g *gin.RouterGroup, path string) {
	r.registerRead(g, path)
	g.POST(path, r.create)
	g.PUT(path+"/:id", r.update)
	g.PATCH(path+"/:id", r.update)
	g.DELETE(path+"/:id", r.delete)
}

func (r *resource[T, P]) registerRead(g *gin.RouterGroup, path string) {
	g.GET(path, r.list)
	g.GET(path+"/:id", r.get)
}

func (r *resource[T, P]) list(c *gin.Context) {
	q, err := common.ListQuery(c, r.filters)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	rows, total, err := r.repo.List(c.Request.Context(), q)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.ListResponse[T]{Items: rows, Total: total})
}

func (r *resource[T, P]) get(c *gin.Context) {
	id, err := common.ParseID(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	row, err := r.repo.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

func (r *resource[T, P]) create(c *gin.Context) {
	decode := r.decode
	if decode == nil {
		decode = bindBody[T]
	}

	row, err := decode(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := r.repo.Create(c.Request.Context(), row); err != nil {
		common.RespondError(c, err)
		return
	}
	r.changed()

	c.JSON(http.StatusCreated, row)
}

func (r *resource[T, P]) update(c *gin.Context) {
	id, err := common.ParseID(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	decode := r.decodePatch
	if decode == nil {
		decode = bindBody[P]
	}

	patch, err := decode(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if r.beforeUpdate != nil {
		if err := r.beforeUpdate(c, id, patch); err != nil {
			common.RespondError(c, err)
			return
		}
	}

	row, err := r.repo.Update(c.Request.Context(), id, patch)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	r.changed()

	c.JSON(http.StatusOK, row)
}

func (r *resource[T, P]) delete(c *gin.Context) {
	id, err := common.ParseID(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if r.beforeDelete != nil {
		if err := r.beforeDelete(c, id); err != nil {
			common.RespondError(c, err)
			return
		}
	}

	if r.hide != nil {
		row, err := r.repo.Update(c.Request.Context(), id, r.hide())
		if err != nil {
			common.RespondError(c, err)
			return
		}
		r.changed()
		c.JSON(http.StatusOK, row)
		return
	}

	if err := r.repo.Delete(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}
	r.changed()

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (r *resource[T, P]) changed() {
	if r.invalidate != nil {
		r.invalidate()
	}
}

func bindBody[V any](c *gin.Context) (*V, error) {
	v := new(V)
	if err := common.BindJSON(c, v); err != nil {
		return nil, err
	}
	return v, nil
}
