package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"procurely/cache"
	"procurely/common"
	"procurely/models"
	"procurely/store"
)

type AdminModule struct {
	stores   *store.Stores
	sessions *SessionManager
	cache    *cache.QueryCache
	now      func() time.Time
}

func NewAdminModule(stores *store.Stores, sessions *SessionManager, qc *cache.QueryCache) *AdminModule {
	return &AdminModule{
		stores:   stores,
		sessions: sessions,
		cache:    qc,
		now:      time.Now,
	}
}

var (
	contactFilters = []common.FilterParam{
		{Param: "email", Column: "email"},
	}
	applicationFilters = []common.FilterParam{
		{Param: "status", Column: "status"},
		{Param: "job_id", Column: "job_id", Kind: common.IntFilter},
	}
)

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/admin/login", a.loginPost)

	adminGroup := router.Group("/api/admin")
	adminGroup.Use(a.requireAuth)
	{
		adminGroup.POST("/logout", a.logout)
		adminGroup.GET("/me", a.me)

		adminGroup.GET("/contacts/export", a.exportContacts)
		contacts := a.contacts()
		contacts.registerRead(adminGroup, "/contacts")
		adminGroup.DELETE("/contacts/:id", contacts.delete)

		a.jobs().register(adminGroup, "/jobs")
		adminGroup.GET("/jobs/:id/applications", a.jobApplications)

		adminGroup.GET("/applications/export", a.exportApplications)
		adminGroup.PATCH("/applications/:id/status", a.updateApplicationStatus)
		a.applications().register(adminGroup, "/applications")

		a.catalogues().register(adminGroup, "/catalogues")
		a.products().register(adminGroup, "/products")
		a.media().register(adminGroup, "/media")
		a.settings().register(adminGroup, "/settings")
		a.users().register(adminGroup, "/users")
		a.admins().register(adminGroup, "/admins")
	}
}

func (a *AdminModule) invalidate(entities ...string) func() {
	return func() {
		if a.cache != nil {
			a.cache.Invalidate(entities...)
		}
	}
}

func (a *AdminModule) contacts() *resource[models.ContactSubmission, struct{}] {
	return &resource[models.ContactSubmission, struct{}]{
		repo:    a.stores.Contacts,
		filters: contactFilters,
	}
}

func (a *AdminModule) jobs() *resource[models.Job, models.JobPatch] {
	return &resource[models.Job, models.JobPatch]{
		repo: a.stores.Jobs,
		filters: []common.FilterParam{
			{Param: "is_active", Column: "is_active", Kind: common.BoolFilter},
			{Param: "department", Column: "department"},
			{Param: "type", Column: "type"},
			{Param: "location", Column: "location"},
		},
		invalidate: a.invalidate(cache.Jobs),
		hide:       func() *models.JobPatch { return &models.JobPatch{IsActive: ptr(false)} },
	}
}

func (a *AdminModule) applications() *resource[models.JobApplication, models.JobApplicationPatch] {
	return &resource[models.JobApplication, models.JobApplicationPatch]{
		repo:    a.stores.Applications,
		filters: applicationFilters,
	}
}

func (a *AdminModule) catalogues() *resource[models.Catalogue, models.CataloguePatch] {
	return &resource[models.Catalogue, models.CataloguePatch]{
		repo: a.stores.Catalogues,
		filters: []common.FilterParam{
			{Param: "category", Column: "category"},
			{Param: "is_active", Column: "is_active", Kind: common.BoolFilter},
		},
		invalidate: a.invalidate(cache.Catalogues),
		hide:       func() *models.CataloguePatch { return &models.CataloguePatch{IsActive: ptr(false)} },
	}
}

func (a *AdminModule) products() *resource[models.Product, models.ProductPatch] {
	return &resource[models.Product, models.ProductPatch]{
		repo: a.stores.Products,
		filters: []common.FilterParam{
			{Param: "category", Column: "category"},
			{Param: "subcategory", Column: "subcategory"},
			{Param: "is_active", Column: "is_active", Kind: common.BoolFilter},
		},
		invalidate: a.invalidate(cache.Products),
		hide:       func() *models.ProductPatch { return &models.ProductPatch{IsActive: ptr(false)} },
	}
}

func (a *AdminModule) media() *resource[models.MediaContent, models.MediaContentPatch] {
	return &resource[models.MediaContent, models.MediaContentPatch]{
		repo: a.stores.Media,
		filters: []common.FilterParam{
			{Param: "type", Column: "type"},
			{Param: "is_published", Column: "is_published", Kind: common.BoolFilter},
		},
		invalidate:   a.invalidate(cache.Media),
		beforeUpdate: a.stampPublished,
		hide:         func() *models.MediaContentPatch { return &models.MediaContentPatch{IsPublished: ptr(false)} },
	}
}

// stampPublished sets publishedAt when an update publishes a row that has
// never been published.
func (a *AdminModule) stampPublished(c *gin.Context, id int, patch *models.MediaContentPatch) error {
	if patch.IsPublished == nil || !*patch.IsPublished || patch.PublishedAt != nil {
		return nil
	}

	current, err := a.stores.Media.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}
	if current.PublishedAt == nil {
		now := a.now()
		patch.PublishedAt = &now
	}
	return nil
}

func (a *AdminModule) settings() *resource[models.SiteSetting, models.SiteSettingPatch] {
	return &resource[models.SiteSetting, models.SiteSettingPatch]{
		repo: a.stores.Settings,
		filters: []common.FilterParam{
			{Param: "type", Column: "type"},
			{Param: "key", Column: "key"},
		},
		invalidate: a.invalidate(cache.Settings),
	}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

func (a *AdminModule) users() *resource[models.User, models.UserPatch] {
	return &resource[models.User, models.UserPatch]{
		repo: a.stores.Users,
		decode: func(c *gin.Context) (*models.User, error) {
			var req createUserRequest
			if err := common.BindJSON(c, &req); err != nil {
				return nil, err
			}
			user := &models.User{Username: req.Username}
			if err := user.SetPassword(req.Password); err != nil {
				return nil, err
			}
			return user, nil
		},
		decodePatch: func(c *gin.Context) (*models.UserPatch, error) {
			var req updateUserRequest
			if err := common.BindJSON(c, &req); err != nil {
				return nil, err
			}
			patch := &models.UserPatch{Username: req.Username}
			if req.Password != nil {
				hash, err := models.HashPassword(*req.Password)
				if err != nil {
					return nil, err
				}
				patch.PasswordHash = &hash
			}
			return patch, nil
		},
	}
}

type createAdminRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=200"`
	Role     string `json:"role" binding:"omitempty,max=50"`
	Password string `json:"password" binding:"required,min=8"`
}

type updateAdminRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

func (a *AdminModule) admins() *resource[models.AdminUser, models.AdminUserPatch] {
	return &resource[models.AdminUser, models.AdminUserPatch]{
		repo:    a.stores.Admins,
		filters: []common.FilterParam{{Param: "role", Column: "role"}},
		decode: func(c *gin.Context) (*models.AdminUser, error) {
			var req createAdminRequest
			if err := common.BindJSON(c, &req); err != nil {
				return nil, err
			}
			admin := &models.AdminUser{Email: req.Email, Name: req.Name, Role: req.Role}
			if err := admin.SetPassword(req.Password); err != nil {
				return nil, err
			}
			return admin, nil
		},
		decodePatch: func(c *gin.Context) (*models.AdminUserPatch, error) {
			var req updateAdminRequest
			if err := common.BindJSON(c, &req); err != nil {
				return nil, err
			}
			patch := &models.AdminUserPatch{Email: req.Email, Name: req.Name, Role: req.Role}
			if req.Password != nil {
				hash, err := models.HashPassword(*req.Password)
				if err != nil {
					return nil, err
				}
				patch.PasswordHash = &hash
			}
			return patch, nil
		},
		beforeDelete: func(c *gin.Context, id int) error {
			if me := currentAdmin(c); me != nil && me.ID == id {
				return store.NewValidationError("id", "cannot delete your own account")
			}
			return nil
		},
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending shortlisted rejected interviewed"`
}

func (a *AdminModule) updateApplicationStatus(c *gin.Context) {
	id, err := common.ParseID(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req statusRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	application, err := a.stores.Applications.Update(c.Request.Context(), id, &models.JobApplicationPatch{Status: &req.Status})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (a *AdminModule) jobApplications(c *gin.Context) {
	id, err := common.ParseID(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if _, err := a.stores.Jobs.Get(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}

	q, err := common.ListQuery(c, applicationFilters[:1])
	if err != nil {
		common.RespondError(c, err)
		return
	}
	q.Filters["job_id"] = id

	rows, total, err := a.stores.Applications.List(c.Request.Context(), q)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.ListResponse[models.JobApplication]{Items: rows, Total: total})
}

func ptr[V any](v V) *V {
	return &v
}
