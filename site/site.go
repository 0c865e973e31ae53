package site

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"procurely/cache"
	"procurely/common"
	"procurely/email"
	"procurely/metrics"
	"procurely/models"
	"procurely/store"
)

// SiteModule serves the public, read-mostly API: visible listings, site
// settings and the two public forms.
type SiteModule struct {
	stores   *store.Stores
	cache    *cache.QueryCache
	notifier *email.EmailService
}

func NewSiteModule(stores *store.Stores, qc *cache.QueryCache, notifier *email.EmailService) *SiteModule {
	return &SiteModule{stores: stores, cache: qc, notifier: notifier}
}

var (
	jobFilters = []common.FilterParam{
		{Param: "department", Column: "department"},
		{Param: "type", Column: "type"},
		{Param: "location", Column: "location"},
	}
	catalogueFilters = []common.FilterParam{
		{Param: "category", Column: "category"},
	}
	productFilters = []common.FilterParam{
		{Param: "category", Column: "category"},
		{Param: "subcategory", Column: "subcategory"},
	}
	mediaFilters = []common.FilterParam{
		{Param: "type", Column: "type"},
	}
)

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")

	jobs := api.Group("/jobs", cache.Middleware(s.cache, cache.Jobs))
	jobs.GET("", s.listJobs)
	jobs.GET("/:id", s.getJob)

	catalogues := api.Group("/catalogues", cache.Middleware(s.cache, cache.Catalogues))
	catalogues.GET("", s.listCatalogues)
	catalogues.GET("/:id", s.getCatalogue)

	products := api.Group("/products", cache.Middleware(s.cache, cache.Products))
	products.GET("", s.listProducts)
	products.GET("/:id", s.getProduct)

	media := api.Group("/media", cache.Middleware(s.cache, cache.Media))
	media.GET("", s.listMedia)
	media.GET("/:id", s.getMedia)

	api.GET("/settings/:key", cache.Middleware(s.cache, cache.Settings), s.getSetting)

	api.POST("/contact", s.submitContact)
	api.POST("/applications", s.submitApplication)
}

// listVisible lists the rows of repo whose visibility column is true.
func listVisible[T any](c *gin.Context, repo *store.Repository[T], params []common.FilterParam, visible string) {
	q, err := common.ListQuery(c, params)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	q.Filters[visible] = true

	rows, total, err := repo.List(c.Request.Context(), q)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.ListResponse[T]{Items: rows, Total: total})
}

// getVisible loads the row named by :id. Hidden rows are reported as not
// found.
func getVisible[T any](c *gin.Context, repo *store.Repository[T], visible func(*T) bool) (*T, bool) {
	id, err := common.ParseID(c)
	if err != nil {
		common.RespondError(c, err)
		return nil, false
	}

	row, err := repo.Get(c.Request.Context(), id)
	if err == nil && !visible(row) {
		err = store.ErrNotFound
	}
	if err != nil {
		common.RespondError(c, err)
		return nil, false
	}
	return row, true
}

func (s *SiteModule) listJobs(c *gin.Context) {
	listVisible(c, s.stores.Jobs, jobFilters, "is_active")
}

func (s *SiteModule) getJob(c *gin.Context) {
	if job, ok := getVisible(c, s.stores.Jobs, func(j *models.Job) bool { return j.IsActive }); ok {
		c.JSON(http.StatusOK, job)
	}
}

func (s *SiteModule) listCatalogues(c *gin.Context) {
	listVisible(c, s.stores.Catalogues, catalogueFilters, "is_active")
}

func (s *SiteModule) getCatalogue(c *gin.Context) {
	if catalogue, ok := getVisible(c, s.stores.Catalogues, func(r *models.Catalogue) bool { return r.IsActive }); ok {
		c.JSON(http.StatusOK, catalogue)
	}
}

func (s *SiteModule) listProducts(c *gin.Context) {
	listVisible(c, s.stores.Products, productFilters, "is_active")
}

func (s *SiteModule) getProduct(c *gin.Context) {
	if product, ok := getVisible(c, s.stores.Products, func(r *models.Product) bool { return r.IsActive }); ok {
		c.JSON(http.StatusOK, product)
	}
}

func (s *SiteModule) listMedia(c *gin.Context) {
	listVisible(c, s.stores.Media, mediaFilters, "is_published")
}

type mediaDetail struct {
	*models.MediaContent
	ContentHTML string `json:"contentHtml"`
}

func (s *SiteModule) getMedia(c *gin.Context) {
	media, ok := getVisible(c, s.stores.Media, func(r *models.MediaContent) bool { return r.IsPublished })
	if !ok {
		return
	}

	c.JSON(http.StatusOK, mediaDetail{
		MediaContent: media,
		ContentHTML:  renderMarkdown(media.Content),
	})
}

func (s *SiteModule) getSetting(c *gin.Context) {
	setting, err := s.stores.SettingByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, setting)
}

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"omitempty,max=50"`
	Company string `json:"company" binding:"omitempty,max=200"`
	Message string `json:"message" binding:"required"`
}

func (s *SiteModule) submitContact(c *gin.Context) {
	var req contactRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	submission := &models.ContactSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Message: req.Message,
	}
	if err := s.stores.Contacts.Create(c.Request.Context(), submission); err != nil {
		common.RespondError(c, err)
		return
	}

	metrics.RecordFormSubmission("contact")
	if err := s.notifier.NotifyContact(submission); err != nil {
		common.Logger(c).Warn("contact notification failed", zap.Int("contact_id", submission.ID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, submission)
}

type applicationRequest struct {
	JobID       int    `json:"jobId" binding:"required,gt=0"`
	Name        string `json:"name" binding:"required,max=200"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"omitempty,max=50"`
	ResumeURL   string `json:"resumeUrl" binding:"omitempty,url"`
	CoverLetter string `json:"coverLetter"`
}

func (s *SiteModule) submitApplication(c *gin.Context) {
	var req applicationRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	job, err := s.stores.Jobs.Get(c.Request.Context(), req.JobID)
	if errors.Is(err, store.ErrNotFound) {
		common.RespondError(c, store.NewValidationError("jobId", "job does not exist"))
		return
	}
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if !job.IsActive {
		common.RespondError(c, store.NewValidationError("jobId", "job is not accepting applications"))
		return
	}

	application := &models.JobApplication{
		JobID:       job.ID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		ResumeURL:   req.ResumeURL,
		CoverLetter: req.CoverLetter,
		Status:      models.StatusPending,
	}
	if err := s.stores.Applications.Create(c.Request.Context(), application); err != nil {
		common.RespondError(c, err)
		return
	}

	metrics.RecordFormSubmission("application")
	if err := s.notifier.NotifyApplication(application, job); err != nil {
		common.Logger(c).Warn("application notification failed", zap.Int("application_id", application.ID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, application)
}
