package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"procurely/admin"
	"procurely/cache"
	"procurely/common"
	"procurely/email"
	"procurely/site"
	"procurely/store"
)

func newRouter(cfg *common.Config, stores *store.Stores, log *zap.Logger) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	router := common.NewEngine(log)

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("procurely-session", sessionStore))

	queryCache := cache.New(cfg.CacheSize, cfg.CacheTTL)

	adminModule := admin.NewAdminModule(stores, admin.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL), queryCache)
	adminModule.RegisterRoutes(router)

	siteModule := site.NewSiteModule(stores, queryCache, email.NewEmailService(cfg.SMTP))
	siteModule.RegisterRoutes(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := stores.Ping(c.Request.Context()); err != nil {
			common.Logger(c).Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
