package admin

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"procurely/common"
	"procurely/metrics"
	"procurely/models"
	"procurely/store"
)

const sessionTokenKey = "admin_token"

// ErrInvalidCredentials is the only failure a login reports; it does not
// say whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Admin     *models.AdminUser `json:"admin"`
}

// Authenticate checks credentials and returns the matching admin.
func (a *AdminModule) Authenticate(c *gin.Context, email, password string) (*models.AdminUser, error) {
	admin, err := a.stores.AdminByEmail(c.Request.Context(), strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		models.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !models.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

func (a *AdminModule) loginPost(c *gin.Context) {
	var req loginRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	admin, err := a.Authenticate(c, req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		metrics.RecordLogin("failure")
		common.Logger(c).Info("admin login failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidCredentials.Error()})
		return
	}
	if err != nil {
		common.RespondError(c, err)
		return
	}

	token, expiresAt, err := a.sessions.Issue(admin)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionTokenKey, token)
	if err := session.Save(); err != nil {
		common.RespondError(c, err)
		return
	}

	metrics.RecordLogin("success")
	common.Logger(c).Info("admin logged in", zap.Int("admin_id", admin.ID))

	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt, Admin: admin})
}

func (a *AdminModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (a *AdminModule) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentAdmin(c))
}

// requireAuth accepts a bearer token or the token held in the session
// cookie, and loads the admin it names.
func (a *AdminModule) requireAuth(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		if v, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok {
			token = v
		}
	}

	if token == "" {
		abortUnauthorized(c)
		return
	}

	claims, err := a.sessions.Verify(token)
	if err != nil {
		common.Logger(c).Debug("rejected session token", zap.Error(err))
		abortUnauthorized(c)
		return
	}

	id, err := claims.AdminID()
	if err != nil {
		abortUnauthorized(c)
		return
	}

	admin, err := a.stores.Admins.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		abortUnauthorized(c)
		return
	}
	if err != nil {
		common.RespondError(c, err)
		c.Abort()
		return
	}

	c.Set("admin", admin)
	c.Next()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

func currentAdmin(c *gin.Context) *models.AdminUser {
	if v, ok := c.Get("admin"); ok {
		if admin, ok := v.(*models.AdminUser); ok {
			return admin
		}
	}
	return nil
}
