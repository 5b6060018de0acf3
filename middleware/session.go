package middleware

import (
	"net/http"
	"strings"

	"github.com/vishalmadargaon/Flight-delay-predictor/config"
	"github.com/vishalmadargaon/Flight-delay-predictor/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
)

// Sessions reads and writes the signed session cookie.
type Sessions struct {
	auth *services.AuthService
	cfg  config.SessionConfig
	log  *zap.Logger
}

func NewSessions(auth *services.AuthService, cfg config.SessionConfig, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{auth: auth, cfg: cfg, log: log.With(zap.String("middleware", "sessions"))}
}

// Issue starts an authenticated session for the user.
func (s *Sessions) Issue(c *gin.Context, userID uint, username string) error {
	token, err := s.auth.GenerateToken(userID, username)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.CookieName, token, int(s.auth.TTL().Seconds()), "/", "", s.cfg.Secure, true)
	c.Set(UserIDKey, userID)
	c.Set(UsernameKey, username)
	return nil
}

// Clear ends the session. Safe to call when anonymous.
func (s *Sessions) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.CookieName, "", -1, "/", "", s.cfg.Secure, true)
	delete(c.Keys, UserIDKey)
	delete(c.Keys, UsernameKey)
}

// Load attaches the session user to the context when the cookie is valid.
// Invalid or expired cookies are treated as anonymous.
func (s *Sessions) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(s.cfg.CookieName)
		if err == nil && token != "" {
			claims, err := s.auth.ValidateToken(token)
			if err != nil {
				s.log.Debug("ignoring invalid session cookie", zap.Error(err))
			} else {
				c.Set(UserIDKey, claims.UserID)
				c.Set(UsernameKey, claims.Username)
			}
		}
		c.Next()
	}
}

// Require stops anonymous requests. Pages redirect to /login, JSON and
// websocket routes answer 401.
func (s *Sessions) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/ws/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// CurrentUser returns the session user set by Load or Issue.
func CurrentUser(c *gin.Context) (uint, string, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, "", false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return 0, "", false
	}
	return id, c.GetString(UsernameKey), true
}
