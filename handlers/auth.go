package handlers

import (
	"errors"
	"net/http"

	"github.com/vishalmadargaon/Flight-delay-predictor/middleware"
	"github.com/vishalmadargaon/Flight-delay-predictor/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts *services.AccountService
	sessions *middleware.Sessions
	log      *zap.Logger
}

func NewAuthHandler(accounts *services.AccountService, sessions *middleware.Sessions, log *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, log: log}
}

type RegisterRequest struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		AddFlash(c, FlashError, "Error: "+err.Error())
		render(c, http.StatusBadRequest, "register.html", gin.H{"Title": "Register"})
		return
	}

	_, err := h.accounts.CreateUser(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrUsernameExists):
		AddFlash(c, FlashError, "Username already exists!")
		render(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
		return
	case err != nil:
		h.log.Error("register failed", zap.String("username", req.Username), zap.Error(err))
		AddFlash(c, FlashError, "Registration failed! Please try again.")
		render(c, http.StatusInternalServerError, "register.html", gin.H{"Title": "Register"})
		return
	}

	AddFlash(c, FlashSuccess, "Registration successful! Please login.")
	redirect(c, "/login")
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		AddFlash(c, FlashError, "Invalid credentials!")
		render(c, http.StatusOK, "login.html", gin.H{"Title": "Login"})
		return
	}

	user, err := h.accounts.VerifyUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			h.log.Error("login lookup failed", zap.String("username", req.Username), zap.Error(err))
		}
		AddFlash(c, FlashError, "Invalid credentials!")
		render(c, http.StatusOK, "login.html", gin.H{"Title": "Login"})
		return
	}

	if err := h.sessions.Issue(c, user.ID, user.Username); err != nil {
		h.log.Error("issue session failed", zap.Uint("user_id", user.ID), zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	AddFlash(c, FlashSuccess, "Login successful!")
	redirect(c, "/dashboard")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	AddFlash(c, FlashSuccess, "Logged out successfully!")
	redirect(c, "/")
}
