package handlers

import (
	"fmt"
	"net/http"

	"github.com/vishalmadargaon/Flight-delay-predictor/config"
	"github.com/vishalmadargaon/Flight-delay-predictor/middleware"
	"github.com/vishalmadargaon/Flight-delay-predictor/services"
	"github.com/vishalmadargaon/Flight-delay-predictor/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Accounts    *services.AccountService
	Predictions *services.PredictionService
	Cache       *services.CacheService
	Sessions    *middleware.Sessions
	Engine      DelayPredictor
	Log         *zap.Logger
}

func NewRouter(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Cache == nil {
		deps.Cache = services.DisabledCache()
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(deps.Log),
		middleware.Metrics(),
		middleware.SetupCORS(cfg.CORS),
		deps.Sessions.Load(),
	)

	auth := NewAuthHandler(deps.Accounts, deps.Sessions, deps.Log)
	predictions := NewPredictionHandler(deps.Predictions, deps.Engine, deps.Log)

	router.StaticFS("/static", http.FS(web.Static()))
	router.GET("/health", Health(deps.Engine))
	router.GET("/", Index)
	router.GET("/register", auth.RegisterForm)
	router.POST("/register", auth.Register)
	router.GET("/login", auth.LoginForm)
	router.POST("/login", auth.Login)
	router.GET("/logout", auth.Logout)

	gated := router.Group("/", deps.Sessions.Require())
	{
		gated.GET("/dashboard", predictions.Dashboard)
		gated.GET("/input", predictions.InputForm)
		gated.POST("/predict", predictions.Predict)
		gated.GET("/delete_prediction/:id", predictions.Delete)
		gated.GET("/api/predictions", predictions.List)
		gated.GET("/ws/predictions", LivePredictions(deps.Cache, deps.Log))
	}

	return router, nil
}
