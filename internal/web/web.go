package web

import (
	"context"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/parkbrowse/parkbrowse/internal/browser"
	"github.com/parkbrowse/parkbrowse/internal/settings"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Web serves the live server list as a local JSON API.
type Web struct {
	*http.Server
	Engine *gin.Engine
}

func New(logger *zap.Logger, userSettings settings.UserSettings, serverBrowser *browser.Browser) *Web {
	engine := createRouter(logger.Named("api"), userSettings.RunMode)
	setupRoutes(engine, serverBrowser)

	httpServer := &http.Server{
		Addr:         userSettings.HTTPListenAddr,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return &Web{
		Server: httpServer,
		Engine: engine,
	}
}

// Start serves until the listener fails or the server is shut down.
func (w *Web) Start(ctx context.Context) error {
	w.BaseContext = func(_ net.Listener) context.Context {
		return ctx
	}

	if errServe := w.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
		return errors.Wrap(errServe, "HTTP server returned error")
	}

	return nil
}

func createRouter(logger *zap.Logger, mode settings.RunMode) *gin.Engine {
	switch mode {
	case settings.ModeRelease:
		gin.SetMode(gin.ReleaseMode)
	case settings.ModeTest:
		gin.SetMode(gin.TestMode)
	case settings.ModeDebug:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/servers"},
	}))

	engine.Use(ginzap.RecoveryWithZap(logger, true))

	_ = engine.SetTrustedProxies(nil)

	return engine
}

func setupRoutes(engine *gin.Engine, serverBrowser *browser.Browser) {
	engine.GET("/servers", getServers(serverBrowser))
	engine.GET("/stats", getStats(serverBrowser))
	engine.POST("/refresh", postRefresh(serverBrowser))
	engine.POST("/favourites/:address", updateFavourite(serverBrowser, true))
	engine.DELETE("/favourites/:address", updateFavourite(serverBrowser, false))
}

func responseErr(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, data)
}

func responseOK(ctx *gin.Context, status int, data any) {
	if data == nil {
		data = []string{}
	}

	ctx.JSON(status, data)
}
