package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/watermelon1024/video-downloader-bot/internal/api/handlers"
	"github.com/watermelon1024/video-downloader-bot/internal/api/middleware"
	"github.com/watermelon1024/video-downloader-bot/internal/errorlog"
	"github.com/watermelon1024/video-downloader-bot/internal/service"
)

type RouterConfig struct {
	JWTSecret     string
	JWTExpiry     time.Duration
	AdminUsername string
	AdminPassword string
	MessageLimit  int
	Svc           *service.DownloadService
	Store         *errorlog.Store
}

func SetupRouter(e *echo.Echo, cfg RouterConfig) error {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/api/v1")
	config := huma.DefaultConfig("Video Downloader API", "1.0.0")
	config.Servers = []*huma.Server{{URL: "/api/v1"}}
	config.Info.Description = "Submit a media URL, receive a transcoded file or an error reference."
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"BearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "JWT Bearer token",
		},
	}

	handlers.InitErrors()
	api := humaecho.NewWithGroup(e, v1, config)

	authMw := middleware.Auth(cfg.JWTSecret)
	adminMw := middleware.AdminOnly()

	authHandler, err := handlers.NewAuthHandler(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return err
	}
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login and get JWT token",
		Tags:        []string{"Auth"},
	}, authHandler.Login)

	downloadsHandler := handlers.NewDownloadsHandler(cfg.Svc)
	huma.Register(api, huma.Operation{
		OperationID:   "downloads-add",
		Method:        http.MethodPost,
		Path:          "/downloads",
		Summary:       "Download and transcode a media URL",
		Tags:          []string{"Downloads"},
		Security:      []map[string][]string{{"BearerAuth": {}}},
		Middlewares:   huma.Middlewares{authMw},
		DefaultStatus: http.StatusCreated,
	}, downloadsHandler.Add)

	errorsHandler := handlers.NewErrorsHandler(cfg.Store, cfg.MessageLimit)
	huma.Register(api, huma.Operation{
		OperationID: "errors-get",
		Method:      http.MethodGet,
		Path:        "/errors/{id}",
		Summary:     "Retrieve stored failure details by reference id",
		Tags:        []string{"Errors"},
		Security:    []map[string][]string{{"BearerAuth": {}}},
		Middlewares: huma.Middlewares{authMw, adminMw},
	}, errorsHandler.Get)

	return nil
}
