package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	middleware "taskboard.com/taskboard/internal/http/middlewares"
	"taskboard.com/taskboard/internal/ratelimit"
)

const AvatarURLPrefix = "/uploads/avatars"

type RouteOptions struct {
	Limiter        ratelimit.Limiter
	CORSOrigins    []string
	AvatarDir      string
	AvatarMaxBytes int64
	Log            *logrus.Logger
}

func Register(e *echo.Echo, h *Handler, opts RouteOptions) {
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler(opts.Log)

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	// room for the multipart envelope around the largest avatar
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dK", opts.AvatarMaxBytes/1024+1024)))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.Static(AvatarURLPrefix, opts.AvatarDir)

	api := e.Group("/api", middleware.RateLimiter(opts.Limiter, opts.Log))

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/login", h.Login)

	authenticated := middleware.Authenticate(h.authService)

	tasks := api.Group("/tasks", authenticated)
	tasks.GET("", h.ListTasks)
	tasks.POST("", h.CreateTask)
	tasks.GET("/:taskId", h.GetTask)
	tasks.PUT("/:taskId", h.UpdateTask)
	tasks.DELETE("/:taskId", h.DeleteTask)
	tasks.POST("/:taskId/assign", h.AssignTask, middleware.RequireAdmin())

	users := api.Group("/users", authenticated, middleware.RequireAdmin())
	users.GET("", h.ListUsers)
	users.PATCH("/:id/role", h.ChangeUserRole)
	users.DELETE("/:id", h.DeleteUser)

	profile := api.Group("/profile", authenticated)
	profile.GET("", h.GetProfile)
	profile.PUT("/avatar", h.UpdateAvatar)
	profile.DELETE("/avatar", h.RemoveAvatar)
}
