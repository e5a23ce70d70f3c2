package controllers

import (
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/shortlinks/internal/controllers/middlewares"
)

type RouterParams struct {
	LinkService LinkShortener
	PingService ConnectionChecker
	// BaseURL nil - короткая ссылка строится от Scheme://Host запроса
	BaseURL *url.URL
	Logger  *logrus.Logger
}

func SetupRouter(params RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware(params.Logger))
	r.Use(middlewares.GzipMiddleware())

	linksController := NewLinksController(params.LinkService, params.BaseURL)
	pingController := NewPingController(params.PingService)

	r.GET("/", linksController.Index)
	// статические пути верхнего уровня должны быть в services.reservedKeys
	r.GET("/ping", pingController.Ping)
	r.GET("/create_url", linksController.CreateFromQuery)
	r.GET("/:key", linksController.Redirect)

	api := r.Group("/api")
	api.POST("/shorten", linksController.Shorten)
	api.GET("/links/:key", linksController.Show)
	return r
}
