package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/services"
)

const usageText = "URL shortener. Create a link: GET /create_url?url=<target>[&custom=<key>] " +
	"or POST /api/shorten {\"url\": \"<target>\", \"custom\": \"<key>\"}. Open /<key> to follow it.\n"

type LinksController struct {
	linkService LinkShortener
	baseURL     *url.URL
}

func NewLinksController(linkService LinkShortener, baseURL *url.URL) *LinksController {
	return &LinksController{
		linkService: linkService,
		baseURL:     baseURL,
	}
}

// Index GET / краткая справка.
func (c *LinksController) Index(ctx *gin.Context) {
	ctx.String(http.StatusOK, usageText)
}

// CreateFromQuery GET /create_url?url=&custom= создание ссылки из параметров запроса.
// Отвечает текстом.
func (c *LinksController) CreateFromQuery(ctx *gin.Context) {
	rawURL := ctx.Query("url")
	customKey := strings.TrimSpace(ctx.Query("custom"))

	if strings.TrimSpace(rawURL) == "" {
		ctx.String(http.StatusBadRequest, msgMissingURL)
		return
	}

	link, err := c.create(ctx, rawURL, customKey)
	if err != nil {
		_ = ctx.Error(err)
		ctx.String(statusFromError(err), createErrorMessage(err, customKey))
		return
	}

	ctx.String(http.StatusCreated, "Created url: %s", c.getShortURL(ctx.Request, link.Key))
}

type shortenRequest struct {
	URL    string `json:"url"`
	Custom string `json:"custom"`
}

type shortenResponse struct {
	Result string `json:"result"`
	Key    string `json:"key"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Shorten POST /api/shorten принимает json `{"url": "...", "custom": "..."}`.
func (c *LinksController) Shorten(ctx *gin.Context) {
	var req shortenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(fmt.Errorf("bind shorten request: %w", err))
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: ErrBadRequest.Error()})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: msgMissingURL})
		return
	}

	customKey := strings.TrimSpace(req.Custom)
	link, err := c.create(ctx, req.URL, customKey)
	if err != nil {
		_ = ctx.Error(err)
		ctx.JSON(statusFromError(err), errorResponse{Error: createErrorMessage(err, customKey)})
		return
	}

	ctx.JSON(http.StatusCreated, shortenResponse{
		Result: c.getShortURL(ctx.Request, link.Key),
		Key:    link.Key,
	})
}

type linkResponse struct {
	ID  uint64 `json:"id"`
	Key string `json:"key"`
	URL string `json:"url"`
}

// Show GET /api/links/:key запись в json.
func (c *LinksController) Show(ctx *gin.Context) {
	link, err := c.resolve(ctx)
	if err != nil {
		_ = ctx.Error(err)
		ctx.JSON(statusFromError(err), errorResponse{Error: resolveErrorMessage(err)})
		return
	}
	ctx.JSON(http.StatusOK, linkResponse{ID: link.ID, Key: link.Key, URL: link.URL})
}

// Redirect GET /:key перенаправляет на целевую ссылку.
func (c *LinksController) Redirect(ctx *gin.Context) {
	link, err := c.resolve(ctx)
	if err != nil {
		_ = ctx.Error(err)
		ctx.String(statusFromError(err), resolveErrorMessage(err))
		return
	}
	ctx.Redirect(http.StatusFound, link.URL)
}

func (c *LinksController) create(ctx *gin.Context, rawURL, customKey string) (*models.Link, error) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), DefaultRequestTimeout)
	defer cancel()
	return c.linkService.Create(reqCtx, rawURL, customKey) //nolint:wrapcheck
}

func (c *LinksController) resolve(ctx *gin.Context) (*models.Link, error) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), DefaultRequestTimeout)
	defer cancel()
	return c.linkService.Resolve(reqCtx, ctx.Param("key")) //nolint:wrapcheck
}

// getShortURL вспомогательный метод который создает короткую ссылку.
func (c *LinksController) getShortURL(r *http.Request, key string) string {
	if c.baseURL != nil {
		return services.ShortURL(c.baseURL.String(), key)
	}
	var scheme = "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return services.ShortURL(fmt.Sprintf("%s://%s", scheme, r.Host), key)
}

func createErrorMessage(err error, customKey string) string {
	switch {
	case errors.Is(err, services.ErrKeyConflict):
		return fmt.Sprintf(msgKeyTaken, customKey)
	case errors.Is(err, services.ErrInvalidKey):
		return "Custom url may contain only latin letters and digits, up to 10 characters"
	case errors.Is(err, services.ErrInvalidURL):
		return "Invalid URL!"
	default:
		return ErrInternal.Error()
	}
}

func resolveErrorMessage(err error) string {
	if errors.Is(err, services.ErrRecordNotFound) {
		return ErrRecordNotFound.Error()
	}
	return ErrInternal.Error()
}
