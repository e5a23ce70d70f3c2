package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingController проверка доступности хранилища.
type PingController struct {
	conn ConnectionChecker
}

func NewPingController(conn ConnectionChecker) *PingController {
	return &PingController{conn: conn}
}

// Ping GET /ping. 200 `pong`, если хранилище отвечает, иначе 500.
func (c *PingController) Ping(ctx *gin.Context) {
	if c.conn == nil {
		ctx.String(http.StatusOK, "pong")
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), DefaultRequestTimeout)
	defer cancel()
	if err := c.conn.CheckConnection(pingCtx); err != nil {
		_ = ctx.Error(fmt.Errorf("ping error: %w", err))
		ctx.String(http.StatusInternalServerError, ErrInternal.Error())
		return
	}
	ctx.String(http.StatusOK, "pong")
}
