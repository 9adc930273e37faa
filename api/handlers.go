package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nisimpson/bizdir"
	"go.uber.org/zap"
)

// maxPageLimit is the largest page size accepted by ?limit=.
const maxPageLimit = 1000

type handler struct {
	store   BusinessStore
	logger  *zap.Logger
	metrics *Metrics
}

// CreateResponse is the body of a successful create.
type CreateResponse struct {
	Success  string          `json:"success"`
	Business bizdir.Business `json:"business"`
}

// DeleteResponse is the body of a successful delete.
type DeleteResponse struct {
	Success string `json:"success"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *handler) list(c *gin.Context) {
	limitParam, cursor := c.Query("limit"), c.Query("cursor")
	if limitParam == "" && cursor == "" {
		result, err := h.store.Scan(c.Request.Context())
		if err != nil {
			h.fail(c, http.StatusInternalServerError, MsgFetchFailed, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	var limit int64
	if limitParam != "" {
		var err error
		limit, err = strconv.ParseInt(limitParam, 10, 32)
		if err != nil || limit < 1 || limit > maxPageLimit {
			h.fail(c, http.StatusBadRequest, "limit must be an integer from 1 to 1000", err)
			return
		}
	}

	page, err := h.store.ScanPage(c.Request.Context(), cursor, int32(limit))
	switch {
	case errors.Is(err, bizdir.ErrInvalidCursor):
		h.fail(c, http.StatusBadRequest, err.Error(), err)
	case err != nil:
		h.fail(c, http.StatusInternalServerError, MsgFetchFailed, err)
	default:
		c.JSON(http.StatusOK, page)
	}
}

func (h *handler) create(c *gin.Context) {
	var in bizdir.CreateInput

	// Bodies that are not JSON are ignored, leaving both fields empty
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
			h.fail(c, http.StatusBadRequest, MsgBadRequest, err)
			return
		}
	}

	b, err := h.store.Create(c.Request.Context(), in)
	switch {
	case errors.Is(err, bizdir.ErrInvalidBusiness):
		h.fail(c, http.StatusBadRequest, err.Error(), err)
	case err != nil:
		h.fail(c, http.StatusInternalServerError, MsgCreateFailed, err)
	default:
		h.metrics.created.Inc()
		c.JSON(http.StatusOK, CreateResponse{Success: MsgCreated, Business: b})
	}
}

func (h *handler) delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, http.StatusInternalServerError, MsgDeleteFailed, err)
		return
	}

	h.metrics.deleted.Inc()
	c.JSON(http.StatusOK, DeleteResponse{Success: MsgDeleted})
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) fail(c *gin.Context, status int, msg string, err error) {
	h.logger.Error(msg,
		zap.String("request_id", c.GetString(RequestIDKey)),
		zap.Int("status", status),
		zap.Error(err))
	c.JSON(status, ErrorResponse{Error: msg})
}
