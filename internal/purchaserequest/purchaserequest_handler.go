package purchaserequest

import (
	"net/http"
	"strconv"

	"go-compras/internal/shared/apperror"
	"go-compras/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("purchaserequest.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("purchaserequest.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("purchase request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	userID := c.GetString("user_id")
	h.logger.Debug("http create purchase request", zap.String("user_id", userID))
	var req CreatePurchaseRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create purchase request validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	userID := c.GetString("user_id")

	resp, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")
	h.logger.Debug("http get purchase request by id",
		zap.String("user_id", userID),
		zap.String("purchase_request_id", id),
	)

	resp, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")
	h.logger.Debug("http update purchase request",
		zap.String("user_id", userID),
		zap.String("purchase_request_id", id),
	)
	var req UpdatePurchaseRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http update purchase request validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	userID := c.GetString("user_id")
	actorEmail := c.GetString("user_email")
	id := c.Param("id")
	h.logger.Debug("http approve purchase request",
		zap.String("user_id", userID),
		zap.String("purchase_request_id", id),
	)

	resp, err := h.service.Approve(c.Request.Context(), userID, actorEmail, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	actorEmail := c.GetString("user_email")
	id := c.Param("id")
	h.logger.Debug("http delete purchase request",
		zap.String("user_id", userID),
		zap.String("purchase_request_id", id),
	)

	if err := h.service.SoftDelete(c.Request.Context(), userID, actorEmail, id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
