package links

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/corvell/imagetier/api/common"
	"github.com/corvell/imagetier/api/middleware"
	"github.com/corvell/imagetier/cache"
	"github.com/corvell/imagetier/internal/access"
	linkSvc "github.com/corvell/imagetier/internal/links"
	"github.com/corvell/imagetier/storage"
	"github.com/gin-gonic/gin"
)

const redeemCacheTTL = 10 * time.Minute

// Handler 临时链接处理器
type Handler struct {
	service    *linkSvc.Service
	authorizer *access.Authorizer
	storage    storage.Provider
	cache      cache.Provider
}

// NewHandler 创建临时链接处理器
func NewHandler(service *linkSvc.Service, authorizer *access.Authorizer, provider storage.Provider, cacheProvider cache.Provider) *Handler {
	return &Handler{
		service:    service,
		authorizer: authorizer,
		storage:    provider,
		cache:      cacheProvider,
	}
}

type mintLinkRequest struct {
	ImageID    uint  `json:"image_id" binding:"required"`
	ExpireTime int64 `json:"expire_time" binding:"required"`
}

// MintLink 为自己的图片签发一条限时公开链接
func (h *Handler) MintLink(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusForbidden, "Not authenticated")
		return
	}

	var req mintLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	caps, err := h.authorizer.CapabilitiesFor(userID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to resolve permissions")
		return
	}

	result, err := h.service.Mint(req.ImageID, req.ExpireTime, userID, caps)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrDenied):
			common.RespondError(c, http.StatusForbidden, "Access denied")
		case errors.Is(err, linkSvc.ErrImageNotFound):
			common.RespondError(c, http.StatusNotFound, "Image not found")
		case errors.Is(err, linkSvc.ErrTTLOutOfRange):
			common.RespondError(c, http.StatusBadRequest, err.Error())
		default:
			common.RespondError(c, http.StatusInternalServerError, "Failed to create temporary link")
		}
		return
	}

	common.RespondCreated(c, result)
}

// RedeemLink 兑换临时链接并回送图片内容
// 公开端点，无需认证；过期链接回 423，记录不删除
func (h *Handler) RedeemLink(c *gin.Context) {
	image, err := h.service.Redeem(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, linkSvc.ErrLinkNotFound), errors.Is(err, linkSvc.ErrImageNotFound):
			common.RespondError(c, http.StatusNotFound, "Link not found")
		case errors.Is(err, linkSvc.ErrLinkExpired):
			common.RespondError(c, http.StatusLocked, "Link has expired")
		default:
			common.RespondError(c, http.StatusInternalServerError, "Failed to resolve link")
		}
		return
	}

	cacheKey := cache.ImageBytesKey(image.Identifier)
	if data, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
		c.Data(http.StatusOK, image.MimeType, data)
		return
	}

	reader, err := h.storage.GetWithContext(c.Request.Context(), image.StoragePath)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to read image")
		return
	}
	if closer, ok := reader.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to read image")
		return
	}

	data := buf.Bytes()
	_ = h.cache.Set(c.Request.Context(), cacheKey, data, redeemCacheTTL)
	c.Data(http.StatusOK, image.MimeType, data)
}
