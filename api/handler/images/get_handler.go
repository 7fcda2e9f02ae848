package images

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/corvell/imagetier/api/common"
	"github.com/corvell/imagetier/api/middleware"
	"github.com/corvell/imagetier/cache"
	"github.com/gin-gonic/gin"
)

// 热内容缓存时长
const contentCacheTTL = 10 * time.Minute

// GetImage 返回原图元数据
// 属主与原图能力两个条件同时满足才放行，任一失败回 403
func (h *Handler) GetImage(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusForbidden, "Not authenticated")
		return
	}

	image, ok := h.loadImageByIdentifier(c)
	if !ok {
		return
	}

	if err := h.authorizer.AuthorizeOwnership(userID, image); err != nil {
		common.RespondError(c, http.StatusForbidden, "Access denied")
		return
	}

	caps, ok := h.requesterCapabilities(c, userID)
	if !ok {
		return
	}
	if err := h.authorizer.AuthorizeOriginal(caps); err != nil {
		common.RespondError(c, http.StatusForbidden, "Access denied")
		return
	}

	common.RespondSuccess(c, h.toImageResponse(image))
}

// GetImageFile 返回原图字节内容
// 授权规则与元数据端点一致
func (h *Handler) GetImageFile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusForbidden, "Not authenticated")
		return
	}

	image, ok := h.loadImageByIdentifier(c)
	if !ok {
		return
	}

	if err := h.authorizer.AuthorizeOwnership(userID, image); err != nil {
		common.RespondError(c, http.StatusForbidden, "Access denied")
		return
	}

	caps, ok := h.requesterCapabilities(c, userID)
	if !ok {
		return
	}
	if err := h.authorizer.AuthorizeOriginal(caps); err != nil {
		common.RespondError(c, http.StatusForbidden, "Access denied")
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
	_ = h.cache.Set(c.Request.Context(), cacheKey, data, contentCacheTTL)
	c.Data(http.StatusOK, image.MimeType, data)
}
