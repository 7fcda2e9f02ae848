package images

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/corvell/imagetier/api/common"
	"github.com/corvell/imagetier/api/middleware"
	"github.com/corvell/imagetier/cache"
	imageSvc "github.com/corvell/imagetier/internal/image"
	"github.com/gin-gonic/gin"
)

// GetThumbnail 返回指定高度的缩略图，未命中时同步派生
// 高度白名单是唯一的授权谓词，属主关系在此端点不复查
func (h *Handler) GetThumbnail(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusForbidden, "Not authenticated")
		return
	}

	height, err := strconv.Atoi(c.Param("height"))
	if err != nil || height <= 0 {
		common.RespondError(c, http.StatusBadRequest, "Height must be a positive integer")
		return
	}

	image, ok := h.loadImageByIdentifier(c)
	if !ok {
		return
	}

	caps, ok := h.requesterCapabilities(c, userID)
	if !ok {
		return
	}
	if err := h.authorizer.AuthorizeHeight(caps, height); err != nil {
		common.RespondError(c, http.StatusForbidden, "Access denied")
		return
	}

	thumbnail, err := h.deriver.GetOrCreate(c.Request.Context(), image, height)
	if err != nil {
		if errors.Is(err, imageSvc.ErrUnsupportedFormat) {
			common.RespondError(c, http.StatusUnprocessableEntity, "Source image format cannot be derived")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to derive thumbnail")
		return
	}

	cacheKey := cache.ThumbnailBytesKey(thumbnail.Identifier)
	if data, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
		c.Data(http.StatusOK, thumbnail.MimeType, data)
		return
	}

	reader, err := h.storage.GetWithContext(c.Request.Context(), thumbnail.StoragePath)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to read thumbnail")
		return
	}
	if closer, ok := reader.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to read thumbnail")
		return
	}

	data := buf.Bytes()
	_ = h.cache.Set(c.Request.Context(), cacheKey, data, contentCacheTTL)
	c.Data(http.StatusOK, thumbnail.MimeType, data)
}
