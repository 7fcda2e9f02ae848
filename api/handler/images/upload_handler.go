package images

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/corvell/imagetier/api/common"
	"github.com/corvell/imagetier/api/middleware"
	"github.com/corvell/imagetier/database/models"
	"github.com/corvell/imagetier/utils"
	"github.com/corvell/imagetier/utils/validator"
	"github.com/gin-gonic/gin"
)

// UploadImage 上传单张图片
// 仅接受 jpg/png，其余容器格式在入口即拒绝
func (h *Handler) UploadImage(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusForbidden, "Not authenticated")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Missing 'image' file field")
		return
	}

	maxSize := int64(h.cfg.UploadMaxSizeMB) << 20
	if maxSize > 0 && fileHeader.Size > maxSize {
		common.RespondError(c, http.StatusBadRequest,
			fmt.Sprintf("File exceeds maximum upload size of %dMB", h.cfg.UploadMaxSizeMB))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to open uploaded file")
		return
	}
	defer func() { _ = file.Close() }()

	// 内容探测优先于扩展名，双方必须一致指向 jpg/png
	allowed, mimeType, err := validator.IsAllowedImage(file)
	if err != nil || !allowed {
		common.RespondError(c, http.StatusBadRequest, "Only JPEG and PNG images are supported")
		return
	}
	if !extensionMatches(fileHeader.Filename, mimeType) {
		common.RespondError(c, http.StatusBadRequest, "File extension does not match image content")
		return
	}

	// 记录像素尺寸，派生时按高度比例推导宽度
	imgConfig, _, err := image.DecodeConfig(file)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to parse image dimensions")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to rewind uploaded file")
		return
	}

	identifier, err := utils.GenerateIdentifier()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to generate identifier")
		return
	}
	storagePath := "originals/" + identifier + extensionForMime(mimeType)

	if err := h.storage.SaveWithContext(c.Request.Context(), storagePath, file); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to store image")
		return
	}

	img := &models.Image{
		Identifier:   identifier,
		OriginalName: filepath.Base(fileHeader.Filename),
		MimeType:     mimeType,
		FileSize:     fileHeader.Size,
		StoragePath:  storagePath,
		Width:        imgConfig.Width,
		Height:       imgConfig.Height,
		UserID:       userID,
	}
	if err := h.images.SaveImage(img); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to save image record")
		return
	}

	common.RespondCreated(c, h.toImageResponse(img))
}

// extensionMatches 扩展名与内容格式一致性检查
func extensionMatches(filename, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch mimeType {
	case models.MimeJPEG:
		return ext == ".jpg" || ext == ".jpeg"
	case models.MimePNG:
		return ext == ".png"
	default:
		return false
	}
}

func extensionForMime(mimeType string) string {
	if mimeType == models.MimePNG {
		return ".png"
	}
	return ".jpg"
}
