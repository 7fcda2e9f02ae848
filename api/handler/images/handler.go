package images

import (
	"errors"
	"net/http"
	"time"

	"github.com/corvell/imagetier/api/common"
	"github.com/corvell/imagetier/cache"
	"github.com/corvell/imagetier/config"
	"github.com/corvell/imagetier/database/models"
	imagesRepo "github.com/corvell/imagetier/database/repo/images"
	"github.com/corvell/imagetier/internal/access"
	imageSvc "github.com/corvell/imagetier/internal/image"
	"github.com/corvell/imagetier/storage"
	"github.com/corvell/imagetier/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler 图片处理器
type Handler struct {
	images     *imagesRepo.Repository
	deriver    *imageSvc.Deriver
	authorizer *access.Authorizer
	storage    storage.Provider
	cache      cache.Provider
	cfg        *config.Config
}

// NewHandler 创建图片处理器
func NewHandler(
	images *imagesRepo.Repository,
	deriver *imageSvc.Deriver,
	authorizer *access.Authorizer,
	provider storage.Provider,
	cacheProvider cache.Provider,
	cfg *config.Config,
) *Handler {
	return &Handler{
		images:     images,
		deriver:    deriver,
		authorizer: authorizer,
		storage:    provider,
		cache:      cacheProvider,
		cfg:        cfg,
	}
}

// imageResponse 图片元数据响应
type imageResponse struct {
	Identifier   string    `json:"identifier"`
	Created      time.Time `json:"created"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	FileSize     int64     `json:"file_size"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	URL          string    `json:"url"`
}

func (h *Handler) toImageResponse(image *models.Image) imageResponse {
	return imageResponse{
		Identifier:   image.Identifier,
		Created:      image.CreatedAt,
		OriginalName: image.OriginalName,
		MimeType:     image.MimeType,
		FileSize:     image.FileSize,
		Width:        image.Width,
		Height:       image.Height,
		URL:          utils.BuildImageURL(h.cfg.BaseURL(), image.Identifier),
	}
}

// loadImageByIdentifier 解析路径中的图片标识符，不存在时回 404
func (h *Handler) loadImageByIdentifier(c *gin.Context) (*models.Image, bool) {
	identifier := c.Param("identifier")
	image, err := h.images.GetImageByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.RespondError(c, http.StatusNotFound, "Image not found")
		} else {
			common.RespondError(c, http.StatusInternalServerError, "Failed to load image")
		}
		return nil, false
	}
	return image, true
}

// requesterCapabilities 计算请求者的有效能力集
func (h *Handler) requesterCapabilities(c *gin.Context, userID uint) (access.Capabilities, bool) {
	caps, err := h.authorizer.CapabilitiesFor(userID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to resolve permissions")
		return caps, false
	}
	return caps, true
}
