package images

import (
	"net/http"
	"strconv"

	"github.com/corvell/imagetier/api/common"
	"github.com/corvell/imagetier/api/middleware"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListImages 返回请求者自己的图片列表
func (h *Handler) ListImages(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusForbidden, "Not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	images, total, err := h.images.ListImagesByUser(userID, page, pageSize)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to list images")
		return
	}

	responses := make([]imageResponse, 0, len(images))
	for _, image := range images {
		responses = append(responses, h.toImageResponse(image))
	}

	common.RespondSuccess(c, gin.H{
		"images":    responses,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
