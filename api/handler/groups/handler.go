package groups

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/corvell/imagetier/api/common"
	"github.com/corvell/imagetier/database/models"
	groupsRepo "github.com/corvell/imagetier/database/repo/groups"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler 分组管理处理器，全部端点仅限管理员
type Handler struct {
	groups *groupsRepo.Repository
}

// NewHandler 创建分组处理器
func NewHandler(groups *groupsRepo.Repository) *Handler {
	return &Handler{groups: groups}
}

type createGroupRequest struct {
	Name               string `json:"name" binding:"required"`
	Sizes              []int  `json:"size"`
	AllowOriginalImage bool   `json:"allow_original_image"`
	AllowExpiringLink  bool   `json:"allow_expiring_link"`
}

// groupResponse 分组响应，高度集合以升序数组呈现
type groupResponse struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	Sizes              []int  `json:"size"`
	AllowOriginalImage bool   `json:"allow_original_image"`
	AllowExpiringLink  bool   `json:"allow_expiring_link"`
}

func toGroupResponse(group *models.Group) groupResponse {
	heights := make([]int, 0, len(group.Sizes))
	for _, size := range group.Sizes {
		heights = append(heights, size.Height)
	}
	return groupResponse{
		ID:                 group.ID,
		Name:               group.Name,
		Sizes:              heights,
		AllowOriginalImage: group.AllowOriginalImage,
		AllowExpiringLink:  group.AllowExpiringLink,
	}
}

// CreateGroup 创建能力分组
// 高度去重后挂接共享 Size 记录，[100, 500, 100] 只产生两条关联
func (h *Handler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	for _, height := range req.Sizes {
		if height <= 0 {
			common.RespondError(c, http.StatusBadRequest, "Size heights must be positive integers")
			return
		}
	}

	group := &models.Group{
		Name:               req.Name,
		AllowOriginalImage: req.AllowOriginalImage,
		AllowExpiringLink:  req.AllowExpiringLink,
	}
	if err := h.groups.CreateGroup(group, req.Sizes); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to create group")
		return
	}

	created, err := h.groups.GetGroupByID(group.ID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load created group")
		return
	}
	common.RespondCreated(c, toGroupResponse(created))
}

// GetGroup 按ID获取分组
func (h *Handler) GetGroup(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Group ID must be a positive integer")
		return
	}

	group, err := h.groups.GetGroupByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.RespondError(c, http.StatusNotFound, "Group not found")
		} else {
			common.RespondError(c, http.StatusInternalServerError, "Failed to load group")
		}
		return
	}
	common.RespondSuccess(c, toGroupResponse(group))
}

// ListGroups 列出全部分组
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.groups.ListGroups()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to list groups")
		return
	}

	responses := make([]groupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, toGroupResponse(group))
	}
	common.RespondSuccess(c, responses)
}
