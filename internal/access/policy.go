package access

import (
	"errors"

	"github.com/corvell/imagetier/database/models"
)

// ErrDenied 授权检查未通过
// 未认证与无权限对外表现一致，缺省即拒绝
var ErrDenied = errors.New("access denied")

// Capabilities 用户的有效能力集
// 是用户全部分组能力的并集：任一分组授予 X 即拥有 X
type Capabilities struct {
	Heights            map[int]struct{}
	AllowOriginalImage bool
	AllowExpiringLink  bool
}

// PermitsHeight 判断高度是否在允许集合内
func (c Capabilities) PermitsHeight(height int) bool {
	_, ok := c.Heights[height]
	return ok
}

// GroupSource 提供用户分组快照
type GroupSource interface {
	GetGroupsByUserID(userID uint) ([]*models.Group, error)
}

// Authorizer 按请求组合的授权谓词集合
// 各谓词相互独立，端点按需 AND 组合；任何派生计算都发生在授权之后
type Authorizer struct {
	groups GroupSource
}

// NewAuthorizer 创建授权器
func NewAuthorizer(groups GroupSource) *Authorizer {
	return &Authorizer{groups: groups}
}

// CapabilitiesFor 计算用户的有效能力集
// 纯读操作，每次请求基于当时的分组快照计算，不做跨请求缓存
func (a *Authorizer) CapabilitiesFor(userID uint) (Capabilities, error) {
	caps := Capabilities{Heights: make(map[int]struct{})}

	groups, err := a.groups.GetGroupsByUserID(userID)
	if err != nil {
		return caps, err
	}

	for _, group := range groups {
		if group.AllowOriginalImage {
			caps.AllowOriginalImage = true
		}
		if group.AllowExpiringLink {
			caps.AllowExpiringLink = true
		}
		for _, size := range group.Sizes {
			caps.Heights[size.Height] = struct{}{}
		}
	}
	return caps, nil
}

// AuthorizeOwnership 请求者必须是图片属主
func (a *Authorizer) AuthorizeOwnership(userID uint, image *models.Image) error {
	if image == nil || userID == 0 || image.UserID != userID {
		return ErrDenied
	}
	return nil
}

// AuthorizeOriginal 请求者必须具备原图访问能力
func (a *Authorizer) AuthorizeOriginal(caps Capabilities) error {
	if !caps.AllowOriginalImage {
		return ErrDenied
	}
	return nil
}

// AuthorizeHeight 请求的高度必须在请求者的允许集合内
// 属主关系在此谓词中有意不复查
func (a *Authorizer) AuthorizeHeight(caps Capabilities, height int) error {
	if !caps.PermitsHeight(height) {
		return ErrDenied
	}
	return nil
}

// AuthorizeLinkMint 请求者必须具备临时链接签发能力
func (a *Authorizer) AuthorizeLinkMint(caps Capabilities) error {
	if !caps.AllowExpiringLink {
		return ErrDenied
	}
	return nil
}
