package links

import (
	"errors"
	"fmt"
	"time"

	"github.com/corvell/imagetier/database/models"
	imagesRepo "github.com/corvell/imagetier/database/repo/images"
	linksRepo "github.com/corvell/imagetier/database/repo/links"
	"github.com/corvell/imagetier/internal/access"
	"github.com/corvell/imagetier/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 可签发的 TTL 窗口（秒），两端均为闭区间
const (
	MinTTLSeconds = 300
	MaxTTLSeconds = 30000
)

var (
	// ErrTTLOutOfRange TTL 缺失或超出可签发窗口
	ErrTTLOutOfRange = fmt.Errorf("expire_time must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

	// ErrImageNotFound 引用的图片不存在
	ErrImageNotFound = errors.New("image not found")

	// ErrLinkNotFound 链接标识无法解析
	ErrLinkNotFound = errors.New("temporary link not found")

	// ErrLinkExpired 链接已过绝对过期时间，记录保留但永久失效
	ErrLinkExpired = errors.New("temporary link has expired")
)

// MintResult 签发结果
type MintResult struct {
	ID       string  `json:"id"`
	ExpireAt float64 `json:"expire_time"`
	URL      string  `json:"url"`
}

// Service 临时链接管理器
type Service struct {
	links      *linksRepo.Repository
	images     *imagesRepo.Repository
	authorizer *access.Authorizer
	baseURL    string

	// 测试注入时钟
	now func() time.Time
}

// NewService 创建临时链接服务
func NewService(links *linksRepo.Repository, images *imagesRepo.Repository, authorizer *access.Authorizer, baseURL string) *Service {
	return &Service{
		links:      links,
		images:     images,
		authorizer: authorizer,
		baseURL:    baseURL,
		now:        time.Now,
	}
}

// Mint 为图片签发一条临时公开链接
// 前置检查按序短路：能力 → 图片存在 → 属主 → TTL 窗口
func (s *Service) Mint(imageID uint, ttlSeconds int64, requesterID uint, caps access.Capabilities) (*MintResult, error) {
	if err := s.authorizer.AuthorizeLinkMint(caps); err != nil {
		return nil, err
	}

	image, err := s.images.GetImageByID(imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	if err := s.authorizer.AuthorizeOwnership(requesterID, image); err != nil {
		return nil, err
	}

	if ttlSeconds < MinTTLSeconds || ttlSeconds > MaxTTLSeconds {
		return nil, ErrTTLOutOfRange
	}

	expireAt := float64(s.now().Add(time.Duration(ttlSeconds) * time.Second).Unix())
	link := &models.TemporaryLink{
		ID:       uuid.NewString(),
		ImageID:  image.ID,
		ExpireAt: expireAt,
	}
	if err := s.links.SaveLink(link); err != nil {
		return nil, fmt.Errorf("failed to save temporary link: %w", err)
	}

	return &MintResult{
		ID:       link.ID,
		ExpireAt: link.ExpireAt,
		URL:      utils.BuildTemporaryLinkURL(s.baseURL, link.ID),
	}, nil
}

// Redeem 解析并校验临时链接，返回其引用的图片
// 不需要任何认证；兑换不消耗链接，自然过期前可重复使用
func (s *Service) Redeem(linkID string) (*models.Image, error) {
	link, err := s.links.GetLinkByID(linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to load temporary link: %w", err)
	}

	if link.Expired(s.now()) {
		return nil, ErrLinkExpired
	}

	image, err := s.images.GetImageByID(link.ImageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to load linked image: %w", err)
	}
	return image, nil
}
