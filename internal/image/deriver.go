package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"math"

	"github.com/corvell/imagetier/database/models"
	imagesRepo "github.com/corvell/imagetier/database/repo/images"
	"github.com/corvell/imagetier/storage"
	"github.com/corvell/imagetier/utils"
	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	// ErrUnsupportedFormat 源容器格式不在 jpg/png 之内，派生硬失败
	ErrUnsupportedFormat = errors.New("unsupported source image format")

	// ErrInvalidHeight 目标高度必须为正整数
	ErrInvalidHeight = errors.New("thumbnail height must be a positive integer")
)

const jpegQuality = 85

// Deriver 缩略图派生器
// 按 (image, height) 记忆化：命中直接返回，未命中同步解码-缩放-再编码
type Deriver struct {
	thumbnails *imagesRepo.ThumbnailRepository
	storage    storage.Provider

	// 进程内合并同一 (image, height) 的并发首次派生
	flight singleflight.Group
}

// NewDeriver 创建缩略图派生器
func NewDeriver(thumbnails *imagesRepo.ThumbnailRepository, provider storage.Provider) *Deriver {
	return &Deriver{
		thumbnails: thumbnails,
		storage:    provider,
	}
}

// GetOrCreate 返回 (image, height) 的缩略图，不存在则同步生成
// 授权在上游完成，到达这里的请求已通过高度白名单检查
func (d *Deriver) GetOrCreate(ctx context.Context, img *models.Image, height int) (*models.Thumbnail, error) {
	if height <= 0 {
		return nil, ErrInvalidHeight
	}

	// 缓存命中：原样返回，不做再编码
	thumbnail, err := d.thumbnails.GetByImageAndHeight(img.ID, height)
	if err == nil {
		return thumbnail, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up thumbnail: %w", err)
	}

	key := fmt.Sprintf("%d:%d", img.ID, height)
	result, err, _ := d.flight.Do(key, func() (interface{}, error) {
		return d.derive(ctx, img, height)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Thumbnail), nil
}

// derive 执行一次真实派生：解码、缩放、按源容器格式再编码并持久化
func (d *Deriver) derive(ctx context.Context, img *models.Image, height int) (*models.Thumbnail, error) {
	// singleflight 等待者可能在持锁方完成后进入，先复查
	if thumbnail, err := d.thumbnails.GetByImageAndHeight(img.ID, height); err == nil {
		return thumbnail, nil
	}

	reader, err := d.storage.GetWithContext(ctx, img.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source image: %w", err)
	}
	if closer, ok := reader.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	src, err := decode(reader, img.MimeType)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("source image has degenerate dimensions %dx%d", srcW, srcH)
	}

	// 宽度锚定在请求高度上按比例推导
	dstW := int(math.Round(float64(srcH) * float64(height) / float64(srcW)))
	if dstW < 1 {
		dstW = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := encode(&buf, dst, img.MimeType); err != nil {
		return nil, err
	}

	identifier, err := utils.GenerateIdentifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate thumbnail identifier: %w", err)
	}
	identifier = fmt.Sprintf("%s_%d%s", identifier, height, extensionFor(img.MimeType))
	storagePath := "thumbnails/" + identifier

	encoded := buf.Bytes()
	if err := d.storage.SaveWithContext(ctx, storagePath, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("failed to persist thumbnail: %w", err)
	}

	thumbnail := &models.Thumbnail{
		ImageID:     img.ID,
		Height:      height,
		Width:       dstW,
		Identifier:  identifier,
		StoragePath: storagePath,
		MimeType:    img.MimeType,
		FileSize:    int64(len(encoded)),
	}
	if err := d.thumbnails.SaveThumbnail(thumbnail); err != nil {
		return nil, fmt.Errorf("failed to save thumbnail record: %w", err)
	}

	// 跨进程竞争可能已写入同一 (image, height) 的其他行
	// 重新按最早行收敛，保证所有请求者看到同一个幸存者
	survivor, err := d.thumbnails.GetByImageAndHeight(img.ID, height)
	if err != nil {
		return thumbnail, nil
	}
	if survivor.ID != thumbnail.ID {
		log.Printf("[Deriver] Duplicate thumbnail rows for image %d height %d, keeping row %d",
			img.ID, height, survivor.ID)
	}
	return survivor, nil
}

// decode 按源容器格式解码，jpg/png 之外一律拒绝
func decode(reader io.Reader, mimeType string) (image.Image, error) {
	switch mimeType {
	case models.MimeJPEG:
		img, err := jpeg.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode jpeg: %w", err)
		}
		return img, nil
	case models.MimePNG:
		img, err := png.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode png: %w", err)
		}
		return img, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// encode 以源图的容器格式再编码
func encode(w io.Writer, img image.Image, mimeType string) error {
	switch mimeType {
	case models.MimeJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case models.MimePNG:
		return png.Encode(w, img)
	default:
		return ErrUnsupportedFormat
	}
}

// extensionFor 容器格式对应的文件扩展名
func extensionFor(mimeType string) string {
	switch mimeType {
	case models.MimeJPEG:
		return ".jpg"
	case models.MimePNG:
		return ".png"
	default:
		return ""
	}
}
