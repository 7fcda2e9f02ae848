package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/corvell/imagetier/config"
	"github.com/studio-b12/gowebdav"
)

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者
func NewWebDAVStorage(cfg *config.Config) (*WebDAVStorage, error) {
	if cfg.WebdavURL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.WebdavRoot, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.WebdavURL, cfg.WebdavUsername, cfg.WebdavPassword)
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return &WebDAVStorage{
		client:   client,
		rootPath: rootPath,
	}, nil
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(storagePath string) string {
	storagePath = strings.TrimLeft(storagePath, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + storagePath
	}
	return "/" + storagePath
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, storagePath string, file io.Reader) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}

	full := s.fullPath(storagePath)
	if err := s.client.MkdirAll(path.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create webdav directory for '%s': %w", storagePath, err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	if err := s.client.Write(full, data, 0644); err != nil {
		return fmt.Errorf("failed to write webdav file '%s': %w", storagePath, err)
	}
	return nil
}

// GetWithContext 从 WebDAV 获取文件
func (s *WebDAVStorage) GetWithContext(ctx context.Context, storagePath string) (io.ReadSeeker, error) {
	if !IsValidStoragePath(storagePath) {
		return nil, fmt.Errorf("invalid storage path: %s", storagePath)
	}

	data, err := s.client.Read(s.fullPath(storagePath))
	if err != nil {
		if isWebDAVNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read webdav file '%s': %w", storagePath, err)
	}
	return bytes.NewReader(data), nil
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, storagePath string) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}
	if err := s.client.Remove(s.fullPath(storagePath)); err != nil {
		if isWebDAVNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete webdav file '%s': %w", storagePath, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	if !IsValidStoragePath(storagePath) {
		return false, fmt.Errorf("invalid storage path: %s", storagePath)
	}

	_, err := s.client.Stat(s.fullPath(storagePath))
	if err != nil {
		if isWebDAVNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health 检查存储健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	if _, err := s.client.ReadDir(s.rootPath + "/"); err != nil {
		if isWebDAVNotFound(err) {
			return nil
		}
		return fmt.Errorf("webdav health check failed: %w", err)
	}
	return nil
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}

// isWebDAVNotFound gowebdav 对 404 返回包装过的 os.ErrNotExist
func isWebDAVNotFound(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "404")
}
