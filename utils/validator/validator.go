package validator

import (
	"io"
	"net/http"
)

// allowedImageMimeTypes 可上传的图片类型，只有 jpg/png 支持再编码
var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// SniffImageMime 探测文件内容的 MIME 类型
func SniffImageMime(file io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	_, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(buffer), nil
}

// IsAllowedImage Verify if the file content is an allowed image type.
func IsAllowedImage(file io.ReadSeeker) (bool, string, error) {
	mimeType, err := SniffImageMime(file)
	if err != nil {
		return false, "", err
	}
	return allowedImageMimeTypes[mimeType], mimeType, nil
}
