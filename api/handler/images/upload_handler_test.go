package images

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/corvell/imagetier/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multipartImage 构造带单个 image 字段的 multipart 请求体
func multipartImage(t *testing.T, fieldName, filename string, data []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// --- 测试上传 ---

func TestUploadImage_PNG(t *testing.T) {
	env := setupEnv(t)
	user := env.seedUser(t, "uploader", nil, false, false)
	router := env.routerFor(user.ID)

	body, contentType := multipartImage(t, "image", "photo.png", encodePNG(t, 80, 40))
	resp := doRequest(router, http.MethodPost, "/api/v1/images", body, contentType)

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"mime_type":"image/png"`)
	assert.Contains(t, resp.Body.String(), `"width":80`)
	assert.Contains(t, resp.Body.String(), `"height":40`)

	var img models.Image
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&img).Error)
	assert.Equal(t, "photo.png", img.OriginalName)
	assert.Equal(t, models.MimePNG, img.MimeType)

	// 文件真实落盘
	exists, err := env.storage.Exists(t.Context(), img.StoragePath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUploadImage_JPEG(t *testing.T) {
	env := setupEnv(t)
	user := env.seedUser(t, "uploader", nil, false, false)

	body, contentType := multipartImage(t, "image", "photo.jpg", encodeJPEG(t, 60, 30))
	resp := doRequest(env.routerFor(user.ID), http.MethodPost, "/api/v1/images", body, contentType)

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"mime_type":"image/jpeg"`)
}

func TestUploadImage_RejectsUnsupportedFormat(t *testing.T) {
	env := setupEnv(t)
	user := env.seedUser(t, "uploader", nil, false, false)

	// 内容既不是 jpg 也不是 png
	body, contentType := multipartImage(t, "image", "notes.txt", []byte("plain text payload"))
	resp := doRequest(env.routerFor(user.ID), http.MethodPost, "/api/v1/images", body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUploadImage_RejectsMismatchedExtension(t *testing.T) {
	env := setupEnv(t)
	user := env.seedUser(t, "uploader", nil, false, false)

	// PNG 内容配 .jpg 扩展名
	body, contentType := multipartImage(t, "image", "photo.jpg", encodePNG(t, 10, 10))
	resp := doRequest(env.routerFor(user.ID), http.MethodPost, "/api/v1/images", body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUploadImage_MissingField(t *testing.T) {
	env := setupEnv(t)
	user := env.seedUser(t, "uploader", nil, false, false)

	body, contentType := multipartImage(t, "wrong_field", "photo.png", encodePNG(t, 10, 10))
	resp := doRequest(env.routerFor(user.ID), http.MethodPost, "/api/v1/images", body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUploadImage_Unauthenticated(t *testing.T) {
	env := setupEnv(t)

	body, contentType := multipartImage(t, "image", "photo.png", encodePNG(t, 10, 10))
	resp := doRequest(env.routerFor(0), http.MethodPost, "/api/v1/images", body, contentType)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
