package access

import (
	"errors"
	"testing"

	"github.com/corvell/imagetier/database/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// fakeGroupSource 固定返回预设分组
type fakeGroupSource struct {
	groups []*models.Group
	err    error
}

func (f *fakeGroupSource) GetGroupsByUserID(userID uint) ([]*models.Group, error) {
	return f.groups, f.err
}

// --- 测试 CapabilitiesFor ---

func TestCapabilitiesFor_UnionAcrossGroups(t *testing.T) {
	source := &fakeGroupSource{groups: []*models.Group{
		{
			Name:  "basic",
			Sizes: []*models.Size{{Height: 100}, {Height: 200}},
		},
		{
			Name:               "premium",
			Sizes:              []*models.Size{{Height: 200}, {Height: 400}},
			AllowOriginalImage: true,
		},
		{
			Name:              "linker",
			AllowExpiringLink: true,
		},
	}}
	authorizer := NewAuthorizer(source)

	caps, err := authorizer.CapabilitiesFor(1)
	assert.NoError(t, err)

	assert.True(t, caps.PermitsHeight(100))
	assert.True(t, caps.PermitsHeight(200))
	assert.True(t, caps.PermitsHeight(400))
	assert.False(t, caps.PermitsHeight(300))
	assert.True(t, caps.AllowOriginalImage)
	assert.True(t, caps.AllowExpiringLink)
}

func TestCapabilitiesFor_NoGroups(t *testing.T) {
	authorizer := NewAuthorizer(&fakeGroupSource{})

	caps, err := authorizer.CapabilitiesFor(1)
	assert.NoError(t, err)

	assert.Empty(t, caps.Heights)
	assert.False(t, caps.AllowOriginalImage)
	assert.False(t, caps.AllowExpiringLink)
	assert.False(t, caps.PermitsHeight(100))
}

func TestCapabilitiesFor_SourceError(t *testing.T) {
	authorizer := NewAuthorizer(&fakeGroupSource{err: gorm.ErrInvalidDB})

	_, err := authorizer.CapabilitiesFor(1)
	assert.Error(t, err)
}

// --- 测试授权谓词 ---

func TestAuthorizeOwnership(t *testing.T) {
	authorizer := NewAuthorizer(&fakeGroupSource{})
	image := &models.Image{UserID: 7}

	tests := []struct {
		name    string
		userID  uint
		image   *models.Image
		allowed bool
	}{
		{"owner", 7, image, true},
		{"other_user", 8, image, false},
		{"zero_user", 0, image, false},
		{"nil_image", 7, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authorizer.AuthorizeOwnership(tt.userID, tt.image)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrDenied))
			}
		})
	}
}

func TestAuthorizeHeight(t *testing.T) {
	authorizer := NewAuthorizer(&fakeGroupSource{})
	caps := Capabilities{Heights: map[int]struct{}{100: {}, 400: {}}}

	assert.NoError(t, authorizer.AuthorizeHeight(caps, 100))
	assert.NoError(t, authorizer.AuthorizeHeight(caps, 400))
	assert.ErrorIs(t, authorizer.AuthorizeHeight(caps, 200), ErrDenied)
	assert.ErrorIs(t, authorizer.AuthorizeHeight(caps, 0), ErrDenied)
}

func TestAuthorizeOriginal(t *testing.T) {
	authorizer := NewAuthorizer(&fakeGroupSource{})

	assert.NoError(t, authorizer.AuthorizeOriginal(Capabilities{AllowOriginalImage: true}))
	assert.ErrorIs(t, authorizer.AuthorizeOriginal(Capabilities{}), ErrDenied)
}

func TestAuthorizeLinkMint(t *testing.T) {
	authorizer := NewAuthorizer(&fakeGroupSource{})

	assert.NoError(t, authorizer.AuthorizeLinkMint(Capabilities{AllowExpiringLink: true}))
	assert.ErrorIs(t, authorizer.AuthorizeLinkMint(Capabilities{}), ErrDenied)
}
