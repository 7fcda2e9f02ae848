package auth

import (
	"errors"

	"github.com/corvell/imagetier/database/models"
	"github.com/corvell/imagetier/database/repo/accounts"
	cryptoutils "github.com/corvell/imagetier/utils/crypto"
	"gorm.io/gorm"
)

// ErrBadCredentials 用户名或密码错误
// 不区分"用户不存在"与"密码错误"，避免用户名枚举
var ErrBadCredentials = errors.New("invalid username or password")

// LoginService 登录服务
type LoginService struct {
	accounts   *accounts.Repository
	jwtService *JWTService
}

// NewLoginService 创建登录服务
func NewLoginService(accountsRepo *accounts.Repository, jwtService *JWTService) *LoginService {
	return &LoginService{
		accounts:   accountsRepo,
		jwtService: jwtService,
	}
}

// Login 校验凭据并签发令牌对
func (s *LoginService) Login(username, password string) (*models.User, *TokenPair, error) {
	user, err := s.accounts.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrBadCredentials
		}
		return nil, nil, err
	}

	match, err := cryptoutils.ComparePasswordAndHash(password, user.Password)
	if err != nil || !match {
		return nil, nil, ErrBadCredentials
	}

	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh 用刷新令牌换取新的令牌对
func (s *LoginService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtService.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	tokenType, _ := claims["type"].(string)
	if tokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	userIDValue, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := s.accounts.GetUserByID(uint(userIDValue))
	if err != nil {
		return nil, ErrInvalidToken
	}

	return s.jwtService.GenerateTokenPair(user)
}
