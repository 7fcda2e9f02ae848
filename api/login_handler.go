package api

import (
	"errors"
	"net/http"

	"github.com/corvell/imagetier/api/common"
	"github.com/corvell/imagetier/internal/auth"
	"github.com/gin-gonic/gin"
)

// LoginHandler 登录处理器
type LoginHandler struct {
	loginService *auth.LoginService
}

// NewLoginHandler 创建登录处理器
func NewLoginHandler(loginService *auth.LoginService) *LoginHandler {
	return &LoginHandler{loginService: loginService}
}

type userAuthRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequestBody struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type loginResponse struct {
	AccessToken       string `json:"access_token"`
	AccessTokenExpiry int64  `json:"access_token_expiry"`
	RefreshToken      string `json:"refresh_token"`
}

// LoginHandlerFunc user login
func (h *LoginHandler) LoginHandlerFunc(c *gin.Context) {
	var req userAuthRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	_, pair, err := h.loginService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			common.RespondError(c, http.StatusForbidden, "Invalid credentials")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	common.RespondSuccessMessage(c, "Login successful", loginResponse{
		AccessToken:       pair.AccessToken,
		AccessTokenExpiry: pair.AccessTokenExpiry.Unix(),
		RefreshToken:      pair.RefreshToken,
	})
}

// RefreshTokenHandlerFunc Refresh token authentication
func (h *LoginHandler) RefreshTokenHandlerFunc(c *gin.Context) {
	var req refreshRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.loginService.Refresh(req.RefreshToken)
	if err != nil {
		common.RespondError(c, http.StatusForbidden, "Invalid or expired refresh token")
		return
	}

	common.RespondSuccessMessage(c, "Token refreshed", loginResponse{
		AccessToken:       pair.AccessToken,
		AccessTokenExpiry: pair.AccessTokenExpiry.Unix(),
		RefreshToken:      pair.RefreshToken,
	})
}
