package handler

import (
	"net/http"

	"github.com/blues/fis/internal/config"
	"github.com/blues/fis/internal/logic"
	"github.com/blues/fis/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authLogic *logic.AuthLogic
	authCfg   *config.AuthConfig
}

func NewAuthHandler(db *gorm.DB, authCfg *config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		authLogic: logic.NewAuthLogic(db),
		authCfg:   authCfg,
	}
}

// Register 注册用户
func (h *AuthHandler) Register(c *gin.Context) {
	var in logic.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authLogic.Register(&in)
	if err != nil {
		respondError(c, err)
		return
	}

	token, _, err := middleware.GenerateToken(user.Id, user.Role, h.authCfg)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token: token,
		User:  ToUserResponse(user),
	})
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authLogic.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, _, err := middleware.GenerateToken(user.Id, user.Role, h.authCfg)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User:  ToUserResponse(user),
	})
}

// Profile 获取当前用户信息
func (h *AuthHandler) Profile(c *gin.Context) {
	userId, _ := middleware.CurrentUser(c)

	user, err := h.authLogic.GetUser(userId)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToUserResponse(user))
}

// CompleteKyc 自助完成KYC
func (h *AuthHandler) CompleteKyc(c *gin.Context) {
	userId, _ := middleware.CurrentUser(c)

	user, err := h.authLogic.CompleteKyc(userId)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             user.Id,
		"kycStatus":      user.KycStatus,
		"kycCompletedAt": user.KycCompletedAt,
	})
}
