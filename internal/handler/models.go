package handler

import (
	"time"

	"github.com/blues/fis/internal/model"
)

// UserResponse 用户响应模型（不含密码哈希）
type UserResponse struct {
	Id               int64      `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	OrganizationName string     `json:"organizationName,omitempty"`
	KycStatus        string     `json:"kycStatus"`
	KycCompletedAt   *time.Time `json:"kycCompletedAt,omitempty"`
}

// ToUserResponse 将用户模型转换为响应模型
func ToUserResponse(user *model.UserModel) UserResponse {
	return UserResponse{
		Id:               user.Id,
		Name:             user.Name,
		Email:            user.Email,
		Role:             string(user.Role),
		OrganizationName: user.OrganizationName,
		KycStatus:        string(user.KycStatus),
		KycCompletedAt:   user.KycCompletedAt,
	}
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
