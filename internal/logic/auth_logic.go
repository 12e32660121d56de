package logic

import (
	"fmt"
	"strings"
	"time"

	"github.com/blues/fis/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthLogic 用户注册/登录/KYC业务逻辑
type AuthLogic struct {
	db *gorm.DB
}

// NewAuthLogic 创建认证业务逻辑
func NewAuthLogic(db *gorm.DB) *AuthLogic {
	return &AuthLogic{db: db}
}

// RegisterInput 注册请求
type RegisterInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	OrganizationName string `json:"organizationName"`
}

// Register 注册用户
//
// 投资人默认KYC待认证，发行方/管理员默认已认证（演示策略）。
func (a *AuthLogic) Register(in *RegisterInput) (*model.UserModel, error) {
	if runeLen(in.Name) < 2 {
		return nil, ErrValidation("用户名至少2个字符")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !strings.Contains(email, "@") {
		return nil, ErrValidation("邮箱格式不正确")
	}
	if len(in.Password) < 6 {
		return nil, ErrValidation("密码至少6个字符")
	}
	role := model.UserRole(in.Role)
	if !role.Valid() {
		return nil, ErrValidation("角色必须是 investor、issuer 或 admin")
	}

	var existing model.UserModel
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrConflict("用户已存在")
	} else if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	kycStatus := model.KycStatusVerified
	if role == model.RoleInvestor {
		kycStatus = model.KycStatusPending
	}

	user := &model.UserModel{
		Name:             strings.TrimSpace(in.Name),
		Email:            email,
		PasswordHash:     string(hash),
		Role:             role,
		OrganizationName: in.OrganizationName,
		KycStatus:        kycStatus,
	}

	if err := a.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	return user, nil
}

// Login 校验邮箱密码
func (a *AuthLogic) Login(email, password string) (*model.UserModel, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.UserModel
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUnauthorized("邮箱或密码错误")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthorized("邮箱或密码错误")
	}

	return &user, nil
}

// GetUser 获取用户
func (a *AuthLogic) GetUser(id int64) (*model.UserModel, error) {
	var user model.UserModel
	if err := a.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound("用户不存在")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// CompleteKyc 自助完成KYC（演示用，无真实校验）
func (a *AuthLogic) CompleteKyc(userId int64) (*model.UserModel, error) {
	user, err := a.GetUser(userId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"kyc_status":       model.KycStatusVerified,
		"kyc_completed_at": now,
	}
	if err := a.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新KYC状态失败: %w", err)
	}

	user.KycStatus = model.KycStatusVerified
	user.KycCompletedAt = &now
	return user, nil
}
