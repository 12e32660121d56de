package model

import (
	"time"
)

// UserModel 平台用户
type UserModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name             string   `json:"name" gorm:"not null"`
	Email            string   `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash     string   `json:"-" gorm:"not null"`
	Role             UserRole `json:"role" gorm:"not null"`
	OrganizationName string   `json:"organizationName"`

	// KYC信息（演示用，无真实校验）
	KycStatus      KycStatus  `json:"kycStatus" gorm:"default:'pending'"`
	KycCompletedAt *time.Time `json:"kycCompletedAt"`
}

// TableName 自定义表名
func (UserModel) TableName() string {
	return "user"
}

// UserRole 用户角色
type UserRole string

const (
	RoleInvestor UserRole = "investor" // 投资人
	RoleIssuer   UserRole = "issuer"   // 发行方
	RoleAdmin    UserRole = "admin"    // 管理员
)

// Valid 校验角色是否合法
func (r UserRole) Valid() bool {
	switch r {
	case RoleInvestor, RoleIssuer, RoleAdmin:
		return true
	}
	return false
}

// KycStatus KYC状态
type KycStatus string

const (
	KycStatusPending  KycStatus = "pending"  // 待认证
	KycStatusVerified KycStatus = "verified" // 已认证
	KycStatusRejected KycStatus = "rejected" // 已拒绝
)
