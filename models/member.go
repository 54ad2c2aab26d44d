package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MemberStatusActive 正常：参与每月缴费
	MemberStatusActive = "active"
	// MemberStatusInactive 停缴：保留档案但不计入欠费统计
	MemberStatusInactive = "inactive"
)

// Member 基金成员档案
// 删除走回收站流程（先快照进 trash_records 再物理删除），
// 因此这里不使用 gorm 的 DeletedAt 软删除
type Member struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	HouseName string    `json:"house_name" gorm:"size:100"`
	Mobile    string    `json:"mobile" gorm:"size:30"`
	PhotoURL  string    `json:"photo_url" gorm:"type:text"`
	Country   string    `json:"country" gorm:"size:50"`
	Status    string    `json:"status" gorm:"size:20;default:active;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Member) TableName() string {
	return "members"
}

// IsActive 是否为正常缴费成员
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}

// NewMemberID 生成新成员ID（存储层分配的随机ID）
func NewMemberID() string {
	return uuid.New().String()
}
