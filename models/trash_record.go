package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TrashType 回收站记录类型常量
const (
	TrashTypeMember       = "member"
	TrashTypeSubscription = "subscription"
	TrashTypeExpense      = "expense"
)

// ValidTrashType 校验回收站记录类型是否合法
func ValidTrashType(t string) bool {
	return t == TrashTypeMember || t == TrashTypeSubscription || t == TrashTypeExpense
}

// Document 无固定结构的字段快照，以 JSON 整体存储
type Document map[string]interface{}

// Value 实现 driver.Valuer
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("无法将 %T 解析为 Document", value)
	}
	if len(b) == 0 {
		*d = nil
		return nil
	}
	return json.Unmarshal(b, d)
}

// SnapshotMemberNameKey 缴费记录进回收站时附带的成员姓名快照字段，
// 成员本身被删除后回收站列表仍能显示可读名称；恢复时必须剔除
const SnapshotMemberNameKey = "snapshot_member_name"

// TrashRecord 回收站记录：被删除实体的墓碑，快照是该实体数据的唯一存留，
// 清空（purge）之后数据不可恢复
type TrashRecord struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	OriginalID string    `json:"original_id" gorm:"size:80;not null;index"`
	Type       string    `json:"type" gorm:"size:20;not null;index"`
	Data       Document  `json:"data" gorm:"type:json"`
	DeletedAt  string    `json:"deleted_at" gorm:"size:40"` // 删除时刻，UTC ISO-8601 文本
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 设置表名
func (TrashRecord) TableName() string {
	return "trash_records"
}

// NewTrashID 生成回收站记录自身的ID（与 OriginalID 无关）
func NewTrashID() string {
	return uuid.New().String()
}
