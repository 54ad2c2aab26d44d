package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fundbook/database"
	"fundbook/models"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 目标记录不存在（删除源或恢复目标缺失），流水线在第一步即中止
	ErrNotFound = errors.New("记录不存在")
	// ErrInvalidType 非法的回收站记录类型
	ErrInvalidType = errors.New("无效的记录类型")
	// ErrOriginalIDOccupied 恢复目标位置已被新记录占用，拒绝恢复以免覆盖丢数据
	ErrOriginalIDOccupied = errors.New("原位置已被新记录占用，无法恢复")
)

// DeletedMemberPlaceholder 缴费记录进回收站时，若其成员已不存在则使用该占位名
const DeletedMemberPlaceholder = "已删除成员"

// TrashService 回收站服务：软删除 / 恢复 / 永久删除
// 软删除与恢复都是多步写入，各自放进一个数据库事务里执行，
// 避免出现"回收站和在册列表各有一份"的中间态
type TrashService struct {
	hub *Hub
}

// NewTrashService 创建回收站服务
func NewTrashService() *TrashService {
	return &TrashService{hub: Streams}
}

// typeCollection 回收站类型对应的集合名
func typeCollection(recordType string) string {
	switch recordType {
	case models.TrashTypeMember:
		return CollectionMembers
	case models.TrashTypeSubscription:
		return CollectionSubscriptions
	case models.TrashTypeExpense:
		return CollectionExpenses
	}
	return ""
}

// toDocument 将实体序列化为无结构快照（含 id 字段）
func toDocument(entity interface{}) (models.Document, error) {
	b, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SoftDelete 将一条在册记录移入回收站：
// 读取在册记录 → 构造快照墓碑 → 写入回收站 → 删除在册记录，整体一个事务。
// 缴费记录的快照额外冗余成员姓名，保证成员本身被删除后回收站仍可读
func (s *TrashService) SoftDelete(recordType, id string) (*models.TrashRecord, error) {
	if !models.ValidTrashType(recordType) {
		return nil, ErrInvalidType
	}

	record := models.TrashRecord{
		ID:         models.NewTrashID(),
		OriginalID: id,
		Type:       recordType,
		DeletedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var (
			entity interface{}
			blank  interface{}
			doc    models.Document
			err    error
		)

		switch recordType {
		case models.TrashTypeMember:
			var m models.Member
			if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			entity = &m
			blank = &models.Member{}

		case models.TrashTypeSubscription:
			var sub models.Subscription
			if err := tx.Where("id = ?", id).First(&sub).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			entity = &sub
			blank = &models.Subscription{}

		case models.TrashTypeExpense:
			var exp models.Expense
			if err := tx.Where("id = ?", id).First(&exp).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			entity = &exp
			blank = &models.Expense{}
		}

		doc, err = toDocument(entity)
		if err != nil {
			return fmt.Errorf("构造快照失败: %w", err)
		}

		// 缴费记录冗余成员姓名快照
		if sub, ok := entity.(*models.Subscription); ok {
			var member models.Member
			if err := tx.Where("id = ?", sub.MemberID).First(&member).Error; err == nil {
				doc[models.SnapshotMemberNameKey] = member.Name
			} else {
				doc[models.SnapshotMemberNameKey] = DeletedMemberPlaceholder
			}
		}
		record.Data = doc

		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("写入回收站失败: %w", err)
		}
		// 用零值模型删除，避免 GORM 以已填充的主键追加重复条件
		if err := tx.Where("id = ?", id).Delete(blank).Error; err != nil {
			return fmt.Errorf("删除在册记录失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(Event{Collection: typeCollection(recordType), Action: ActionTrashed, ID: id})
	s.hub.Publish(Event{Collection: CollectionTrash, Action: ActionCreated, ID: record.ID})
	return &record, nil
}

// Restore 将回收站记录恢复回原集合的原ID：
// 读取墓碑 → 剔除快照中的冗余字段 → 写回原集合 → 删除墓碑，整体一个事务。
// 若原ID已被新记录占用则拒绝恢复（而不是静默覆盖）
func (s *TrashService) Restore(trashID string) (*models.TrashRecord, error) {
	var record models.TrashRecord

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", trashID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !models.ValidTrashType(record.Type) {
			return ErrInvalidType
		}

		// 清理快照：成员姓名冗余与重复的 id 字段不属于原始结构
		data := make(models.Document, len(record.Data))
		for k, v := range record.Data {
			data[k] = v
		}
		delete(data, "id")
		delete(data, models.SnapshotMemberNameKey)

		entity, err := entityFromSnapshot(record.Type, record.OriginalID, data)
		if err != nil {
			return err
		}

		// 原位置被占用则拒绝恢复
		var occupied int64
		if err := tx.Model(entity).Where("id = ?", record.OriginalID).Count(&occupied).Error; err != nil {
			return err
		}
		if occupied > 0 {
			return ErrOriginalIDOccupied
		}

		if err := tx.Create(entity).Error; err != nil {
			// 占用检查与写回之间被并发插入抢先时，唯一键冲突同样按占用处理
			if isDuplicateKey(err) {
				return ErrOriginalIDOccupied
			}
			return fmt.Errorf("写回原集合失败: %w", err)
		}
		if err := tx.Where("id = ?", trashID).Delete(&models.TrashRecord{}).Error; err != nil {
			return fmt.Errorf("删除回收站记录失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(Event{Collection: typeCollection(record.Type), Action: ActionRestored, ID: record.OriginalID})
	s.hub.Publish(Event{Collection: CollectionTrash, Action: ActionRemoved, ID: trashID})
	return &record, nil
}

// isDuplicateKey 判断是否为唯一键冲突（MySQL 1062）
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// entityFromSnapshot 将清理后的快照反序列化为对应类型的实体，并回填原ID
func entityFromSnapshot(recordType, originalID string, data models.Document) (interface{}, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("读取快照失败: %w", err)
	}

	switch recordType {
	case models.TrashTypeMember:
		var m models.Member
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("解析成员快照失败: %w", err)
		}
		m.ID = originalID
		return &m, nil
	case models.TrashTypeSubscription:
		var sub models.Subscription
		if err := json.Unmarshal(b, &sub); err != nil {
			return nil, fmt.Errorf("解析缴费快照失败: %w", err)
		}
		sub.ID = originalID
		return &sub, nil
	case models.TrashTypeExpense:
		var exp models.Expense
		if err := json.Unmarshal(b, &exp); err != nil {
			return nil, fmt.Errorf("解析支出快照失败: %w", err)
		}
		exp.ID = originalID
		return &exp, nil
	}
	return nil, ErrInvalidType
}

// Purge 永久删除回收站记录，数据不可再恢复。
// 对已不存在的ID删除视为幂等成功，不报错
func (s *TrashService) Purge(trashID string) error {
	if err := database.DB.Where("id = ?", trashID).Delete(&models.TrashRecord{}).Error; err != nil {
		return fmt.Errorf("永久删除失败: %w", err)
	}
	s.hub.Publish(Event{Collection: CollectionTrash, Action: ActionPurged, ID: trashID})
	return nil
}
