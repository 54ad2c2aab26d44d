package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExpenseCategory 支出类别常量（固定枚举）
const (
	ExpenseCategorySalary   = "Salary"
	ExpenseCategoryBiriyani = "Biriyani"
	ExpenseCategorySnacks   = "Snacks"
	ExpenseCategoryOthers   = "Others"
)

// ExpenseCategories 获取所有支出类别
func ExpenseCategories() []string {
	return []string{
		ExpenseCategorySalary,
		ExpenseCategoryBiriyani,
		ExpenseCategorySnacks,
		ExpenseCategoryOthers,
	}
}

// ValidExpenseCategory 校验支出类别是否合法
func ValidExpenseCategory(category string) bool {
	for _, c := range ExpenseCategories() {
		if c == category {
			return true
		}
	}
	return false
}

// ExpenseItem 支出明细项
type ExpenseItem struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ExpenseItems 明细项列表，整体以 JSON 存储，保持录入顺序
type ExpenseItems []ExpenseItem

// Value 实现 driver.Valuer，序列化为 JSON 存库
func (items ExpenseItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner，从 JSON 反序列化
func (items *ExpenseItems) Scan(value interface{}) error {
	if value == nil {
		*items = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("无法将 %T 解析为 ExpenseItems", value)
	}
	if len(b) == 0 {
		*items = nil
		return nil
	}
	return json.Unmarshal(b, items)
}

// Total 明细项金额合计
func (items ExpenseItems) Total() float64 {
	var total float64
	for i := range items {
		total += items[i].Amount
	}
	return total
}

// Expense 支出记录，金额等于明细合计（无明细时为直接录入值）
type Expense struct {
	ID          string       `json:"id" gorm:"primaryKey;size:64"`
	Category    string       `json:"category" gorm:"size:20;not null;index"`
	Description string       `json:"description" gorm:"size:255"`
	Amount      float64      `json:"amount" gorm:"type:decimal(10,2);not null"`
	Date        string       `json:"date" gorm:"size:10;index"` // YYYY-MM-DD
	Items       ExpenseItems `json:"items" gorm:"type:json"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}

// NewExpenseID 生成新支出记录ID
func NewExpenseID() string {
	return uuid.New().String()
}
