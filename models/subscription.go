package models

import (
	"regexp"
	"strings"
	"time"
)

// Subscription 某成员某月的缴费记录
// 新录入时 ID 为确定性的 "{member_id}_{month}"，编辑保留原ID；
// (member_id, month) 组合唯一索引兜底保证同一成员同一月份只有一条在册记录
type Subscription struct {
	ID         string    `json:"id" gorm:"primaryKey;size:80"`
	MemberID   string    `json:"member_id" gorm:"size:64;not null;uniqueIndex:idx_member_month"`
	Month      string    `json:"month" gorm:"size:7;not null;uniqueIndex:idx_member_month"` // YYYY-MM
	Amount     float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Date       string    `json:"date" gorm:"size:50"` // 展示用日期文本，录入时自动填当天
	ReceivedBy string    `json:"received_by" gorm:"size:50"`
	ReceiptNo  string    `json:"receipt_no" gorm:"size:30"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Subscription) TableName() string {
	return "subscriptions"
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonth 校验月份格式是否为 YYYY-MM
func ValidMonth(month string) bool {
	return monthPattern.MatchString(month)
}

// SubscriptionID 生成确定性的缴费记录ID："{member_id}_{month}"
func SubscriptionID(memberID, month string) string {
	return memberID + "_" + month
}

// ReceiptNo 生成收据编号："RCP-{YYYYMM}-{成员ID后三位大写}"
// 仅在新录入时生成，编辑时保留原编号
func ReceiptNo(memberID, month string) string {
	tail := memberID
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}
	return "RCP-" + strings.ReplaceAll(month, "-", "") + "-" + strings.ToUpper(tail)
}

// HasDuplicateSubscription 重复缴费判定：在册记录中存在相同成员相同月份、
// 且不是当前正在编辑的那条记录本身，即为冲突
func HasDuplicateSubscription(subs []Subscription, memberID, month, editingID string) bool {
	for i := range subs {
		if subs[i].MemberID == memberID && subs[i].Month == month && subs[i].ID != editingID {
			return true
		}
	}
	return false
}

// MonthRange 返回 [from, to] 区间内的全部月份（YYYY-MM，含两端）；
// from 晚于 to 或格式非法时返回空
func MonthRange(from, to string) []string {
	start, err := time.Parse("2006-01", from)
	if err != nil {
		return nil
	}
	end, err := time.Parse("2006-01", to)
	if err != nil {
		return nil
	}

	var months []string
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		months = append(months, m.Format("2006-01"))
	}
	return months
}

// PaidMemberIDs 返回指定月份已缴费的成员ID集合（用于录入界面过滤可选成员）
func PaidMemberIDs(subs []Subscription, month string) map[string]bool {
	paid := make(map[string]bool)
	for i := range subs {
		if subs[i].Month == month {
			paid[subs[i].MemberID] = true
		}
	}
	return paid
}
