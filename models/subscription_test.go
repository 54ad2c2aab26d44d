package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidMonth(t *testing.T) {
	assert.True(t, ValidMonth("2024-01"))
	assert.True(t, ValidMonth("2025-12"))

	assert.False(t, ValidMonth(""))
	assert.False(t, ValidMonth("2024-13"))
	assert.False(t, ValidMonth("2024-00"))
	assert.False(t, ValidMonth("2024-1"))
	assert.False(t, ValidMonth("202401"))
	assert.False(t, ValidMonth("2024-01-15"))
}

func TestSubscriptionID(t *testing.T) {
	assert.Equal(t, "m1_2024-05", SubscriptionID("m1", "2024-05"))
}

func TestReceiptNo(t *testing.T) {
	// 成员ID后三位大写
	assert.Equal(t, "RCP-202405-F7B", ReceiptNo("abc123f7b", "2024-05"))
	// 短ID整体使用
	assert.Equal(t, "RCP-202405-M1", ReceiptNo("m1", "2024-05"))
}

func TestHasDuplicateSubscription(t *testing.T) {
	subs := []Subscription{
		{ID: "m1_2024-05", MemberID: "m1", Month: "2024-05", Amount: 500},
		{ID: "m2_2024-05", MemberID: "m2", Month: "2024-05", Amount: 500},
		{ID: "m1_2024-06", MemberID: "m1", Month: "2024-06", Amount: 500},
	}

	// 同成员同月份已存在 → 冲突
	assert.True(t, HasDuplicateSubscription(subs, "m1", "2024-05", ""))

	// 编辑自身不算冲突
	assert.False(t, HasDuplicateSubscription(subs, "m1", "2024-05", "m1_2024-05"))

	// 编辑时撞上另一条记录仍算冲突
	assert.True(t, HasDuplicateSubscription(subs, "m1", "2024-05", "m1_2024-06"))

	// 不同月份、不同成员不冲突
	assert.False(t, HasDuplicateSubscription(subs, "m1", "2024-07", ""))
	assert.False(t, HasDuplicateSubscription(subs, "m3", "2024-05", ""))

	// 空列表不冲突
	assert.False(t, HasDuplicateSubscription(nil, "m1", "2024-05", ""))
}

func TestMonthRange(t *testing.T) {
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, MonthRange("2024-01", "2024-03"))

	// 跨年
	assert.Equal(t, []string{"2024-11", "2024-12", "2025-01"}, MonthRange("2024-11", "2025-01"))

	// 单月
	assert.Equal(t, []string{"2024-05"}, MonthRange("2024-05", "2024-05"))

	// 起点晚于终点或格式非法 → 空
	assert.Empty(t, MonthRange("2024-06", "2024-05"))
	assert.Empty(t, MonthRange("bad", "2024-05"))
}

func TestPaidMemberIDs(t *testing.T) {
	subs := []Subscription{
		{ID: "m1_2024-05", MemberID: "m1", Month: "2024-05"},
		{ID: "m2_2024-05", MemberID: "m2", Month: "2024-05"},
		{ID: "m1_2024-06", MemberID: "m1", Month: "2024-06"},
	}

	paid := PaidMemberIDs(subs, "2024-05")
	assert.Len(t, paid, 2)
	assert.True(t, paid["m1"])
	assert.True(t, paid["m2"])

	assert.Empty(t, PaidMemberIDs(subs, "2024-07"))
}
