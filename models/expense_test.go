package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidExpenseCategory(t *testing.T) {
	for _, c := range ExpenseCategories() {
		assert.True(t, ValidExpenseCategory(c))
	}
	assert.False(t, ValidExpenseCategory(""))
	assert.False(t, ValidExpenseCategory("Travel"))
	assert.False(t, ValidExpenseCategory("salary")) // 大小写敏感
}

func TestExpenseItemsTotal(t *testing.T) {
	items := ExpenseItems{
		{ID: "1", Name: "大米", Amount: 1200},
		{ID: "2", Name: "鸡肉", Amount: 2500},
		{ID: "3", Name: "调料", Amount: 300},
	}
	assert.Equal(t, float64(4000), items.Total())
	assert.Equal(t, float64(0), ExpenseItems(nil).Total())
}

func TestExpenseItemsScanValue(t *testing.T) {
	items := ExpenseItems{
		{ID: "1", Name: "大米", Amount: 1200},
		{ID: "2", Name: "鸡肉", Amount: 2500},
	}

	v, err := items.Value()
	require.NoError(t, err)

	var decoded ExpenseItems
	require.NoError(t, decoded.Scan(v))
	// 保持录入顺序
	require.Len(t, decoded, 2)
	assert.Equal(t, "大米", decoded[0].Name)
	assert.Equal(t, "鸡肉", decoded[1].Name)

	// nil 列表落库为空数组
	v, err = ExpenseItems(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	// NULL 列读出为 nil
	var fromNull ExpenseItems
	require.NoError(t, fromNull.Scan(nil))
	assert.Nil(t, fromNull)
}
