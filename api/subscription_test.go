package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberRow(id, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "house_name", "mobile", "photo_url", "country", "status", "created_at", "updated_at"}).
		AddRow(id, name, "北院", "01700000000", "", "孟加拉国", "active", time.Now(), time.Now())
}

func subscriptionRouter(h *SubscriptionHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/subscriptions/paid-members", h.PaidMembers)
	router.POST("/subscriptions", h.Create)
	router.PUT("/subscriptions/:id", h.Update)
	return router
}

// 录入缴费：ID与收据编号由服务端按成员和月份生成
func TestSubscriptionHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	mock.ExpectQuery("SELECT .* FROM `members`").
		WithArgs("m1").
		WillReturnRows(memberRow("m1", "拉希姆"))
	mock.ExpectQuery("SELECT count.* FROM `subscriptions`").
		WithArgs("m1", "2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `subscriptions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := subscriptionRouter(NewSubscriptionHandler())

	body := `{"member_id":"m1","month":"2024-05","amount":500}`
	req := httptest.NewRequest("POST", "/subscriptions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "m1_2024-05", data["id"])
	assert.Equal(t, "RCP-202405-M1", data["receipt_no"])
	require.NoError(t, mock.ExpectationsWereMet())
}

// 重复缴费守卫：同一成员同一月份的第二次录入被拒绝
func TestSubscriptionHandler_Create_Duplicate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	mock.ExpectQuery("SELECT .* FROM `members`").
		WithArgs("m1").
		WillReturnRows(memberRow("m1", "拉希姆"))
	mock.ExpectQuery("SELECT count.* FROM `subscriptions`").
		WithArgs("m1", "2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	router := subscriptionRouter(NewSubscriptionHandler())

	body := `{"member_id":"m1","month":"2024-05","amount":500}`
	req := httptest.NewRequest("POST", "/subscriptions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "已有缴费记录")
	require.NoError(t, mock.ExpectationsWereMet())
}

// 早于最早可录入月份的录入被拒绝，不触发任何数据库操作
func TestSubscriptionHandler_Create_BeforeMinMonth(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	router := subscriptionRouter(NewSubscriptionHandler())

	body := `{"member_id":"m1","month":"2023-12","amount":500}`
	req := httptest.NewRequest("POST", "/subscriptions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "最早可录入月份")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionHandler_Create_InvalidMonth(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	router := subscriptionRouter(NewSubscriptionHandler())

	body := `{"member_id":"m1","month":"2024-13","amount":500}`
	req := httptest.NewRequest("POST", "/subscriptions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

// 编辑豁免：保存记录时不与其自身冲突，ID与收据编号保持不变
func TestSubscriptionHandler_Update_SelfEditExemption(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	subRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "member_id", "month", "amount", "date", "received_by", "receipt_no", "created_at", "updated_at"}).
			AddRow("m1_2024-05", "m1", "2024-05", 500.0, "2024-05-10", "admin", "RCP-202405-M1", time.Now(), time.Now())
	}

	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs("m1_2024-05").
		WillReturnRows(subRows())
	// 守卫查询排除自身ID，同成员同月份不算冲突
	mock.ExpectQuery("SELECT count.* FROM `subscriptions`").
		WithArgs("m1", "2024-05", "m1_2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `subscriptions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs("m1_2024-05").
		WillReturnRows(subRows())

	router := subscriptionRouter(NewSubscriptionHandler())

	body := `{"member_id":"m1","month":"2024-05","amount":600}`
	req := httptest.NewRequest("PUT", "/subscriptions/m1_2024-05", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 经办人是自由文本：请求里给了就用请求值，而不是当前登录管理员
func TestSubscriptionHandler_Create_ReceivedBy(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	mock.ExpectQuery("SELECT .* FROM `members`").
		WithArgs("m1").
		WillReturnRows(memberRow("m1", "拉希姆"))
	mock.ExpectQuery("SELECT count.* FROM `subscriptions`").
		WithArgs("m1", "2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `subscriptions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := subscriptionRouter(NewSubscriptionHandler())

	body := `{"member_id":"m1","month":"2024-05","amount":500,"received_by":"考萨尔"}`
	req := httptest.NewRequest("POST", "/subscriptions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "考萨尔", data["received_by"])
	require.NoError(t, mock.ExpectationsWereMet())
}

// 编辑可以改经办人
func TestSubscriptionHandler_Update_ReceivedBy(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs("m1_2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "month", "amount", "date", "received_by", "receipt_no", "created_at", "updated_at"}).
			AddRow("m1_2024-05", "m1", "2024-05", 500.0, "2024-05-10", "admin", "RCP-202405-M1", time.Now(), time.Now()))
	mock.ExpectQuery("SELECT count.* FROM `subscriptions`").
		WithArgs("m1", "2024-05", "m1_2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `subscriptions` SET .*`received_by`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs("m1_2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "month", "amount", "date", "received_by", "receipt_no", "created_at", "updated_at"}).
			AddRow("m1_2024-05", "m1", "2024-05", 500.0, "2024-05-10", "考萨尔", "RCP-202405-M1", time.Now(), time.Now()))

	router := subscriptionRouter(NewSubscriptionHandler())

	body := `{"member_id":"m1","month":"2024-05","amount":500,"received_by":"考萨尔"}`
	req := httptest.NewRequest("PUT", "/subscriptions/m1_2024-05", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "考萨尔", data["received_by"])
	require.NoError(t, mock.ExpectationsWereMet())
}

// 更新成功但回读失败：返回 500，不回显陈旧数据
func TestSubscriptionHandler_Update_RefreshFailure(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs("m1_2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "month", "amount", "date", "received_by", "receipt_no", "created_at", "updated_at"}).
			AddRow("m1_2024-05", "m1", "2024-05", 500.0, "2024-05-10", "admin", "RCP-202405-M1", time.Now(), time.Now()))
	mock.ExpectQuery("SELECT count.* FROM `subscriptions`").
		WithArgs("m1", "2024-05", "m1_2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `subscriptions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs("m1_2024-05").
		WillReturnError(errors.New("connection lost"))

	router := subscriptionRouter(NewSubscriptionHandler())

	body := `{"member_id":"m1","month":"2024-05","amount":600}`
	req := httptest.NewRequest("PUT", "/subscriptions/m1_2024-05", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 500, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 编辑改到其他成员已缴费的月份同样被守卫拒绝
func TestSubscriptionHandler_Update_DuplicateOnOtherRecord(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	mock.ExpectQuery("SELECT .* FROM `subscriptions`").
		WithArgs("m1_2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "month", "amount", "date", "received_by", "receipt_no", "created_at", "updated_at"}).
			AddRow("m1_2024-05", "m1", "2024-05", 500.0, "2024-05-10", "admin", "RCP-202405-M1", time.Now(), time.Now()))
	mock.ExpectQuery("SELECT count.* FROM `subscriptions`").
		WithArgs("m1", "2024-06", "m1_2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	router := subscriptionRouter(NewSubscriptionHandler())

	body := `{"member_id":"m1","month":"2024-06","amount":500}`
	req := httptest.NewRequest("PUT", "/subscriptions/m1_2024-05", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionHandler_PaidMembers(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	mock.ExpectQuery("SELECT `member_id` FROM `subscriptions`").
		WithArgs("2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"member_id"}).AddRow("m1").AddRow("m2"))

	router := subscriptionRouter(NewSubscriptionHandler())

	req := httptest.NewRequest("GET", "/subscriptions/paid-members?month=2024-05", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []interface{}{"m1", "m2"}, resp["data"])
	require.NoError(t, mock.ExpectationsWereMet())
}
