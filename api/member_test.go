package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberRouter(h *MemberHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/members", h.List)
	router.GET("/members/:id", h.Get)
	router.POST("/members", h.Create)
	return router
}

func TestMemberHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `members`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := memberRouter(NewMemberHandler())

	body := `{"name":"拉希姆","house_name":"北院","mobile":"01700000000","country":"孟加拉国"}`
	req := httptest.NewRequest("POST", "/members", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["id"]) // ID由服务端分配
	assert.Equal(t, "active", data["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberHandler_Create_InvalidStatus(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	router := memberRouter(NewMemberHandler())

	body := `{"name":"拉希姆","status":"retired"}`
	req := httptest.NewRequest("POST", "/members", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestMemberHandler_List_StatusFilter(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	mock.ExpectQuery("SELECT .* FROM `members`").
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "house_name", "mobile", "photo_url", "country", "status", "created_at", "updated_at"}).
			AddRow("m1", "拉希姆", "北院", "", "", "孟加拉国", "active", time.Now(), time.Now()).
			AddRow("m2", "卡里姆", "南院", "", "", "孟加拉国", "active", time.Now(), time.Now()))

	router := memberRouter(NewMemberHandler())

	req := httptest.NewRequest("GET", "/members?status=active", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	assert.Len(t, list, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	setupConfig(t)

	mock.ExpectQuery("SELECT .* FROM `members`").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := memberRouter(NewMemberHandler())

	req := httptest.NewRequest("GET", "/members/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
