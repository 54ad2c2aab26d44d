package api

import (
	"errors"

	"fundbook/database"
	"fundbook/models"
	"fundbook/service"

	"github.com/gin-gonic/gin"
)

// TrashHandler 回收站处理器
type TrashHandler struct {
	trash *service.TrashService
}

// NewTrashHandler 创建回收站处理器
func NewTrashHandler() *TrashHandler {
	return &TrashHandler{trash: service.NewTrashService()}
}

// List 获取回收站列表
// @Summary 获取回收站列表
// @Description 获取回收站记录，按删除时间倒序，支持按类型筛选。回收站仅管理员可见。
// @Tags 回收站
// @Produce json
// @Security BearerAuth
// @Param type query string false "类型筛选 (member/subscription/expense)"
// @Success 200 {object} Response{data=[]models.TrashRecord} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/trash [get]
func (h *TrashHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.TrashRecord{})

	if recordType := c.Query("type"); recordType != "" {
		if !models.ValidTrashType(recordType) {
			BadRequest(c, "无效的记录类型: "+recordType)
			return
		}
		query = query.Where("type = ?", recordType)
	}

	var records []models.TrashRecord
	if err := query.Order("deleted_at DESC").Find(&records).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	Success(c, records)
}

// Restore 恢复回收站记录
// @Summary 恢复回收站记录
// @Description 将回收站记录恢复回原集合的原ID。若原位置已被新记录占用则拒绝恢复。
// @Tags 回收站
// @Produce json
// @Security BearerAuth
// @Param id path string true "回收站记录ID"
// @Success 200 {object} Response{data=models.TrashRecord} "恢复成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Failure 409 {object} Response "原位置已被占用"
// @Router /api/v1/trash/{id}/restore [post]
func (h *TrashHandler) Restore(c *gin.Context) {
	record, err := h.trash.Restore(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			NotFound(c, "回收站记录不存在")
		case errors.Is(err, service.ErrOriginalIDOccupied):
			Conflict(c, err.Error())
		default:
			InternalError(c, "恢复失败: "+SafeErrorMessage(err, "内部错误"))
		}
		return
	}
	SuccessWithMessage(c, "恢复成功", record)
}

// Purge 永久删除回收站记录
// @Summary 永久删除回收站记录
// @Description 永久删除回收站中的一条记录，数据不可再恢复；对已不存在的ID视为成功
// @Tags 回收站
// @Produce json
// @Security BearerAuth
// @Param id path string true "回收站记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/trash/{id} [delete]
func (h *TrashHandler) Purge(c *gin.Context) {
	if err := h.trash.Purge(c.Param("id")); err != nil {
		InternalError(c, "永久删除失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	SuccessWithMessage(c, "已永久删除", nil)
}
