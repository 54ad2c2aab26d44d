package api

import (
	"errors"

	"fundbook/database"
	"fundbook/models"
	"fundbook/service"

	"github.com/gin-gonic/gin"
)

// MemberHandler 成员处理器
type MemberHandler struct {
	trash *service.TrashService
}

// NewMemberHandler 创建成员处理器
func NewMemberHandler() *MemberHandler {
	return &MemberHandler{trash: service.NewTrashService()}
}

// CreateMemberRequest 新增成员请求
type CreateMemberRequest struct {
	Name      string `json:"name" binding:"required,max=100" example:"拉希姆"`
	HouseName string `json:"house_name" binding:"max=100" example:"北院"`
	Mobile    string `json:"mobile" binding:"max=30" example:"01700000000"`
	PhotoURL  string `json:"photo_url" example:"https://example.com/photo.jpg"`
	Country   string `json:"country" binding:"max=50" example:"孟加拉国"`
	Status    string `json:"status" binding:"omitempty,oneof=active inactive" example:"active"`
}

// UpdateMemberRequest 更新成员请求
type UpdateMemberRequest struct {
	Name      string `json:"name" binding:"omitempty,max=100"`
	HouseName string `json:"house_name" binding:"max=100"`
	Mobile    string `json:"mobile" binding:"max=30"`
	PhotoURL  string `json:"photo_url"`
	Country   string `json:"country" binding:"max=50"`
	Status    string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// List 获取成员列表
// @Summary 获取成员列表
// @Description 获取全部成员档案，支持按状态筛选与姓名搜索。未登录可只读访问。
// @Tags 成员
// @Produce json
// @Param status query string false "状态筛选 (active/inactive)"
// @Param keyword query string false "姓名/户名模糊搜索"
// @Success 200 {object} Response{data=[]models.Member} "获取成功"
// @Router /api/v1/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.Member{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword := c.Query("keyword"); keyword != "" {
		query = query.Where("name LIKE ? OR house_name LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	var members []models.Member
	if err := query.Order("name ASC").Find(&members).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	Success(c, members)
}

// Get 获取单个成员
// @Summary 获取单个成员
// @Description 根据ID获取成员档案详情
// @Tags 成员
// @Produce json
// @Param id path string true "成员ID"
// @Success 200 {object} Response{data=models.Member} "获取成功"
// @Failure 404 {object} Response "成员不存在"
// @Router /api/v1/members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	var member models.Member
	if err := database.DB.Where("id = ?", c.Param("id")).First(&member).Error; err != nil {
		NotFound(c, "成员不存在")
		return
	}
	Success(c, member)
}

// Create 新增成员
// @Summary 新增成员
// @Description 新增成员档案，ID由服务端分配，状态默认为正常缴费(active)
// @Tags 成员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMemberRequest true "成员信息"
// @Success 200 {object} Response{data=models.Member} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/members [post]
func (h *MemberHandler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if req.Status == "" {
		req.Status = models.MemberStatusActive
	}

	member := models.Member{
		ID:        models.NewMemberID(),
		Name:      req.Name,
		HouseName: req.HouseName,
		Mobile:    req.Mobile,
		PhotoURL:  req.PhotoURL,
		Country:   req.Country,
		Status:    req.Status,
	}

	if err := database.DB.Create(&member).Error; err != nil {
		InternalError(c, "创建成员失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	service.Streams.Publish(service.Event{Collection: service.CollectionMembers, Action: service.ActionCreated, ID: member.ID})
	SuccessWithMessage(c, "创建成功", member)
}

// Update 更新成员
// @Summary 更新成员
// @Description 更新成员档案；停缴(inactive)的成员保留档案但不计入欠费统计
// @Tags 成员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "成员ID"
// @Param request body UpdateMemberRequest true "成员信息"
// @Success 200 {object} Response{data=models.Member} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "成员不存在"
// @Router /api/v1/members/{id} [put]
func (h *MemberHandler) Update(c *gin.Context) {
	var member models.Member
	if err := database.DB.Where("id = ?", c.Param("id")).First(&member).Error; err != nil {
		NotFound(c, "成员不存在")
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.HouseName != "" {
		updates["house_name"] = req.HouseName
	}
	if req.Mobile != "" {
		updates["mobile"] = req.Mobile
	}
	if req.PhotoURL != "" {
		updates["photo_url"] = req.PhotoURL
	}
	if req.Country != "" {
		updates["country"] = req.Country
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	if err := database.DB.Model(&member).Updates(updates).Error; err != nil {
		InternalError(c, "更新失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	if err := database.DB.Where("id = ?", member.ID).First(&member).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	service.Streams.Publish(service.Event{Collection: service.CollectionMembers, Action: service.ActionUpdated, ID: member.ID})
	SuccessWithMessage(c, "更新成功", member)
}

// Delete 删除成员（移入回收站）
// @Summary 删除成员
// @Description 将成员档案移入回收站，可从回收站恢复；该成员的缴费记录保持不动
// @Tags 成员
// @Produce json
// @Security BearerAuth
// @Param id path string true "成员ID"
// @Success 200 {object} Response{data=models.TrashRecord} "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "成员不存在"
// @Router /api/v1/members/{id} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
	record, err := h.trash.SoftDelete(models.TrashTypeMember, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "成员不存在")
			return
		}
		InternalError(c, "删除失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	SuccessWithMessage(c, "已移入回收站", record)
}
