package api

import (
	"errors"
	"time"

	"fundbook/config"
	"fundbook/database"
	"fundbook/middleware"
	"fundbook/models"
	"fundbook/service"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler 缴费处理器
type SubscriptionHandler struct {
	trash *service.TrashService
}

// NewSubscriptionHandler 创建缴费处理器
func NewSubscriptionHandler() *SubscriptionHandler {
	return &SubscriptionHandler{trash: service.NewTrashService()}
}

// CreateSubscriptionRequest 录入缴费请求
type CreateSubscriptionRequest struct {
	MemberID   string  `json:"member_id" binding:"required" example:"m1"`
	Month      string  `json:"month" binding:"required" example:"2024-05"` // YYYY-MM
	Amount     float64 `json:"amount" binding:"required,gt=0" example:"500"`
	Date       string  `json:"date" example:"2024-05-10"`                        // 不传则自动填当天
	ReceivedBy string  `json:"received_by" binding:"max=50" example:"考萨尔"` // 经办人，自由文本，不传则填当前登录管理员
}

// UpdateSubscriptionRequest 更新缴费请求
type UpdateSubscriptionRequest struct {
	MemberID   string  `json:"member_id" binding:"required" example:"m1"`
	Month      string  `json:"month" binding:"required" example:"2024-05"`
	Amount     float64 `json:"amount" binding:"required,gt=0" example:"500"`
	Date       string  `json:"date"`
	ReceivedBy string  `json:"received_by" binding:"max=50"` // 不传则保持原值
}

// checkMonth 校验月份格式与最早可录入月份
func checkMonth(c *gin.Context, month string) bool {
	if !models.ValidMonth(month) {
		BadRequest(c, "月份格式错误，应为: YYYY-MM")
		return false
	}
	if minMonth := config.GetConfig().Fund.MinMonth; month < minMonth {
		BadRequest(c, "月份早于最早可录入月份 "+minMonth)
		return false
	}
	return true
}

// List 获取缴费列表
// @Summary 获取缴费列表
// @Description 获取缴费记录，支持按月份/成员筛选。未登录可只读访问。
// @Tags 缴费
// @Produce json
// @Param month query string false "月份筛选 (YYYY-MM)"
// @Param member_id query string false "成员ID筛选"
// @Success 200 {object} Response{data=[]models.Subscription} "获取成功"
// @Router /api/v1/subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.Subscription{})

	if month := c.Query("month"); month != "" {
		query = query.Where("month = ?", month)
	}
	if memberID := c.Query("member_id"); memberID != "" {
		query = query.Where("member_id = ?", memberID)
	}

	var subs []models.Subscription
	if err := query.Order("month DESC, created_at DESC").Find(&subs).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	Success(c, subs)
}

// Get 获取单条缴费记录
// @Summary 获取单条缴费记录
// @Description 根据ID获取缴费记录详情
// @Tags 缴费
// @Produce json
// @Param id path string true "缴费记录ID"
// @Success 200 {object} Response{data=models.Subscription} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/subscriptions/{id} [get]
func (h *SubscriptionHandler) Get(c *gin.Context) {
	var sub models.Subscription
	if err := database.DB.Where("id = ?", c.Param("id")).First(&sub).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	Success(c, sub)
}

// Create 录入缴费
// @Summary 录入缴费
// @Description 录入某成员某月的缴费。同一成员同一月份只允许一条在册记录，重复录入会被拒绝。ID与收据编号由服务端生成。
// @Tags 缴费
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSubscriptionRequest true "缴费信息"
// @Success 200 {object} Response{data=models.Subscription} "录入成功"
// @Failure 400 {object} Response "参数错误或该成员该月已缴费"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "成员不存在"
// @Router /api/v1/subscriptions [post]
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if !checkMonth(c, req.Month) {
		return
	}

	var member models.Member
	if err := database.DB.Where("id = ?", req.MemberID).First(&member).Error; err != nil {
		NotFound(c, "成员不存在")
		return
	}

	// 重复缴费守卫：同一成员同一月份已有在册记录则拒绝。
	// 并发穿过此检查时由 (member_id, month) 唯一索引兜底
	var count int64
	if err := database.DB.Model(&models.Subscription{}).
		Where("member_id = ? AND month = ?", req.MemberID, req.Month).
		Count(&count).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	if count > 0 {
		BadRequest(c, member.Name+" 在 "+req.Month+" 已有缴费记录")
		return
	}

	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}
	if req.ReceivedBy == "" {
		req.ReceivedBy = middleware.GetCurrentUsername(c)
	}

	sub := models.Subscription{
		ID:         models.SubscriptionID(req.MemberID, req.Month),
		MemberID:   req.MemberID,
		Month:      req.Month,
		Amount:     req.Amount,
		Date:       req.Date,
		ReceivedBy: req.ReceivedBy,
		ReceiptNo:  models.ReceiptNo(req.MemberID, req.Month),
	}

	if err := database.DB.Create(&sub).Error; err != nil {
		// 唯一索引冲突也按重复缴费处理
		BadRequest(c, "录入失败，该成员该月份可能已有缴费记录")
		return
	}

	service.Streams.Publish(service.Event{Collection: service.CollectionSubscriptions, Action: service.ActionCreated, ID: sub.ID})
	SuccessWithMessage(c, "录入成功", sub)
}

// Update 更新缴费记录
// @Summary 更新缴费记录
// @Description 修改缴费记录。记录ID与收据编号保持不变；改为其他成员/月份时同样受重复缴费守卫约束，但与记录自身不冲突。
// @Tags 缴费
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "缴费记录ID"
// @Param request body UpdateSubscriptionRequest true "缴费信息"
// @Success 200 {object} Response{data=models.Subscription} "更新成功"
// @Failure 400 {object} Response "参数错误或该成员该月已缴费"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/subscriptions/{id} [put]
func (h *SubscriptionHandler) Update(c *gin.Context) {
	var sub models.Subscription
	if err := database.DB.Where("id = ?", c.Param("id")).First(&sub).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if !checkMonth(c, req.Month) {
		return
	}

	// 重复缴费守卫：排除正在编辑的这条记录本身
	var count int64
	if err := database.DB.Model(&models.Subscription{}).
		Where("member_id = ? AND month = ? AND id <> ?", req.MemberID, req.Month, sub.ID).
		Count(&count).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	if count > 0 {
		BadRequest(c, "该成员在 "+req.Month+" 已有缴费记录")
		return
	}

	updates := map[string]interface{}{
		"member_id": req.MemberID,
		"month":     req.Month,
		"amount":    req.Amount,
	}
	if req.Date != "" {
		updates["date"] = req.Date
	}
	if req.ReceivedBy != "" {
		updates["received_by"] = req.ReceivedBy
	}

	if err := database.DB.Model(&sub).Updates(updates).Error; err != nil {
		InternalError(c, "更新失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	// 回读时用零值接收，避免 GORM 以已填充的主键追加重复条件
	var refreshed models.Subscription
	if err := database.DB.Where("id = ?", sub.ID).First(&refreshed).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	sub = refreshed

	service.Streams.Publish(service.Event{Collection: service.CollectionSubscriptions, Action: service.ActionUpdated, ID: sub.ID})
	SuccessWithMessage(c, "更新成功", sub)
}

// Delete 删除缴费记录（移入回收站）
// @Summary 删除缴费记录
// @Description 将缴费记录移入回收站，快照中冗余成员姓名，可从回收站恢复
// @Tags 缴费
// @Produce json
// @Security BearerAuth
// @Param id path string true "缴费记录ID"
// @Success 200 {object} Response{data=models.TrashRecord} "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/subscriptions/{id} [delete]
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	record, err := h.trash.SoftDelete(models.TrashTypeSubscription, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "记录不存在")
			return
		}
		InternalError(c, "删除失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	SuccessWithMessage(c, "已移入回收站", record)
}

// PaidMembers 获取某月已缴费成员
// @Summary 获取某月已缴费成员
// @Description 返回指定月份已缴费的成员ID列表，录入界面据此过滤可选成员
// @Tags 缴费
// @Produce json
// @Param month query string true "月份 (YYYY-MM)"
// @Success 200 {object} Response{data=[]string} "获取成功"
// @Failure 400 {object} Response "月份格式错误"
// @Router /api/v1/subscriptions/paid-members [get]
func (h *SubscriptionHandler) PaidMembers(c *gin.Context) {
	month := c.Query("month")
	if !models.ValidMonth(month) {
		BadRequest(c, "月份格式错误，应为: YYYY-MM")
		return
	}

	var memberIDs []string
	if err := database.DB.Model(&models.Subscription{}).
		Where("month = ?", month).
		Pluck("member_id", &memberIDs).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	Success(c, memberIDs)
}

// MissingMonths 获取某成员的欠费月份
// @Summary 获取某成员的欠费月份
// @Description 返回从最早可录入月份至当月该成员未缴费的月份列表
// @Tags 缴费
// @Produce json
// @Param member_id query string true "成员ID"
// @Success 200 {object} Response{data=[]string} "获取成功"
// @Failure 404 {object} Response "成员不存在"
// @Router /api/v1/subscriptions/missing-months [get]
func (h *SubscriptionHandler) MissingMonths(c *gin.Context) {
	memberID := c.Query("member_id")
	if memberID == "" {
		BadRequest(c, "缺少成员ID")
		return
	}

	var member models.Member
	if err := database.DB.Where("id = ?", memberID).First(&member).Error; err != nil {
		NotFound(c, "成员不存在")
		return
	}

	var paidMonths []string
	if err := database.DB.Model(&models.Subscription{}).
		Where("member_id = ?", memberID).
		Pluck("month", &paidMonths).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	paid := make(map[string]bool, len(paidMonths))
	for _, m := range paidMonths {
		paid[m] = true
	}

	missing := []string{}
	for _, m := range models.MonthRange(config.GetConfig().Fund.MinMonth, time.Now().Format("2006-01")) {
		if !paid[m] {
			missing = append(missing, m)
		}
	}
	Success(c, missing)
}

// Defaulters 获取某月欠费成员
// @Summary 获取某月欠费成员
// @Description 返回指定月份未缴费的正常(active)成员列表；停缴成员不计入
// @Tags 缴费
// @Produce json
// @Param month query string true "月份 (YYYY-MM)"
// @Success 200 {object} Response{data=[]models.Member} "获取成功"
// @Failure 400 {object} Response "月份格式错误"
// @Router /api/v1/subscriptions/defaulters [get]
func (h *SubscriptionHandler) Defaulters(c *gin.Context) {
	month := c.Query("month")
	if !models.ValidMonth(month) {
		BadRequest(c, "月份格式错误，应为: YYYY-MM")
		return
	}

	var defaulters []models.Member
	if err := database.DB.Model(&models.Member{}).
		Where("status = ?", models.MemberStatusActive).
		Where("id NOT IN (?)", database.DB.Model(&models.Subscription{}).
			Select("member_id").Where("month = ?", month)).
		Order("name ASC").
		Find(&defaulters).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	Success(c, defaulters)
}
