package api

import (
	"errors"
	"strconv"
	"time"

	"fundbook/config"
	"fundbook/database"
	"fundbook/models"
	"fundbook/service"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler 支出处理器
type ExpenseHandler struct {
	trash *service.TrashService
}

// NewExpenseHandler 创建支出处理器
func NewExpenseHandler() *ExpenseHandler {
	return &ExpenseHandler{trash: service.NewTrashService()}
}

// ExpenseItemRequest 支出明细项
type ExpenseItemRequest struct {
	Name   string  `json:"name" binding:"required,max=100" example:"大米"`
	Amount float64 `json:"amount" binding:"required,gt=0" example:"500"`
}

// CreateExpenseRequest 新增支出请求
type CreateExpenseRequest struct {
	Category    string               `json:"category" binding:"required" example:"Biriyani"`
	Description string               `json:"description" binding:"max=255" example:"集体聚餐采购"`
	Amount      float64              `json:"amount" binding:"omitempty,gt=0" example:"1500"` // 有明细时忽略，以明细合计为准
	Date        string               `json:"date" example:"2024-05-01"`                      // YYYY-MM-DD，不传则自动填当天
	Items       []ExpenseItemRequest `json:"items"`
}

// UpdateExpenseRequest 更新支出请求
type UpdateExpenseRequest struct {
	Category    string               `json:"category" binding:"required"`
	Description string               `json:"description" binding:"max=255"`
	Amount      float64              `json:"amount" binding:"omitempty,gt=0"`
	Date        string               `json:"date"`
	Items       []ExpenseItemRequest `json:"items"`
}

// ExpenseResponse 支出响应，大额支出附带提醒标记
type ExpenseResponse struct {
	models.Expense
	LargeExpense bool `json:"large_expense,omitempty"` // 超过大额支出提醒阈值
}

// buildItems 将请求明细转为存储结构并顺序编号
func buildItems(reqItems []ExpenseItemRequest) models.ExpenseItems {
	if len(reqItems) == 0 {
		return nil
	}
	items := make(models.ExpenseItems, 0, len(reqItems))
	for i, item := range reqItems {
		items = append(items, models.ExpenseItem{
			ID:     strconv.Itoa(i + 1),
			Name:   item.Name,
			Amount: item.Amount,
		})
	}
	return items
}

// List 获取支出列表
// @Summary 获取支出列表
// @Description 获取支出记录，支持按类别/日期范围筛选。未登录可只读访问。
// @Tags 支出
// @Produce json
// @Param category query string false "类别筛选 (Salary/Biriyani/Snacks/Others)"
// @Param start_date query string false "开始日期 (YYYY-MM-DD)"
// @Param end_date query string false "结束日期 (YYYY-MM-DD)"
// @Success 200 {object} Response{data=[]models.Expense} "获取成功"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.Expense{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if start := c.Query("start_date"); start != "" {
		query = query.Where("date >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		query = query.Where("date <= ?", end)
	}

	var expenses []models.Expense
	if err := query.Order("date DESC, created_at DESC").Find(&expenses).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	Success(c, expenses)
}

// Get 获取单条支出
// @Summary 获取单条支出
// @Description 根据ID获取支出详情（含明细项）
// @Tags 支出
// @Produce json
// @Param id path string true "支出ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	var expense models.Expense
	if err := database.DB.Where("id = ?", c.Param("id")).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}
	Success(c, expense)
}

// Categories 获取支出类别
// @Summary 获取支出类别
// @Description 返回固定的支出类别枚举
// @Tags 支出
// @Produce json
// @Success 200 {object} Response{data=[]string} "获取成功"
// @Router /api/v1/expenses/categories [get]
func (h *ExpenseHandler) Categories(c *gin.Context) {
	Success(c, models.ExpenseCategories())
}

// Create 新增支出
// @Summary 新增支出
// @Description 新增支出记录。带明细时金额取明细合计；超过大额支出阈值时响应附带 large_expense 标记
// @Tags 支出
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "支出信息"
// @Success 200 {object} Response{data=ExpenseResponse} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if !models.ValidExpenseCategory(req.Category) {
		BadRequest(c, "无效的支出类别: "+req.Category)
		return
	}

	items := buildItems(req.Items)
	amount := req.Amount
	if len(items) > 0 {
		amount = items.Total()
	}
	if amount <= 0 {
		BadRequest(c, "支出金额必须大于0")
		return
	}

	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}

	expense := models.Expense{
		ID:          models.NewExpenseID(),
		Category:    req.Category,
		Description: req.Description,
		Amount:      amount,
		Date:        req.Date,
		Items:       items,
	}

	if err := database.DB.Create(&expense).Error; err != nil {
		InternalError(c, "创建支出失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	service.Streams.Publish(service.Event{Collection: service.CollectionExpenses, Action: service.ActionCreated, ID: expense.ID})
	SuccessWithMessage(c, "创建成功", ExpenseResponse{
		Expense:      expense,
		LargeExpense: amount > config.GetConfig().Fund.LargeExpenseAlert,
	})
}

// Update 更新支出
// @Summary 更新支出
// @Description 更新支出记录，明细整体替换，金额重新按明细合计
// @Tags 支出
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "支出ID"
// @Param request body UpdateExpenseRequest true "支出信息"
// @Success 200 {object} Response{data=ExpenseResponse} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	var expense models.Expense
	if err := database.DB.Where("id = ?", c.Param("id")).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if !models.ValidExpenseCategory(req.Category) {
		BadRequest(c, "无效的支出类别: "+req.Category)
		return
	}

	items := buildItems(req.Items)
	amount := req.Amount
	if len(items) > 0 {
		amount = items.Total()
	}
	if amount <= 0 {
		BadRequest(c, "支出金额必须大于0")
		return
	}

	updates := map[string]interface{}{
		"category":    req.Category,
		"description": req.Description,
		"amount":      amount,
		"items":       items,
	}
	if req.Date != "" {
		updates["date"] = req.Date
	}

	if err := database.DB.Model(&expense).Updates(updates).Error; err != nil {
		InternalError(c, "更新失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	if err := database.DB.Where("id = ?", expense.ID).First(&expense).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	service.Streams.Publish(service.Event{Collection: service.CollectionExpenses, Action: service.ActionUpdated, ID: expense.ID})
	SuccessWithMessage(c, "更新成功", ExpenseResponse{
		Expense:      expense,
		LargeExpense: amount > config.GetConfig().Fund.LargeExpenseAlert,
	})
}

// Delete 删除支出（移入回收站）
// @Summary 删除支出
// @Description 将支出记录移入回收站，可从回收站恢复
// @Tags 支出
// @Produce json
// @Security BearerAuth
// @Param id path string true "支出ID"
// @Success 200 {object} Response{data=models.TrashRecord} "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	record, err := h.trash.SoftDelete(models.TrashTypeExpense, c.Param("id"))
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
