package api

import (
	"fundbook/database"
	"fundbook/models"

	"github.com/gin-gonic/gin"
)

// SummaryHandler 统计处理器
type SummaryHandler struct{}

// NewSummaryHandler 创建统计处理器
func NewSummaryHandler() *SummaryHandler {
	return &SummaryHandler{}
}

// FundSummaryResponse 基金总览
type FundSummaryResponse struct {
	TotalSubscriptions float64 `json:"total_subscriptions" example:"25000"` // 缴费总额
	TotalExpenses      float64 `json:"total_expenses" example:"18000"`      // 支出总额
	Balance            float64 `json:"balance" example:"7000"`              // 结余
	MemberCount        int64   `json:"member_count" example:"50"`           // 成员总数
	ActiveMemberCount  int64   `json:"active_member_count" example:"45"`    // 正常缴费成员数
}

// MonthlyStat 按月统计项
type MonthlyStat struct {
	Month string  `json:"month" example:"2024-05"`
	Total float64 `json:"total" example:"5000"`
}

// CategoryStat 按类别统计项
type CategoryStat struct {
	Category string  `json:"category" example:"Biriyani"`
	Total    float64 `json:"total" example:"6000"`
}

// GetSummary 获取基金总览
// @Summary 获取基金总览
// @Description 统计缴费总额、支出总额、结余与成员数。未登录可只读访问。
// @Tags 统计
// @Produce json
// @Success 200 {object} Response{data=FundSummaryResponse} "获取成功"
// @Router /api/v1/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	var resp FundSummaryResponse

	database.DB.Model(&models.Subscription{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&resp.TotalSubscriptions)
	database.DB.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&resp.TotalExpenses)
	resp.Balance = resp.TotalSubscriptions - resp.TotalExpenses

	database.DB.Model(&models.Member{}).Count(&resp.MemberCount)
	database.DB.Model(&models.Member{}).
		Where("status = ?", models.MemberStatusActive).Count(&resp.ActiveMemberCount)

	Success(c, resp)
}

// GetMonthlySubscriptions 按月统计缴费
// @Summary 按月统计缴费
// @Description 按月份聚合缴费金额，月份倒序
// @Tags 统计
// @Produce json
// @Success 200 {object} Response{data=[]MonthlyStat} "获取成功"
// @Router /api/v1/summary/subscriptions/monthly [get]
func (h *SummaryHandler) GetMonthlySubscriptions(c *gin.Context) {
	var stats []MonthlyStat
	if err := database.DB.Model(&models.Subscription{}).
		Select("month, COALESCE(SUM(amount), 0) AS total").
		Group("month").
		Order("month DESC").
		Scan(&stats).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	Success(c, stats)
}

// GetExpensesByCategory 按类别统计支出
// @Summary 按类别统计支出
// @Description 按类别聚合支出金额
// @Tags 统计
// @Produce json
// @Success 200 {object} Response{data=[]CategoryStat} "获取成功"
// @Router /api/v1/summary/expenses/by-category [get]
func (h *SummaryHandler) GetExpensesByCategory(c *gin.Context) {
	var stats []CategoryStat
	if err := database.DB.Model(&models.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Group("category").
		Order("total DESC").
		Scan(&stats).Error; err != nil {
		InternalError(c, "查询失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}
	Success(c, stats)
}
