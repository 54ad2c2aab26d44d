package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"fundbook/config"
	"fundbook/database"
	"fundbook/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// subscriptionWithMember 带成员姓名的缴费导出行
type subscriptionWithMember struct {
	models.Subscription
	MemberName string
}

// querySubscriptions 查询缴费记录（可按月份筛选），带成员姓名
func querySubscriptions(month string) ([]subscriptionWithMember, error) {
	query := database.DB.Model(&models.Subscription{}).
		Select("subscriptions.*, members.name AS member_name").
		Joins("LEFT JOIN members ON subscriptions.member_id = members.id")
	if month != "" {
		query = query.Where("subscriptions.month = ?", month)
	}

	var rows []subscriptionWithMember
	err := query.Order("subscriptions.month DESC, members.name ASC").Scan(&rows).Error
	return rows, err
}

// ExportSubscriptionsCSV 导出缴费记录为 CSV
// @Summary 导出缴费记录
// @Description 导出缴费记录为 CSV 文件，可按月份筛选
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param month query string false "月份筛选 (YYYY-MM)"
// @Success 200 {file} file "CSV 文件"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/subscriptions/csv [get]
func (h *ExportHandler) ExportSubscriptionsCSV(c *gin.Context) {
	month := c.Query("month")
	if month != "" && !models.ValidMonth(month) {
		BadRequest(c, "月份格式错误，应为: YYYY-MM")
		return
	}

	rows, err := querySubscriptions(month)
	if err != nil {
		InternalError(c, "查询数据失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	// 生成 CSV
	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"收据编号", "成员", "月份", "金额", "缴费日期", "经办人"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for _, row := range rows {
		record := []string{
			row.ReceiptNo,
			row.MemberName,
			row.Month,
			fmt.Sprintf("%.2f", row.Amount),
			row.Date,
			row.ReceivedBy,
		}
		if err := writer.Write(record); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := "subscriptions.csv"
	if month != "" {
		filename = fmt.Sprintf("subscriptions_%s.csv", month)
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出账本为 Excel
// @Summary 导出账本
// @Description 导出缴费与支出两个工作表的 Excel 账本，可按月份筛选缴费
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query string false "缴费月份筛选 (YYYY-MM)"
// @Success 200 {file} file "Excel 文件"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	month := c.Query("month")
	if month != "" && !models.ValidMonth(month) {
		BadRequest(c, "月份格式错误，应为: YYYY-MM")
		return
	}

	subs, err := querySubscriptions(month)
	if err != nil {
		InternalError(c, "查询数据失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	var expenses []models.Expense
	if err := database.DB.Order("date DESC").Find(&expenses).Error; err != nil {
		InternalError(c, "查询数据失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	var members []models.Member
	if err := database.DB.Order("name ASC").Find(&members).Error; err != nil {
		InternalError(c, "查询数据失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	// 创建 Excel 文件
	f := excelize.NewFile()
	defer f.Close()

	memSheet := "成员名册"
	subSheet := "缴费记录"
	expSheet := "支出记录"
	f.SetSheetName("Sheet1", memSheet)
	f.NewSheet(subSheet)
	f.NewSheet(expSheet)

	// 表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 数据样式
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 成员工作表
	f.SetColWidth(memSheet, "A", "B", 16)
	f.SetColWidth(memSheet, "C", "E", 14)

	memHeaders := []string{"姓名", "户名", "电话", "国家", "状态"}
	for i, header := range memHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(memSheet, cell, header)
		f.SetCellStyle(memSheet, cell, cell, headerStyle)
	}

	for i, member := range members {
		values := []interface{}{member.Name, member.HouseName, member.Mobile, member.Country, member.Status}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(memSheet, cell, v)
			f.SetCellStyle(memSheet, cell, cell, dataStyle)
		}
	}

	// 缴费工作表
	f.SetColWidth(subSheet, "A", "A", 20)
	f.SetColWidth(subSheet, "B", "B", 16)
	f.SetColWidth(subSheet, "C", "F", 12)

	subHeaders := []string{"收据编号", "成员", "月份", "金额", "缴费日期", "经办人"}
	for i, header := range subHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(subSheet, cell, header)
		f.SetCellStyle(subSheet, cell, cell, headerStyle)
	}

	for i, row := range subs {
		values := []interface{}{row.ReceiptNo, row.MemberName, row.Month, row.Amount, row.Date, row.ReceivedBy}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(subSheet, cell, v)
			f.SetCellStyle(subSheet, cell, cell, dataStyle)
		}
	}

	// 支出工作表
	f.SetColWidth(expSheet, "A", "A", 14)
	f.SetColWidth(expSheet, "B", "B", 30)
	f.SetColWidth(expSheet, "C", "D", 12)

	expHeaders := []string{"类别", "描述", "金额", "日期"}
	for i, header := range expHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(expSheet, cell, header)
		f.SetCellStyle(expSheet, cell, cell, headerStyle)
	}

	for i, expense := range expenses {
		values := []interface{}{expense.Category, expense.Description, expense.Amount, expense.Date}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(expSheet, cell, v)
			f.SetCellStyle(expSheet, cell, cell, dataStyle)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	orgName := config.GetConfig().Fund.OrgName
	if orgName == "" {
		orgName = "fundbook"
	}
	filename := fmt.Sprintf("%s_%s.xlsx", orgName, time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportJSON 导出账本为 JSON
// @Summary 导出账本为 JSON
// @Description 导出全部缴费与支出记录及汇总信息
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "导出成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	var subs []models.Subscription
	if err := database.DB.Order("month DESC").Find(&subs).Error; err != nil {
		InternalError(c, "查询数据失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	var expenses []models.Expense
	if err := database.DB.Order("date DESC").Find(&expenses).Error; err != nil {
		InternalError(c, "查询数据失败: "+SafeErrorMessage(err, "内部错误"))
		return
	}

	var totalSubs, totalExpenses float64
	for _, s := range subs {
		totalSubs += s.Amount
	}
	for _, e := range expenses {
		totalExpenses += e.Amount
	}

	Success(c, gin.H{
		"exported_at":         time.Now().Format(time.RFC3339),
		"total_subscriptions": totalSubs,
		"total_expenses":      totalExpenses,
		"balance":             totalSubs - totalExpenses,
		"subscriptions":       subs,
		"expenses":            expenses,
	})
}
