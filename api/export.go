package api

import (
	"fmt"

	"expensebook/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	db *gorm.DB
}

// NewExportHandler 创建导出处理器
func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// ExportExcel 导出消费记录为 Excel
// @Summary 导出消费记录
// @Description 根据日期范围导出消费记录为 Excel 文件，末尾附带总计行
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param start_time query string true "开始日期 (2025-01-01)"
// @Param end_time query string true "结束日期 (2025-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	startStr := c.Query("start_time")
	endStr := c.Query("end_time")

	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始日期和结束日期")
		return
	}

	start, err := models.ParseDate(startStr)
	if err != nil {
		BadRequest(c, "开始日期格式错误，应为: "+models.DateFormat)
		return
	}
	end, err := models.ParseDate(endStr)
	if err != nil {
		BadRequest(c, "结束日期格式错误，应为: "+models.DateFormat)
		return
	}

	// 查询数据（含结束日期当天）
	var expenses []models.Expense
	if err := h.db.Preload("Category").
		Where("date >= ? AND date <= ?", start.Format(models.DateFormat), end.Format(models.DateFormat)).
		Order("date ASC, id ASC").
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 创建 Excel 文件
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "消费记录"
	f.SetSheetName("Sheet1", sheetName)

	// 设置表头样式
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

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 25)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 15)
	f.SetColWidth(sheetName, "G", "G", 20)

	// 写入表头
	headers := []string{"ID", "标题", "金额", "类别", "备注", "日期", "创建时间"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// 写入数据
	totalAmount := decimal.Zero
	for i, expense := range expenses {
		row := i + 2
		categoryName := "未分类"
		if expense.Category != nil {
			categoryName = expense.Category.Name
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), expense.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), expense.Title)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), expense.Amount.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), categoryName)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), expense.Note)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), expense.Date.Format(models.DateFormat))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), expense.CreatedAt.Format("2006-01-02 15:04:05"))

		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), dataStyle)
		totalAmount = totalAmount.Add(expense.Amount)
	}

	// 添加汇总行
	summaryRow := len(expenses) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow), "总计")
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", summaryRow), totalAmount.InexactFloat64())
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("G%d", summaryRow), summaryStyle)

	// 输出文件
	filename := fmt.Sprintf("expenses_%s_%s.xlsx", startStr, endStr)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, SafeErrorMessage(err, "导出失败"))
	}
}
