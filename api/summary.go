package api

import (
	"sort"
	"strconv"
	"time"

	"expensebook/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SummaryHandler 月度汇总处理器
type SummaryHandler struct {
	db *gorm.DB
}

// NewSummaryHandler 创建月度汇总处理器
func NewSummaryHandler(db *gorm.DB) *SummaryHandler {
	return &SummaryHandler{db: db}
}

// CategorySummary 单个类别的月度小计
type CategorySummary struct {
	Category string          `json:"category" example:"餐饮"`
	Color    string          `json:"color" example:"#ef4444"`
	Total    decimal.Decimal `json:"total" example:"85.40"`
}

// SummaryResponse 月度汇总返回
// Total 恒等于各类别小计与未分类小计之和
type SummaryResponse struct {
	Year          int               `json:"year" example:"2025"`
	Month         int               `json:"month" example:"3"`
	Total         decimal.Decimal   `json:"total" example:"180.65"`
	ByCategory    []CategorySummary `json:"by_category"`
	Uncategorized decimal.Decimal   `json:"uncategorized" example:"95.25"`
}

// GetSummary 获取月度消费汇总
// @Summary 获取月度消费汇总
// @Description 统计指定年月的消费总额、各类别小计和未分类小计，默认统计当前月份。类别小计按类别ID升序排列，只包含当月有消费的类别。
// @Tags 统计
// @Produce json
// @Param year query int false "年份（2000-2100，默认当前年）"
// @Param month query int false "月份（1-12，默认当前月）"
// @Success 200 {object} Response{data=SummaryResponse} "获取成功"
// @Failure 400 {object} Response "年份或月份参数错误"
// @Router /api/v1/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if s := c.Query("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 2000 || v > 2100 {
			BadRequest(c, "year格式错误，应为 2000-2100 之间的数字")
			return
		}
		year = v
	}
	if s := c.Query("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 12 {
			BadRequest(c, "month格式错误，应为 1-12 之间的数字")
			return
		}
		month = v
	}

	// 该月的日期区间 [1号, 下月1号)
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	var expenses []models.Expense
	if err := h.db.Preload("Category").
		Where("date >= ? AND date < ?", start.Format(models.DateFormat), end.Format(models.DateFormat)).
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 金额汇总在应用层用 decimal 精确累加，避免数据库浮点求和的精度损失
	total := decimal.Zero
	uncategorized := decimal.Zero
	byCategory := make(map[uint]*CategorySummary)

	for _, e := range expenses {
		total = total.Add(e.Amount)
		if e.CategoryID == nil || e.Category == nil {
			uncategorized = uncategorized.Add(e.Amount)
			continue
		}
		cs, ok := byCategory[*e.CategoryID]
		if !ok {
			cs = &CategorySummary{
				Category: e.Category.Name,
				Color:    e.Category.Color,
				Total:    decimal.Zero,
			}
			byCategory[*e.CategoryID] = cs
		}
		cs.Total = cs.Total.Add(e.Amount)
	}

	// 按类别ID升序输出，保证结果确定
	ids := make([]uint, 0, len(byCategory))
	for id := range byCategory {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	breakdown := make([]CategorySummary, 0, len(ids))
	for _, id := range ids {
		breakdown = append(breakdown, *byCategory[id])
	}

	Success(c, SummaryResponse{
		Year:          year,
		Month:         month,
		Total:         total,
		ByCategory:    breakdown,
		Uncategorized: uncategorized,
	})
}
