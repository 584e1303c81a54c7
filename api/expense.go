package api

import (
	"strconv"
	"strings"
	"time"

	"expensebook/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 分页默认值与上限
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	db *gorm.DB
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler(db *gorm.DB) *ExpenseHandler {
	return &ExpenseHandler{db: db}
}

// CreateExpenseRequest 创建消费记录请求
type CreateExpenseRequest struct {
	Title      string           `json:"title" binding:"required" example:"午餐"`
	Amount     *decimal.Decimal `json:"amount" example:"99.99"`
	Date       string           `json:"date" binding:"required" example:"2025-03-15"`
	Note       string           `json:"note" example:"和同事聚餐"`
	CategoryID *uint            `json:"category_id" example:"1"`
}

// UpdateExpenseRequest 更新消费记录请求，未提供的字段保持不变
type UpdateExpenseRequest struct {
	Title      *string          `json:"title" example:"午餐"`
	Amount     *decimal.Decimal `json:"amount" example:"99.99"`
	Date       *string          `json:"date" example:"2025-03-15"`
	Note       *string          `json:"note" example:"和同事聚餐"`
	CategoryID *uint            `json:"category_id" example:"1"`
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Page       int  `form:"page" example:"1"`
	PageSize   int  `form:"page_size" example:"10"`
	Month      int  `form:"month" example:"3"`
	Year       int  `form:"year" example:"2025"`
	CategoryID uint `form:"category_id" example:"1"`
}

// checkCategoryExists 校验类别是否存在
func (h *ExpenseHandler) checkCategoryExists(id uint) error {
	var cat models.Category
	return h.db.First(&cat, id).Error
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 创建一条新的消费记录，金额必须为非负数，类别可选
// @Tags 消费记录
// @Accept json
// @Produce json
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		BadRequest(c, "标题不能为空")
		return
	}
	if req.Amount == nil {
		BadRequest(c, "金额不能为空")
		return
	}
	if req.Amount.IsNegative() {
		BadRequest(c, "金额不能为负数")
		return
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: "+models.DateFormat)
		return
	}

	// 校验类别是否存在
	if req.CategoryID != nil {
		if err := h.checkCategoryExists(*req.CategoryID); err != nil {
			BadRequest(c, "无效的消费类别")
			return
		}
	}

	expense := models.Expense{
		Title:      req.Title,
		Amount:     *req.Amount,
		Date:       date,
		Note:       req.Note,
		CategoryID: req.CategoryID,
	}

	if err := h.db.Create(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建消费记录失败"))
		return
	}

	// 返回时带上类别显示信息
	if expense.CategoryID != nil {
		h.db.Preload("Category").First(&expense, expense.ID)
	}
	SuccessWithMessage(c, "创建成功", expense)
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 获取消费记录列表，支持按月份、年份、类别筛选和分页。只传 month 时默认为当前年份的该月份。超出范围的页码返回空列表。
// @Tags 消费记录
// @Produce json
// @Param page query int false "页码（从1开始）" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param month query int false "月份（1-12）"
// @Param year query int false "年份"
// @Param category_id query int false "类别ID"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Expense}} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = DefaultPageSize
	}
	if req.PageSize > MaxPageSize {
		req.PageSize = MaxPageSize
	}
	if req.Month < 0 || req.Month > 12 {
		BadRequest(c, "月份应为 1-12")
		return
	}

	query := h.db.Model(&models.Expense{})

	// 时间范围筛选：月份未带年份时按当前年份处理
	if req.Month > 0 {
		year := req.Year
		if year == 0 {
			year = time.Now().Year()
		}
		start := time.Date(year, time.Month(req.Month), 1, 0, 0, 0, 0, time.Local)
		end := start.AddDate(0, 1, 0)
		query = query.Where("date >= ? AND date < ?", start.Format(models.DateFormat), end.Format(models.DateFormat))
	} else if req.Year > 0 {
		start := time.Date(req.Year, 1, 1, 0, 0, 0, 0, time.Local)
		end := start.AddDate(1, 0, 0)
		query = query.Where("date >= ? AND date < ?", start.Format(models.DateFormat), end.Format(models.DateFormat))
	}

	// 类别筛选
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 获取列表（空结果返回空数组而不是 null）
	expenses := make([]models.Expense, 0, req.PageSize)
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Category").
		Order("date DESC, id DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     expenses,
	})
}

// Get 获取单条消费记录
// @Summary 获取单条消费记录
// @Description 根据ID获取消费记录详情
// @Tags 消费记录
// @Produce json
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 400 {object} Response "无效的ID"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := h.db.Preload("Category").First(&expense, uint(id)).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, expense)
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 更新指定的消费记录，只更新请求中提供的字段，校验规则与创建一致
// @Tags 消费记录
// @Accept json
// @Produce json
// @Param id path int true "消费记录ID"
// @Param request body UpdateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := h.db.First(&expense, uint(id)).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 先完成全部校验再落库，校验失败时记录保持原状
	updates := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			BadRequest(c, "标题不能为空")
			return
		}
		updates["title"] = title
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			BadRequest(c, "金额不能为负数")
			return
		}
		updates["amount"] = *req.Amount
	}
	if req.Date != nil {
		date, err := models.ParseDate(*req.Date)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: "+models.DateFormat)
			return
		}
		updates["date"] = date
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if req.CategoryID != nil {
		if err := h.checkCategoryExists(*req.CategoryID); err != nil {
			BadRequest(c, "无效的消费类别")
			return
		}
		updates["category_id"] = *req.CategoryID
	}

	if len(updates) > 0 {
		if err := h.db.Model(&expense).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	// 重新获取更新后的记录
	h.db.Preload("Category").First(&expense, expense.ID)
	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Description 删除指定的消费记录，不影响其他数据
// @Tags 消费记录
// @Produce json
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "无效的ID"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := h.db.First(&expense, uint(id)).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := h.db.Delete(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
