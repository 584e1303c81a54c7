package api

import (
	"errors"
	"strconv"
	"strings"

	"expensebook/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler 消费类别处理器
type CategoryHandler struct {
	db *gorm.DB
}

// NewCategoryHandler 创建消费类别处理器
func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

// CategoryCreateRequest 创建类别请求
type CategoryCreateRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50" example:"餐饮"`
	Color string `json:"color" binding:"required,max=20" example:"#ef4444"` // 颜色代码
}

// List 获取类别列表
// @Summary 获取消费类别列表
// @Description 获取所有消费类别，按ID升序排列
// @Tags 消费类别
// @Produce json
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 500 {object} Response "查询失败"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	list := make([]models.Category, 0)
	if err := h.db.Order("id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}

// Create 创建类别
// @Summary 创建消费类别
// @Description 创建新的消费类别，名称和颜色均为必填，名称不可重复
// @Tags 消费类别
// @Accept json
// @Produce json
// @Param request body CategoryCreateRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 409 {object} Response "类别名称已存在"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}
	if strings.TrimSpace(req.Color) == "" {
		BadRequest(c, "颜色不能为空")
		return
	}

	// 名称唯一性（表上有唯一索引，此处提前给出友好提示）
	var existing models.Category
	if err := h.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		Conflict(c, "类别名称已存在")
		return
	}

	cat := models.Category{Name: req.Name, Color: req.Color}
	if err := h.db.Create(&cat).Error; err != nil {
		// 并发创建同名类别时预检查可能漏掉，唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Conflict(c, "类别名称已存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", cat)
}

// Delete 删除类别及其所有消费记录
// @Summary 删除消费类别
// @Description 删除指定类别，并在同一事务中删除该类别下的全部消费记录
// @Tags 消费类别
// @Produce json
// @Param id path int true "类别ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "无效的ID"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.Category
	if err := h.db.First(&cat, uint(id64)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "类别不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 级联删除必须和类别删除在同一事务中完成，
	// 不允许出现类别已删、记录残留（或反之）的中间状态
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", cat.ID).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
