package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// 金额在 JSON 中输出为数字而非字符串
	decimal.MarshalJSONWithoutQuotes = true
}

// Expense 消费记录
// CategoryID 为空表示未分类；删除类别时其下的消费记录一并删除
type Expense struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Title      string          `json:"title" gorm:"size:100;not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Date       DateOnly        `json:"date" gorm:"type:date;not null;index"`
	Note       string          `json:"note" gorm:"size:255"`
	CategoryID *uint           `json:"category_id" gorm:"index"`
	Category   *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (Expense) TableName() string {
	return "expenses"
}
