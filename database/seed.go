package database

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"expensebook/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 演示数据的标题池，按类别名组织
var seedTitles = map[string][]string{
	"餐饮": {"午餐", "晚餐", "咖啡", "外卖", "超市买菜"},
	"交通": {"地铁", "打车", "加油", "公交卡充值"},
	"购物": {"日用品", "衣服", "数码配件"},
	"娱乐": {"电影票", "游戏充值", "KTV"},
	"医疗": {"药店", "门诊挂号"},
	"教育": {"买书", "网课"},
	"住房": {"房租", "水电费", "物业费"},
	"其他": {"杂项支出"},
}

// Seed 生成 n 条随机演示消费记录，分布在最近三个月内
// 约十分之一的记录不挂类别，用于演示“未分类”汇总
func Seed(db *gorm.DB, n int) error {
	var categories []models.Category
	if err := db.Order("id ASC").Find(&categories).Error; err != nil {
		return fmt.Errorf("查询类别失败: %w", err)
	}
	if len(categories) == 0 {
		return fmt.Errorf("没有可用类别，请先初始化数据库")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	expenses := make([]models.Expense, 0, n)
	for i := 0; i < n; i++ {
		// 最近 90 天内的随机日期
		day := now.AddDate(0, 0, -rng.Intn(90))
		// 1.00 ~ 500.99 之间的随机金额，精确到分
		amount := decimal.New(int64(rng.Intn(50000)+100), -2)

		e := models.Expense{
			Amount: amount,
			Date:   models.NewDate(day.Year(), int(day.Month()), day.Day()),
		}
		if rng.Intn(10) == 0 {
			e.Title = "未分类支出"
		} else {
			cat := categories[rng.Intn(len(categories))]
			titles := seedTitles[cat.Name]
			if len(titles) == 0 {
				titles = []string{cat.Name + "消费"}
			}
			e.Title = titles[rng.Intn(len(titles))]
			e.CategoryID = &cat.ID
		}
		expenses = append(expenses, e)
	}

	if err := db.Create(&expenses).Error; err != nil {
		return fmt.Errorf("写入演示数据失败: %w", err)
	}
	log.Printf("已生成 %d 条演示消费记录", n)
	return nil
}
