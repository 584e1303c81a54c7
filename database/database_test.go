package database

import (
	"testing"

	"expensebook/config"
	"expensebook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(name string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   "file:" + name + "?mode=memory&cache=shared",
		},
	}
}

func TestInit_SeedsDefaultCategories(t *testing.T) {
	db, err := Init(testConfig("dbinit"))
	require.NoError(t, err)
	defer Close(db)

	var categories []models.Category
	require.NoError(t, db.Order("id ASC").Find(&categories).Error)
	require.NotEmpty(t, categories)
	assert.Equal(t, "餐饮", categories[0].Name)
	for _, c := range categories {
		assert.NotEmpty(t, c.Color)
	}

	// 重复初始化不应重复写入默认类别
	count := len(categories)
	require.NoError(t, seedDefaultCategories(db))
	var again int64
	require.NoError(t, db.Model(&models.Category{}).Count(&again).Error)
	assert.Equal(t, int64(count), again)
}

func TestInit_UnknownDriver(t *testing.T) {
	cfg := testConfig("dbbad")
	cfg.Database.Driver = "oracle"
	_, err := Init(cfg)
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	db, err := Init(testConfig("dbseed"))
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Seed(db, 25))

	var count int64
	require.NoError(t, db.Model(&models.Expense{}).Count(&count).Error)
	assert.Equal(t, int64(25), count)

	// 所有记录金额非负
	var expenses []models.Expense
	require.NoError(t, db.Find(&expenses).Error)
	for _, e := range expenses {
		assert.False(t, e.Amount.IsNegative())
		assert.NotEmpty(t, e.Title)
	}
}
