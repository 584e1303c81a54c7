package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() { sqlDB.Close() }
}

func expenseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "amount", "date", "note", "category_id", "created_at", "updated_at", "deleted_at"})
}

func categoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "color", "created_at", "updated_at", "deleted_at"})
}

func TestExpenseHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 校验类别存在
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows().AddRow(1, "餐饮", "#ef4444", time.Now(), time.Now(), nil))

	// INSERT expense
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// 重新加载带类别的记录
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows().AddRow(1, "午餐", "85.40", "2025-03-15", "", 1, time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows().AddRow(1, "餐饮", "#ef4444", time.Now(), time.Now(), nil))

	router := gin.New()
	router.POST("/expenses", NewExpenseHandler(db).Create)

	body := `{"title":"午餐","amount":85.40,"date":"2025-03-15","category_id":1}`
	req := httptest.NewRequest("POST", "/expenses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "午餐", data["title"])
	assert.InDelta(t, 85.40, data["amount"], 0.001)
	assert.Equal(t, "2025-03-15", data["date"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Create_InvalidCategory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 类别不存在
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows())

	router := gin.New()
	router.POST("/expenses", NewExpenseHandler(db).Create)

	body := `{"title":"午餐","amount":85.40,"date":"2025-03-15","category_id":999}`
	req := httptest.NewRequest("POST", "/expenses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Create_NegativeAmount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.POST("/expenses", NewExpenseHandler(db).Create)

	body := `{"title":"午餐","amount":-5,"date":"2025-03-15"}`
	req := httptest.NewRequest("POST", "/expenses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "金额")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Create_MissingAmount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.POST("/expenses", NewExpenseHandler(db).Create)

	body := `{"title":"午餐","date":"2025-03-15"}`
	req := httptest.NewRequest("POST", "/expenses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestExpenseHandler_Create_InvalidDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.POST("/expenses", NewExpenseHandler(db).Create)

	body := `{"title":"午餐","amount":10,"date":"2025/03/15"}`
	req := httptest.NewRequest("POST", "/expenses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "日期")
}

func TestExpenseHandler_List_Pagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 总数 15 条，第 2 页返回剩余 5 条
	mock.ExpectQuery("SELECT count.* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(15))

	rows := expenseRows()
	for i := 11; i <= 15; i++ {
		rows.AddRow(i, "记录", "10.00", "2025-03-01", "", nil, time.Now(), time.Now(), nil)
	}
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(rows)

	router := gin.New()
	router.GET("/expenses", NewExpenseHandler(db).List)

	req := httptest.NewRequest("GET", "/expenses?page=2&page_size=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(15), data["total"])
	assert.Equal(t, float64(2), data["page"])
	assert.Len(t, data["list"], 5)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_List_OutOfRangePage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count.* FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(15))
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows())

	router := gin.New()
	router.GET("/expenses", NewExpenseHandler(db).List)

	// 超出范围的页码返回空列表而不是错误
	req := httptest.NewRequest("GET", "/expenses?page=4&page_size=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Len(t, data["list"], 0)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_List_InvalidMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.GET("/expenses", NewExpenseHandler(db).List)

	req := httptest.NewRequest("GET", "/expenses?month=13", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestExpenseHandler_Get_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows())

	router := gin.New()
	router.GET("/expenses/:id", NewExpenseHandler(db).Get)

	req := httptest.NewRequest("GET", "/expenses/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows().AddRow(1, "午餐", "85.40", "2025-03-15", "工作日", 1, time.Now(), time.Now(), nil))
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows().AddRow(1, "餐饮", "#ef4444", time.Now(), time.Now(), nil))

	router := gin.New()
	router.GET("/expenses/:id", NewExpenseHandler(db).Get)

	req := httptest.NewRequest("GET", "/expenses/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "午餐", data["title"])
	assert.InDelta(t, 85.40, data["amount"], 0.001)
	category := data["category"].(map[string]interface{})
	assert.Equal(t, "餐饮", category["name"])
	assert.Equal(t, "#ef4444", category["color"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Update_InvalidCategory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 记录存在
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows().AddRow(1, "午餐", "85.40", "2025-03-15", "", nil, time.Now(), time.Now(), nil))
	// 新类别不存在，校验失败后不应有任何 UPDATE
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows())

	router := gin.New()
	router.PUT("/expenses/:id", NewExpenseHandler(db).Update)

	body := `{"category_id":999}`
	req := httptest.NewRequest("PUT", "/expenses/1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Update_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows())

	router := gin.New()
	router.PUT("/expenses/:id", NewExpenseHandler(db).Update)

	body := `{"title":"晚餐"}`
	req := httptest.NewRequest("PUT", "/expenses/99", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Update(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows().AddRow(1, "午餐", "85.40", "2025-03-15", "", nil, time.Now(), time.Now(), nil))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `expenses`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 重新获取更新后的记录
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows().AddRow(1, "晚餐", "85.40", "2025-03-15", "", nil, time.Now(), time.Now(), nil))

	router := gin.New()
	router.PUT("/expenses/:id", NewExpenseHandler(db).Update)

	body := `{"title":"晚餐"}`
	req := httptest.NewRequest("PUT", "/expenses/1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "更新成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "晚餐", data["title"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows().AddRow(1, "午餐", "85.40", "2025-03-15", "", nil, time.Now(), time.Now(), nil))

	// 软删除走 UPDATE
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `expenses`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.DELETE("/expenses/:id", NewExpenseHandler(db).Delete)

	req := httptest.NewRequest("DELETE", "/expenses/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "删除成功")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseHandler_Delete_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(expenseRows())

	router := gin.New()
	router.DELETE("/expenses/:id", NewExpenseHandler(db).Delete)

	req := httptest.NewRequest("DELETE", "/expenses/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
