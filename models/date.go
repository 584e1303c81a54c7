package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateFormat 日期格式（只含日期，不含时间）
const DateFormat = "2006-01-02"

// DateOnly 日期类型，数据库存 DATE 列，JSON 输出 "2006-01-02"
type DateOnly struct {
	time.Time
}

// NewDate 按年月日构造日期
func NewDate(year, month, day int) DateOnly {
	return DateOnly{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

// ParseDate 解析 "2006-01-02" 格式的日期
func ParseDate(s string) (DateOnly, error) {
	t, err := time.ParseInLocation(DateFormat, s, time.Local)
	if err != nil {
		return DateOnly{}, err
	}
	return DateOnly{Time: t}, nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateFormat) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("日期格式错误: %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value 实现 driver.Valuer
func (d DateOnly) Value() (driver.Value, error) {
	return d.Format(DateFormat), nil
}

// Scan 实现 sql.Scanner，兼容各驱动返回的 time.Time / string / []byte
func (d *DateOnly) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		parsed, err := ParseDate(v[:min(len(v), len(DateFormat))])
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case nil:
		*d = DateOnly{}
		return nil
	default:
		return fmt.Errorf("无法将 %T 转换为日期", value)
	}
}

// Year 返回年份
func (d DateOnly) Year() int {
	return d.Time.Year()
}

// Month 返回月份（1-12）
func (d DateOnly) Month() int {
	return int(d.Time.Month())
}
