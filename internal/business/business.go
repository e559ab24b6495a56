// 包 business：后端返回的商户记录（只读），以及坐标与字段完整性校验
package business

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMalformed：记录缺少几何、类别或标识等必需字段
var ErrMalformed = errors.New("malformed business record")

// ID：不透明标识；后端可能返回数字或字符串，统一保存为文本
type ID string

// UnmarshalJSON 同时接受 JSON 数字与字符串
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Category：类别（名称决定颜色）
type Category struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// Geometry：GeoJSON 几何；Point 的坐标顺序为 [经度, 纬度]
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// ServiceArea：服务区（仅保留名称，边界多边形由后端负责判定）
type ServiceArea struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

// Business：商户记录
// 约束：description/phone/website 可能为空字符串或 null，两者等价视为缺失
type Business struct {
	ID          ID           `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Email       string       `json:"email,omitempty"`
	Website     string       `json:"website,omitempty"`
	Category    *Category    `json:"category"`
	Location    *Geometry    `json:"location"`
	ServiceArea *ServiceArea `json:"service_area,omitempty"`
}

// Lat 纬度（coordinates[1]）
func (b Business) Lat() float64 { return b.Location.Coordinates[1] }

// Lon 经度（coordinates[0]）
func (b Business) Lon() float64 { return b.Location.Coordinates[0] }

// CategoryName 未设置类别时返回空串
func (b Business) CategoryName() string {
	if b.Category == nil {
		return ""
	}
	return b.Category.Name
}

// Validate：检查渲染所依赖的最小字段集合
func (b Business) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if b.Category == nil || strings.TrimSpace(b.Category.Name) == "" {
		return fmt.Errorf("%w: business %s missing category.name", ErrMalformed, b.ID)
	}
	if b.Location == nil || len(b.Location.Coordinates) != 2 {
		return fmt.Errorf("%w: business %s missing location.coordinates", ErrMalformed, b.ID)
	}
	lon, lat := b.Location.Coordinates[0], b.Location.Coordinates[1]
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return fmt.Errorf("%w: business %s has non-finite coordinates", ErrMalformed, b.ID)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: business %s coordinates out of range", ErrMalformed, b.ID)
	}
	return nil
}

// IDs 按顺序返回标识
func IDs(list []Business) []ID {
	out := make([]ID, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	return out
}
