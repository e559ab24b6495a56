// 包 overlay：把实体与名次转换为标记外观（图标、徽标、弹窗内容）；纯函数，不持有状态
package overlay

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"

	"bizmap/internal/business"
)

const (
	DefaultColor        = "#667eea"
	SearchLocationColor = "#ff6b6b"
	MarkerSize          = 35
	SearchLocationSize  = 20
)

// 类别颜色表；未登记类别使用 DefaultColor
var categoryColors = map[string]string{
	"Restaurant": "#f5576c",
	"Retail":     "#667eea",
	"Services":   "#4facfe",
}

// ColorFor：按类别名称取颜色（区分大小写，与后端类别名一致）
func ColorFor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return DefaultColor
}

// MarkerVisual：标记外观描述
type MarkerVisual struct {
	Color     string `json:"color"`
	Size      int    `json:"size"`
	Badge     *int   `json:"badge,omitempty"`
	IconHTML  string `json:"icon_html"`
	PopupHTML string `json:"popup_html"`
	ClassName string `json:"class_name"`
}

var iconTmpl = template.Must(template.New("icon").Parse(
	`<div style="position: relative; background-color: {{.Color}}; width: {{.Size}}px; height: {{.Size}}px; border-radius: 50%; border: 3px solid white; box-shadow: 0 2px 8px rgba(0,0,0,0.3);"></div>` +
		`{{if .HasBadge}}<div class="marker-badge" style="position: absolute; top: -8px; right: -8px; background: white; color: {{.Color}}; width: 24px; height: 24px; border-radius: 50%; border: 2px solid {{.Color}}; display: flex; align-items: center; justify-content: center; font-weight: bold; font-size: 12px;">{{.Badge}}</div>{{end}}`))

var popupTmpl = template.Must(template.New("popup").Parse(
	`<div class="popup-content">` +
		`<h6 class="fw-bold mb-2" style="color: {{.Color}};">{{.Title}}</h6>` +
		`<p class="mb-2"><span class="badge" style="background-color: {{.Color}};">{{.Category}}</span></p>` +
		`{{with .Description}}<p class="small mb-2 text-muted">{{.}}</p>{{end}}` +
		`{{with .Phone}}<p class="small mb-1"><i class="bi bi-telephone"></i> {{.}}</p>{{end}}` +
		`{{with .Website}}<p class="small mb-0"><a href="{{.}}" target="_blank" class="text-decoration-none"><i class="bi bi-globe"></i> Visit Website</a></p>{{end}}` +
		`</div>`))

var searchIconTmpl = template.Must(template.New("search_icon").Parse(
	`<div style="position: relative;"><div style="background-color: {{.}}; width: 20px; height: 20px; border-radius: 50%; border: 3px solid white; box-shadow: 0 2px 8px rgba(0,0,0,0.3);"></div>` +
		`<div style="position: absolute; top: 50%; left: 50%; transform: translate(-50%, -50%); width: 8px; height: 8px; background: white; border-radius: 50%;"></div></div>`))

// Render：实体 + 可选名次 → 外观
// 约束：ranked 为 false 时忽略 rank；可选字段为空白时整行省略
func Render(b business.Business, rank int, ranked bool) MarkerVisual {
	color := ColorFor(b.CategoryName())
	v := MarkerVisual{Color: color, Size: MarkerSize, ClassName: "custom-marker"}
	title := b.Name
	if ranked {
		r := rank
		v.Badge = &r
		title = "#" + strconv.Itoa(rank) + ": " + b.Name
	}
	v.IconHTML = exec(iconTmpl, struct {
		Color    string
		Size     int
		Badge    int
		HasBadge bool
	}{color, MarkerSize, rank, ranked})
	v.PopupHTML = exec(popupTmpl, struct {
		Color, Title, Category, Description, Phone, Website string
	}{
		color, title, b.CategoryName(),
		strings.TrimSpace(b.Description),
		strings.TrimSpace(b.Phone),
		strings.TrimSpace(b.Website),
	})
	return v
}

// SearchLocationVisual：搜索原点指示器外观
func SearchLocationVisual() MarkerVisual {
	return MarkerVisual{
		Color:     SearchLocationColor,
		Size:      SearchLocationSize,
		IconHTML:  exec(searchIconTmpl, SearchLocationColor),
		PopupHTML: "<strong>Search Location</strong>",
		ClassName: "search-location-marker",
	}
}

func exec(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		// 模板为包内常量，执行失败只可能来自编程错误
		panic(err)
	}
	return buf.String()
}
