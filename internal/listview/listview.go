// 包 listview：结果列表；行号与地图标记徽标来自同一排名，点击行聚焦对应标记
package listview

import (
	"math"

	"bizmap/internal/business"
	"bizmap/internal/overlay"
	"bizmap/internal/registry"
	"bizmap/internal/scene"
	"bizmap/internal/viewport"
)

// SummaryLimit：描述截断长度（字符）
const SummaryLimit = 60

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateEmpty   State = "empty"
	StateError   State = "error"
)

const (
	MsgLoading = "Finding businesses..."
	MsgEmpty   = "No businesses found"
	MsgError   = "Error loading results"
)

// Row：列表行
type Row struct {
	Rank      int         `json:"rank"`
	ID        business.ID `json:"id"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Color     string      `json:"color"`
	Summary   string      `json:"summary,omitempty"`
	DistanceM *float64    `json:"distance_m,omitempty"`
}

// MarkerLookup：行激活时查找标记
type MarkerLookup interface {
	Get(id business.ID) (registry.Marker, bool)
}

type Presenter struct {
	surface scene.Surface
	markers MarkerLookup
	state   State
	message string
	rows    []Row
}

func New(s scene.Surface, markers MarkerLookup) *Presenter {
	return &Presenter{surface: s, markers: markers, state: StateIdle}
}

type renderOpts struct {
	origin   bool
	lat, lon float64
}

// Option：Render 选项
type Option func(*renderOpts)

// WithOrigin：为每行附加到搜索原点的距离（米）
func WithOrigin(lat, lon float64) Option {
	return func(o *renderOpts) { o.origin, o.lat, o.lon = true, lat, lon }
}

// Render：整体替换列表内容；行号 = 位置 + 1
func (p *Presenter) Render(ranked []business.Business, opts ...Option) {
	var o renderOpts
	for _, fn := range opts {
		fn(&o)
	}
	p.rows = make([]Row, 0, len(ranked))
	for i, b := range ranked {
		row := Row{
			Rank:     i + 1,
			ID:       b.ID,
			Name:     b.Name,
			Category: b.CategoryName(),
			Color:    overlay.ColorFor(b.CategoryName()),
			Summary:  Truncate(b.Description, SummaryLimit),
		}
		if o.origin {
			d := math.Round(viewport.DistanceMeters(o.lat, o.lon, b.Lat(), b.Lon()))
			row.DistanceM = &d
		}
		p.rows = append(p.rows, row)
	}
	if len(p.rows) == 0 {
		p.state, p.message = StateEmpty, MsgEmpty
		return
	}
	p.state, p.message = StateReady, ""
}

// SetLoading：查询进行中；保留旧行直到新结果到达
func (p *Presenter) SetLoading() {
	p.state, p.message = StateLoading, MsgLoading
}

// SetError：查询失败，与空结果区分
//
// 约束：
//   - 失败时地图保留旧标记及其徽标，旧行同样保留，只在错误态下不对外展示；
//     下一次搜索被取代或失败后 Restore 可以让它们重新出现
func (p *Presenter) SetError(msg string) {
	if msg == "" {
		msg = MsgError
	}
	p.state, p.message = StateError, msg
}

// Restore：取消加载态（如被新搜索取代或名称搜索无结果时）
func (p *Presenter) Restore() {
	if p.state != StateLoading {
		return
	}
	switch {
	case len(p.rows) > 0:
		p.state, p.message = StateReady, ""
	default:
		p.state, p.message = StateIdle, ""
	}
}

// Activate：居中到实体并打开其标记弹窗；无标记时不做任何事
func (p *Presenter) Activate(id business.ID) bool {
	m, ok := p.markers.Get(id)
	if !ok {
		return false
	}
	p.surface.SetView(m.Lat, m.Lon, viewport.FocusZoom)
	return p.surface.OpenPopup(m.Layer)
}

func (p *Presenter) State() State    { return p.state }
func (p *Presenter) Message() string { return p.message }

// Rows：当前可见行；错误态下为空
func (p *Presenter) Rows() []Row {
	if p.state == StateError {
		return nil
	}
	return append([]Row(nil), p.rows...)
}

// Truncate：超过 limit 个字符时截取前 limit 个并追加 "..."；不按词边界调整
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
