// 包 scene：地图渲染底座的抽象（Surface）与服务端记录实现（Scene）
// 背景：瓦片、标记绘制、平移缩放由前端完成；服务端只维护应当绘制的状态并以 JSON 下发
package scene

import (
	"sort"
	"sync"

	"bizmap/internal/overlay"
)

// LayerID：底座上单个图层（标记）的句柄
type LayerID uint64

// Bounds：经纬度包围盒
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// MarkerSpec：绘制一个标记所需的全部信息
type MarkerSpec struct {
	Key    string               `json:"key"`
	Kind   string               `json:"kind"`
	Lat    float64              `json:"lat"`
	Lon    float64              `json:"lon"`
	Visual overlay.MarkerVisual `json:"visual"`
}

const (
	KindBusiness       = "business"
	KindSearchLocation = "search_location"
)

// Surface：地图底座契约
type Surface interface {
	AddMarker(m MarkerSpec) LayerID
	RemoveLayer(id LayerID)
	OpenPopup(id LayerID) bool
	SetView(lat, lon float64, zoom int)
	FitBounds(b Bounds, paddingPx int)
}

// View：当前视口；Fit 非空表示前端应按包围盒自适应
type View struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Zoom    int     `json:"zoom"`
	Fit     *Bounds `json:"fit,omitempty"`
	Padding int     `json:"padding,omitempty"`
}

// Layer：快照中的图层
type Layer struct {
	ID LayerID `json:"id"`
	MarkerSpec
}

// Snapshot：某一时刻应绘制的完整状态
type Snapshot struct {
	Layers    []Layer  `json:"layers"`
	View      View     `json:"view"`
	OpenPopup *LayerID `json:"open_popup,omitempty"`
	Revision  uint64   `json:"revision"`
}

// Scene：记录式 Surface 实现，线程安全
type Scene struct {
	mu       sync.Mutex
	next     LayerID
	layers   map[LayerID]MarkerSpec
	view     View
	popup    LayerID
	revision uint64
}

func New(lat, lon float64, zoom int) *Scene {
	return &Scene{layers: make(map[LayerID]MarkerSpec), view: View{Lat: lat, Lon: lon, Zoom: zoom}}
}

func (s *Scene) AddMarker(m MarkerSpec) LayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.layers[s.next] = m
	s.revision++
	return s.next
}

func (s *Scene) RemoveLayer(id LayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layers[id]; !ok {
		return
	}
	delete(s.layers, id)
	if s.popup == id {
		s.popup = 0
	}
	s.revision++
}

// OpenPopup：图层不存在时返回 false；同一时刻只有一个弹窗打开
func (s *Scene) OpenPopup(id LayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layers[id]; !ok {
		return false
	}
	s.popup = id
	s.revision++
	return true
}

func (s *Scene) SetView(lat, lon float64, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = View{Lat: lat, Lon: lon, Zoom: zoom}
	s.revision++
}

// FitBounds：West > East 表示包围盒跨越 ±180° 经线，中心取跨越侧
func (s *Scene) FitBounds(b Bounds, paddingPx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bb := b
	s.view = View{
		Lat:     (b.South + b.North) / 2,
		Lon:     centerLon(b.West, b.East),
		Zoom:    s.view.Zoom,
		Fit:     &bb,
		Padding: paddingPx,
	}
	s.revision++
}

// Snapshot：图层按 ID 升序（即创建顺序）
func (s *Scene) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Snapshot{Layers: make([]Layer, 0, len(s.layers)), View: s.view, Revision: s.revision}
	if s.view.Fit != nil {
		bb := *s.view.Fit
		out.View.Fit = &bb
	}
	for id, m := range s.layers {
		out.Layers = append(out.Layers, Layer{ID: id, MarkerSpec: m})
	}
	sort.Slice(out.Layers, func(i, j int) bool { return out.Layers[i].ID < out.Layers[j].ID })
	if s.popup != 0 {
		p := s.popup
		out.OpenPopup = &p
	}
	return out
}

// CountKind：某类图层的数量
func (s *Scene) CountKind(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.layers {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

func centerLon(west, east float64) float64 {
	if west <= east {
		return (west + east) / 2
	}
	c := (west + east + 360) / 2
	if c > 180 {
		c -= 360
	}
	return c
}
