// 包 registry：标记登记表；按实体标识持有当前全量结果集的标记句柄
package registry

import (
	"bizmap/internal/business"
	"bizmap/internal/metrics"
	"bizmap/internal/numbering"
	"bizmap/internal/overlay"
	"bizmap/internal/scene"
)

// Marker：已绘制的标记
type Marker struct {
	ID     business.ID
	Layer  scene.LayerID
	Lat    float64
	Lon    float64
	Rank   int
	Ranked bool
	Visual overlay.MarkerVisual
}

// Registry：标识 → 标记
// 约束：不支持并发 ReplaceAll，调用方（会话）负责串行化
type Registry struct {
	surface scene.Surface
	markers map[business.ID]Marker
	order   []business.ID
}

func New(s scene.Surface) *Registry {
	return &Registry{surface: s, markers: make(map[business.ID]Marker)}
}

// ReplaceAll：先移除全部旧标记，再为每个实体创建一个新标记
// 约束：完成后登记表中的标识集合恰好等于 entities 的标识集合；重复标识以最后一次为准
func (r *Registry) ReplaceAll(entities []business.Business, n numbering.Numbering) {
	r.Clear()
	for _, b := range entities {
		if old, ok := r.markers[b.ID]; ok {
			r.surface.RemoveLayer(old.Layer)
		} else {
			r.order = append(r.order, b.ID)
		}
		rank, ranked := n.Rank(b.ID)
		v := overlay.Render(b, rank, ranked)
		layer := r.surface.AddMarker(scene.MarkerSpec{
			Key:    string(b.ID),
			Kind:   scene.KindBusiness,
			Lat:    b.Lat(),
			Lon:    b.Lon(),
			Visual: v,
		})
		r.markers[b.ID] = Marker{ID: b.ID, Layer: layer, Lat: b.Lat(), Lon: b.Lon(), Rank: rank, Ranked: ranked, Visual: v}
	}
	metrics.MarkersRendered.Observe(float64(len(r.markers)))
}

// Get：按标识查找标记
func (r *Registry) Get(id business.ID) (Marker, bool) {
	m, ok := r.markers[id]
	return m, ok
}

// Clear：移除全部标记
func (r *Registry) Clear() {
	for _, id := range r.order {
		if m, ok := r.markers[id]; ok {
			r.surface.RemoveLayer(m.Layer)
		}
	}
	r.markers = make(map[business.ID]Marker)
	r.order = r.order[:0]
}

// IDs：按首次出现顺序返回已登记标识（副本）
func (r *Registry) IDs() []business.ID {
	return append([]business.ID(nil), r.order...)
}

func (r *Registry) Len() int { return len(r.markers) }
