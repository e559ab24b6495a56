// 包 locator：搜索原点指示器；任一时刻至多存在一个
package locator

import (
	"bizmap/internal/overlay"
	"bizmap/internal/scene"
)

type Indicator struct {
	surface scene.Surface
	layer   scene.LayerID
	lat     float64
	lon     float64
	present bool
}

func New(s scene.Surface) *Indicator { return &Indicator{surface: s} }

// SetLocation：先销毁旧指示器，再在给定点创建一个新的
func (i *Indicator) SetLocation(lat, lon float64) {
	i.Clear()
	i.layer = i.surface.AddMarker(scene.MarkerSpec{
		Key:    "search-location",
		Kind:   scene.KindSearchLocation,
		Lat:    lat,
		Lon:    lon,
		Visual: overlay.SearchLocationVisual(),
	})
	i.lat, i.lon, i.present = lat, lon, true
}

// Clear：存在时销毁
func (i *Indicator) Clear() {
	if !i.present {
		return
	}
	i.surface.RemoveLayer(i.layer)
	i.layer, i.present = 0, false
}

// Current：当前原点
func (i *Indicator) Current() (lat, lon float64, ok bool) {
	return i.lat, i.lon, i.present
}
