// 包 viewport：由搜索半径推导缩放级别，或由结果集计算包围视口
package viewport

import (
	"errors"

	"github.com/golang/geo/s2"

	"bizmap/internal/business"
	"bizmap/internal/scene"
)

const (
	DefaultLat  = 53.3498
	DefaultLon  = -6.2603
	DefaultZoom = 6
	// FocusZoom：点击列表行时的缩放级别
	FocusZoom  = 15
	FitPadding = 50
	// earthRadiusMeters 与后端 geography 距离保持同一量级
	earthRadiusMeters = 6371008.8
)

// ErrNoResults：FitToResults 收到空序列
var ErrNoResults = errors.New("no results to fit")

// 半径阶梯（米，闭区间上界）→ 缩放级别
var zoomSteps = []struct {
	maxRadius float64
	zoom      int
}{
	{500, 16},
	{1000, 15},
	{2000, 14},
	{5000, 13},
	{10000, 12},
	{20000, 11},
}

// ZoomForRadius：半径越大级别越小（单调不增）
func ZoomForRadius(radiusMeters float64) int {
	for _, s := range zoomSteps {
		if radiusMeters <= s.maxRadius {
			return s.zoom
		}
	}
	return 10
}

// Controller：视口控制
type Controller struct {
	surface scene.Surface
}

func New(s scene.Surface) *Controller { return &Controller{surface: s} }

// Center：定位到点与缩放级别
func (c *Controller) Center(lat, lon float64, zoom int) {
	c.surface.SetView(lat, lon, zoom)
}

// FitToResults：覆盖全部实体坐标的最小包围盒，固定边距
// 约束：空序列返回 ErrNoResults 且不改动视口
func (c *Controller) FitToResults(entities []business.Business) error {
	b, err := BoundsOf(entities)
	if err != nil {
		return err
	}
	c.surface.FitBounds(b, FitPadding)
	return nil
}

// BoundsOf：实体坐标的经纬度包围盒
func BoundsOf(entities []business.Business) (scene.Bounds, error) {
	if len(entities) == 0 {
		return scene.Bounds{}, ErrNoResults
	}
	rect := s2.EmptyRect()
	for _, e := range entities {
		rect = rect.AddPoint(s2.LatLngFromDegrees(e.Lat(), e.Lon()))
	}
	lo, hi := rect.Lo(), rect.Hi()
	return scene.Bounds{
		South: lo.Lat.Degrees(),
		West:  lo.Lng.Degrees(),
		North: hi.Lat.Degrees(),
		East:  hi.Lng.Degrees(),
	}, nil
}

// DistanceMeters：大圆距离
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Radians() * earthRadiusMeters
}
