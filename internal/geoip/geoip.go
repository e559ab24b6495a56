// 包 geoip：按客户端 IP 估计初始地图中心
// 背景：新会话默认落在都柏林全景；若配置了 GeoLite2/GeoIP2 City 库且命中，则以所在城市为中心
package geoip

import (
	"net"

	"bizmap/internal/logger"
	"bizmap/internal/viewport"

	"github.com/oschwald/geoip2-golang"
)

// CityZoom：命中城市坐标时的初始缩放
const CityZoom = 11

// Locator：City 库读取器；nil 值可用，始终回退默认视口
type Locator struct {
	r *geoip2.Reader
}

func Open(path string) (*Locator, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	logger.L().Info("geoip_open_ok", "path", path, "type", r.Metadata().DatabaseType)
	return &Locator{r: r}, nil
}

func (l *Locator) Close() error {
	if l == nil || l.r == nil {
		return nil
	}
	return l.r.Close()
}

// Center：返回初始视口；私网地址、解析失败、库中无坐标时回退默认
func (l *Locator) Center(ip string) (lat, lon float64, zoom int) {
	lat, lon, zoom = viewport.DefaultLat, viewport.DefaultLon, viewport.DefaultZoom
	if l == nil || l.r == nil {
		return
	}
	addr := net.ParseIP(ip)
	if addr == nil || addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return
	}
	rec, err := l.r.City(addr)
	if err != nil {
		logger.L().Debug("geoip_lookup_error", "ip", ip, "err", err)
		return
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return
	}
	logger.L().Debug("geoip_hit", "ip", ip, "city", rec.City.Names["en"], "country", rec.Country.IsoCode)
	return rec.Location.Latitude, rec.Location.Longitude, CityZoom
}
