// 包 engine：单个视图会话的搜索编排
// 背景：一次搜索 = 发号 → 查询（不持锁）→ 校验代号 → 整体替换标记/列表/指示器/视口
// 约束：任何一次搜索的全部查询成功之前，不修改登记表、列表与指示器；过期代号的结果直接丢弃
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"bizmap/internal/business"
	"bizmap/internal/listview"
	"bizmap/internal/locator"
	"bizmap/internal/logger"
	"bizmap/internal/metrics"
	"bizmap/internal/numbering"
	"bizmap/internal/registry"
	"bizmap/internal/scene"
	"bizmap/internal/sequence"
	"bizmap/internal/viewport"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultNearestLimit = 10
	DefaultRadiusMeters = 5000
)

// Querier：引擎依赖的后端查询能力（query.Client 满足）
type Querier interface {
	All(ctx context.Context) ([]business.Business, error)
	ByProximity(ctx context.Context, lat, lon, radiusMeters float64) ([]business.Business, error)
	ByNearest(ctx context.Context, lat, lon float64, limit int) ([]business.Business, error)
	ByContainment(ctx context.Context, areaName string) ([]business.Business, error)
	ByName(ctx context.Context, text string) ([]business.Business, error)
}

// Recorder：可选的搜索统计落库（store.Store 满足）
type Recorder interface {
	RecordSearch(ctx context.Context, kind, outcome string, results int) error
}

// Options：会话级参数；零值字段取默认
type Options struct {
	NearestLimit  int
	DefaultRadius float64
	Sequencer     sequence.Sequencer
	Recorder      Recorder
}

// Point：经纬度
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ListState：列表面板快照
type ListState struct {
	State   listview.State `json:"state"`
	Message string         `json:"message,omitempty"`
	Rows    []listview.Row `json:"rows"`
}

// Snapshot：前端绘制所需的会话完整状态
type Snapshot struct {
	Session    string         `json:"session"`
	Generation uint64         `json:"generation"`
	Scene      scene.Snapshot `json:"scene"`
	List       ListState      `json:"list"`
	Origin     *Point         `json:"origin,omitempty"`
	Picked     *Point         `json:"picked,omitempty"`
	Notice     string         `json:"notice,omitempty"`
}

// View：一个浏览器标签页对应的视图会话
type View struct {
	id  string
	q   Querier
	seq sequence.Sequencer
	rec Recorder
	lim int
	rad float64
	log *slog.Logger

	mu       sync.Mutex
	scene    *scene.Scene
	registry *registry.Registry
	list     *listview.Presenter
	locator  *locator.Indicator
	viewport *viewport.Controller
	applied  uint64
	picked   *Point
	notice   string
}

// New：创建会话，视口位于 (lat, lon, zoom)
func New(id string, q Querier, opts Options, lat, lon float64, zoom int) *View {
	if opts.NearestLimit <= 0 {
		opts.NearestLimit = DefaultNearestLimit
	}
	if opts.DefaultRadius <= 0 {
		opts.DefaultRadius = DefaultRadiusMeters
	}
	if opts.Sequencer == nil {
		opts.Sequencer = sequence.NewMemory()
	}
	sc := scene.New(lat, lon, zoom)
	reg := registry.New(sc)
	return &View{
		id:       id,
		q:        q,
		seq:      opts.Sequencer,
		rec:      opts.Recorder,
		lim:      opts.NearestLimit,
		rad:      opts.DefaultRadius,
		log:      logger.Session(id),
		scene:    sc,
		registry: reg,
		list:     listview.New(sc, reg),
		locator:  locator.New(sc),
		viewport: viewport.New(sc),
	}
}

func (v *View) ID() string { return v.id }

// LoadAll：首屏加载全部商户，不编号；列表保持不变
func (v *View) LoadAll(ctx context.Context) error {
	gen, err := v.seq.Next(ctx, v.id)
	if err != nil {
		return err
	}
	all, err := v.q.All(ctx)
	if err != nil {
		v.finish(ctx, "all", "error", 0)
		if ok, _ := v.lockIfCurrent(ctx, gen); ok {
			v.notice = NoticeLoadError
			v.mu.Unlock()
		}
		return err
	}
	ok, err := v.lockIfCurrent(ctx, gen)
	if err != nil {
		v.finish(ctx, "all", "error", 0)
		return err
	}
	if !ok {
		return v.stale(ctx, "all", gen)
	}
	v.registry.ReplaceAll(all, numbering.Assign(all, nil))
	v.applied, v.notice = gen, ""
	v.mu.Unlock()
	v.log.Info("load_all_done", "generation", gen, "count", len(all))
	v.finish(ctx, "all", outcomeOf(len(all)), len(all))
	return nil
}

// SearchArea：半径查询 + 最近邻查询；地图画半径内全部商户，编号与列表取最近邻序列
func (v *View) SearchArea(ctx context.Context, lat, lon, radius float64) error {
	if !validPoint(lat, lon) || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return ErrBadCoordinates
	}
	if radius <= 0 {
		radius = v.rad
	}
	gen, err := v.seq.Next(ctx, v.id)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.list.SetLoading()
	v.notice = ""
	v.mu.Unlock()
	v.log.Debug("search_area_begin", "generation", gen, "lat", lat, "lon", lon, "radius", radius)

	var inRadius, nearest []business.Business
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var e error
		inRadius, e = v.q.ByProximity(gctx, lat, lon, radius)
		return e
	})
	g.Go(func() error {
		var e error
		nearest, e = v.q.ByNearest(gctx, lat, lon, v.lim)
		return e
	})
	if err := g.Wait(); err != nil {
		v.log.Warn("search_area_failed", "generation", gen, "err", err)
		v.finish(ctx, "area", "error", 0)
		if ok, _ := v.lockIfCurrent(ctx, gen); ok {
			v.list.SetError(listview.MsgError)
			v.mu.Unlock()
		}
		return err
	}
	ok, err := v.lockIfCurrent(ctx, gen)
	if err != nil {
		v.finish(ctx, "area", "error", 0)
		return err
	}
	if !ok {
		return v.stale(ctx, "area", gen)
	}
	v.registry.ReplaceAll(inRadius, numbering.Assign(inRadius, nearest))
	v.list.Render(nearest, listview.WithOrigin(lat, lon))
	v.locator.SetLocation(lat, lon)
	v.viewport.Center(lat, lon, viewport.ZoomForRadius(radius))
	v.applied = gen
	v.mu.Unlock()
	v.log.Info("search_area_done", "generation", gen, "markers", len(inRadius), "ranked", len(nearest))
	v.finish(ctx, "area", outcomeOf(len(inRadius)), len(inRadius))
	return nil
}

// SearchName：名称/描述搜索；结果全部编号并自适应视口，清除搜索原点指示器
func (v *View) SearchName(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		v.mu.Lock()
		v.notice = NoticeEnterName
		v.mu.Unlock()
		return ErrEmptyInput
	}
	return v.searchText(ctx, "name", NoticeNoNameMatches, func(ctx context.Context) ([]business.Business, error) {
		return v.q.ByName(ctx, text)
	})
}

// SearchWithinArea：服务区包含查询；呈现方式与名称搜索一致
func (v *View) SearchWithinArea(ctx context.Context, areaName string) error {
	areaName = strings.TrimSpace(areaName)
	if areaName == "" {
		v.mu.Lock()
		v.notice = NoticeEnterArea
		v.mu.Unlock()
		return ErrEmptyInput
	}
	return v.searchText(ctx, "containment", NoticeNoAreaMatches, func(ctx context.Context) ([]business.Business, error) {
		return v.q.ByContainment(ctx, areaName)
	})
}

func (v *View) searchText(ctx context.Context, kind, emptyNotice string, run func(context.Context) ([]business.Business, error)) error {
	gen, err := v.seq.Next(ctx, v.id)
	if err != nil {
		return err
	}
	results, err := run(ctx)
	if err != nil {
		v.log.Warn("search_"+kind+"_failed", "generation", gen, "err", err)
		v.finish(ctx, kind, "error", 0)
		if ok, _ := v.lockIfCurrent(ctx, gen); ok {
			v.notice = NoticeNameError
			v.list.Restore()
			v.mu.Unlock()
		}
		return err
	}
	ok, err := v.lockIfCurrent(ctx, gen)
	if err != nil {
		v.finish(ctx, kind, "error", 0)
		return err
	}
	if !ok {
		return v.stale(ctx, kind, gen)
	}
	if len(results) == 0 {
		v.notice = emptyNotice
		v.list.Restore()
		v.mu.Unlock()
		v.finish(ctx, kind, "empty", 0)
		return ErrNoMatches
	}
	v.locator.Clear()
	v.registry.ReplaceAll(results, numbering.Assign(results, results))
	v.list.Render(results)
	if err := v.viewport.FitToResults(results); err != nil {
		v.log.Warn("fit_failed", "err", err)
	}
	v.applied, v.notice = gen, ""
	v.mu.Unlock()
	v.log.Info("search_"+kind+"_done", "generation", gen, "count", len(results))
	v.finish(ctx, kind, "ok", len(results))
	return nil
}

// Click：记录地图点击坐标（保留 6 位小数）供搜索表单使用；不发起查询
func (v *View) Click(lat, lon float64) (Point, error) {
	if !validPoint(lat, lon) {
		return Point{}, ErrBadCoordinates
	}
	p := Point{Lat: round6(lat), Lon: round6(lon)}
	v.mu.Lock()
	v.picked = &p
	v.mu.Unlock()
	return p, nil
}

// Activate：列表行激活；无对应标记时返回 false 且不做任何事
func (v *View) Activate(id business.ID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Activate(id)
}

// Snapshot：当前会话状态的一致副本
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := Snapshot{
		Session:    v.id,
		Generation: v.applied,
		Scene:      v.scene.Snapshot(),
		List:       ListState{State: v.list.State(), Message: v.list.Message(), Rows: v.list.Rows()},
		Notice:     v.notice,
	}
	if lat, lon, ok := v.locator.Current(); ok {
		out.Origin = &Point{Lat: lat, Lon: lon}
	}
	if v.picked != nil {
		p := *v.picked
		out.Picked = &p
	}
	return out
}

// MarkerIDs：当前登记的标识（按创建顺序）
func (v *View) MarkerIDs() []business.ID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.registry.IDs()
}

// Close：释放发号器中的会话状态
func (v *View) Close(ctx context.Context) error {
	return v.seq.Forget(ctx, v.id)
}

// lockIfCurrent：gen 仍是最新发出且新于已应用的代号时加锁并返回 true，由调用方解锁
//
// 约束：
//   - 发号器读取失败不等于被取代：撤销加载态、给出提示并返回 ErrSequenceUnavailable，不加锁
func (v *View) lockIfCurrent(ctx context.Context, gen uint64) (bool, error) {
	latest, err := v.seq.Latest(context.WithoutCancel(ctx), v.id)
	if err != nil {
		v.log.Error("sequence_latest_failed", "generation", gen, "err", err)
		v.mu.Lock()
		v.list.Restore()
		v.notice = NoticeUnavailable
		v.mu.Unlock()
		return false, fmt.Errorf("%w: %w", ErrSequenceUnavailable, err)
	}
	v.mu.Lock()
	if gen != latest || gen <= v.applied {
		v.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (v *View) stale(ctx context.Context, kind string, gen uint64) error {
	metrics.StaleResultsTotal.Inc()
	v.log.Info("search_stale_discarded", "kind", kind, "generation", gen)
	v.finish(ctx, kind, "stale", 0)
	return ErrSuperseded
}

func (v *View) finish(ctx context.Context, kind, outcome string, n int) {
	metrics.SearchesTotal.WithLabelValues(kind, outcome).Inc()
	if v.rec == nil {
		return
	}
	if err := v.rec.RecordSearch(context.WithoutCancel(ctx), kind, outcome, n); err != nil {
		v.log.Warn("stats_record_failed", "kind", kind, "err", err)
	}
}

func outcomeOf(n int) string {
	if n == 0 {
		return "empty"
	}
	return "ok"
}

func validPoint(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func round6(x float64) float64 { return math.Round(x*1e6) / 1e6 }
