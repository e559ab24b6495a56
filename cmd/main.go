// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizmap/internal/api"
	"bizmap/internal/config"
	"bizmap/internal/engine"
	"bizmap/internal/geoip"
	"bizmap/internal/logger"
	"bizmap/internal/metrics"
	"bizmap/internal/middleware"
	"bizmap/internal/migrate"
	"bizmap/internal/query"
	"bizmap/internal/sequence"
	"bizmap/internal/session"
	"bizmap/internal/store"
	"bizmap/internal/utils"
)

func main() {
	cfg := config.Load()
	l := logger.Configure(cfg.LogLevel, cfg.LogFormat)
	l.Debug("log_init_ok")
	l.Debug("config_api_base", "base", cfg.APIBase)
	l.Debug("config_backend", "url", cfg.BackendBaseURL, "timeout_ms", cfg.BackendTimeout.Milliseconds())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	qc := query.NewClient(cfg.BackendBaseURL, &http.Client{Timeout: cfg.BackendTimeout})

	var seq sequence.Sequencer = sequence.NewMemory()
	if cfg.Sequencer == "redis" {
		rc := utils.OpenRedisFromEnv()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
			os.Exit(1)
		}
		l.Info("redis_ping_ok")
		defer rc.Close()
		seq = sequence.NewRedis(rc, cfg.SessionTTL)
	}
	l.Info("sequencer_ready", "kind", cfg.Sequencer)

	// 统计为可选项：关闭时不连接数据库
	var recorder engine.Recorder
	var stats api.StatsReader
	if cfg.StatsEnabled {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
			os.Exit(1)
		}
		l.Info("db_ping_ok")
		if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st := store.AttachDB(db)
		recorder, stats = st, st
	} else {
		l.Info("stats_disabled")
	}

	var geo *geoip.Locator
	if _, err := os.Stat(cfg.GeoIPPath); err == nil {
		if g, err := geoip.Open(cfg.GeoIPPath); err == nil {
			geo = g
			defer g.Close()
		} else {
			l.Error("geoip_open_error", "path", cfg.GeoIPPath, "err", err)
		}
	} else {
		l.Info("geoip_skipped", "path", cfg.GeoIPPath)
	}

	sessions := session.NewManager(cfg.SessionCapacity, cfg.SessionTTL)
	go sessions.Run(ctx, time.Minute)
	opts := engine.Options{
		NearestLimit:  cfg.NearestLimit,
		DefaultRadius: cfg.DefaultRadius,
		Sequencer:     seq,
		Recorder:      recorder,
	}
	build := func(id, clientIP string) *engine.View {
		lat, lon, zoom := geo.Center(clientIP)
		return engine.New(id, qc, opts, lat, lon, zoom)
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(sessions, build, stats)
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())
	mux.Handle("/", http.FileServer(http.Dir(cfg.UIDist)))
	// 向前端暴露 API 基础路径，避免硬编码
	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + cfg.APIBase + "'\n"))
	})

	handler := serveHandler(l, mux, cfg.RateLimitEnabled, cfg.RateLimitQPS)
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	var err error
	if cfg.TLSEnable {
		if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "bizmap.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
		err = s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
	} else {
		l.Info("listening", "addr", cfg.Addr)
		err = s.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("server_stopped")
}

// serveHandler：访问日志在最外层，限流拒绝的请求同样留下 http_access 记录
func serveHandler(l *slog.Logger, mux http.Handler, limit bool, qps int) http.Handler {
	return logger.AccessMiddleware(l)(middleware.Wrap(mux, limit, qps))
}
