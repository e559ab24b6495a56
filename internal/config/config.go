// 包 config：集中读取 .env 与环境变量
// 背景：入口与命令行工具共用同一套默认值，避免各处重复 os.Getenv
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr    string
	APIBase string
	UIDist  string

	BackendBaseURL string
	BackendTimeout time.Duration
	NearestLimit   int
	DefaultRadius  float64

	SessionTTL      time.Duration
	SessionCapacity int
	// Sequencer：memory | redis
	Sequencer string

	StatsEnabled bool
	GeoIPPath    string

	RateLimitEnabled bool
	RateLimitQPS     int

	TLSEnable   bool
	TLSCertPath string
	TLSKeyPath  string

	LogLevel  string
	LogFormat string
}

// Load：先加载 .env 与 data/env/.env（文件缺失忽略），再读取环境变量
// 约束：已存在的环境变量优先于 .env 内容
func Load() Config {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	return FromEnv()
}

// FromEnv：仅读取环境变量
func FromEnv() Config {
	apiBase := strings.TrimRight(str("API_BASE", "/api"), "/")
	if apiBase == "" {
		apiBase = "/api"
	}
	return Config{
		Addr:             str("ADDR", ":8080"),
		APIBase:          apiBase,
		UIDist:           str("UI_DIST", filepath.Join("ui", "dist")),
		BackendBaseURL:   str("BACKEND_BASE_URL", "http://127.0.0.1:8000"),
		BackendTimeout:   time.Duration(num("BACKEND_TIMEOUT_MS", 5000)) * time.Millisecond,
		NearestLimit:     num("NEAREST_LIMIT", 10),
		DefaultRadius:    float64(num("DEFAULT_RADIUS_M", 5000)),
		SessionTTL:       time.Duration(num("SESSION_TTL_S", 1800)) * time.Second,
		SessionCapacity:  num("SESSION_CAPACITY", 4096),
		Sequencer:        strings.ToLower(str("SEQUENCER", "memory")),
		StatsEnabled:     os.Getenv("STATS_ENABLED") == "true",
		GeoIPPath:        str("GEOIP_DB_PATH", filepath.Join("data", "geoip", "GeoLite2-City.mmdb")),
		RateLimitEnabled: os.Getenv("RATE_LIMIT_ENABLED") == "true",
		RateLimitQPS:     num("RATE_LIMIT_QPS", 200),
		TLSEnable:        os.Getenv("TLS_ENABLE") == "true",
		TLSCertPath:      str("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
		TLSKeyPath:       str("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
	}
}

func str(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// num：解析失败或非正数时回退到默认值
func num(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, e := strconv.Atoi(strings.TrimSpace(s)); e == nil && n > 0 {
			return n
		}
	}
	return def
}
