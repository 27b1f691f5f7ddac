// 包 config：集中读取 .env 与环境变量，所有默认值在此处给出
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hospital-api/internal/geo"

	"github.com/joho/godotenv"
)

// Config 进程级配置
type Config struct {
	Addr    string
	APIBase string

	AMapKey       string
	AMapTimeout   time.Duration
	AMapTypes     string
	MergedURL     string
	SearchRadiusM int

	CacheBackend  string
	CacheRadiusM  float64
	CacheLifetime time.Duration
	CacheMemCap   int

	GeoIPPath     string
	IP2RegionPath string
	RulesPath     string
	DefaultCenter geo.Point

	RateLimitEnabled bool
	RateLimitQPS     int

	HeartbeatInterval time.Duration
	WarmCenters       []geo.Point
	WarmInterval      time.Duration

	TLSEnable   bool
	TLSCertPath string
	TLSKeyPath  string

	LogLevel  string
	LogFormat string
}

// LoadDotenv 依次加载 .env 与 data/env/.env，文件缺失时忽略
func LoadDotenv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// 文档注释：从环境变量读取配置
// 约束：数值解析失败时回退默认值；不做外部可达性校验。
func FromEnv() Config {
	c := Config{
		Addr:              str("ADDR", ":8080"),
		APIBase:           strings.TrimRight(str("API_BASE", "/api"), "/"),
		AMapKey:           os.Getenv("AMAP_SERVER_KEY"),
		AMapTimeout:       time.Duration(num("AMAP_TIMEOUT_MS", 5000)) * time.Millisecond,
		AMapTypes:         str("AMAP_TYPES", "090000"),
		MergedURL:         os.Getenv("MERGED_POI_URL"),
		SearchRadiusM:     num("SEARCH_RADIUS_M", 5000),
		CacheBackend:      strings.ToLower(str("CACHE_BACKEND", "memory")),
		CacheRadiusM:      float64(num("CACHE_RADIUS_M", 5000)),
		CacheLifetime:     time.Duration(num("CACHE_LIFETIME_H", 30*24)) * time.Hour,
		CacheMemCap:       num("CACHE_MEMORY_CAP", 256),
		GeoIPPath:         os.Getenv("GEOIP_CITY_PATH"),
		IP2RegionPath:     os.Getenv("IP2REGION_V4_PATH"),
		RulesPath:         os.Getenv("CLASSIFIER_RULES_PATH"),
		DefaultCenter:     geo.Point{Lat: 39.9336, Lng: 116.4402},
		RateLimitEnabled:  os.Getenv("RATE_LIMIT_ENABLED") == "true",
		RateLimitQPS:      num("RATE_LIMIT_QPS", 200),
		HeartbeatInterval: time.Duration(num("HEARTBEAT_INTERVAL_S", 60)) * time.Second,
		WarmCenters:       ParseCenters(os.Getenv("WARM_CENTERS")),
		WarmInterval:      time.Duration(num("WARM_INTERVAL_MIN", 0)) * time.Minute,
		TLSEnable:         os.Getenv("TLS_ENABLE") == "true",
		TLSCertPath:       str("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
		TLSKeyPath:        str("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		LogFormat:         os.Getenv("LOG_FORMAT"),
	}
	if p, err := geo.ParseLngLat(os.Getenv("DEFAULT_CENTER")); err == nil {
		c.DefaultCenter = p
	}
	return c
}

// ParseCenters 解析以分号分隔的 "lng,lat" 列表，非法项忽略
func ParseCenters(s string) []geo.Point {
	var out []geo.Point
	for _, part := range strings.Split(s, ";") {
		if p, err := geo.ParseLngLat(part); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func str(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func num(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
