// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-api/internal/amap"
	"hospital-api/internal/api"
	"hospital-api/internal/config"
	"hospital-api/internal/locate"
	"hospital-api/internal/logger"
	"hospital-api/internal/metrics"
	"hospital-api/internal/middleware"
	"hospital-api/internal/poi"
	"hospital-api/internal/providers"
	"hospital-api/internal/proximity"
	"hospital-api/internal/recommend"
	"hospital-api/internal/utils"
	"hospital-api/internal/warmup"
)

func main() {
	config.LoadDotenv()
	cfg := config.FromEnv()
	// 日志初始化
	l := logger.SetupWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	l.Debug("log_init_ok")
	l.Debug("config_api_base", "base", cfg.APIBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	classifier := poi.NewClassifier()
	if cfg.RulesPath != "" {
		c, err := poi.LoadClassifier(cfg.RulesPath)
		if err != nil {
			l.Error("classifier_rules_error", "path", cfg.RulesPath, "err", err)
			os.Exit(1)
		}
		classifier = c
		l.Info("classifier_rules_loaded", "path", cfg.RulesPath, "rules", len(c.Rules()))
	}
	pipeline := poi.NewPipeline(classifier)

	hc := &http.Client{Timeout: cfg.AMapTimeout}
	ac := amap.NewClient(cfg.AMapKey, hc)
	if !ac.HasKey() {
		l.Warn("amap_key_missing")
	} else if err := ac.Ping(ctx); err != nil {
		// 密钥不可用时仍启动，由数据源链降级与心跳反映状态
		l.Error("amap_key_check_error", "err", err)
	} else {
		l.Info("amap_key_ok")
	}

	// 文档注释：数据源链
	// 背景：主数据源（合并接口）优先，高德周边检索兜底；每个数据源的结果都经流水线处理后再判断是否为空。
	chain := providers.NewChain(cfg.HeartbeatInterval)
	if cfg.MergedURL != "" {
		chain.Register(providers.NewMergedSource(cfg.MergedURL, hc))
		l.Info("provider_register", "name", "merged", "endpoint", cfg.MergedURL)
	}
	if ac.HasKey() {
		chain.Register(providers.NewAMapSource(ac, cfg.AMapTypes))
		l.Info("provider_register", "name", "amap")
	}
	if chain.Len() == 0 {
		l.Warn("provider_none")
	}
	chain.Process = pipeline.Run
	chain.Heartbeat(ctx)
	chain.Start(ctx)

	rc := openRedis(ctx, cfg)
	if rc != nil {
		defer rc.Close()
	}
	store, closeStore := openStore(ctx, cfg, rc)
	defer closeStore()
	cache := proximity.New(store, proximity.WithRadius(cfg.CacheRadiusM), proximity.WithLifetime(cfg.CacheLifetime))
	l.Info("proximity_cache_ready", "store", store.Name(), "radius_m", cache.Radius(), "lifetime", cache.Lifetime())

	opts := recommend.Options{
		Fetcher:       chain,
		Cache:         cache,
		RadiusM:       cfg.SearchRadiusM,
		DefaultCenter: cfg.DefaultCenter,
	}
	if ac.HasKey() {
		opts.Geocoder = ac
	}
	if locs := openLocators(cfg, ac); len(locs) > 0 {
		opts.Locator = locs
	}
	svc := recommend.NewService(opts)
	sessions := recommend.NewSessions(0)

	warmup.New(svc, cfg.WarmCenters, cfg.WarmInterval).Start(ctx)

	mux := http.NewServeMux()
	// 文档注释：构建路由（携带推荐服务、会话表与高德代理）
	apiMux := api.BuildRoutes(api.Deps{
		Service:  svc,
		Sessions: sessions,
		Health:   chain,
		AMap:     ac,
		Redis:    rc,
	})
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler, cfg.RateLimitEnabled, cfg.RateLimitQPS)
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	listen := s.ListenAndServe
	if cfg.TLSEnable {
		if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "hospital-api.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
		listen = func() error { return s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath) }
	} else {
		l.Info("listening", "addr", cfg.Addr)
	}
	// 排空后才返回，随后 defer 依次关闭存储与 Redis
	if err := serve(ctx, s, listen, 10*time.Second); err != nil {
		l.Error("server_error", "err", err)
		closeStore()
		os.Exit(1)
	}
	l.Info("shutdown_done")
}

// openLocators IP 定位链：GeoIP 城市库优先，ip2region + 地理编码其次
func openLocators(cfg config.Config, ac *amap.Client) locate.Chain {
	l := logger.L()
	var locs locate.Chain
	if cfg.GeoIPPath != "" {
		if g, err := locate.OpenGeoIP(cfg.GeoIPPath); err == nil {
			locs = append(locs, g)
			l.Info("locator_register", "name", g.Name())
		} else {
			l.Error("geoip_open_error", "path", cfg.GeoIPPath, "err", err)
		}
	}
	if cfg.IP2RegionPath != "" && ac.HasKey() {
		if r, err := locate.OpenRegion(cfg.IP2RegionPath, ac); err == nil {
			locs = append(locs, r)
			l.Info("locator_register", "name", r.Name())
		} else {
			l.Error("ip2region_open_error", "path", cfg.IP2RegionPath, "err", err)
		}
	}
	return locs
}
