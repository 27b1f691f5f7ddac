// poi-fetch：对单个中心执行一次完整的获取与流水线处理，结果以 JSON 输出到标准输出或文件
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"hospital-api/internal/amap"
	"hospital-api/internal/config"
	"hospital-api/internal/geo"
	"hospital-api/internal/logger"
	"hospital-api/internal/poi"
	"hospital-api/internal/providers"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Lat     float64 `long:"lat"     description:"Center latitude (GCJ-02)"`
	Lng     float64 `long:"lng"     description:"Center longitude (GCJ-02)"`
	Address string  `short:"a" long:"address" description:"Geocode this address instead of lat/lng"`
	City    string  `long:"city"    description:"City hint for geocoding"`
	Radius  int     `short:"r" long:"radius"  env:"SEARCH_RADIUS_M" description:"Search radius in meters" default:"5000"`
	Output  string  `short:"o" long:"output"  description:"Write JSON to file instead of stdout"`
	Markers bool    `short:"m" long:"markers" description:"Emit map markers only"`
	WGS84   bool    `long:"wgs84"   description:"Convert output coordinates from GCJ-02 to WGS84 (GIS tools, GPX)"`

	MergedURL string        `long:"merged-url" env:"MERGED_POI_URL"        description:"Primary merged POI endpoint"`
	AMapKey   string        `long:"amap-key"   env:"AMAP_SERVER_KEY"       description:"AMap web service key"`
	AMapTypes string        `long:"amap-types" env:"AMAP_TYPES"            description:"AMap POI type codes" default:"090000"`
	Rules     string        `long:"rules"      env:"CLASSIFIER_RULES_PATH" description:"Classifier rule file (YAML)"`
	Timeout   time.Duration `long:"timeout"    env:"POI_FETCH_TIMEOUT"     description:"Overall timeout" default:"20s"`

	LogLevel  string `long:"log-level"  env:"LOG_LEVEL"  description:"debug|info|warn|error" default:"warn"`
	LogFormat string `long:"log-format" env:"LOG_FORMAT" description:"text|json"             default:"text"`
}

// output 输出结构
type output struct {
	Center       geo.Point      `json:"center"`
	Datum        string         `json:"datum"`
	Provider     string         `json:"provider"`
	IsSample     bool           `json:"isSample"`
	SampleReason string         `json:"sampleReason,omitempty"`
	Count        int            `json:"count"`
	Hospitals    []poi.Hospital `json:"hospitals,omitempty"`
	Markers      []poi.Marker   `json:"markers,omitempty"`
}

var errNoCenter = errors.New("either --lat/--lng or --address is required")

func main() {
	config.LoadDotenv()
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	l := logger.SetupWith(opts.LogLevel, opts.LogFormat, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	var w io.Writer = os.Stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			l.Error("output_open_error", "path", opts.Output, "err", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := run(ctx, opts, w); err != nil {
		l.Error("poi_fetch_error", "err", err)
		os.Exit(1)
	}
}

// 文档注释：一次获取
// 背景：与服务进程使用相同的数据源链与流水线，只是不经过缓存与会话。
func run(ctx context.Context, opts Options, w io.Writer) error {
	l := logger.L()
	classifier := poi.NewClassifier()
	if opts.Rules != "" {
		c, err := poi.LoadClassifier(opts.Rules)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		classifier = c
	}
	hc := &http.Client{Timeout: 5 * time.Second}
	ac := amap.NewClient(opts.AMapKey, hc)

	center := geo.Point{Lat: opts.Lat, Lng: opts.Lng}
	switch {
	case opts.Address != "":
		p, err := ac.Geocode(ctx, opts.Address, opts.City)
		if err != nil {
			return fmt.Errorf("geocode %q: %w", opts.Address, err)
		}
		center = p
	case !center.Valid():
		return errNoCenter
	}

	chain := providers.NewChain(0)
	if opts.MergedURL != "" {
		chain.Register(providers.NewMergedSource(opts.MergedURL, hc))
	}
	if ac.HasKey() {
		chain.Register(providers.NewAMapSource(ac, opts.AMapTypes))
	}
	chain.Process = poi.NewPipeline(classifier).Run

	l.Info("poi_fetch_start", "lat", center.Lat, "lng", center.Lng, "radius", opts.Radius, "providers", chain.Len())
	r, err := chain.Fetch(ctx, center, opts.Radius)
	if err != nil {
		return err
	}
	out := output{
		Center:       center,
		Datum:        "gcj02",
		Provider:     r.Provider,
		IsSample:     r.IsSample,
		SampleReason: r.SampleReason,
		Count:        len(r.Hospitals),
	}
	if opts.Markers {
		out.Markers = poi.Markers(r.Hospitals)
	} else {
		out.Hospitals = r.Hospitals
	}
	if opts.WGS84 {
		toWGS84(&out)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return err
	}
	l.Info("poi_fetch_done", "provider", r.Provider, "count", out.Count)
	return nil
}

// toWGS84 输出坐标整体由 GCJ-02 转为 WGS84；上游列表不被修改
func toWGS84(out *output) {
	out.Datum = "wgs84"
	out.Center = geo.GCJ02ToWGS84(out.Center)
	hs := make([]poi.Hospital, len(out.Hospitals))
	for i, h := range out.Hospitals {
		p := geo.GCJ02ToWGS84(geo.Point{Lat: h.Latitude, Lng: h.Longitude})
		h.Latitude, h.Longitude = p.Lat, p.Lng
		hs[i] = h
	}
	if out.Hospitals != nil {
		out.Hospitals = hs
	}
	for i, m := range out.Markers {
		p := geo.GCJ02ToWGS84(geo.Point{Lat: m.Latitude, Lng: m.Longitude})
		out.Markers[i].Latitude, out.Markers[i].Longitude = p.Lat, p.Lng
	}
}
