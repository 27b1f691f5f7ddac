package api

import (
	"net/http"
	"strconv"
	"strings"

	"hospital-api/internal/geo"
	"hospital-api/internal/locate"
	"hospital-api/internal/poi"
	"hospital-api/internal/recommend"
	"hospital-api/internal/version"
)

// 文档注释：解析 /hospitals 查询
// 约束：lat 与 lng 需同时出现且可解析；出现坐标时忽略 address。
func parseQuery(r *http.Request) (recommend.Query, bool) {
	v := r.URL.Query()
	q := recommend.Query{
		Address:  strings.TrimSpace(v.Get("address")),
		City:     strings.TrimSpace(v.Get("city")),
		ClientIP: locate.ClientIP(r),
	}
	lat, lng := v.Get("lat"), v.Get("lng")
	if lat == "" && lng == "" {
		return q, true
	}
	la, err1 := strconv.ParseFloat(lat, 64)
	ln, err2 := strconv.ParseFloat(lng, 64)
	if err1 != nil || err2 != nil {
		return q, false
	}
	p := geo.Point{Lat: la, Lng: ln}
	if !p.Valid() {
		return q, false
	}
	q.Center = &p
	return q, true
}

// GET /hospitals?lat&lng | ?address=&city=
func (h *handlers) hospitals(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid lat/lng")
		return
	}
	sess := h.d.Sessions.GetOrCreate(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, sess.ID)
	res := h.d.Service.Search(r.Context(), sess, q)
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) session(r *http.Request) (*recommend.Session, bool) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		return nil, false
	}
	return h.d.Sessions.Get(id)
}

// GET /hospitals/markers：当前会话列表的地图点位
func (h *handlers) markers(w http.ResponseWriter, r *http.Request) {
	out := []poi.Marker{}
	if sess, ok := h.session(r); ok {
		if cur, ok := sess.Current(); ok {
			out = poi.Markers(cur.Hospitals)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /hospitals/{id}
func (h *handlers) hospital(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	hs, ok := sess.Find(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "hospital not found")
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

type healthBody struct {
	Status    string `json:"status"`
	Providers any    `json:"providers"`
	Sessions  int    `json:"sessions"`
	Commit    string `json:"commit"`
}

// GET /health：任一数据源健康即 ok，否则 degraded
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	body := healthBody{Status: "ok", Providers: []any{}, Sessions: h.d.Sessions.Len(), Commit: version.Commit}
	if h.d.Health != nil {
		st := h.d.Health.Status()
		body.Providers = st
		healthy := false
		for _, s := range st {
			healthy = healthy || s.Healthy
		}
		if !healthy {
			body.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, body)
}
