// 包 api：集中注册 HTTP API 路由以解耦主入口；每个请求是一个离散的用户事件
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"bizmap/internal/business"
	"bizmap/internal/engine"
	"bizmap/internal/logger"
	"bizmap/internal/middleware"
	"bizmap/internal/session"
	"bizmap/internal/store"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "bizmap_session"
	maxBody       = 64 << 10
)

// ViewFactory：为新会话构造视图；clientIP 用于估计初始视口
type ViewFactory func(id, clientIP string) *engine.View

// StatsReader：/stats 的数据来源（store.Store 满足）；为 nil 时统计关闭
type StatsReader interface {
	GetTotals(ctx context.Context) (*store.Totals, error)
}

type areaReq struct {
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Radius float64  `json:"radius"`
}

type textReq struct {
	Text string `json:"text"`
}

type areaNameReq struct {
	Name string `json:"name"`
}

type pointReq struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type activateReq struct {
	ID business.ID `json:"id"`
}

type activateResp struct {
	Activated bool            `json:"activated"`
	View      engine.Snapshot `json:"view"`
}

// BuildRoutes：构建并返回 API 路由；独立 ServeMux 便于在主入口挂载到 API_BASE 前缀
func BuildRoutes(sessions *session.Manager, build ViewFactory, stats StatsReader) *http.ServeMux {
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("POST /view", func(w http.ResponseWriter, r *http.Request) {
		ip := middleware.ClientIP(r)
		v := sessions.Create(func(id string) *engine.View { return build(id, ip) })
		if err := v.LoadAll(r.Context()); err != nil {
			logger.Session(v.ID()).Warn("initial_load_failed", "err", err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    v.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int((24 * time.Hour).Seconds()),
		})
		w.Header().Set(SessionHeader, v.ID())
		writeJSON(w, http.StatusCreated, v.Snapshot())
	})

	apiMux.HandleFunc("GET /view", func(w http.ResponseWriter, r *http.Request) {
		v, err := lookup(sessions, r)
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, v.Snapshot())
	})

	apiMux.HandleFunc("POST /view/search/area", func(w http.ResponseWriter, r *http.Request) {
		var req areaReq
		v, ok := begin(w, r, sessions, &req)
		if !ok {
			return
		}
		if req.Lat == nil || req.Lon == nil {
			writeError(w, engine.ErrBadCoordinates, v)
			return
		}
		respond(w, v, v.SearchArea(r.Context(), *req.Lat, *req.Lon, req.Radius))
	})

	apiMux.HandleFunc("POST /view/search/name", func(w http.ResponseWriter, r *http.Request) {
		var req textReq
		v, ok := begin(w, r, sessions, &req)
		if !ok {
			return
		}
		respond(w, v, v.SearchName(r.Context(), req.Text))
	})

	apiMux.HandleFunc("POST /view/search/within-area", func(w http.ResponseWriter, r *http.Request) {
		var req areaNameReq
		v, ok := begin(w, r, sessions, &req)
		if !ok {
			return
		}
		respond(w, v, v.SearchWithinArea(r.Context(), req.Name))
	})

	apiMux.HandleFunc("POST /view/click", func(w http.ResponseWriter, r *http.Request) {
		var req pointReq
		v, ok := begin(w, r, sessions, &req)
		if !ok {
			return
		}
		if req.Lat == nil || req.Lon == nil {
			writeError(w, engine.ErrBadCoordinates, v)
			return
		}
		_, err := v.Click(*req.Lat, *req.Lon)
		respond(w, v, err)
	})

	apiMux.HandleFunc("POST /view/rows/activate", func(w http.ResponseWriter, r *http.Request) {
		var req activateReq
		v, ok := begin(w, r, sessions, &req)
		if !ok {
			return
		}
		activated := v.Activate(req.ID)
		writeJSON(w, http.StatusOK, activateResp{Activated: activated, View: v.Snapshot()})
	})

	apiMux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		if stats == nil {
			writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
			return
		}
		t, err := stats.GetTotals(r.Context())
		if err != nil {
			logger.L().Error("stats_read_error", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "stats unavailable", Kind: "internal"})
			return
		}
		writeJSON(w, http.StatusOK, t)
	})

	return apiMux
}

// begin：定位会话并解码请求体；失败时已写出响应
func begin(w http.ResponseWriter, r *http.Request, sessions *session.Manager, dst any) (*engine.View, bool) {
	v, err := lookup(sessions, r)
	if err != nil {
		writeError(w, err, nil)
		return nil, false
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil || json.Unmarshal(body, dst) != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body", Kind: "bad_request"})
		return nil, false
	}
	return v, true
}

func lookup(sessions *session.Manager, r *http.Request) (*engine.View, error) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}
	return sessions.Get(id)
}
