package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"bizmap/internal/engine"
	"bizmap/internal/query"
	"bizmap/internal/session"
)

// errorBody：统一错误响应；View 携带失败后的会话状态（列表错误态、提示文本）
type errorBody struct {
	Error string           `json:"error"`
	Kind  string           `json:"kind"`
	View  *engine.Snapshot `json:"view,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respond：成功或"零结果提示"返回 200 与快照，其余按错误分类
func respond(w http.ResponseWriter, v *engine.View, err error) {
	if err == nil || errors.Is(err, engine.ErrNoMatches) {
		writeJSON(w, http.StatusOK, v.Snapshot())
		return
	}
	writeError(w, err, v)
}

// 错误分类：输入 → 400，未知会话 → 404，被新搜索取代 → 409，后端查询失败 → 502，发号器不可用 → 503
func writeError(w http.ResponseWriter, err error, v *engine.View) {
	status, kind := http.StatusInternalServerError, "internal"
	var qf *query.QueryFailed
	switch {
	case errors.Is(err, session.ErrUnknownSession):
		status, kind = http.StatusNotFound, "unknown_session"
	case errors.Is(err, engine.ErrEmptyInput):
		status, kind = http.StatusBadRequest, "empty_input"
	case errors.Is(err, engine.ErrBadCoordinates):
		status, kind = http.StatusBadRequest, "bad_coordinates"
	case errors.Is(err, engine.ErrSuperseded):
		status, kind = http.StatusConflict, "superseded"
	case errors.Is(err, engine.ErrSequenceUnavailable):
		status, kind = http.StatusServiceUnavailable, "unavailable"
	case errors.As(err, &qf):
		status, kind = http.StatusBadGateway, "query_failed"
	}
	body := errorBody{Error: err.Error(), Kind: kind}
	if v != nil {
		s := v.Snapshot()
		body.View = &s
	}
	writeJSON(w, status, body)
}
