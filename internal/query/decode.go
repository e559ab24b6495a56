package query

import (
	"bytes"
	"encoding/json"
	"errors"

	"bizmap/internal/business"
	"bizmap/internal/logger"
	"bizmap/internal/metrics"
)

var errUnexpectedShape = errors.New("response is neither a list nor a paginated envelope")

// envelope：分页包装 {count, next, previous, results}；仅 results 被使用
type envelope struct {
	Results *[]json.RawMessage `json:"results"`
}

// normalize：把分页包装或裸数组统一为有序记录序列
// 约束：两种形态都可解析时优先分页包装；单条记录缺字段时跳过（不使整批失败）
func normalize(mode Mode, body []byte) ([]business.Business, error) {
	body = bytes.TrimSpace(body)
	var raws []json.RawMessage
	switch {
	case len(body) > 0 && body[0] == '{':
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, err
		}
		if env.Results == nil {
			return nil, errUnexpectedShape
		}
		raws = *env.Results
	case len(body) > 0 && body[0] == '[':
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, err
		}
	default:
		return nil, errUnexpectedShape
	}
	out := make([]business.Business, 0, len(raws))
	for i, raw := range raws {
		var b business.Business
		err := json.Unmarshal(raw, &b)
		if err == nil {
			err = b.Validate()
		}
		if err != nil {
			metrics.MalformedRecordsTotal.WithLabelValues(string(mode)).Inc()
			logger.L().Warn("query_malformed_record", "mode", mode, "index", i, "err", err)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
