// 包 store: 搜索统计的 PostgreSQL 访问层
package store

import (
	"context"
	"database/sql"

	"bizmap/internal/logger"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// RecordSearch: 递增累计与当日计数，并按 kind/outcome 递增分项计数
// 约束：单条失败不影响其余语句，只记录日志；不保存任何查询参数
func (s *Store) RecordSearch(ctx context.Context, kind, outcome string, results int) error {
	failed := int64(0)
	if outcome == "error" {
		failed = 1
	}
	stmts := []struct {
		q    string
		args []any
	}{
		{"UPDATE _search_stats_total SET total_searches=total_searches+1, total_failures=total_failures+$1 WHERE id=1", []any{failed}},
		{`INSERT INTO _search_stats_daily(day, searches, failures) VALUES(current_date, 1, $1)
          ON CONFLICT (day) DO UPDATE SET searches=_search_stats_daily.searches+1, failures=_search_stats_daily.failures+$1`, []any{failed}},
		{`INSERT INTO _search_stats_kind(kind, outcome, searches, results) VALUES($1, $2, 1, $3)
          ON CONFLICT (kind, outcome) DO UPDATE SET searches=_search_stats_kind.searches+1, results=_search_stats_kind.results+$3`, []any{kind, outcome, int64(results)}},
	}
	var firstErr error
	for i, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st.q, st.args...); err != nil {
			logger.L().Warn("stats_exec_error", "idx", i, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	logger.L().Debug("stats_incr", "kind", kind, "outcome", outcome, "results", results)
	return firstErr
}

// KindCount: 某类搜索某种结果的累计
type KindCount struct {
	Kind     string `json:"kind"`
	Outcome  string `json:"outcome"`
	Searches int64  `json:"searches"`
	Results  int64  `json:"results"`
}

// Totals: 统计返回结构
type Totals struct {
	Total    int64       `json:"total"`
	Failures int64       `json:"failures"`
	Today    int64       `json:"today"`
	ByKind   []KindCount `json:"by_kind"`
}

// GetTotals: 读取累计、当日与分项计数，用于 /stats 接口
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	row := s.db.QueryRowContext(ctx, "SELECT total_searches, total_failures FROM _search_stats_total WHERE id=1")
	if err := row.Scan(&t.Total, &t.Failures); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	row2 := s.db.QueryRowContext(ctx, "SELECT searches FROM _search_stats_daily WHERE day=current_date")
	if err := row2.Scan(&t.Today); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT kind, outcome, searches, results FROM _search_stats_kind ORDER BY kind, outcome")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var k KindCount
		if err := rows.Scan(&k.Kind, &k.Outcome, &k.Searches, &k.Results); err != nil {
			return nil, err
		}
		t.ByKind = append(t.ByKind, k)
	}
	return &t, rows.Err()
}
