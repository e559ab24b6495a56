package migrate

import (
	"database/sql"

	"bizmap/internal/logger"
)

// 背景：首次运行自动创建统计表
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；只保存聚合计数，不保存视图状态
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _search_stats_total (
            id INT PRIMARY KEY,
            total_searches BIGINT NOT NULL DEFAULT 0,
            total_failures BIGINT NOT NULL DEFAULT 0
        )`,
		`INSERT INTO _search_stats_total(id, total_searches, total_failures)
         VALUES(1, 0, 0)
         ON CONFLICT (id) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS _search_stats_daily (
            day DATE PRIMARY KEY,
            searches BIGINT NOT NULL DEFAULT 0,
            failures BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS _search_stats_kind (
            kind TEXT NOT NULL,
            outcome TEXT NOT NULL,
            searches BIGINT NOT NULL DEFAULT 0,
            results BIGINT NOT NULL DEFAULT 0,
            PRIMARY KEY (kind, outcome)
        )`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
