package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"agent-server/services/agent-api/internal/domain/tool"
)

// Runner executes single SQL statements for database-kind tools. Each call
// opens its own connection and closes it before returning; tool calls are
// infrequent enough that pooling across calls is not worth holding handles
// open.
type Runner struct{}

// NewRunner constructs a per-call SQL runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run opens a connection to dsn, executes one statement, and closes the
// connection. SELECT-shaped statements return their rows; everything else
// returns the affected row count.
func (r *Runner) Run(ctx context.Context, dsn, statement string) (*tool.SQLResult, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("no database connection string configured")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
	}()

	db = db.WithContext(ctx)

	if isRowReturning(statement) {
		var rows []map[string]interface{}
		if err := db.Raw(statement).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		return &tool.SQLResult{Rows: rows, Selected: true}, nil
	}

	result := db.Exec(statement)
	if result.Error != nil {
		return nil, fmt.Errorf("statement failed: %w", result.Error)
	}
	return &tool.SQLResult{AffectedRows: result.RowsAffected}, nil
}

func isRowReturning(statement string) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(statement))
	return strings.HasPrefix(trimmed, "SELECT") || strings.HasPrefix(trimmed, "WITH") || strings.HasPrefix(trimmed, "SHOW")
}

// Ensure interface compliance.
var _ tool.SQLRunner = (*Runner)(nil)
