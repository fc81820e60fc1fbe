package etforacle

import "database/sql"

// AddOperationLog appends an operation log entry.
func (c *Core) AddOperationLog(log OperationLog) (int64, error) {
	result, err := c.db.Exec(`
		INSERT INTO operation_logs (operation_type, subject, status, details, duration_ms)
		VALUES (?, ?, ?, ?, ?)
	`, log.Operation, log.Subject, log.Status, nullableString(log.Details), log.DurationMS)
	if err != nil {
		return 0, WrapError(ErrCodeDatabase, "insert operation log", err)
	}
	return result.LastInsertId()
}

// GetOperationLogs returns recent operation logs, newest first.
func (c *Core) GetOperationLogs(limit, offset int) ([]OperationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := c.db.Query(`
		SELECT id, operation_type, subject, status, details, duration_ms, created_at
		FROM operation_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query operation logs", err)
	}
	defer rows.Close()

	logs := []OperationLog{}
	for rows.Next() {
		var log OperationLog
		var details, createdAt sql.NullString
		if err := rows.Scan(&log.ID, &log.Operation, &log.Subject, &log.Status, &details, &log.DurationMS, &createdAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan operation log", err)
		}
		log.Details = details.String
		log.CreatedAt = createdAt.String
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
