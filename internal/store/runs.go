package store

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"seatmark/internal/model"
)

// 运行状态
const (
	RunStatusDone   = "done"
	RunStatusFailed = "failed"
)

// ErrRunNotFound 运行记录不存在
var ErrRunNotFound = errors.New("run not found")

// Run 一次青塗り处理的记录
type Run struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	FileHash       string    `json:"fileHash"`
	FileSize       int64     `json:"fileSize"`
	DateCode       string    `json:"dateCode"`
	OutputName     string    `json:"outputName"`
	RequestCount   int       `json:"requestCount"`
	MatchedCount   int       `json:"matchedCount"`
	UnmatchedCount int       `json:"unmatchedCount"`
	Collisions     int       `json:"collisions"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"errorMessage"`
	DurationMS     int64     `json:"durationMs"`
	CreatedAt      time.Time `json:"createdAt"`
}

// HashContent 上传内容的摘要（blake3，hex）
func HashContent(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// InsertRun 写入运行记录与未命中明细
func (s *Store) InsertRun(run Run, unmatched []model.SeatRequest) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO runs (
			id, filename, file_hash, file_size, date_code, output_name,
			request_count, matched_count, unmatched_count, collisions,
			status, error_message, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.Filename, run.FileHash, run.FileSize, run.DateCode, run.OutputName,
		run.RequestCount, run.MatchedCount, run.UnmatchedCount, run.Collisions,
		run.Status, run.ErrorMessage, run.DurationMS,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, u := range unmatched {
		if _, err := tx.Exec(`
			INSERT INTO run_unmatched (run_id, class_name, row_no, seat_no) VALUES (?, ?, ?, ?)
		`, run.ID, u.ClassName, u.Row, u.Seat); err != nil {
			return fmt.Errorf("failed to insert unmatched seat: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `
	id, filename, file_hash, file_size, date_code, output_name,
	request_count, matched_count, unmatched_count, collisions,
	status, error_message, duration_ms, created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (Run, error) {
	var r Run
	err := sc.Scan(
		&r.ID, &r.Filename, &r.FileHash, &r.FileSize, &r.DateCode, &r.OutputName,
		&r.RequestCount, &r.MatchedCount, &r.UnmatchedCount, &r.Collisions,
		&r.Status, &r.ErrorMessage, &r.DurationMS, &r.CreatedAt,
	)
	return r, err
}

// ListRuns 最近的运行记录（按时间倒序）
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs failed: %w", err)
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run failed: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs failed: %w", err)
	}
	return out, nil
}

// GetRun 获取单次运行及其未命中明细
func (s *Store) GetRun(id string) (*Run, []model.SeatRequest, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrRunNotFound
		}
		return nil, nil, fmt.Errorf("query run failed: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT class_name, row_no, seat_no FROM run_unmatched WHERE run_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query unmatched failed: %w", err)
	}
	defer rows.Close()

	unmatched := []model.SeatRequest{}
	for rows.Next() {
		var u model.SeatRequest
		if err := rows.Scan(&u.ClassName, &u.Row, &u.Seat); err != nil {
			return nil, nil, fmt.Errorf("scan unmatched failed: %w", err)
		}
		unmatched = append(unmatched, u)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate unmatched failed: %w", err)
	}
	return &r, unmatched, nil
}

// CountRuns 运行记录总数
func (s *Store) CountRuns() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs failed: %w", err)
	}
	return n, nil
}
