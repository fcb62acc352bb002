package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Slade66/observable-monitor/pkg/change"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// timeLayout 是定长的时间格式，保证 changed_at 按字符串排序与按时间排序一致
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore 把变更历史保存在 SQLite 中
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 打开 (或创建) dbPath 处的数据库，并确保表存在
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("无法打开 SQLite 数据库 %s: %w", dbPath, err)
	}
	// 观察者是同步调用的，单连接避免 database is locked
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS changes (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		property TEXT NOT NULL,
		old_value TEXT,
		new_value TEXT,
		changed_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("无法创建 changes 表: %w", err)
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS idx_changes_subject_property ON changes (subject, property, changed_at)")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("无法创建索引: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append 追加一条变更记录
func (s *SQLiteStore) Append(r change.Record) error {
	oldValue, err := change.EncodeValue(r.OldValue)
	if err != nil {
		return err
	}
	newValue, err := change.EncodeValue(r.NewValue)
	if err != nil {
		return err
	}

	_, err = s.db.Exec("INSERT INTO changes (id, subject, property, old_value, new_value, changed_at) VALUES (?, ?, ?, ?, ?, ?)",
		r.ID.String(), r.Subject, r.Property, oldValue, newValue, r.ChangedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("无法写入变更记录 %s: %w", r.ID, err)
	}
	return nil
}

// List 返回某个主题某个属性最近的 limit 条记录，最新的在前。property 为空时返回该主题的所有属性。
func (s *SQLiteStore) List(subject, property string, limit int) ([]change.Record, error) {
	query := "SELECT id, subject, property, old_value, new_value, changed_at FROM changes WHERE subject = ?"
	args := []any{subject}
	if property != "" {
		query += " AND property = ?"
		args = append(args, property)
	}
	query += " ORDER BY changed_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("无法查询变更历史: %w", err)
	}
	defer rows.Close()

	var records []change.Record
	for rows.Next() {
		var (
			id, subj, prop, changedAt string
			oldValue, newValue        sql.NullString
		)
		if err := rows.Scan(&id, &subj, &prop, &oldValue, &newValue, &changedAt); err != nil {
			return nil, err
		}
		r, err := toRecord(id, subj, prop, oldValue.String, newValue.String, changedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func toRecord(id, subject, property, oldValue, newValue, changedAt string) (change.Record, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return change.Record{}, fmt.Errorf("无效的记录 ID %q: %w", id, err)
	}
	at, err := time.Parse(timeLayout, changedAt)
	if err != nil {
		return change.Record{}, fmt.Errorf("无效的变更时间 %q: %w", changedAt, err)
	}
	oldDecoded, err := change.DecodeValue(oldValue)
	if err != nil {
		return change.Record{}, err
	}
	newDecoded, err := change.DecodeValue(newValue)
	if err != nil {
		return change.Record{}, err
	}
	return change.Record{
		ID:        parsedID,
		Subject:   subject,
		Property:  property,
		OldValue:  oldDecoded,
		NewValue:  newDecoded,
		ChangedAt: at,
	}, nil
}
