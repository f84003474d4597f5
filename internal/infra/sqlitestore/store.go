// Package sqlitestore provides a GORM/SQLite implementation of SessionRepository.
package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/taskforge/transmute/internal/domain"
)

// sessionModel is the GORM model for the sessions table.
type sessionModel struct {
	TaskID            string `gorm:"primaryKey"`
	TaskName          string `gorm:"not null;default:''"`
	Branch            string `gorm:"not null;default:''"`
	WorktreePath      string `gorm:"not null;default:''"`
	CreatedAt         string `gorm:"not null"`
	OpencodeSessionID string `gorm:"not null;default:''"`
	Position          int    `gorm:"not null;default:0;index:idx_position"`
}

// TableName specifies the table name for GORM
func (sessionModel) TableName() string { return "sessions" }

func toModel(s domain.Session, position int) sessionModel {
	return sessionModel{
		TaskID:            s.TaskID,
		TaskName:          s.TaskName,
		Branch:            s.Branch,
		WorktreePath:      s.WorktreePath,
		CreatedAt:         s.CreatedAt,
		OpencodeSessionID: s.OpencodeSessionID,
		Position:          position,
	}
}

func (m sessionModel) toDomain() domain.Session {
	return domain.Session{
		TaskID:            m.TaskID,
		TaskName:          m.TaskName,
		Branch:            m.Branch,
		WorktreePath:      m.WorktreePath,
		CreatedAt:         m.CreatedAt,
		OpencodeSessionID: m.OpencodeSessionID,
	}
}

// Store implements domain.SessionRepository on SQLite.
type Store struct {
	db *gorm.DB
}

// Ensure Store implements SessionRepository.
var _ domain.SessionRepository = (*Store)(nil)

// gormLogger routes GORM's logging into the domain logger.
type gormLogger struct {
	log   domain.Logger
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{log: l.log, level: level}
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		l.log.Info("", "sqlite", fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		l.log.Warn("", "sqlite", fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		l.log.Error("", "sqlite", fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		l.log.Error("", "sqlite", fmt.Sprintf("query error: %v [%s] rows=%d sql=%s", err, elapsed, rows, sql))
	case elapsed > 200*time.Millisecond && l.level >= logger.Warn:
		l.log.Warn("", "sqlite", fmt.Sprintf("slow query [%s] rows=%d sql=%s", elapsed, rows, sql))
	case l.level >= logger.Info:
		l.log.Debug("", "sqlite", fmt.Sprintf("query [%s] rows=%d sql=%s", elapsed, rows, sql))
	}
}

// New opens (creating if needed) the database at dbPath.
func New(dbPath string, log domain.Logger) (*Store, error) {
	if log == nil {
		log = domain.NopLogger{}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: (&gormLogger{log: log}).LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if err := db.Exec(pragma).Error; err != nil {
			closeDB(db)
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := db.AutoMigrate(&sessionModel{}); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate sessions schema: %w", err)
	}
	return &Store{db: db}, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// NewForRepo opens the database at the standard location under repoRoot.
func NewForRepo(repoRoot string, log domain.Logger) (*Store, error) {
	return New(domain.SQLiteFilePath(repoRoot), log)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load returns every session in insertion order.
func (s *Store) Load(ctx context.Context) (*domain.State, error) {
	var models []sessionModel
	if err := s.db.WithContext(ctx).Order("position asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	state := &domain.State{Sessions: make([]domain.Session, 0, len(models))}
	for _, m := range models {
		state.Sessions = append(state.Sessions, m.toDomain())
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return state, nil
}

// Save replaces all rows with state. Nothing is written when validation fails.
func (s *Store) Save(ctx context.Context, state *domain.State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&sessionModel{}).Error; err != nil {
			return fmt.Errorf("clear sessions: %w", err)
		}
		for i, sess := range state.Sessions {
			m := toModel(sess, i)
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("insert session %q: %w", sess.TaskID, err)
			}
		}
		return nil
	})
}

// Add upserts session by task id. A replaced record keeps its position.
func (s *Store) Add(ctx context.Context, session domain.Session) error {
	if err := session.ValidateNew(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		if err := tx.Model(&sessionModel{}).Select("COALESCE(MAX(position), -1)").Row().Scan(&maxPos); err != nil {
			return fmt.Errorf("read position: %w", err)
		}
		m := toModel(session, maxPos+1)
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"task_name", "branch", "worktree_path", "created_at", "opencode_session_id"}),
		}).Create(&m).Error
		if err != nil {
			return fmt.Errorf("save session %q: %w", session.TaskID, err)
		}
		return nil
	})
}

// Remove deletes the session for taskID. Absent ids are not an error.
func (s *Store) Remove(ctx context.Context, taskID string) error {
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&sessionModel{}).Error; err != nil {
		return fmt.Errorf("remove session %q: %w", taskID, err)
	}
	return nil
}

// FindByTask returns nil when no session matches.
func (s *Store) FindByTask(ctx context.Context, taskID string) (*domain.Session, error) {
	var m sessionModel
	err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session %q: %w", taskID, err)
	}
	sess := m.toDomain()
	return &sess, nil
}
