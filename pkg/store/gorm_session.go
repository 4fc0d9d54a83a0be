package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

const sessionKey = "task_app_session"

type sessionRecord struct {
	Name      string `gorm:"primaryKey;size:64"`
	Token     string `gorm:"type:text;not null"`
	UserID    string `gorm:"size:36;not null"`
	Username  string `gorm:"size:255;not null"`
	Role      string `gorm:"size:50;not null"`
	UpdatedAt time.Time
}

func (sessionRecord) TableName() string {
	return "client_sessions"
}

// GormSessionStore keeps the session in a local sqlite file.
type GormSessionStore struct {
	db *gorm.DB
}

func NewGormSessionStore(path string) (*GormSessionStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}
	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate session file: %w", err)
	}
	return &GormSessionStore{db: db}, nil
}

func (g *GormSessionStore) Load(ctx context.Context) (*Session, error) {
	var rec sessionRecord
	err := g.db.WithContext(ctx).First(&rec, "name = ?", sessionKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	role := constants.Role(rec.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("stored session has unknown role %q", rec.Role)
	}

	return &Session{
		Token: rec.Token,
		User:  model.PublicUser{ID: rec.UserID, Username: rec.Username, Role: role},
	}, nil
}

func (g *GormSessionStore) Save(ctx context.Context, s Session) error {
	rec := sessionRecord{
		Name:      sessionKey,
		Token:     s.Token,
		UserID:    s.User.ID,
		Username:  s.User.Username,
		Role:      string(s.User.Role),
		UpdatedAt: time.Now().UTC(),
	}
	return g.db.WithContext(ctx).Save(&rec).Error
}

func (g *GormSessionStore) Clear(ctx context.Context) error {
	return g.db.WithContext(ctx).Delete(&sessionRecord{}, "name = ?", sessionKey).Error
}

func (g *GormSessionStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
