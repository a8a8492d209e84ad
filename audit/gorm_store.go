package audit

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type GormStoreOptions struct {
	Driver string `cfg:"driver" def:"sqlite" validate:"oneof=mysql sqlite"`

	// DSN mysql 为 user:pass@tcp(host:port)/db?parseTime=True，sqlite 为文件路径
	DSN string `cfg:"dsn" def:"data/audit.sqlite" validate:"required"`
}

// GormStore 审计记录写入关系库的 audit_entries 表
type GormStore struct {
	db *gorm.DB
}

func NewGormStoreWithOptions(options *GormStoreOptions) (*GormStore, error) {
	if options == nil || options.DSN == "" {
		return nil, errors.New("gorm dsn is required")
	}

	var dialector gorm.Dialector
	switch options.Driver {
	case "mysql":
		dialector = mysql.Open(options.DSN)
	case "", "sqlite":
		dialector = sqlite.Open(options.DSN)
	default:
		return nil, errors.Errorf("unsupported gorm driver: %s", options.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "gorm.Open failed")
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, errors.Wrap(err, "gorm.AutoMigrate failed")
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) Append(ctx context.Context, entry *Entry) error {
	if err := checkEntry(entry); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errors.Wrap(err, "gorm.Create failed")
	}
	return nil
}

func (s *GormStore) Recent(ctx context.Context, n int) ([]*Entry, error) {
	var entries []*Entry
	if err := s.db.WithContext(ctx).Order("id desc").Limit(n).Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "gorm.Find failed")
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return entries, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "gorm.DB failed")
	}
	return sqlDB.Close()
}
