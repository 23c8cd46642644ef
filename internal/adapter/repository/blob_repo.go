package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aitool-hub/internal/common"
	"aitool-hub/internal/port"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Blob 一个按键独立存储的 JSON 值 (tools / prompts / videos / users / session / ...)
// 没有 schema 版本，新旧形状共存直到被覆盖
type Blob struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Blob) TableName() string { return "blobs" }

// BlobRepo 实现了 port.Mirror 接口
type BlobRepo struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBlobRepo 初始化数据库连接并自动迁移表结构
func NewBlobRepo(dsn string) (*BlobRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "连接数据库失败", err)
	}

	if err := db.AutoMigrate(&Blob{}); err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "数据库迁移失败", err)
	}

	return NewBlobRepoWithDB(db), nil
}

// NewBlobRepoWithDB 复用已有连接 (测试时传入 sqlmock)
func NewBlobRepoWithDB(db *gorm.DB) *BlobRepo {
	return &BlobRepo{db: db, now: time.Now}
}

// Close 关闭底层连接池
func (r *BlobRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save 整体覆盖写入 (upsert)
func (r *BlobRepo) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return common.WrapError(common.ErrCodeInvalidInput, "encode "+key, err)
	}

	blob := Blob{Key: key, Value: string(data), UpdatedAt: r.now()}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&blob).Error
	if err != nil {
		return common.WrapError(common.ErrCodeDatabase, "save "+key, err)
	}
	return nil
}

// Load 读取并反序列化到 dst；键不存在时返回 false
func (r *BlobRepo) Load(ctx context.Context, key string, dst any) (bool, error) {
	var blob Blob
	err := r.db.WithContext(ctx).Where("key = ?", key).Take(&blob).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, common.WrapError(common.ErrCodeDatabase, "load "+key, err)
	}

	if err := json.Unmarshal([]byte(blob.Value), dst); err != nil {
		return false, common.WrapError(common.ErrCodeDatabase, "decode "+key, fmt.Errorf("%w: %w", port.ErrDecode, err))
	}
	return true, nil
}

// Delete 删除一个键，键不存在不算错误
func (r *BlobRepo) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("key = ?", key).Delete(&Blob{}).Error; err != nil {
		return common.WrapError(common.ErrCodeDatabase, "delete "+key, err)
	}
	return nil
}
