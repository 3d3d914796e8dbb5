package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Marky00100/program-gap/internal/model"
)

// GraduateRepository 毕业生人数数据访问接口
type GraduateRepository interface {
	List(ctx context.Context) ([]model.GraduateRecord, error)
	Count(ctx context.Context) (int64, error)
	ReplaceAll(ctx context.Context, rows []model.GraduateRecord) error
}

type graduateRepo struct {
	db *gorm.DB
}

// NewGraduateRepo 创建 GraduateRepository 实例
func NewGraduateRepo(db *gorm.DB) GraduateRepository {
	return &graduateRepo{db: db}
}

func (r *graduateRepo) List(ctx context.Context) ([]model.GraduateRecord, error) {
	var rows []model.GraduateRecord
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *graduateRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.GraduateRecord{}).Count(&n).Error
	return n, err
}

func (r *graduateRepo) ReplaceAll(ctx context.Context, rows []model.GraduateRecord) error {
	db := r.db.WithContext(ctx)
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.GraduateRecord{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ID = 0
	}
	return db.CreateInBatches(rows, insertBatchSize).Error
}
