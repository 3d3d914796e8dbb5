package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Marky00100/program-gap/internal/model"
)

// OccupationRepository LMI 职业数据访问接口
type OccupationRepository interface {
	List(ctx context.Context) ([]model.OccupationRecord, error)
	Count(ctx context.Context) (int64, error)
	ReplaceAll(ctx context.Context, rows []model.OccupationRecord) error
}

type occupationRepo struct {
	db *gorm.DB
}

// NewOccupationRepo 创建 OccupationRepository 实例
func NewOccupationRepo(db *gorm.DB) OccupationRepository {
	return &occupationRepo{db: db}
}

func (r *occupationRepo) List(ctx context.Context) ([]model.OccupationRecord, error) {
	var rows []model.OccupationRecord
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *occupationRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.OccupationRecord{}).Count(&n).Error
	return n, err
}

func (r *occupationRepo) ReplaceAll(ctx context.Context, rows []model.OccupationRecord) error {
	db := r.db.WithContext(ctx)
	// 源数据整表替换，无需保留旧行
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.OccupationRecord{}).Error; err != nil {
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
