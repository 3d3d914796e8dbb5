package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Marky00100/program-gap/internal/model"
)

// CrosswalkRepository 专业-职业映射数据访问接口
type CrosswalkRepository interface {
	List(ctx context.Context) ([]model.CrosswalkRecord, error)
	ReplaceAll(ctx context.Context, rows []model.CrosswalkRecord) error
}

type crosswalkRepo struct {
	db *gorm.DB
}

// NewCrosswalkRepo 创建 CrosswalkRepository 实例
func NewCrosswalkRepo(db *gorm.DB) CrosswalkRepository {
	return &crosswalkRepo{db: db}
}

func (r *crosswalkRepo) List(ctx context.Context) ([]model.CrosswalkRecord, error) {
	var rows []model.CrosswalkRecord
	err := r.db.WithContext(ctx).Order("cip_code ASC, soc_code ASC").Find(&rows).Error
	return rows, err
}

func (r *crosswalkRepo) ReplaceAll(ctx context.Context, rows []model.CrosswalkRecord) error {
	db := r.db.WithContext(ctx)
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.CrosswalkRecord{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.CreateInBatches(rows, insertBatchSize).Error
}
