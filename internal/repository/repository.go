package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Marky00100/program-gap/internal/model"
)

// insertBatchSize 批量写入每批行数
const insertBatchSize = 1000

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Occupation OccupationRepository
	Graduate   GraduateRepository
	Crosswalk  CrosswalkRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Occupation: NewOccupationRepo(db),
		Graduate:   NewGraduateRepo(db),
		Crosswalk:  NewCrosswalkRepo(db),
	}
}

// WithTx 返回绑定到事务连接的 Repository
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// ReplaceDataset 在单个事务内整体替换三张源数据表
func (r *Repository) ReplaceDataset(
	ctx context.Context,
	occs []model.OccupationRecord,
	grads []model.GraduateRecord,
	xwalk []model.CrosswalkRecord,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := r.WithTx(tx)
		if err := txRepo.Occupation.ReplaceAll(ctx, occs); err != nil {
			return err
		}
		if err := txRepo.Graduate.ReplaceAll(ctx, grads); err != nil {
			return err
		}
		return txRepo.Crosswalk.ReplaceAll(ctx, xwalk)
	})
}
