package repository

import (
	"context"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"gorm.io/gorm"
)

// HolidayRepository 节假日仓库
type HolidayRepository struct {
	db *gorm.DB
}

// NewHolidayRepository 创建节假日仓库
func NewHolidayRepository(db *gorm.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// Create 创建节假日，允许同一天多条记录
func (r *HolidayRepository) Create(ctx context.Context, holiday *entity.Holiday) error {
	return r.db.WithContext(ctx).Create(holiday).Error
}

// List 获取全部节假日，按日期升序
func (r *HolidayRepository) List(ctx context.Context) ([]entity.Holiday, error) {
	var holidays []entity.Holiday
	err := r.db.WithContext(ctx).Order("date ASC").Find(&holidays).Error
	return holidays, err
}

// DeleteExpired 删除日期早于 today 的节假日（惰性过期清理）
func (r *HolidayRepository) DeleteExpired(ctx context.Context, today string) error {
	return r.db.WithContext(ctx).Where("date < ?", today).Delete(&entity.Holiday{}).Error
}

// Delete 删除节假日
func (r *HolidayRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Holiday{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
