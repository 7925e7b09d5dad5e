package repository

import (
	"context"

	"canvas_erp_v1/internal/model"

	"gorm.io/gorm"
)

// ==================== StoreRepository 店铺仓库 ====================

// StoreFilter 店铺过滤条件
type StoreFilter struct {
	Status   int
	Keyword  string
	Page     int
	PageSize int
}

// StoreRepository 店铺仓库接口
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	List(ctx context.Context, filter StoreFilter) ([]model.Store, int64, error)
	Update(ctx context.Context, store *model.Store) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建店铺仓库
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *storeRepository) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).First(&store, id).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) List(ctx context.Context, filter StoreFilter) ([]model.Store, int64, error) {
	var stores []model.Store
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Store{})

	if filter.Status > 0 {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		db = db.Where("name LIKE ?", "%"+filter.Keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.Order("created_at DESC").Limit(filter.PageSize).Offset(offset).Find(&stores).Error
	return stores, total, err
}

func (r *storeRepository) Update(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}

func (r *storeRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Store{}).Where("id = ?", id).Updates(fields).Error
}
