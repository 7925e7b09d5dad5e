package repository

import (
	"context"
	"time"

	"canvas_erp_v1/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== CatalogRepository 目录仓库 ====================

// CatalogRepository 目录仓库接口
// 费率查询（变体成本/尺寸底价/运费）供费率解析器使用；
// 费率写入采用按键 upsert，改价即覆盖
type CatalogRepository interface {
	// 维度表
	CreateSize(ctx context.Context, size *model.CanvasSize) error
	CreateFrame(ctx context.Context, frame *model.Frame) error
	CreateCountry(ctx context.Context, country *model.Country) error
	ListSizes(ctx context.Context) ([]model.CanvasSize, error)
	ListFrames(ctx context.Context) ([]model.Frame, error)
	ListCountries(ctx context.Context) ([]model.Country, error)
	GetSizeByName(ctx context.Context, name string) (*model.CanvasSize, error)
	GetFrameByName(ctx context.Context, name string) (*model.Frame, error)
	GetCountryByISO(ctx context.Context, isoCode string) (*model.Country, error)

	// 费率查询
	GetVariantRate(ctx context.Context, sizeID, frameID int64) (*model.SizeFrameRate, error)
	GetBaseCost(ctx context.Context, sizeID int64) (*model.SizeBaseCost, error)
	GetShippingRate(ctx context.Context, sizeID, countryID int64) (*model.ShippingRate, error)

	// 费率写入
	UpsertVariantRate(ctx context.Context, rate *model.SizeFrameRate) error
	UpsertBaseCost(ctx context.Context, cost *model.SizeBaseCost) error
	UpsertShippingRate(ctx context.Context, rate *model.ShippingRate) error

	// LatestRateChange 三张费率表的最近变更时间，供批量重算判断
	LatestRateChange(ctx context.Context) (time.Time, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓库
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// ==================== 维度表 ====================

func (r *catalogRepository) CreateSize(ctx context.Context, size *model.CanvasSize) error {
	return r.db.WithContext(ctx).Create(size).Error
}

func (r *catalogRepository) CreateFrame(ctx context.Context, frame *model.Frame) error {
	return r.db.WithContext(ctx).Create(frame).Error
}

func (r *catalogRepository) CreateCountry(ctx context.Context, country *model.Country) error {
	return r.db.WithContext(ctx).Create(country).Error
}

func (r *catalogRepository) ListSizes(ctx context.Context) ([]model.CanvasSize, error) {
	var sizes []model.CanvasSize
	err := r.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&sizes).Error
	return sizes, err
}

func (r *catalogRepository) ListFrames(ctx context.Context) ([]model.Frame, error) {
	var frames []model.Frame
	err := r.db.WithContext(ctx).Order("id ASC").Find(&frames).Error
	return frames, err
}

func (r *catalogRepository) ListCountries(ctx context.Context) ([]model.Country, error) {
	var countries []model.Country
	err := r.db.WithContext(ctx).Order("iso_code ASC").Find(&countries).Error
	return countries, err
}

func (r *catalogRepository) GetSizeByName(ctx context.Context, name string) (*model.CanvasSize, error) {
	var size model.CanvasSize
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&size).Error
	if err != nil {
		return nil, err
	}
	return &size, nil
}

func (r *catalogRepository) GetFrameByName(ctx context.Context, name string) (*model.Frame, error) {
	var frame model.Frame
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&frame).Error
	if err != nil {
		return nil, err
	}
	return &frame, nil
}

func (r *catalogRepository) GetCountryByISO(ctx context.Context, isoCode string) (*model.Country, error) {
	var country model.Country
	err := r.db.WithContext(ctx).Where("iso_code = ?", isoCode).First(&country).Error
	if err != nil {
		return nil, err
	}
	return &country, nil
}

// ==================== 费率查询 ====================

func (r *catalogRepository) GetVariantRate(ctx context.Context, sizeID, frameID int64) (*model.SizeFrameRate, error) {
	var rate model.SizeFrameRate
	err := r.db.WithContext(ctx).
		Where("size_id = ? AND frame_id = ?", sizeID, frameID).
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *catalogRepository) GetBaseCost(ctx context.Context, sizeID int64) (*model.SizeBaseCost, error) {
	var cost model.SizeBaseCost
	err := r.db.WithContext(ctx).Where("size_id = ?", sizeID).First(&cost).Error
	if err != nil {
		return nil, err
	}
	return &cost, nil
}

func (r *catalogRepository) GetShippingRate(ctx context.Context, sizeID, countryID int64) (*model.ShippingRate, error) {
	var rate model.ShippingRate
	err := r.db.WithContext(ctx).
		Where("size_id = ? AND country_id = ?", sizeID, countryID).
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// ==================== 费率写入 ====================

func (r *catalogRepository) UpsertVariantRate(ctx context.Context, rate *model.SizeFrameRate) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "size_id"}, {Name: "frame_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_cost", "currency_code", "updated_at"}),
	}).Create(rate).Error
}

func (r *catalogRepository) UpsertBaseCost(ctx context.Context, cost *model.SizeBaseCost) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "size_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"base_cost", "currency_code", "updated_at"}),
	}).Create(cost).Error
}

func (r *catalogRepository) UpsertShippingRate(ctx context.Context, rate *model.ShippingRate) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "size_id"}, {Name: "country_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cost", "currency_code", "updated_at"}),
	}).Create(rate).Error
}

// ==================== 变更时间 ====================

func (r *catalogRepository) LatestRateChange(ctx context.Context) (time.Time, error) {
	var latest time.Time

	tables := []interface{}{
		&model.SizeFrameRate{},
		&model.SizeBaseCost{},
		&model.ShippingRate{},
	}
	for _, table := range tables {
		var t *time.Time
		err := r.db.WithContext(ctx).Model(table).
			Select("MAX(updated_at)").Scan(&t).Error
		if err != nil {
			return time.Time{}, err
		}
		if t != nil && t.After(latest) {
			latest = *t
		}
	}
	return latest, nil
}
