package costing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ==================== 错误定义 ====================

// ErrInvalidInput 输入校验失败（售价/数量/费率非法）
// 校验失败整次计算作废，调用方不得使用部分结果
var ErrInvalidInput = errors.New("invalid input")

// ==================== 输入结构 ====================

// LineItem 订单行
// SizeID/FrameID 为 0 表示未指定；无尺寸的自由描述商品产品成本按 0 计
type LineItem struct {
	SizeID    int64
	FrameID   int64
	Quantity  int
	UnitPrice decimal.Decimal // 申报单价，仅记录，不参与费用计算
}

// FeeSchedule 店铺费率表
// 百分比作用于订单总售价；固定费按订单行数计（不按件数）
type FeeSchedule struct {
	TransactionFeePercent decimal.Decimal
	PaymentFeePercent     decimal.Decimal
	ListingFeeFlat        decimal.Decimal
}

// Validate 校验费率范围
func (f *FeeSchedule) Validate() error {
	if f.TransactionFeePercent.IsNegative() || f.TransactionFeePercent.GreaterThan(hundred) {
		return fmt.Errorf("%w: 交易费率必须在 0-100 之间", ErrInvalidInput)
	}
	if f.PaymentFeePercent.IsNegative() || f.PaymentFeePercent.GreaterThan(hundred) {
		return fmt.Errorf("%w: 支付费率必须在 0-100 之间", ErrInvalidInput)
	}
	if f.ListingFeeFlat.IsNegative() {
		return fmt.Errorf("%w: 上架固定费不能为负", ErrInvalidInput)
	}
	return nil
}

// Input 一次成本核算的全部输入
type Input struct {
	SalePrice decimal.Decimal
	Items     []LineItem
	Fees      FeeSchedule
	CountryID int64 // 0 表示无目的国，整单运费为 0
}

// ==================== 费率解析能力 ====================

// RateResolver 费率解析接口
// 引擎自身不做任何 I/O，所有价格查询由调用方注入
// ok=false 表示费率缺失（按 0 兜底，不是错误）；err 非空时中断计算
type RateResolver interface {
	VariantCost(ctx context.Context, sizeID, frameID int64) (decimal.Decimal, bool, error)
	BaseCost(ctx context.Context, sizeID int64) (decimal.Decimal, bool, error)
	ShippingRate(ctx context.Context, sizeID, countryID int64) (decimal.Decimal, bool, error)
}

// ==================== 输出结构 ====================

// Breakdown 成本核算结果
// 恒等式：TotalCost = ProductCost + ShippingCost + MarketplaceFees
// NetProfit = SalePrice - TotalCost；售价为 0 时利润率恒为 0
type Breakdown struct {
	ProductCost         decimal.Decimal
	ShippingCost        decimal.Decimal
	MarketplaceFees     decimal.Decimal
	TotalCost           decimal.Decimal
	NetProfit           decimal.Decimal
	ProfitMarginPercent decimal.Decimal

	// MissingRates 本次计算中按 0 兜底的缺失费率条数，供编排层告警
	MissingRates int
}

// ==================== 核心计算 ====================

var hundred = decimal.NewFromInt(100)

// ComputeCosts 计算订单成本与利润
// 纯函数：相同输入必然得到相同输出，创建/更新/webhook 三个入口共用，
// 不持有任何内部状态，可并发调用
func ComputeCosts(ctx context.Context, in *Input, resolver RateResolver) (*Breakdown, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	bd := &Breakdown{
		ProductCost:         decimal.Zero,
		ShippingCost:        decimal.Zero,
		MarketplaceFees:     decimal.Zero,
		TotalCost:           decimal.Zero,
		NetProfit:           decimal.Zero,
		ProfitMarginPercent: decimal.Zero,
	}

	// 逐行累加产品成本与运费（先乘数量再累加，相同变体不去重）
	for i := range in.Items {
		item := &in.Items[i]
		qty := decimal.NewFromInt(int64(item.Quantity))

		// 产品成本：有框变体优先，其次裸尺寸底价，无尺寸按 0
		switch {
		case item.SizeID > 0 && item.FrameID > 0:
			cost, ok, err := resolver.VariantCost(ctx, item.SizeID, item.FrameID)
			if err != nil {
				return nil, fmt.Errorf("查询变体成本失败: %w", err)
			}
			if ok {
				bd.ProductCost = bd.ProductCost.Add(cost.Mul(qty))
			} else {
				bd.MissingRates++
			}
		case item.SizeID > 0:
			cost, ok, err := resolver.BaseCost(ctx, item.SizeID)
			if err != nil {
				return nil, fmt.Errorf("查询尺寸底价失败: %w", err)
			}
			if ok {
				bd.ProductCost = bd.ProductCost.Add(cost.Mul(qty))
			} else {
				bd.MissingRates++
			}
		}

		// 运费：仅在尺寸与目的国都存在时查询，缺失按 0
		if item.SizeID > 0 && in.CountryID > 0 {
			rate, ok, err := resolver.ShippingRate(ctx, item.SizeID, in.CountryID)
			if err != nil {
				return nil, fmt.Errorf("查询运费失败: %w", err)
			}
			if ok {
				bd.ShippingCost = bd.ShippingCost.Add(rate.Mul(qty))
			} else {
				bd.MissingRates++
			}
		}
	}

	// 平台费用（整单计算一次，上架费按行数计）
	transactionFee := in.SalePrice.Mul(in.Fees.TransactionFeePercent).Div(hundred)
	paymentFee := in.SalePrice.Mul(in.Fees.PaymentFeePercent).Div(hundred)
	listingFee := in.Fees.ListingFeeFlat.Mul(decimal.NewFromInt(int64(len(in.Items))))
	bd.MarketplaceFees = transactionFee.Add(paymentFee).Add(listingFee)

	// 派生字段的计算顺序固定：先合计成本，再推利润与利润率，
	// 中间值不做任何单独舍入
	bd.TotalCost = bd.ProductCost.Add(bd.ShippingCost).Add(bd.MarketplaceFees)
	bd.NetProfit = in.SalePrice.Sub(bd.TotalCost)
	if in.SalePrice.IsPositive() {
		bd.ProfitMarginPercent = bd.NetProfit.Div(in.SalePrice).Mul(hundred)
	}

	return bd, nil
}

// validate 输入校验（失败即整体失败，不做部分计算）
func validate(in *Input) error {
	if in == nil {
		return fmt.Errorf("%w: 输入为空", ErrInvalidInput)
	}
	if in.SalePrice.IsNegative() {
		return fmt.Errorf("%w: 售价不能为负", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: 订单行不能为空", ErrInvalidInput)
	}
	for i := range in.Items {
		if in.Items[i].Quantity < 1 {
			return fmt.Errorf("%w: 第 %d 行数量必须 >= 1", ErrInvalidInput, i+1)
		}
	}
	return in.Fees.Validate()
}

// ==================== 金额转换 ====================

// AmountFromFloat 将外部传入的浮点金额转为引擎金额
// NaN/Inf 视为非法输入，负数交由引擎校验
func AmountFromFloat(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, fmt.Errorf("%w: 金额不是有效数字", ErrInvalidInput)
	}
	return decimal.NewFromFloat(v), nil
}
