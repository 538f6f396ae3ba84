package usecase

import "app/internal/domain/model"

// 税・送料の計算ポリシー。注文処理からは差し替え可能な純関数として扱う。
type PricingCalculator interface {
	// subtotalはセント。返り値もセント。
	Calculate(subtotal int64, shipTo model.Address) (tax int64, shipping int64)
}

// 税率%＋送料一律のデフォルト実装
type FlatRatePricing struct {
	TaxRatePercent int64
	ShippingFlat   int64
}

func NewFlatRatePricing(taxRatePercent int64, shippingFlat int64) *FlatRatePricing {
	return &FlatRatePricing{
		TaxRatePercent: taxRatePercent,
		ShippingFlat:   shippingFlat,
	}
}

func (p *FlatRatePricing) Calculate(subtotal int64, _ model.Address) (int64, int64) {
	tax := subtotal * p.TaxRatePercent / 100
	return tax, p.ShippingFlat
}

// 注文番号の採番。一意性はDBの一意制約で担保し、衝突時は呼び出し側がリトライする。
type OrderNumberGenerator interface {
	Generate() string
}
