package pricing

import (
	"opensea-bid-bot-go/internal/models"

	"github.com/shopspring/decimal"
)

// maxFee 是可接受的卖方手续费率上限。达到或超过 10% 时,
// 利润率公式不再可信, 合约接入直接失败。
var maxFee = decimal.RequireFromString("0.1")

// truncGranularity 是 maxBid 的截断粒度: 1e14 wei, 即 ETH 的第 4 位小数。
// 只向下截断, 绝不进位, 保证出价始终偏保守。
var truncGranularity = decimal.New(1, 14)

// FeeFromBasisPoints 把合约元数据中的基点手续费换算为费率并校验。
// 买方手续费非零或卖方费率 >= 10% 均视为不可建模的费率结构。
func FeeFromBasisPoints(sellerFeeBps, buyerFeeBps int64) (decimal.Decimal, error) {
	if buyerFeeBps != 0 {
		return decimal.Zero, &models.UnsupportedFeeStructureError{BuyerFeeBasisPoints: buyerFeeBps}
	}
	fee := decimal.NewFromInt(sellerFeeBps).Div(decimal.NewFromInt(10000))
	if fee.Cmp(maxFee) >= 0 {
		return decimal.Zero, &models.FeeTooHighError{Fee: fee}
	}
	return fee, nil
}

// MaxBid 根据手续费率、预期转售价和目标利润率计算最高出价:
//
//	maxBid = resellPrice * (1 - fee) / (1 + margin)
//
// resellPrice 与返回值均为 wei。结果向下截断到 1e14 wei。
func MaxBid(fee, resellPrice, margin decimal.Decimal) (decimal.Decimal, error) {
	if fee.Sign() < 0 || fee.Cmp(maxFee) >= 0 {
		return decimal.Zero, &models.FeeTooHighError{Fee: fee}
	}
	if margin.Sign() < 0 {
		return decimal.Zero, &models.ConfigurationError{Field: "margin", Reason: "必须 >= 0"}
	}

	one := decimal.NewFromInt(1)
	bid := one.Sub(fee).Mul(resellPrice).Div(one.Add(margin))
	return bid.Div(truncGranularity).Floor().Mul(truncGranularity), nil
}
