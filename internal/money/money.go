package money

import "github.com/shopspring/decimal"

// WETH 使用 18 位小数的最小单位 (wei), 所有金额计算都在 wei 上进行,
// 避免浮点误差。

// WeiPerEther 是 1 ETH 对应的 wei 数量 (1e18)。
var WeiPerEther = decimal.New(1, 18)

// ToWei 将以 ETH 计价的金额转换为 wei。
func ToWei(eth decimal.Decimal) decimal.Decimal {
	return eth.Shift(18)
}

// FromWei 将 wei 金额转换回 ETH 计价。
func FromWei(wei decimal.Decimal) decimal.Decimal {
	return wei.Shift(-18)
}

// EthFromFloat 把配置文件中的浮点 ETH 金额安全地转换为 decimal。
func EthFromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
