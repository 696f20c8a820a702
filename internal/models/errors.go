package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ConfigurationError 表示合约或策略配置缺失必填字段, 致命, 出价开始前中止。
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("配置错误: 字段 %s: %s", e.Field, e.Reason)
}

// UnsupportedFeeStructureError 表示集合带有非零买方手续费。
// 最高出价公式只对卖方手续费建模, 这种费率结构下继续出价是不安全的。
type UnsupportedFeeStructureError struct {
	BuyerFeeBasisPoints int64
}

func (e *UnsupportedFeeStructureError) Error() string {
	return fmt.Sprintf("不支持的费率结构: 买方手续费 %d 基点 (要求为 0)", e.BuyerFeeBasisPoints)
}

// FeeTooHighError 表示卖方手续费率达到或超过 10%。
type FeeTooHighError struct {
	Fee decimal.Decimal
}

func (e *FeeTooHighError) Error() string {
	return fmt.Sprintf("手续费率过高: %s (上限 0.10), 请在市场上核对该合约", e.Fee.String())
}

// LimitExceededError 表示一次发现请求的数量超过市场分页上限。
type LimitExceededError struct {
	Requested int
	Max       int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("请求资产数量过多: %d, 上限为 %d", e.Requested, e.Max)
}

// BidOutOfBoundsError 表示出价金额不在 (0, maxBid] 区间内。
type BidOutOfBoundsError struct {
	Amount decimal.Decimal // wei
	MaxBid decimal.Decimal // wei
}

func (e *BidOutOfBoundsError) Error() string {
	return fmt.Sprintf("出价越界: %s wei, 必须满足 > 0 且 <= %s wei", e.Amount.String(), e.MaxBid.String())
}

// APIError 定义了市场 API 返回的错误信息结构
type APIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Error 方法使得 APIError 实现了 error 接口
func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: code=%d, msg=%s", e.Code, e.Msg)
}
