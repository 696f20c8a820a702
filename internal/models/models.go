package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config 结构体定义了机器人的所有配置参数
type Config struct {
	Network              string                     `json:"network"`                           // 网络名称, "main" 或 "rinkeby"
	APIBaseURLs          map[string]string          `json:"api_base_urls"`                     // 各网络的市场 REST API 地址
	StreamURLs           map[string]string          `json:"stream_urls,omitempty"`             // 各网络的事件流 WebSocket 地址
	WETHTokenAddress     map[string]string          `json:"weth_token_address"`                // 各网络的 WETH 合约地址 (出价货币)
	Collections          map[string]CollectionEntry `json:"collections"`                       // 集合注册表: 名称 -> 合约配置
	RateLimitTokens      int                        `json:"rate_limit_tokens,omitempty"`       // 限流: 每个周期发放的令牌数
	RateLimitIntervalSec int                        `json:"rate_limit_interval_sec,omitempty"` // 限流: 周期长度(秒)
	SkipTokenIDs         []string                   `json:"skip_token_ids,omitempty"`          // 无条件跳过的 Token ID 列表
	JournalDBPath        string                     `json:"journal_db_path"`                   // 出价流水数据库路径
	DefaultExpirationSec int64                      `json:"default_expiration_sec,omitempty"`  // 买单默认有效期(秒)
	LogConfig            LogConfig                  `json:"log"`                               // 日志配置
}

// CollectionEntry 描述集合注册表中的一个条目
type CollectionEntry struct {
	Address  string         `json:"address"`  // 集合合约地址
	Strategy StrategyConfig `json:"strategy"` // 出价策略参数
}

// StrategyConfig 是配置文件层面的策略参数。
// ResellPriceETH 可选 (缺省时采用地板价); Margin 必填。
type StrategyConfig struct {
	ResellPriceETH *float64 `json:"resell_price_eth,omitempty"` // 预期转售价 (ETH)
	Margin         *float64 `json:"margin"`                     // 目标利润率, 0.1 -> 10%
}

// LogConfig 定义了日志相关的配置
type LogConfig struct {
	Level      string `json:"level"`       // 日志级别, e.g., "debug", "info", "warn", "error"
	Output     string `json:"output"`      // 输出模式: "console", "file", "both"
	File       string `json:"file"`        // 日志文件路径
	MaxSize    int    `json:"max_size"`    // 单个日志文件的最大大小 (MB)
	MaxBackups int    `json:"max_backups"` // 保留的旧日志文件最大数量
	MaxAge     int    `json:"max_age"`     // 旧日志文件的最大保留天数
	Compress   bool   `json:"compress"`    // 是否压缩旧日志文件
}

// Strategy 是完成合约接入后的策略状态。所有金额均为 wei。
// MaxBid 始终由 ResellPrice/Fee/Margin 推导, 仅手动覆盖操作可以绕过该推导。
type Strategy struct {
	ResellPrice decimal.Decimal // 预期转售价 (wei)
	Margin      decimal.Decimal // 目标利润率
	MaxBid      decimal.Decimal // 最高出价 (wei)
}

// CollectionConfig 是合约接入的产物, 此后除 MaxBid 手动覆盖外不再修改。
type CollectionConfig struct {
	Address  string          // 集合合约地址
	Name     string          // 集合名称 (来自合约元数据)
	Slug     string          // 集合 slug, 统计查询的 key
	Fee      decimal.Decimal // 卖方手续费率, [0, 0.1)
	Strategy Strategy
}

// SaleKind 表示挂单的销售方式
type SaleKind int

const (
	SaleKindFixedPrice SaleKind = 0 // 一口价
	SaleKindAuction    SaleKind = 1 // 拍卖
)

// SellOrder 是资产当前的卖单信息
type SellOrder struct {
	SaleKind     SaleKind        `json:"sale_kind"`
	CurrentPrice decimal.Decimal `json:"current_price"` // 当前挂单价 (wei)
}

// Asset 是集合中的一个 NFT。每次发现流程都会重新拉取, 不做跨会话缓存。
type Asset struct {
	TokenID    string      `json:"token_id"`
	SellOrders []SellOrder `json:"sell_orders,omitempty"`
}

// CurrentListing 返回资产当前生效的卖单, 没有挂单时返回 nil。
func (a *Asset) CurrentListing() *SellOrder {
	if len(a.SellOrders) == 0 {
		return nil
	}
	return &a.SellOrders[0]
}

// AssetContract 是资产合约的元数据
type AssetContract struct {
	Name                 string `json:"name"`
	SellerFeeBasisPoints int64  `json:"seller_fee_basis_points"` // 卖方手续费 (基点)
	BuyerFeeBasisPoints  int64  `json:"buyer_fee_basis_points"`  // 买方手续费 (基点), 非零不支持
}

// AssetDetail 是单个资产详情接口的响应
type AssetDetail struct {
	TokenID       string        `json:"token_id"`
	AssetContract AssetContract `json:"asset_contract"`
	Collection    struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	} `json:"collection"`
}

// CollectionStats 是集合统计接口的响应
type CollectionStats struct {
	FloorPrice  decimal.Decimal `json:"floor_price"`   // 地板价 (ETH)
	TotalVolume decimal.Decimal `json:"total_volume"`  // 总成交量 (ETH)
	NumOwners   int64           `json:"num_owners"`    // 持有人数量
	OnSaleCount int64           `json:"on_sale_count"` // 在售数量
}

// AssetsResponse 是分页资产列表接口的响应
type AssetsResponse struct {
	Assets []Asset `json:"assets"`
}

// BidRequest 是一次出价请求, 每次提交前临时构造。
type BidRequest struct {
	TokenID        string
	Amount         decimal.Decimal // 出价金额 (wei)
	ExpirationSecs int64           // 有效期(秒), 必须 > 0
}

// BuyOrderPayload 是提交给市场的买单负载
type BuyOrderPayload struct {
	ContractAddress string          `json:"asset_contract_address"`
	TokenID         string          `json:"token_id"`
	Bidder          string          `json:"maker"`
	PaymentToken    string          `json:"payment_token"`
	Amount          decimal.Decimal `json:"start_amount"` // wei
	ExpirationTime  int64           `json:"expiration_time"`
	Salt            string          `json:"salt"`
	Signature       string          `json:"signature,omitempty"`
}

// BuyOrderReceipt 是买单提交成功后的回执
type BuyOrderReceipt struct {
	OrderHash      string          `json:"order_hash"`
	TokenID        string          `json:"token_id"`
	Bidder         string          `json:"maker"`
	Amount         decimal.Decimal `json:"current_price"` // wei
	ExpirationTime int64           `json:"expiration_time"`
	CreatedDate    time.Time       `json:"created_date"`
}

// BidStatus 表示批量出价中单个资产的处理结果
type BidStatus string

const (
	BidStatusSubmitted BidStatus = "SUBMITTED"
	BidStatusDryRun    BidStatus = "DRY_RUN"
	BidStatusSkipped   BidStatus = "SKIPPED"
	BidStatusFailed    BidStatus = "FAILED"
)

// BidOutcome 记录批量出价中单个资产的结果, 供报告输出使用
type BidOutcome struct {
	TokenID     string
	ListedPrice decimal.Decimal // 资产当前挂单价 (wei)
	Amount      decimal.Decimal // 实际出价 (wei), 跳过时为零
	Status      BidStatus
	Err         string // 失败原因, 成功时为空
}

// ListingEvent 是事件流推送的新挂单事件
type ListingEvent struct {
	EventType       string          `json:"event_type"`
	ContractAddress string          `json:"contract_address"`
	TokenID         string          `json:"token_id"`
	SaleKind        SaleKind        `json:"sale_kind"`
	ListingPrice    decimal.Decimal `json:"listing_price"` // wei
	ListedAt        int64           `json:"listed_at"`
}
