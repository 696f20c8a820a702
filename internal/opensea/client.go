package opensea

import (
	"context"

	"opensea-bid-bot-go/internal/models"

	"github.com/shopspring/decimal"
)

// Client 定义了市场 API 客户端必须提供的操作。
// 核心逻辑只依赖这几个操作的形状, 便于在测试中替换为模拟实现。
type Client interface {
	// GetAsset 拉取单个资产的详情, 用于读取集合元数据和费率。
	GetAsset(ctx context.Context, contractAddress, tokenID string) (*models.AssetDetail, error)
	// GetCollectionStats 按 slug 查询集合统计 (地板价等)。
	GetCollectionStats(ctx context.Context, slug string) (*models.CollectionStats, error)
	// GetAssets 按 offset 窗口分页拉取集合资产。
	GetAssets(ctx context.Context, contractAddress string, limit, offset int) ([]models.Asset, error)
	// PostBuyOrder 提交一个已签名的买单并返回回执。
	PostBuyOrder(ctx context.Context, payload *models.BuyOrderPayload) (*models.BuyOrderReceipt, error)
	// GetTokenBalance 查询地址持有的出价货币余额 (wei), 仅作启动时的参考信息。
	GetTokenBalance(ctx context.Context, owner, tokenAddress string) (decimal.Decimal, error)
}
