package bot

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"opensea-bid-bot-go/internal/journal"
	"opensea-bid-bot-go/internal/limiter"
	"opensea-bid-bot-go/internal/models"
	"opensea-bid-bot-go/internal/money"
	"opensea-bid-bot-go/internal/opensea"
	"opensea-bid-bot-go/internal/pricing"
	"opensea-bid-bot-go/internal/wallet"

	"github.com/google/uuid"
	"github.com/jxskiss/base62"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// MaxAssets 是一次发现请求的数量上限 (市场分页天花板)
	MaxAssets = 10000
	// PageSize 是市场单次查询返回的最大资产数
	PageSize = 50
	// sampleTokenID 是拉取集合元数据时使用的代表性 Token
	sampleTokenID = "0"
)

// Signer 抽象了出价人的签名身份, 核心逻辑不接触密钥材料。
type Signer interface {
	Address() string
	SignHash(hash []byte) ([]byte, error)
}

// BidBot 是一次出价会话的所有者, 持有签名身份、API客户端、
// 限流器、出价流水和接入完成的集合配置。每次运行创建一个, 不持久化。
type BidBot struct {
	client       opensea.Client
	signer       Signer
	limiter      *limiter.Limiter
	journal      journal.Journal
	logger       *zap.SugaredLogger
	sessionID    string
	paymentToken string
	skip         map[string]struct{}
	contract     *models.CollectionConfig
	now          func() time.Time
}

// New 创建一个出价会话。skipTokenIDs 与流水中已出价的 Token 合并为跳过集合,
// 这些 Token 在任何批量出价中都会被无条件跳过。
func New(client opensea.Client, signer Signer, lim *limiter.Limiter, jnl journal.Journal,
	paymentToken string, skipTokenIDs []string, logger *zap.SugaredLogger) (*BidBot, error) {

	skip := make(map[string]struct{}, len(skipTokenIDs))
	for _, id := range skipTokenIDs {
		skip[id] = struct{}{}
	}

	if jnl != nil {
		placed, err := jnl.BidTokenIDs()
		if err != nil {
			return nil, fmt.Errorf("读取出价流水失败: %w", err)
		}
		for _, id := range placed {
			skip[id] = struct{}{}
		}
	}

	b := &BidBot{
		client:       client,
		signer:       signer,
		limiter:      lim,
		journal:      jnl,
		logger:       logger,
		sessionID:    string(base62.FormatInt(time.Now().UnixNano())),
		paymentToken: paymentToken,
		skip:         skip,
		now:          time.Now,
	}
	b.logger.Infof("出价会话 %s, 出价人: %s", b.sessionID, signer.Address())
	return b, nil
}

// Contract 返回接入完成的集合配置副本, 未接入时返回 nil。
func (b *BidBot) Contract() *models.CollectionConfig {
	if b.contract == nil {
		return nil
	}
	c := *b.contract
	return &c
}

// LogPaymentTokenBalance 查询并记录出价人的 WETH 余额, 仅作参考信息, 失败不致命。
func (b *BidBot) LogPaymentTokenBalance(ctx context.Context) {
	balance, err := b.client.GetTokenBalance(ctx, b.signer.Address(), b.paymentToken)
	if err != nil {
		b.logger.Warnf("查询出价货币余额失败: %v", err)
		return
	}
	b.logger.Infof("出价人 WETH 余额: %s WETH", money.FromWei(balance).String())
}

// Onboard 执行集合的一次性接入: 拉取元数据、校验费率、确定预期转售价、
// 计算最高出价。任何一步失败都会中止整个接入, 不保留部分状态。
func (b *BidBot) Onboard(ctx context.Context, entry *models.CollectionEntry) error {
	if entry.Address == "" {
		return &models.ConfigurationError{Field: "address", Reason: "缺少集合合约地址"}
	}
	if entry.Strategy.Margin == nil {
		return &models.ConfigurationError{Field: "strategy.margin", Reason: "未设置目标利润率"}
	}

	// 1. 通过代表性 Token 拉取集合元数据
	detail, err := b.client.GetAsset(ctx, entry.Address, sampleTokenID)
	if err != nil {
		return fmt.Errorf("拉取集合元数据失败: %w", err)
	}
	b.logger.Infof("集合: %s, slug=%s", detail.AssetContract.Name, detail.Collection.Slug)

	// 2. 换算并校验费率
	fee, err := pricing.FeeFromBasisPoints(detail.AssetContract.SellerFeeBasisPoints, detail.AssetContract.BuyerFeeBasisPoints)
	if err != nil {
		return err
	}
	b.logger.Infof("集合手续费率: %s%%", fee.Mul(decimal.NewFromInt(100)).String())

	// 3. 查询集合地板价
	stats, err := b.client.GetCollectionStats(ctx, detail.Collection.Slug)
	if err != nil {
		return fmt.Errorf("查询集合统计失败: %w", err)
	}
	b.logger.Infof("集合地板价: %s ETH", stats.FloorPrice.String())

	// 4. 预期转售价: 未配置时采用地板价
	var resellETH decimal.Decimal
	if entry.Strategy.ResellPriceETH != nil {
		resellETH = money.EthFromFloat(*entry.Strategy.ResellPriceETH)
		b.logger.Infof("预期转售价 (配置): %s ETH", resellETH.String())
	} else {
		resellETH = stats.FloorPrice
		b.logger.Infof("预期转售价未配置, 采用地板价 %s ETH", resellETH.String())
	}
	resellWei := money.ToWei(resellETH)
	margin := decimal.NewFromFloat(*entry.Strategy.Margin)

	// 5. 计算最高出价并固化集合配置
	maxBid, err := pricing.MaxBid(fee, resellWei, margin)
	if err != nil {
		return err
	}
	b.logger.Infof("最高出价: %s ETH (目标利润率 %s, 转售价 %s ETH)",
		money.FromWei(maxBid).String(), margin.String(), resellETH.String())

	b.contract = &models.CollectionConfig{
		Address: entry.Address,
		Name:    detail.AssetContract.Name,
		Slug:    detail.Collection.Slug,
		Fee:     fee,
		Strategy: models.Strategy{
			ResellPrice: resellWei,
			Margin:      margin,
			MaxBid:      maxBid,
		},
	}
	return nil
}

// OverrideMaxBid 手动覆盖最高出价 (ETH), 绕过推导公式的逃生通道。
func (b *BidBot) OverrideMaxBid(eth decimal.Decimal) error {
	if b.contract == nil {
		return &models.ConfigurationError{Field: "contract", Reason: "集合尚未接入"}
	}
	b.contract.Strategy.MaxBid = money.ToWei(eth)
	b.logger.Infof("最高出价已手动覆盖为 %s ETH", eth.String())
	return nil
}

// FetchAssets 分页拉取最多 n 个资产。每页调用前先取得限流令牌,
// 最后一页按余数收窄, 保证返回数量恰好为 n (资产充足时)。
func (b *BidBot) FetchAssets(ctx context.Context, n int) ([]models.Asset, error) {
	if b.contract == nil {
		return nil, &models.ConfigurationError{Field: "contract", Reason: "集合尚未接入"}
	}
	if n > MaxAssets {
		return nil, &models.LimitExceededError{Requested: n, Max: MaxAssets}
	}

	nPages := (n + PageSize - 1) / PageSize
	res := make([]models.Asset, 0, n)
	for i := 0; i < nPages; i++ {
		if err := b.limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		size := PageSize
		if i == nPages-1 {
			if rem := n % PageSize; rem != 0 {
				size = rem
			}
		}

		b.logger.Debugf("拉取资产分页 %d/%d", i+1, nPages)
		assets, err := b.client.GetAssets(ctx, b.contract.Address, size, i*PageSize)
		if err != nil {
			return nil, fmt.Errorf("拉取资产分页 %d 失败: %w", i, err)
		}
		res = append(res, assets...)
	}
	return res, nil
}

// FetchListedBelowPrice 返回在售的一口价资产, 按挂单价升序排列。
// maxPrice (wei) 为 nil 时不做价格过滤。拍卖类挂单一律排除。
func (b *BidBot) FetchListedBelowPrice(ctx context.Context, n int, maxPrice *decimal.Decimal) ([]models.Asset, error) {
	assets, err := b.FetchAssets(ctx, n)
	if err != nil {
		return nil, err
	}

	onSale := make([]models.Asset, 0, len(assets))
	for _, a := range assets {
		listing := a.CurrentListing()
		if listing == nil || listing.SaleKind != models.SaleKindFixedPrice {
			continue
		}
		if maxPrice != nil && listing.CurrentPrice.Cmp(*maxPrice) > 0 {
			continue
		}
		onSale = append(onSale, a)
	}

	// wei 金额用 decimal 严格比较排序, 不做减法
	sort.SliceStable(onSale, func(i, j int) bool {
		return onSale[i].SellOrders[0].CurrentPrice.Cmp(onSale[j].SellOrders[0].CurrentPrice) < 0
	})
	return onSale, nil
}

// validateBid 校验出价金额是否落在 (0, maxBid] 区间。
func validateBid(amount, maxBid decimal.Decimal) error {
	if amount.Sign() <= 0 || amount.Cmp(maxBid) > 0 {
		return &models.BidOutOfBoundsError{Amount: amount, MaxBid: maxBid}
	}
	return nil
}

// SubmitBid 校验并提交单个买单。dryRun 模式只做校验和日志,
// 不取限流令牌也不发起任何网络调用, 返回 (nil, nil)。
func (b *BidBot) SubmitBid(ctx context.Context, req models.BidRequest, dryRun bool) (*models.BuyOrderReceipt, error) {
	if b.contract == nil {
		return nil, &models.ConfigurationError{Field: "contract", Reason: "集合尚未接入"}
	}
	if req.ExpirationSecs <= 0 {
		return nil, &models.ConfigurationError{Field: "expiration_secs", Reason: "必须 > 0"}
	}
	if err := validateBid(req.Amount, b.contract.Strategy.MaxBid); err != nil {
		return nil, err
	}

	if dryRun {
		b.logger.Infof("[演练] 出价 tokenId=%s, %s WETH, 有效期 %d 秒",
			req.TokenID, money.FromWei(req.Amount).String(), req.ExpirationSecs)
		return nil, nil
	}

	if err := b.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	payload := &models.BuyOrderPayload{
		ContractAddress: b.contract.Address,
		TokenID:         req.TokenID,
		Bidder:          b.signer.Address(),
		PaymentToken:    b.paymentToken,
		Amount:          req.Amount,
		ExpirationTime:  b.now().Unix() + req.ExpirationSecs,
		Salt:            uuid.NewString(),
	}
	sig, err := b.signer.SignHash(wallet.OrderDigest(payload))
	if err != nil {
		return nil, fmt.Errorf("买单签名失败: %w", err)
	}
	payload.Signature = hex.EncodeToString(sig)

	b.logger.Infof("出价 tokenId=%s, %s WETH, 有效期 %d 秒",
		req.TokenID, money.FromWei(req.Amount).String(), req.ExpirationSecs)
	receipt, err := b.client.PostBuyOrder(ctx, payload)
	if err != nil {
		return nil, err
	}

	b.recordBid(req.TokenID, receipt)
	return receipt, nil
}

// recordBid 把成交回执写入流水并把 Token 加入跳过集合。
// 流水写入失败只影响重启后的去重, 不应让已成功的出价报错。
func (b *BidBot) recordBid(tokenID string, receipt *models.BuyOrderReceipt) {
	b.skip[tokenID] = struct{}{}
	if b.journal == nil {
		return
	}
	err := b.journal.RecordBid(&journal.Record{
		TokenID:   tokenID,
		OrderHash: receipt.OrderHash,
		AmountWei: receipt.Amount.String(),
		SessionID: b.sessionID,
		CreatedAt: b.now(),
	})
	if err != nil {
		b.logger.Warnf("写入出价流水失败 (tokenId=%s): %v", tokenID, err)
	}
}

// BatchOptions 是一次批量出价的参数
type BatchOptions struct {
	Limit          int              // 发现的资产数量上限
	MaxPrice       *decimal.Decimal // 只对挂单价不超过该值 (wei) 的资产出价, nil 表示不限
	ExpirationSecs int64            // 每个买单的有效期(秒)
	DryRun         bool             // 演练模式
}

// PlaceBidsBatch 按发现顺序逐个出价, 金额一律为当前最高出价。
// 单个资产的失败只记录并跳过, 绝不中断整个批次; 迭代之间检查 ctx,
// 以便长批次可以被协作式取消。
func (b *BidBot) PlaceBidsBatch(ctx context.Context, opts BatchOptions) ([]models.BidOutcome, error) {
	if b.contract == nil {
		return nil, &models.ConfigurationError{Field: "contract", Reason: "集合尚未接入"}
	}

	assets, err := b.FetchListedBelowPrice(ctx, opts.Limit, opts.MaxPrice)
	if err != nil {
		return nil, err
	}
	b.logger.Infof("发现 %d 个符合条件的在售资产", len(assets))

	maxBid := b.contract.Strategy.MaxBid
	outcomes := make([]models.BidOutcome, 0, len(assets))
	for _, a := range assets {
		select {
		case <-ctx.Done():
			b.logger.Warnf("批量出价被取消, 已处理 %d/%d", len(outcomes), len(assets))
			return outcomes, ctx.Err()
		default:
		}

		listing := a.SellOrders[0].CurrentPrice
		if _, skipped := b.skip[a.TokenID]; skipped {
			b.logger.Infof("跳过 tokenId=%s (在跳过集合中)", a.TokenID)
			outcomes = append(outcomes, models.BidOutcome{
				TokenID: a.TokenID, ListedPrice: listing, Status: models.BidStatusSkipped,
			})
			continue
		}

		_, err := b.SubmitBid(ctx, models.BidRequest{
			TokenID:        a.TokenID,
			Amount:         maxBid,
			ExpirationSecs: opts.ExpirationSecs,
		}, opts.DryRun)
		if err != nil {
			b.logger.Warnf("tokenId=%s 出价失败, 跳过: %v", a.TokenID, err)
			outcomes = append(outcomes, models.BidOutcome{
				TokenID: a.TokenID, ListedPrice: listing, Amount: maxBid,
				Status: models.BidStatusFailed, Err: err.Error(),
			})
			continue
		}

		status := models.BidStatusSubmitted
		if opts.DryRun {
			status = models.BidStatusDryRun
		}
		outcomes = append(outcomes, models.BidOutcome{
			TokenID: a.TokenID, ListedPrice: listing, Amount: maxBid, Status: status,
		})
	}
	return outcomes, nil
}

// PlaceSingleBid 对单个 Token 实盘出价 (从不演练)。
// 失败会先记录日志再返回给调用方。
func (b *BidBot) PlaceSingleBid(ctx context.Context, tokenID string, amount decimal.Decimal, expirationSecs int64) (*models.BuyOrderReceipt, error) {
	receipt, err := b.SubmitBid(ctx, models.BidRequest{
		TokenID:        tokenID,
		Amount:         amount,
		ExpirationSecs: expirationSecs,
	}, false)
	if err != nil {
		b.logger.Errorf("tokenId=%s 出价失败: %v", tokenID, err)
		return nil, err
	}
	return receipt, nil
}

// Watch 消费事件流推送的新挂单, 对价格不超过最高出价的一口价挂单实盘出价。
// 单个事件的失败只记录日志; ctx 取消或通道关闭时返回。
func (b *BidBot) Watch(ctx context.Context, events <-chan models.ListingEvent, expirationSecs int64) error {
	if b.contract == nil {
		return &models.ConfigurationError{Field: "contract", Reason: "集合尚未接入"}
	}
	maxBid := b.contract.Strategy.MaxBid

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.SaleKind != models.SaleKindFixedPrice {
				continue
			}
			if ev.ListingPrice.Cmp(maxBid) > 0 {
				b.logger.Debugf("忽略挂单 tokenId=%s: 价格 %s ETH 高于最高出价",
					ev.TokenID, money.FromWei(ev.ListingPrice).String())
				continue
			}
			if _, skipped := b.skip[ev.TokenID]; skipped {
				continue
			}
			// 失败已在 PlaceSingleBid 内记录, 监听循环继续
			_, _ = b.PlaceSingleBid(ctx, ev.TokenID, maxBid, expirationSecs)
		}
	}
}
