package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opensea-bid-bot-go/internal/bot"
	"opensea-bid-bot-go/internal/config"
	"opensea-bid-bot-go/internal/journal"
	"opensea-bid-bot-go/internal/limiter"
	"opensea-bid-bot-go/internal/logger"
	"opensea-bid-bot-go/internal/models"
	"opensea-bid-bot-go/internal/money"
	"opensea-bid-bot-go/internal/opensea"
	"opensea-bid-bot-go/internal/reporter"
	"opensea-bid-bot-go/internal/stream"
	"opensea-bid-bot-go/internal/wallet"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	// --- 命令行参数定义 ---
	configPath := flag.String("config", "config.json", "path to the config file")
	collection := flag.String("collection", "", "collection name from the config registry")
	mode := flag.String("mode", "batch", "running mode: batch, single or watch")
	dryRun := flag.Bool("dry-run", false, "validate and log bids without submitting them")
	limit := flag.Int("limit", bot.PageSize, "number of assets to discover in batch mode")
	maxPrice := flag.Float64("max-price", 0, "only bid on assets listed at or below this price in ETH (0 = no filter)")
	tokenID := flag.String("token", "", "token id to bid on in single mode")
	bidAmount := flag.Float64("bid", 0, "bid amount in ETH for single mode")
	expiration := flag.Int64("expiration", 0, "bid expiration in seconds (0 = config default)")
	maxBidOverride := flag.Float64("max-bid", 0, "manually override the derived max bid in ETH (0 = derive)")
	flag.Parse()

	// --- 初始化日志 (提前) ---
	// 加载 .env 和配置文件时就需要日志, 先用默认配置初始化一次
	logger.InitLogger(models.LogConfig{Level: "info", Output: "console"})

	// --- 加载 .env 文件 ---
	if err := godotenv.Load(); err != nil {
		logger.S().Info("未找到 .env 文件，将从系统环境变量中读取。")
	} else {
		logger.S().Info("成功从 .env 文件加载配置。")
	}

	// --- 加载 JSON 配置 ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.S().Fatalf("无法加载配置文件: %v", err)
	}

	// --- 使用文件中的配置重新初始化日志 ---
	logger.InitLogger(cfg.LogConfig)
	defer logger.S().Sync()

	if *collection == "" {
		logger.S().Fatal("必须通过 --collection 指定要出价的集合。")
	}
	entry, err := config.ResolveCollection(cfg, *collection)
	if err != nil {
		logger.S().Fatalf("集合配置无效: %v", err)
	}

	// --- 加载钱包 ---
	w, err := loadWallet()
	if err != nil {
		logger.S().Fatalf("加载钱包失败: %v", err)
	}
	logger.S().Infof("出价人地址: %s", w.Address())

	// --- 初始化市场客户端 ---
	baseURL, err := config.APIBaseURL(cfg)
	if err != nil {
		logger.S().Fatal(err)
	}
	paymentToken, err := config.PaymentTokenAddress(cfg)
	if err != nil {
		logger.S().Fatal(err)
	}
	client := opensea.NewLiveClient(baseURL, os.Getenv("OPENSEA_API_KEY"), logger.S())

	// --- 打开出价流水 ---
	jnl, err := journal.NewBadgerJournal(cfg.JournalDBPath)
	if err != nil {
		logger.S().Fatalf("打开出价流水失败: %v", err)
	}
	defer jnl.Close()

	// --- 初始化机器人 ---
	lim := limiter.New(cfg.RateLimitTokens, time.Duration(cfg.RateLimitIntervalSec)*time.Second)
	bidBot, err := bot.New(client, w, lim, jnl, paymentToken, cfg.SkipTokenIDs, logger.S())
	if err != nil {
		logger.S().Fatalf("初始化机器人失败: %v", err)
	}

	// --- 中断信号触发协作式取消 ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.S().Warn("收到中断信号，正在停止...")
		cancel()
	}()

	// --- 集合接入 ---
	if err := bidBot.Onboard(ctx, entry); err != nil {
		logger.S().Fatalf("集合接入失败: %v", err)
	}
	if *maxBidOverride > 0 {
		if err := bidBot.OverrideMaxBid(decimal.NewFromFloat(*maxBidOverride)); err != nil {
			logger.S().Fatal(err)
		}
	}
	bidBot.LogPaymentTokenBalance(ctx)

	expirationSecs := *expiration
	if expirationSecs <= 0 {
		expirationSecs = cfg.DefaultExpirationSec
	}

	// --- 根据模式执行 ---
	switch *mode {
	case "batch":
		runBatchMode(ctx, bidBot, *limit, *maxPrice, expirationSecs, *dryRun)
	case "single":
		runSingleMode(ctx, bidBot, *tokenID, *bidAmount, expirationSecs)
	case "watch":
		runWatchMode(ctx, cfg, bidBot, entry.Address, expirationSecs)
	default:
		logger.S().Fatalf("未知的运行模式: %s。请选择 'batch'、'single' 或 'watch'。", *mode)
	}
}

// loadWallet 从环境变量加载出价人的加密私钥。
// EPK 直接携带 keystore JSON, EPK_PATH 指向 keystore 文件, 二者必须提供其一。
func loadWallet() (*wallet.Wallet, error) {
	password := os.Getenv("EPK_PASSWORD")
	if epk := os.Getenv("EPK"); epk != "" {
		return wallet.Load([]byte(epk), password)
	}
	if path := os.Getenv("EPK_PATH"); path != "" {
		return wallet.LoadFromFile(path, password)
	}
	return nil, &models.ConfigurationError{Field: "EPK", Reason: "必须设置 EPK 或 EPK_PATH 环境变量"}
}

// runBatchMode 批量发现并出价, 结束后打印结果表格。
func runBatchMode(ctx context.Context, bidBot *bot.BidBot, limit int, maxPriceETH float64, expirationSecs int64, dryRun bool) {
	logger.S().Info("--- 启动批量出价模式 ---")
	opts := bot.BatchOptions{
		Limit:          limit,
		ExpirationSecs: expirationSecs,
		DryRun:         dryRun,
	}
	if maxPriceETH > 0 {
		maxPriceWei := money.ToWei(decimal.NewFromFloat(maxPriceETH))
		opts.MaxPrice = &maxPriceWei
	}

	outcomes, err := bidBot.PlaceBidsBatch(ctx, opts)
	if len(outcomes) > 0 {
		reporter.PrintBatchReport(bidBot.Contract(), outcomes)
	}
	if err != nil {
		logger.S().Fatalf("批量出价中止: %v", err)
	}
	logger.S().Info("批量出价完成。")
}

// runSingleMode 对单个 Token 实盘出价。
func runSingleMode(ctx context.Context, bidBot *bot.BidBot, tokenID string, bidETH float64, expirationSecs int64) {
	logger.S().Info("--- 启动单笔出价模式 ---")
	if tokenID == "" {
		logger.S().Fatal("单笔模式必须通过 --token 指定 Token ID。")
	}
	if bidETH <= 0 {
		logger.S().Fatal("单笔模式必须通过 --bid 指定大于 0 的出价金额 (ETH)。")
	}

	amount := money.ToWei(decimal.NewFromFloat(bidETH))
	receipt, err := bidBot.PlaceSingleBid(ctx, tokenID, amount, expirationSecs)
	if err != nil {
		logger.S().Fatalf("出价失败: %v", err)
	}
	logger.S().Infof("出价已提交, orderHash=%s", receipt.OrderHash)
}

// runWatchMode 订阅事件流, 对新挂单实时出价, 直到被中断。
func runWatchMode(ctx context.Context, cfg *models.Config, bidBot *bot.BidBot, contractAddress string, expirationSecs int64) {
	logger.S().Info("--- 启动挂单监听模式 ---")
	streamURL, err := config.StreamURL(cfg)
	if err != nil {
		logger.S().Fatal(err)
	}

	watcher := stream.NewWatcher(streamURL, contractAddress, logger.S())
	watcherDone := make(chan error, 1)
	go func() { watcherDone <- watcher.Run(ctx) }()

	if err := bidBot.Watch(ctx, watcher.Events(), expirationSecs); err != nil && ctx.Err() == nil {
		logger.S().Fatalf("监听模式异常退出: %v", err)
	}
	<-watcherDone
	logger.S().Info("监听模式已停止。")
}
