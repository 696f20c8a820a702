package config

import (
	"encoding/json"
	"fmt"
	"os"

	"opensea-bid-bot-go/internal/models"
)

// LoadConfig 从指定路径加载JSON配置文件并解析到Config结构体中
func LoadConfig(path string) (*models.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	config := &models.Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	applyDefaults(config)
	return config, nil
}

// applyDefaults 填充可省略字段的默认值
func applyDefaults(cfg *models.Config) {
	if cfg.RateLimitTokens == 0 {
		cfg.RateLimitTokens = 1
	}
	if cfg.RateLimitIntervalSec == 0 {
		cfg.RateLimitIntervalSec = 5
	}
	if cfg.DefaultExpirationSec == 0 {
		cfg.DefaultExpirationSec = 24 * 3600
	}
}

// ResolveCollection 在集合注册表中查找指定名称的集合并校验必填字段。
// 地址缺失或 margin 未设置都会在出价开始前报错。
func ResolveCollection(cfg *models.Config, name string) (*models.CollectionEntry, error) {
	entry, ok := cfg.Collections[name]
	if !ok {
		return nil, &models.ConfigurationError{Field: "collections", Reason: fmt.Sprintf("未找到集合 %q", name)}
	}
	if entry.Address == "" {
		return nil, &models.ConfigurationError{Field: "address", Reason: fmt.Sprintf("集合 %q 缺少合约地址", name)}
	}
	if entry.Strategy.Margin == nil {
		return nil, &models.ConfigurationError{Field: "strategy.margin", Reason: fmt.Sprintf("集合 %q 未设置目标利润率", name)}
	}
	if *entry.Strategy.Margin < 0 {
		return nil, &models.ConfigurationError{Field: "strategy.margin", Reason: "必须 >= 0"}
	}
	return &entry, nil
}

// APIBaseURL 返回当前网络的 REST API 地址
func APIBaseURL(cfg *models.Config) (string, error) {
	u, ok := cfg.APIBaseURLs[cfg.Network]
	if !ok || u == "" {
		return "", &models.ConfigurationError{Field: "api_base_urls", Reason: fmt.Sprintf("未配置网络 %q 的 API 地址", cfg.Network)}
	}
	return u, nil
}

// StreamURL 返回当前网络的事件流地址, watch 模式使用
func StreamURL(cfg *models.Config) (string, error) {
	u, ok := cfg.StreamURLs[cfg.Network]
	if !ok || u == "" {
		return "", &models.ConfigurationError{Field: "stream_urls", Reason: fmt.Sprintf("未配置网络 %q 的事件流地址", cfg.Network)}
	}
	return u, nil
}

// PaymentTokenAddress 返回当前网络的出价货币 (WETH) 合约地址
func PaymentTokenAddress(cfg *models.Config) (string, error) {
	addr, ok := cfg.WETHTokenAddress[cfg.Network]
	if !ok || addr == "" {
		return "", &models.ConfigurationError{Field: "weth_token_address", Reason: fmt.Sprintf("未配置网络 %q 的 WETH 地址", cfg.Network)}
	}
	return addr, nil
}
