package opensea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"opensea-bid-bot-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LiveClient 实现了 Client 接口, 用于与真实的市场 API 进行交互。
type LiveClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewLiveClient 创建一个新的 LiveClient 实例。apiKey 可以为空 (公共接口)。
func NewLiveClient(baseURL, apiKey string, logger *zap.SugaredLogger) *LiveClient {
	return &LiveClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// doRequest 是一个通用的请求处理函数, 用于向市场API发送请求。
// GET 请求使用查询参数, 其他方法把 body 编码为 JSON。
func (c *LiveClient) doRequest(ctx context.Context, method, endpoint string, params url.Values, body interface{}) ([]byte, error) {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, endpoint)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("编码请求体失败: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	c.logger.Debugw("发送API请求", "method", method, "url", fullURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("执行请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	// 市场返回的结构化错误优先于裸状态码
	var apiError models.APIError
	if json.Unmarshal(respBody, &apiError) == nil && apiError.Code != 0 {
		return respBody, &apiError
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return respBody, fmt.Errorf("API请求失败, 状态码: %d, 响应: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// GetAsset 拉取单个资产详情。
func (c *LiveClient) GetAsset(ctx context.Context, contractAddress, tokenID string) (*models.AssetDetail, error) {
	endpoint := fmt.Sprintf("/asset/%s/%s/", contractAddress, tokenID)
	data, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	var detail models.AssetDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("解析资产详情失败: %w", err)
	}
	return &detail, nil
}

// GetCollectionStats 查询集合统计信息。
func (c *LiveClient) GetCollectionStats(ctx context.Context, slug string) (*models.CollectionStats, error) {
	endpoint := fmt.Sprintf("/collection/%s/stats", slug)
	data, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	// stats 接口把数据包在 "stats" 字段里
	var wrapper struct {
		Stats models.CollectionStats `json:"stats"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("解析集合统计失败: %w", err)
	}
	return &wrapper.Stats, nil
}

// GetAssets 按 offset 窗口分页拉取资产列表。
func (c *LiveClient) GetAssets(ctx context.Context, contractAddress string, limit, offset int) ([]models.Asset, error) {
	params := url.Values{}
	params.Set("asset_contract_address", contractAddress)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	data, err := c.doRequest(ctx, http.MethodGet, "/assets", params, nil)
	if err != nil {
		return nil, err
	}

	var resp models.AssetsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("解析资产列表失败: %w", err)
	}
	return resp.Assets, nil
}

// PostBuyOrder 提交已签名的买单。
func (c *LiveClient) PostBuyOrder(ctx context.Context, payload *models.BuyOrderPayload) (*models.BuyOrderReceipt, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/orders/post", nil, payload)
	if err != nil {
		c.logger.Errorw("买单提交失败", "token_id", payload.TokenID, "error", err, "raw_response", string(data))
		return nil, err
	}

	var receipt models.BuyOrderReceipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("解析买单回执失败: %w", err)
	}
	return &receipt, nil
}

// GetTokenBalance 查询指定地址持有的 ERC20 代币余额 (wei)。
func (c *LiveClient) GetTokenBalance(ctx context.Context, owner, tokenAddress string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("token_address", tokenAddress)

	endpoint := fmt.Sprintf("/account/%s/balance", owner)
	data, err := c.doRequest(ctx, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return decimal.Zero, err
	}

	var resp struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("解析余额响应失败: %w", err)
	}
	return resp.Balance, nil
}
