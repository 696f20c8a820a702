package wallet

import (
	"fmt"
	"os"

	"opensea-bid-bot-go/internal/models"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet 持有出价人的签名身份。私钥来自加密的 keystore JSON (EPK),
// 用操作员口令解密。核心逻辑只把它当作不透明的签名能力使用。
type Wallet struct {
	key *keystore.Key
}

// Load 用口令解密 keystore JSON 并返回钱包。
func Load(keystoreJSON []byte, password string) (*Wallet, error) {
	key, err := keystore.DecryptKey(keystoreJSON, password)
	if err != nil {
		return nil, fmt.Errorf("解密keystore失败: %w", err)
	}
	return &Wallet{key: key}, nil
}

// LoadFromFile 从文件加载加密的 keystore。
func LoadFromFile(path, password string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取keystore文件失败: %w", err)
	}
	return Load(data, password)
}

// Address 返回出价人地址 (十六进制)。
func (w *Wallet) Address() string {
	return w.key.Address.Hex()
}

// SignHash 对 32 字节摘要做 secp256k1 签名。
func (w *Wallet) SignHash(hash []byte) ([]byte, error) {
	sig, err := crypto.Sign(hash, w.key.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("签名失败: %w", err)
	}
	return sig, nil
}

// OrderDigest 计算买单负载的签名摘要。
// 摘要覆盖买单的全部经济要素, 任何一项被篡改都会使签名失效。
func OrderDigest(p *models.BuyOrderPayload) []byte {
	canonical := fmt.Sprintf("%s|%s|%s|%s|%s|%d|%s",
		p.ContractAddress, p.TokenID, p.Bidder, p.PaymentToken,
		p.Amount.String(), p.ExpirationTime, p.Salt)
	return crypto.Keccak256([]byte(canonical))
}
