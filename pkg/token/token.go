package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// SecretBytes 邀请令牌明文的随机熵字节数
const SecretBytes = 24

// NewSecret 生成 URL 安全的随机令牌明文
// 明文仅在签发时返回一次，持久化层只保存其哈希
func NewSecret() (string, error) {
	buf := make([]byte, SecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成随机令牌失败: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash 计算令牌明文的 SHA-256 十六进制哈希
// 查找与持久化均只使用该哈希，明文不落库
func Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
