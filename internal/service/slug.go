package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9-]+`)
	slugSpaceRe    = regexp.MustCompile(`[\s_]+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// slugify 将任意文本转为 URL 安全的 slug 片段
func slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// shuffleString Fisher–Yates 乱序，打散用户名避免 slug 直接暴露身份
func shuffleString(s string) (string, error) {
	arr := []byte(s)
	for i := len(arr) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("生成随机数失败: %w", err)
		}
		j := int(n.Int64())
		arr[i], arr[j] = arr[j], arr[i]
	}
	return string(arr), nil
}

// randomBase62 生成指定长度的随机 base62 字符串
func randomBase62(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(base62Chars)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("生成随机数失败: %w", err)
		}
		out[i] = base62Chars[n.Int64()]
	}
	return string(out), nil
}

// newTopicSlugBase 组合主题 slug 候选：乱序用户名前缀 + 随机 base62 后缀
func newTopicSlugBase(username string) (string, error) {
	prefix := slugify(username)
	if prefix == "" {
		prefix = "user"
	}
	shuffled, err := shuffleString(prefix)
	if err != nil {
		return "", err
	}
	if len(shuffled) > 8 {
		shuffled = shuffled[:8]
	}
	suffix, err := randomBase62(8)
	if err != nil {
		return "", err
	}
	base := strings.ToLower(shuffled + "-" + suffix)
	if len(base) > 64 {
		base = base[:64]
	}
	return base, nil
}
