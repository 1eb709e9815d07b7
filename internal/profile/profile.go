package profile

import (
	"encoding/json"

	"github.com/d60-Lab/pulsechat/internal/format"
)

// Profile 规范化后的用户资料。
// 链上 bio 字段历史上换过编码：新数据是 {"displayName","bio"} JSON，
// 旧数据是纯文本 bio，且从未迁移，两种格式会一直共存。
type Profile struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
}

// structuredBio 用指针探测两个 key 是否同时存在
type structuredBio struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
}

// Parse 把原始资料元组解析成统一结构。任何格式的 bio 都不会让它报错：
// 解析失败一律按旧版纯文本 bio 处理。
func Parse(username, bioField, avatar string, createdAt int64) Profile {
	p := Profile{
		Username:  username,
		Avatar:    avatar,
		CreatedAt: createdAt,
	}

	var enc structuredBio
	if err := json.Unmarshal([]byte(bioField), &enc); err == nil &&
		enc.DisplayName != nil && enc.Bio != nil {
		p.DisplayName = *enc.DisplayName
		p.Bio = *enc.Bio
		return p
	}
	p.Bio = bioField
	return p
}

// DisplayText 展示名的统一优先级：displayName > username > 缩写地址
func DisplayText(p Profile, address string) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Username != "" {
		return p.Username
	}
	return format.ShortAddress(address)
}
