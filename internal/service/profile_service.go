package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/pulsechat/internal/chain"
	"github.com/d60-Lab/pulsechat/internal/format"
	"github.com/d60-Lab/pulsechat/internal/ledger"
	"github.com/d60-Lab/pulsechat/internal/profile"
	"github.com/d60-Lab/pulsechat/pkg/logger"
)

// ProfileView 读接口返回的资料聚合：链上资料 + 本地关注计数
type ProfileView struct {
	Address        string          `json:"address"`
	Profile        profile.Profile `json:"profile"`
	Display        string          `json:"display"`
	FollowerCount  int             `json:"followerCount"`
	FollowingCount int             `json:"followingCount"`
}

type LeaderboardEntry struct {
	Rank     int             `json:"rank"`
	Address  string          `json:"address"`
	Display  string          `json:"display"`
	Profile  profile.Profile `json:"profile"`
	TotalFee string          `json:"totalFee"`
}

// StatsView UserStats 的展示形态，费用换算成十进制字符串
type StatsView struct {
	PostCount    uint64 `json:"postCount"`
	CommentCount uint64 `json:"commentCount"`
	MessageCount uint64 `json:"messageCount"`
	TotalFeePaid string `json:"totalFeePaid"`
}

// ProfileService 链上资料读取，redis 兜底 RPC 延迟。
// 缓存只存解析后的快照，TTL 过期即自愈，SetProfile 后由 Invalidate 提前失效。
type ProfileService interface {
	Get(ctx context.Context, addr string) (ProfileView, error)
	GetBatch(ctx context.Context, addrs []string) (map[string]profile.Profile, error)
	Invalidate(ctx context.Context, addr string)
	Stats(ctx context.Context, addr string) (StatsView, error)
	Totals(ctx context.Context) (chain.Totals, error)
	Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error)
	Messages(ctx context.Context, addr string, n int) ([]chain.Message, error)
}

type profileService struct {
	backend chain.Backend
	cache   *redis.Client
	led     *ledger.Ledger
	ttl     time.Duration
}

func NewProfileService(backend chain.Backend, cache *redis.Client, led *ledger.Ledger, ttl time.Duration) ProfileService {
	return &profileService{backend: backend, cache: cache, led: led, ttl: ttl}
}

func profileKey(addr string) string {
	return fmt.Sprintf("profile:%s", format.NormalizeAddress(addr))
}

// fetch 单个资料：cache 命中直接返回，miss 走链并回填
func (s *profileService) fetch(ctx context.Context, addr string) (profile.Profile, error) {
	key := profileKey(addr)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var p profile.Profile
			if uErr := json.Unmarshal(data, &p); uErr == nil {
				return p, nil
			}
		}
	}

	raw, err := s.backend.Profile(ctx, addr)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p := profile.Parse(raw.Username, raw.Bio, raw.Avatar, raw.CreatedAt)
	if s.cache != nil {
		if payload, mErr := json.Marshal(p); mErr == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				logger.Warn("profile: cache set failed", zap.Error(err))
			}
		}
	}
	return p, nil
}

func (s *profileService) Get(ctx context.Context, addr string) (ProfileView, error) {
	p, err := s.fetch(ctx, addr)
	if err != nil {
		return ProfileView{}, err
	}
	return ProfileView{
		Address:        format.NormalizeAddress(addr),
		Profile:        p,
		Display:        profile.DisplayText(p, addr),
		FollowerCount:  len(s.led.Followers(addr)),
		FollowingCount: len(s.led.Following(addr)),
	}, nil
}

// GetBatch 时间线水合：一次 MGET 拉整页作者，miss 的逐个回源
func (s *profileService) GetBatch(ctx context.Context, addrs []string) (map[string]profile.Profile, error) {
	out := make(map[string]profile.Profile, len(addrs))
	missing := make([]string, 0, len(addrs))

	if s.cache != nil && len(addrs) > 0 {
		keys := make([]string, 0, len(addrs))
		seen := make(map[string]struct{}, len(addrs))
		uniq := make([]string, 0, len(addrs))
		for _, a := range addrs {
			norm := format.NormalizeAddress(a)
			if _, ok := seen[norm]; ok {
				continue
			}
			seen[norm] = struct{}{}
			uniq = append(uniq, norm)
			keys = append(keys, profileKey(norm))
		}
		vals, err := s.cache.MGet(ctx, keys...).Result()
		if err != nil {
			vals = make([]interface{}, len(keys))
		}
		for i, v := range vals {
			str, ok := v.(string)
			if !ok {
				missing = append(missing, uniq[i])
				continue
			}
			var p profile.Profile
			if uErr := json.Unmarshal([]byte(str), &p); uErr != nil {
				missing = append(missing, uniq[i])
				continue
			}
			out[uniq[i]] = p
		}
	} else {
		for _, a := range addrs {
			missing = append(missing, format.NormalizeAddress(a))
		}
	}

	for _, addr := range missing {
		p, err := s.fetch(ctx, addr)
		if err != nil {
			// 单个地址失败不拖垮整页，留空由前端回退到缩写地址
			logger.Warn("profile: batch hydrate miss", zap.String("addr", addr), zap.Error(err))
			continue
		}
		out[addr] = p
	}
	return out, nil
}

func (s *profileService) Invalidate(ctx context.Context, addr string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, profileKey(addr)).Err(); err != nil {
		logger.Warn("profile: cache invalidate failed", zap.Error(err))
	}
}

func (s *profileService) Stats(ctx context.Context, addr string) (StatsView, error) {
	stats, err := s.backend.UserStats(ctx, addr)
	if err != nil {
		return StatsView{}, err
	}
	decimals, err := s.backend.TokenDecimals(ctx)
	if err != nil {
		return StatsView{}, err
	}
	return StatsView{
		PostCount:    stats.PostCount,
		CommentCount: stats.CommentCount,
		MessageCount: stats.MessageCount,
		TotalFeePaid: format.FormatUnits(stats.TotalFeePaid, int(decimals)),
	}, nil
}

func (s *profileService) Totals(ctx context.Context) (chain.Totals, error) {
	return s.backend.Totals(ctx)
}

func (s *profileService) Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	entries, err := s.backend.TopUsersByFee(ctx, n)
	if err != nil {
		return nil, err
	}
	decimals, err := s.backend.TokenDecimals(ctx)
	if err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(entries))
	for _, e := range entries {
		addrs = append(addrs, e.User)
	}
	profiles, err := s.GetBatch(ctx, addrs)
	if err != nil {
		return nil, err
	}

	out := make([]LeaderboardEntry, 0, len(entries))
	for i, e := range entries {
		norm := format.NormalizeAddress(e.User)
		p := profiles[norm]
		out = append(out, LeaderboardEntry{
			Rank:     i + 1,
			Address:  norm,
			Display:  profile.DisplayText(p, e.User),
			Profile:  p,
			TotalFee: format.FormatUnits(e.TotalFee, int(decimals)),
		})
	}
	return out, nil
}

func (s *profileService) Messages(ctx context.Context, addr string, n int) ([]chain.Message, error) {
	return s.backend.MessagesByUser(ctx, addr, n)
}
