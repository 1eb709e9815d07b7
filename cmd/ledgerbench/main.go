package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/d60-Lab/pulsechat/internal/kv"
	"github.com/d60-Lab/pulsechat/internal/ledger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// 台账全量读改写 + 全表扫描的代价测量。
// ACCOUNTS 个账户对 POSTS 个帖子做点赞/关注写入，然后测 CountForPost
// 和 Followers 这类 O(accounts) 扫描的延迟分布。
func main() {
	accounts := envInt("ACCOUNTS", 1000)
	posts := envInt("POSTS", 200)
	scans := envInt("SCANS", 500)

	var store kv.Store
	if path := os.Getenv("LEDGER_PATH"); path != "" {
		store = must(kv.OpenLevelStore(path))
	} else {
		store = kv.NewMemoryStore()
	}
	defer store.Close()
	led := ledger.New(store)

	addr := func(i int) string { return fmt.Sprintf("0x%040x", i+1) }

	// 写入：每个账户赞 10 个帖子并关注 celeb
	celeb := addr(0)
	writeRecs := make([]time.Duration, 0, accounts*11)
	t0 := time.Now()
	for i := 0; i < accounts; i++ {
		a := addr(i)
		for j := 0; j < 10; j++ {
			pid := strconv.Itoa((i*7 + j) % posts)
			st := time.Now()
			_, _ = led.Toggle(ledger.FeatureLike, a, pid, celeb)
			writeRecs = append(writeRecs, time.Since(st))
		}
		st := time.Now()
		_ = led.Follow(a, celeb)
		writeRecs = append(writeRecs, time.Since(st))
	}
	writeDur := time.Since(t0)

	// 扫描：CountForPost 要遍历全部账户
	countRecs := make([]time.Duration, 0, scans)
	for i := 0; i < scans; i++ {
		st := time.Now()
		_ = led.CountForPost(ledger.FeatureLike, strconv.Itoa(i%posts))
		countRecs = append(countRecs, time.Since(st))
	}

	// Followers 同样是全边扫描
	followerRecs := make([]time.Duration, 0, scans)
	for i := 0; i < scans; i++ {
		st := time.Now()
		_ = led.Followers(celeb)
		followerRecs = append(followerRecs, time.Since(st))
	}

	total := accounts * 11
	fmt.Printf("ACCOUNTS=%d, POSTS=%d, SCANS=%d\n", accounts, posts, scans)
	fmt.Printf("Writes total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		writeDur, writeDur/time.Duration(total), pct(writeRecs, 0.50), pct(writeRecs, 0.95), pct(writeRecs, 0.99))
	fmt.Printf("CountForPost scan: p50: %v, p95: %v, p99: %v\n",
		pct(countRecs, 0.50), pct(countRecs, 0.95), pct(countRecs, 0.99))
	fmt.Printf("Followers scan: p50: %v, p95: %v, p99: %v\n",
		pct(followerRecs, 0.50), pct(followerRecs, 0.95), pct(followerRecs, 0.99))
}
