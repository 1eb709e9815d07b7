package ledger

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/d60-Lab/pulsechat/internal/kv"
)

func seedBenchLedger(b *testing.B, accounts, posts int) *Ledger {
	b.Helper()
	led := New(kv.NewMemoryStore())
	for i := 0; i < accounts; i++ {
		a := fmt.Sprintf("0x%040x", i+1)
		for j := 0; j < 10; j++ {
			pid := strconv.Itoa((i*7 + j) % posts)
			if _, err := led.Toggle(FeatureLike, a, pid, ""); err != nil {
				b.Fatalf("seed toggle: %v", err)
			}
		}
		if err := led.Follow(a, "0x"+fmt.Sprintf("%040x", 0)); err != nil {
			b.Fatalf("seed follow: %v", err)
		}
	}
	return led
}

func BenchmarkToggleWrite(b *testing.B) {
	led := seedBenchLedger(b, 1000, 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a := fmt.Sprintf("0x%040x", i%1000+1)
		_, _ = led.Toggle(FeatureLike, a, strconv.Itoa(i%200), "")
	}
}

// 赞数统计要扫全账户，这个基准给出扫描代价随账户数的量级
func BenchmarkCountForPost(b *testing.B) {
	for _, accounts := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("accounts_%d", accounts), func(b *testing.B) {
			led := seedBenchLedger(b, accounts, 200)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = led.CountForPost(FeatureLike, strconv.Itoa(i%200))
			}
		})
	}
}

func BenchmarkFollowersScan(b *testing.B) {
	led := seedBenchLedger(b, 5000, 200)
	celeb := fmt.Sprintf("0x%040x", 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = led.Followers(celeb)
	}
}
