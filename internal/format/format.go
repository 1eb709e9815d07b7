package format

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

var ErrInvalidAddress = errors.New("format: invalid address")

var hexAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsHexAddress 是否为合法 0x 地址
func IsHexAddress(addr string) bool { return hexAddressPattern.MatchString(addr) }

// NormalizeAddress 统一小写。相等性比较永远用这个形式，缩写只用于展示。
func NormalizeAddress(addr string) string { return strings.ToLower(strings.TrimSpace(addr)) }

// ShortAddress 展示用缩写：前 6 + "..." + 后 4
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// ChecksumAddress EIP-55 混合大小写校验形式
func ChecksumAddress(addr string) (string, error) {
	if !IsHexAddress(addr) {
		return "", ErrInvalidAddress
	}
	hexAddr := strings.ToLower(addr[2:])
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(hexAddr))
	hash := h.Sum(nil)

	out := []byte(hexAddr)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i] = c - 32
		}
	}
	return "0x" + string(out), nil
}

// FormatUnits 最小单位整数 -> 十进制字符串（去掉尾随零）
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil || decimals < 0 {
		return "0"
	}
	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)
	base := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	q, r := new(big.Int).QuoRem(abs, base, new(big.Int))

	s := q.String()
	if r.Sign() != 0 {
		frac := fmt.Sprintf("%0*s", decimals, r.String())
		if frac = strings.TrimRight(frac, "0"); frac != "" {
			s += "." + frac
		}
	}
	if neg && s != "0" {
		s = "-" + s
	}
	return s
}

// ParseUnits 十进制字符串 -> 最小单位整数。
// 小数位超过 decimals 直接报错，绝不悄悄截断精度。
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if s == "" || s == "." {
		return nil, fmt.Errorf("format: empty amount")
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, fmt.Errorf("format: malformed amount %q", s)
	}
	if len(fracPart) > decimals {
		return nil, fmt.Errorf("format: amount %q exceeds %d decimals", s, decimals)
	}

	v, ok := new(big.Int).SetString(intPart+fracPart+strings.Repeat("0", decimals-len(fracPart)), 10)
	if !ok {
		return nil, fmt.Errorf("format: malformed amount %q", s)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// FormatTimestamp unix 秒 -> 人类可读：近期用相对时间，久远用绝对日期
func FormatTimestamp(unixSec int64, now time.Time) string {
	t := time.Unix(unixSec, 0)
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
