package format

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0x1234...cdef",
		ShortAddress("0x1234567890abcdef1234567890abcdef1234cdef"))
	assert.Equal(t, "0x12", ShortAddress("0x12"))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0xabcdef", NormalizeAddress("  0xABCdef "))
}

func TestChecksumAddress(t *testing.T) {
	// EIP-55 参考向量
	cases := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for _, want := range cases {
		got, err := ChecksumAddress(want)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		got, err = ChecksumAddress(NormalizeAddress(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ChecksumAddress("0x123")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		amount   int64
		decimals int
		want     string
	}{
		{1500000, 6, "1.5"},
		{1000000, 6, "1"},
		{10000, 6, "0.01"},
		{0, 6, "0"},
		{-2500000, 6, "-2.5"},
		{123, 0, "123"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatUnits(big.NewInt(c.amount), c.decimals))
	}
}

func TestParseUnits(t *testing.T) {
	v, err := ParseUnits("1.5", 6)
	require.NoError(t, err)
	assert.Equal(t, "1500000", v.String())

	v, err = ParseUnits("0.01", 6)
	require.NoError(t, err)
	assert.Equal(t, "10000", v.String())

	v, err = ParseUnits("-2", 6)
	require.NoError(t, err)
	assert.Equal(t, "-2000000", v.String())

	// 超过精度不截断，报错
	_, err = ParseUnits("1.2345", 3)
	assert.Error(t, err)

	for _, bad := range []string{"", ".", "1.2.3", "abc", "1,5"} {
		_, err := ParseUnits(bad, 6)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "1.5", "0.000001", "123456.789"} {
		v, err := ParseUnits(s, 6)
		require.NoError(t, err)
		assert.Equal(t, s, FormatUnits(v, 6))
	}
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatTimestamp(now.Add(-c.ago).Unix(), now))
	}
	assert.Equal(t, "May 1, 2024",
		FormatTimestamp(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Unix(), now))
}

func TestExtractMedia(t *testing.T) {
	text, urls := ExtractMedia("hello [media:https://x/y.png] world")
	assert.Equal(t, "hello world", text)
	assert.Equal(t, []string{"https://x/y.png"}, urls)

	text, urls = ExtractMedia("plain text post")
	assert.Equal(t, "plain text post", text)
	assert.Empty(t, urls)

	text, urls = ExtractMedia("a [media:https://x/1.png][media:https://x/2.png] b")
	assert.Equal(t, "a b", text)
	assert.Equal(t, []string{"https://x/1.png", "https://x/2.png"}, urls)
}

func TestAppendMedia(t *testing.T) {
	assert.Equal(t, "gm", AppendMedia("gm", ""))

	combined := AppendMedia("gm", "https://x/y.png")
	text, urls := ExtractMedia(combined)
	assert.Equal(t, "gm", text)
	assert.Equal(t, []string{"https://x/y.png"}, urls)
}
