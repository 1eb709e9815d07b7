package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStructuredBio(t *testing.T) {
	p := Parse("alice", `{"displayName":"Alice","bio":"hi"}`, "https://x/a.png", 1700000000)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "Alice", p.DisplayName)
	assert.Equal(t, "hi", p.Bio)
	assert.Equal(t, "https://x/a.png", p.Avatar)
}

func TestParseLegacyPlainBio(t *testing.T) {
	p := Parse("bob", "just a bio", "", 0)
	assert.Equal(t, "", p.DisplayName)
	assert.Equal(t, "just a bio", p.Bio)
}

func TestParseMalformedBioNeverPanics(t *testing.T) {
	cases := []string{
		"{oops",
		`{"displayName":"x"}`,      // 缺 bio key，按旧格式处理
		`{"bio":"y"}`,              // 缺 displayName key
		`["displayName","bio"]`,    // 类型不符
		"",
	}
	for _, bioField := range cases {
		p := Parse("u", bioField, "", 0)
		assert.Equal(t, "", p.DisplayName, "bio field %q", bioField)
		assert.Equal(t, bioField, p.Bio, "bio field %q", bioField)
	}
}

func TestDisplayTextPrecedence(t *testing.T) {
	addr := "0x1234567890abcdef1234567890abcdef12345678"

	p := Parse("alice", `{"displayName":"Alice","bio":""}`, "", 0)
	assert.Equal(t, "Alice", DisplayText(p, addr))

	p = Parse("alice", "plain", "", 0)
	assert.Equal(t, "alice", DisplayText(p, addr))

	p = Parse("", "", "", 0)
	assert.Equal(t, "0x1234...5678", DisplayText(p, addr))
}
