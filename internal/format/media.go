package format

import (
	"regexp"
	"strings"
)

// 帖子正文里的内嵌媒体标记：[media:<url>]，零个或多个
var mediaPattern = regexp.MustCompile(`\[media:(https?://[^\]]+)\]`)

var spaceRuns = regexp.MustCompile(`[ \t]{2,}`)

// ExtractMedia 摘出全部媒体 URL 并从展示文本中剔除标记。
// 剔除产生的连续空格压成一个，首尾空白去掉。
func ExtractMedia(content string) (text string, mediaURLs []string) {
	for _, m := range mediaPattern.FindAllStringSubmatch(content, -1) {
		mediaURLs = append(mediaURLs, m[1])
	}
	text = mediaPattern.ReplaceAllString(content, "")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text), mediaURLs
}

// AppendMedia 组合正文与媒体 URL（发帖入链前的反向操作）
func AppendMedia(content, mediaURL string) string {
	if mediaURL == "" {
		return content
	}
	return content + "\n\n[media:" + mediaURL + "]"
}
