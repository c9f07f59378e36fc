package internal

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

var (
	mediaPattern = regexp.MustCompile(`(?i)<media omitted>|media omitted|` +
		`(?:image|video|audio|sticker|gif|document) omitted|<attached:`)
	urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// emojiRanges are the code point blocks counted as emoji
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F300, 0x1F5FF}, // symbols and pictographs
	{0x1F680, 0x1F6FF}, // transport and map
	{0x1F1E0, 0x1F1FF}, // regional indicators
	{0x2600, 0x26FF},   // misc symbols
	{0x2700, 0x27BF},   // dingbats
	{0x1F900, 0x1F9FF}, // supplemental symbols
	{0x1FA70, 0x1FAFF}, // symbols extended-A
}

func isEmojiRune(r rune) bool {
	for _, rg := range emojiRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// ExtractEmojis returns the emoji grapheme clusters of s in order
func ExtractEmojis(s string) []string {
	var out []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		runes := gr.Runes()
		if len(runes) > 0 && isEmojiRune(runes[0]) {
			out = append(out, gr.Str())
		}
	}
	return out
}

// CountEmojis counts emoji grapheme clusters without allocating them
func CountEmojis(s string) int {
	n := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		runes := gr.Runes()
		if len(runes) > 0 && isEmojiRune(runes[0]) {
			n++
		}
	}
	return n
}

// IsMedia reports whether the body is a media placeholder
func IsMedia(body string) bool {
	return mediaPattern.MatchString(body)
}

// ContainsURL reports whether the body carries a link
func ContainsURL(body string) bool {
	return urlPattern.MatchString(body)
}

// IsQuestion reports whether the body ends with a question mark,
// ignoring trailing whitespace, emoji and closing punctuation
func IsQuestion(body string) bool {
	trimmed := strings.TrimRightFunc(body, func(r rune) bool {
		return unicode.IsSpace(r) || isEmojiRune(r) || isClosingMark(r) ||
			unicode.Is(unicode.Variation_Selector, r) || r == '\u200d'
	})
	return strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "\u061f") || strings.HasSuffix(trimmed, "\uff1f")
}

func isClosingMark(r rune) bool {
	switch r {
	case ')', ']', '"', '\'', '\u00bb', '\u201d', '\u2019':
		return true
	}
	return false
}

// WordCount counts whitespace-separated fields
func WordCount(body string) int {
	return len(strings.Fields(body))
}

// CharCount counts code points
func CharCount(body string) int {
	return utf8.RuneCountInString(body)
}
