package internal

import (
	"math"
	"strings"
	"unicode"
)

const (
	// sentimentAlpha normalizes raw valence sums into (-1, 1)
	sentimentAlpha     = 15.0
	sentimentThreshold = 0.05
)

// sentimentLexicon maps lower-case tokens to valence
var sentimentLexicon = map[string]float64{
	"good": 1.9, "great": 3.1, "awesome": 3.1, "amazing": 2.8, "love": 3.2, "loved": 2.9, "lovely": 2.8,
	"nice": 1.8, "happy": 2.7, "glad": 2.0, "thanks": 1.9, "thank": 1.5, "cool": 1.3, "best": 3.2,
	"excellent": 2.7, "fantastic": 2.6, "wonderful": 2.7, "perfect": 2.7, "yay": 2.4, "fun": 2.3,
	"beautiful": 2.9, "congrats": 2.4, "congratulations": 2.9, "welcome": 2.0, "haha": 1.5, "lol": 1.4,
	"hahaha": 1.8, "enjoy": 2.2, "enjoyed": 2.3, "like": 1.5, "yes": 1.0, "sure": 1.3, "ok": 0.9,
	"okay": 0.9, "win": 2.8, "proud": 2.1, "excited": 1.9, "sweet": 2.0, "brilliant": 2.8,
	"bad": -2.5, "sad": -2.1, "hate": -2.7, "angry": -2.3, "terrible": -2.1, "awful": -2.0,
	"worst": -3.1, "sorry": -0.3, "upset": -1.6, "annoying": -1.7, "annoyed": -1.6, "boring": -1.3,
	"tired": -1.3, "sick": -1.7, "problem": -1.7, "wrong": -2.1, "fail": -2.5, "failed": -2.3,
	"hurt": -2.4, "cry": -2.1, "crying": -2.1, "miss": -1.2, "missed": -1.2, "stupid": -2.4,
	"ugly": -2.5, "pain": -2.3, "scared": -1.9, "worried": -1.2, "disappointed": -1.9,
	"lost": -1.3, "damn": -1.7, "ugh": -1.8, "horrible": -2.5, "broken": -1.8, "late": -0.8,
}

// emojiValence scores common emoji clusters
var emojiValence = map[string]float64{
	"😂": 2.0, "🤣": 2.0, "😊": 2.2, "😍": 2.8, "\u2764": 2.9, "👍": 1.8, "🎉": 2.4,
	"😁": 2.2, "😄": 2.2, "🙏": 1.5, "😘": 2.5, "🥰": 2.8, "💯": 1.8, "🔥": 1.5,
	"😢": -2.1, "😭": -2.0, "😡": -2.6, "😠": -2.4, "👎": -1.8, "💔": -2.5, "😞": -2.0, "😔": -1.6,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "dont": true, "don't": true, "isnt": true, "isn't": true,
	"cant": true, "can't": true, "wont": true, "won't": true, "didnt": true, "didn't": true,
}

// SentimentLabel is the polarity bucket of a compound score
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// SentimentScore returns a compound polarity in (-1, 1) for a message body
func SentimentScore(body string) float64 {
	sum := 0.0
	negate := false
	for _, tok := range strings.FieldsFunc(strings.ToLower(body), func(r rune) bool {
		return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '\'')
	}) {
		if negators[tok] {
			negate = true
			continue
		}
		if v, ok := sentimentLexicon[tok]; ok {
			if negate {
				v = -0.74 * v
			}
			sum += v
		}
		negate = false
	}
	if strings.ContainsRune(body, '!') && sum != 0 {
		sum += math.Copysign(0.3, sum)
	}
	for _, e := range ExtractEmojis(body) {
		sum += emojiValence[strings.TrimSuffix(e, "\ufe0f")]
	}
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+sentimentAlpha)
}

// ClassifySentiment buckets a compound score
func ClassifySentiment(compound float64) SentimentLabel {
	switch {
	case compound >= sentimentThreshold:
		return SentimentPositive
	case compound <= -sentimentThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
