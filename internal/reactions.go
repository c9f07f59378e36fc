package internal

import (
	"regexp"
	"strings"
)

var (
	// reactionSuffix is the trailing annotation: "text {reactions: Sara 👍, Omar ❤️}"
	reactionSuffix = regexp.MustCompile(`\s*\{reactions:\s*([^{}]*)\}\s*$`)
	// reactionEvent is a standalone line: `Sara reacted 👍 to "original text"`
	reactionEvent = regexp.MustCompile(`^(.+?)\sreacted\s(.+?)\sto\s"(.+)"$`)
	// selfReactionEvent is the same event carried in a header body: `reacted 👍 to "text"`
	selfReactionEvent = regexp.MustCompile(`^reacted\s(.+?)\sto\s"(.+)"$`)
)

// reactionEventMatch is a reaction line waiting to be attached to its target message
type reactionEventMatch struct {
	reaction Reaction
	quoted   string
}

// stripReactions removes a trailing reaction annotation and returns the parsed pairs
func stripReactions(body string) (string, []Reaction) {
	loc := reactionSuffix.FindStringSubmatchIndex(body)
	if loc == nil {
		return body, nil
	}

	list := body[loc[2]:loc[3]]
	var reactions []Reaction
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		i := strings.LastIndexAny(entry, " \t")
		if i <= 0 {
			continue
		}
		reactor := CleanSender(entry[:i])
		emoji := strings.TrimSpace(entry[i+1:])
		if reactor == "" || emoji == "" {
			continue
		}
		reactions = append(reactions, Reaction{Reactor: reactor, Emoji: emoji})
	}
	if len(reactions) == 0 {
		return body, nil
	}
	return strings.TrimRightFunc(body[:loc[0]], isTrailingSpace), reactions
}

// matchReactionEvent recognizes a reaction event from a sender-less line or a sender's body
func matchReactionEvent(sender, body string) (reactionEventMatch, bool) {
	if sender == "" {
		m := reactionEvent.FindStringSubmatch(body)
		if m == nil {
			return reactionEventMatch{}, false
		}
		return reactionEventMatch{
			reaction: Reaction{Reactor: CleanSender(m[1]), Emoji: strings.TrimSpace(m[2])},
			quoted:   trimQuote(m[3]),
		}, true
	}

	m := selfReactionEvent.FindStringSubmatch(body)
	if m == nil {
		return reactionEventMatch{}, false
	}
	return reactionEventMatch{
		reaction: Reaction{Reactor: CleanSender(sender), Emoji: strings.TrimSpace(m[1])},
		quoted:   trimQuote(m[2]),
	}, true
}

func trimQuote(q string) string {
	q = strings.TrimSpace(q)
	q = strings.TrimSuffix(q, "…")
	q = strings.TrimSuffix(q, "...")
	return q
}

func isTrailingSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
