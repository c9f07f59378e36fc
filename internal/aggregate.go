package internal

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Statistics is the per-user and global aggregate of a record stream
type Statistics struct {
	Global       GlobalStats           `json:"global" yaml:"global"`
	Users        map[string]*UserStats `json:"users" yaml:"users"`
	Temporal     TemporalStats         `json:"temporal" yaml:"temporal"`
	Emoji        EmojiStats            `json:"emoji" yaml:"emoji"`
	TopWords     []TermCount           `json:"top_words" yaml:"top_words"`
	Reactions    ReactionStats         `json:"reactions" yaml:"reactions"`
	Conversation ConversationFlow      `json:"conversation" yaml:"conversation"`
	Activity     ActivityPatterns      `json:"activity" yaml:"activity"`
	Sentiment    SentimentSummary      `json:"sentiment" yaml:"sentiment"`
}

// GlobalStats sums features over all records
type GlobalStats struct {
	TotalMessages      int       `json:"total_messages" yaml:"total_messages"`
	TotalWords         int       `json:"total_words" yaml:"total_words"`
	TotalChars         int       `json:"total_chars" yaml:"total_chars"`
	TotalEmojis        int       `json:"total_emojis" yaml:"total_emojis"`
	MediaMessages      int       `json:"media_messages" yaml:"media_messages"`
	URLMessages        int       `json:"url_messages" yaml:"url_messages"`
	Questions          int       `json:"questions" yaml:"questions"`
	Participants       int       `json:"participants" yaml:"participants"`
	FirstMessage       time.Time `json:"first_message" yaml:"first_message"`
	LastMessage        time.Time `json:"last_message" yaml:"last_message"`
	AvgWordsPerMessage float64   `json:"avg_words_per_message" yaml:"avg_words_per_message"`
	AvgCharsPerMessage float64   `json:"avg_chars_per_message" yaml:"avg_chars_per_message"`
}

// UserStats sums features for one sender
type UserStats struct {
	Messages          int                 `json:"messages" yaml:"messages"`
	Words             int                 `json:"words" yaml:"words"`
	Chars             int                 `json:"chars" yaml:"chars"`
	Emojis            int                 `json:"emojis" yaml:"emojis"`
	Media             int                 `json:"media" yaml:"media"`
	URLs              int                 `json:"urls" yaml:"urls"`
	Questions         int                 `json:"questions" yaml:"questions"`
	AvgWords          float64             `json:"avg_words" yaml:"avg_words"`
	MessageShare      float64             `json:"message_share" yaml:"message_share"`
	MostActiveHour    int                 `json:"most_active_hour" yaml:"most_active_hour"`
	MostActiveDay     string              `json:"most_active_day" yaml:"most_active_day"`
	Hourly            [24]int             `json:"hourly" yaml:"hourly"`
	TopEmojis         []TermCount         `json:"top_emojis" yaml:"top_emojis"`
	ReactionsGiven    int                 `json:"reactions_given" yaml:"reactions_given"`
	ReactionsReceived int                 `json:"reactions_received" yaml:"reactions_received"`
	ResponseTime      ResponseTimeSummary `json:"response_time" yaml:"response_time"`
	Sentiment         float64             `json:"sentiment" yaml:"sentiment"`

	weekdays [7]int
}

// TemporalStats holds time distributions; weekday indexes start at Sunday
type TemporalStats struct {
	Hourly      [24]int            `json:"hourly" yaml:"hourly"`
	Daily       map[string]int     `json:"daily" yaml:"daily"`
	TimePeriods map[TimePeriod]int `json:"time_periods" yaml:"time_periods"`
	Monthly     map[string]int     `json:"monthly" yaml:"monthly"`
	Heatmap     [7][24]int         `json:"heatmap" yaml:"heatmap"`
	PeakHour    int                `json:"peak_hour" yaml:"peak_hour"`
	PeakDay     string             `json:"peak_day" yaml:"peak_day"`
}

// TermCount is a ranked token or emoji
type TermCount struct {
	Term  string `json:"term" yaml:"term"`
	Count int    `json:"count" yaml:"count"`
}

// EmojiStats describes emoji usage; Top is computed from a sample when Sampled is set
type EmojiStats struct {
	Total      int         `json:"total" yaml:"total"`
	Unique     int         `json:"unique" yaml:"unique"`
	Top        []TermCount `json:"top" yaml:"top"`
	Sampled    bool        `json:"sampled" yaml:"sampled"`
	SampleSize int         `json:"sample_size" yaml:"sample_size"`
}

// ReactionStats counts reaction annotations
type ReactionStats struct {
	Total     int            `json:"total" yaml:"total"`
	Given     map[string]int `json:"given" yaml:"given"`
	Received  map[string]int `json:"received" yaml:"received"`
	TopEmojis []TermCount    `json:"top_emojis" yaml:"top_emojis"`
}

// ConversationFlow splits the stream into conversations at long gaps
type ConversationFlow struct {
	Conversations              int            `json:"conversations" yaml:"conversations"`
	Initiators                 map[string]int `json:"initiators" yaml:"initiators"`
	AvgMessagesPerConversation float64        `json:"avg_messages_per_conversation" yaml:"avg_messages_per_conversation"`
	LongestConversation        int            `json:"longest_conversation" yaml:"longest_conversation"`
}

// DayCount is the number of messages on one calendar day
type DayCount struct {
	Date  string `json:"date" yaml:"date"`
	Count int    `json:"count" yaml:"count"`
}

// ActivityPatterns describes day-level activity
type ActivityPatterns struct {
	ActiveDays  int        `json:"active_days" yaml:"active_days"`
	DailyMean   float64    `json:"daily_mean" yaml:"daily_mean"`
	DailyStdDev float64    `json:"daily_std_dev" yaml:"daily_std_dev"`
	BusiestDay  DayCount   `json:"busiest_day" yaml:"busiest_day"`
	AnomalyDays []DayCount `json:"anomaly_days" yaml:"anomaly_days"`
}

// SentimentSummary aggregates compound scores; flagged when computed from a sample
type SentimentSummary struct {
	Positive   int     `json:"positive" yaml:"positive"`
	Neutral    int     `json:"neutral" yaml:"neutral"`
	Negative   int     `json:"negative" yaml:"negative"`
	Mean       float64 `json:"mean_compound" yaml:"mean_compound"`
	Sampled    bool    `json:"sampled" yaml:"sampled"`
	SampleSize int     `json:"sample_size" yaml:"sample_size"`
}

// AggregateOptions tunes the aggregator
type AggregateOptions struct {
	Workers         int
	Sampling        SamplingConfig
	TopN            int
	ConversationGap time.Duration
}

// DefaultAggregateOptions returns the production defaults
func DefaultAggregateOptions() AggregateOptions {
	return AggregateOptions{
		Workers:         DefaultWorkers(),
		Sampling:        DefaultSampling(),
		TopN:            10,
		ConversationGap: 60 * time.Minute,
	}
}

// Aggregator computes Statistics using a fixed worker pool over record chunks
type Aggregator struct {
	opts AggregateOptions
}

// NewAggregator creates an aggregator
func NewAggregator(opts AggregateOptions) *Aggregator {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.ConversationGap <= 0 {
		opts.ConversationGap = 60 * time.Minute
	}
	return &Aggregator{opts: opts}
}

// AggregateFeatures computes per-user and global statistics with default options
func AggregateFeatures(records []MessageRecord) *Statistics {
	stats, err := NewAggregator(DefaultAggregateOptions()).Aggregate(context.Background(), records)
	if err != nil {
		LogWarn("Aggregation interrupted: %v", err)
		return newStatistics()
	}
	return stats
}

// Aggregate runs the count pass and the sampled heavy pass on the pool,
// then the order-dependent passes on the sorted stream.
func (a *Aggregator) Aggregate(ctx context.Context, records []MessageRecord) (*Statistics, error) {
	stats := newStatistics()
	if len(records) == 0 {
		return stats, nil
	}

	counts, err := a.countPass(ctx, records)
	if err != nil {
		return nil, err
	}
	heavy, sampled, size, err := a.heavyPass(ctx, records)
	if err != nil {
		return nil, err
	}

	a.fillCounts(stats, counts)
	a.fillHeavy(stats, heavy, sampled, size)

	sorted := SortChronological(records)
	a.fillResponseTimes(stats, sorted)
	stats.Conversation = conversationFlow(sorted, a.opts.ConversationGap)
	stats.Activity = activityPatterns(counts.days)
	stats.Global.FirstMessage = sorted[0].Timestamp
	stats.Global.LastMessage = sorted[len(sorted)-1].Timestamp
	return stats, nil
}

func newStatistics() *Statistics {
	return &Statistics{
		Users: make(map[string]*UserStats),
		Temporal: TemporalStats{
			Daily:       make(map[string]int),
			TimePeriods: make(map[TimePeriod]int),
			Monthly:     make(map[string]int),
		},
		Reactions: ReactionStats{
			Given:    make(map[string]int),
			Received: make(map[string]int),
		},
		Conversation: ConversationFlow{Initiators: make(map[string]int)},
	}
}

// countPartial is the mergeable result of one chunk's count pass
type countPartial struct {
	global    GlobalStats
	users     map[string]*UserStats
	hourly    [24]int
	heatmap   [7][24]int
	periods   map[TimePeriod]int
	months    map[string]int
	days      map[string]int
	words     map[string]int
	given     map[string]int
	received  map[string]int
	reactions map[string]int
}

func newCountPartial() *countPartial {
	return &countPartial{
		users:     make(map[string]*UserStats),
		periods:   make(map[TimePeriod]int),
		months:    make(map[string]int),
		days:      make(map[string]int),
		words:     make(map[string]int),
		given:     make(map[string]int),
		received:  make(map[string]int),
		reactions: make(map[string]int),
	}
}

func (a *Aggregator) countPass(ctx context.Context, records []MessageRecord) (*countPartial, error) {
	bounds := chunkBounds(len(records), a.opts.Workers)
	parts, err := RunPool(ctx, a.opts.Workers, len(bounds), func(_ context.Context, i int) (*countPartial, error) {
		return countChunk(records[bounds[i][0]:bounds[i][1]]), nil
	})
	if err != nil {
		return nil, err
	}
	merged := newCountPartial()
	for _, p := range parts {
		merged.merge(p)
	}
	return merged, nil
}

func countChunk(chunk []MessageRecord) *countPartial {
	p := newCountPartial()
	for _, r := range chunk {
		u := p.users[r.Sender]
		if u == nil {
			u = &UserStats{}
			p.users[r.Sender] = u
		}
		p.global.TotalMessages++
		p.global.TotalWords += r.WordCount
		p.global.TotalChars += r.CharCount
		p.global.TotalEmojis += r.EmojiCount
		u.Messages++
		u.Words += r.WordCount
		u.Chars += r.CharCount
		u.Emojis += r.EmojiCount
		if r.IsMedia {
			p.global.MediaMessages++
			u.Media++
		}
		if r.ContainsURL {
			p.global.URLMessages++
			u.URLs++
		}
		if r.IsQuestion {
			p.global.Questions++
			u.Questions++
		}

		wd := int(r.Timestamp.Weekday())
		p.hourly[r.Hour]++
		p.heatmap[wd][r.Hour]++
		u.Hourly[r.Hour]++
		u.weekdays[wd]++
		p.periods[r.TimePeriod]++
		p.months[r.Timestamp.Format("2006-01")]++
		p.days[r.Timestamp.Format("2006-01-02")]++

		for _, rc := range r.Reactions {
			p.given[rc.Reactor]++
			p.received[r.Sender]++
			p.reactions[rc.Emoji]++
		}

		if !r.IsMedia {
			for _, w := range tokenizeWords(r.Body) {
				p.words[w]++
			}
		}
	}
	return p
}

func (p *countPartial) merge(o *countPartial) {
	p.global.TotalMessages += o.global.TotalMessages
	p.global.TotalWords += o.global.TotalWords
	p.global.TotalChars += o.global.TotalChars
	p.global.TotalEmojis += o.global.TotalEmojis
	p.global.MediaMessages += o.global.MediaMessages
	p.global.URLMessages += o.global.URLMessages
	p.global.Questions += o.global.Questions

	for name, ou := range o.users {
		u := p.users[name]
		if u == nil {
			u = &UserStats{}
			p.users[name] = u
		}
		u.Messages += ou.Messages
		u.Words += ou.Words
		u.Chars += ou.Chars
		u.Emojis += ou.Emojis
		u.Media += ou.Media
		u.URLs += ou.URLs
		u.Questions += ou.Questions
		for h := range u.Hourly {
			u.Hourly[h] += ou.Hourly[h]
		}
		for d := range u.weekdays {
			u.weekdays[d] += ou.weekdays[d]
		}
	}
	for h := range p.hourly {
		p.hourly[h] += o.hourly[h]
	}
	for d := range p.heatmap {
		for h := range p.heatmap[d] {
			p.heatmap[d][h] += o.heatmap[d][h]
		}
	}
	mergeCounts(p.periods, o.periods)
	mergeCounts(p.months, o.months)
	mergeCounts(p.days, o.days)
	mergeCounts(p.words, o.words)
	mergeCounts(p.given, o.given)
	mergeCounts(p.received, o.received)
	mergeCounts(p.reactions, o.reactions)
}

func mergeCounts[K comparable](dst, src map[K]int) {
	for k, v := range src {
		dst[k] += v
	}
}

func (a *Aggregator) fillCounts(stats *Statistics, c *countPartial) {
	stats.Global = c.global
	stats.Global.Participants = len(c.users)
	if n := float64(c.global.TotalMessages); n > 0 {
		stats.Global.AvgWordsPerMessage = round2(float64(c.global.TotalWords) / n)
		stats.Global.AvgCharsPerMessage = round2(float64(c.global.TotalChars) / n)
	}

	for name, u := range c.users {
		u.AvgWords = round2(float64(u.Words) / float64(u.Messages))
		u.MessageShare = round2(100 * float64(u.Messages) / float64(c.global.TotalMessages))
		u.MostActiveHour = argmax(u.Hourly[:])
		u.MostActiveDay = time.Weekday(argmax(u.weekdays[:])).String()
		u.ReactionsGiven = c.given[name]
		u.ReactionsReceived = c.received[name]
		stats.Users[name] = u
	}

	t := &stats.Temporal
	t.Hourly = c.hourly
	t.Heatmap = c.heatmap
	var weekdays [7]int
	for d := range c.heatmap {
		for h := range c.heatmap[d] {
			weekdays[d] += c.heatmap[d][h]
		}
	}
	for d, n := range weekdays {
		if n > 0 {
			t.Daily[time.Weekday(d).String()] = n
		}
	}
	t.TimePeriods = c.periods
	t.Monthly = c.months
	t.PeakHour = argmax(c.hourly[:])
	t.PeakDay = time.Weekday(argmax(weekdays[:])).String()

	stats.TopWords = topTerms(c.words, a.opts.TopN)

	for _, n := range c.given {
		stats.Reactions.Total += n
	}
	stats.Reactions.Given = c.given
	stats.Reactions.Received = c.received
	stats.Reactions.TopEmojis = topTerms(c.reactions, a.opts.TopN)
}

// heavyPartial is the mergeable result of emoji extraction and sentiment scoring
type heavyPartial struct {
	emojis     map[string]int
	userEmojis map[string]map[string]int
	sentiment  SentimentSummary
	compound   float64
	userScore  map[string]float64
	userCount  map[string]int
}

func (a *Aggregator) heavyPass(ctx context.Context, records []MessageRecord) (*heavyPartial, bool, int, error) {
	sample, sampled := SampleRecords(records, a.opts.Sampling)
	if sampled {
		LogInfo("Sampling %d of %d records for emoji and sentiment analysis", len(sample), len(records))
	}

	bounds := chunkBounds(len(sample), a.opts.Workers)
	parts, err := RunPool(ctx, a.opts.Workers, len(bounds), func(_ context.Context, i int) (*heavyPartial, error) {
		return heavyChunk(sample[bounds[i][0]:bounds[i][1]]), nil
	})
	if err != nil {
		return nil, false, 0, err
	}

	merged := newHeavyPartial()
	for _, p := range parts {
		mergeCounts(merged.emojis, p.emojis)
		for name, m := range p.userEmojis {
			if merged.userEmojis[name] == nil {
				merged.userEmojis[name] = make(map[string]int)
			}
			mergeCounts(merged.userEmojis[name], m)
		}
		merged.sentiment.Positive += p.sentiment.Positive
		merged.sentiment.Neutral += p.sentiment.Neutral
		merged.sentiment.Negative += p.sentiment.Negative
		merged.compound += p.compound
		for name, v := range p.userScore {
			merged.userScore[name] += v
		}
		mergeCounts(merged.userCount, p.userCount)
	}
	return merged, sampled, len(sample), nil
}

func newHeavyPartial() *heavyPartial {
	return &heavyPartial{
		emojis:     make(map[string]int),
		userEmojis: make(map[string]map[string]int),
		userScore:  make(map[string]float64),
		userCount:  make(map[string]int),
	}
}

func heavyChunk(chunk []MessageRecord) *heavyPartial {
	p := newHeavyPartial()
	for _, r := range chunk {
		if r.EmojiCount > 0 {
			ue := p.userEmojis[r.Sender]
			if ue == nil {
				ue = make(map[string]int)
				p.userEmojis[r.Sender] = ue
			}
			for _, e := range ExtractEmojis(r.Body) {
				p.emojis[e]++
				ue[e]++
			}
		}
		if r.IsMedia {
			continue
		}
		score := SentimentScore(r.Body)
		switch ClassifySentiment(score) {
		case SentimentPositive:
			p.sentiment.Positive++
		case SentimentNegative:
			p.sentiment.Negative++
		default:
			p.sentiment.Neutral++
		}
		p.compound += score
		p.userScore[r.Sender] += score
		p.userCount[r.Sender]++
	}
	return p
}

func (a *Aggregator) fillHeavy(stats *Statistics, h *heavyPartial, sampled bool, size int) {
	stats.Emoji = EmojiStats{
		Total:      stats.Global.TotalEmojis,
		Unique:     len(h.emojis),
		Top:        topTerms(h.emojis, a.opts.TopN),
		Sampled:    sampled,
		SampleSize: size,
	}

	s := h.sentiment
	if scored := s.Positive + s.Neutral + s.Negative; scored > 0 {
		s.Mean = math.Round(h.compound/float64(scored)*1000) / 1000
	}
	s.Sampled = sampled
	s.SampleSize = size
	stats.Sentiment = s

	for name, u := range stats.Users {
		u.TopEmojis = topTerms(h.userEmojis[name], 5)
		if n := h.userCount[name]; n > 0 {
			u.Sentiment = math.Round(h.userScore[name]/float64(n)*1000) / 1000
		}
	}
}

func (a *Aggregator) fillResponseTimes(stats *Statistics, sorted []MessageRecord) {
	rt := ComputeResponseTimes(sorted)
	for name, u := range stats.Users {
		u.ResponseTime = SummarizeResponseTimes(rt.Samples[name])
		u.ResponseTime.Delayed = rt.Delayed[name]
	}
}

// conversationFlow starts a new conversation after a silence longer than gap
func conversationFlow(sorted []MessageRecord, gap time.Duration) ConversationFlow {
	flow := ConversationFlow{Initiators: make(map[string]int)}
	if len(sorted) == 0 {
		return flow
	}

	length := 0
	for i, r := range sorted {
		if i == 0 || r.Timestamp.Sub(sorted[i-1].Timestamp) > gap {
			flow.Conversations++
			flow.Initiators[r.Sender]++
			length = 0
		}
		length++
		if length > flow.LongestConversation {
			flow.LongestConversation = length
		}
	}
	flow.AvgMessagesPerConversation = round2(float64(len(sorted)) / float64(flow.Conversations))
	return flow
}

// activityPatterns flags days above mean + 2 standard deviations
func activityPatterns(days map[string]int) ActivityPatterns {
	ap := ActivityPatterns{ActiveDays: len(days), AnomalyDays: []DayCount{}}
	if len(days) == 0 {
		return ap
	}

	dates := make([]string, 0, len(days))
	sum := 0.0
	for d, n := range days {
		dates = append(dates, d)
		sum += float64(n)
	}
	sort.Strings(dates)

	mean := sum / float64(len(days))
	variance := 0.0
	for _, n := range days {
		variance += (float64(n) - mean) * (float64(n) - mean)
	}
	std := math.Sqrt(variance / float64(len(days)))

	ap.DailyMean = round2(mean)
	ap.DailyStdDev = round2(std)
	for _, d := range dates {
		n := days[d]
		if n > ap.BusiestDay.Count {
			ap.BusiestDay = DayCount{Date: d, Count: n}
		}
		if float64(n) > mean+2*std {
			ap.AnomalyDays = append(ap.AnomalyDays, DayCount{Date: d, Count: n})
		}
	}
	return ap
}

// topTerms ranks by count descending, then term ascending
func topTerms(counts map[string]int, n int) []TermCount {
	out := make([]TermCount, 0, len(counts))
	for term, c := range counts {
		out = append(out, TermCount{Term: term, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// argmax returns the first index of the largest value
func argmax(values []int) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

var stopwords = func() map[string]bool {
	words := strings.Fields(`the and for are but not you all any can had her was one our out day get has him his how
		man new now old see two way who boy did its let put say she too use that with have this will your from they
		know want been good much some time very when come here just like long make many over such take than them well
		were what yeah yes okay also then there their would could should about into only because really going
		omitted media message deleted null`)
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()

// tokenizeWords lower-cases letters-only tokens longer than two runes, minus stopwords and links
func tokenizeWords(body string) []string {
	body = urlPattern.ReplaceAllString(body, " ")
	var out []string
	for _, tok := range strings.FieldsFunc(strings.ToLower(body), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if utf8.RuneCountInString(tok) > 2 && !stopwords[tok] {
			out = append(out, tok)
		}
	}
	return out
}
