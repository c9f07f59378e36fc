package internal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregate(t *testing.T, opts AggregateOptions, records []MessageRecord) *Statistics {
	t.Helper()
	stats, err := NewAggregator(opts).Aggregate(context.Background(), records)
	require.NoError(t, err)
	return stats
}

func TestAggregator_Counts(t *testing.T) {
	records := CreateTestRecords(
		"Ahmed: hi there 😊",
		"Sara: hello friend?",
		"Ahmed: great website https://example.com",
		"Sara: <Media omitted>",
	)
	opts := DefaultAggregateOptions()
	opts.Workers = 3
	stats := aggregate(t, opts, records)

	g := stats.Global
	assert.Equal(t, 4, g.TotalMessages)
	assert.Equal(t, 2, g.Participants)
	assert.Equal(t, 1, g.Questions)
	assert.Equal(t, 1, g.MediaMessages)
	assert.Equal(t, 1, g.URLMessages)
	assert.Equal(t, 1, g.TotalEmojis)
	assert.Equal(t, testEpoch, g.FirstMessage)
	assert.Equal(t, testEpoch.Add(3*time.Minute), g.LastMessage)

	require.Contains(t, stats.Users, "Ahmed")
	ahmed := stats.Users["Ahmed"]
	assert.Equal(t, 2, ahmed.Messages)
	assert.Equal(t, 50.0, ahmed.MessageShare)
	assert.Equal(t, 10, ahmed.MostActiveHour)
	assert.Equal(t, "Friday", ahmed.MostActiveDay)
	assert.Equal(t, []TermCount{{Term: "😊", Count: 1}}, ahmed.TopEmojis)
	assert.Equal(t, 1, ahmed.ResponseTime.Count)

	sara := stats.Users["Sara"]
	assert.Equal(t, ResponseTimeSummary{Count: 2, Mean: 1, Median: 1, Min: 1, Max: 1}, sara.ResponseTime)

	assert.Equal(t, 4, stats.Temporal.Hourly[10])
	assert.Equal(t, 10, stats.Temporal.PeakHour)
	assert.Equal(t, "Friday", stats.Temporal.PeakDay)
	assert.Equal(t, map[TimePeriod]int{PeriodMorning: 4}, stats.Temporal.TimePeriods)
	assert.Equal(t, map[string]int{"2025-08": 4}, stats.Temporal.Monthly)
	assert.Equal(t, 4, stats.Temporal.Heatmap[time.Friday][10])

	assert.Equal(t, []TermCount{{Term: "😊", Count: 1}}, stats.Emoji.Top)
	assert.False(t, stats.Emoji.Sampled)
	assert.Equal(t, 4, stats.Emoji.SampleSize)

	assert.Equal(t, ConversationFlow{
		Conversations:              1,
		Initiators:                 map[string]int{"Ahmed": 1},
		AvgMessagesPerConversation: 4,
		LongestConversation:        4,
	}, stats.Conversation)

	var words []string
	for _, w := range stats.TopWords {
		words = append(words, w.Term)
	}
	assert.ElementsMatch(t, []string{"hello", "friend", "great", "website"}, words)
	assert.Equal(t, 3, stats.Sentiment.Positive+stats.Sentiment.Neutral+stats.Sentiment.Negative, "media is not scored")
}

func TestAggregator_WorkerCountDoesNotChangeResult(t *testing.T) {
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, fmt.Sprintf("User%d: message number %d 🎉 great?", i%7, i))
	}
	records := CreateTestRecords(lines...)

	base := DefaultAggregateOptions()
	base.Workers = 1
	want := aggregate(t, base, records)

	for _, workers := range []int{2, 3, 8, 64} {
		opts := DefaultAggregateOptions()
		opts.Workers = workers
		assert.Equal(t, want, aggregate(t, opts, records), "workers=%d", workers)
	}
}

func TestAggregator_ConversationGap(t *testing.T) {
	records := []MessageRecord{
		NewTestRecord("A", "one", testEpoch),
		NewTestRecord("B", "two", testEpoch.Add(10*time.Minute)),
		NewTestRecord("B", "three", testEpoch.Add(3*time.Hour)),
		NewTestRecord("A", "four", testEpoch.Add(3*time.Hour+time.Minute)),
		NewTestRecord("A", "five", testEpoch.Add(3*time.Hour+2*time.Minute)),
	}

	stats := aggregate(t, DefaultAggregateOptions(), records)
	assert.Equal(t, 2, stats.Conversation.Conversations)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, stats.Conversation.Initiators)
	assert.Equal(t, 3, stats.Conversation.LongestConversation)
	assert.Equal(t, 2.5, stats.Conversation.AvgMessagesPerConversation)
}

func TestAggregator_AnomalyDays(t *testing.T) {
	var records []MessageRecord
	for d := 0; d < 9; d++ {
		records = append(records, NewTestRecord("A", "daily", testEpoch.AddDate(0, 0, d)))
	}
	busy := testEpoch.AddDate(0, 0, 9)
	for i := 0; i < 30; i++ {
		records = append(records, NewTestRecord("B", "busy", busy.Add(time.Duration(i)*time.Minute)))
	}

	stats := aggregate(t, DefaultAggregateOptions(), records)
	assert.Equal(t, 10, stats.Activity.ActiveDays)
	assert.Equal(t, 3.9, stats.Activity.DailyMean)
	assert.Equal(t, DayCount{Date: "2025-08-10", Count: 30}, stats.Activity.BusiestDay)
	assert.Equal(t, []DayCount{{Date: "2025-08-10", Count: 30}}, stats.Activity.AnomalyDays)
}

func TestAggregator_SampledHeavyPass(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf("S%d: thanks 👍 %d", i%2, i))
	}
	opts := DefaultAggregateOptions()
	opts.Sampling = SamplingConfig{Threshold: 10, Size: 5, Seed: 1}

	stats := aggregate(t, opts, CreateTestRecords(lines...))
	assert.Equal(t, 40, stats.Global.TotalMessages, "counts always use every record")
	assert.Equal(t, 40, stats.Emoji.Total)
	assert.True(t, stats.Emoji.Sampled)
	assert.Equal(t, 5, stats.Emoji.SampleSize)
	assert.Equal(t, []TermCount{{Term: "👍", Count: 5}}, stats.Emoji.Top)
	assert.True(t, stats.Sentiment.Sampled)
	assert.Equal(t, 5, stats.Sentiment.Positive)
}

func TestAggregator_Reactions(t *testing.T) {
	records := CreateTestRecords("Dana: lunch?", "Lee: sure")
	records[0].Reactions = []Reaction{{Reactor: "Lee", Emoji: "👍"}, {Reactor: "Kim", Emoji: "👍"}}
	records[1].Reactions = []Reaction{{Reactor: "Dana", Emoji: "❤"}}

	stats := aggregate(t, DefaultAggregateOptions(), records)
	assert.Equal(t, 3, stats.Reactions.Total)
	assert.Equal(t, map[string]int{"Lee": 1, "Kim": 1, "Dana": 1}, stats.Reactions.Given)
	assert.Equal(t, map[string]int{"Dana": 2, "Lee": 1}, stats.Reactions.Received)
	assert.Equal(t, []TermCount{{Term: "👍", Count: 2}, {Term: "❤", Count: 1}}, stats.Reactions.TopEmojis)
	assert.Equal(t, 2, stats.Users["Dana"].ReactionsReceived)
	assert.Equal(t, 1, stats.Users["Dana"].ReactionsGiven)
}

func TestAggregateFeatures_Empty(t *testing.T) {
	stats := AggregateFeatures(nil)
	require.NotNil(t, stats)
	assert.Zero(t, stats.Global.TotalMessages)
	assert.NotNil(t, stats.Users)
	assert.Empty(t, stats.Users)
	assert.Empty(t, stats.TopWords)
}

func TestTopTerms(t *testing.T) {
	counts := map[string]int{"b": 2, "a": 2, "c": 3, "d": 1}
	assert.Equal(t, []TermCount{{"c", 3}, {"a", 2}}, topTerms(counts, 2))
	assert.Len(t, topTerms(counts, 10), 4)
	assert.Empty(t, topTerms(nil, 3))
}

func TestTokenizeWords(t *testing.T) {
	got := tokenizeWords("Check the NEW website https://example.com now, it's GREAT!!")
	assert.Equal(t, []string{"check", "website", "great"}, got)
}
