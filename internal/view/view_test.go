package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugu/internal/dbsql"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   string
		want string
	}{
		{"30 seconds", now.Add(-30 * time.Second).Format(time.RFC3339), "Just now"},
		{"5 minutes", now.Add(-5 * time.Minute).Format(time.RFC3339), "5m ago"},
		{"59 minutes", now.Add(-59*time.Minute - 59*time.Second).Format(time.RFC3339), "59m ago"},
		{"2 hours", now.Add(-2 * time.Hour).Format(time.RFC3339), "2h ago"},
		{"3 days", now.Add(-3 * 24 * time.Hour).Format(time.RFC3339), "3d ago"},
		{"2 weeks", now.Add(-15 * 24 * time.Hour).Format(time.RFC3339), "2w ago"},
		{"future", now.Add(time.Hour).Format(time.RFC3339), "Just now"},
		{"date only", "2024-06-14", "1d ago"},
		{"invalid", "not-a-date", "Recently"},
		{"empty", "", "Recently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.ts, now))
		})
	}
}

func TestFormatTime_Zero(t *testing.T) {
	assert.Equal(t, Recently, FormatTime(time.Time{}, now))
}

func TestToConversationSummary(t *testing.T) {
	conv := &dbsql.Conversation{
		ID:        "c-1",
		User1ID:   "me",
		User2ID:   "amara",
		CreatedAt: now.Add(-48 * time.Hour),
		User1:     &dbsql.User{ID: "me", FullName: "Me"},
		User2:     &dbsql.User{ID: "amara", FullName: "Amara Obi", ProfileImage: "https://cdn/amara.png"},
		Messages: []dbsql.Message{
			{ID: "m1", SenderID: "amara", Content: "hello", CreatedAt: now.Add(-3 * time.Hour)},
			{ID: "m2", SenderID: "me", Content: "hi", CreatedAt: now.Add(-2 * time.Hour)},
			{ID: "m3", SenderID: "amara", Content: "seedlings are up", CreatedAt: now.Add(-5 * time.Minute)},
		},
	}

	got := ToConversationSummary(conv, "me", now)
	assert.Equal(t, ConversationSummary{
		ID:              "c-1",
		OtherUserID:     "amara",
		UserName:        "Amara Obi",
		UserAvatar:      "https://cdn/amara.png",
		LastMessage:     "seedlings are up",
		LastMessageTime: "5m ago",
		UnreadCount:     2,
		CurrentUserID:   "me",
	}, got)

	// the same conversation seen from the other side
	other := ToConversationSummary(conv, "amara", now)
	assert.Equal(t, "me", other.OtherUserID)
	assert.Equal(t, "Me", other.UserName)
	assert.Equal(t, PlaceholderAvatar, other.UserAvatar)
	assert.Equal(t, 1, other.UnreadCount)
}

func TestToConversationSummary_Defaults(t *testing.T) {
	conv := &dbsql.Conversation{ID: "c-2", User1ID: "x", User2ID: "me", CreatedAt: now.Add(-2 * time.Hour)}

	got := ToConversationSummary(conv, "me", now)
	assert.Equal(t, "x", got.OtherUserID)
	assert.Equal(t, UnknownUserName, got.UserName)
	assert.Equal(t, PlaceholderAvatar, got.UserAvatar)
	assert.Equal(t, NoMessagesYet, got.LastMessage)
	assert.Equal(t, "2h ago", got.LastMessageTime)
	assert.Zero(t, got.UnreadCount)
}

func TestToConversationSummary_TiesKeepFirst(t *testing.T) {
	at := now.Add(-10 * time.Minute)
	conv := &dbsql.Conversation{
		ID: "c-3", User1ID: "me", User2ID: "o",
		Messages: []dbsql.Message{
			{ID: "a", SenderID: "o", Content: "first", CreatedAt: at},
			{ID: "b", SenderID: "o", Content: "second", CreatedAt: at},
		},
	}
	assert.Equal(t, "first", ToConversationSummary(conv, "me", now).LastMessage)
}

func TestToActivityView(t *testing.T) {
	due := now.Add(24 * time.Hour)
	a := &dbsql.Activity{ID: "a-1", Category: "watering", Title: "Maize", DueDate: &due, IsCompleted: true}

	v := ToActivityView(a)
	assert.Equal(t, "watering", v.Type)
	assert.Equal(t, "Maize", v.Crop)
	assert.Equal(t, &due, v.Date)
	assert.Equal(t, DefaultDuration, v.Duration)
	assert.Equal(t, StatusDone, v.Status)
	assert.True(t, v.Done())

	a.IsCompleted = false
	a.Duration = intPtr(45)
	v = ToActivityView(a)
	assert.Equal(t, 45, v.Duration)
	assert.Equal(t, StatusNotDone, v.Status)
}

func TestCalculateDaysToHarvest(t *testing.T) {
	assert.Equal(t, 10, CalculateDaysToHarvest(now.Add(10*24*time.Hour), now))
	assert.Equal(t, 1, CalculateDaysToHarvest(now.Add(time.Hour), now))
	assert.Equal(t, -2, CalculateDaysToHarvest(now.Add(-2*24*time.Hour), now))
}

func TestCalculateGrowthPercentage(t *testing.T) {
	planted := now.Add(-50 * 24 * time.Hour)
	harvest := now.Add(50 * 24 * time.Hour)

	assert.Equal(t, 50, CalculateGrowthPercentage(planted, harvest, nil, now))
	assert.Equal(t, 70, CalculateGrowthPercentage(planted, harvest, intPtr(70), now))
	assert.Equal(t, MaxDerivedGrowth, CalculateGrowthPercentage(planted, now.Add(-24*time.Hour), nil, now))
	assert.Zero(t, CalculateGrowthPercentage(now.Add(24*time.Hour), now.Add(48*time.Hour), nil, now))
	assert.Zero(t, CalculateGrowthPercentage(planted, planted, nil, now))
}

func TestCalculateProgress(t *testing.T) {
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	assert.InDelta(t, 50.0, CalculateProgress(start, end, now), 0.001)
	assert.Equal(t, 0.0, CalculateProgress(start, end, start.Add(-time.Hour)))
	assert.Equal(t, 100.0, CalculateProgress(start, end, end.Add(time.Hour)))
	assert.Equal(t, 100.0, CalculateProgress(now, now, now))
}

func TestToCropView(t *testing.T) {
	c := &dbsql.UserCrop{
		UserCropID:          "crop-1",
		PlantedDate:         timePtr(now.Add(-20 * 24 * time.Hour)),
		ExpectedHarvestDate: timePtr(now.Add(20 * 24 * time.Hour)),
	}
	v := ToCropView(c, now)
	assert.Equal(t, 50, v.Growth)
	assert.Equal(t, 20, v.DaysRemaining)

	c.GrowthPercentage = intPtr(80)
	c.DaysToHarvest = intPtr(3)
	v = ToCropView(c, now)
	assert.Equal(t, 80, v.Growth)
	assert.Equal(t, 3, v.DaysRemaining)
}

func TestMessageLog_DedupByID(t *testing.T) {
	m1 := &dbsql.Message{ID: "m1", CreatedAt: now.Add(-2 * time.Minute)}
	m2 := &dbsql.Message{ID: "m2", CreatedAt: now.Add(-time.Minute)}
	m3 := &dbsql.Message{ID: "m3", CreatedAt: now}

	log := NewMessageLog(m1, m2)
	added := log.Add(m2, m3, nil, &dbsql.Message{})
	require.Len(t, added, 1)
	assert.Equal(t, "m3", added[0].ID)
	assert.Equal(t, 3, log.Len())

	log.Remove("m2")
	ids := []string{}
	for _, m := range log.Messages() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"m1", "m3"}, ids)
}

func TestMergeMessages(t *testing.T) {
	same := now.Add(-time.Minute)
	fetched := []*dbsql.Message{
		{ID: "b", CreatedAt: same},
		{ID: "c", CreatedAt: now},
	}
	pushed := []*dbsql.Message{
		{ID: "c", CreatedAt: now},
		{ID: "a", CreatedAt: same},
	}

	merged := MergeMessages(fetched, pushed)
	require.Len(t, merged, 3)
	assert.Equal(t, "a", merged[0].ID)
	assert.Equal(t, "b", merged[1].ID)
	assert.Equal(t, "c", merged[2].ID)
}
