package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoRecord_Normalized_DerivesURLs(t *testing.T) {
	v := VideoRecord{VideoID: "abc12345678"}.Normalized()

	assert.Equal(t, "https://www.youtube.com/watch?v=abc12345678", v.URL)
	assert.Equal(t, "https://i.ytimg.com/vi/abc12345678/hqdefault.jpg", v.ThumbnailURL)
}

func TestVideoRecord_Normalized_Idempotent(t *testing.T) {
	v := VideoRecord{
		VideoID: "abc12345678",
		Title:   "Rain Song",
		Tags:    []string{"rain"},
	}.Normalized()

	again := v.Normalized()
	assert.Equal(t, v, again)
}

func TestVideoRecord_Normalized_KeepsExplicitURLs(t *testing.T) {
	v := VideoRecord{
		VideoID:      "abc12345678",
		URL:          "https://example.com/custom",
		ThumbnailURL: "https://example.com/thumb.jpg",
	}.Normalized()

	assert.Equal(t, "https://example.com/custom", v.URL)
	assert.Equal(t, "https://example.com/thumb.jpg", v.ThumbnailURL)
}

func TestVideoRecord_PublishedTime(t *testing.T) {
	v := VideoRecord{PublishedAt: "2024-01-01T00:00:00Z"}
	require.False(t, v.PublishedTime().IsZero())
	assert.Equal(t, 2024, v.PublishedTime().Year())

	assert.True(t, VideoRecord{}.PublishedTime().IsZero())
	assert.True(t, VideoRecord{PublishedAt: "not-a-date"}.PublishedTime().IsZero())
}

func TestDedupVideos(t *testing.T) {
	videos := []VideoRecord{
		{VideoID: "a", Title: "first"},
		{VideoID: "", Title: "dropped"},
		{VideoID: "b", Title: "second"},
		{VideoID: "a", Title: "duplicate"},
	}

	out := DedupVideos(videos)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Title)
	assert.Equal(t, "second", out[1].Title)
}

func TestSortByPublished(t *testing.T) {
	videos := []VideoRecord{
		{VideoID: "old", PublishedAt: "2020-05-01T00:00:00Z"},
		{VideoID: "new", PublishedAt: "2024-01-01T00:00:00Z"},
		{VideoID: "undated"},
	}

	newest := SortByPublished(videos, true)
	require.Len(t, newest, 3)
	assert.Equal(t, "new", newest[0].VideoID)
	assert.Equal(t, "old", newest[1].VideoID)
	assert.Equal(t, "undated", newest[2].VideoID)

	oldest := SortByPublished(videos, false)
	assert.Equal(t, "undated", oldest[0].VideoID)
	assert.Equal(t, "old", oldest[1].VideoID)
	assert.Equal(t, "new", oldest[2].VideoID)

	// Input order untouched.
	assert.Equal(t, "old", videos[0].VideoID)
}
