package gateway

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ytfinder/internal/domain"
)

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\[intro\] song \(live\)`, escapeMarkdown("[intro] song (live)"))
	assert.Equal(t, "plain title", escapeMarkdown("plain title"))
}

func TestFormatTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"en dash", "Artist – Song", "Artist – _Song_"},
		{"hyphen", "Artist - Song", "Artist - _Song_"},
		{"em dash", "Artist — Song", "Artist — _Song_"},
		{"no separator", "Just A Title", "Just A Title"},
		{"trailing separator only", "Artist - ", "Artist - "},
		{"escapes both halves", "A [x] - B (y)", `A \[x\] - _B \(y\)_`},
		{"first separator wins", "A – B - C", "A – _B - C_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTitle(tt.title))
		})
	}
}

func TestRenderListMarkdown_CapsThumbnailsAtTwo(t *testing.T) {
	items := []domain.VideoRecord{
		record("a1111111111", "First", "2024-03-01T00:00:00Z"),
		record("b1111111111", "Second", "2024-02-01T00:00:00Z"),
		record("c1111111111", "Third", "2024-01-01T00:00:00Z"),
	}
	out := renderListMarkdown(freshSnapshot(items...), items, "🎧 **Test Channel**")

	assert.Equal(t, 2, strings.Count(out, "!["), "at most two inline thumbnails")
	assert.Equal(t, 3, strings.Count(out, "- ["), "one bullet link per video")
	assert.Contains(t, out, "https://www.youtube.com/watch?v=c1111111111")
	assert.Contains(t, out, "https://i.ytimg.com/vi/a1111111111/hqdefault.jpg")
	assert.NotContains(t, out, "i.ytimg.com/vi/c1111111111")
}

func TestRenderListMarkdown_EmptyWithoutError(t *testing.T) {
	out := renderListMarkdown(freshSnapshot(), nil, "🎧 **Test Channel**")
	assert.Contains(t, out, "No videos found")
	assert.NotContains(t, out, "unreachable")
}

func TestRenderListMarkdown_EmptyWithUpstreamError(t *testing.T) {
	snap := domain.Snapshot{
		Meta: domain.SnapshotMeta{
			Stale:       true,
			ErrorDetail: "UPSTREAM_HTTP: status 503",
		},
	}
	out := renderListMarkdown(snap, nil, "🎧 **Test Channel**")
	assert.Contains(t, out, "currently unreachable")
	assert.Contains(t, out, "status 503")
}

func TestRenderLatestMarkdown(t *testing.T) {
	item := record("late1111111", "Artist - New Song", "2024-06-15T12:30:00Z")
	out := renderLatestMarkdown(item)

	assert.Contains(t, out, "![thumb](https://i.ytimg.com/vi/late1111111/hqdefault.jpg)")
	assert.Contains(t, out, "Artist - _New Song_")
	assert.Contains(t, out, "Published: 2024-06-15")
	assert.NotContains(t, out, "12:30")
}
