package domain

import (
	"fmt"
	"sort"
	"time"
)

// VideoRecord is the canonical shape a raw upstream item is mapped into
// before any filtering or rendering happens.
type VideoRecord struct {
	VideoID      string   `json:"videoId"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	PublishedAt  string   `json:"publishedAt,omitempty"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnailUrl"`
}

// Normalized returns a copy with URL and ThumbnailURL derived from VideoID
// when absent. Applying it to an already-normalized record is a no-op.
func (v VideoRecord) Normalized() VideoRecord {
	if v.URL == "" && v.VideoID != "" {
		v.URL = fmt.Sprintf(WatchURLFormat, v.VideoID)
	}
	if v.ThumbnailURL == "" && v.VideoID != "" {
		v.ThumbnailURL = fmt.Sprintf(ThumbnailFormat, v.VideoID)
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return v
}

// PublishedTime parses PublishedAt, returning the zero time when the field
// is empty or malformed.
func (v VideoRecord) PublishedTime() time.Time {
	if v.PublishedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Index is the normalized upstream document.
type Index struct {
	ChannelTitle string
	Videos       []VideoRecord
}

// DedupVideos keeps the first occurrence of each VideoID, dropping records
// without an ID entirely.
func DedupVideos(videos []VideoRecord) []VideoRecord {
	seen := make(map[string]struct{}, len(videos))
	out := make([]VideoRecord, 0, len(videos))
	for _, v := range videos {
		if v.VideoID == "" {
			continue
		}
		if _, ok := seen[v.VideoID]; ok {
			continue
		}
		seen[v.VideoID] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SortByPublished orders records newest-first (or oldest-first) by
// PublishedAt. Records without a parseable timestamp sort last in newest
// order. The input slice is not mutated.
func SortByPublished(videos []VideoRecord, newestFirst bool) []VideoRecord {
	out := make([]VideoRecord, len(videos))
	copy(out, videos)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].PublishedTime(), out[j].PublishedTime()
		if newestFirst {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})
	return out
}
