package upstream

import (
	"encoding/json"

	"ytfinder/internal/domain"
)

// The upstream index has gone through several shapes: a flat worker payload,
// a YouTube API passthrough, and a trimmed export. Each logical field is
// extracted by an ordered rule list tried in sequence, so the fallback order
// is auditable and testable on its own.

// listKeys are the document keys that may hold the raw video list.
var listKeys = []string{"videos", "items", "data"}

// channelTitlePaths locate the channel display name.
var channelTitlePaths = [][]string{
	{"channelTitle"},
	{"channel", "title"},
}

// Per-item field paths, most specific shape first where shapes overlap.
var (
	idPaths = [][]string{
		{"videoId"},
		{"id"},
		{"id", "videoId"},
		{"snippet", "resourceId", "videoId"},
	}
	titlePaths = [][]string{
		{"title"},
		{"snippet", "title"},
	}
	descriptionPaths = [][]string{
		{"description"},
		{"snippet", "description"},
	}
	tagsPaths = [][]string{
		{"tags"},
		{"snippet", "tags"},
	}
	publishedAtPaths = [][]string{
		{"publishedAt"},
		{"published_at"},
		{"snippet", "publishedAt"},
	}
	urlPaths = [][]string{
		{"url"},
		{"watchUrl"},
	}
	thumbnailPaths = [][]string{
		{"thumbnailUrl"},
		{"thumbnail"},
		{"snippet", "thumbnails", "high", "url"},
	}
)

// NormalizeIndex parses the raw index document and maps every usable item
// into the canonical record shape. Items that yield no video ID are dropped
// and duplicates keep the first occurrence.
func NormalizeIndex(body []byte) (domain.Index, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		e := domain.E(domain.CodeUpstreamParse, "", "index is not a JSON object", err)
		e.Body = truncate(string(body), domain.ErrorBodyLimit)
		return domain.Index{}, e
	}

	index := domain.Index{
		ChannelTitle: firstString(doc, channelTitlePaths),
	}

	raw := extractList(doc)
	videos := make([]domain.VideoRecord, 0, len(raw))
	for _, entry := range raw {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		videos = append(videos, normalizeItem(item))
	}
	index.Videos = domain.DedupVideos(videos)
	return index, nil
}

func normalizeItem(item map[string]any) domain.VideoRecord {
	record := domain.VideoRecord{
		VideoID:      firstString(item, idPaths),
		Title:        firstString(item, titlePaths),
		Description:  firstString(item, descriptionPaths),
		Tags:         firstStringSlice(item, tagsPaths),
		PublishedAt:  firstString(item, publishedAtPaths),
		URL:          firstString(item, urlPaths),
		ThumbnailURL: firstString(item, thumbnailPaths),
	}
	return record.Normalized()
}

func extractList(doc map[string]any) []any {
	for _, key := range listKeys {
		if list, ok := doc[key].([]any); ok {
			return list
		}
	}
	return nil
}

// firstString walks each path in order and returns the first non-empty
// string value found.
func firstString(m map[string]any, paths [][]string) string {
	for _, path := range paths {
		if value, ok := lookup(m, path); ok {
			if s, ok := value.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstStringSlice(m map[string]any, paths [][]string) []string {
	for _, path := range paths {
		value, ok := lookup(m, path)
		if !ok {
			continue
		}
		raw, ok := value.([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, entry := range raw {
			if s, ok := entry.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func lookup(m map[string]any, path []string) (any, bool) {
	var current any = m
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
