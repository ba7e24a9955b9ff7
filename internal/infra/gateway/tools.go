package gateway

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"ytfinder/internal/domain"
)

// ListVideosInput is the MCP tool input for listing channel videos.
type ListVideosInput struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of videos to return (default 3, max 20)"`
	Cursor int    `json:"cursor,omitempty" jsonschema:"offset into the listing for cursor pagination"`
	Sort   string `json:"sort,omitempty" jsonschema:"sort order, newest or oldest (default newest)"`
}

// SearchVideosInput is the MCP tool input for keyword search.
type SearchVideosInput struct {
	Query  string `json:"query" jsonschema:"keyword query matched against title, tags and description"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of matches to return (default 3, max 20)"`
	Cursor int    `json:"cursor,omitempty" jsonschema:"offset into the match list for cursor pagination"`
}

// LatestVideoInput is the (empty) MCP tool input for the latest video.
type LatestVideoInput struct{}

// ListVideosResult is the structured MCP tool output for video listings.
type ListVideosResult struct {
	Mode         string               `json:"mode"`
	ChannelTitle string               `json:"channelTitle,omitempty"`
	Total        int                  `json:"total"`
	Cursor       int                  `json:"cursor"`
	NextCursor   *int                 `json:"nextCursor"`
	Items        []domain.VideoRecord `json:"items"`
	Meta         domain.SnapshotMeta  `json:"meta"`
}

// SearchVideosResult is the structured MCP tool output for searches.
type SearchVideosResult struct {
	Mode         string                `json:"mode"`
	ChannelTitle string                `json:"channelTitle,omitempty"`
	Query        string                `json:"query"`
	TotalMatches int                   `json:"totalMatches"`
	Cursor       int                   `json:"cursor"`
	NextCursor   *int                  `json:"nextCursor"`
	Items        []domain.ScoredRecord `json:"items"`
	Meta         domain.SnapshotMeta   `json:"meta"`
}

// LatestVideoResult is the structured MCP tool output for the newest video.
type LatestVideoResult struct {
	Mode         string              `json:"mode"`
	ChannelTitle string              `json:"channelTitle,omitempty"`
	Item         *domain.VideoRecord `json:"item"`
	Meta         domain.SnapshotMeta `json:"meta"`
}

const (
	modeListVideos  = "list_videos"
	modeSearch      = "search_videos"
	modeLatestVideo = "latest_video"
)

func listVideosTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_videos",
		Title:       "List videos",
		Description: "Lists channel videos with cursor pagination and freshness metadata.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
		Meta:        widgetMeta(widgetVideosURI),
	}
}

func searchVideosTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_videos",
		Title:       "Search videos",
		Description: "Searches channel videos by keyword across title, tags and description.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
		Meta:        widgetMeta(widgetSearchURI),
	}
}

func latestVideoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "latest_video",
		Title:       "Latest video",
		Description: "Returns the most recently published channel video.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
		Meta:        widgetMeta(widgetHomeURI),
	}
}

func (g *Gateway) listVideosHandler() mcp.ToolHandlerFor[ListVideosInput, ListVideosResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListVideosInput) (*mcp.CallToolResult, ListVideosResult, error) {
		start := time.Now()

		limit, err := clampLimit(input.Limit)
		if err != nil {
			g.metrics.ObserveToolCall(modeListVideos, time.Since(start), err)
			return nil, ListVideosResult{}, err
		}
		newestFirst, err := parseSort(input.Sort)
		if err != nil {
			g.metrics.ObserveToolCall(modeListVideos, time.Since(start), err)
			return nil, ListVideosResult{}, err
		}
		cursor := max(input.Cursor, 0)

		snap := g.engine.Get(ctx)
		sorted := domain.SortByPublished(snap.Items, newestFirst)
		page, nextCursor := paginate(sorted, cursor, limit)

		result := ListVideosResult{
			Mode:         modeListVideos,
			ChannelTitle: snap.ChannelTitle,
			Total:        len(sorted),
			Cursor:       cursor,
			NextCursor:   nextCursor,
			Items:        page,
			Meta:         snap.Meta,
		}

		heading := "🎧 **" + escapeMarkdown(headingOr(snap.ChannelTitle, "Channel videos")) + "**"
		text := renderListMarkdown(snap, page, heading)

		g.metrics.ObserveToolCall(modeListVideos, time.Since(start), nil)
		return textResult(text), result, nil
	}
}

func (g *Gateway) searchVideosHandler() mcp.ToolHandlerFor[SearchVideosInput, SearchVideosResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchVideosInput) (*mcp.CallToolResult, SearchVideosResult, error) {
		start := time.Now()

		limit, err := clampLimit(input.Limit)
		if err != nil {
			g.metrics.ObserveToolCall(modeSearch, time.Since(start), err)
			return nil, SearchVideosResult{}, err
		}
		cursor := max(input.Cursor, 0)

		snap := g.engine.Get(ctx)
		matches := domain.Search(snap.Items, input.Query)
		page, nextCursor := paginate(matches, cursor, limit)

		result := SearchVideosResult{
			Mode:         modeSearch,
			ChannelTitle: snap.ChannelTitle,
			Query:        input.Query,
			TotalMatches: len(matches),
			Cursor:       cursor,
			NextCursor:   nextCursor,
			Items:        page,
			Meta:         snap.Meta,
		}

		records := make([]domain.VideoRecord, len(page))
		for i, scored := range page {
			records[i] = scored.VideoRecord
		}
		heading := "🎧 **" + escapeMarkdown(input.Query) + "**"
		text := renderListMarkdown(snap, records, heading)

		g.metrics.ObserveToolCall(modeSearch, time.Since(start), nil)
		return textResult(text), result, nil
	}
}

func (g *Gateway) latestVideoHandler() mcp.ToolHandlerFor[LatestVideoInput, LatestVideoResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ LatestVideoInput) (*mcp.CallToolResult, LatestVideoResult, error) {
		start := time.Now()

		snap := g.engine.Get(ctx)
		sorted := domain.SortByPublished(snap.Items, true)

		result := LatestVideoResult{
			Mode:         modeLatestVideo,
			ChannelTitle: snap.ChannelTitle,
			Meta:         snap.Meta,
		}
		var text string
		if len(sorted) == 0 {
			text = emptyIndexMarkdown(snap)
		} else {
			item := sorted[0]
			result.Item = &item
			text = renderLatestMarkdown(item)
		}

		g.metrics.ObserveToolCall(modeLatestVideo, time.Since(start), nil)
		return textResult(text), result, nil
	}
}

func clampLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return domain.DefaultListLimit, nil
	case limit < 0:
		return 0, domain.E(domain.CodeInvalidArgument, "gateway.clampLimit", "limit must be positive", nil)
	case limit > domain.MaxListLimit:
		return domain.MaxListLimit, nil
	default:
		return limit, nil
	}
}

func parseSort(sort string) (newestFirst bool, err error) {
	switch sort {
	case "", "newest":
		return true, nil
	case "oldest":
		return false, nil
	default:
		return false, domain.E(domain.CodeInvalidArgument, "gateway.parseSort", "sort must be newest or oldest", nil)
	}
}

func paginate[T any](items []T, cursor, limit int) ([]T, *int) {
	if cursor >= len(items) {
		return []T{}, nil
	}
	end := cursor + limit
	if end > len(items) {
		end = len(items)
	}
	page := items[cursor:end]
	if end < len(items) {
		return page, &end
	}
	return page, nil
}

func headingOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
