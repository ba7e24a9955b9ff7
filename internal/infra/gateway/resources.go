package gateway

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Widget UI pages rendered by the conversational client. The type prefix and
// URIs are part of the widget contract and must stay stable.
const (
	widgetTypePrefix = "io.github.gn00396084-crypto.ytfinder"

	widgetHomeURI   = "ui://ytfinder/home"
	widgetSearchURI = "ui://ytfinder/search"
	widgetVideosURI = "ui://ytfinder/videos"
)

func widgetMeta(outputTemplate string) mcp.Meta {
	return mcp.Meta{
		"openai/outputTemplate":          outputTemplate,
		"openai/widgetAccessible":        true,
		"openai/visibility":              "public",
		"openai/toolInvocation/invoking": "Looking up videos…",
		"openai/toolInvocation/invoked":  "Done",
	}
}

type widgetPage struct {
	key   string
	uri   string
	title string
	html  string
}

func widgetPages() []widgetPage {
	return []widgetPage{
		{key: "home", uri: widgetHomeURI, title: "Latest video", html: widgetHTML("home", "Latest video")},
		{key: "search", uri: widgetSearchURI, title: "Search videos", html: widgetHTML("search", "Search videos")},
		{key: "videos", uri: widgetVideosURI, title: "Video list", html: widgetHTML("videos", "Video list")},
	}
}

// widgetHTML produces the minimal widget shell. The client injects the
// structured tool output into the page; the app:type meta ties the page to
// its tool.
func widgetHTML(key, title string) string {
	return `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="app:type" content="` + widgetTypePrefix + `.` + key + `">
<title>` + title + `</title>
</head>
<body data-widget-type="` + widgetTypePrefix + `.` + key + `">
<div id="root"></div>
<script type="module" src="./widget.js"></script>
</body>
</html>
`
}

func (g *Gateway) registerResources(server *mcp.Server) {
	for _, page := range widgetPages() {
		page := page
		server.AddResource(&mcp.Resource{
			URI:      page.uri,
			Name:     page.key,
			Title:    page.title,
			MIMEType: "text/html",
		}, func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			uri := page.uri
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{
						URI:      uri,
						MIMEType: "text/html",
						Text:     page.html,
					},
				},
			}, nil
		})
	}
}
