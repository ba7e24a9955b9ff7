package domain

const (
	DefaultVideosPath                 = "/my-channel/videos"
	DefaultUserAgent                  = "ytfinder/0.1"
	DefaultSoftTTLSeconds             = 60
	DefaultHardTTLSeconds             = 24 * 60 * 60
	DefaultForegroundTimeoutSeconds   = 3
	DefaultBackgroundTimeoutSeconds   = 5
	DefaultListLimit                  = 3
	MaxListLimit                      = 20
	DefaultObservabilityListenAddress = "0.0.0.0:9090"
	DefaultHTTPAddr                   = "127.0.0.1:8090"
	DefaultHTTPPath                   = "/mcp"

	// ErrorBodyLimit bounds the upstream response body carried in diagnostics.
	ErrorBodyLimit = 300
)

const (
	WatchURLFormat  = "https://www.youtube.com/watch?v=%s"
	ThumbnailFormat = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)
