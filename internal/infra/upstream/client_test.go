package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytfinder/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Options{BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeConfig, code)
}

func TestFetchIndex_Success(t *testing.T) {
	var gotPath, gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"videos":[{"videoId":"abc12345678","title":"Rain Song","publishedAt":"2024-01-01T00:00:00Z"}]}`))
	})

	index, err := client.FetchIndex(context.Background(), time.Second)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultVideosPath, gotPath)
	assert.Equal(t, "application/json", gotAccept)
	require.Len(t, index.Videos, 1)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc12345678", index.Videos[0].URL)
	assert.Equal(t, "https://i.ytimg.com/vi/abc12345678/hqdefault.jpg", index.Videos[0].ThumbnailURL)
}

func TestFetchIndex_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	})

	_, err := client.FetchIndex(context.Background(), time.Second)
	require.Error(t, err)

	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeUpstreamHTTP, domainErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, domainErr.StatusCode)
	assert.Len(t, domainErr.Body, domain.ErrorBodyLimit)
}

func TestFetchIndex_ParseError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>definitely not json</html>"))
	})

	_, err := client.FetchIndex(context.Background(), time.Second)
	require.Error(t, err)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeUpstreamParse, code)
}

func TestFetchIndex_TimeoutIsBoundedAndTagged(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := client.FetchIndex(context.Background(), 50*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeUpstreamTimeout, code)
	assert.Less(t, elapsed, time.Second, "timeout must cancel the request, not wait it out")
}

func TestFetchIndex_RespectsCallerCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.FetchIndex(ctx, 10*time.Second)
	require.Error(t, err)
}

func TestTruncate_KeepsRuneBoundaries(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abcde", truncate("abcdef", 5))

	// The limit lands inside the two-byte "é"; the cut moves back to the
	// rune boundary instead of emitting a broken sequence.
	body := strings.Repeat("x", 299) + "état"
	got := truncate(body, 300)
	assert.Len(t, got, 299)
	assert.True(t, utf8.ValidString(got))
}

func TestFetchIndex_HTTPErrorBodyStaysValidUTF8(t *testing.T) {
	body := strings.Repeat("e", domain.ErrorBodyLimit-1) + "é and more"
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(body))
	})

	_, err := client.FetchIndex(context.Background(), time.Second)
	require.Error(t, err)

	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.True(t, utf8.ValidString(domainErr.Body))
	assert.LessOrEqual(t, len(domainErr.Body), domain.ErrorBodyLimit)
}
