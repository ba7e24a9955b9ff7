package gateway

import (
	"strings"

	"ytfinder/internal/domain"
)

// Markdown rendering for the conversational client: at most two thumbnails
// on one line, then a bullet link per video. Titles with a dash separator
// get the right-hand part italicized (artist – _song_).

var markdownEscaper = strings.NewReplacer(
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var titleSeparators = []string{" – ", " - ", " — "}

func formatTitle(title string) string {
	for _, sep := range titleSeparators {
		i := strings.Index(title, sep)
		if i < 0 {
			continue
		}
		left := title[:i+len(sep)]
		right := title[i+len(sep):]
		if strings.TrimSpace(right) != "" {
			return escapeMarkdown(left) + "_" + escapeMarkdown(right) + "_"
		}
	}
	return escapeMarkdown(title)
}

func renderListMarkdown(snap domain.Snapshot, items []domain.VideoRecord, heading string) string {
	if len(items) == 0 {
		return emptyIndexMarkdown(snap)
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n\n")

	thumbs := items
	if len(thumbs) > 2 {
		thumbs = thumbs[:2]
	}
	imgs := make([]string, 0, len(thumbs))
	for _, v := range thumbs {
		alt := v.Title
		if alt == "" {
			alt = "thumb"
		}
		imgs = append(imgs, "!["+escapeMarkdown(alt)+"]("+v.ThumbnailURL+")")
	}
	b.WriteString(strings.Join(imgs, " "))
	b.WriteString("\n\n")

	for i, v := range items {
		title := v.Title
		if title == "" {
			title = "Untitled"
		}
		b.WriteString("- [" + formatTitle(title) + "](" + v.URL + ")")
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func renderLatestMarkdown(item domain.VideoRecord) string {
	var b strings.Builder
	b.WriteString("![thumb](" + item.ThumbnailURL + ")\n\n")
	b.WriteString("🎵 **Latest upload**\n\n")
	b.WriteString("- [" + formatTitle(item.Title) + "](" + item.URL + ")\n")
	date := item.PublishedAt
	if len(date) > 10 {
		date = date[:10]
	}
	b.WriteString("- Published: " + date)
	return b.String()
}

// emptyIndexMarkdown explains an empty result set. When the emptiness comes
// from an unreachable upstream the note says so; the tool response itself is
// still a success.
func emptyIndexMarkdown(snap domain.Snapshot) string {
	if snap.Meta.ErrorDetail != "" {
		return "The channel index is currently unreachable, so no videos can be shown right now.\n\n" +
			"Detail: " + snap.Meta.ErrorDetail + "\n\n" +
			"Please try again in a moment."
	}
	return "No videos found (the channel index is empty)."
}
