// Piped dialect client.
//
// Response shapes based on https://docs.piped.video/docs/api-documentation/
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// pipedSearchResult is a single item from the Piped search endpoint. The URL
// field is a relative watch path ("/watch?v={id}").
type pipedSearchResult struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Uploader string `json:"uploaderName"`
}

type pipedSearchResponse struct {
	Items []pipedSearchResult `json:"items"`
}

// pipedAudioStream is one entry of a streams response's audioStreams list.
type pipedAudioStream struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
	Bitrate  int    `json:"bitrate"`
}

type pipedStreamsResponse struct {
	AudioStreams []pipedAudioStream `json:"audioStreams"`
}

// resolvePiped searches a Piped instance for the query and fetches the top
// result's audio stream URL.
func (r *Resolver) resolvePiped(ctx context.Context, baseURL, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&filter=music_songs", baseURL, url.QueryEscape(query))

	var search pipedSearchResponse
	if err := r.getJSON(ctx, searchURL, &search); err != nil {
		return "", err
	}
	if len(search.Items) == 0 {
		return "", fmt.Errorf("no search results")
	}

	id := pipedVideoID(search.Items[0].URL)
	if id == "" {
		return "", fmt.Errorf("malformed result url %q", search.Items[0].URL)
	}

	var streams pipedStreamsResponse
	if err := r.getJSON(ctx, fmt.Sprintf("%s/streams/%s", baseURL, id), &streams); err != nil {
		return "", err
	}

	return pickPipedAudio(streams.AudioStreams), nil
}

// pipedVideoID extracts the video identifier from a watch path.
func pipedVideoID(watchURL string) string {
	_, id, found := strings.Cut(watchURL, "v=")
	if !found {
		return ""
	}
	if amp := strings.IndexByte(id, '&'); amp >= 0 {
		id = id[:amp]
	}
	return id
}

// pickPipedAudio prefers an audio/mp4 stream, falling back to the first
// offered stream. Piped already restricts audioStreams to audio-only entries.
func pickPipedAudio(streams []pipedAudioStream) string {
	for _, stream := range streams {
		if strings.HasPrefix(stream.MimeType, "audio/mp4") && stream.URL != "" {
			return stream.URL
		}
	}
	for _, stream := range streams {
		if stream.URL != "" {
			return stream.URL
		}
	}
	return ""
}

func decodeJSON(body io.Reader, result any) error {
	if err := json.NewDecoder(body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
