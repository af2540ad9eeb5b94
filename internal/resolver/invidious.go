// Invidious dialect client.
//
// Response shapes based on https://docs.invidious.io/api/
package resolver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// invidiousSearchResult is a single item from /api/v1/search.
type invidiousSearchResult struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	Author  string `json:"author"`
}

// invidiousFormat is one entry of a video's adaptiveFormats list. Bitrate is
// serialized as a decimal string.
type invidiousFormat struct {
	URL     string `json:"url"`
	Type    string `json:"type"`
	Bitrate string `json:"bitrate"`
}

type invidiousVideoResponse struct {
	AdaptiveFormats []invidiousFormat `json:"adaptiveFormats"`
}

// resolveInvidious searches an Invidious instance for the query and fetches
// the top result's best audio format URL.
func (r *Resolver) resolveInvidious(ctx context.Context, baseURL, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/api/v1/search?q=%s&type=video", baseURL, url.QueryEscape(query))

	var results []invidiousSearchResult
	if err := r.getJSON(ctx, searchURL, &results); err != nil {
		return "", err
	}
	if len(results) == 0 || results[0].VideoID == "" {
		return "", fmt.Errorf("no search results")
	}

	var video invidiousVideoResponse
	videoURL := fmt.Sprintf("%s/api/v1/videos/%s", baseURL, results[0].VideoID)
	if err := r.getJSON(ctx, videoURL, &video); err != nil {
		return "", err
	}

	return pickInvidiousAudio(video.AdaptiveFormats), nil
}

// pickInvidiousAudio filters adaptiveFormats to audio entries and picks the
// highest bitrate.
func pickInvidiousAudio(formats []invidiousFormat) string {
	best := ""
	bestBitrate := -1

	for _, format := range formats {
		if format.URL == "" || !strings.HasPrefix(format.Type, "audio/") {
			continue
		}
		bitrate, err := strconv.Atoi(format.Bitrate)
		if err != nil {
			bitrate = 0
		}
		if bitrate > bestBitrate {
			best = format.URL
			bestBitrate = bitrate
		}
	}

	return best
}
