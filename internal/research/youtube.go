// Package research looks up currently ranking YouTube titles for a topic,
// used as reference material for SEO generation.
package research

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"golang.org/x/sync/singleflight"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"StoryStudio/internal/logging"
	"StoryStudio/internal/utils"
)

const maxSearchResults = 50

// ErrNoAPIKey is returned when research is requested without a YouTube API key
var ErrNoAPIKey = errors.New("youtube api key required")

// YouTubeResearcher searches the YouTube Data API for popular videos
type YouTubeResearcher struct {
	service     *youtube.Service
	language    string
	searchGroup singleflight.Group
}

// NewYouTubeResearcher creates a researcher. language ("vi" or "en") biases results.
// Extra options are appended after the API key, e.g. to point at another endpoint.
func NewYouTubeResearcher(ctx context.Context, apiKey, language string, opts ...option.ClientOption) (*YouTubeResearcher, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &YouTubeResearcher{service: service, language: language}, nil
}

// TopTitles returns up to n titles of the most viewed videos matching query.
// Concurrent identical lookups share one API call.
func (r *YouTubeResearcher) TopTitles(ctx context.Context, query string, n int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if n <= 0 {
		return nil, nil
	}
	if n > maxSearchResults {
		n = maxSearchResults
	}

	key := fmt.Sprintf("%s|%d", query, n)
	res, err, shared := r.searchGroup.Do(key, func() (interface{}, error) {
		return r.search(ctx, query, n)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.Debug("Shared YouTube search result for %q", query)
	}

	titles := res.([]string)
	out := make([]string, len(titles))
	copy(out, titles)
	return out, nil
}

func (r *YouTubeResearcher) search(ctx context.Context, query string, n int) ([]string, error) {
	call := r.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		Order("viewCount").
		MaxResults(int64(n)).
		Context(ctx)
	if r.language != "" {
		call = call.RelevanceLanguage(r.language)
	}

	resp, err := call.Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("youtube search failed (%d): %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	titles := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Snippet == nil {
			continue
		}
		titles = append(titles, html.UnescapeString(item.Snippet.Title))
	}
	titles = utils.UniqueStrings(titles)
	logging.Info("YouTube research for %q returned %d titles", query, len(titles))
	return titles, nil
}
