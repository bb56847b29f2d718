package faproulette

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	e "github.com/Kambucha375/faproulette-bot/pkg/entities"
)

const (
	DefaultBaseURL  = "https://faproulette.co"
	DefaultFilesURL = "https://files.faproulette.co"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the roulette content API: one random item, name-filtered
// search, and media resolution by opaque key.
type Client struct {
	baseURL    string
	filesURL   string
	httpClient HTTPClient
}

func NewClient(baseURL, filesURL string, httpClient HTTPClient) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		filesURL:   strings.TrimSuffix(filesURL, "/"),
		httpClient: httpClient,
	}
}

type randomResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	ImageType int    `json:"image_type"`
	DiceNum   int    `json:"dice_num"`
	DiceType  int    `json:"dice_type"`
}

// Random fetches one random item together with its media. The random
// endpoint declares the media type up front, so no extension probing is
// needed on this path. Failures are ErrUpstream and must not be retried.
func (c *Client) Random(ctx context.Context) (e.Item, e.MediaBlob, error) {
	body, err := c.get(ctx, c.baseURL+"/api/random")
	if err != nil {
		return e.Item{}, e.MediaBlob{}, fmt.Errorf("%w: fetching random roulette: %v", e.ErrUpstream, err)
	}

	var rr randomResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return e.Item{}, e.MediaBlob{}, fmt.Errorf("%w: decoding random response: %v", e.ErrUpstream, err)
	}

	if rr.ImageURL == "" {
		return e.Item{}, e.MediaBlob{}, fmt.Errorf("%w: random response has no image url", e.ErrUpstream)
	}

	media, err := c.get(ctx, rr.ImageURL)
	if err != nil {
		return e.Item{}, e.MediaBlob{}, fmt.Errorf("%w: downloading random media: %v", e.ErrUpstream, err)
	}

	item := e.Item{
		Key:       strconv.Itoa(rr.ID),
		Name:      rr.Name,
		MediaKind: e.MediaKindFromTag(rr.ImageType),
		RollCount: rr.DiceNum,
		RollKind:  e.RollKindFromTag(rr.DiceType),
	}

	blob := e.MediaBlob{
		Bytes:    media,
		Encoding: e.EncodingJPEG,
	}
	if item.MediaKind == e.MediaKindAnimation {
		blob.Encoding = e.EncodingGIF
	}

	return item, blob, nil
}

// Search posts a name filter with the fixed home/trending pagination and
// returns at most maxResults items in server order. An empty result set is
// not an error.
func (c *Client) Search(ctx context.Context, name string, maxResults int) ([]e.Item, error) {
	form := url.Values{
		"roulettes_page": {"home"},
		"part":           {"0"},
		"order":          {"trending"},
		"name":           {name},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/getRoulettes",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating search request: %v", e.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: posting search request: %v", e.ErrUpstream, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected search status code: %d", e.ErrUpstream, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading search response: %v", e.ErrUpstream, err)
	}

	rows, err := decodeSearchRows(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", e.ErrUpstream, err)
	}

	if maxResults < 0 {
		maxResults = 0
	}
	if maxResults < len(rows) {
		rows = rows[:maxResults]
	}

	items := make([]e.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, e.Item{
			Key:  r.Key,
			Name: r.Name,
		})
	}

	return items, nil
}

// Media resolves an item's image by probing a jpeg URL first and falling
// back to png on any non-success status. Search results do not declare
// their content type, extension probing is the only resolution strategy.
func (c *Client) Media(ctx context.Context, item e.Item) (e.MediaBlob, error) {
	jpg, jpgErr := c.get(ctx, c.mediaURL(item.Key, "jpg"))
	if jpgErr == nil {
		return e.MediaBlob{Bytes: jpg, Encoding: e.EncodingJPEG}, nil
	}

	png, pngErr := c.get(ctx, c.mediaURL(item.Key, "png"))
	if pngErr == nil {
		return e.MediaBlob{Bytes: png, Encoding: e.EncodingPNG}, nil
	}

	return e.MediaBlob{}, fmt.Errorf("%w: jpg probe: %v, png probe: %v", e.ErrMediaUnavailable, jpgErr, pngErr)
}

func (c *Client) mediaURL(key, ext string) string {
	return fmt.Sprintf("%s/images/fap/%s.%s", c.filesURL, key, ext)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("doing request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}
