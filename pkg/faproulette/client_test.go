package faproulette

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	e "github.com/Kambucha375/faproulette-bot/pkg/entities"
)

func TestSearch_CapsAtRequestedCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "home", r.Form.Get("roulettes_page"))
		require.Equal(t, "trending", r.Form.Get("order"))
		require.Equal(t, "cats", r.Form.Get("name"))

		_, _ = w.Write([]byte(`[
			[1, "One", 0, 0, 0, 11],
			[2, "Two", 0, 0, 0, 12],
			[3, "Three", 0, 0, 0, 13]
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, srv.Client())

	items, err := client.Search(context.Background(), "cats", 2)
	require.NoError(t, err)
	require.Equal(t, []e.Item{
		{Key: "11", Name: "One"},
		{Key: "12", Name: "Two"},
	}, items)
}

func TestSearch_FewerAvailableThanRequested(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[[1, "Only", 0, 0, 0, 9]]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, srv.Client())

	items, err := client.Search(context.Background(), "rare", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestSearch_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, srv.Client())

	_, err := client.Search(context.Background(), "cats", 3)
	require.ErrorIs(t, err, e.ErrUpstream)
}

func TestMedia_JPEGFirst(t *testing.T) {
	var pngRequested bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/images/fap/42.jpg":
			_, _ = w.Write([]byte("jpeg-bytes"))
		case "/images/fap/42.png":
			pngRequested = true
			_, _ = w.Write([]byte("png-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, srv.Client())

	blob, err := client.Media(context.Background(), e.Item{Key: "42"})
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), blob.Bytes)
	require.Equal(t, e.EncodingJPEG, blob.Encoding)
	require.False(t, pngRequested, "png must not be probed when jpeg succeeds")
}

func TestMedia_FallsBackToPNG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/images/fap/42.jpg":
			w.WriteHeader(http.StatusNotFound)
		case "/images/fap/42.png":
			_, _ = w.Write([]byte("png-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, srv.Client())

	blob, err := client.Media(context.Background(), e.Item{Key: "42"})
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), blob.Bytes)
	require.Equal(t, e.EncodingPNG, blob.Encoding)
}

func TestMedia_BothProbesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, srv.Client())

	_, err := client.Media(context.Background(), e.Item{Key: "42"})
	require.ErrorIs(t, err, e.ErrMediaUnavailable)
}

func TestRandom(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/random":
			_, _ = w.Write([]byte(`{
				"id": 7,
				"name": "Lucky",
				"image_url": "` + srvURL + `/media/7.jpg",
				"image_type": 0,
				"dice_num": 3,
				"dice_type": 0
			}`))
		case "/media/7.jpg":
			_, _ = w.Write([]byte("media-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	client := NewClient(srv.URL, srv.URL, srv.Client())

	item, blob, err := client.Random(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Lucky", item.Name)
	require.Equal(t, "7", item.Key)
	require.Equal(t, e.MediaKindStill, item.MediaKind)
	require.Equal(t, 3, item.RollCount)
	require.Equal(t, e.RollKindDigit, item.RollKind)
	require.Equal(t, []byte("media-bytes"), blob.Bytes)
}

func TestRandom_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, srv.Client())

	_, _, err := client.Random(context.Background())
	require.ErrorIs(t, err, e.ErrUpstream)
}
