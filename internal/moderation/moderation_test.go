package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gfdmit/web-forum/posts-api/config"
)

func TestWordList(t *testing.T) {
	words, err := NewWordList([]string{"darn", "heck"})
	require.NoError(t, err)

	tests := []struct {
		text    string
		flagged bool
	}{
		{"What a lovely day", false},
		{"darn it", true},
		{"D A R N", true},
		{"d4rn", true},
		{"what the h3ck!", true},
		{"", false},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			require.Equal(t, tc.flagged, words.Flagged(context.Background(), tc.text))
		})
	}
}

func TestWordList_WordBoundaries(t *testing.T) {
	words, err := NewWordList([]string{"ass", "hell"})
	require.NoError(t, err)

	tests := []struct {
		text    string
		flagged bool
	}{
		{"First class post", false},
		{"Say hello", false},
		{"glass 4 sale", false},
		{"as soon as possible", false},
		{"shell script", false},
		{"go to hell", true},
		{"HELL!", true},
		{"you a$$", true},
		{"a s s", true},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			require.Equal(t, tc.flagged, words.Flagged(context.Background(), tc.text))
		})
	}
}

func TestWordList_Empty(t *testing.T) {
	words, err := NewWordList([]string{" ", ""})
	require.NoError(t, err)
	require.False(t, words.Flagged(context.Background(), "anything"))
}

type perspectiveServer struct {
	status int
	scores map[string]float64
	got    analyzeRequest
	key    string
}

func (s *perspectiveServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.key = r.URL.Query().Get("key")
	_ = json.NewDecoder(r.Body).Decode(&s.got)
	if s.status != http.StatusOK {
		http.Error(w, "quota exceeded", s.status)
		return
	}
	resp := map[string]any{"attributeScores": map[string]any{}}
	for attr, v := range s.scores {
		resp["attributeScores"].(map[string]any)[attr] = map[string]any{
			"summaryScore": map[string]any{"value": v, "type": "PROBABILITY"},
		}
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newPerspective(t *testing.T, handler http.Handler) *Perspective {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewPerspective(config.Moderation{
		PerspectiveURL: srv.URL + "/v1alpha1/comments:analyze",
		PerspectiveKey: "secret",
		Threshold:      0.5,
	}, srv.Client())
}

func TestPerspective(t *testing.T) {
	ctx := context.Background()

	t.Run("clean", func(t *testing.T) {
		req := require.New(t)
		srv := &perspectiveServer{status: http.StatusOK, scores: map[string]float64{"TOXICITY": 0.1, "INSULT": 0.2}}
		p := newPerspective(t, srv)

		req.False(p.Flagged(ctx, "Thank you for this detailed and helpful article about Go"))
		req.Equal("secret", srv.key)
		req.Len(srv.got.RequestedAttributes, 4)
		req.Contains(srv.got.RequestedAttributes, "PROFANITY")
	})

	t.Run("score at threshold", func(t *testing.T) {
		srv := &perspectiveServer{status: http.StatusOK, scores: map[string]float64{"THREAT": 0.5}}
		require.True(t, newPerspective(t, srv).Flagged(ctx, "text"))
	})

	t.Run("error status fails closed", func(t *testing.T) {
		srv := &perspectiveServer{status: http.StatusTooManyRequests}
		require.True(t, newPerspective(t, srv).Flagged(ctx, "text"))
	})

	t.Run("unreachable fails closed", func(t *testing.T) {
		p := NewPerspective(config.Moderation{PerspectiveURL: "http://127.0.0.1:1/analyze"},
			&http.Client{Timeout: time.Second})
		require.True(t, p.Flagged(ctx, "text"))
	})

	t.Run("garbage body fails closed", func(t *testing.T) {
		p := newPerspective(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("not json"))
		}))
		require.True(t, p.Flagged(ctx, "text"))
	})
}

type staticChecker bool

func (s staticChecker) Flagged(context.Context, string) bool { return bool(s) }

func TestChain(t *testing.T) {
	ctx := context.Background()
	require.False(t, Chain{}.Flagged(ctx, "x"))
	require.False(t, Chain{staticChecker(false), staticChecker(false)}.Flagged(ctx, "x"))
	require.True(t, Chain{staticChecker(false), staticChecker(true)}.Flagged(ctx, "x"))
}

func TestNew(t *testing.T) {
	req := require.New(t)

	chain, err := New(config.Moderation{})
	req.NoError(err)
	req.Empty(chain)

	chain, err = New(config.Moderation{Words: []string{"darn"}, PerspectiveURL: "http://localhost/analyze"})
	req.NoError(err)
	req.Len(chain, 2)
	req.IsType(&WordList{}, chain[0])
	req.IsType(&Perspective{}, chain[1])
}
