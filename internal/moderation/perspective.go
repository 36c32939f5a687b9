package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/abadojack/whatlanggo"

	"github.com/gfdmit/web-forum/posts-api/config"
)

var attributes = []string{"PROFANITY", "INSULT", "THREAT", "TOXICITY"}

// Perspective scores text with the Perspective comment analyzer API.
type Perspective struct {
	url       string
	key       string
	threshold float64
	client    *http.Client
}

func NewPerspective(conf config.Moderation, client *http.Client) *Perspective {
	threshold := conf.Threshold
	if threshold <= 0 {
		threshold = 0.5
	}
	return &Perspective{
		url:       conf.PerspectiveURL,
		key:       conf.PerspectiveKey,
		threshold: threshold,
		client:    client,
	}
}

type analyzeRequest struct {
	Comment             analyzeComment      `json:"comment"`
	Languages           []string            `json:"languages,omitempty"`
	RequestedAttributes map[string]struct{} `json:"requestedAttributes"`
}

type analyzeComment struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

// Flagged returns true when any attribute scores at or above the threshold,
// and also when the API cannot be reached or answers with an error.
func (p *Perspective) Flagged(ctx context.Context, text string) bool {
	flagged, err := p.analyze(ctx, text)
	if err != nil {
		log.Printf("[MODERATION] perspective check failed, treating text as unsafe: %v", err)
		return true
	}
	return flagged
}

func (p *Perspective) analyze(ctx context.Context, text string) (bool, error) {
	body := analyzeRequest{
		Comment:             analyzeComment{Text: text},
		RequestedAttributes: map[string]struct{}{},
	}
	for _, attr := range attributes {
		body.RequestedAttributes[attr] = struct{}{}
	}
	if info := whatlanggo.Detect(text); info.IsReliable() {
		if code := info.Lang.Iso6391(); code != "" {
			body.Languages = []string{code}
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return false, err
	}

	endpoint, err := url.Parse(p.url)
	if err != nil {
		return false, fmt.Errorf("bad perspective url: %w", err)
	}
	if p.key != "" {
		q := endpoint.Query()
		q.Set("key", p.key)
		endpoint.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("perspective api: %d %s", resp.StatusCode, msg)
	}

	var result analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode perspective response: %w", err)
	}
	for _, attr := range attributes {
		if score, ok := result.AttributeScores[attr]; ok && score.SummaryScore.Value >= p.threshold {
			return true, nil
		}
	}
	return false, nil
}
