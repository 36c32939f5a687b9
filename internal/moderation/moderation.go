package moderation

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gfdmit/web-forum/posts-api/config"
)

// Checker reports whether text contains inappropriate language.
// Implementations fail closed: a check that cannot complete flags the text.
type Checker interface {
	Flagged(ctx context.Context, text string) bool
}

// Chain flags text when any of its checkers does.
type Chain []Checker

func (c Chain) Flagged(ctx context.Context, text string) bool {
	for _, checker := range c {
		if checker.Flagged(ctx, text) {
			return true
		}
	}
	return false
}

// New builds the checkers enabled by the configuration: the local word list
// first, then the Perspective API when a URL is set.
func New(conf config.Moderation) (Chain, error) {
	chain := Chain{}
	if len(conf.Words) > 0 {
		words, err := NewWordList(conf.Words)
		if err != nil {
			return nil, fmt.Errorf("moderation.New: %v", err)
		}
		chain = append(chain, words)
	}
	if conf.PerspectiveURL != "" {
		chain = append(chain, NewPerspective(conf, &http.Client{Timeout: conf.Timeout}))
	}
	return chain, nil
}
