package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/gfdmit/web-forum/posts-api/config"
)

// FallbackReply is posted when no reply could be generated.
const FallbackReply = "Thank you for your comment!"

// Replier writes replies to comments on behalf of the post author through an
// OpenAI compatible chat completion endpoint.
type Replier struct {
	client *openai.Client
	model  string
	conf   config.AI
}

func New(conf config.AI) *Replier {
	clientConf := openai.DefaultConfig(conf.APIKey)
	if conf.BaseURL != "" {
		clientConf.BaseURL = conf.BaseURL
	}
	return &Replier{
		client: openai.NewClientWithConfig(clientConf),
		model:  conf.Model,
		conf:   conf,
	}
}

// Reply never fails: provider errors and empty answers yield FallbackReply.
func (r *Replier) Reply(ctx context.Context, post, comment string) string {
	if r.conf.APIKey == "" {
		return FallbackReply
	}
	if r.conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.conf.Timeout)
		defer cancel()
	}

	reply, err := r.generate(ctx, post, comment)
	if err != nil {
		log.Printf("[AI] error generating reply: %v", err)
		return FallbackReply
	}
	return reply
}

func (r *Replier) generate(ctx context.Context, post, comment string) (string, error) {
	resp, err := r.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: r.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are the author of a blog post answering comments from your readers. Reply in the language of the comment.",
				},
				{
					Role: openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(
						"Post: %q\nComment: %q\nAs the author of the post, write a reply to this comment that is relevant and helpful.",
						post, comment),
				},
			},
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("empty reply")
	}
	return reply, nil
}
