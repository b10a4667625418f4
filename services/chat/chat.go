package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var ErrUnexpectedStatus = errors.New("unexpected chat response status")

// Client posts to the quiz channel.
type Client interface {
	// PostMessage returns the id of the created post, or "" when the
	// transport does not report one.
	PostMessage(ctx context.Context, text string) (string, error)
	ChannelID() string
}

// ReactionReader reads answers left as reactions on a quiz post.
type ReactionReader interface {
	GetReactions(ctx context.Context, postID string) ([]Reaction, error)
	GetDisplayName(ctx context.Context, userID string) (string, error)
	BotUserID(ctx context.Context) (string, error)
}

// ReactionSeeder adds the answer reactions under a fresh quiz post.
type ReactionSeeder interface {
	AddReaction(ctx context.Context, postID, emojiName string) error
}

type Reaction struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	EmojiName string `json:"emoji_name"`
	CreateAt  int64  `json:"create_at"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %d %s: %s", ErrUnexpectedStatus, e.code, http.StatusText(e.code), e.body)
}

func (e *statusError) Unwrap() error {
	return ErrUnexpectedStatus
}
