package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MattermostClient talks to the Mattermost REST API v4 with a bot token.
type MattermostClient struct {
	baseURL    string
	token      string
	channelID  string
	httpClient *http.Client

	mu        sync.Mutex
	botUserID string
}

func NewMattermostClient(baseURL, token, channelID string) *MattermostClient {
	return &MattermostClient{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v4",
		token:      token,
		channelID:  channelID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *MattermostClient) ChannelID() string {
	return c.channelID
}

func (c *MattermostClient) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, body: string(data)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

func (c *MattermostClient) PostMessage(ctx context.Context, text string) (string, error) {
	var post struct {
		ID string `json:"id"`
	}
	payload := map[string]string{"channel_id": c.channelID, "message": text}
	if err := c.call(ctx, http.MethodPost, "/posts", payload, &post); err != nil {
		return "", fmt.Errorf("failed to create post: %w", err)
	}
	log.Printf("[INFO] Posted to Mattermost: post_id=%s", post.ID)
	return post.ID, nil
}

// BotUserID resolves and caches the id of the token's own user.
func (c *MattermostClient) BotUserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.botUserID != "" {
		return c.botUserID, nil
	}

	var me struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, http.MethodGet, "/users/me", nil, &me); err != nil {
		return "", fmt.Errorf("failed to get bot user: %w", err)
	}
	c.botUserID = me.ID
	return me.ID, nil
}

func (c *MattermostClient) AddReaction(ctx context.Context, postID, emojiName string) error {
	userID, err := c.BotUserID(ctx)
	if err != nil {
		return err
	}

	payload := Reaction{UserID: userID, PostID: postID, EmojiName: emojiName}
	if err := c.call(ctx, http.MethodPost, "/reactions", payload, nil); err != nil {
		return fmt.Errorf("failed to add reaction %s: %w", emojiName, err)
	}
	return nil
}

func (c *MattermostClient) GetReactions(ctx context.Context, postID string) ([]Reaction, error) {
	var reactions []Reaction
	path := "/posts/" + url.PathEscape(postID) + "/reactions"
	if err := c.call(ctx, http.MethodGet, path, nil, &reactions); err != nil {
		return nil, fmt.Errorf("failed to get reactions: %w", err)
	}
	return reactions, nil
}

func (c *MattermostClient) GetDisplayName(ctx context.Context, userID string) (string, error) {
	var user struct {
		Username string `json:"username"`
	}
	if err := c.call(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &user); err != nil {
		return "", fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return user.Username, nil
}
