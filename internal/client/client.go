// Package client talks to the taskboard HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"taskboard/shared/failure"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultTimeout = 15 * time.Second

// Client is a thin JSON client for the /api routes. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.RWMutex
	tokens Tokens
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

func (c *Client) SetTokens(tokens Tokens) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokens = tokens
}

func (c *Client) Tokens() Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tokens
}

func (c *Client) Login(ctx context.Context, email, password string) (Tokens, error) {
	var tokens Tokens

	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &tokens); err != nil {
		return Tokens{}, err
	}

	c.SetTokens(tokens)

	return tokens, nil
}

// Refresh exchanges the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) (Tokens, error) {
	var tokens Tokens

	body := map[string]string{"refreshToken": c.Tokens().RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh-token", body, &tokens); err != nil {
		return Tokens{}, err
	}

	c.SetTokens(tokens)

	return tokens, nil
}

func (c *Client) ListTodos(ctx context.Context) ([]Todo, error) {
	var todos []Todo

	if err := c.do(ctx, http.MethodGet, "/todos", nil, &todos); err != nil {
		return nil, err
	}

	return todos, nil
}

func (c *Client) CreateTodo(ctx context.Context, title string, description *string) (Todo, error) {
	var res envelope[Todo]

	body := map[string]any{"title": title, "description": description}
	if err := c.do(ctx, http.MethodPost, "/todos", body, &res); err != nil {
		return Todo{}, err
	}

	return res.Data, nil
}

// UpdateTodo sends a partial update. Keys holding nil are sent as null and clear the field.
func (c *Client) UpdateTodo(ctx context.Context, id string, fields map[string]any) (Todo, error) {
	var res envelope[Todo]

	if err := c.do(ctx, http.MethodPatch, "/todos/"+url.PathEscape(id), fields, &res); err != nil {
		return Todo{}, err
	}

	return res.Data, nil
}

// UpdateTodoText saves the title and description edited inline.
func (c *Client) UpdateTodoText(ctx context.Context, id, title string, description *string) error {
	_, err := c.UpdateTodo(ctx, id, map[string]any{"title": title, "description": description})

	return err
}

func (c *Client) SetCompleted(ctx context.Context, id string, completed bool) error {
	_, err := c.UpdateTodo(ctx, id, map[string]any{"completed": completed})

	return err
}

// SetStartAt sets or, with nil, clears the start date.
func (c *Client) SetStartAt(ctx context.Context, id string, startAt *time.Time) error {
	_, err := c.UpdateTodo(ctx, id, map[string]any{"startAt": startAt})

	return err
}

// SetDueAt sets or, with nil, clears the due date.
func (c *Client) SetDueAt(ctx context.Context, id string, dueAt *time.Time) error {
	_, err := c.UpdateTodo(ctx, id, map[string]any{"dueAt": dueAt})

	return err
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag

	if err := c.do(ctx, http.MethodGet, "/tags", nil, &tags); err != nil {
		return nil, err
	}

	return tags, nil
}

func (c *Client) CreateTag(ctx context.Context, name string, color *string) (Tag, error) {
	var res envelope[Tag]

	body := map[string]any{"name": name, "color": color}
	if err := c.do(ctx, http.MethodPost, "/tags", body, &res); err != nil {
		return Tag{}, err
	}

	return res.Data, nil
}

func (c *Client) AttachTag(ctx context.Context, todoID, tagID string) (AttachResult, error) {
	return c.attach(ctx, todoID, map[string]any{"tagId": tagID})
}

// AttachTagByName attaches the tag with that name, creating it first when missing.
func (c *Client) AttachTagByName(ctx context.Context, todoID, name string, color *string) (AttachResult, error) {
	return c.attach(ctx, todoID, map[string]any{"name": name, "color": color})
}

func (c *Client) DetachTag(ctx context.Context, todoID, tagID string) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(todoID)+"/tags/"+url.PathEscape(tagID), nil, nil)
}

func (c *Client) attach(ctx context.Context, todoID string, body map[string]any) (AttachResult, error) {
	var res envelope[AttachResult]

	if err := c.do(ctx, http.MethodPost, "/todos/"+url.PathEscape(todoID)+"/tags", body, &res); err != nil {
		return AttachResult{}, err
	}

	return res.Data, nil
}

// do sends the request and decodes a 2xx body into result. Failures surface the
// error string of the API envelope as a *failure.Failure carrying the status.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}

		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := c.Tokens().AccessToken; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fail := &failure.Failure{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

		var env envelope[json.RawMessage]
		if json.Unmarshal(respBody, &env) == nil {
			switch {
			case env.Error != "":
				fail.Message = env.Error
			case env.Message != "":
				fail.Message = env.Message
			}
		}

		log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg(fail.Message)

		return fail
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response of %s %s: %w", method, path, err)
	}

	return nil
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return failure.Is(err, http.StatusUnauthorized)
}
