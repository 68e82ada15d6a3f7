// Command smoke runs the authorization walkthrough against a live API:
// two accounts, a post the second may not edit, a friendship only the
// requestee may accept, and a token that stops working after logout.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"socialhub.dev/internal/ids"
	"socialhub.dev/internal/obs"
)

type client struct {
	base string
	http *http.Client
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID int64 `json:"id"`
	} `json:"user"`
}

func (c *client) call(ctx context.Context, method, path, token string, body any, out any) (int, error) {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) expect(ctx context.Context, want int, method, path, token string, body, out any) error {
	got, err := c.call(ctx, method, path, token, body, out)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s %s: expected %d, got %d", method, path, want, got)
	}
	return nil
}

func (c *client) register(ctx context.Context, tag string) (session, error) {
	name := "smoke" + strings.ToLower(ids.New()[16:]) + tag
	var s session
	err := c.expect(ctx, http.StatusCreated, http.MethodPost, "/register", "", map[string]any{
		"username": name,
		"email":    name + "@example.com",
		"password": "smokepass1",
	}, &s)
	return s, err
}

func run(ctx context.Context, c *client) error {
	alice, err := c.register(ctx, "a")
	if err != nil {
		return err
	}
	bob, err := c.register(ctx, "b")
	if err != nil {
		return err
	}

	var post struct {
		ID int64 `json:"id"`
	}
	if err := c.expect(ctx, http.StatusCreated, http.MethodPost, "/posts", alice.Token,
		map[string]any{"userId": alice.User.ID, "content": "smoke"}, &post); err != nil {
		return err
	}
	if err := c.expect(ctx, http.StatusForbidden, http.MethodPost, "/posts", bob.Token,
		map[string]any{"userId": alice.User.ID, "content": "impersonated"}, nil); err != nil {
		return err
	}
	postPath := fmt.Sprintf("/posts/%d", post.ID)
	if err := c.expect(ctx, http.StatusForbidden, http.MethodPut, postPath, bob.Token,
		map[string]any{"content": "hijack"}, nil); err != nil {
		return err
	}

	var friendship struct {
		ID int64 `json:"id"`
	}
	if err := c.expect(ctx, http.StatusCreated, http.MethodPost, "/friendships", alice.Token,
		map[string]any{"requesterId": alice.User.ID, "requesteeId": bob.User.ID}, &friendship); err != nil {
		return err
	}
	fPath := fmt.Sprintf("/friendships/%d", friendship.ID)
	if err := c.expect(ctx, http.StatusForbidden, http.MethodPut, fPath, alice.Token,
		map[string]any{"requesteeId": alice.User.ID, "status": "ACCEPTED"}, nil); err != nil {
		return err
	}
	if err := c.expect(ctx, http.StatusOK, http.MethodPut, fPath, bob.Token,
		map[string]any{"requesteeId": bob.User.ID, "status": "ACCEPTED"}, nil); err != nil {
		return err
	}

	if err := c.expect(ctx, http.StatusOK, http.MethodPost, "/logout", bob.Token, nil, nil); err != nil {
		return err
	}
	if err := c.expect(ctx, http.StatusUnauthorized, http.MethodGet, postPath, bob.Token, nil, nil); err != nil {
		return err
	}

	return c.expect(ctx, http.StatusOK, http.MethodDelete, fmt.Sprintf("/account/%d", alice.User.ID), alice.Token, nil, nil)
}

func main() {
	base := os.Getenv("SMOKE_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := &client{base: strings.TrimRight(base, "/"), http: &http.Client{Timeout: 5 * time.Second}}
	if err := run(ctx, c); err != nil {
		obs.Logger().Error("smoke test failed", "base", base, "error", err)
		os.Exit(1)
	}
	obs.Logger().Info("smoke test passed", "base", base)
}
