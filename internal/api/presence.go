package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cs-ladder/internal/config"

	"github.com/valyala/fasthttp"
)

// PresenceClient asks the game server who is currently connected.
type PresenceClient struct {
	url    string
	client *fasthttp.Client
}

type presenceResponse struct {
	Players []string `json:"players"`
}

func NewPresenceClient(cfg *config.Config) *PresenceClient {
	return &PresenceClient{
		url: cfg.PresenceURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Enabled reports whether a presence endpoint is configured.
func (c *PresenceClient) Enabled() bool {
	return c.url != ""
}

// OnlinePlayers fetches the current list of connected player names.
func (c *PresenceClient) OnlinePlayers(ctx context.Context) ([]string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("presence API error: %d", resp.StatusCode())
	}

	var result presenceResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode presence response: %w", err)
	}
	return result.Players, nil
}
