package strava

import (
	"context"
	"fmt"

	"strarun-gateway/internal/transport"
)

// Client speaks the upstream dashboard-backend contract. It performs no
// caching; the data facade decides what gets memoized.
type Client struct {
	http *transport.Client
}

func NewClient(httpClient *transport.Client) *Client {
	return &Client{http: httpClient}
}

func (c *Client) AuthStatus(ctx context.Context) (AuthStatus, error) {
	var status AuthStatus
	err := c.http.Get(ctx, "/auth/status", &status)
	return status, err
}

func (c *Client) AuthURL(ctx context.Context) (AuthURL, error) {
	var out AuthURL
	err := c.http.Get(ctx, "/auth/strava", &out)
	return out, err
}

func (c *Client) ExchangeToken(ctx context.Context, code string) (Token, error) {
	var token Token
	err := c.http.Post(ctx, "/auth/token", map[string]string{"code": code}, &token)
	return token, err
}

func (c *Client) RefreshToken(ctx context.Context) (Token, error) {
	var token Token
	err := c.http.Post(ctx, "/auth/refresh", map[string]string{}, &token)
	return token, err
}

func (c *Client) Activities(ctx context.Context, page, perPage int) ([]Activity, error) {
	var activities []Activity
	err := c.http.Get(ctx, fmt.Sprintf("/activities?page=%d&per_page=%d", page, perPage), &activities)
	return activities, err
}

func (c *Client) Activity(ctx context.Context, id int64) (ActivityDetail, error) {
	var detail ActivityDetail
	err := c.http.Get(ctx, fmt.Sprintf("/activities/%d", id), &detail)
	return detail, err
}

func (c *Client) ActivityLaps(ctx context.Context, id int64) ([]Lap, error) {
	var laps []Lap
	err := c.http.Get(ctx, fmt.Sprintf("/activities/%d/laps", id), &laps)
	return laps, err
}

func (c *Client) AthleteStats(ctx context.Context, athleteID int64) (AthleteStats, error) {
	var stats AthleteStats
	err := c.http.Get(ctx, fmt.Sprintf("/stats/%d", athleteID), &stats)
	return stats, err
}

func (c *Client) Athlete(ctx context.Context) (Athlete, error) {
	var athlete Athlete
	err := c.http.Get(ctx, "/athlete", &athlete)
	return athlete, err
}
