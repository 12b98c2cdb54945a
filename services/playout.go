package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"Bitwaves/config"
	"Bitwaves/shared/httputil"
)

// PlayoutSlot is one unit of playout capacity: a request marker inside
// an upcoming break into which exactly one track can be placed.
type PlayoutSlot struct {
	BreakNoteItemGuid string `json:"breakNoteItemGuid"`
	RequestItemGuid   string `json:"requestItemGuid"`
}

// Track is a requestable catalog entry from the playout system.
type Track struct {
	Guid            string `json:"guid"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// PlayoutAgent is what the processor needs from the playout system.
type PlayoutAgent interface {
	GetAvailableSlots(ctx context.Context) ([]PlayoutSlot, error)
	RequestTrack(ctx context.Context, trackGuid string, slot PlayoutSlot, label string) (bool, error)
}

// PlayItClient talks to the PlayIt Live HTTP API.
type PlayItClient struct {
	cfg    *config.Config
	client *http.Client
}

func NewPlayItClient(cfg *config.Config) *PlayItClient {
	return &PlayItClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.AgentTimeout,
		},
	}
}

// GetAvailableSlots returns the open request slots the playout system is
// currently advertising.
func (p *PlayItClient) GetAvailableSlots(ctx context.Context) ([]PlayoutSlot, error) {
	slotsURL := httputil.BuildQueryURL(p.cfg.PlayItLiveURL+"/api/v1/requestableItems", map[string]string{
		"apiKey": p.cfg.PlayItLiveAPIKey,
	})

	resp, err := httputil.MakeRequest(ctx, slotsURL, nil, p.client)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available slots: %w", err)
	}

	var payload struct {
		Items []PlayoutSlot `json:"items"`
	}
	if err := httputil.DecodeJSONResponse(resp, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode slots response: %w", err)
	}
	return payload.Items, nil
}

// RequestTrack places a track into a slot. A false return without error
// means the playout system rejected the placement (slot already taken).
func (p *PlayItClient) RequestTrack(ctx context.Context, trackGuid string, slot PlayoutSlot, label string) (bool, error) {
	requestURL := fmt.Sprintf("%s/api/v1/requestTrack", p.cfg.PlayItLiveURL)
	data := url.Values{}
	data.Set("apiKey", p.cfg.PlayItLiveAPIKey)
	data.Set("trackGuid", trackGuid)
	data.Set("breakNoteItemGuid", slot.BreakNoteItemGuid)
	data.Set("requestItemGuid", slot.RequestItemGuid)
	data.Set("requestedBy", label)

	req, err := http.NewRequestWithContext(ctx, "POST", requestURL, strings.NewReader(data.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to request track: %w", err)
	}

	var payload struct {
		Success bool `json:"success"`
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return false, fmt.Errorf("playout system returned status %d", resp.StatusCode)
	}
	if err := httputil.DecodeJSONResponse(resp, &payload); err != nil {
		return false, err
	}
	return payload.Success, nil
}

// GetRequestableTracks lists the tracks in the configured requestable
// track group, for the public search/browse page.
func (p *PlayItClient) GetRequestableTracks(ctx context.Context) ([]Track, error) {
	tracksURL := httputil.BuildQueryURL(p.cfg.PlayItLiveURL+"/api/v1/tracks", map[string]string{
		"apiKey":     p.cfg.PlayItLiveAPIKey,
		"trackGroup": p.cfg.TrackGroupName,
	})

	resp, err := httputil.MakeRequest(ctx, tracksURL, nil, p.client)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requestable tracks: %w", err)
	}

	var payload struct {
		Tracks []Track `json:"tracks"`
	}
	if err := httputil.DecodeJSONResponse(resp, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode tracks response: %w", err)
	}
	return payload.Tracks, nil
}

// DeliveryLabel is what the studio sees against the placed track.
func DeliveryLabel(requestedBy, message string) string {
	if message == "" {
		return requestedBy
	}
	return requestedBy + " — " + message
}
