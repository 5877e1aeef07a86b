// Package feed polls the upstream ride-ops system for raw attraction states
// and turns state transitions into board records. The feed is optional;
// venues running staff-entry only just disable it.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/finleymurray/scarepark-queue-sub000/config"
	"github.com/finleymurray/scarepark-queue-sub000/internal/board"
	"github.com/finleymurray/scarepark-queue-sub000/internal/live"
	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
	"github.com/finleymurray/scarepark-queue-sub000/internal/notification"
	"github.com/finleymurray/scarepark-queue-sub000/internal/store"
)

// Service orchestrates the feed polling loop.
type Service struct {
	cfg        *config.Config
	store      store.Store
	client     *http.Client
	workerPool *notification.WorkerPool
	board      *board.Service
	hub        *live.Hub
}

// NewService creates and initializes a new feed service. The worker pool,
// board service and hub may be nil in tests; each side effect is skipped when
// its target is absent.
func NewService(cfg *config.Config, s store.Store, pool *notification.WorkerPool, b *board.Service, hub *live.Hub) *Service {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.Feed.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.Feed.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Feed will not use a proxy.", cfg.Feed.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Service{
		cfg:   cfg,
		store: s,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		workerPool: pool,
		board:      b,
		hub:        hub,
	}
}

// classify maps the feed's raw state code onto a board status using the
// configured code lists. Unrecognized codes read as at-capacity rather than
// closed so a new upstream code never paints a running ride as down.
func (s *Service) classify(stateCode int) model.Status {
	for _, v := range s.cfg.Feed.StateOperatingValues {
		if stateCode == v {
			return model.StatusOperating
		}
	}
	for _, v := range s.cfg.Feed.StateClosedValues {
		if stateCode == v {
			return model.StatusClosed
		}
	}
	for _, v := range s.cfg.Feed.StateDelayedValues {
		if stateCode == v {
			return model.StatusDelayed
		}
	}
	return model.StatusAtCapacity
}

// Run starts the polling loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Feed.Enabled {
		log.Println("Feed polling is disabled. Not starting.")
		return
	}
	log.Println("Starting feed service...")

	s.SyncOnce(ctx)

	timer := time.NewTimer(s.cfg.Feed.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Feed service shutting down.")
			return
		case <-timer.C:
			s.SyncOnce(ctx)
			timer.Reset(s.cfg.Feed.Interval)
		}
	}
}

// SyncOnce performs a single feed round trip and records whatever changed.
func (s *Service) SyncOnce(ctx context.Context) {
	log.Println("Executing feed sync cycle...")
	now := time.Now().UTC()

	// Step 1: Fetch all pages from the upstream feed.
	var allItems []store.FeedItem
	total := 1
	pageSize := s.cfg.Feed.Request.PageSize
	var fetchErr error
	for page := 1; (page-1)*pageSize < total; page++ {
		resp, err := s.fetchPage(ctx, page)
		if err != nil {
			log.Printf("Error fetching page %d: %v", page, err)
			fetchErr = err
			break
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		allItems = append(allItems, resp.Data.Items...)
		log.Printf("Fetched page %d/%d, total items so far: %d", page, (total/pageSize)+1, len(allItems))
	}

	// A failed fetch with nothing retrieved means no evidence of change;
	// leave the board alone rather than recording from a partial view.
	if fetchErr != nil && len(allItems) == 0 {
		log.Println("Feed cycle aborted due to fetch error with no items retrieved.")
		return
	}
	if len(allItems) == 0 {
		log.Println("Feed cycle finished: no items to process.")
		return
	}

	for i := range allItems {
		parsedTime, err := s.parseTimestamp(allItems[i].UpdatedTime)
		if err != nil {
			log.Printf("Warning: could not parse updatedTime for attraction %d: %v", allItems[i].ID, err)
			continue
		}
		allItems[i].UpdatedTimeParsed = parsedTime
	}

	// Step 2: Refresh the attraction directory.
	if err := s.store.UpsertAttractions(ctx, allItems); err != nil {
		log.Printf("Error upserting attractions: %v", err)
		return
	}

	// Step 3: Diff the snapshot against current states and append records.
	result, err := s.store.ApplyFeed(ctx, now, allItems, s.classify)
	if err != nil {
		log.Printf("Error applying feed snapshot: %v", err)
		return
	}

	if result.Changed > 0 {
		date := now.Format("2006-01-02")
		if s.board != nil {
			s.board.Invalidate(date)
		}
		if s.hub != nil {
			s.hub.Broadcast(date)
		}
	}

	if len(result.Reopened) > 0 && s.workerPool != nil {
		log.Printf("Dispatching notifications for %d attractions", len(result.Reopened))
		for _, id := range result.Reopened {
			s.workerPool.Dispatch(id)
		}
	}

	log.Println("Feed cycle finished.")
}

// parseTimestamp converts the feed's timestamp string into a time.Time,
// respecting the configured timezone.
func (s *Service) parseTimestamp(tsStr *string) (*time.Time, error) {
	if tsStr == nil || *tsStr == "" {
		return nil, nil
	}

	loc := time.UTC
	if s.cfg.Feed.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(s.cfg.Feed.Timezone)
		if err != nil {
			return nil, fmt.Errorf("failed to load timezone %q: %w", s.cfg.Feed.Timezone, err)
		}
	}

	layout := "2006-01-02 15:04:05" // The layout of the timestamp from the feed
	parsedTime, err := time.ParseInLocation(layout, *tsStr, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp %q: %w", *tsStr, err)
	}

	return &parsedTime, nil
}

// fetchPage fetches a single page of attraction data from the upstream feed.
func (s *Service) fetchPage(ctx context.Context, page int) (*FeedResponse, error) {
	payload := make(map[string]any)
	for k, v := range s.cfg.Feed.Request.Payload {
		payload[k] = v
	}
	payload["page"] = page

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Feed.Request.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	for key, value := range s.cfg.Feed.Request.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var feedResp FeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feedResp); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}
	if feedResp.Code != 0 {
		return nil, fmt.Errorf("feed returned error code %d", feedResp.Code)
	}

	return &feedResp, nil
}
