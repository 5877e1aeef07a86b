package feed

import "github.com/finleymurray/scarepark-queue-sub000/internal/store"

// FeedResponse models the top-level structure of the ride-ops feed response.
type FeedResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int              `json:"page"`
		PageSize int              `json:"pageSize"`
		Total    int              `json:"total"`
		Items    []store.FeedItem `json:"items"`
	} `json:"data"`
}
