// Package api contains the HTTP response contracts.
package api

import (
	"ordermacro/pkg/contracts/domain"
)

// ChannelInfo is one entry of the channel listing
type ChannelInfo struct {
	ID          domain.Channel `json:"id"`
	DisplayName string         `json:"display_name"`
}

// ChannelListResponse lists what the server can run. Macros carries the
// service's macro descriptions.
type ChannelListResponse struct {
	Modes    []domain.Mode `json:"modes"`
	Channels []ChannelInfo `json:"channels"`
	Macros   interface{}   `json:"macros"`
}

// RunListResponse is returned by GET /api/v1/runs
type RunListResponse struct {
	Runs  []*domain.RunResult `json:"runs"`
	Count int                 `json:"count"`
}
