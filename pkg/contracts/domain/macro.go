package domain

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which family of macros runs against an order export
type Mode string

const (
	// ModeERP registers orders for the ERP upload (one row per order line)
	ModeERP Mode = "erp"
	// ModeBundle prepares merge-packaging (합포장) sheets
	ModeBundle Mode = "bundle"
)

// Channel identifies a marketplace with its own column conventions
type Channel string

const (
	ChannelEtc     Channel = "etc"
	ChannelZigzag  Channel = "zigzag"
	ChannelAli     Channel = "ali"
	ChannelBrandi  Channel = "brandi"
	ChannelGmarket Channel = "gmarket"
)

// AllModes lists the supported modes in display order
func AllModes() []Mode {
	return []Mode{ModeERP, ModeBundle}
}

// AllChannels lists the supported channels in menu order
func AllChannels() []Channel {
	return []Channel{ChannelEtc, ChannelZigzag, ChannelAli, ChannelBrandi, ChannelGmarket}
}

// ParseMode converts user input into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeERP:
		return ModeERP, nil
	case ModeBundle, "happojang":
		return ModeBundle, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// ParseChannel converts user input into a Channel. Korean mall names are accepted too.
func ParseChannel(s string) (Channel, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "etc", "기타", "기타사이트":
		return ChannelEtc, nil
	case "zigzag", "지그재그":
		return ChannelZigzag, nil
	case "ali", "aliexpress", "알리", "알리익스프레스":
		return ChannelAli, nil
	case "brandi", "brandy", "브랜디":
		return ChannelBrandi, nil
	case "gmarket", "auction", "gok", "g옥", "지마켓", "옥션":
		return ChannelGmarket, nil
	}
	return "", fmt.Errorf("unknown channel %q", s)
}

// DisplayName returns the mall name used in logs and reports
func (c Channel) DisplayName() string {
	switch c {
	case ChannelEtc:
		return "기타사이트"
	case ChannelZigzag:
		return "지그재그"
	case ChannelAli:
		return "알리익스프레스"
	case ChannelBrandi:
		return "브랜디"
	case ChannelGmarket:
		return "G마켓/옥션"
	}
	return string(c)
}

// SheetSummary describes one sheet of a finished workbook
type SheetSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// RunResult is returned for every finished macro run
type RunResult struct {
	RunID      string         `json:"run_id"`
	Mode       Mode           `json:"mode"`
	Channel    Channel        `json:"channel"`
	InputPath  string         `json:"input_path"`
	OutputPath string         `json:"output_path,omitempty"`
	Rows       int            `json:"rows"`
	Sheets     []SheetSummary `json:"sheets,omitempty"`
	Warnings   int            `json:"warnings"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   time.Duration  `json:"duration"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
}
