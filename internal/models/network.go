package models

import "time"

// ConnectivityScore is a coarse connection quality rating derived from
// round-trip latency and reachability.
type ConnectivityScore string

const (
	ScoreExcellent ConnectivityScore = "excellent"
	ScoreGood      ConnectivityScore = "good"
	ScorePoor      ConnectivityScore = "poor"
	ScoreOffline   ConnectivityScore = "offline"
)

// NetworkStatus combines the binary online signal with connection metadata
// and the derived quality score.
type NetworkStatus struct {
	IsOnline       bool              `json:"is_online"`
	ConnectionType string            `json:"connection_type,omitempty"` // e.g. "wifi", "cellular", "ethernet"
	EffectiveType  string            `json:"effective_type,omitempty"`  // e.g. "4g", "3g"
	DownlinkMbps   float64           `json:"downlink_mbps,omitempty"`
	RTT            time.Duration     `json:"rtt,omitempty"`
	SaveData       bool              `json:"save_data,omitempty"`
	LastConnected  *time.Time        `json:"last_connected,omitempty"`
	Score          ConnectivityScore `json:"connectivity_score"`
}
