package models

// StorageBreakdown splits storage usage by engine subsystem, in bytes.
type StorageBreakdown struct {
	EntityStore  int64 `json:"entity_store"`
	OperationLog int64 `json:"operation_log"`
	Cache        int64 `json:"cache"`
	Other        int64 `json:"other"`
}

// StorageQuota is a point-in-time snapshot of local storage consumption.
type StorageQuota struct {
	Usage        int64            `json:"usage"`
	Quota        int64            `json:"quota"`
	UsagePercent float64          `json:"usage_percentage"`
	Breakdown    StorageBreakdown `json:"breakdown"`
}
