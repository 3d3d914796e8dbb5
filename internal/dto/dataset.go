package dto

// ── 数据集模块 DTO ──

// DatasetStatusResponse 数据集装载状态
type DatasetStatusResponse struct {
	Ready         bool   `json:"ready"`
	SnapshotID    string `json:"snapshot_id,omitempty"`
	Source        string `json:"source,omitempty"`
	LoadedAt      string `json:"loaded_at,omitempty"`
	Occupations   int    `json:"occupations"`
	Graduates     int    `json:"graduates"`
	Crosswalk     int    `json:"crosswalk"`
	Inverse       int    `json:"inverse"`
	LastError     string `json:"last_error,omitempty"`
	LastAttemptAt string `json:"last_attempt_at,omitempty"`
}
