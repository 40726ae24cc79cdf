package models

// TimeRange is a half-open [Start, End) window in "15:04".
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
