package types

// Message is a dto for linka-proxy output row representation
type Message struct {
	Type             MessageType            `json:"type"`
	Log              *Log                   `json:"log,omitempty"`
	ConnectionStatus *StatusRow             `json:"connectionStatus,omitempty"`
	State            *StateRow              `json:"state,omitempty"`
	Catalog          *Catalog               `json:"catalog,omitempty"`
	Spec             map[string]interface{} `json:"spec,omitempty"`
}

// Log is a dto for log row serialization
type Log struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusRow is a dto for connection check result serialization
type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

// StateRow carries the cursor position reached by a completed run
type StateRow struct {
	Cursor int64 `json:"cursor"`
}

// SyncSummary aggregates the row accounting of a single run
type SyncSummary struct {
	PreviousCursor int64 `json:"previous_cursor"`
	Cursor         int64 `json:"cursor"`
	RowsFetched    int64 `json:"rows_fetched"`
	RowsDropped    int64 `json:"rows_dropped"`
	RowsPushed     int64 `json:"rows_pushed"`
}
