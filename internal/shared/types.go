package shared

// Task types
const (
	TypeCleanupExport = "dataset:cleanup_export"
	TypeSweepExports  = "dataset:sweep_exports"
)

// Queues
const (
	QueueDefault     = "default"
	QueueMaintenance = "low"
)

// Context keys set by middleware
const (
	ContextUserID    = "user_id"
	ContextRequestID = "request_id"
)
