package constants

// JobStatus is the canonical status for rows in the extraction store.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // queued for processing
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusDone    JobStatus = "DONE"    // fields extracted and persisted
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
