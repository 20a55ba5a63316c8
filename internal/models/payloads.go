package models

// These structs define the JSON payloads accepted and returned by the
// report-generator function.

// GenerateReportRequest names one event, or a batch of events, to (re)generate.
type GenerateReportRequest struct {
	EventID  string   `json:"eventId,omitempty"`
	EventIDs []string `json:"eventIds,omitempty"`
}

// GenerateReportResponse is the outcome for one event. StatusLog is the merge
// status log and is always returned, including for failed runs.
type GenerateReportResponse struct {
	Status          string   `json:"status"`
	EventID         string   `json:"eventId"`
	RunID           string   `json:"runId,omitempty"`
	ReportGCSUri    string   `json:"reportGcsUri,omitempty"`
	DriveFileID     string   `json:"driveFileId,omitempty"`
	PageCount       int      `json:"pageCount"`
	MergedDocuments int      `json:"mergedDocuments"`
	StatusLog       []string `json:"statusLog"`
	Error           string   `json:"error,omitempty"`
}

// BatchGenerateResponse wraps the per-event results of a batch request.
type BatchGenerateResponse struct {
	Results []*GenerateReportResponse `json:"results"`
}
