package models

import "time"

// Report job statuses stored in Firestore.
const (
	StatusGenerating = "GENERATING"
	StatusGenerated  = "GENERATED"
	StatusSigned     = "SIGNED"
	StatusFailed     = "FAILED"
)

// ReportJob tracks the generated and countersigned report of one event in
// Firestore. The document ID is the event ID.
type ReportJob struct {
	EventID         string    `firestore:"eventId,omitempty"`
	ProgramName     string    `firestore:"programName,omitempty"`
	Status          string    `firestore:"status,omitempty"`
	ErrorDetails    string    `firestore:"errorDetails,omitempty"`
	PageCount       int       `firestore:"pageCount,omitempty"`
	MergedDocuments int       `firestore:"mergedDocuments"`
	StatusLog       []string  `firestore:"statusLog,omitempty"`
	ReportGCSUri    string    `firestore:"reportGcsUri,omitempty"`
	DriveFileID     string    `firestore:"driveFileId,omitempty"`
	SignedGCSUri    string    `firestore:"signedGcsUri,omitempty"`
	SignedHash      string    `firestore:"signedHash,omitempty"`
	SignedPageCount int       `firestore:"signedPageCount,omitempty"`
	RunID           string    `firestore:"runId,omitempty"`
	ExecutionID     string    `firestore:"executionId,omitempty"` // approval workflow execution
	UpdatedAt       time.Time `firestore:"updatedAt,omitempty"`
}
