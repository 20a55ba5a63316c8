package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/eventreportflow/internal/gcp"
	"github.com/Lllllllleong/eventreportflow/internal/models"
	"github.com/Lllllllleong/eventreportflow/internal/report"
)

// ApprovalStatusApproved is written to the sheet once a countersigned report is filed.
const ApprovalStatusApproved = "Approved"

// SignedArchiverConfig holds configuration for the signed report archiver.
type SignedArchiverConfig struct {
	ProjectID      string
	SpreadsheetID  string
	EventsSheet    string
	DriveFolderID  string
	ReportsBucket  string
	SignedBucket   string
	CollectionName string
}

// SignedArchiverFunction files countersigned reports dropped into a bucket.
type SignedArchiverFunction struct {
	storageClient   *storage.Client
	firestoreClient *firestore.Client
	sheet           *gcp.EventSheet
	drive           *gcp.DriveClient
	config          SignedArchiverConfig
}

// GCSEvent is the payload of a storage object finalize event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// LoadSignedArchiverConfig reads and validates the archiver's environment.
// Countersigned uploads must arrive in their own bucket so that reports the
// generator and archiver write never trigger an archive run.
func LoadSignedArchiverConfig() (SignedArchiverConfig, error) {
	config := SignedArchiverConfig{
		ProjectID:      gcp.GetEnv("PROJECT_ID", ""),
		SpreadsheetID:  gcp.GetEnv("SPREADSHEET_ID", ""),
		EventsSheet:    gcp.GetEnv("EVENTS_SHEET", "Events"),
		DriveFolderID:  gcp.GetEnv("DRIVE_FOLDER_ID", ""),
		ReportsBucket:  gcp.GetEnv("REPORTS_BUCKET", ""),
		SignedBucket:   gcp.GetEnv("SIGNED_BUCKET", ""),
		CollectionName: gcp.GetEnv("FIRESTORE_COLLECTION", "reports"),
	}
	if config.ProjectID == "" {
		return config, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if config.SpreadsheetID == "" || config.ReportsBucket == "" || config.SignedBucket == "" {
		return config, fmt.Errorf("SPREADSHEET_ID, REPORTS_BUCKET and SIGNED_BUCKET must be set")
	}
	if config.SignedBucket == config.ReportsBucket {
		return config, fmt.Errorf("SIGNED_BUCKET must differ from REPORTS_BUCKET")
	}
	return config, nil
}

// accepts returns the event ID of a countersigned upload, or false when the
// object is not one.
func (c SignedArchiverConfig) accepts(e GCSEvent) (string, bool) {
	if e.Bucket != c.SignedBucket || e.Bucket == c.ReportsBucket {
		return "", false
	}
	return SignedEventID(e.Name)
}

// NewSignedArchiver creates a new SignedArchiverFunction instance.
func NewSignedArchiver(ctx context.Context) (*SignedArchiverFunction, error) {
	config, err := LoadSignedArchiverConfig()
	if err != nil {
		return nil, err
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	sheet, err := gcp.NewEventSheet(ctx, config.SpreadsheetID, config.EventsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets client: %w", err)
	}
	drive, err := gcp.NewDriveClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive client: %w", err)
	}

	slog.Info("Signed report archiver initialized.", "signedBucket", config.SignedBucket, "reportsBucket", config.ReportsBucket)
	return &SignedArchiverFunction{
		storageClient:   storageClient,
		firestoreClient: firestoreClient,
		sheet:           sheet,
		drive:           drive,
		config:          config,
	}, nil
}

// Process files one uploaded countersigned report.
func (f *SignedArchiverFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	logCtx.Info("Processing countersigned report.")

	eventID, ok := f.config.accepts(e)
	if !ok {
		logCtx.Info("Object is not a countersigned report. Skipping.")
		return nil
	}
	logCtx = logCtx.With("eventId", eventID)
	jobRef := f.firestoreClient.Collection(f.config.CollectionName).Doc(eventID)

	data, err := gcp.ReadGCSObject(ctx, f.storageClient, e.Bucket, e.Name)
	if err != nil {
		logCtx.Error("Failed to download countersigned report", "error", err)
		return err
	}

	fileHash := calculateHash(data)
	logCtx = logCtx.With("fileHash", fileHash)
	isDuplicate, existing, err := f.isDuplicate(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check for duplicate", "error", err)
		return err
	}
	if isDuplicate {
		logCtx.Info("Duplicate file detected. Skipping.", "existingEventId", existing)
		return nil
	}

	pageCount, optimized, err := validateSigned(data)
	if err != nil {
		return markFailed(ctx, logCtx, jobRef, "countersigned report rejected", err)
	}
	logCtx = logCtx.With("pageCount", pageCount)

	objectName := fmt.Sprintf("%s/signed.pdf", eventID)
	if err := gcp.SaveToGCS(ctx, f.storageClient.Bucket(f.config.ReportsBucket), objectName, "application/pdf", optimized); err != nil {
		return markFailed(ctx, logCtx, jobRef, "failed to archive countersigned report", err)
	}

	folderID, err := f.drive.EnsureFolder(ctx, eventID, f.config.DriveFolderID)
	if err != nil {
		return markFailed(ctx, logCtx, jobRef, "failed to prepare Drive folder", err)
	}
	fileID, err := f.drive.Upload(ctx, SignedFileName(eventID), folderID, "application/pdf", optimized)
	if err != nil {
		return markFailed(ctx, logCtx, jobRef, "failed to upload countersigned report to Drive", err)
	}

	err = f.sheet.UpdateFields(ctx, eventID, map[string]string{
		models.ColSignedPDFID:         fileID,
		models.ColAdminApprovalStatus: ApprovalStatusApproved,
	})
	if err != nil {
		return markFailed(ctx, logCtx, jobRef, "failed to record approval in sheet", err)
	}

	job := map[string]interface{}{
		"eventId":         eventID,
		"status":          models.StatusSigned,
		"signedGcsUri":    fmt.Sprintf("gs://%s/%s", f.config.ReportsBucket, objectName),
		"signedHash":      fileHash,
		"signedPageCount": pageCount,
		"updatedAt":       time.Now(),
	}
	if _, err := jobRef.Set(ctx, job, firestore.MergeAll); err != nil {
		return markFailed(ctx, logCtx, jobRef, "failed to update status to SIGNED", err)
	}

	logCtx.Info("Countersigned report filed.", "driveFileId", fileID)
	return nil
}

func (f *SignedArchiverFunction) isDuplicate(ctx context.Context, fileHash string) (bool, string, error) {
	docs, err := f.firestoreClient.Collection(f.config.CollectionName).Where("signedHash", "==", fileHash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return false, "", fmt.Errorf("failed to query for duplicates: %w", err)
	}
	if len(docs) > 0 {
		var job models.ReportJob
		if err := docs[0].DataTo(&job); err != nil || job.EventID == "" {
			return true, docs[0].Ref.ID, nil
		}
		return true, job.EventID, nil
	}
	return false, "", nil
}

// SignedEventID extracts the event ID from an object named
// "<eventId>/<anything>.pdf".
func SignedEventID(objectName string) (string, bool) {
	dir, file := path.Split(objectName)
	eventID := strings.Trim(dir, "/")
	if eventID == "" || strings.Contains(eventID, "/") {
		return "", false
	}
	if !strings.EqualFold(path.Ext(file), ".pdf") {
		return "", false
	}
	return eventID, true
}

// SignedFileName is the Drive file name of an event's countersigned report.
func SignedFileName(eventID string) string {
	return fmt.Sprintf("IICReport_%s_signed.pdf", eventID)
}

// validateSigned checks that data is a non-empty PDF and returns its page
// count with an optimized copy. The original is kept if optimization fails
// or does not shrink it.
func validateSigned(data []byte) (int, []byte, error) {
	if kind := report.Classify(data); kind != report.KindPDF {
		return 0, nil, fmt.Errorf("expected a pdf, got %s content", kind)
	}
	pages, err := report.CountPages(data)
	if err != nil {
		return 0, nil, err
	}
	if pages == 0 {
		return 0, nil, fmt.Errorf("pdf has 0 pages")
	}
	optimized, err := report.Optimize(data)
	if err != nil || len(optimized) >= len(data) {
		if err != nil {
			slog.Warn("Keeping countersigned report unoptimized.", "error", err)
		}
		return pages, data, nil
	}
	return pages, optimized, nil
}

func calculateHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
