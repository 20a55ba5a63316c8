package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"github.com/Lllllllleong/eventreportflow/internal/fetch"
	"github.com/Lllllllleong/eventreportflow/internal/gcp"
	"github.com/Lllllllleong/eventreportflow/internal/models"
	"github.com/Lllllllleong/eventreportflow/internal/report"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// batchLimit caps how many events of one batch request are generated at once.
const batchLimit = 4

// ReportGeneratorConfig holds configuration for the report generator service.
type ReportGeneratorConfig struct {
	ProjectID         string
	SpreadsheetID     string
	EventsSheet       string
	DriveFolderID     string
	ReportsBucket     string
	CollectionName    string
	WorkflowID        string
	WorkflowLocation  string
	FetchTimeout      time.Duration
	DirectDownloadURL string
	LogoDir           string
	FontDir           string
	InstitutionName   string
}

// ReportGeneratorFunction holds dependencies for report generation.
type ReportGeneratorFunction struct {
	storageClient    *storage.Client
	firestoreClient  *firestore.Client
	executionsClient *executions.Client
	sheet            *gcp.EventSheet
	drive            *gcp.DriveClient
	generator        *report.Generator
	config           ReportGeneratorConfig
}

// LoadReportGeneratorConfig reads and validates the generator's environment.
func LoadReportGeneratorConfig() (ReportGeneratorConfig, error) {
	config := ReportGeneratorConfig{
		ProjectID:         gcp.GetEnv("PROJECT_ID", ""),
		SpreadsheetID:     gcp.GetEnv("SPREADSHEET_ID", ""),
		EventsSheet:       gcp.GetEnv("EVENTS_SHEET", "Events"),
		DriveFolderID:     gcp.GetEnv("DRIVE_FOLDER_ID", ""),
		ReportsBucket:     gcp.GetEnv("REPORTS_BUCKET", ""),
		CollectionName:    gcp.GetEnv("FIRESTORE_COLLECTION", "reports"),
		WorkflowID:        gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation:  gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		FetchTimeout:      gcp.GetEnvDuration("FETCH_TIMEOUT", fetch.DefaultTimeout),
		DirectDownloadURL: gcp.GetEnv("DIRECT_DOWNLOAD_URL", fetch.DefaultDirectURL),
		LogoDir:           gcp.GetEnv("LOGO_DIR", ""),
		FontDir:           gcp.GetEnv("FONT_DIR", ""),
		InstitutionName:   gcp.GetEnv("INSTITUTION_NAME", ""),
	}
	if config.ProjectID == "" {
		return config, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if config.SpreadsheetID == "" || config.ReportsBucket == "" {
		return config, fmt.Errorf("SPREADSHEET_ID and REPORTS_BUCKET must be set")
	}
	return config, nil
}

// Branding builds the report template from the configuration.
func (c ReportGeneratorConfig) Branding() report.Branding {
	brand := report.DefaultBranding()
	if c.InstitutionName != "" {
		brand.Institution = c.InstitutionName
	}
	brand.LoadLogos(c.LogoDir)
	brand.LoadFonts(c.FontDir)
	return brand
}

// NewReportGenerator creates a new ReportGeneratorFunction instance.
func NewReportGenerator(ctx context.Context) (*ReportGeneratorFunction, error) {
	config, err := LoadReportGeneratorConfig()
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

	f := &ReportGeneratorFunction{
		storageClient:   storageClient,
		firestoreClient: firestoreClient,
		sheet:           sheet,
		drive:           drive,
		config:          config,
	}
	if config.WorkflowID != "" {
		f.executionsClient, err = executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
	}

	direct := fetch.NewDirectDownloader(&http.Client{Timeout: config.FetchTimeout}, config.DirectDownloadURL)
	fetcher := fetch.New(drive, direct, config.FetchTimeout)
	f.generator = report.NewGenerator(config.Branding(), fetcher)

	slog.Info("Report generator initialized.", "sheet", config.EventsSheet, "bucket", config.ReportsBucket, "workflowId", config.WorkflowID)
	return f, nil
}

// Process generates, stores and records the report for one event. The
// response always carries the status log, including for failed runs.
func (f *ReportGeneratorFunction) Process(ctx context.Context, eventID string) (*models.GenerateReportResponse, error) {
	eventID = strings.TrimSpace(eventID)
	resp := &models.GenerateReportResponse{EventID: eventID, Status: models.StatusFailed, StatusLog: []string{}}
	if eventID == "" {
		resp.Error = "eventId is required"
		return resp, fmt.Errorf("eventId is required")
	}
	resp.RunID = uuid.NewString()
	logCtx := slog.With("eventId", eventID, "runId", resp.RunID)
	logCtx.Info("Starting report generation.")

	jobRef := f.firestoreClient.Collection(f.config.CollectionName).Doc(eventID)

	rec, err := f.sheet.GetEvent(ctx, eventID)
	if err != nil {
		resp.Error = err.Error()
		if errors.Is(err, gcp.ErrEventNotFound) {
			logCtx.Warn("Event not found in sheet.")
			return resp, err
		}
		return resp, f.handleError(ctx, logCtx, jobRef, "failed to read event record", err)
	}

	job := generatingFields(eventID, rec.ProgramName, resp.RunID, time.Now())
	if _, err := jobRef.Set(ctx, job, firestore.MergeAll); err != nil {
		logCtx.Error("Failed to create report job", "error", err)
		resp.Error = err.Error()
		return resp, fmt.Errorf("failed to create report job: %w", err)
	}

	result, err := f.generator.Generate(ctx, rec)
	if result != nil {
		resp.StatusLog = result.Log.Lines()
	}
	if err != nil {
		resp.Error = err.Error()
		return resp, f.handleError(ctx, logCtx, jobRef, "failed to generate report", err)
	}
	resp.PageCount = result.Pages
	resp.MergedDocuments = result.Merged
	logCtx = logCtx.With("pageCount", result.Pages, "mergedDocuments", result.Merged)
	logCtx.Info("Report assembled.")

	objectName := fmt.Sprintf("%s/report.pdf", eventID)
	if err := gcp.SaveToGCS(ctx, f.storageClient.Bucket(f.config.ReportsBucket), objectName, "application/pdf", result.PDF); err != nil {
		resp.Error = err.Error()
		return resp, f.handleError(ctx, logCtx, jobRef, "failed to archive report", err)
	}
	resp.ReportGCSUri = fmt.Sprintf("gs://%s/%s", f.config.ReportsBucket, objectName)

	folderID, err := f.drive.EnsureFolder(ctx, eventID, f.config.DriveFolderID)
	if err != nil {
		resp.Error = err.Error()
		return resp, f.handleError(ctx, logCtx, jobRef, "failed to prepare Drive folder", err)
	}
	fileID, err := f.drive.Upload(ctx, ReportFileName(eventID), folderID, "application/pdf", result.PDF)
	if err != nil {
		resp.Error = err.Error()
		return resp, f.handleError(ctx, logCtx, jobRef, "failed to upload report to Drive", err)
	}
	resp.DriveFileID = fileID

	if err := f.sheet.UpdateFields(ctx, eventID, map[string]string{models.ColGeneratedPDFID: fileID}); err != nil {
		// The report exists; a stale sheet cell is recoverable by regenerating.
		logCtx.Warn("Failed to record generated report in sheet", "error", err)
	}

	updates := []firestore.Update{
		{Path: "status", Value: models.StatusGenerated},
		{Path: "errorDetails", Value: firestore.Delete},
		{Path: "pageCount", Value: result.Pages},
		{Path: "mergedDocuments", Value: result.Merged},
		{Path: "statusLog", Value: resp.StatusLog},
		{Path: "reportGcsUri", Value: resp.ReportGCSUri},
		{Path: "driveFileId", Value: fileID},
		{Path: "updatedAt", Value: time.Now()},
	}
	if _, err := jobRef.Update(ctx, updates); err != nil {
		resp.Error = err.Error()
		return resp, f.handleError(ctx, logCtx, jobRef, "failed to update status to GENERATED", err)
	}
	resp.Status = models.StatusGenerated

	if err := f.triggerWorkflow(ctx, logCtx, jobRef, resp); err != nil {
		// The report itself is done; approval can be requested again.
		logCtx.Warn("Approval workflow not started", "error", err)
	}

	logCtx.Info("Report generation complete.", "driveFileId", fileID)
	return resp, nil
}

// ProcessBatch regenerates several events concurrently. Every event gets a
// response; one failure does not stop the others.
func (f *ReportGeneratorFunction) ProcessBatch(ctx context.Context, eventIDs []string) *models.BatchGenerateResponse {
	results := make([]*models.GenerateReportResponse, len(eventIDs))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(batchLimit)

	for i, id := range eventIDs {
		eg.Go(func() error {
			resp, err := f.Process(gctx, id)
			if err != nil {
				slog.Warn("Batch entry failed.", "eventId", id, "error", err)
			}
			results[i] = resp
			return nil
		})
	}
	_ = eg.Wait()
	return &models.BatchGenerateResponse{Results: results}
}

// generatingFields marks a job as GENERATING for a new run. Fields owned by
// the archiver and the workflow, such as signedHash and executionId, are left
// untouched.
func generatingFields(eventID, programName, runID string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"eventId":      eventID,
		"programName":  programName,
		"status":       models.StatusGenerating,
		"runId":        runID,
		"updatedAt":    now,
		"errorDetails": firestore.Delete,
	}
}

// ReportFileName is the Drive file name of an event's generated report.
func ReportFileName(eventID string) string {
	return fmt.Sprintf("IICReport_%s.pdf", eventID)
}

func (f *ReportGeneratorFunction) triggerWorkflow(ctx context.Context, logCtx *slog.Logger, jobRef *firestore.DocumentRef, resp *models.GenerateReportResponse) error {
	if f.executionsClient == nil {
		return nil
	}
	logCtx.Info("Triggering approval workflow.")
	payloadBytes, err := json.Marshal(map[string]interface{}{
		"eventId":      resp.EventID,
		"driveFileId":  resp.DriveFileID,
		"reportGcsUri": resp.ReportGCSUri,
		"pageCount":    resp.PageCount,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s", f.config.ProjectID, f.config.WorkflowLocation, f.config.WorkflowID),
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	exec, err := f.executionsClient.CreateExecution(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	if _, err := jobRef.Update(ctx, []firestore.Update{{Path: "executionId", Value: exec.GetName()}}); err != nil {
		logCtx.Warn("Failed to record workflow execution", "error", err)
	}
	return nil
}

func (f *ReportGeneratorFunction) handleError(ctx context.Context, logCtx *slog.Logger, jobRef *firestore.DocumentRef, message string, originalErr error) error {
	return markFailed(ctx, logCtx, jobRef, message, originalErr)
}

// markFailed logs a processing error and records it on the report job.
func markFailed(ctx context.Context, logCtx *slog.Logger, jobRef *firestore.DocumentRef, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	if err := updateStatus(ctx, jobRef, models.StatusFailed, fullError); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s", fullError)
}

func updateStatus(ctx context.Context, jobRef *firestore.DocumentRef, status, errDetails string) error {
	updates := []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: time.Now()},
	}
	if errDetails != "" {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: errDetails})
	}
	_, err := jobRef.Set(ctx, updatesToMap(updates), firestore.MergeAll)
	return err
}

// updatesToMap turns field updates into a merge payload, so a status can be
// recorded even when the job document does not exist yet.
func updatesToMap(updates []firestore.Update) map[string]interface{} {
	m := make(map[string]interface{}, len(updates))
	for _, u := range updates {
		m[u.Path] = u.Value
	}
	return m
}
