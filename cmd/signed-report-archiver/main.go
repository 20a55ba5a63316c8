package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/eventreportflow/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	archiverInstance *services.SignedArchiverFunction
	once             sync.Once
	initErr          error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("ArchiveSignedReport", archiveSignedReport)
}

// main is required by the Go Functions Framework.
func main() {}

// archiveSignedReport handles object finalize events from the signed reports bucket.
func archiveSignedReport(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		archiverInstance, initErr = services.NewSignedArchiver(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Errors are logged with context inside Process.
	return archiverInstance.Process(ctx, gcsEvent)
}
