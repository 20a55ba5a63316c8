package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/eventreportflow/internal/models"
	"github.com/Lllllllleong/eventreportflow/internal/services"
)

// reportService is the part of the generator service the handler drives.
type reportService interface {
	Process(ctx context.Context, eventID string) (*models.GenerateReportResponse, error)
	ProcessBatch(ctx context.Context, eventIDs []string) *models.BatchGenerateResponse
}

var (
	generatorInstance *services.ReportGeneratorFunction
	once              sync.Once
	initErr           error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleGenerateReport", newHandler(loadService))
}

// main is required by the Go Functions Framework.
func main() {}

func loadService() (reportService, error) {
	once.Do(func() {
		generatorInstance, initErr = services.NewReportGenerator(context.Background())
	})
	if initErr != nil {
		return nil, initErr
	}
	return generatorInstance, nil
}

// newHandler builds the HTTP entry point around a lazily created service.
func newHandler(load func() (reportService, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		svc, err := load()
		if err != nil {
			slog.Error("CRITICAL: Report generator initialization failed", "error", err)
			http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
			return
		}

		var req models.GenerateReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("Could not decode request body", "error", err)
			http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
			return
		}

		if len(req.EventIDs) > 0 {
			writeJSON(w, http.StatusOK, svc.ProcessBatch(r.Context(), req.EventIDs))
			return
		}
		if strings.TrimSpace(req.EventID) == "" {
			http.Error(w, "Bad Request: eventId or eventIds is required", http.StatusBadRequest)
			return
		}

		// The status log is returned even for failed runs.
		res, err := svc.Process(r.Context(), req.EventID)
		status := http.StatusOK
		if err != nil {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
