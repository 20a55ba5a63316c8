package services

import (
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/eventreportflow/internal/fetch"
	"github.com/Lllllllleong/eventreportflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReportGeneratorConfig(t *testing.T) {
	t.Setenv("PROJECT_ID", "proj")
	t.Setenv("SPREADSHEET_ID", "sheet")
	t.Setenv("REPORTS_BUCKET", "reports")
	t.Setenv("FETCH_TIMEOUT", "12s")
	t.Setenv("INSTITUTION_NAME", "Example Institute")

	cfg, err := LoadReportGeneratorConfig()
	require.NoError(t, err)
	assert.Equal(t, "Events", cfg.EventsSheet)
	assert.Equal(t, "reports", cfg.CollectionName)
	assert.Equal(t, "us-central1", cfg.WorkflowLocation)
	assert.Equal(t, 12*time.Second, cfg.FetchTimeout)
	assert.Equal(t, fetch.DefaultDirectURL, cfg.DirectDownloadURL)
	assert.Empty(t, cfg.WorkflowID)

	brand := cfg.Branding()
	assert.Equal(t, "Example Institute", brand.Institution)
	assert.Nil(t, brand.LeftLogo)
	assert.False(t, brand.UnicodeText())
}

func TestLoadReportGeneratorConfigRequiresSettings(t *testing.T) {
	t.Setenv("PROJECT_ID", "")
	_, err := LoadReportGeneratorConfig()
	assert.Error(t, err)

	t.Setenv("PROJECT_ID", "proj")
	t.Setenv("SPREADSHEET_ID", "")
	t.Setenv("REPORTS_BUCKET", "reports")
	_, err = LoadReportGeneratorConfig()
	assert.Error(t, err)
}

func TestUpdatesToMap(t *testing.T) {
	m := updatesToMap([]firestore.Update{
		{Path: "status", Value: "FAILED"},
		{Path: "errorDetails", Value: "boom"},
	})
	assert.Equal(t, map[string]interface{}{"status": "FAILED", "errorDetails": "boom"}, m)
}

func TestGeneratingFieldsKeepsArchiverFields(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	fields := generatingFields("EVT-7", "Ideathon", "run-1", now)

	assert.Equal(t, "EVT-7", fields["eventId"])
	assert.Equal(t, "Ideathon", fields["programName"])
	assert.Equal(t, models.StatusGenerating, fields["status"])
	assert.Equal(t, "run-1", fields["runId"])
	assert.Equal(t, now, fields["updatedAt"])
	assert.Equal(t, firestore.Delete, fields["errorDetails"])
	for _, kept := range []string{"signedHash", "signedGcsUri", "signedPageCount", "executionId", "driveFileId"} {
		assert.NotContains(t, fields, kept)
	}
}
