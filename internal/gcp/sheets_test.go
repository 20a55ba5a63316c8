package gcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Lllllllleong/eventreportflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for idx, want := range cases {
		assert.Equal(t, want, columnLetter(idx), "index %d", idx)
	}
}

func TestFindEventRow(t *testing.T) {
	values := [][]string{
		{"Timestamp", models.ColEventID, models.ColProgramName},
		{"t1", "EVT-1", "Hackathon"},
		{"t2", "EVT-2"},
	}

	row, n, ok := findEventRow(values, "EVT-2")
	require.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, "EVT-2", row[models.ColEventID])
	assert.Equal(t, "", row[models.ColProgramName])

	_, _, ok = findEventRow(values, "EVT-9")
	assert.False(t, ok)

	_, _, ok = findEventRow(values[:1], "EVT-1")
	assert.False(t, ok)
}

// fakeSheetsAPI serves one worksheet over the Sheets v4 REST surface.
type fakeSheetsAPI struct {
	mu      sync.Mutex
	values  [][]string
	updates []*sheets.ValueRange
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		rows := make([][]interface{}, len(f.values))
		for i, row := range f.values {
			for _, v := range row {
				rows[i] = append(rows[i], v)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"range": "Events!A1:Z100", "values": rows})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "values:batchUpdate"):
		var req sheets.BatchUpdateValuesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.updates = append(f.updates, req.Data...)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"spreadsheetId": "sheet-1"})
	default:
		http.NotFound(w, r)
	}
}

func newTestSheet(t *testing.T, api *fakeSheetsAPI) *EventSheet {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	s, err := NewEventSheet(context.Background(), "sheet-1", "Events",
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication(), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return s
}

func TestEventSheetGetEvent(t *testing.T) {
	api := &fakeSheetsAPI{values: [][]string{
		{models.ColEventID, models.ColProgramName, models.ColEventAgenda},
		{"EVT-1", " Ideathon ", "1AbCdEfGhIjKl"},
	}}
	s := newTestSheet(t, api)

	rec, err := s.GetEvent(context.Background(), "EVT-1")
	require.NoError(t, err)
	assert.Equal(t, "Ideathon", rec.ProgramName)
	assert.Equal(t, "1AbCdEfGhIjKl", rec.Documents.EventAgenda)

	_, err = s.GetEvent(context.Background(), "EVT-404")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventSheetUpdateFieldsAppendsMissingHeader(t *testing.T) {
	api := &fakeSheetsAPI{values: [][]string{
		{models.ColEventID, models.ColGeneratedPDFID},
		{"EVT-0"},
		{"EVT-1"},
	}}
	s := newTestSheet(t, api)

	err := s.UpdateFields(context.Background(), "EVT-1", map[string]string{
		models.ColGeneratedPDFID: "drive-file-1",
		models.ColSignedPDFID:    "drive-file-2",
	})
	require.NoError(t, err)

	got := make(map[string]interface{})
	for _, u := range api.updates {
		got[u.Range] = u.Values[0][0]
	}
	assert.Equal(t, map[string]interface{}{
		"Events!B3": "drive-file-1",
		"Events!C1": models.ColSignedPDFID,
		"Events!C3": "drive-file-2",
	}, got)
}
