package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventRecordFromRow(t *testing.T) {
	rec := EventRecordFromRow(map[string]string{
		ColEventID:         " EVT-7 ",
		ColProgramName:     "Startup Pitch Day",
		ColBriefReport:     "  First.\n\nSecond.  ",
		ColGeotagPhoto1:    "1AbCdEfGhIjKl",
		ColKPIReport:       " https://drive.google.com/file/d/1AbCdEfGhIjKl/view ",
		ColSignedPDFID:     "signed-1",
		"Unrelated Column": "ignored",
	})

	assert.Equal(t, "EVT-7", rec.EventID)
	assert.Equal(t, "Startup Pitch Day", rec.ProgramName)
	assert.Equal(t, "  First.\n\nSecond.  ", rec.BriefReport)
	assert.Equal(t, "1AbCdEfGhIjKl", rec.Photos.Geotag1)
	assert.Equal(t, "https://drive.google.com/file/d/1AbCdEfGhIjKl/view", rec.Documents.KPIReport)
	assert.Equal(t, "signed-1", rec.SignedPDFID)
	assert.Empty(t, rec.Quarter)
	assert.Empty(t, rec.Documents.EventAgenda)
}

func TestEventRecordFromRowLegacyVideoColumn(t *testing.T) {
	rec := EventRecordFromRow(map[string]string{"Video URL": "https://youtu.be/x"})
	assert.Equal(t, "https://youtu.be/x", rec.VideoURL)

	rec = EventRecordFromRow(map[string]string{"Video URL": "old", ColVideoURL: "new"})
	assert.Equal(t, "new", rec.VideoURL)
}

func TestIsBlankReference(t *testing.T) {
	for _, ref := range []string{"", "  ", "null", "NULL", " null "} {
		assert.True(t, IsBlankReference(ref), "%q", ref)
	}
	for _, ref := range []string{"abc", "1AbCdEfGhIjKl", "nullable-id"} {
		assert.False(t, IsBlankReference(ref), "%q", ref)
	}
}
