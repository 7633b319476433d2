package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeStation(t *testing.T) {
	station, known := CanonicalizeStation("eldoret")
	assert.True(t, known)
	assert.Equal(t, "ELDORET", station)

	station, known = CanonicalizeStation("NORTH RIFT")
	assert.True(t, known)
	assert.Equal(t, "LODWAR", station)

	station, known = CanonicalizeStation("Coast Region")
	assert.True(t, known)
	assert.Equal(t, "MOMBASA", station)

	station, known = CanonicalizeStation("NEWTOWN")
	assert.False(t, known)
	assert.Equal(t, "NEWTOWN", station)

	_, known = CanonicalizeStation("")
	assert.False(t, known)
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, FormatPDF, MapExtToFormat(".PDF"))
	assert.Equal(t, FormatDOCX, MapExtToFormat("docx"))
	assert.Equal(t, FormatDOC, MapExtToFormat(".doc"))
	assert.Equal(t, Format(""), MapExtToFormat(".txt"))
}
