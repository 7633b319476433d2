package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kra-data-tools/notice-tracker/internal/acquire"
	"github.com/kra-data-tools/notice-tracker/internal/record"
)

const noticeBody = `KENYA REVENUE AUTHORITY
TIMES TOWER, P.O. BOX 48240-00100

PIN: P052148271F
JOHN KAMAU MWANGI,
P.O. BOX 1234, ELDORET

26TH AUGUST, 2025

RE: NOTICE OF ASSESSMENT UNDER SECTION 31 OF THE TAX PROCEDURES ACT, 2015

Following an audit of your affairs for the year 2024, the Commissioner has
assessed additional tax as shown below.

Total Tax: 1,234,567.00

You are required to settle the above amount within thirty days.
ELDORET STATION`

const noticeSignaturePage = `Should you have any queries regarding this assessment, do not
hesitate to contact Mr. Peter Otieno or call our office.

Yours faithfully,
COMMISSIONER OF DOMESTIC TAXES`

func extractedText(segments ...string) acquire.ExtractedText {
	out := acquire.ExtractedText{SourcePath: "notice.pdf"}
	for i, s := range segments {
		out.Segments = append(out.Segments, acquire.Segment{Index: i, Text: s, Method: "pdf-text"})
	}
	return out
}

func TestExtractFullNotice(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract(extractedText(noticeBody, noticeSignaturePage))

	require.NotNil(t, rec)
	assert.Equal(t, "2025-08-26", rec.Get(record.FieldDate).Value())
	assert.Equal(t, "P052148271F", rec.Get(record.FieldPIN).Value())
	assert.Equal(t, "JOHN KAMAU MWANGI", rec.Get(record.FieldTaxpayerName).Value())
	assert.Contains(t, rec.Get(record.FieldNoticeTitle).Value(), "TAX PROCEDURES ACT")
	assert.Equal(t, "1234567.00", rec.Get(record.FieldTotalTax).Value())
	assert.Equal(t, "2024", rec.Get(record.FieldYear).Value())
	assert.Equal(t, "ELDORET", rec.Get(record.FieldKRAStation).Value())
	assert.Equal(t, "Peter Otieno", rec.Get(record.FieldOfficerName).Value())
	assert.True(t, rec.Complete())
}

func TestExtractNeverFails(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract(extractedText(""))

	require.NotNil(t, rec)
	assert.Equal(t, 0, rec.PresentCount())
	for _, name := range record.FieldOrder {
		assert.False(t, rec.Get(name).Present, "field %s", name)
	}
}

func TestFirstMatchWins(t *testing.T) {
	e := NewExtractor(nil, nil)
	text := `Total Tax: 45,000
You are further required to pay KES 99,999 immediately.`
	rec := e.Extract(extractedText(text))

	assert.Equal(t, "45000.00", rec.Get(record.FieldTotalTax).Value())
}

func TestAmountOutsideSaneRangeRejected(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract(extractedText("Total Tax: 500"))
	assert.False(t, rec.Get(record.FieldTotalTax).Present)

	rec = e.Extract(extractedText("Total Tax: 90,000,000"))
	assert.False(t, rec.Get(record.FieldTotalTax).Present)
}

func TestOfficerOnlyFromFinalSegment(t *testing.T) {
	e := NewExtractor(nil, nil)
	// the contact phrasing appears on the first page only
	rec := e.Extract(extractedText(
		"please contact Mr. Peter Otieno or call us\n"+noticeBody,
		"Yours faithfully,\nCOMMISSIONER",
	))
	assert.False(t, rec.Get(record.FieldOfficerName).Present)
}

func TestYearFallbackFromNoticeDate(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract(extractedText("This notice is dated 26TH AUGUST, 2025."))

	year := rec.Get(record.FieldYear)
	assert.True(t, year.Present)
	assert.Equal(t, "2024", year.Value())
}

func TestNoYearWithoutDate(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract(extractedText("No usable content here."))
	assert.False(t, rec.Get(record.FieldYear).Present)
}

func TestStationRegionSynonym(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract(extractedText("Issued under the NORTH RIFT REGION administration."))
	assert.Equal(t, "LODWAR", rec.Get(record.FieldKRAStation).Value())
}

func TestUnparsedDateKeptRaw(t *testing.T) {
	e := NewExtractor(nil, nil)
	rec := e.Extract(extractedText("dated 31ST FEBRUARY, 2025 at the office"))

	date := rec.Get(record.FieldDate)
	assert.True(t, date.Present)
	assert.False(t, date.Parsed)
	assert.Equal(t, "31ST FEBRUARY, 2025", date.Value())
}
