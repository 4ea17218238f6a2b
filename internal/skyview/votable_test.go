package skyview

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"astrostamps/internal/testutil"
)

func TestParseSIAResponse(t *testing.T) {
	raw := testutil.SIAResponse(
		testutil.SIARecord{Survey: "DSS2 Red", AccessURL: "http://img/1.fits", Preview: "http://img/1.png"},
		testutil.SIARecord{Survey: "DSS2 Blue", AccessURL: "http://img/2.fits", Preview: "http://img/2.png"},
	)

	records, err := parseSIAResponse(raw)
	if err != nil {
		t.Fatalf("parseSIAResponse() returned unexpected error: %v", err)
	}

	want := []surveyRecord{
		{Survey: "DSS2 Red", AccessURL: "http://img/1.fits", Preview: "http://img/1.png"},
		{Survey: "DSS2 Blue", AccessURL: "http://img/2.fits", Preview: "http://img/2.png"},
	}
	if diff := cmp.Diff(want, records, cmp.AllowUnexported(surveyRecord{})); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSIAResponse_NoRows(t *testing.T) {
	records, err := parseSIAResponse(testutil.SIAResponse())
	if err != nil {
		t.Fatalf("parseSIAResponse() returned unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestParseSIAResponse_MissingColumns(t *testing.T) {
	raw := []byte(`<?xml version="1.0"?><VOTABLE><RESOURCE><TABLE>` +
		`<FIELD name="Survey"/>` +
		`<DATA><TABLEDATA><TR><TD>DSS2 Red</TD></TR></TABLEDATA></DATA>` +
		`</TABLE></RESOURCE></VOTABLE>`)
	if _, err := parseSIAResponse(raw); err == nil {
		t.Error("parseSIAResponse() without an access reference column should error")
	}
}

func TestParseSIAResponse_RaggedRow(t *testing.T) {
	raw := []byte(`<?xml version="1.0"?><VOTABLE><RESOURCE><TABLE>` +
		`<FIELD name="Survey"/><FIELD name="AccessReference"/><FIELD name="Preview"/>` +
		`<DATA><TABLEDATA><TR><TD>DSS2 Red</TD></TR></TABLEDATA></DATA>` +
		`</TABLE></RESOURCE></VOTABLE>`)
	if _, err := parseSIAResponse(raw); err == nil {
		t.Error("parseSIAResponse() with a short row should error")
	}
}

func TestParseSIAResponse_Garbage(t *testing.T) {
	if _, err := parseSIAResponse([]byte("not xml")); err == nil {
		t.Error("parseSIAResponse() on garbage should error")
	}
}

func TestParseSIAResponse_UCDFallback(t *testing.T) {
	raw := []byte(`<?xml version="1.0"?><VOTABLE><RESOURCE><TABLE>` +
		`<FIELD name="Survey"/>` +
		`<FIELD name="ImageLink" ucd="VOX:Image_AccessReference"/>` +
		`<FIELD name="Preview"/>` +
		`<DATA><TABLEDATA><TR><TD>DSS2 Red</TD><TD>http://img/1.fits</TD><TD>http://img/1.png</TD></TR></TABLEDATA></DATA>` +
		`</TABLE></RESOURCE></VOTABLE>`)

	records, err := parseSIAResponse(raw)
	if err != nil {
		t.Fatalf("parseSIAResponse() returned unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].AccessURL != "http://img/1.fits" {
		t.Errorf("records = %+v, want access URL resolved through the UCD", records)
	}
}
