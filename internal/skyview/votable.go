package skyview

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// voTable mirrors the subset of the VOTable schema that the SIA metadata
// response uses: one TABLE of FIELD descriptors plus TABLEDATA rows.
type voTable struct {
	XMLName  xml.Name `xml:"VOTABLE"`
	Resource struct {
		Table struct {
			Fields []voField `xml:"FIELD"`
			Rows   []voRow   `xml:"DATA>TABLEDATA>TR"`
		} `xml:"TABLE"`
	} `xml:"RESOURCE"`
}

type voField struct {
	Name string `xml:"name,attr"`
	UCD  string `xml:"ucd,attr"`
}

type voRow struct {
	Cells []string `xml:"TD"`
}

// surveyRecord is one discovered image product: the survey it belongs
// to, the FITS product carrying the coordinate transform, and the
// full-frame preview raster.
type surveyRecord struct {
	Survey    string
	AccessURL string
	Preview   string
}

// parseSIAResponse extracts survey records from a VOTable document.
// Columns are located by FIELD name, with the standard SIA UCD accepted
// as a fallback for the access reference.
func parseSIAResponse(raw []byte) ([]surveyRecord, error) {
	var vt voTable
	if err := xml.Unmarshal(raw, &vt); err != nil {
		return nil, fmt.Errorf("parse votable: %w", err)
	}

	table := vt.Resource.Table
	survey, access, preview := -1, -1, -1
	for i, f := range table.Fields {
		switch strings.ToLower(f.Name) {
		case "survey":
			survey = i
		case "accessreference", "url":
			access = i
		case "preview":
			preview = i
		}
		if access < 0 && f.UCD == "VOX:Image_AccessReference" {
			access = i
		}
	}
	if survey < 0 || access < 0 || preview < 0 {
		return nil, fmt.Errorf("votable is missing survey, access reference or preview columns")
	}

	records := make([]surveyRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		if len(row.Cells) != len(table.Fields) {
			return nil, fmt.Errorf("votable row %d has %d cells, want %d", i, len(row.Cells), len(table.Fields))
		}
		records = append(records, surveyRecord{
			Survey:    strings.TrimSpace(row.Cells[survey]),
			AccessURL: strings.TrimSpace(row.Cells[access]),
			Preview:   strings.TrimSpace(row.Cells[preview]),
		})
	}
	return records, nil
}
