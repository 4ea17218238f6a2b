package testutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// SIARecord is one row of a synthetic discovery response
type SIARecord struct {
	Survey    string
	AccessURL string
	Preview   string
}

// SIAResponse builds a minimal VOTable discovery document with one row
// per record, in the column layout the SkyView client expects.
func SIAResponse(records ...SIARecord) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(`<VOTABLE version="1.1"><RESOURCE type="results"><TABLE>`)
	buf.WriteString(`<FIELD name="Survey" datatype="char" arraysize="*"/>`)
	buf.WriteString(`<FIELD name="AccessReference" ucd="VOX:Image_AccessReference" datatype="char" arraysize="*"/>`)
	buf.WriteString(`<FIELD name="Preview" datatype="char" arraysize="*"/>`)
	buf.WriteString(`<DATA><TABLEDATA>`)
	for _, r := range records {
		fmt.Fprintf(&buf, "<TR><TD>%s</TD><TD>%s</TD><TD>%s</TD></TR>",
			xmlEscape(r.Survey), xmlEscape(r.AccessURL), xmlEscape(r.Preview))
	}
	buf.WriteString(`</TABLEDATA></DATA></TABLE></RESOURCE></VOTABLE>`)
	return buf.Bytes()
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
