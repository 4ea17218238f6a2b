package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"testing"
)

const fitsBlock = 2880

// FITSImage hand-encodes a minimal FITS file: an empty primary HDU
// followed by one IMAGE extension holding plane as 64-bit floats. plane
// is indexed [row][col] with row 0 the bottom of the frame. Extra header
// cards (typically a WCS) go into the extension header.
func FITSImage(t *testing.T, plane [][]float64, cards map[string]float64) []byte {
	t.Helper()
	if len(plane) == 0 || len(plane[0]) == 0 {
		t.Fatal("FITSImage needs a non-empty plane")
	}
	h := len(plane)
	w := len(plane[0])

	var buf bytes.Buffer
	writeHeaderBlock(&buf, []string{
		"SIMPLE  =                    T",
		fitsKV("BITPIX", "8"),
		fitsKV("NAXIS", "0"),
		"EXTEND  =                    T",
	})

	lines := []string{
		"XTENSION= 'IMAGE   '",
		fitsKV("BITPIX", "-64"),
		fitsKV("NAXIS", "2"),
		fitsKV("NAXIS1", strconv.Itoa(w)),
		fitsKV("NAXIS2", strconv.Itoa(h)),
		fitsKV("PCOUNT", "0"),
		fitsKV("GCOUNT", "1"),
	}
	keys := make([]string, 0, len(cards))
	for k := range cards {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fitsKV(k, strconv.FormatFloat(cards[k], 'E', 10, 64)))
	}
	writeHeaderBlock(&buf, lines)

	start := buf.Len()
	for _, row := range plane {
		if len(row) != w {
			t.Fatalf("ragged plane: row has %d cols, want %d", len(row), w)
		}
		for _, v := range row {
			if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
				t.Fatalf("write fits data: %v", err)
			}
		}
	}
	padBlock(&buf, buf.Len()-start, 0)
	return buf.Bytes()
}

// FITSHeaderOnly encodes a FITS file with a single data-less primary
// HDU carrying the given header cards (enough to describe a WCS).
func FITSHeaderOnly(t *testing.T, cards map[string]float64) []byte {
	t.Helper()
	lines := []string{
		"SIMPLE  =                    T",
		fitsKV("BITPIX", "8"),
		fitsKV("NAXIS", "0"),
	}
	keys := make([]string, 0, len(cards))
	for k := range cards {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fitsKV(k, strconv.FormatFloat(cards[k], 'E', 10, 64)))
	}
	var buf bytes.Buffer
	writeHeaderBlock(&buf, lines)
	return buf.Bytes()
}

// fitsKV formats a fixed-format card with the value right-justified in
// columns 11-30.
func fitsKV(key, value string) string {
	return fmt.Sprintf("%-8s= %20s", key, value)
}

func writeHeaderBlock(buf *bytes.Buffer, lines []string) {
	n := 0
	for _, line := range lines {
		buf.WriteString(fmt.Sprintf("%-80s", line)[:80])
		n += 80
	}
	buf.WriteString(fmt.Sprintf("%-80s", "END"))
	n += 80
	padBlock(buf, n, ' ')
}

func padBlock(buf *bytes.Buffer, n int, fill byte) {
	for n%fitsBlock != 0 {
		buf.WriteByte(fill)
		n++
	}
}
