package fec

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Encoding selects the character set of the produced file. The
// administration accepts both; ISO-8859-15 matches what most French desktop
// accounting suites emit.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin9 Encoding = "iso-8859-15"
)

// ParseEncoding maps a configuration string onto an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(EncodingUTF8):
		return EncodingUTF8, nil
	case string(EncodingLatin9), "latin9", "latin-9":
		return EncodingLatin9, nil
	}
	return "", fmt.Errorf("fec: unsupported encoding %q", s)
}

// Write streams the header and rows to w. Fields join on the pipe separator
// without quoting; pipe characters inside free-text fields are replaced so a
// row always splits back into exactly 18 columns.
func Write(w io.Writer, rows []Row, enc Encoding) error {
	var out io.Writer = w
	if enc == EncodingLatin9 {
		out = charmap.ISO8859_15.NewEncoder().Writer(w)
	}
	bw := bufio.NewWriter(out)

	if _, err := bw.WriteString(Header); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	for _, row := range rows {
		fields := row.Fields()
		for i, f := range fields {
			if i > 0 {
				if err := bw.WriteByte('|'); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(sanitize(f)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func sanitize(field string) string {
	if !strings.ContainsAny(field, "|\n\r") {
		return field
	}
	field = strings.ReplaceAll(field, "|", "/")
	field = strings.ReplaceAll(field, "\n", " ")
	return strings.ReplaceAll(field, "\r", " ")
}
