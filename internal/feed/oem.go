package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
)

// OEM XML layout: ndm > oem > {header, body > segment+ > {metadata, data}}.
// Every leaf element is decoded generically so that a missing component shows
// up as a missing key rather than a silent zero.

type oemDocument struct {
	XMLName xml.Name `xml:"ndm"`
	OEM     struct {
		Header fieldList `xml:"header"`
		Body   struct {
			Segments []oemSegment `xml:"segment"`
		} `xml:"body"`
	} `xml:"oem"`
}

type oemSegment struct {
	Metadata fieldList `xml:"metadata"`
	Data     struct {
		Comments     []string    `xml:"COMMENT"`
		StateVectors []fieldList `xml:"stateVector"`
	} `xml:"data"`
}

type fieldList struct {
	Fields []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Units   string `xml:"units,attr"`
	Value   string `xml:",chardata"`
}

// record flattens the element list into field name -> trimmed text.
func (l fieldList) record() domain.RawRecord {
	rec := make(domain.RawRecord, len(l.Fields))
	for _, f := range l.Fields {
		rec[f.XMLName.Local] = strings.TrimSpace(f.Value)
	}
	return rec
}

// ParseOEM decodes an OEM XML document, gzip-compressed or not, capping the
// decompressed size at DefaultMaxBytes.
func ParseOEM(data []byte) (*domain.Series, error) {
	return ParseOEMLimit(data, DefaultMaxBytes)
}

// ParseOEMLimit is ParseOEM with a caller-chosen cap on the decompressed size.
func ParseOEMLimit(data []byte, maxBytes int64) (*domain.Series, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := decompress(data, maxBytes)
	if err != nil {
		return nil, err
	}

	var doc oemDocument
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode OEM XML: %w", err)
	}
	if len(doc.OEM.Body.Segments) == 0 {
		return nil, errors.New("OEM document has no segment")
	}

	var (
		comments []string
		records  []domain.RawRecord
	)
	for _, seg := range doc.OEM.Body.Segments {
		for _, c := range seg.Data.Comments {
			comments = append(comments, strings.TrimSpace(c))
		}
		for _, sv := range seg.Data.StateVectors {
			records = append(records, sv.record())
		}
	}

	header := doc.OEM.Header.record()
	delete(header, "COMMENT")
	metadata := doc.OEM.Body.Segments[0].Metadata.record()
	delete(metadata, "COMMENT")

	series, err := domain.BuildSeries(header, metadata, comments, records)
	if err != nil {
		return nil, fmt.Errorf("build series: %w", err)
	}
	return series, nil
}
