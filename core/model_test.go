package core

import (
	"errors"
	"math"
	"testing"
)

func TestDeriveDataType(t *testing.T) {
	p := []DataPoint{{Label: "a", Value: Float(1)}}
	s := []TextSection{{Content: "x"}}

	tests := []struct {
		name     string
		points   []DataPoint
		sections []TextSection
		want     DataType
	}{
		{"sections only", nil, s, TextOnly},
		{"points only", p, nil, Numerical},
		{"both", p, s, Mixed},
		{"neither", nil, nil, TextOnly},
	}
	for _, tt := range tests {
		if got := DeriveDataType(tt.points, tt.sections); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestFloatRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if Float(v) != nil {
			t.Errorf("Float(%v) should be nil", v)
		}
	}
	if got := Float(2.5); got == nil || *got != 2.5 {
		t.Errorf("Float(2.5) = %v", got)
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in   string
		want OutputFormat
	}{
		{"", FormatBoth},
		{"pdf", FormatPDF},
		{" Docx ", FormatDOCX},
		{"latex", FormatLaTeX},
		{"markdown", FormatMarkdown},
		{"JSON", FormatJSON},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %s, %v", tt.in, got, err)
		}
	}
	if _, err := ParseOutputFormat("odt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("odt: err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExpand(t *testing.T) {
	got := FormatBoth.Expand()
	if len(got) != 2 || got[0] != FormatPDF || got[1] != FormatDOCX {
		t.Errorf("BOTH expands to %v", got)
	}
	if got := FormatJSON.Expand(); len(got) != 1 || got[0] != FormatJSON {
		t.Errorf("JSON expands to %v", got)
	}
}

func TestCloneDoesNotShare(t *testing.T) {
	d := ExtractedData{
		DataPoints: []DataPoint{{Label: "a"}},
		Metadata:   map[string]any{"k": 1},
	}
	c := d.WithMetadata("extra", true)
	c.DataPoints[0].Label = "changed"
	if d.DataPoints[0].Label != "a" {
		t.Error("Clone shares data points")
	}
	if _, ok := d.Metadata["extra"]; ok {
		t.Error("WithMetadata mutated the original")
	}

	rc := ReportContent{
		Charts: []Chart{{Image: []byte{1}}},
		Tables: []Table{{Rows: [][]string{{"x"}}}},
	}
	cp := rc.Clone()
	cp.Charts[0].Image[0] = 9
	cp.Tables[0].Rows[0][0] = "y"
	if rc.Charts[0].Image[0] != 1 || rc.Tables[0].Rows[0][0] != "x" {
		t.Error("ReportContent.Clone shares nested slices")
	}
}
