package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gaurav-prasanna/reportpipe/core"
)

const (
	categoryJSON     = "JSON"
	jsonTitleDefault = "JSON Data Analysis"
	// minSectionRunes is the length a string leaf must exceed to become a section.
	minSectionRunes = 10
)

// jsonTitleFields are the root keys consulted for a title, in priority order.
var jsonTitleFields = []string{"title", "name", "subject", "heading", "label"}

// JSONExtractor walks a JSON document in key order. Numeric leaves become
// data points labelled by their path; long string leaves become paragraphs.
type JSONExtractor struct{}

// NewJSONExtractor creates a JSONExtractor.
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

// Extract implements Extractor.
func (e *JSONExtractor) Extract(raw string, sourceURL string) (core.ExtractedData, error) {
	w := &jsonWalker{
		dec:        json.NewDecoder(strings.NewReader(raw)),
		rootFields: make(map[string]string),
	}
	w.dec.UseNumber()

	if _, _, err := w.walk("", 0); err != nil {
		return core.ExtractedData{}, fmt.Errorf("walking json: %w", err)
	}
	if _, err := w.dec.Token(); !errors.Is(err, io.EOF) {
		return core.ExtractedData{}, fmt.Errorf("trailing data after json value")
	}

	title := jsonTitleDefault
	for _, key := range jsonTitleFields {
		if v := strings.TrimSpace(w.rootFields[key]); v != "" {
			title = v
			break
		}
	}

	return core.ExtractedData{
		SourceURL:    sourceURL,
		Title:        title,
		Summary:      fmt.Sprintf("JSON data containing %d objects, %d arrays, and %d values", w.objects, w.arrays, w.values),
		DataType:     core.DeriveDataType(w.points, w.sections),
		DataPoints:   w.points,
		TextSections: w.sections,
		Metadata: map[string]any{
			"sourceFormat": "json",
		},
	}, nil
}

// jsonWalker is a single-pass token walk. The counters reflect exactly the
// nodes visited.
type jsonWalker struct {
	dec *json.Decoder

	points   []core.DataPoint
	sections []core.TextSection

	objects, arrays, values int

	// rootFields holds string values of title candidates on the root object.
	rootFields map[string]string
}

// walk consumes one value at path. For string leaves it returns the string
// and true so the caller can record root title candidates.
func (w *jsonWalker) walk(path string, depth int) (string, bool, error) {
	tok, err := w.dec.Token()
	if err != nil {
		return "", false, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			w.objects++
			for w.dec.More() {
				keyTok, err := w.dec.Token()
				if err != nil {
					return "", false, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return "", false, fmt.Errorf("unexpected object key %v", keyTok)
				}
				s, isString, err := w.walk(joinKey(path, key), depth+1)
				if err != nil {
					return "", false, err
				}
				// a repeated root key keeps its last value
				if depth == 0 {
					if isString {
						w.rootFields[key] = s
					} else {
						delete(w.rootFields, key)
					}
				}
			}
		case '[':
			w.arrays++
			for i := 0; w.dec.More(); i++ {
				if _, _, err := w.walk(path+"["+strconv.Itoa(i)+"]", depth+1); err != nil {
					return "", false, err
				}
			}
		default:
			return "", false, fmt.Errorf("unexpected delimiter %q", v)
		}
		// closing delimiter
		if _, err := w.dec.Token(); err != nil {
			return "", false, err
		}
		return "", false, nil

	case json.Number:
		w.values++
		f, err := v.Float64()
		if err != nil {
			// out of float64 range; counted but not stored
			return "", false, nil
		}
		if value := core.Float(f); value != nil {
			label := path
			if label == "" {
				label = "value"
			}
			w.points = append(w.points, core.DataPoint{
				Label:    label,
				Value:    value,
				Category: categoryJSON,
			})
		}
		return "", false, nil

	case string:
		w.values++
		if utf8.RuneCountInString(v) > minSectionRunes {
			w.sections = append(w.sections, core.TextSection{
				Title:   path,
				Content: v,
				Order:   len(w.sections),
				Kind:    core.KindParagraph,
			})
		}
		return v, true, nil

	default:
		// bool and null
		w.values++
		return "", false, nil
	}
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
