// Package sidecar repairs BIDS PET JSON sidecars so downstream tools accept them.
//
// Sidecars written by converters often miss required PET fields, and dynamic
// acquisitions split over several files carry their frame timing in pieces.
// FixFiles merges the pieces and fills every missing required field with a
// placeholder. Existing values always win over placeholders.
package sidecar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"centival/internal"
	apperrors "centival/internal/errors"
	"centival/internal/fsutil"
)

// Frame timing keys concatenated across split sidecars
const (
	KeyFrameDuration   = "FrameDuration"
	KeyFrameTimesStart = "FrameTimesStart"
)

var frameKeys = []string{KeyFrameDuration, KeyFrameTimesStart}

// Defaults returns placeholders for the required BIDS PET fields
func Defaults() map[string]any {
	return map[string]any{
		"TracerName":                 "Unknown",
		"TracerRadionuclide":         "Unknown",
		"ReconFilterSize":            0,
		"Units":                      "Bq/mL",
		"InstitutionName":            "Unknown",
		"Manufacturer":               "Unknown",
		"InjectedRadioactivity":      0,
		"InjectedRadioactivityUnits": "MBq",
		"InjectedMass":               0,
		"InjectedMassUnits":          "ug",
		"ScanStart":                  "00:00:00",
		"InjectionStart":             "00:00:00",
		"AcquisitionMode":            "unknown",
		"ImageDecayCorrected":        false,
		"ImageDecayCorrectionTime":   0,
		"ReconMethodName":            "Unknown",
		"ReconMethodParameterLabels": []any{"none"},
		"ReconMethodParameterValues": []any{0},
		"ReconMethodParameterUnits":  []any{"none"},
		"ReconFilterType":            "Unknown",
		"AttenuationCorrection":      "Unknown",
		"SpecificRadioactivity":      0,
		"SpecificRadioactivityUnits": "Bq/g",
		"ModeOfAdministration":       "bolus",
		"TimeZero":                   "00:00:00",
	}
}

// Complete returns existing plus every default it lacks, and the sorted names of
// the injected keys. existing is not modified.
func Complete(existing map[string]any) (map[string]any, []string) {
	completed := make(map[string]any, len(existing)+25)
	for k, v := range existing {
		completed[k] = v
	}
	var injected []string
	for k, v := range Defaults() {
		if _, ok := completed[k]; ok {
			continue
		}
		completed[k] = v
		injected = append(injected, k)
	}
	sort.Strings(injected)
	return completed, injected
}

// Merge uses the first document as the base and appends the frame timing lists of
// the others to it. A single document is returned unchanged.
func Merge(docs []map[string]any) (map[string]any, error) {
	if len(docs) == 0 {
		return nil, apperrors.InvalidInput("no sidecar documents to merge")
	}
	merged := make(map[string]any, len(docs[0]))
	for k, v := range docs[0] {
		merged[k] = v
	}
	if len(docs) == 1 {
		return merged, nil
	}

	for _, key := range frameKeys {
		values, err := asList(merged[key], key)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs[1:] {
			next, ok := doc[key]
			if !ok {
				continue
			}
			more, err := asList(next, key)
			if err != nil {
				return nil, err
			}
			values = append(values, more...)
		}
		merged[key] = values
	}
	return merged, nil
}

// checkFrameTiming reports whether the frame timing fields of doc can be merged
func checkFrameTiming(doc map[string]any) error {
	for _, key := range frameKeys {
		if v, ok := doc[key]; ok {
			if _, err := asList(v, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func asList(v any, key string) ([]any, error) {
	switch t := v.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return append([]any(nil), t...), nil
	case json.Number, float64, int:
		return []any{t}, nil
	}
	return nil, apperrors.ParseError(fmt.Sprintf("%s must be a list of numbers, got %T", key, v), nil)
}

// Result describes one FixFiles call
type Result struct {
	Output   string
	Merged   int      // input files merged
	Skipped  []string // later inputs that could not be read or merged
	Injected []string
}

// FixFiles merges inputs, fills missing fields and writes the result to output
// with four-space indentation. The first input must be readable; later inputs that
// are unreadable or carry malformed frame timing are skipped with a warning.
func FixFiles(output string, inputs []string, logger *internal.Logger) (*Result, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if len(inputs) == 0 {
		return nil, apperrors.InvalidInput("no input sidecars provided")
	}

	base, err := readDoc(inputs[0])
	if err != nil {
		return nil, err
	}
	docs := []map[string]any{base}
	res := &Result{Output: output}

	if len(inputs) > 1 {
		logger.Info("merging metadata from %d files", len(inputs))
	}
	for _, path := range inputs[1:] {
		doc, err := readDoc(path)
		if err == nil {
			err = checkFrameTiming(doc)
		}
		if err != nil {
			logger.Warn("could not merge %s: %v", path, err)
			res.Skipped = append(res.Skipped, path)
			continue
		}
		docs = append(docs, doc)
	}
	res.Merged = len(docs)

	merged, err := Merge(docs)
	if err != nil {
		return nil, err
	}
	completed, injected := Complete(merged)
	for _, k := range injected {
		logger.Info("injecting missing key: %s", k)
	}
	res.Injected = injected

	data, err := fsutil.PrettyJSON(completed, "    ")
	if err != nil {
		return nil, err
	}
	if err := fsutil.WriteFileAtomic(output, data); err != nil {
		return nil, err
	}
	logger.Info("wrote fixed sidecar to %s", output)
	return res, nil
}

func readDoc(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.MissingInput(path)
		}
		return nil, apperrors.ParseError(fmt.Sprintf("read %s", path), err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.ParseError(fmt.Sprintf("%s is not a JSON object", path), err)
	}
	if doc == nil {
		return nil, apperrors.ParseError(fmt.Sprintf("%s is not a JSON object", path), nil)
	}
	return doc, nil
}
