package cohort

import (
	"fmt"
)

// Column names of the computed-results table produced by the quantification pipeline
const (
	ColSubjectID       = "subject_id"
	ColComputedSUVR    = "global_cortical_suvr"
	ColComputedCL      = "global_cortical_centiloid"
	ColReferenceID     = "Subject"
	ColReferenceSUVR   = "SUVR"
	ColReferenceCL     = "Centiloid"
	ComputedTableName  = "computed"
	ReferenceTableName = "reference"
)

// ComputedColumns are required on the computed-results table
var ComputedColumns = []string{ColSubjectID, ColComputedSUVR, ColComputedCL}

// ReferenceColumns are required on the reference table
var ReferenceColumns = []string{ColReferenceID, ColReferenceSUVR, ColReferenceCL}

// ComputedRecord is one subject of the computed-results table
type ComputedRecord struct {
	SubjectID               string            `json:"subject_id"`
	GlobalCorticalSUVR      float64           `json:"global_cortical_suvr"`
	GlobalCorticalCentiloid float64           `json:"global_cortical_centiloid"`
	Passthrough             map[string]string `json:"passthrough,omitempty"`
}

// ReferenceRecord is one subject of the published reference table
type ReferenceRecord struct {
	Subject   string  `json:"subject"`
	SUVR      float64 `json:"suvr"`
	Centiloid float64 `json:"centiloid"`
}

// MergedRecord pairs exactly one computed and one reference record under a normalized identifier
type MergedRecord struct {
	SubjectID string          `json:"subject_id"`
	Computed  ComputedRecord  `json:"computed"`
	Reference ReferenceRecord `json:"reference"`
}

// Metric names one of the two validated quantities
type Metric string

const (
	MetricSUVR      Metric = "suvr"
	MetricCentiloid Metric = "centiloid"
)

// MetricPair binds a metric to its computed/reference columns and display labels
type MetricPair struct {
	Metric          Metric
	Name            string
	Title           string
	ReportHeading   string
	ComputedColumn  string
	ReferenceColumn string
	XLabel          string
	YLabel          string
}

// MetricPairs lists the validated metrics in report order
var MetricPairs = []MetricPair{
	{
		Metric:          MetricSUVR,
		Name:            "SUVR",
		Title:           "SUVR Correlation",
		ReportHeading:   "Global Cortical SUVR Correlation",
		ComputedColumn:  ColComputedSUVR,
		ReferenceColumn: ColReferenceSUVR,
		XLabel:          "Calculated SUVR",
		YLabel:          "Reference SUVR",
	},
	{
		Metric:          MetricCentiloid,
		Name:            "Centiloid",
		Title:           "Centiloid Correlation",
		ReportHeading:   "Centiloid Value Correlation",
		ComputedColumn:  ColComputedCL,
		ReferenceColumn: ColReferenceCL,
		XLabel:          "Calculated Centiloid",
		YLabel:          "Reference Centiloid",
	},
}

// CorrelationResult holds the statistics of one metric pair. It is computed once per run.
type CorrelationResult struct {
	Metric    Metric  `json:"metric"`
	N         int     `json:"n"`
	R         float64 `json:"r"`
	PValue    float64 `json:"p_value"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`

	// Descriptives of the paired samples
	MeanComputed   float64 `json:"mean_computed"`
	MeanReference  float64 `json:"mean_reference"`
	MeanDifference float64 `json:"mean_difference"`
	SDDifference   float64 `json:"sd_difference"`

	// Distribution of reference - computed and the Tukey fences around it
	Differences Distribution `json:"differences"`
	LowerFence  float64      `json:"lower_fence"`
	UpperFence  float64      `json:"upper_fence"`
	Outliers    []string     `json:"outliers,omitempty"`
}

// Distribution holds the location and spread of one sample
type Distribution struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
}

// Results carries both metric correlations of a run
type Results struct {
	SUVR      CorrelationResult `json:"suvr"`
	Centiloid CorrelationResult `json:"centiloid"`
}

// Get returns the result of a metric
func (r Results) Get(m Metric) (CorrelationResult, error) {
	switch m {
	case MetricSUVR:
		return r.SUVR, nil
	case MetricCentiloid:
		return r.Centiloid, nil
	}
	return CorrelationResult{}, fmt.Errorf("unknown metric %q", m)
}

// Set stores the result under its metric
func (r *Results) Set(res CorrelationResult) error {
	switch res.Metric {
	case MetricSUVR:
		r.SUVR = res
	case MetricCentiloid:
		r.Centiloid = res
	default:
		return fmt.Errorf("unknown metric %q", res.Metric)
	}
	return nil
}
