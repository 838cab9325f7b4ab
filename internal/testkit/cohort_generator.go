// Package testkit generates synthetic computed/reference cohorts for tests.
package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"centival/domain/cohort"
)

// CohortGeneratorConfig configures the cohort generator
type CohortGeneratorConfig struct {
	Subjects      int     `json:"subjects"`       // present in both tables
	ComputedOnly  int     `json:"computed_only"`  // present only in the computed table
	ReferenceOnly int     `json:"reference_only"` // present only in the reference table
	SUVRMean      float64 `json:"suvr_mean"`
	SUVRSD        float64 `json:"suvr_sd"`
	Noise         float64 `json:"noise"` // SD of the computed-vs-reference SUVR error
	Shuffle       bool    `json:"shuffle"`
	Seed          int64   `json:"seed"`
}

// DefaultCohortConfig mimics a young-control plus AD cohort
func DefaultCohortConfig() CohortGeneratorConfig {
	return CohortGeneratorConfig{
		Subjects: 40,
		SUVRMean: 1.6,
		SUVRSD:   0.45,
		Noise:    0.03,
		Seed:     42,
	}
}

// PiB conversion from whole-cerebellum SUVR to Centiloid
const (
	CentiloidSlope     = 93.7
	CentiloidIntercept = -94.6
)

// Cohort is a generated pair of tables in row-major form
type Cohort struct {
	ComputedHeaders  []string
	ComputedRows     [][]string
	ReferenceHeaders []string
	ReferenceRows    [][]string
	SharedIDs        []string
}

// CohortGenerator produces deterministic cohorts for a given seed
type CohortGenerator struct {
	config CohortGeneratorConfig
	rng    *rand.Rand
}

// NewCohortGenerator creates a new cohort generator
func NewCohortGenerator(config CohortGeneratorConfig) *CohortGenerator {
	return &CohortGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds both tables
func (g *CohortGenerator) Generate() Cohort {
	c := Cohort{
		ComputedHeaders:  append([]string(nil), cohort.ComputedColumns...),
		ReferenceHeaders: append([]string(nil), cohort.ReferenceColumns...),
	}

	n := g.config.Subjects + g.config.ComputedOnly + g.config.ReferenceOnly
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("sub-%03d", i+1)
		ref := math.Max(0.8, g.config.SUVRMean+g.rng.NormFloat64()*g.config.SUVRSD)
		calc := ref + g.rng.NormFloat64()*g.config.Noise

		switch {
		case i < g.config.Subjects:
			c.SharedIDs = append(c.SharedIDs, id)
			c.ComputedRows = append(c.ComputedRows, row(id, calc))
			c.ReferenceRows = append(c.ReferenceRows, row(id, ref))
		case i < g.config.Subjects+g.config.ComputedOnly:
			c.ComputedRows = append(c.ComputedRows, row(id, calc))
		default:
			c.ReferenceRows = append(c.ReferenceRows, row(id, ref))
		}
	}

	if g.config.Shuffle {
		g.rng.Shuffle(len(c.ReferenceRows), func(i, j int) {
			c.ReferenceRows[i], c.ReferenceRows[j] = c.ReferenceRows[j], c.ReferenceRows[i]
		})
	}
	return c
}

func row(id string, suvr float64) []string {
	return []string{id, format(suvr), format(Centiloid(suvr))}
}

// Centiloid converts a PiB SUVR to the Centiloid scale
func Centiloid(suvr float64) float64 {
	return CentiloidSlope*suvr + CentiloidIntercept
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Tables returns the cohort as in-memory tables
func (c Cohort) Tables() (*cohort.Table, *cohort.Table, error) {
	computed, err := cohort.NewTable("computed.csv", c.ComputedHeaders, c.ComputedRows)
	if err != nil {
		return nil, nil, err
	}
	reference, err := cohort.NewTable("reference.csv", c.ReferenceHeaders, c.ReferenceRows)
	if err != nil {
		return nil, nil, err
	}
	return computed, reference, nil
}

// WriteCSV writes all_subjects_results.csv and Centiloid_Project_Values.csv into dir
func (c Cohort) WriteCSV(dir string) (computedPath, referencePath string, err error) {
	computedPath = filepath.Join(dir, "all_subjects_results.csv")
	referencePath = filepath.Join(dir, "Centiloid_Project_Values.csv")
	if err := writeCSV(computedPath, c.ComputedHeaders, c.ComputedRows); err != nil {
		return "", "", err
	}
	if err := writeCSV(referencePath, c.ReferenceHeaders, c.ReferenceRows); err != nil {
		return "", "", err
	}
	return computedPath, referencePath, nil
}

func writeCSV(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}
