package analysis

import (
	"strings"

	"centival/domain/cohort"
	"centival/internal"
	apperrors "centival/internal/errors"
	"centival/internal/profiling"
	"centival/internal/subject"
)

// Series is one metric's paired samples in merged-row order
type Series struct {
	Pair      cohort.MetricPair
	Computed  []float64
	Reference []float64
}

// Outcome is everything one JoinAndCorrelate call produces
type Outcome struct {
	Merged  *cohort.Table
	Join    *JoinResult
	Results cohort.Results
	Series  []Series
	Records []cohort.MergedRecord
}

// SubjectIDs returns the merged subject identifiers in row order
func (o *Outcome) SubjectIDs() []string {
	col, ok := o.Merged.Column(cohort.ColSubjectID)
	if !ok {
		return nil
	}
	return append([]string(nil), col.Values...)
}

// Engine joins the computed and reference tables and correlates both metric pairs
type Engine struct {
	policy DuplicatePolicy
	logger *internal.Logger
}

// NewEngine creates an engine with the given duplicate-key policy
func NewEngine(policy DuplicatePolicy, logger *internal.Logger) *Engine {
	if policy == "" {
		policy = KeepFirst
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{policy: policy, logger: logger}
}

// JoinAndCorrelate joins on normalized identifiers and correlates both metric pairs.
// The identifier columns of both tables are normalized in place.
func (e *Engine) JoinAndCorrelate(computed, reference *cohort.Table) (*Outcome, error) {
	if err := computed.RequireColumns(cohort.ComputedTableName, cohort.ComputedColumns...); err != nil {
		return nil, err
	}
	if err := reference.RequireColumns(cohort.ReferenceTableName, cohort.ReferenceColumns...); err != nil {
		return nil, err
	}
	if err := subject.NormalizeColumn(computed, cohort.ColSubjectID); err != nil {
		return nil, apperrors.Wrapf(err, "normalize %s", computed.Source)
	}
	if err := subject.NormalizeColumn(reference, cohort.ColReferenceID); err != nil {
		return nil, apperrors.Wrapf(err, "normalize %s", reference.Source)
	}

	join, err := InnerJoin(computed, reference, JoinSpec{
		LeftName:  cohort.ComputedTableName,
		RightName: cohort.ReferenceTableName,
		LeftKey:   cohort.ColSubjectID,
		RightKey:  cohort.ColReferenceID,
		Policy:    e.policy,
	})
	if err != nil {
		return nil, err
	}
	e.logJoin(join)

	merged := join.Merged
	n := merged.RowCount()
	if n < MinSampleSize {
		return nil, apperrors.InsufficientSample(n, MinSampleSize)
	}

	outcome := &Outcome{Merged: merged, Join: join}
	ids := outcome.SubjectIDs()
	for _, pair := range cohort.MetricPairs {
		x, err := merged.Float64s(pair.ComputedColumn, cohort.ColSubjectID)
		if err != nil {
			return nil, err
		}
		y, err := merged.Float64s(join.RightColumn(pair.ReferenceColumn), cohort.ColSubjectID)
		if err != nil {
			return nil, err
		}

		res, err := correlate(pair, x, y)
		if err != nil {
			return nil, apperrors.Wrapf(err, "%s", strings.ToLower(pair.Title))
		}
		profile, err := profiling.ProfileDifferences(ids, x, y)
		if err != nil {
			return nil, apperrors.Wrapf(err, "profile %s differences", pair.Metric)
		}
		res.Differences = profile.Summary
		res.LowerFence, res.UpperFence = profile.Lower, profile.Upper
		res.Outliers = profile.Outliers
		if len(profile.Outliers) > 0 {
			e.logger.Warn("%s: %d subjects outside difference fences [%.4f, %.4f]: %v",
				pair.Metric, len(profile.Outliers), profile.Lower, profile.Upper, profile.Outliers)
		}
		if err := outcome.Results.Set(res); err != nil {
			return nil, apperrors.Wrap(err, "store result")
		}
		outcome.Series = append(outcome.Series, Series{Pair: pair, Computed: x, Reference: y})
		e.logger.Trace("%s pairs: computed=%v reference=%v", pair.Metric, x, y)
		e.logger.Debug("%s: n=%d r=%.6f p=%.6e slope=%.6f intercept=%.6f",
			pair.Metric, res.N, res.R, res.PValue, res.Slope, res.Intercept)
	}

	outcome.Records = buildRecords(computed, join, outcome.Series)
	return outcome, nil
}

func correlate(pair cohort.MetricPair, x, y []float64) (cohort.CorrelationResult, error) {
	r, p, err := Pearson(x, y)
	if err != nil {
		return cohort.CorrelationResult{}, err
	}
	slope, intercept, err := FitOLS(x, y)
	if err != nil {
		return cohort.CorrelationResult{}, err
	}
	agreement := Describe(x, y)

	return cohort.CorrelationResult{
		Metric:         pair.Metric,
		N:              len(x),
		R:              r,
		PValue:         p,
		Slope:          slope,
		Intercept:      intercept,
		MeanComputed:   agreement.MeanComputed,
		MeanReference:  agreement.MeanReference,
		MeanDifference: agreement.MeanDifference,
		SDDifference:   agreement.SDDifference,
	}, nil
}

func (e *Engine) logJoin(join *JoinResult) {
	if len(join.DroppedLeft) > 0 {
		e.logger.Warn("computed table repeats subject IDs %v; keeping first occurrence", join.DroppedLeft)
	}
	if len(join.DroppedRight) > 0 {
		e.logger.Warn("reference table repeats subject IDs %v; keeping first occurrence", join.DroppedRight)
	}
	if len(join.UnmatchedLeft) > 0 {
		e.logger.Info("%d computed subjects have no reference values: %v", len(join.UnmatchedLeft), join.UnmatchedLeft)
	}
	if len(join.UnmatchedRight) > 0 {
		e.logger.Debug("%d reference subjects were not computed", len(join.UnmatchedRight))
	}
	e.logger.Info("merged %d subjects", join.Merged.RowCount())
}

// buildRecords turns merged rows into typed records; computed-side columns other
// than the identifier and metrics are carried as passthrough
func buildRecords(computed *cohort.Table, join *JoinResult, series []Series) []cohort.MergedRecord {
	merged := join.Merged
	ids, _ := merged.Column(cohort.ColSubjectID)
	refIDs, _ := merged.Column(join.RightColumn(cohort.ColReferenceID))

	var passthrough []string
	for _, name := range computed.ColumnNames() {
		switch name {
		case cohort.ColSubjectID, cohort.ColComputedSUVR, cohort.ColComputedCL:
			continue
		}
		passthrough = append(passthrough, name)
	}

	var suvr, cl Series
	for _, s := range series {
		switch s.Pair.Metric {
		case cohort.MetricSUVR:
			suvr = s
		case cohort.MetricCentiloid:
			cl = s
		}
	}

	records := make([]cohort.MergedRecord, merged.RowCount())
	for i := range records {
		var extra map[string]string
		if len(passthrough) > 0 {
			extra = make(map[string]string, len(passthrough))
			for _, name := range passthrough {
				col, _ := merged.Column(name)
				extra[name] = col.Values[i]
			}
		}
		records[i] = cohort.MergedRecord{
			SubjectID: ids.Values[i],
			Computed: cohort.ComputedRecord{
				SubjectID:               ids.Values[i],
				GlobalCorticalSUVR:      suvr.Computed[i],
				GlobalCorticalCentiloid: cl.Computed[i],
				Passthrough:             extra,
			},
			Reference: cohort.ReferenceRecord{
				Subject:   refIDs.Values[i],
				SUVR:      suvr.Reference[i],
				Centiloid: cl.Reference[i],
			},
		}
	}
	return records
}
