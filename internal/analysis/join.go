package analysis

import (
	"fmt"
	"strings"

	"centival/domain/cohort"
	apperrors "centival/internal/errors"
)

// DuplicatePolicy defines how repeated join keys are handled
type DuplicatePolicy string

const (
	KeepFirst    DuplicatePolicy = "keep_first" // Keep first occurrence, drop the rest
	ErrorOnDupes DuplicatePolicy = "error"      // Fail the run
)

// ParseDuplicatePolicy validates a policy name; empty selects KeepFirst
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.TrimSpace(s)) {
	case "", KeepFirst:
		return KeepFirst, nil
	case ErrorOnDupes:
		return ErrorOnDupes, nil
	}
	return "", apperrors.ConfigInvalid(fmt.Sprintf("unknown duplicate policy %q (use %q or %q)", s, KeepFirst, ErrorOnDupes))
}

// JoinSpec names the two tables and their key columns
type JoinSpec struct {
	LeftName  string
	RightName string
	LeftKey   string
	RightKey  string
	Policy    DuplicatePolicy
	// Suffix appended to right-hand columns whose names collide with left-hand ones
	CollisionSuffix string
}

// JoinResult is the inner join of two tables plus what was left out of it
type JoinResult struct {
	Merged *cohort.Table

	// RightColumns maps each right-hand column name to its name in Merged
	RightColumns map[string]string

	DroppedLeft    []string // duplicate keys dropped from the left table
	DroppedRight   []string // duplicate keys dropped from the right table
	UnmatchedLeft  []string
	UnmatchedRight []string
}

// RightColumn returns the merged-table name of a right-hand column
func (r *JoinResult) RightColumn(name string) string {
	if merged, ok := r.RightColumns[name]; ok {
		return merged
	}
	return name
}

// InnerJoin joins left and right on key equality. Blank keys never match.
// Output rows follow left row order, so the result is deterministic for identical
// inputs. Each merged row has exactly one contributing row per side.
func InnerJoin(left, right *cohort.Table, spec JoinSpec) (*JoinResult, error) {
	if spec.CollisionSuffix == "" {
		spec.CollisionSuffix = "_ref"
	}
	leftKeys, ok := left.Column(spec.LeftKey)
	if !ok {
		return nil, apperrors.SchemaError(spec.LeftName, spec.LeftKey)
	}
	rightKeys, ok := right.Column(spec.RightKey)
	if !ok {
		return nil, apperrors.SchemaError(spec.RightName, spec.RightKey)
	}

	leftRows, droppedLeft, err := firstOccurrences(leftKeys.Values, spec.LeftName, spec.Policy)
	if err != nil {
		return nil, err
	}
	rightRows, droppedRight, err := firstOccurrences(rightKeys.Values, spec.RightName, spec.Policy)
	if err != nil {
		return nil, err
	}

	result := &JoinResult{
		RightColumns: make(map[string]string, len(right.Columns)),
		DroppedLeft:  droppedLeft,
		DroppedRight: droppedRight,
	}

	// Pair rows
	var pairs [][2]int
	matched := make(map[string]bool)
	for i, key := range leftKeys.Values {
		if first, ok := leftRows[key]; !ok || first != i {
			continue
		}
		j, ok := rightRows[key]
		if !ok {
			result.UnmatchedLeft = append(result.UnmatchedLeft, key)
			continue
		}
		pairs = append(pairs, [2]int{i, j})
		matched[key] = true
	}
	for j, key := range rightKeys.Values {
		if first, ok := rightRows[key]; ok && first == j && !matched[key] {
			result.UnmatchedRight = append(result.UnmatchedRight, key)
		}
	}

	if len(pairs) == 0 {
		return nil, apperrors.EmptyJoin(fmt.Sprintf(
			"no matching subjects between %s (%s) and %s (%s) tables; check the subject IDs in both files (%s: %s; %s: %s)",
			spec.LeftName, spec.LeftKey, spec.RightName, spec.RightKey,
			spec.LeftName, sampleKeys(leftKeys.Values), spec.RightName, sampleKeys(rightKeys.Values)))
	}

	// Build merged columns: all left columns, then all right columns
	headers := make([]string, 0, len(left.Columns)+len(right.Columns))
	headers = append(headers, left.ColumnNames()...)
	for _, c := range right.Columns {
		name := c.Name
		if left.HasColumn(name) {
			name += spec.CollisionSuffix
		}
		result.RightColumns[c.Name] = name
		headers = append(headers, name)
	}

	records := make([][]string, len(pairs))
	for k, p := range pairs {
		row := left.Row(p[0])
		records[k] = append(row, right.Row(p[1])...)
	}

	merged, err := cohort.NewTable("merged", headers, records)
	if err != nil {
		return nil, err
	}
	result.Merged = merged
	return result, nil
}

// firstOccurrences maps each key to the row of its first appearance
func firstOccurrences(keys []string, table string, policy DuplicatePolicy) (map[string]int, []string, error) {
	rows := make(map[string]int, len(keys))
	var dropped []string
	for i, key := range keys {
		if key == "" {
			continue
		}
		if _, seen := rows[key]; seen {
			if policy == ErrorOnDupes {
				return nil, nil, apperrors.DuplicateKey(table, key)
			}
			dropped = append(dropped, key)
			continue
		}
		rows[key] = i
	}
	return rows, dropped, nil
}

func sampleKeys(keys []string) string {
	const max = 5
	quoted := make([]string, 0, max)
	for i, k := range keys {
		if i == max {
			quoted = append(quoted, fmt.Sprintf("… %d more", len(keys)-max))
			break
		}
		quoted = append(quoted, fmt.Sprintf("%q", k))
	}
	return strings.Join(quoted, ", ")
}
