// Package subject canonicalizes subject identifiers so that independently
// authored tables can be joined on them.
//
// Normalization is limited to string coercion and surrounding-whitespace
// removal. Case and zero padding are left alone: "sub-2" and "sub-02" are
// different subjects.
package subject

import (
	"fmt"
	"strings"

	"centival/domain/cohort"
	apperrors "centival/internal/errors"

	"github.com/spf13/cast"
)

// NormalizeID converts v to its string form and trims surrounding whitespace
func NormalizeID(v any) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		s = fmt.Sprint(v)
	}
	return strings.TrimSpace(s)
}

// NormalizeColumn rewrites the identifier column of table in place
func NormalizeColumn(table *cohort.Table, column string) error {
	col, ok := table.Column(column)
	if !ok {
		return apperrors.SchemaError(table.Source, column)
	}
	for i, v := range col.Values {
		col.Values[i] = NormalizeID(v)
	}
	return nil
}
