package transcript

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSingleEntry(t *testing.T) {
	entries, err := Scan("(PHY621)(Classical Mechanics)(LEC)(3.000)( A- )", "PHY")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "621", e.Number)
	assert.Equal(t, "Classical Mechanics", e.Title)
	assert.Equal(t, "LEC", e.Component)
	assert.Equal(t, 3, e.Units)
	assert.Equal(t, "A-", e.Grade)
	assert.Equal(t, 0, e.Offset)
	assert.Equal(t, Course{"PHY621", 3}, e.Course())
}

func TestScanSeveralEntriesPerLine(t *testing.T) {
	text := "(Fall 2019-Physics) (PHY 621) Tj (Mechanics) Tj (LEC) (3.000) (A) " +
		"(PHY641)(Electrodynamics)(LEC)(3.500)(B+)(GRD998)(Continuation)(LEC)(0.000)(NR)"

	entries, err := Scan(text, "PHY")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "PHY621", entries[0].Code())
	assert.Equal(t, "PHY641", entries[1].Code())
	assert.Equal(t, 3, entries[1].Units, "units are truncated")

	entries, err = Scan(text, "GRD")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Course{"GRD998", 0}, entries[0].Course())
}

func TestScanSkipsPastMatchedFields(t *testing.T) {
	// The title starts with the subject marker; it must not be read as an entry.
	entries, err := Scan("(PHY514)(PHYSICS LAB)(LAB)(3.000)(A)", "PHY")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "PHYSICS LAB", entries[0].Title)
}

func TestScanNoOccurrences(t *testing.T) {
	entries, err := Scan("(Graduate Record)(12345-6789)", "PHY")
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = Scan("", "PHY")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScanMalformed(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field string
	}{
		{"missing grade", "(PHY621)(Mechanics)(LEC)(3.000)", FieldGrade},
		{"missing units", "(PHY621)(Mechanics)(LEC)", FieldUnits},
		{"missing title", "(PHY621)", FieldTitle},
		{"unterminated number", "(PHY621(Mechanics)(LEC)(3.000)(A)", FieldNumber},
		{"empty number", "(PHY)(Mechanics)(LEC)(3.000)(A)", FieldNumber},
		{"bad units", "(PHY621)(Mechanics)(LEC)(three)(A)", FieldUnits},
		{"negative units", "(PHY621)(Mechanics)(LEC)(-3.0)(A)", FieldUnits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan("header "+tt.text, "PHY")
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
			assert.Equal(t, tt.field, perr.Field)
			assert.Equal(t, "PHY", perr.Subject)
			assert.Equal(t, len("header "), perr.Offset)
			assert.True(t, errors.Is(err, ErrMalformed))
			assert.Contains(t, err.Error(), "PHY entry at offset 7")
		})
	}
}

func TestScanTruncatedEntryBeforeNextEntry(t *testing.T) {
	text := "(PHY621)(Mechanics)(LEC)(3.000)\n(PHY641)(Electrodynamics)(LEC)(3.000)(A)\n"

	entries, err := Scan(text, "PHY")
	require.Error(t, err)
	assert.Nil(t, entries)

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
	assert.Equal(t, FieldGrade, perr.Field)
	assert.Equal(t, 0, perr.Offset)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestScanEmptySubject(t *testing.T) {
	_, err := Scan("(PHY621)", "")
	assert.Error(t, err)
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"3.000", 3, false},
		{" 4.9 ", 4, false},
		{"0", 0, false},
		{"", 0, true},
		{"NaN", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseUnits(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
