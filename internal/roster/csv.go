package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// columnAliases maps normalized header names to roster fields.
var columnAliases = map[string]string{
	"id":            "id",
	"suid":          "id",
	"student_id":    "id",
	"name":          "name",
	"student_name":  "name",
	"citizenship":   "citizenship",
	"email":         "email",
	"email_address": "email",
}

// LoadCSV loads a roster from a CSV file.
func LoadCSV(path string) (*Static, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV reads a roster from CSV. The header row is required and must
// name an id and a name column; citizenship and email are optional.
func ReadCSV(r io.Reader) (*Static, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read roster header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		if field, ok := columnAliases[normalizeColumnName(col)]; ok {
			if _, seen := colIndex[field]; !seen {
				colIndex[field] = i
			}
		}
	}
	for _, col := range []string{"id", "name"} {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required roster column: %s", col)
		}
	}

	roster := NewStatic()
	lineNum := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNum++
		if err != nil {
			return nil, fmt.Errorf("failed to read roster row %d: %w", lineNum, err)
		}

		get := func(col string) string {
			if idx, ok := colIndex[col]; ok && idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
			return ""
		}
		if get("id") == "" && get("name") == "" {
			continue
		}

		id, err := ParseID(get("id"))
		if err != nil {
			return nil, fmt.Errorf("roster row %d: %w", lineNum, err)
		}
		if _, dup := roster.students[id]; dup {
			return nil, fmt.Errorf("roster row %d: duplicate student id %s", lineNum, FormatID(id))
		}
		roster.students[id] = Student{
			ID:          id,
			Name:        get("name"),
			Citizenship: get("citizenship"),
			Email:       get("email"),
		}
	}

	return roster, nil
}

// normalizeColumnName converts header names such as "Student ID" or
// "StudentName" to snake_case.
func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	name = strings.ReplaceAll(name, " ", "_")

	if strings.Contains(name, "_") || strings.ToLower(name) == name {
		return strings.ToLower(name)
	}

	var result strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(name[i-1])
			if prev >= 'a' && prev <= 'z' {
				result.WriteByte('_')
			}
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
