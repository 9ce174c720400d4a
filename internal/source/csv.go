package source

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/evalgate/evalgate/pkg/types"
)

// parseDSV splits delimiter-separated content into string cells. The
// standard library reader is close but cannot change the quote
// character, which source configs allow, so the state machine is spelled
// out here. Quotes open only at the start of a field; doubled quotes
// inside a quoted field collapse to one; CRLF, LF, and bare CR all
// terminate a row; newlines inside quotes belong to the field.
func parseDSV(content string, delim, quote rune) ([][]string, error) {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
		quoted   bool
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
		quoted = false
	}
	endRow := func() {
		endField()
		rows = append(rows, row)
		row = nil
	}

	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inQuotes {
			if c == quote {
				if i+1 < len(runes) && runes[i+1] == quote {
					field.WriteRune(quote)
					i++
					continue
				}
				inQuotes = false
				continue
			}
			field.WriteRune(c)
			continue
		}
		switch {
		case c == quote && field.Len() == 0 && !quoted:
			inQuotes = true
			quoted = true
		case c == delim:
			endField()
		case c == '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			endRow()
		case c == '\n':
			endRow()
		default:
			field.WriteRune(c)
		}
	}
	if inQuotes {
		return nil, ErrUnterminatedQuote
	}
	if field.Len() > 0 || quoted || len(row) > 0 {
		endRow()
	}
	return rows, nil
}

// autoType converts a raw CSV cell into a typed value: empty or "null"
// cells become nil, true/false become booleans (case-insensitive),
// numeric-looking cells become numbers, JSON-looking cells are parsed
// (falling back to the raw string), and everything else stays a string.
func autoType(cell string) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return cell
}

func csvRows(content string, cfg *types.EvalSourceConfig) ([]map[string]any, error) {
	delim := ','
	if cfg.Delimiter != "" {
		delim = []rune(cfg.Delimiter)[0]
	}
	quote := '"'
	if cfg.Quote != "" {
		quote = []rune(cfg.Quote)[0]
	}

	raw, err := parseDSV(content, delim, quote)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	// Blank lines parse as a single empty cell; they are not rows.
	cells := raw[:0]
	for _, r := range raw {
		if len(r) == 1 && r[0] == "" {
			continue
		}
		cells = append(cells, r)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	hasHeader := cfg.Header == nil || *cfg.Header
	var header []string
	if hasHeader {
		header = cells[0]
		cells = cells[1:]
	}

	rows := make([]map[string]any, 0, len(cells))
	for _, rec := range cells {
		row := make(map[string]any, len(rec))
		for i, cell := range rec {
			name := "col_" + strconv.Itoa(i)
			if i < len(header) {
				name = header[i]
			}
			row[name] = autoType(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
