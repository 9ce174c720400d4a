package source

import (
	"testing"

	"github.com/evalgate/evalgate/pkg/types"
)

func TestParseDSVQuoting(t *testing.T) {
	content := "name,score,note\n\"smith, jane\",0.9,\"says \"\"hi\"\"\"\nbob,0.8,\"line1\nline2\"\n"
	rows, err := parseDSV(content, ',', '"')
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][0] != "smith, jane" {
		t.Fatalf("delimiter inside quotes mangled: %q", rows[1][0])
	}
	if rows[1][2] != `says "hi"` {
		t.Fatalf("doubled quotes mangled: %q", rows[1][2])
	}
	if rows[2][2] != "line1\nline2" {
		t.Fatalf("embedded newline mangled: %q", rows[2][2])
	}
}

func TestParseDSVLineEndings(t *testing.T) {
	for _, content := range []string{"a,b\r\n1,2\r\n", "a,b\n1,2\n", "a,b\r1,2\r"} {
		rows, err := parseDSV(content, ',', '"')
		if err != nil {
			t.Fatalf("parse %q: %v", content, err)
		}
		if len(rows) != 2 || rows[1][0] != "1" || rows[1][1] != "2" {
			t.Fatalf("parse %q: got %v", content, rows)
		}
	}
}

func TestParseDSVCustomDialect(t *testing.T) {
	rows, err := parseDSV("a;b\n'x;y';2\n", ';', '\'')
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rows[1][0] != "x;y" {
		t.Fatalf("custom quote not honored: %q", rows[1][0])
	}
}

func TestParseDSVUnterminatedQuote(t *testing.T) {
	if _, err := parseDSV("a,b\n\"open,2\n", ',', '"'); err == nil {
		t.Fatalf("expected unterminated quote error")
	}
}

func TestParseDSVNoTrailingNewline(t *testing.T) {
	rows, err := parseDSV("a,b\n1,", ',', '"')
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 || len(rows[1]) != 2 || rows[1][1] != "" {
		t.Fatalf("trailing empty field lost: %v", rows)
	}
}

func TestAutoType(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"null", nil},
		{"true", true},
		{"FALSE", false},
		{"0.85", float64(0.85)},
		{"-3", float64(-3)},
		{"1e3", float64(1000)},
		{"fast", "fast"},
		{"2024-06-01", "2024-06-01"},
	}
	for _, tc := range cases {
		got := autoType(tc.in)
		if got != tc.want {
			t.Fatalf("autoType(%q) = %v (%T), want %v", tc.in, got, got, tc.want)
		}
	}

	parsed, ok := autoType(`{"a":1}`).(map[string]any)
	if !ok {
		t.Fatalf("json-looking cell not parsed")
	}
	if v, _ := parsed["a"].(float64); v != 1 {
		t.Fatalf("json cell value wrong: %v", parsed)
	}
	if got := autoType("{not json"); got != "{not json" {
		t.Fatalf("unparseable json cell should stay a string, got %v", got)
	}
}

func TestCSVRowsHeaderless(t *testing.T) {
	header := false
	rows, err := csvRows("1,ok\n2,fail\n", &types.EvalSourceConfig{Header: &header})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if v, _ := rows[0]["col_0"].(float64); v != 1 {
		t.Fatalf("positional column naming broken: %v", rows[0])
	}
	if rows[1]["col_1"] != "fail" {
		t.Fatalf("positional column naming broken: %v", rows[1])
	}
}
