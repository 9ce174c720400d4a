package record

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCanonicalizeOrdersAndStripsNulls(t *testing.T) {
	input := map[string]any{
		"b": "value",
		"a": 1,
		"c": nil,
		"d": map[string]any{
			"z": nil,
			"y": true,
		},
	}

	got, err := Canonicalize(input)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}

	want := `{"a":1,"b":"value","d":{"y":true}}`
	if string(got) != want {
		t.Fatalf("unexpected canonical json:\n%s\nwant:\n%s", got, want)
	}
}

func TestCanonicalizeFloats(t *testing.T) {
	got, err := Canonicalize(map[string]any{"score": 0.85, "count": 3.0})
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}

	want := `{"count":3,"score":0.85}`
	if string(got) != want {
		t.Fatalf("unexpected canonical json: %s", got)
	}
}

func TestCanonicalizeRejectsNonFiniteFloat(t *testing.T) {
	_, err := Canonicalize(math.NaN())
	if err != ErrNonFiniteFloat {
		t.Fatalf("expected ErrNonFiniteFloat for NaN, got %v", err)
	}

	_, err = Canonicalize(math.Inf(1))
	if err != ErrNonFiniteFloat {
		t.Fatalf("expected ErrNonFiniteFloat for Inf, got %v", err)
	}
}

func TestCanonicalizeJSONNumber(t *testing.T) {
	got, err := Canonicalize(json.Number("42"))
	if err != nil {
		t.Fatalf("canonicalize int number: %v", err)
	}
	if string(got) != "42" {
		t.Fatalf("unexpected canonical json: %s", got)
	}

	got, err = Canonicalize(json.Number("1.25"))
	if err != nil {
		t.Fatalf("canonicalize float number: %v", err)
	}
	if string(got) != "1.25" {
		t.Fatalf("unexpected canonical json: %s", got)
	}
}

func TestCanonicalizeNormalizesNFC(t *testing.T) {
	input := map[string]any{
		"text": "é",
	}

	got, err := Canonicalize(input)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}

	want := "{\"text\":\"é\"}"
	if string(got) != want {
		t.Fatalf("unexpected canonical json:\n%s\nwant:\n%s", got, want)
	}
}

func TestCanonicalizeMapKeyCollision(t *testing.T) {
	input := map[string]any{
		"é": 1,
		"é":  2,
	}

	_, err := Canonicalize(input)
	if err != ErrKeyCollision {
		t.Fatalf("expected ErrKeyCollision, got %v", err)
	}
}

func TestCanonicalizeNilSlice(t *testing.T) {
	var s []string
	got, err := Canonicalize(s)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if string(got) != "null" {
		t.Fatalf("expected null for nil slice, got %s", got)
	}
}
