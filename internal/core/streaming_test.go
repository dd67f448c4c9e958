package core

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestNewTextReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "valid UTF-8 with multibyte",
			input:    []byte("héllo,wörld"),
			expected: "héllo,wörld",
		},
		{
			name:     "invalid single byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he�lo",
		},
		{
			name:     "UTF-16 with BOM",
			input:    []byte{0xFF, 0xFE, 'h', 0, 'i', 0},
			expected: "hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewTextReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestNewCSVReader(t *testing.T) {
	input := "\xEF\xBB\xBFname,amount\nacme,\"1,000\"\nshort\n"
	cr := NewCSVReader(strings.NewReader(input))

	header, err := cr.Read()
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if header[0] != "name" {
		t.Errorf("expected BOM stripped from first header, got %q", header[0])
	}

	row, err := cr.Read()
	if err != nil {
		t.Fatalf("read row: %v", err)
	}
	if len(row) != 2 || row[1] != "1,000" {
		t.Errorf("expected quoted field kept intact, got %q", row)
	}

	row, err = cr.Read()
	if err != nil {
		t.Fatalf("expected ragged row to be accepted, got %v", err)
	}
	if len(row) != 1 {
		t.Errorf("expected 1 field, got %d", len(row))
	}
}
