package util

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNormalizePatternPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dot", input: ".", expected: ""},
		{name: "Trim", input: "  ./foo/bar  ", expected: "foo/bar"},
		{name: "Relative", input: "foo/../bar", expected: "bar"},
		{name: "Backslashes", input: `tools\packages\cli`, expected: "tools/packages/cli"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizePatternPath(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  int
	}{
		{input: "", want: 1},
		{input: "one", want: 1},
		{input: "one\n", want: 2},
		{input: "one\ntwo", want: 2},
		{input: "a\nb\nc\n", want: 4},
	}
	for _, tc := range cases {
		if got := CountLines([]byte(tc.input)); got != tc.want {
			t.Errorf("CountLines(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()

	got := SortedStringKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRelSlash(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	got, err := RelSlash(root, filepath.Join(root, "tools", "packages", "a"))
	if err != nil {
		t.Fatalf("RelSlash: %v", err)
	}
	if got != "tools/packages/a" {
		t.Fatalf("expected tools/packages/a, got %q", got)
	}
}

func TestWriteFileWithDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "report.md")
	if err := WriteFileWithDirs(target, []byte("ok"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "ok" {
		t.Fatalf("unexpected content %q", string(data))
	}
}
