package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadPatterns(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "block list with comments",
			content: "# projects\n- \"/r/**/*.md\"\n# - \"/ignored\"\n- /src/*.go\n",
			want:    []string{"/r/**/*.md", "/src/*.go"},
		},
		{
			name:    "flow list",
			content: "[\"/a/*\", \"/b/*\"]",
			want:    []string{"/a/*", "/b/*"},
		},
		{
			name:    "duplicates, empties and non-strings dropped",
			content: "- /a/*\n- \"\"\n- 42\n- {x: 1}\n- /a/*\n- /b/*\n",
			want:    []string{"/a/*", "/b/*"},
		},
		{
			name:    "template is empty",
			content: PatternTemplate,
			want:    []string{},
		},
		{
			name:    "mapping is not a list",
			content: "patterns: [/a]\n",
			want:    []string{},
		},
		{
			name:    "malformed",
			content: "- [unclosed\n",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), PatternFileName)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			got := LoadPatterns(path)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadPatterns() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLoadPatterns_MissingFile(t *testing.T) {
	got := LoadPatterns(filepath.Join(t.TempDir(), "nope.yaml"))
	if got == nil || len(got) != 0 {
		t.Errorf("LoadPatterns() = %#v, want empty slice", got)
	}
}

func TestLoadPatterns_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	path := filepath.Join(t.TempDir(), PatternFileName)
	if err := os.WriteFile(path, []byte("- ~/notes/*.md\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got := LoadPatterns(path)
	if len(got) != 1 || !strings.HasPrefix(got[0], home) {
		t.Errorf("LoadPatterns() = %v, want prefix %s", got, home)
	}
}

func TestEnsurePatternFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", PatternFileName)

	created, err := EnsurePatternFile(path)
	if err != nil || !created {
		t.Fatalf("EnsurePatternFile() = %v, %v; want true, nil", created, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != PatternTemplate {
		t.Errorf("content = %q, want template", data)
	}

	if err := os.WriteFile(path, []byte("- /x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	created, err = EnsurePatternFile(path)
	if err != nil || created {
		t.Fatalf("second EnsurePatternFile() = %v, %v; want false, nil", created, err)
	}
	if got := LoadPatterns(path); !reflect.DeepEqual(got, []string{"/x"}) {
		t.Errorf("existing file was modified: %v", got)
	}
}
