package simconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ic"
	"github.com/gaston-software-dev/post-analysis-tools/internal/termsim"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "semsim.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadOverDefaults(t *testing.T) {
	path := writeConfig(t, `
ontology:
  file: terms.jsonl
  namespace: bp
concept:
  approach: seco
  correction_factor: 2
entity:
  workers: 8
output:
  format: json
  database: scores.db
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ontology.File != "terms.jsonl" || cfg.Ontology.Namespace != "bp" {
		t.Errorf("ontology block = %+v", cfg.Ontology)
	}
	if cfg.Concept.Approach != ic.Seco || cfg.Concept.CF != 2 {
		t.Errorf("concept block = %+v", cfg.Concept)
	}
	// Untouched fields keep their defaults.
	if cfg.Ontology.Weights != (Default().Ontology.Weights) {
		t.Errorf("weights = %+v, want defaults", cfg.Ontology.Weights)
	}
	if cfg.Concept.ZhongK != termsim.DefaultParams().ZhongK {
		t.Errorf("zhong k = %v, want default", cfg.Concept.ZhongK)
	}
	if cfg.Entity.Workers != 8 || cfg.Output.Format != "json" || cfg.Output.Database != "scores.db" {
		t.Errorf("entity/output blocks = %+v %+v", cfg.Entity, cfg.Output)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "ontology: ["},
		{"bad weight", "ontology:\n  weights:\n    is_a: 1.5\n"},
		{"bad correction factor", "concept:\n  correction_factor: 9\n"},
		{"bad format", "output:\n  format: xml\n"},
		{"negative aln alpha", "entity:\n  aln_alpha: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() of a missing file expected error, got nil")
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}

func TestEntityParams(t *testing.T) {
	cfg := Default()
	cfg.Concept.Approach = ic.Zhang
	cfg.Entity.Workers = 3
	cfg.Entity.AlnAlpha = 0 // unset in the file

	p := cfg.EntityParams()
	if p.Concept.Approach != ic.Zhang {
		t.Errorf("concept approach = %q, want zhang", p.Concept.Approach)
	}
	if p.Workers != 3 {
		t.Errorf("workers = %d, want 3", p.Workers)
	}
	if p.AlnAlpha != 1.0 {
		t.Errorf("aln alpha = %v, want the 1.0 fallback", p.AlnAlpha)
	}
}
