// Package entitysim aggregates concept similarity scores into entity-level
// scores. An entity is anything annotated with a set of ontology terms, a
// protein with its functional annotations being the canonical case. Three
// measure families are supported: pairwise best-match statistics over concept
// scores, groupwise set operations over ancestor-closed annotation sets, and
// ontology-independent set operations over the raw annotation sets.
package entitysim

import (
	"errors"
	"fmt"

	"github.com/gaston-software-dev/post-analysis-tools/internal/ic"
	"github.com/gaston-software-dev/post-analysis-tools/internal/termsim"
)

// Family identifies an entity similarity measure family member.
type Family string

// Pairwise best-match families combining concept scores.
const (
	Avg  Family = "avg"
	BMA  Family = "bma"
	ABM  Family = "abm"
	BMM  Family = "bmm"
	HDF  Family = "hdf"
	VHDF Family = "vhdf"
	Max  Family = "max"
)

// Pairwise edge-based entity measures that consume the topology directly.
const (
	ALN   Family = "aln"
	Intel Family = "intel"
	SPGK  Family = "spgk"
	LP    Family = "lp"
	Ye    Family = "ye"
)

// Groupwise measures over ancestor-closed annotation sets; the IC-weighted
// ones take an IC approach.
const (
	SimGIC Family = "simgic"
	SimDIC Family = "simdic"
	SimUIC Family = "simuic"
	SimCOU Family = "simcou"
	SimCOT Family = "simcot"
	SimUI  Family = "simui"
	SimUB  Family = "simub"
	SimDB  Family = "simdb"
	SimNTO Family = "simnto"
	SimCUB Family = "simcub"
	SimCTB Family = "simctb"
)

// Ontology-independent measures over the raw annotation sets.
const (
	Cho    Family = "cho"
	ALD    Family = "ald"
	KStats Family = "kstats"
	NTO    Family = "nto"
	UB     Family = "ub"
	DB     Family = "db"
	UI     Family = "ui"
)

var (
	bestMatch = map[Family]bool{
		Avg: true, BMA: true, ABM: true, BMM: true, HDF: true, VHDF: true,
		Max: true,
	}
	edgeEntity = map[Family]bool{
		ALN: true, Intel: true, SPGK: true, LP: true, Ye: true,
	}
	groupIC = map[Family]bool{
		SimGIC: true, SimDIC: true, SimUIC: true, SimCOU: true, SimCOT: true,
	}
	groupSet = map[Family]bool{
		SimUI: true, SimUB: true, SimDB: true, SimNTO: true, SimCUB: true,
		SimCTB: true,
	}
	indep = map[Family]bool{
		Cho: true, ALD: true, KStats: true, NTO: true, UB: true, DB: true,
		UI: true,
	}
)

// Measure binds a family to the concept model and IC approach it needs.
// Model applies only to the best-match families; Approach to best-match
// families running a node-based model and to the IC-weighted groupwise ones.
type Measure struct {
	Family   Family        `yaml:"family"`
	Model    termsim.Model `yaml:"model"`
	Approach ic.Approach   `yaml:"approach"`
}

// Measure configuration errors.
var (
	ErrUnknownFamily  = errors.New("unknown entity similarity family")
	ErrMeasureCombo   = errors.New("measure combination not supported")
	ErrNoAnnotations  = errors.New("no entity annotations")
	ErrNoEntityPairs  = errors.New("no entity pairs to score")
	ErrAlnAlphaRange  = errors.New("aln alpha must be strictly positive")
)

// DefaultMeasure is the measure used when the caller supplies none.
func DefaultMeasure() Measure {
	return Measure{Family: BMA, Model: termsim.Nunivers, Approach: ic.Universal}
}

// normalize fills measure defaults: best-match families fall back to the
// nunivers model under the universal approach, IC-weighted groupwise
// measures to the universal approach.
func (m Measure) normalize() Measure {
	if bestMatch[m.Family] {
		if m.Model == "" {
			m.Model = termsim.Nunivers
		}
		if termsim.NodeBased[m.Model] && m.Approach == "" {
			m.Approach = ic.Universal
		}
		if termsim.EdgeBased[m.Model] {
			m.Approach = ""
		}
	} else {
		m.Model = ""
		if groupIC[m.Family] {
			if m.Approach == "" {
				m.Approach = ic.Universal
			}
		} else {
			m.Approach = ""
		}
	}
	return m
}

// Validate rejects unknown families and unsupported combinations.
func (m Measure) Validate() error {
	switch {
	case bestMatch[m.Family]:
		if m.Model != "" && !termsim.Known(string(m.Model)) {
			return fmt.Errorf("%w: %s with model %q", ErrMeasureCombo, m.Family, m.Model)
		}
		if m.Approach != "" && !ic.Known(string(m.Approach)) {
			return fmt.Errorf("%w: %q", ic.ErrUnknownApproach, m.Approach)
		}
	case edgeEntity[m.Family], groupSet[m.Family], indep[m.Family]:
		if m.Model != "" || m.Approach != "" {
			return fmt.Errorf("%w: %s takes no model or approach", ErrMeasureCombo, m.Family)
		}
	case groupIC[m.Family]:
		if m.Model != "" {
			return fmt.Errorf("%w: %s takes no concept model", ErrMeasureCombo, m.Family)
		}
		if m.Approach != "" && !ic.Known(string(m.Approach)) {
			return fmt.Errorf("%w: %q", ic.ErrUnknownApproach, m.Approach)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFamily, m.Family)
	}
	return nil
}

// Params carries the tunables of the entity layer: the nested concept
// similarity parameters plus the Al-Mubaid&Nagar decay rate.
type Params struct {
	Concept  termsim.Params `yaml:"concept"`
	AlnAlpha float64        `yaml:"aln_alpha"`
	// Workers bounds the parallel fan-out over entity pairs; zero means
	// one worker per CPU.
	Workers int `yaml:"workers"`
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{Concept: termsim.DefaultParams(), AlnAlpha: 1.0}
}

// Validate range-checks the parameters.
func (p Params) Validate() error {
	if err := p.Concept.Validate(); err != nil {
		return err
	}
	if p.AlnAlpha <= 0 {
		return fmt.Errorf("%w: got %v", ErrAlnAlphaRange, p.AlnAlpha)
	}
	return nil
}
