package optimize

import (
	"math"

	"taskopt/internal/graph"
)

// RenameFunc renames a fused chain. Chain element ordering is renamer-
// specific (see defaultLinearRenamer and defaultReductionRenamer); ok=false
// means "no rename", so the caller keeps the surviving key's existing name.
type RenameFunc func(chain []graph.Key) (graph.Key, bool)

// LinearOptions configures FuseLinear.
type LinearOptions struct {
	// Keys lists keys that must not be fused away (spec.md §4.6).
	Keys []graph.Key `yaml:"keys,omitempty"`

	// Dependencies reuses a previously computed list-form dependency map
	// (e.g. cull's side output) instead of recomputing it.
	Dependencies *graph.DepList `yaml:"-"`

	// Rename overrides the default chain renamer. Ignored if DisableRename
	// is set.
	Rename RenameFunc `yaml:"-"`

	// DisableRename turns off renaming entirely; each chain's downstream
	// terminal key keeps its name and holds the fused value.
	DisableRename bool `yaml:"disableRename,omitempty"`
}

// FuseOptions configures Fuse. Nil pointer fields are filled in with
// spec.md §4.7's ave_width-derived defaults; AveWidth itself defaults to 1.
type FuseOptions struct {
	Keys         []graph.Key    `yaml:"keys,omitempty"`
	Dependencies *graph.DepList `yaml:"-"`

	AveWidth         *float64 `yaml:"aveWidth,omitempty"`
	MaxWidth         *float64 `yaml:"maxWidth,omitempty"`
	MaxHeight        *float64 `yaml:"maxHeight,omitempty"`
	MaxDepthNewEdges *float64 `yaml:"maxDepthNewEdges,omitempty"`

	// MaxFusedKeyLength bounds renamed key length (0 selects the default of
	// 120; a negative value disables the limit). Only consulted by the
	// default reduction renamer.
	MaxFusedKeyLength int `yaml:"maxFusedKeyLength,omitempty"`

	Rename        RenameFunc `yaml:"-"`
	DisableRename bool       `yaml:"disableRename,omitempty"`
	FuseSubgraphs bool       `yaml:"fuseSubgraphs,omitempty"`
}

// Float64 is a small convenience helper for constructing the pointer
// fields of FuseOptions from a literal.
func Float64(f float64) *float64 { return &f }

// resolved is the fully-defaulted form of FuseOptions actually consumed by
// Fuse's traversal.
type resolved struct {
	aveWidth         float64
	maxWidth         float64
	maxHeight        float64
	maxDepthNewEdges float64
}

func (o FuseOptions) resolve() resolved {
	aveWidth := 1.0
	if o.AveWidth != nil {
		aveWidth = *o.AveWidth
	}
	defaultHeightWidth := 1.5 + aveWidth*math.Log(aveWidth+1)
	maxHeight := defaultHeightWidth
	if o.MaxHeight != nil {
		maxHeight = *o.MaxHeight
	}
	maxWidth := defaultHeightWidth
	if o.MaxWidth != nil {
		maxWidth = *o.MaxWidth
	}
	maxDepthNewEdges := aveWidth * 1.5
	if o.MaxDepthNewEdges != nil {
		maxDepthNewEdges = *o.MaxDepthNewEdges
	}
	return resolved{
		aveWidth:         aveWidth,
		maxWidth:         maxWidth,
		maxHeight:        maxHeight,
		maxDepthNewEdges: maxDepthNewEdges,
	}
}
