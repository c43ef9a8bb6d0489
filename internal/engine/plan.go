package engine

import "math"

// DefaultMaxLevelCount caps the number of pixelation levels of a session.
// Together with the source it bounds the cache to DefaultMaxLevelCount+1
// full-size buffers.
const DefaultMaxLevelCount = 50

// pixelsPerLevel is the source width that contributes one unit of the
// coarsest block size. An image narrower than this has no levels beyond the
// original.
const pixelsPerLevel = 8

// Plan describes the discrete pixelation levels derived from a source image.
type Plan struct {
	// MaxLevel is the coarsest level. Levels run from 0 (the original
	// image) to MaxLevel inclusive.
	MaxLevel int `json:"max_level"`

	// BlockSizeUnit is the block size increment between two adjacent
	// levels. Zero when MaxLevel is 0.
	BlockSizeUnit float64 `json:"block_size_unit"`
}

// NewPlan derives the level plan for a source of the given width.
//
// MaxLevel is min(width/8, maxLevelCount) and BlockSizeUnit is
// (width/8)/MaxLevel, so the coarsest level always uses blocks of width/8
// pixels. A maxLevelCount of zero or less selects DefaultMaxLevelCount.
func NewPlan(width, maxLevelCount int) Plan {
	if maxLevelCount <= 0 {
		maxLevelCount = DefaultMaxLevelCount
	}

	maxScale := width / pixelsPerLevel
	if maxScale < 0 {
		maxScale = 0
	}
	maxLevel := min(maxScale, maxLevelCount)
	if maxLevel == 0 {
		return Plan{}
	}

	return Plan{
		MaxLevel:      maxLevel,
		BlockSizeUnit: float64(maxScale) / float64(maxLevel),
	}
}

// BlockSize returns the block side length used for level.
//
// The result is non-decreasing in level and is at least 1 for every level in
// 1..MaxLevel. Level 0 is never pixelated and reports 1.
func (p Plan) BlockSize(level int) int {
	if level <= 0 {
		return 1
	}
	return int(math.Round(float64(level) * p.BlockSizeUnit))
}

// Clamp forces level into 0..MaxLevel.
func (p Plan) Clamp(level int) int {
	if level < 0 {
		return 0
	}
	if level > p.MaxLevel {
		return p.MaxLevel
	}
	return level
}

// Levels returns the number of cache slots, MaxLevel+1.
func (p Plan) Levels() int {
	return p.MaxLevel + 1
}

// BlockSizes returns the block size of every level, indexed by level.
func (p Plan) BlockSizes() []int {
	sizes := make([]int, p.Levels())
	for level := range sizes {
		sizes[level] = p.BlockSize(level)
	}
	return sizes
}
