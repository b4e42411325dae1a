package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSeed is the shuffle seed used when none is configured.
const DefaultSeed uint64 = 42

const ratioTolerance = 1e-6

// Ratios is a train/validation/test partition.
type Ratios struct {
	Train float64 `yaml:"train" json:"train"`
	Val   float64 `yaml:"val" json:"val"`
	Test  float64 `yaml:"test" json:"test"`
}

// DefaultRatios returns the 0.8/0.1/0.1 partition.
func DefaultRatios() Ratios {
	return Ratios{Train: 0.8, Val: 0.1, Test: 0.1}
}

// Validate checks that the ratios are non-negative and sum to 1.
func (r Ratios) Validate() error {
	if r.Train < 0 || r.Val < 0 || r.Test < 0 {
		return fmt.Errorf("%w: negative ratio in %.3f/%.3f/%.3f", ErrInvalidRatios, r.Train, r.Val, r.Test)
	}
	sum := r.Train + r.Val + r.Test
	if math.Abs(sum-1.0) > ratioTolerance {
		return fmt.Errorf("%w: got %.6f", ErrInvalidRatios, sum)
	}
	return nil
}

// SplitResult reports the files written by Split and their line counts.
type SplitResult struct {
	TrainPath string
	ValPath   string
	TestPath  string
	Train     int
	Val       int
	Test      int
}

// Files returns the written paths in train, val, test order.
func (s SplitResult) Files() []string {
	return []string{s.TrainPath, s.ValPath, s.TestPath}
}

// Split shuffles the lines of a JSONL file with a seeded generator and writes
// <base>_train.jsonl, <base>_val.jsonl and <base>_test.jsonl into outDir.
// When outDir is empty the files are written next to the input.
func Split(path, outDir string, r Ratios, seed uint64) (SplitResult, error) {
	if err := r.Validate(); err != nil {
		return SplitResult{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SplitResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	lines := splitLines(string(data))

	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(len(lines), func(i, j int) {
		lines[i], lines[j] = lines[j], lines[i]
	})

	n := float64(len(lines))
	trainEnd := int(math.Floor(r.Train * n))
	valEnd := trainEnd + int(math.Floor(r.Val*n))
	if valEnd > len(lines) {
		valEnd = len(lines)
	}

	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	if err := EnsureDir(outDir); err != nil {
		return SplitResult{}, err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	result := SplitResult{
		TrainPath: filepath.Join(outDir, base+"_train.jsonl"),
		ValPath:   filepath.Join(outDir, base+"_val.jsonl"),
		TestPath:  filepath.Join(outDir, base+"_test.jsonl"),
		Train:     trainEnd,
		Val:       valEnd - trainEnd,
		Test:      len(lines) - valEnd,
	}

	parts := []struct {
		path  string
		lines []string
	}{
		{result.TrainPath, lines[:trainEnd]},
		{result.ValPath, lines[trainEnd:valEnd]},
		{result.TestPath, lines[valEnd:]},
	}
	for _, p := range parts {
		if err := os.WriteFile(p.path, []byte(strings.Join(p.lines, "")), 0644); err != nil {
			return SplitResult{}, fmt.Errorf("write %s: %w", p.path, err)
		}
	}
	return result, nil
}

// splitLines returns every line of s with its original line ending, so CRLF
// files are copied byte for byte. A final line without a newline gets one, so
// it cannot run into the next line once shuffled.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
		lines[n-1] += "\n"
	}
	return lines
}
