// Package tokenizer estimates token counts for snapshot text and derives the
// per-model usage report from a fixed table of target-model profiles.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/scharc/snaprepo/internal/types"
)

// baselineEncodingName is the tiktoken encoding producing the baseline count
// that every model profile scales with its multiplier.
const baselineEncodingName = "cl100k_base"

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

type baselineCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter baselineCounter) Name() string {
	return counter.name
}

func (counter baselineCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	tokenIDs := counter.encoding.Encode(input, nil, nil)
	return len(tokenIDs), nil
}

// NewCounter returns the baseline Counter used for all estimates.
func NewCounter() (Counter, error) {
	encoding, encodingError := tiktoken.GetEncoding(baselineEncodingName)
	if encodingError != nil {
		return nil, fmt.Errorf("initialize baseline tokenizer: %w", encodingError)
	}
	return baselineCounter{encoding: encoding, name: baselineEncodingName}, nil
}

// modelProfiles is the fixed, ordered table of target models reported by the
// token-estimate section. Multipliers scale the baseline count; context
// sizes are fixed per model.
var modelProfiles = []types.ModelProfile{
	{Name: "GPT-4", Multiplier: 1.00, MaxContext: 8192},
	{Name: "GPT-3.5", Multiplier: 1.00, MaxContext: 4096},
	{Name: "Claude", Multiplier: 0.80, MaxContext: 100000},
	{Name: "GPT-O1", Multiplier: 1.10, MaxContext: 4096},
	{Name: "Ollama-Llama2-7B", Multiplier: 0.90, MaxContext: 4096},
	{Name: "Ollama-Llama2-13B", Multiplier: 0.85, MaxContext: 4096},
}

// ModelProfiles returns a copy of the compiled-in model profile table.
func ModelProfiles() []types.ModelProfile {
	result := make([]types.ModelProfile, len(modelProfiles))
	copy(result, modelProfiles)
	return result
}

// EstimateAll derives the usage report for every model profile from the
// baseline token count. Estimated tokens are the baseline count times the
// model multiplier, rounded down.
func EstimateAll(baselineTokens int) []types.ModelEstimate {
	estimates := make([]types.ModelEstimate, 0, len(modelProfiles))
	for _, profile := range modelProfiles {
		estimatedTokens := int(float64(baselineTokens) * profile.Multiplier)
		usagePercent := 0.0
		if profile.MaxContext > 0 {
			usagePercent = float64(estimatedTokens) / float64(profile.MaxContext) * 100
		}
		estimates = append(estimates, types.ModelEstimate{
			Name:         profile.Name,
			Tokens:       estimatedTokens,
			MaxContext:   profile.MaxContext,
			UsagePercent: usagePercent,
			Remaining:    profile.MaxContext - estimatedTokens,
		})
	}
	return estimates
}

// SnapshotAnalysis summarizes an existing snapshot file for the tokens command.
type SnapshotAnalysis struct {
	Characters int
	Lines      int
	CodeBlocks int
}

// AnalyzeSnapshot gathers basic statistics about snapshot content. Code
// blocks are counted as pairs of lines starting with a fence marker.
func AnalyzeSnapshot(content string) SnapshotAnalysis {
	lines := strings.Split(content, "\n")
	fenceLines := 0
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fenceLines++
		}
	}
	return SnapshotAnalysis{
		Characters: len(content),
		Lines:      len(lines),
		CodeBlocks: fenceLines / 2,
	}
}
