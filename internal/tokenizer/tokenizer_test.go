package tokenizer_test

import (
	"testing"

	"github.com/scharc/snaprepo/internal/tokenizer"
)

// TestEstimateAllScalesBaselineByProfile verifies the multiplier and
// remaining-context arithmetic for every compiled-in model profile.
func TestEstimateAllScalesBaselineByProfile(testingHandle *testing.T) {
	const baselineTokens = 1000

	expectedTokens := map[string]int{
		"GPT-4":             1000,
		"GPT-3.5":           1000,
		"Claude":            800,
		"GPT-O1":            1100,
		"Ollama-Llama2-7B":  900,
		"Ollama-Llama2-13B": 850,
	}

	estimates := tokenizer.EstimateAll(baselineTokens)
	if len(estimates) != len(expectedTokens) {
		testingHandle.Fatalf("expected %d estimates, got %d", len(expectedTokens), len(estimates))
	}

	for _, estimate := range estimates {
		expected, known := expectedTokens[estimate.Name]
		if !known {
			testingHandle.Fatalf("unexpected model %q in estimates", estimate.Name)
		}
		if estimate.Tokens != expected {
			testingHandle.Fatalf("%s: expected %d tokens, got %d", estimate.Name, expected, estimate.Tokens)
		}
		if estimate.Remaining != estimate.MaxContext-estimate.Tokens {
			testingHandle.Fatalf("%s: remaining %d does not match max context %d minus tokens %d",
				estimate.Name, estimate.Remaining, estimate.MaxContext, estimate.Tokens)
		}
	}
}

// TestEstimateAllZeroBaseline verifies the degenerate empty-snapshot case.
func TestEstimateAllZeroBaseline(testingHandle *testing.T) {
	for _, estimate := range tokenizer.EstimateAll(0) {
		if estimate.Tokens != 0 {
			testingHandle.Fatalf("%s: expected zero tokens, got %d", estimate.Name, estimate.Tokens)
		}
		if estimate.UsagePercent != 0 {
			testingHandle.Fatalf("%s: expected zero usage, got %f", estimate.Name, estimate.UsagePercent)
		}
		if estimate.Remaining != estimate.MaxContext {
			testingHandle.Fatalf("%s: expected full remaining context, got %d", estimate.Name, estimate.Remaining)
		}
	}
}

// TestModelProfilesReturnsCopy verifies that mutating the returned slice
// does not affect subsequent calls.
func TestModelProfilesReturnsCopy(testingHandle *testing.T) {
	profiles := tokenizer.ModelProfiles()
	if len(profiles) == 0 {
		testingHandle.Fatalf("expected a non-empty profile table")
	}
	originalName := profiles[0].Name
	profiles[0].Name = "mutated"

	if tokenizer.ModelProfiles()[0].Name != originalName {
		testingHandle.Fatalf("profile table was mutated through the returned copy")
	}
}

// TestAnalyzeSnapshot verifies character, line, and fenced-block counting.
func TestAnalyzeSnapshot(testingHandle *testing.T) {
	snapshotContent := "# Project Source Code\n\n```go\npackage main\n```\n"

	analysis := tokenizer.AnalyzeSnapshot(snapshotContent)
	if analysis.Characters != len(snapshotContent) {
		testingHandle.Fatalf("expected %d characters, got %d", len(snapshotContent), analysis.Characters)
	}
	if analysis.Lines != 6 {
		testingHandle.Fatalf("expected 6 lines, got %d", analysis.Lines)
	}
	if analysis.CodeBlocks != 1 {
		testingHandle.Fatalf("expected 1 code block, got %d", analysis.CodeBlocks)
	}
}
