// Package render turns a walk result into the Markdown snapshot artifact.
// One per-file formatting routine backs both output modes: the incremental
// mode hands chunks to a caller-supplied sink as they are produced, and the
// buffered mode drains that same chunk sequence into a single string, so the
// two modes emit byte-identical content by construction.
package render

import (
	"strings"

	"github.com/scharc/snaprepo/internal/classify"
	"github.com/scharc/snaprepo/internal/tokenizer"
	"github.com/scharc/snaprepo/internal/types"
	"github.com/scharc/snaprepo/internal/walk"
)

const (
	documentHeader      = "# Project Source Code\n"
	structureHeader     = "\n## Project Structure\n\n"
	tokenEstimateHeader = "\n## Token Estimates\n\n"
	fenceMarker         = "```"
	binaryFileMarker    = "*[Binary file]*\n"
	readErrorMarker     = "*[Error reading file]*\n"
	treeRootLine        = "."
)

// ChunkFunc receives one chunk of rendered output. Returning an error stops
// the render. The chunk sequence is forward-only and not restartable.
type ChunkFunc func(chunk string) error

// Renderer emits the snapshot artifact for one walk result. Token estimation
// is enabled by supplying a counter; the per-model section is then appended
// after the last file section.
type Renderer struct {
	classifier *classify.Classifier
	stats      *types.RunStats
	counter    tokenizer.Counter
}

// New constructs a Renderer. A nil stats sink is replaced by a discarded
// one; a nil counter disables the token-estimate section.
func New(classifier *classify.Classifier, stats *types.RunStats, counter tokenizer.Counter) *Renderer {
	if stats == nil {
		stats = &types.RunStats{}
	}
	return &Renderer{classifier: classifier, stats: stats, counter: counter}
}

// RenderBuffered materializes the whole artifact as one string by draining
// the incremental chunk sequence.
func (renderer *Renderer) RenderBuffered(result *walk.Result) (string, error) {
	var builder strings.Builder
	renderError := renderer.RenderIncremental(result, func(chunk string) error {
		builder.WriteString(chunk)
		return nil
	})
	if renderError != nil {
		return "", renderError
	}
	return builder.String(), nil
}

// RenderIncremental produces the artifact as a forward-only sequence of text
// chunks: document header, fenced tree listing, then one section per file in
// walk order. Statistics are updated as a side effect of classifying text
// and binary files; redacted, template, and ignored entries stay out of the
// size and language aggregation.
func (renderer *Renderer) RenderIncremental(result *walk.Result, emit ChunkFunc) error {
	baselineTokens := 0
	send := func(chunk string) error {
		if renderer.counter != nil {
			chunkTokens, countError := renderer.counter.CountString(chunk)
			if countError != nil {
				return countError
			}
			baselineTokens += chunkTokens
		}
		return emit(chunk)
	}

	if headerError := send(documentHeader); headerError != nil {
		return headerError
	}
	if structureError := send(structureHeader); structureError != nil {
		return structureError
	}
	if treeError := send(renderTreeBlock(result.Entries)); treeError != nil {
		return treeError
	}

	for _, relativePath := range result.Files {
		classification := renderer.classifier.Classify(relativePath, false)
		section, include := renderer.renderFileSection(relativePath, classification)
		if !include {
			continue
		}
		if sectionError := send(section); sectionError != nil {
			return sectionError
		}
	}

	if renderer.counter != nil {
		if estimateError := send(renderTokenEstimates(baselineTokens)); estimateError != nil {
			return estimateError
		}
	}
	return nil
}

// renderFileSection formats one file section and applies the classification
// to the run statistics. Ignored classifications produce no section.
func (renderer *Renderer) renderFileSection(relativePath string, classification types.Classification) (string, bool) {
	var body string
	switch classification.Kind {
	case types.KindIgnored:
		return "", false
	case types.KindRedacted:
		body = "*" + classification.Reason + "*\n"
	case types.KindTemplate:
		body = renderFence(classification.Language, classification.Content)
	case types.KindText:
		renderer.stats.IncludedFiles++
		renderer.stats.TotalBytes += int64(len(classification.Content))
		renderer.stats.AddLanguage(classification.Language)
		body = renderFence(classification.Language, classification.Content)
	case types.KindBinary:
		renderer.stats.BinaryFiles++
		body = binaryFileMarker
	case types.KindError:
		body = readErrorMarker
	}
	return "\n## " + relativePath + "\n\n" + body, true
}

// renderTreeBlock wraps the indented tree listing in a plain fence, rooted
// at ".".
func renderTreeBlock(entries []walk.Entry) string {
	var builder strings.Builder
	builder.WriteString(fenceMarker + "\n")
	builder.WriteString(treeRootLine + "\n")
	for _, line := range walk.TreeLines(entries) {
		builder.WriteString(line + "\n")
	}
	builder.WriteString(fenceMarker + "\n")
	return builder.String()
}

// renderFence wraps content in a language-tagged fence, normalizing the body
// to end with exactly one newline.
func renderFence(language string, content string) string {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return fenceMarker + language + "\n" + content + fenceMarker + "\n"
}

// renderTokenEstimates formats the trailing per-model report.
func renderTokenEstimates(baselineTokens int) string {
	var builder strings.Builder
	builder.WriteString(tokenEstimateHeader)
	for _, estimate := range tokenizer.EstimateAll(baselineTokens) {
		builder.WriteString(formatEstimateLine(estimate))
	}
	return builder.String()
}

func formatEstimateLine(estimate types.ModelEstimate) string {
	var builder strings.Builder
	builder.WriteString("- ")
	builder.WriteString(estimate.Name)
	builder.WriteString(": ~")
	builder.WriteString(formatCount(estimate.Tokens))
	builder.WriteString(" tokens")
	builder.WriteString(" | max context ")
	builder.WriteString(formatCount(estimate.MaxContext))
	builder.WriteString(" | usage ")
	builder.WriteString(formatPercent(estimate.UsagePercent))
	builder.WriteString(" | remaining ")
	builder.WriteString(formatCount(estimate.Remaining))
	builder.WriteString("\n")
	return builder.String()
}
