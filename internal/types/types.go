// Package types defines every cross-package data structure used by the snaprepo CLI.
package types

import "sort"

// ClassificationKind identifies the outcome of classifying one filesystem path.
type ClassificationKind int

const (
	// KindIgnored marks a path excluded from the snapshot entirely.
	KindIgnored ClassificationKind = iota
	// KindRedacted marks a sensitive path whose existence is surfaced but whose content is masked.
	KindRedacted
	// KindTemplate marks an example/placeholder file rendered with its raw content.
	KindTemplate
	// KindText marks a regular text file included verbatim.
	KindText
	// KindBinary marks a file excluded because it is binary or oversized.
	KindBinary
	// KindError marks a file whose content could not be read; the run continues.
	KindError
)

// Classification is the closed tagged result of classifying one path.
// Exactly the fields relevant to the kind are populated: Reason for
// KindRedacted, Content and Language for KindTemplate and KindText,
// Message for KindError.
type Classification struct {
	Kind     ClassificationKind
	Reason   string
	Content  string
	Language string
	Message  string
}

// Ignored constructs a KindIgnored classification.
func Ignored() Classification {
	return Classification{Kind: KindIgnored}
}

// Redacted constructs a KindRedacted classification carrying the redaction reason.
func Redacted(reason string) Classification {
	return Classification{Kind: KindRedacted, Reason: reason}
}

// Template constructs a KindTemplate classification carrying the raw placeholder content.
func Template(content string, language string) Classification {
	return Classification{Kind: KindTemplate, Content: content, Language: language}
}

// Text constructs a KindText classification carrying the full file content.
func Text(content string, language string) Classification {
	return Classification{Kind: KindText, Content: content, Language: language}
}

// Binary constructs a KindBinary classification.
func Binary() Classification {
	return Classification{Kind: KindBinary}
}

// ReadError constructs a KindError classification carrying a human-readable message.
func ReadError(message string) Classification {
	return Classification{Kind: KindError, Message: message}
}

// RunStats accumulates counters for a single walk-and-render run.
// It is confined to one run and never shared across concurrent walks.
type RunStats struct {
	TotalFiles    int
	IncludedFiles int
	BinaryFiles   int
	IgnoredFiles  int
	TotalBytes    int64
	languages     map[string]struct{}
}

// AddLanguage records a detected language identifier. Empty identifiers are dropped.
func (stats *RunStats) AddLanguage(language string) {
	if language == "" {
		return
	}
	if stats.languages == nil {
		stats.languages = make(map[string]struct{})
	}
	stats.languages[language] = struct{}{}
}

// Languages returns the distinct detected language identifiers in sorted order.
func (stats *RunStats) Languages() []string {
	result := make([]string, 0, len(stats.languages))
	for language := range stats.languages {
		result = append(result, language)
	}
	sort.Strings(result)
	return result
}

// ModelProfile describes one target model for the token-estimate report.
type ModelProfile struct {
	Name       string
	Multiplier float64
	MaxContext int
}

// ModelEstimate is the derived token usage report for one model profile.
type ModelEstimate struct {
	Name         string
	Tokens       int
	MaxContext   int
	UsagePercent float64
	Remaining    int
}
