// Package ignore loads and matches the ignore patterns that decide which
// paths are excluded from a snapshot. The semantics are deliberately simpler
// than full gitignore: negated patterns are recognized and discarded, and
// patterns never anchor to the project root.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// GitIgnoreFileName is the name of the Git ignore file read from the project root.
	GitIgnoreFileName = ".gitignore"

	commentPrefix         = "#"
	negationPrefix        = "!"
	currentDirectoryMark  = "./"
	pathSegmentSeparator  = "/"
	skippedNegatedMessage = "skipping negated ignore pattern"
)

// defaultPatterns is the compiled-in ignore list applied before any
// .gitignore content: VCS metadata, dependency and build directories,
// lockfiles, bytecode caches, and virtual environments.
var defaultPatterns = []string{
	".git/",
	"node_modules/",
	"dist/",
	"build/",
	"coverage/",
	".DS_Store",
	"*.log",
	"*.lock",
	"package-lock.json",
	"__pycache__/",
	"*.pyc",
	"*.pyo",
	"*.pyd",
	".Python",
	"env/",
	"venv/",
	".venv/",
	"ENV/",
	"env.bak/",
	"venv.bak/",
}

// commonFilePatterns lists repository boilerplate skipped when the caller
// opts out of commonly referenced files.
var commonFilePatterns = []string{
	"LICENSE",
	"LICENSE.md",
	"LICENSE.txt",
	"CONTRIBUTING.md",
	"CONTRIBUTING",
	"CODE_OF_CONDUCT.md",
	"CODE_OF_CONDUCT",
	"CHANGELOG.md",
	"CHANGELOG",
	"SECURITY.md",
	"SECURITY",
	".gitattributes",
	".editorconfig",
	".dockerignore",
}

// Pattern is one normalized ignore pattern. Directory patterns have their
// trailing slash stripped before storage and match directories only.
type Pattern struct {
	Value         string
	DirectoryOnly bool
}

// Set is an immutable, ordered collection of ignore patterns built once per
// run: compiled-in defaults first, then .gitignore lines in file order,
// then caller-supplied additions.
type Set struct {
	patterns []Pattern
}

// LoadOptions controls which pattern sources are combined into a Set.
type LoadOptions struct {
	// ExtraPatterns are appended after all other sources.
	ExtraPatterns []string
	// SkipCommon appends the compiled-in common-file list (LICENSE, CHANGELOG, ...).
	SkipCommon bool
}

// Load builds the pattern set for projectRoot. An unreadable .gitignore is
// treated as absent and never fails the run. Negated patterns are logged
// through logger and discarded.
func Load(projectRoot string, options LoadOptions, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}

	rawPatterns := make([]string, 0, len(defaultPatterns))
	rawPatterns = append(rawPatterns, defaultPatterns...)
	rawPatterns = append(rawPatterns, readGitIgnoreLines(filepath.Join(projectRoot, GitIgnoreFileName), logger)...)
	if options.SkipCommon {
		rawPatterns = append(rawPatterns, commonFilePatterns...)
	}
	rawPatterns = append(rawPatterns, options.ExtraPatterns...)

	patternSet := &Set{patterns: make([]Pattern, 0, len(rawPatterns))}
	for _, rawPattern := range rawPatterns {
		normalized, valid := normalizePattern(rawPattern)
		if !valid {
			continue
		}
		patternSet.patterns = append(patternSet.patterns, normalized)
	}
	return patternSet
}

// readGitIgnoreLines returns the usable pattern lines of the file at
// gitIgnorePath. Comments, blank lines, and negated patterns are dropped; a
// leading "./" is stripped. Any read failure yields zero patterns.
func readGitIgnoreLines(gitIgnorePath string, logger *zap.Logger) []string {
	fileHandle, openError := os.Open(gitIgnorePath)
	if openError != nil {
		return nil
	}
	defer fileHandle.Close()

	var lines []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		if strings.HasPrefix(trimmedLine, negationPrefix) {
			logger.Warn(skippedNegatedMessage, zap.String("pattern", trimmedLine))
			continue
		}
		lines = append(lines, trimmedLine)
	}
	if scanner.Err() != nil {
		return nil
	}
	return lines
}

// normalizePattern converts one raw pattern line into its stored form.
func normalizePattern(rawPattern string) (Pattern, bool) {
	trimmed := strings.TrimSpace(rawPattern)
	trimmed = strings.TrimPrefix(trimmed, currentDirectoryMark)
	isDirectoryPattern := strings.HasSuffix(trimmed, pathSegmentSeparator)
	trimmed = strings.TrimSuffix(trimmed, pathSegmentSeparator)
	if trimmed == "" {
		return Pattern{}, false
	}
	return Pattern{Value: trimmed, DirectoryOnly: isDirectoryPattern}, true
}

// Patterns returns the stored patterns in priority order.
func (set *Set) Patterns() []Pattern {
	result := make([]Pattern, len(set.patterns))
	copy(result, set.patterns)
	return result
}

// Matches reports whether the relative path matches any pattern in priority
// order. Paths are compared in forward-slash form regardless of the host
// separator. Patterns beginning with "*" match the final path segment only;
// all other patterns match a contiguous run of path segments anywhere in the
// path. Directory-only patterns never match files.
func (set *Set) Matches(relativePath string, isDirectory bool) bool {
	normalizedPath := filepath.ToSlash(relativePath)
	pathSegments := strings.Split(normalizedPath, pathSegmentSeparator)
	lastSegment := pathSegments[len(pathSegments)-1]

	for _, pattern := range set.patterns {
		if pattern.DirectoryOnly && !isDirectory {
			continue
		}

		if strings.HasPrefix(pattern.Value, "*") {
			if isMatched, matchError := filepath.Match(pattern.Value, lastSegment); matchError == nil && isMatched {
				return true
			}
			continue
		}

		patternSegments := strings.Split(pattern.Value, pathSegmentSeparator)
		if matchesSegmentRun(pathSegments, patternSegments) {
			return true
		}
	}
	return false
}

// matchesSegmentRun reports whether patternSegments match a contiguous run of
// pathSegments at any offset. Each segment is evaluated with filepath.Match
// semantics.
func matchesSegmentRun(pathSegments, patternSegments []string) bool {
	if len(patternSegments) > len(pathSegments) {
		return false
	}
	for offset := 0; offset <= len(pathSegments)-len(patternSegments); offset++ {
		if segmentsMatch(pathSegments[offset:offset+len(patternSegments)], patternSegments) {
			return true
		}
	}
	return false
}

func segmentsMatch(pathSegments, patternSegments []string) bool {
	for segmentIndex, patternSegment := range patternSegments {
		isMatched, matchError := filepath.Match(patternSegment, pathSegments[segmentIndex])
		if matchError != nil || !isMatched {
			return false
		}
	}
	return true
}
