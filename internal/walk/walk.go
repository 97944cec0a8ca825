// Package walk enumerates the filesystem entries of a project, pruning
// subtrees the classifier excludes and producing the deterministic, sorted
// inputs the renderer consumes.
package walk

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/scharc/snaprepo/internal/classify"
	"github.com/scharc/snaprepo/internal/types"
)

const (
	errorRootStatFormat    = "inspecting project root %s: %w"
	errorRootNotDirectory  = "project root %s is not a directory"
	errorRootReadFormat    = "reading project root %s: %w"
	warningSkipSubtree     = "skipping unreadable subdirectory"
	treeIndentUnit         = "│   "
	treeBranchConnector    = "├── "
	directorySuffix        = "/"
	pathSegmentSeparator   = "/"
)

// Entry is one non-ignored filesystem entry included in the tree listing.
type Entry struct {
	// RelativePath is the forward-slash path relative to the project root.
	RelativePath string
	IsDirectory  bool
	// Redaction carries the redaction reason when the entry is surfaced
	// with masked content; empty otherwise.
	Redaction string
}

// Result is the outcome of one walk: the sorted qualifying file list handed
// to the renderer and the sorted entry list backing the tree listing.
type Result struct {
	Files   []string
	Entries []Entry
}

// Walker performs a single recursive enumeration of a project root. It is
// bound to one classifier instance and, like the classifier, must not be
// shared across concurrent walks.
type Walker struct {
	projectRoot string
	classifier  *classify.Classifier
	stats       *types.RunStats
	logger      *zap.Logger
}

// New constructs a Walker rooted at projectRoot. A nil logger is replaced by
// a no-op logger; a nil stats sink by a discarded one.
func New(projectRoot string, classifier *classify.Classifier, stats *types.RunStats, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stats == nil {
		stats = &types.RunStats{}
	}
	return &Walker{
		projectRoot: filepath.Clean(projectRoot),
		classifier:  classifier,
		stats:       stats,
		logger:      logger,
	}
}

// Walk enumerates the project recursively. Failure to enumerate the root
// itself is fatal; unreadable subdirectories are logged and skipped. The
// returned file list contains every qualifying file (anything the classifier
// does not screen out as ignored) sorted by relative path, so output is
// reproducible regardless of filesystem enumeration order.
func (walker *Walker) Walk() (*Result, error) {
	rootInfo, statError := os.Stat(walker.projectRoot)
	if statError != nil {
		return nil, fmt.Errorf(errorRootStatFormat, walker.projectRoot, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorRootNotDirectory, walker.projectRoot)
	}

	result := &Result{}
	if walkError := walker.collect(".", true, result); walkError != nil {
		return nil, walkError
	}

	sort.Slice(result.Files, func(left, right int) bool {
		return result.Files[left] < result.Files[right]
	})
	sort.Slice(result.Entries, func(left, right int) bool {
		return result.Entries[left].RelativePath < result.Entries[right].RelativePath
	})
	return result, nil
}

// collect recursively gathers the entries under relativeDirectory. The root
// level propagates read errors; deeper levels degrade them to warnings.
func (walker *Walker) collect(relativeDirectory string, isRootLevel bool, result *Result) error {
	absoluteDirectory := walker.projectRoot
	if relativeDirectory != "." {
		absoluteDirectory = filepath.Join(walker.projectRoot, filepath.FromSlash(relativeDirectory))
	}

	directoryEntries, readError := os.ReadDir(absoluteDirectory)
	if readError != nil {
		if isRootLevel {
			return fmt.Errorf(errorRootReadFormat, walker.projectRoot, readError)
		}
		walker.logger.Warn(warningSkipSubtree,
			zap.String("path", relativeDirectory), zap.Error(readError))
		return nil
	}

	for _, directoryEntry := range directoryEntries {
		relativeChildPath := directoryEntry.Name()
		if relativeDirectory != "." {
			relativeChildPath = path.Join(relativeDirectory, directoryEntry.Name())
		}

		if directoryEntry.IsDir() {
			walker.collectDirectory(relativeChildPath, result)
			continue
		}
		walker.collectFile(relativeChildPath, result)
	}
	return nil
}

// collectDirectory screens one directory. Ignored directories are pruned
// without descending; redacted directories are listed with their reason but
// their subtree stays hidden.
func (walker *Walker) collectDirectory(relativePath string, result *Result) {
	screened := walker.classifier.Screen(relativePath, true)
	switch screened.Kind {
	case types.KindIgnored:
		return
	case types.KindRedacted:
		result.Entries = append(result.Entries, Entry{
			RelativePath: relativePath,
			IsDirectory:  true,
			Redaction:    screened.Reason,
		})
		return
	default:
		result.Entries = append(result.Entries, Entry{
			RelativePath: relativePath,
			IsDirectory:  true,
		})
		// Descent errors below the root degrade to warnings inside collect.
		_ = walker.collect(relativePath, false, result)
	}
}

// collectFile screens one file, updating the scanned and ignored counters.
func (walker *Walker) collectFile(relativePath string, result *Result) {
	walker.stats.TotalFiles++
	screened := walker.classifier.Screen(relativePath, false)
	if screened.Kind == types.KindIgnored {
		walker.stats.IgnoredFiles++
		return
	}

	result.Files = append(result.Files, relativePath)
	result.Entries = append(result.Entries, Entry{
		RelativePath: relativePath,
		Redaction:    screened.Reason,
	})
}

// TreeLines renders the sorted entries as an indented listing. Indentation
// depth equals path depth, directories carry a trailing slash, and redacted
// entries show their reason inline.
func TreeLines(entries []Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		depth := strings.Count(entry.RelativePath, pathSegmentSeparator)
		prefix := ""
		if depth > 0 {
			prefix = strings.Repeat(treeIndentUnit, depth-1) + treeBranchConnector
		}

		name := path.Base(entry.RelativePath)
		if entry.IsDirectory {
			name += directorySuffix
		}
		line := prefix + name
		if entry.Redaction != "" {
			line += " " + entry.Redaction
		}
		lines = append(lines, line)
	}
	return lines
}
