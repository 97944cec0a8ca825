// Package classify decides, for every filesystem entry of a run, whether it
// is included verbatim, redacted, shown as a template placeholder, or
// skipped. The decision is an ordered rule chain; the only cross-path state
// is the set of directories already determined ignored.
package classify

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/scharc/snaprepo/internal/ignore"
	"github.com/scharc/snaprepo/internal/types"
)

const (
	// DefaultMaxFileSize is the per-file size cap in bytes applied when the
	// caller does not configure one.
	DefaultMaxFileSize int64 = 1_000_000

	// sniffLength is the number of leading bytes inspected for binary detection.
	sniffLength = 4096

	templateReadErrorFormat   = "# Error reading template file: %v"
	warningTemplateReadFormat = "could not read template file"
	warningContentReadFormat  = "could not read file content"
	readErrorMessageFormat    = "[Error reading file: %v]"
)

// Classifier evaluates the inclusion decision for paths relative to one
// project root. A Classifier is confined to a single run and must not be
// shared across concurrent walks: its ignored-directory set grows
// monotonically as directories are classified.
type Classifier struct {
	projectRoot string
	outputPath  string
	patterns    *ignore.Set
	maxFileSize int64
	ignoredDirs map[string]struct{}
	logger      *zap.Logger
}

// Options configures a Classifier.
type Options struct {
	// OutputPath is the configured output artifact; the classifier excludes
	// it so a previous snapshot never ends up inside the next one. Empty
	// disables the check.
	OutputPath string
	// MaxFileSize caps included file size in bytes; zero selects DefaultMaxFileSize.
	MaxFileSize int64
	// Logger receives non-fatal per-file warnings. Nil selects a no-op logger.
	Logger *zap.Logger
}

// New constructs a Classifier for projectRoot using the supplied pattern set.
func New(projectRoot string, patterns *ignore.Set, options Options) *Classifier {
	maxFileSize := options.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	outputPath := options.OutputPath
	if outputPath != "" {
		if absoluteOutputPath, absError := filepath.Abs(outputPath); absError == nil {
			outputPath = absoluteOutputPath
		}
		outputPath = filepath.Clean(outputPath)
	}
	return &Classifier{
		projectRoot: filepath.Clean(projectRoot),
		outputPath:  outputPath,
		patterns:    patterns,
		maxFileSize: maxFileSize,
		ignoredDirs: make(map[string]struct{}),
		logger:      logger,
	}
}

// Classify returns the inclusion decision for one path relative to the
// project root, given in forward-slash form. The rules apply in fixed order:
// output self-exclusion, ignored-ancestor short-circuit, redaction, ignore
// patterns, template detection, then binary/text detection. Redaction takes
// precedence over ignore patterns so that sensitive paths stay visible with
// a masked message instead of silently disappearing.
//
// Directories never reach the template or binary checks; a directory that
// survives the first four rules classifies as Text with empty content,
// meaning the walk descends into it.
func (classifier *Classifier) Classify(relativePath string, isDirectory bool) types.Classification {
	screened := classifier.Screen(relativePath, isDirectory)
	if screened.Kind != types.KindText || isDirectory {
		return screened
	}

	if classification, isTemplate := classifier.classifyTemplate(relativePath); isTemplate {
		return classification
	}

	return classifier.classifyContent(relativePath)
}

// Screen evaluates only the rules that never read file content: output
// self-exclusion, ignored-ancestor short-circuit, redaction, and ignore
// patterns. Paths passing every rule come back as Text with empty content.
// The tree walker uses Screen to prune and annotate entries without paying
// for content reads; Classify applies the remaining content rules on top.
func (classifier *Classifier) Screen(relativePath string, isDirectory bool) types.Classification {
	if classifier.isOutputArtifact(relativePath) {
		return types.Ignored()
	}

	if classifier.hasIgnoredAncestor(relativePath) {
		return types.Ignored()
	}

	if reason, isRedacted := classifier.redactionReason(relativePath, isDirectory); isRedacted {
		return types.Redacted(reason)
	}

	if classifier.patterns.Matches(relativePath, isDirectory) {
		if isDirectory {
			classifier.ignoredDirs[relativePath] = struct{}{}
		}
		return types.Ignored()
	}

	return types.Text("", "")
}

// isOutputArtifact reports whether the path resolves to the configured
// output artifact itself.
func (classifier *Classifier) isOutputArtifact(relativePath string) bool {
	if classifier.outputPath == "" {
		return false
	}
	absolutePath := filepath.Join(classifier.projectRoot, filepath.FromSlash(relativePath))
	return filepath.Clean(absolutePath) == classifier.outputPath
}

// hasIgnoredAncestor reports whether any ancestor directory of the path was
// previously classified ignored.
func (classifier *Classifier) hasIgnoredAncestor(relativePath string) bool {
	ancestor := path.Dir(relativePath)
	for ancestor != "." && ancestor != "/" {
		if _, isIgnored := classifier.ignoredDirs[ancestor]; isIgnored {
			return true
		}
		ancestor = path.Dir(ancestor)
	}
	return false
}

// redactionReason checks the redaction table (directory keys carry a
// trailing slash) and the sensitive glob list. Multi-segment keys match the
// full relative path exactly; single-segment keys apply to the entry name at
// any depth, so a nested ".env" is surfaced as redacted rather than leaked.
func (classifier *Classifier) redactionReason(relativePath string, isDirectory bool) (string, bool) {
	if reason, found := lookupRedaction(relativePath, isDirectory); found {
		return reason, true
	}
	if baseName := path.Base(relativePath); baseName != relativePath {
		if reason, found := lookupRedaction(baseName, isDirectory); found {
			return reason, true
		}
	}
	if matchesSensitiveGlob(relativePath) {
		return sensitiveReasonMessage, true
	}
	return "", false
}

func lookupRedaction(key string, isDirectory bool) (string, bool) {
	if reason, found := redactionReasons[key]; found {
		return reason, true
	}
	if isDirectory {
		if reason, found := redactionReasons[key+"/"]; found {
			return reason, true
		}
	}
	return "", false
}

// matchesSensitiveGlob matches the relative path against the compiled-in
// sensitive glob list. A "**/" prefix followed by a slash-free remainder
// matches the final path segment at any depth, including the root.
func matchesSensitiveGlob(relativePath string) bool {
	lastSegment := path.Base(relativePath)
	for _, glob := range sensitiveGlobs {
		remainder := strings.TrimPrefix(glob, "**/")
		if !strings.Contains(remainder, "/") {
			if isMatched, matchError := path.Match(remainder, lastSegment); matchError == nil && isMatched {
				return true
			}
			continue
		}
		if isMatched, matchError := path.Match(remainder, relativePath); matchError == nil && isMatched {
			return true
		}
	}
	return false
}

// classifyTemplate detects template files by name suffix and reads their raw
// content as a placeholder preview. A read failure is not fatal: the content
// is replaced with an inline error message.
func (classifier *Classifier) classifyTemplate(relativePath string) (types.Classification, bool) {
	lowerName := strings.ToLower(path.Base(relativePath))
	isTemplate := false
	for _, suffix := range templateSuffixes {
		if strings.HasSuffix(lowerName, suffix) {
			isTemplate = true
			break
		}
	}
	if !isTemplate {
		return types.Classification{}, false
	}

	language := LanguageForPath(relativePath)
	content, readError := os.ReadFile(classifier.absolutePath(relativePath))
	if readError != nil {
		classifier.logger.Warn(warningTemplateReadFormat,
			zap.String("path", relativePath), zap.Error(readError))
		return types.Template(fmt.Sprintf(templateReadErrorFormat, readError), language), true
	}
	return types.Template(string(content), language), true
}

// classifyContent runs the binary/text checks: extension table, size cap,
// then a sniff of the leading bytes. Files passing every check are read in
// full and classified Text; a failure of the final full read degrades to a
// KindError classification instead of aborting the run.
func (classifier *Classifier) classifyContent(relativePath string) types.Classification {
	extension := extensionOf(relativePath)
	if _, isBinaryExtension := binaryExtensions[extension]; isBinaryExtension {
		return types.Binary()
	}

	absolutePath := classifier.absolutePath(relativePath)
	fileInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		return types.Binary()
	}
	if fileInfo.Size() > classifier.maxFileSize {
		return types.Binary()
	}

	sample, sampleError := readSample(absolutePath)
	if sampleError != nil {
		return types.Binary()
	}
	if !looksLikeText(sample) {
		return types.Binary()
	}

	content, readError := os.ReadFile(absolutePath)
	if readError != nil {
		classifier.logger.Warn(warningContentReadFormat,
			zap.String("path", relativePath), zap.Error(readError))
		return types.ReadError(fmt.Sprintf(readErrorMessageFormat, readError))
	}
	return types.Text(string(content), LanguageForPath(relativePath))
}

// readSample reads up to sniffLength leading bytes of the file.
func readSample(absolutePath string) ([]byte, error) {
	fileHandle, openError := os.Open(absolutePath)
	if openError != nil {
		return nil, openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := fileHandle.Read(buffer)
	if readError != nil && bytesRead == 0 {
		if fileInfo, statError := fileHandle.Stat(); statError == nil && fileInfo.Size() == 0 {
			return nil, nil
		}
		return nil, readError
	}
	return buffer[:bytesRead], nil
}

// looksLikeText reports whether the sampled bytes sniff as a text encoding.
// A null byte in the sample always means binary.
func looksLikeText(sample []byte) bool {
	for _, sampleByte := range sample {
		if sampleByte == 0 {
			return false
		}
	}
	contentType := http.DetectContentType(sample)
	return isTextContentType(contentType)
}

// isTextContentType accepts text/* plus the few structured types that
// http.DetectContentType reports for textual content.
func isTextContentType(contentType string) bool {
	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	switch {
	case strings.HasPrefix(contentType, "application/json"),
		strings.HasPrefix(contentType, "application/javascript"),
		strings.HasPrefix(contentType, "application/xml"),
		strings.HasPrefix(contentType, "image/svg+xml"):
		return true
	}
	return false
}

// LanguageForPath returns the fenced-block language identifier for the path,
// or the empty string when the extension is unmapped.
func LanguageForPath(relativePath string) string {
	return languageByExtension[extensionOf(relativePath)]
}

func extensionOf(relativePath string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(path.Base(relativePath)), "."))
}

func (classifier *Classifier) absolutePath(relativePath string) string {
	return filepath.Join(classifier.projectRoot, filepath.FromSlash(relativePath))
}
