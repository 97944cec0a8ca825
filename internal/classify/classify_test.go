package classify_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/scharc/snaprepo/internal/classify"
	"github.com/scharc/snaprepo/internal/ignore"
	"github.com/scharc/snaprepo/internal/types"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content []byte) {
	testingHandle.Helper()
	if makeDirError := os.MkdirAll(filepath.Dir(filePath), 0o755); makeDirError != nil {
		testingHandle.Fatalf("failed to create parent directory for %s: %v", filePath, makeDirError)
	}
	if writeError := os.WriteFile(filePath, content, 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// newTestClassifier builds a classifier over projectRoot with the default
// pattern set plus any extra patterns.
func newTestClassifier(testingHandle *testing.T, projectRoot string, options classify.Options, extraPatterns ...string) *classify.Classifier {
	testingHandle.Helper()
	patternSet := ignore.Load(projectRoot, ignore.LoadOptions{ExtraPatterns: extraPatterns}, zap.NewNop())
	return classify.New(projectRoot, patternSet, options)
}

// TestClassifyRedactionBeatsIgnorePatterns verifies that a path matching
// both the redaction table and an ignore pattern is surfaced as redacted.
func TestClassifyRedactionBeatsIgnorePatterns(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(projectRoot, ".env"), []byte("API_KEY=abc\n"))

	classifier := newTestClassifier(testingHandle, projectRoot, classify.Options{}, ".env")

	classification := classifier.Classify(".env", false)
	if classification.Kind != types.KindRedacted {
		testingHandle.Fatalf("expected redacted classification, got %v", classification.Kind)
	}
	if classification.Reason != "[REDACTED - Environment Variables]" {
		testingHandle.Fatalf("unexpected redaction reason: %q", classification.Reason)
	}
}

// TestClassifyRedactsSensitiveNamesAtAnyDepth verifies that single-segment
// redaction keys and sensitive globs apply below the project root.
func TestClassifyRedactsSensitiveNamesAtAnyDepth(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(projectRoot, "secret", ".env"), []byte("TOKEN=x\n"))
	writeTestFile(testingHandle, filepath.Join(projectRoot, "deploy", "server.pem"), []byte("-----BEGIN-----\n"))

	classifier := newTestClassifier(testingHandle, projectRoot, classify.Options{})

	testCases := []struct {
		name           string
		relativePath   string
		expectedReason string
	}{
		{name: "nested_env_file", relativePath: "secret/.env", expectedReason: "[REDACTED - Environment Variables]"},
		{name: "nested_private_key", relativePath: "deploy/server.pem", expectedReason: "[REDACTED - Sensitive Data]"},
		{name: "root_private_key", relativePath: "server.pem", expectedReason: "[REDACTED - Sensitive Data]"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			classification := classifier.Classify(testCase.relativePath, false)
			if classification.Kind != types.KindRedacted {
				subTest.Fatalf("expected redacted classification for %s, got %v", testCase.relativePath, classification.Kind)
			}
			if classification.Reason != testCase.expectedReason {
				subTest.Fatalf("unexpected reason for %s: %q", testCase.relativePath, classification.Reason)
			}
		})
	}
}

// TestClassifyIgnoredAncestorShortCircuits verifies that once a directory is
// classified ignored, every descendant is ignored regardless of its own rules.
func TestClassifyIgnoredAncestorShortCircuits(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(projectRoot, "build", "credentials.json"), []byte("{}\n"))

	classifier := newTestClassifier(testingHandle, projectRoot, classify.Options{})

	if directoryClassification := classifier.Classify("build", true); directoryClassification.Kind != types.KindIgnored {
		testingHandle.Fatalf("expected build directory to be ignored, got %v", directoryClassification.Kind)
	}
	// credentials.json would redact on its own; the ignored ancestor wins.
	if fileClassification := classifier.Classify("build/credentials.json", false); fileClassification.Kind != types.KindIgnored {
		testingHandle.Fatalf("expected descendant of ignored directory to be ignored, got %v", fileClassification.Kind)
	}
}

// TestClassifyExcludesOutputArtifact verifies that the configured output
// file never classifies into its own snapshot.
func TestClassifyExcludesOutputArtifact(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	outputPath := filepath.Join(projectRoot, "project_source.md")
	writeTestFile(testingHandle, outputPath, []byte("# previous snapshot\n"))

	classifier := newTestClassifier(testingHandle, projectRoot, classify.Options{OutputPath: outputPath})

	if classification := classifier.Classify("project_source.md", false); classification.Kind != types.KindIgnored {
		testingHandle.Fatalf("expected output artifact to be ignored, got %v", classification.Kind)
	}
}

// TestClassifyTemplateShowsRawContent verifies that template-suffixed files
// carry their literal bytes even when the content would sniff as binary.
func TestClassifyTemplateShowsRawContent(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	rawContent := []byte{0x00, 0xff, 'r', 'a', 'w'}
	writeTestFile(testingHandle, filepath.Join(projectRoot, "config.sample.yml"), rawContent)

	classifier := newTestClassifier(testingHandle, projectRoot, classify.Options{})

	classification := classifier.Classify("config.sample.yml", false)
	if classification.Kind != types.KindTemplate {
		testingHandle.Fatalf("expected template classification, got %v", classification.Kind)
	}
	if classification.Content != string(rawContent) {
		testingHandle.Fatalf("template content altered: %q", classification.Content)
	}
	if classification.Language != "yaml" {
		testingHandle.Fatalf("unexpected template language: %q", classification.Language)
	}
}

// TestClassifyTemplateSuffixIsCaseInsensitive verifies template detection on
// upper-case file names.
func TestClassifyTemplateSuffixIsCaseInsensitive(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(projectRoot, "ENV.EXAMPLE"), []byte("KEY=value\n"))

	classifier := newTestClassifier(testingHandle, projectRoot, classify.Options{})

	if classification := classifier.Classify("ENV.EXAMPLE", false); classification.Kind != types.KindTemplate {
		testingHandle.Fatalf("expected template classification, got %v", classification.Kind)
	}
}

// TestClassifyTemplateReadFailureDegradesToInlineError verifies that an
// unreadable template file still classifies as a template with an error note.
func TestClassifyTemplateReadFailureDegradesToInlineError(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	classifier := newTestClassifier(testingHandle, projectRoot, classify.Options{})

	// The file does not exist on disk.
	classification := classifier.Classify("missing.sample.yml", false)
	if classification.Kind != types.KindTemplate {
		testingHandle.Fatalf("expected template classification, got %v", classification.Kind)
	}
	if !strings.HasPrefix(classification.Content, "# Error reading template file:") {
		testingHandle.Fatalf("expected inline read error, got %q", classification.Content)
	}
}

// TestClassifyBinaryDetection verifies the extension table, the null-byte
// sniff, and the size cap.
func TestClassifyBinaryDetection(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(projectRoot, "archive.zip"), []byte("not really a zip\n"))
	writeTestFile(testingHandle, filepath.Join(projectRoot, "mystery"), []byte{'a', 0x00, 'b'})
	writeTestFile(testingHandle, filepath.Join(projectRoot, "big.txt"), []byte(strings.Repeat("x", 64)+"\n"))

	classifier := newTestClassifier(testingHandle, projectRoot, classify.Options{MaxFileSize: 32})

	testCases := []struct {
		name         string
		relativePath string
	}{
		{name: "binary_extension", relativePath: "archive.zip"},
		{name: "null_byte_in_sample", relativePath: "mystery"},
		{name: "over_size_cap", relativePath: "big.txt"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			classification := classifier.Classify(testCase.relativePath, false)
			if classification.Kind != types.KindBinary {
				subTest.Fatalf("expected binary classification for %s, got %v", testCase.relativePath, classification.Kind)
			}
		})
	}
}

// TestClassifyTextFileCarriesContentAndLanguage verifies the happy path for
// an included text file.
func TestClassifyTextFileCarriesContentAndLanguage(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	sourceContent := "def main():\n    pass\n"
	writeTestFile(testingHandle, filepath.Join(projectRoot, "main.py"), []byte(sourceContent))

	classifier := newTestClassifier(testingHandle, projectRoot, classify.Options{})

	classification := classifier.Classify("main.py", false)
	if classification.Kind != types.KindText {
		testingHandle.Fatalf("expected text classification, got %v", classification.Kind)
	}
	if classification.Content != sourceContent {
		testingHandle.Fatalf("content altered: %q", classification.Content)
	}
	if classification.Language != "python" {
		testingHandle.Fatalf("unexpected language: %q", classification.Language)
	}
}

// TestClassifyEmptyFileIsText verifies that a zero-length file is included
// rather than rejected by the sniffer.
func TestClassifyEmptyFileIsText(testingHandle *testing.T) {
	projectRoot := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(projectRoot, "empty.txt"), nil)

	classifier := newTestClassifier(testingHandle, projectRoot, classify.Options{})

	classification := classifier.Classify("empty.txt", false)
	if classification.Kind != types.KindText {
		testingHandle.Fatalf("expected text classification for empty file, got %v", classification.Kind)
	}
	if classification.Content != "" {
		testingHandle.Fatalf("expected empty content, got %q", classification.Content)
	}
}

// TestLanguageForPath verifies the extension-to-identifier mapping including
// the unmapped fallback.
func TestLanguageForPath(testingHandle *testing.T) {
	testCases := []struct {
		relativePath string
		expected     string
	}{
		{relativePath: "main.go", expected: "go"},
		{relativePath: "script.PY", expected: "python"},
		{relativePath: "settings.yml", expected: "yaml"},
		{relativePath: "README.md", expected: "markdown"},
		{relativePath: "notes.txt", expected: ""},
		{relativePath: "Makefile", expected: ""},
	}

	for _, testCase := range testCases {
		if language := classify.LanguageForPath(testCase.relativePath); language != testCase.expected {
			testingHandle.Fatalf("LanguageForPath(%q) = %q, want %q", testCase.relativePath, language, testCase.expected)
		}
	}
}
