package classify

// The tables in this file are immutable process-wide constants. They are
// never mutated at runtime.

// redactionReasons maps exact relative paths to the reason shown in place of
// their content. Directory keys carry a trailing slash.
var redactionReasons = map[string]string{
	".env":               "[REDACTED - Environment Variables]",
	"development.yml":    "[REDACTED - Development Config]",
	"production.yml":     "[REDACTED - Production Config]",
	"staging.yml":        "[REDACTED - Staging Config]",
	"secrets/":           "[REDACTED - Directory containing sensitive data]",
	".aws/":              "[REDACTED - AWS Configuration]",
	".ssh/":              "[REDACTED - SSH Keys and Configuration]",
	"id_rsa":             "[REDACTED - SSH Private Key]",
	"id_rsa.pub":         "[REDACTED - SSH Public Key]",
	".htpasswd":          "[REDACTED - HTTP Basic Auth Passwords]",
	"wp-config.php":      "[REDACTED - WordPress Configuration]",
	"config/secrets.yml": "[REDACTED - Application Secrets]",
	"credentials.json":   "[REDACTED - API Credentials]",
	".npmrc":             "[REDACTED - NPM Configuration]",
	".pypirc":            "[REDACTED - PyPI Configuration]",
}

// sensitiveReasonMessage is the reason attached to sensitive-glob matches
// that have no entry in redactionReasons.
const sensitiveReasonMessage = "[REDACTED - Sensitive Data]"

// sensitiveGlobs flag secret material not listed by exact path. A leading
// "**/" matches any directory prefix including the project root itself.
var sensitiveGlobs = []string{
	"**/id_rsa",
	"**/id_dsa",
	"**/*.pem",
	"**/*.key",
	"**/*.p12",
	"**/*.pfx",
	"**/authorized_keys",
	"**/known_hosts",
	"**/oauth_token",
	"**/oauth.json",
	"**/credentials.json",
	"**/.netrc",
}

// templateSuffixes mark example/placeholder variants of config files whose
// content is shown verbatim. Matching is case-insensitive on the file name.
var templateSuffixes = []string{
	".example",
	".sample",
	".template",
	".dist",
	"example.yml",
	"sample.yml",
	".example.json",
	".sample.json",
	".template.yaml",
	".template.yml",
}

// binaryExtensions lists lower-case extensions (without the dot) rejected
// before any content sniffing.
var binaryExtensions = map[string]struct{}{
	// Images
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "bmp": {}, "tiff": {},
	"webp": {}, "ico": {}, "svg": {}, "psd": {}, "ai": {}, "eps": {}, "raw": {},
	// Documents and archives
	"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "ppt": {},
	"pptx": {}, "zip": {}, "tar": {}, "gz": {}, "rar": {}, "7z": {},
	"bz2": {}, "iso": {},
	// Executables and libraries
	"exe": {}, "dll": {}, "so": {}, "dylib": {}, "lib": {}, "obj": {},
	"bin": {}, "apk": {}, "app": {}, "msi": {},
	// Fonts
	"ttf": {}, "otf": {}, "woff": {}, "woff2": {}, "eot": {},
	// Media
	"mp3": {}, "mp4": {}, "wav": {}, "ogg": {}, "avi": {}, "mov": {},
	"wmv": {}, "flv": {}, "mkv": {}, "aac": {}, "m4a": {}, "flac": {},
	// Databases
	"db": {}, "sqlite": {}, "sqlite3": {}, "mdb": {}, "frm": {}, "ibd": {},
	// Other binary formats
	"class": {}, "pyc": {}, "pyo": {}, "pyd": {}, "o": {}, "a": {},
	"pkl": {}, "dat": {},
}

// languageByExtension maps lower-case extensions (without the dot) to the
// identifier used to tag fenced code blocks. Unmapped extensions yield an
// empty identifier.
var languageByExtension = map[string]string{
	"js":         "javascript",
	"jsx":        "javascript",
	"ts":         "typescript",
	"tsx":        "typescript",
	"py":         "python",
	"rb":         "ruby",
	"java":       "java",
	"cpp":        "cpp",
	"c":          "c",
	"cs":         "csharp",
	"php":        "php",
	"go":         "go",
	"rs":         "rust",
	"swift":      "swift",
	"kt":         "kotlin",
	"r":          "r",
	"sql":        "sql",
	"yaml":       "yaml",
	"yml":        "yaml",
	"json":       "json",
	"md":         "markdown",
	"html":       "html",
	"css":        "css",
	"scss":       "scss",
	"less":       "less",
	"sh":         "bash",
	"bash":       "bash",
	"dockerfile": "dockerfile",
}
