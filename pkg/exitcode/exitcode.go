// Package exitcode defines the process exit codes of the starcat CLI.
package exitcode

const (
	Success           = 0
	GeneralError      = 1
	ConfigError       = 2 // bad flags, config file or seed list
	ValidationError   = 3 // entry rules, duplicate names, rejected URLs and filenames
	FileSystemError   = 4 // catalog or texture could not be read or written
	NetworkError      = 5
	PermissionError   = 6 // access to the catalog or texture directory denied
	TimeoutError      = 7
	UnsupportedFormat = 8 // payload is not a decodable image, or unknown output extension
	PartialFailure    = 9 // batch finished but some items failed
)

var descriptions = map[int]string{
	Success:           "Success",
	GeneralError:      "General error",
	ConfigError:       "Configuration error",
	ValidationError:   "Validation error",
	FileSystemError:   "File system error",
	NetworkError:      "Network error",
	PermissionError:   "Permission error",
	TimeoutError:      "Timeout error",
	UnsupportedFormat: "Unsupported format",
	PartialFailure:    "Partial failure",
}

// String returns a human-readable description of the exit code.
func String(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Unknown error"
}
