package main

// Exit codes. `tp run` deliberately stays binary (0 or 1) and never
// propagates the analysis program's own exit code.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (runtime failure, failed launch)
	ExitConfigError = 2 // Configuration error (invalid config, unresolved webhooks)
	ExitDataError   = 3 // Data error (no collected data, no stored analysis)
)
