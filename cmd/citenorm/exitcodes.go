package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config file, unknown key)
	ExitDataError   = 3 // Data error (malformed CSV, checkpoint or map)
	ExitNoResult    = 4 // No source produced an acceptable record
)
