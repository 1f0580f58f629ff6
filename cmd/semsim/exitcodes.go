package main

// Exit codes returned by the semsim commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad parameters, unknown model)
	ExitDataError   = 3 // Data error (malformed ontology, no usable terms)
)
