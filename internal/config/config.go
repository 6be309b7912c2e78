package config

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// GenerationHorizonDays is the forward-looking window, in days, over
	// which recurring task instances are materialized.
	GenerationHorizonDays = 30
)
