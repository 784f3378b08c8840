package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./accounts.db"
)

// DefaultBcryptCost is the bcrypt cost factor used when none is configured.
const DefaultBcryptCost = 12
