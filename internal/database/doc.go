// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	└── users/           # User record CRUD and credential storage
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./accounts.db")
//
//	// Create domain-specific repositories
//	usersRepo := users.NewRepository(db.DB, hasher)
//
//	// Use repositories
//	user, err := usersRepo.GetByEmail("someone@example.com")
//
// # Adding a New Domain
//
// To add a new domain (e.g., apikeys):
//
//  1. Create a new sub-package: internal/database/apikeys/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
