package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"accounts-service/internal/auth"
	"accounts-service/internal/config"
	"accounts-service/internal/database"
	"accounts-service/internal/database/users"
	"accounts-service/internal/entities"
)

// CreateAdminCommand creates an administrator account, or promotes an
// existing account to administrator.
type CreateAdminCommand struct {
	Email        string
	Username     string
	Password     string
	DatabasePath string
}

// NewCreateAdminCommand creates a new CreateAdminCommand
func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

// ParseFlags parses command line flags
func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email of the administrator account (required)")
	fs.StringVar(&cmd.Username, "username", "", "Username for a newly created account")
	fs.StringVar(&cmd.Password, "password", "", "Password for a newly created account")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -email <email> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account, or promote an existing account.\n\n")
		fmt.Fprintf(os.Stderr, "If the email already belongs to an account, that account is promoted\n")
		fmt.Fprintf(os.Stderr, "to administrator. Otherwise a new account is created, which requires\n")
		fmt.Fprintf(os.Stderr, "-username and -password.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Promote an existing account:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -email ops@example.com\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Create a fresh administrator:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -email ops@example.com -username ops -password <secret>\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" {
		return errors.New("-email is required")
	}

	return nil
}

// Run executes the create-admin command
func (cmd *CreateAdminCommand) Run() error {
	if err := auth.ValidateEmail(cmd.Email); err != nil {
		return err
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	hasher := auth.NewBcryptHasher(config.DefaultBcryptCost)
	repo := users.NewRepository(db.DB, hasher)

	existing, err := repo.GetByEmail(cmd.Email)
	if err == nil {
		if existing.IsAdmin() {
			fmt.Printf("%s is already an administrator\n", existing.Email)
			return nil
		}
		adminRole := entities.UserRoleAdmin
		if _, err := repo.Update(existing.ID, users.UpdateFields{Role: &adminRole}); err != nil {
			return fmt.Errorf("failed to promote user: %w", err)
		}
		fmt.Printf("Promoted %s to administrator\n", existing.Email)
		return nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if cmd.Username == "" || cmd.Password == "" {
		return errors.New("-username and -password are required to create a new account")
	}
	if err := auth.ValidateUsername(cmd.Username); err != nil {
		return err
	}
	if err := auth.ValidatePassword(cmd.Password); err != nil {
		return err
	}

	user := &entities.User{
		Username: cmd.Username,
		Email:    cmd.Email,
		Role:     entities.UserRoleAdmin,
	}
	if err := repo.Create(user, cmd.Password); err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	fmt.Printf("Created administrator %s (%s)\n", user.Username, user.Email)
	return nil
}
