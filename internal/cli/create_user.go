package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/bookverse/bookverse/internal/auth"
	"github.com/bookverse/bookverse/internal/config"
	"github.com/bookverse/bookverse/internal/database"
	"github.com/bookverse/bookverse/internal/entities"
)

// CreateUserCommand registers a new user account from the command line.
// Useful for bootstrapping the first account without going through the API.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	Admin        bool
	DatabasePath string
}

// NewCreateUserCommand creates a new CreateUserCommand
func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

// ParseFlags parses command line flags
func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address for the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password for the new account (required, min 12 characters)")
	fs.BoolVar(&cmd.Admin, "admin", false, "Grant the admin role to the new account")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a new user account with its default shelves.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username alice -email alice@example.com -password 'long secret here'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-user -username admin -email admin@example.com -password 'long secret here' -admin\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("username, email and password are required")
	}

	return nil
}

// Run executes the command
func (cmd *CreateUserCommand) Run() error {
	cfg := config.NewConfig()
	cfg.Database.Path = cmd.DatabasePath

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(db.DB, cfg.Auth)

	user, err := service.Register(cmd.Username, cmd.Email, cmd.Password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if cmd.Admin {
		if err := db.DB.Model(user).Update("role", entities.UserRoleAdmin).Error; err != nil {
			return fmt.Errorf("failed to grant admin role: %w", err)
		}
		user.Role = entities.UserRoleAdmin
	}

	fmt.Printf("Created user %s (id=%d, role=%s) with default shelves\n", user.Username, user.ID, user.Role)
	return nil
}
