package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bookverse/bookverse/internal/config"
	"github.com/bookverse/bookverse/internal/database"
	"github.com/bookverse/bookverse/internal/reviews"
)

// RecountRatingsCommand recomputes every book's rating average and count
// from its live reviews. The server does this on a schedule; this command
// is the one-shot manual version.
type RecountRatingsCommand struct {
	DatabasePath string
	Verbose      bool
}

// NewRecountRatingsCommand creates a new RecountRatingsCommand
func NewRecountRatingsCommand() *RecountRatingsCommand {
	return &RecountRatingsCommand{}
}

// ParseFlags parses command line flags
func (cmd *RecountRatingsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("recount-ratings", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s recount-ratings [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Recompute rating aggregates for all books from their reviews.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the command
func (cmd *RecountRatingsCommand) Run() error {
	if cmd.Verbose {
		fmt.Printf("Opening database at %s\n", cmd.DatabasePath)
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := reviews.NewService(db.DB)

	if cmd.Verbose {
		fmt.Println("Recomputing rating aggregates from live reviews...")
	}

	count, err := service.RecountBookRatings(context.Background())
	if err != nil {
		return fmt.Errorf("recount failed: %w", err)
	}

	fmt.Printf("Recounted rating aggregates for %d books\n", count)
	return nil
}
