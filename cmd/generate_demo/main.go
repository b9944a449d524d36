// Command generate_demo creates a demo database populated with sample
// readers, public domain books, reviews, quotes, and a small follow graph.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/bookverse/bookverse/internal/auth"
	"github.com/bookverse/bookverse/internal/config"
	"github.com/bookverse/bookverse/internal/database"
	books_repo "github.com/bookverse/bookverse/internal/database/books"
	quotes_repo "github.com/bookverse/bookverse/internal/database/quotes"
	"github.com/bookverse/bookverse/internal/entities"
	"github.com/bookverse/bookverse/internal/reviews"
	"github.com/bookverse/bookverse/internal/shelves"
	"github.com/bookverse/bookverse/internal/social"
)

const defaultDemoDatabasePath = "./demo/demo.db"

const demoPassword = "demo-password-1234"

type demoBook struct {
	entities.Book
	quotes []string
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Start fresh every run.
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	cfg := config.NewConfig()

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	authService := auth.NewService(db.DB, cfg.Auth)
	booksRepo := books_repo.NewRepository(db.DB)
	quotesRepo := quotes_repo.NewRepository(db.DB)
	reviewService := reviews.NewService(db.DB)
	socialService := social.NewService(db.DB)
	shelfService := shelves.NewService(db.DB)

	users := createUsers(authService)
	if len(users) < 3 {
		log.Fatal("Not enough demo users created")
	}

	created := createBooks(booksRepo, users[0].ID)
	if len(created) == 0 {
		log.Fatal("No demo books created")
	}

	createFollowGraph(ctx, socialService, users)
	createShelfStatuses(ctx, shelfService, users, created)
	createReviews(ctx, reviewService, users, created)
	createQuotes(quotesRepo, users, created)

	log.Println("Demo database generated successfully!")
}

func createUsers(authService *auth.Service) []*entities.User {
	profiles := []struct {
		username string
		bio      string
	}{
		{"ada", "Reading my way through the classics."},
		{"borges_fan", "Labyrinths, mirrors, and infinite libraries."},
		{"curie", "Mostly science and biography."},
		{"demo", "Shared demo account."},
	}

	users := make([]*entities.User, 0, len(profiles))
	for _, p := range profiles {
		user, err := authService.Register(p.username, p.username+"@bookverse.example", demoPassword)
		if err != nil {
			log.Printf("Failed to create user %s: %v", p.username, err)
			continue
		}
		users = append(users, user)
		log.Printf("Created user: %s", user.Username)
	}
	return users
}

func createBooks(repo *books_repo.Repository, creatorID uint) []demoBook {
	catalog := []demoBook{
		{
			Book: entities.Book{
				Title:           "Pride and Prejudice",
				Author:          "Jane Austen",
				ISBN:            "9780141439518",
				PublicationYear: 1813,
				PageCount:       432,
				Description:     "A novel of manners following Elizabeth Bennet.",
			},
			quotes: []string{
				"It is a truth universally acknowledged, that a single man in possession of a good fortune, must be in want of a wife.",
				"I could easily forgive his pride, if he had not mortified mine.",
			},
		},
		{
			Book: entities.Book{
				Title:           "Moby-Dick",
				Author:          "Herman Melville",
				ISBN:            "9780142437247",
				PublicationYear: 1851,
				PageCount:       720,
				Description:     "The voyage of the whaling ship Pequod.",
			},
			quotes: []string{
				"Call me Ishmael.",
				"It is not down on any map; true places never are.",
			},
		},
		{
			Book: entities.Book{
				Title:           "Frankenstein",
				Author:          "Mary Shelley",
				ISBN:            "9780141439471",
				PublicationYear: 1818,
				PageCount:       288,
				Description:     "A scientist creates a sapient creature.",
			},
			quotes: []string{
				"Beware; for I am fearless, and therefore powerful.",
			},
		},
		{
			Book: entities.Book{
				Title:           "The Origin of Species",
				Author:          "Charles Darwin",
				ISBN:            "9780451529060",
				PublicationYear: 1859,
				PageCount:       576,
				Description:     "The foundation of evolutionary biology.",
			},
			quotes: []string{
				"There is grandeur in this view of life.",
			},
		},
		{
			Book: entities.Book{
				Title:           "Meditations",
				Author:          "Marcus Aurelius",
				ISBN:            "9780140449334",
				PublicationYear: 180,
				PageCount:       304,
				Description:     "Private reflections of a Roman emperor.",
			},
			quotes: []string{
				"You have power over your mind, not outside events.",
				"The happiness of your life depends upon the quality of your thoughts.",
			},
		},
	}

	created := make([]demoBook, 0, len(catalog))
	for _, b := range catalog {
		b.CreatedByID = creatorID
		if err := repo.CreateBook(&b.Book); err != nil {
			log.Printf("Failed to save book %s: %v", b.Title, err)
			continue
		}
		created = append(created, b)
		log.Printf("Saved: %s by %s", b.Title, b.Author)
	}
	return created
}

func createFollowGraph(ctx context.Context, svc *social.Service, users []*entities.User) {
	// Everyone follows ada; ada follows borges_fan back.
	for _, u := range users[1:] {
		if err := svc.Follow(ctx, u.ID, users[0].ID); err != nil {
			log.Printf("Failed to create follow: %v", err)
		}
	}
	if err := svc.Follow(ctx, users[0].ID, users[1].ID); err != nil {
		log.Printf("Failed to create follow: %v", err)
	}
}

func createShelfStatuses(ctx context.Context, svc *shelves.Service, users []*entities.User, books []demoBook) {
	statuses := []string{
		entities.ShelfRead,
		entities.ShelfCurrentlyReading,
		entities.ShelfWantToRead,
	}
	for i, b := range books {
		user := users[i%len(users)]
		status := statuses[i%len(statuses)]
		if err := svc.SetBookStatus(ctx, user.ID, b.ID, status); err != nil {
			log.Printf("Failed to shelve %s for %s: %v", b.Title, user.Username, err)
			continue
		}
		if status == entities.ShelfCurrentlyReading && b.PageCount > 0 {
			if _, err := svc.UpdateProgress(ctx, user.ID, b.ID, b.PageCount/3); err != nil {
				log.Printf("Failed to record progress on %s: %v", b.Title, err)
			}
		}
	}
}

func createReviews(ctx context.Context, svc *reviews.Service, users []*entities.User, books []demoBook) {
	texts := []string{
		"An absolute classic, worth every page.",
		"Slow in the middle but the ending lands.",
		"Re-read this every year.",
	}
	for i, b := range books {
		user := users[(i+1)%len(users)]
		rating := 3 + i%3
		if _, err := svc.CreateReview(ctx, user.ID, b.ID, rating, texts[i%len(texts)]); err != nil {
			log.Printf("Failed to review %s: %v", b.Title, err)
		}
	}
}

func createQuotes(repo *quotes_repo.Repository, users []*entities.User, books []demoBook) {
	for i, b := range books {
		author := users[i%len(users)]
		for _, text := range b.quotes {
			quote := &entities.Quote{
				UserID: author.ID,
				BookID: &b.ID,
				Text:   text,
				Tags:   "classic",
			}
			if err := repo.CreateQuote(quote); err != nil {
				log.Printf("Failed to save quote from %s: %v", b.Title, err)
				continue
			}
			// A couple of likes from the other demo users.
			for _, fan := range users {
				if fan.ID == author.ID {
					continue
				}
				if err := repo.LikeQuote(fan.ID, quote.ID); err != nil {
					log.Printf("Failed to like quote: %v", err)
				}
			}
		}
	}
}
