// Command lorem seeds the notes service with generated topics for manual testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/jaswdr/faker"
	"golang.org/x/term"

	"notemaster/pkg/auth"
	"notemaster/pkg/client"
	"notemaster/pkg/config"
	"notemaster/pkg/models"
	"notemaster/pkg/services"
	"notemaster/pkg/storage"
)

// loremNote returns a markdown note with lorem ipsum content
func loremNote(f faker.Faker) string {
	lorem := f.Lorem()
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", strings.TrimSuffix(lorem.Sentence(4), "."))
	b.WriteString(lorem.Paragraph(3))
	b.WriteString("\n\n")
	for _, s := range lorem.Sentences(3) {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	b.WriteString("\n```go\n// Example code block\n")
	fmt.Fprintf(&b, "fmt.Println(%q)\n", lorem.Sentence(3))
	b.WriteString("```\n")
	return b.String()
}

func main() {
	topicCount := flag.Int("topics", 3, "number of topics to create")
	noteCount := flag.Int("notes", 5, "notes per topic")
	email := flag.String("email", "", "account email")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "Usage: lorem -email you@example.com [-topics N] [-notes N]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Print("Enter password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
		os.Exit(1)
	}

	// The saved token is shared with a running server.
	tokens := storage.NewTokenStore(cfg.TokenPath)
	defer tokens.Close()

	var manager *auth.Manager
	sessions := client.SessionFunc(func() *models.Session { return manager.Current() })
	rest := client.New(cfg.APIBaseURL, nil, sessions)
	manager = auth.NewManager(tokens, rest)

	ctx := context.Background()
	if _, err := manager.Login(ctx, *email, string(pw)); err != nil {
		fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
		os.Exit(1)
	}

	f := faker.New()
	topics := services.NewTopicService(rest)
	for i := 0; i < *topicCount; i++ {
		title := strings.TrimSuffix(f.Lorem().Sentence(3), ".")
		topic, err := topics.Create(ctx, title)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create topic: %v\n", err)
			os.Exit(1)
		}
		for j := 0; j < *noteCount; j++ {
			if err := topics.AddNote(ctx, topic.ID, loremNote(f)); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to add note to %s: %v\n", topic.ID, err)
				os.Exit(1)
			}
		}
		fmt.Printf("Generated topic %q with ID: %s\n", title, topic.ID)
	}
}
