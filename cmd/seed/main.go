// Command seed fills the database with demo users, projects and activity.
package main

import (
	"context"
	"flag"
	"log"

	"workstation/internal/bootstrap"
	"workstation/internal/config"
	"workstation/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	opts := defaults
	flag.IntVar(&opts.Users, "users", defaults.Users, "Number of users to create")
	flag.IntVar(&opts.Projects, "projects", defaults.Projects, "Number of projects to create")
	flag.IntVar(&opts.Comments, "comments", defaults.Comments, "Number of top-level comments")
	flag.IntVar(&opts.Thoughts, "thoughts", defaults.Thoughts, "Number of thoughts")
	flag.IntVar(&opts.Messages, "messages", defaults.Messages, "Number of direct messages")
	flag.StringVar(&opts.Password, "password", defaults.Password, "Password for every seeded user")
	flag.Int64Var(&opts.FakerSeed, "faker-seed", 0, "Seed for reproducible content (0 = random)")
	flag.BoolVar(&opts.Clean, "clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SyncCatalog: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	res, err := seed.NewSeeder(db, opts).Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d projects, %d join requests, %d comments, %d thoughts, %d messages",
		res.Users, res.Projects, res.JoinRequests, res.Comments, res.Thoughts, res.Messages)
	log.Printf("All seeded users share the password: %s", opts.Password)
}
