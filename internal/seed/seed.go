// Package seed fills a database with demo data through the service layer,
// so seeded rows obey the same rules as rows created over the API.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"workstation/internal/database"
	"workstation/internal/middleware"
	"workstation/internal/models"
	"workstation/internal/repository"
	"workstation/internal/service"

	"gorm.io/gorm"
)

// Options configures a seed run.
type Options struct {
	Users    int
	Projects int
	Comments int
	Thoughts int
	Messages int
	// Password is shared by every seeded account.
	Password string
	// FakerSeed makes the generated content reproducible. Zero is random.
	FakerSeed int64
	// Clean empties every table before seeding.
	Clean bool
}

// DefaultOptions returns a small but lively data set.
func DefaultOptions() Options {
	return Options{
		Users:    25,
		Projects: 12,
		Comments: 40,
		Thoughts: 30,
		Messages: 40,
		Password: "password123",
	}
}

// Result counts what a run created.
type Result struct {
	Users        int
	Projects     int
	JoinRequests int
	Supports     int
	Comments     int
	Thoughts     int
	Messages     int
}

// Seeder drives the services with factory-built input.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory

	profiles   *service.ProfileService
	projects   *service.ProjectService
	membership *service.MembershipService
	comments   *service.CommentService
	thoughts   *service.ThoughtService
	messaging  *service.MessagingService
}

// NewSeeder builds a Seeder over db. Notifications are stored but not published.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.Password == "" {
		opts.Password = DefaultOptions().Password
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notifier := service.NewNotificationService(repository.NewNotificationRepository(db), chatRepo, nil, 0)

	return &Seeder{
		db:         db,
		opts:       opts,
		factory:    NewFactory(opts.FakerSeed),
		profiles:   service.NewProfileService(userRepo),
		projects:   service.NewProjectService(projectRepo, membershipRepo, commentRepo, notifier),
		membership: service.NewMembershipService(projectRepo, membershipRepo, userRepo, notifier),
		comments:   service.NewCommentService(commentRepo, projectRepo, userRepo, notifier),
		thoughts:   service.NewThoughtService(repository.NewThoughtRepository(db), userRepo, notifier),
		messaging:  service.NewMessagingService(chatRepo, userRepo, notifier, nil),
	}
}

// Run seeds users first, then projects and everything that hangs off them.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	log := middleware.Logger
	log.InfoContext(ctx, "seeding database", slog.Int("users", s.opts.Users), slog.Int("projects", s.opts.Projects))

	if s.opts.Clean {
		if err := Clean(ctx, s.db); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	users, err := s.seedUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	res.Users = len(users)
	if len(users) < 2 {
		return res, nil
	}

	projects, err := s.seedProjects(ctx, users)
	if err != nil {
		return nil, fmt.Errorf("seed projects: %w", err)
	}
	res.Projects = len(projects)

	if res.JoinRequests, res.Supports, err = s.seedEngagement(ctx, users, projects); err != nil {
		return nil, fmt.Errorf("seed engagement: %w", err)
	}
	if res.Comments, err = s.seedComments(ctx, users, projects); err != nil {
		return nil, fmt.Errorf("seed comments: %w", err)
	}
	if res.Thoughts, err = s.seedThoughts(ctx, users); err != nil {
		return nil, fmt.Errorf("seed thoughts: %w", err)
	}
	if res.Messages, err = s.seedMessages(ctx, users); err != nil {
		return nil, fmt.Errorf("seed messages: %w", err)
	}

	log.InfoContext(ctx, "seeding completed",
		slog.Int("users", res.Users),
		slog.Int("projects", res.Projects),
		slog.Int("join_requests", res.JoinRequests),
		slog.Int("comments", res.Comments),
		slog.Int("thoughts", res.Thoughts),
		slog.Int("messages", res.Messages),
	)
	return res, nil
}

// seedUsers creates a fixed admin and demo account, then generated users.
func (s *Seeder) seedUsers(ctx context.Context) ([]*models.User, error) {
	if s.opts.Users <= 0 {
		return nil, nil
	}
	fixed := []service.CreateUserInput{
		{Username: "admin", Email: "admin@example.com", FirstName: "Ada", LastName: "Admin", UserType: models.UserTypeFounder, IsAdmin: true},
		{Username: "demo", Email: "demo@example.com", FirstName: "Demo", LastName: "User", UserType: models.UserTypeEnthusiast},
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		var in service.CreateUserInput
		if i < len(fixed) {
			in = fixed[i]
			in.Password = s.opts.Password
		} else {
			in = s.factory.User(i, s.opts.Password)
		}
		u, err := s.profiles.CreateUser(ctx, in)
		if err != nil {
			if models.ErrorCode(err) == models.CodeConflict {
				middleware.Logger.WarnContext(ctx, "skipping existing user", slog.String("username", in.Username))
				continue
			}
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Seeder) seedProjects(ctx context.Context, users []*models.User) ([]*models.Project, error) {
	projects := make([]*models.Project, 0, s.opts.Projects)
	for i := 0; i < s.opts.Projects; i++ {
		creator := users[i%len(users)]
		p, err := s.projects.CreateProject(ctx, creator.ID, s.factory.Project())
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// seedEngagement has other users support and ask to join each project. The
// creator accepts about half the requests and rejects a fifth.
func (s *Seeder) seedEngagement(ctx context.Context, users []*models.User, projects []*models.Project) (requests, supports int, err error) {
	for _, p := range projects {
		for _, u := range users {
			if u.ID == p.CreatorID {
				continue
			}
			if s.factory.Chance(30) {
				if _, err := s.membership.ToggleSupport(ctx, u.ID, p.ID); err != nil {
					return requests, supports, err
				}
				supports++
			}
			if !s.factory.Chance(20) {
				continue
			}
			jr, created, err := s.membership.RequestToJoin(ctx, service.RequestToJoinInput{
				UserID:      u.ID,
				ProjectID:   p.ID,
				Message:     s.factory.Sentence(10),
				DesiredRole: s.factory.DesiredRole(),
			})
			if err != nil {
				return requests, supports, err
			}
			if !created {
				continue
			}
			requests++

			var decision models.JoinDecision
			switch roll := s.factory.Pick(10); {
			case roll < 5:
				decision = models.JoinDecisionAccept
			case roll < 7:
				decision = models.JoinDecisionReject
			default:
				continue
			}
			if _, err := s.membership.Respond(ctx, p.CreatorID, jr.ID, decision); err != nil {
				return requests, supports, err
			}
		}
	}
	return requests, supports, nil
}

// seedComments posts top-level comments and answers a third of them.
func (s *Seeder) seedComments(ctx context.Context, users []*models.User, projects []*models.Project) (int, error) {
	if len(projects) == 0 {
		return 0, nil
	}
	count := 0
	for i := 0; i < s.opts.Comments; i++ {
		p := projects[s.factory.Pick(len(projects))]
		author := users[s.factory.Pick(len(users))]
		c, err := s.comments.AddComment(ctx, service.CreateCommentInput{
			UserID:    author.ID,
			ProjectID: p.ID,
			Content:   s.factory.Sentence(14),
		})
		if err != nil {
			return count, err
		}
		count++

		if s.factory.Chance(33) {
			parentID := c.ID
			if _, err := s.comments.AddComment(ctx, service.CreateCommentInput{
				UserID:          p.CreatorID,
				ProjectID:       p.ID,
				Content:         s.factory.Sentence(8),
				ParentCommentID: &parentID,
			}); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func (s *Seeder) seedThoughts(ctx context.Context, users []*models.User) (int, error) {
	for i := 0; i < s.opts.Thoughts; i++ {
		author := users[s.factory.Pick(len(users))]
		mention := ""
		if s.factory.Chance(25) {
			if other := users[s.factory.Pick(len(users))]; other.ID != author.ID {
				mention = other.Username
			}
		}
		if _, err := s.thoughts.CreateThought(ctx, service.CreateThoughtInput{
			UserID:  author.ID,
			Content: s.factory.Thought(mention),
		}); err != nil {
			return i, err
		}
	}
	return s.opts.Thoughts, nil
}

// seedMessages sends messages between random pairs, threading some replies.
func (s *Seeder) seedMessages(ctx context.Context, users []*models.User) (int, error) {
	count := 0
	for i := 0; i < s.opts.Messages; i++ {
		from := users[s.factory.Pick(len(users))]
		to := users[s.factory.Pick(len(users))]
		if from.ID == to.ID {
			continue
		}
		msg, err := s.messaging.SendMessage(ctx, service.SendMessageInput{
			SenderID:    from.ID,
			RecipientID: to.ID,
			Subject:     s.factory.Sentence(4),
			Content:     s.factory.Sentence(16),
		})
		if err != nil {
			return count, err
		}
		count++

		if s.factory.Chance(40) {
			parentID := msg.ID
			if _, err := s.messaging.SendMessage(ctx, service.SendMessageInput{
				SenderID:        to.ID,
				RecipientID:     from.ID,
				Content:         s.factory.Sentence(10),
				ParentMessageID: &parentID,
			}); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// Clean removes every row from the schema-managed tables. On Postgres it
// truncates with CASCADE; other dialects delete children first.
func Clean(ctx context.Context, db *gorm.DB) error {
	tables, err := tableNames(db)
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "clearing existing data", slog.Int("tables", len(tables)))

	tx := db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		sql := "TRUNCATE TABLE "
		for i, t := range tables {
			if i > 0 {
				sql += ", "
			}
			sql += `"` + t + `"`
		}
		return tx.Exec(sql + " RESTART IDENTITY CASCADE").Error
	}
	for i := len(tables) - 1; i >= 0; i-- {
		if err := tx.Exec(`DELETE FROM "` + tables[i] + `"`).Error; err != nil {
			return fmt.Errorf("clear %s: %w", tables[i], err)
		}
	}
	return nil
}

// tableNames lists model tables in dependency order, each followed by its
// many-to-many join tables.
func tableNames(db *gorm.DB) ([]string, error) {
	var names []string
	seen := map[string]bool{}
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			names = append(names, t)
		}
	}
	for _, m := range database.PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("parse %T: %w", m, err)
		}
		add(stmt.Schema.Table)
		for _, rel := range stmt.Schema.Relationships.Many2Many {
			if rel.JoinTable != nil {
				add(rel.JoinTable.Table)
			}
		}
	}
	return names, nil
}
