// Command admin manages admin accounts, feature flags and the AI catalog.
package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"workstation/internal/bootstrap"
	"workstation/internal/config"
	"workstation/internal/database"
	"workstation/internal/featureflags"
	"workstation/internal/repository"
	"workstation/internal/service"
	"workstation/internal/validation"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "admin",
		Usage: "Workstation Hub administration",
		Commands: []*cli.Command{
			{
				Name:      "promote",
				Usage:     "Grant admin rights to a user",
				ArgsUsage: "<username>",
				Action:    setAdmin(true),
			},
			{
				Name:      "demote",
				Usage:     "Revoke admin rights from a user",
				ArgsUsage: "<username>",
				Action:    setAdmin(false),
			},
			{
				Name:   "list-admins",
				Usage:  "List every admin account",
				Action: listAdmins,
			},
			{
				Name:  "create-admin",
				Usage: "Create a new admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Action: createAdmin,
			},
			{
				Name:   "sync-catalog",
				Usage:  "Upsert the built-in AI workers and tools",
				Action: syncCatalog,
			},
			{
				Name:  "flags",
				Usage: "Show configured feature flags as one user sees them",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "user-id", Usage: "evaluate rollouts for this user"},
				},
				Action: showFlags,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func connect() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

func profiles(db *gorm.DB) *service.ProfileService {
	return service.NewProfileService(repository.NewUserRepository(db))
}

func setAdmin(isAdmin bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		username := c.Args().First()
		if username == "" {
			return cli.Exit("username is required", 1)
		}
		_, db, err := connect()
		if err != nil {
			return err
		}

		user, changed, err := profiles(db).SetAdmin(c.Context, username, isAdmin)
		if err != nil {
			return err
		}
		switch {
		case !changed && isAdmin:
			fmt.Printf("%s (ID: %d) is already an admin\n", user.Username, user.ID)
		case !changed:
			fmt.Printf("%s (ID: %d) is not an admin\n", user.Username, user.ID)
		case isAdmin:
			fmt.Printf("Promoted %s (ID: %d) to admin\n", user.Username, user.ID)
		default:
			fmt.Printf("Demoted %s (ID: %d) from admin\n", user.Username, user.ID)
		}
		return nil
	}
}

func listAdmins(c *cli.Context) error {
	_, db, err := connect()
	if err != nil {
		return err
	}
	admins, err := profiles(db).ListAdmins(c.Context)
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		fmt.Println("No admins found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tCREATED")
	for _, a := range admins {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, a.Username, a.Email, a.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func createAdmin(c *cli.Context) error {
	if err := validation.ValidatePassword(c.String("password")); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	_, db, err := connect()
	if err != nil {
		return err
	}
	user, err := profiles(db).CreateUser(c.Context, service.CreateUserInput{
		Username: c.String("username"),
		Email:    c.String("email"),
		Password: c.String("password"),
		IsAdmin:  true,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created admin %s (ID: %d)\n", user.Username, user.ID)
	return nil
}

func syncCatalog(c *cli.Context) error {
	_, db, err := connect()
	if err != nil {
		return err
	}
	return bootstrap.SyncCatalog(c.Context, db)
}

func showFlags(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := featureflags.NewManager(cfg.FeatureFlags)
	userID := c.Uint("user-id")
	raw := flags.Raw()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FLAG\tRULE\tENABLED")
	for _, name := range flags.Names() {
		fmt.Fprintf(w, "%s\t%s\t%t\n", name, raw[name], flags.Enabled(name, userID))
	}
	return w.Flush()
}
