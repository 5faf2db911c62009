package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/modaltela/modal-tela-api/app/configs"
	"github.com/modaltela/modal-tela-api/app/db/seeders"
	"github.com/modaltela/modal-tela-api/app/models/migrations"
	"github.com/modaltela/modal-tela-api/app/routes"
	"github.com/modaltela/modal-tela-api/app/services"
	"github.com/urfave/cli/v3"
)

// RunCli runs the API server when no sub command is given.
func RunCli() {
	env := configs.LoadEnv()

	cmd := &cli.Command{
		Name:  "modal-tela-api",
		Usage: "Modal Tela store API",
		Action: func(ctx context.Context, c *cli.Command) error {
			return Serve(ctx, env)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP API",
				Action: func(ctx context.Context, c *cli.Command) error {
					return Serve(ctx, env)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Println("✅ Migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Load the demo catalog",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					return seeders.DBSeed(db.WithContext(ctx))
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate new session authentication and encryption keys for .env",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "also write the keys to this file"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := configs.WriteSessionKeys(os.Stdout, c.String("out")); err != nil {
						return err
					}
					log.Println("✅ Key generation complete. Please copy the keys to your .env file.")
					return nil
				},
			},
			{
				Name:  "create-superadmin",
				Usage: "Create a super admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "first-name", Value: "Super"},
					&cli.StringFlag{Name: "last-name", Value: "Admin"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					svc := routes.NewServices(db, serviceConfig(env, nil))
					user, err := svc.Users.CreateSuperAdmin(ctx, services.CreateStaffInput{
						Email:     c.String("email"),
						Password:  c.String("password"),
						FirstName: c.String("first-name"),
						LastName:  c.String("last-name"),
					})
					if err != nil {
						return err
					}
					log.Printf("✅ Super admin %s created (%s)", user.Email, user.ID)
					return nil
				},
			},
			{
				Name:  "purge-guests",
				Usage: "Delete expired guest sessions and stale guest carts",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					svc := routes.NewServices(db, serviceConfig(env, nil))
					result, err := svc.Guests.PurgeExpired(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("removed %d guests and %d carts\n", result.Guests, result.Carts)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
