// Command orange is a terminal client for the Orange backend. The session is
// kept in the configured credential store between runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(ctx).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newApp(ctx context.Context) *cli.App {
	appCLI := cli.NewApp()
	appCLI.Name = "orange"
	appCLI.Usage = "Orange project payment tracking client"
	appCLI.Version = version
	appCLI.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "env, e",
			Usage: "Optional .env file read before the environment",
			Value: ".env",
		},
	}
	appCLI.Commands = []cli.Command{
		{
			Name:  "login",
			Usage: "Log in and store the session",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "username, u", Usage: "Username or email"},
				cli.StringFlag{Name: "password, p", Usage: "Password (prompted when empty)", EnvVar: "ORANGE_PASSWORD"},
			},
			Action: run(ctx, loginAction),
		},
		{
			Name:  "logout",
			Usage: "End the stored session",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "yes, y", Usage: "Do not ask for confirmation"},
			},
			Action: run(ctx, logoutAction),
		},
		{
			Name:   "whoami",
			Usage:  "Reload and print the current account",
			Action: run(ctx, whoamiAction),
		},
		{
			Name:  "register",
			Usage: "Create an account",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "username, u", Usage: "Login name"},
				cli.StringFlag{Name: "name, n", Usage: "Display name"},
				cli.StringFlag{Name: "email", Usage: "Email address (optional)"},
				cli.StringFlag{Name: "phone", Usage: "Phone number (optional)"},
				cli.StringFlag{Name: "password, p", Usage: "Password (prompted when empty)", EnvVar: "ORANGE_PASSWORD"},
			},
			Action: run(ctx, registerAction),
		},
		{
			Name:  "profile",
			Usage: "Update profile fields; omitted fields are left unchanged",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "name, n"},
				cli.StringFlag{Name: "email"},
				cli.StringFlag{Name: "phone"},
				cli.StringFlag{Name: "department, d"},
				cli.StringFlag{Name: "position"},
			},
			Action: run(ctx, profileAction),
		},
		{
			Name:  "passwd",
			Usage: "Change the account password",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "old", Usage: "Current password (prompted when empty)"},
				cli.StringFlag{Name: "new", Usage: "New password (prompted when empty)"},
			},
			Action: run(ctx, passwdAction),
		},
		{
			Name:   "routes",
			Usage:  "Show where each route lands for the current session",
			Action: run(ctx, routesAction),
		},
		{
			Name:  "users",
			Usage: "List accounts (administrators only)",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "page", Value: 1},
				cli.IntFlag{Name: "page-size", Value: 20},
			},
			Action: run(ctx, usersAction),
		},
	}
	return appCLI
}
