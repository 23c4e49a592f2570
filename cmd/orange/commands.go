package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/urfave/cli"

	"github.com/FruitsAI/orange-client/internal/app"
	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
	"github.com/FruitsAI/orange-client/internal/pkg/config"
	"github.com/FruitsAI/orange-client/pkg/logger"
)

var errNotLoggedIn = cli.NewExitError("not logged in, run `orange login` first", 1)

// env is what every command runs against.
type env struct {
	client *app.Client
	in     *bufio.Reader
	out    io.Writer
}

type action func(ctx context.Context, e *env, c *cli.Context) error

// run loads configuration, builds the client and prints toasts on stderr
// while the command runs.
func run(ctx context.Context, fn action) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		cfg, err := config.Load(ctx, c.GlobalString("env"))
		if err != nil {
			return err
		}
		log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "orange"})

		in := bufio.NewReader(os.Stdin)
		client, err := app.New(ctx, app.Options{
			Config:   cfg,
			Logger:   log,
			Surfaces: terminalSurfaces(in, os.Stderr),
		})
		if err != nil {
			return err
		}
		defer client.Close()

		printer := &toastPrinter{w: os.Stderr, seen: -1}
		client.WatchToasts(printer.print)

		return fn(ctx, &env{client: client, in: in, out: os.Stdout}, c)
	}
}

// toastPrinter writes each toast once.
type toastPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	seen int
}

func (p *toastPrinter) print(list []domain.Toast) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range list {
		if t.ID <= p.seen {
			continue
		}
		p.seen = t.ID
		fmt.Fprintf(p.w, "[%s] %s\n", t.Severity, t.Message)
	}
}

func (e *env) ask(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := e.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSpace(prompt), err)
	}
	return strings.TrimSpace(line), nil
}

func (e *env) flagOrAsk(c *cli.Context, name, prompt string) (string, error) {
	if v := c.String(name); v != "" {
		return v, nil
	}
	return e.ask(prompt)
}

// failed turns the session's last error into an exit error.
func (e *env) failed() error {
	msg := e.client.Session.LastError()
	if e.client.Session.LastErrorRetryable() {
		msg += " (check that the server is reachable and retry)"
	}
	return cli.NewExitError(msg, 1)
}

func loginAction(ctx context.Context, e *env, c *cli.Context) error {
	username, err := e.flagOrAsk(c, "username", "Username: ")
	if err != nil {
		return err
	}
	password, err := e.flagOrAsk(c, "password", "Password: ")
	if err != nil {
		return err
	}
	if !e.client.Session.Login(ctx, username, password) {
		return e.failed()
	}
	e.client.Toasts.Success("Login successful")
	fmt.Fprintln(e.out, loginSummary(e.client.Session.State().Identity, username))
	return nil
}

// loginSummary names the logged-in user, falling back to the typed username
// when the session holds no identity.
func loginSummary(id *domain.Identity, username string) string {
	if id == nil {
		return "Logged in as " + username
	}
	return fmt.Sprintf("Logged in as %s (%s)", id.Name, id.Username)
}

func logoutAction(ctx context.Context, e *env, c *cli.Context) error {
	if !e.client.Session.IsAuthenticated() {
		fmt.Fprintln(e.out, "Not logged in")
		return nil
	}
	if !c.Bool("yes") {
		ok, err := e.client.Confirm.Confirm(ctx, domain.ConfirmRequest{Title: "Logout", Message: "Log out of Orange?"})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	e.client.Session.Logout(ctx)
	e.client.Toasts.Info("Logged out")
	return nil
}

func whoamiAction(ctx context.Context, e *env, _ *cli.Context) error {
	if !e.client.Session.IsAuthenticated() {
		return errNotLoggedIn
	}
	if !e.client.Session.RefreshUser(ctx) {
		if !e.client.Session.IsAuthenticated() {
			return cli.NewExitError("session expired, please log in again", 1)
		}
		return e.failed()
	}
	printIdentity(e.out, e.client.Session.State().Identity)
	return nil
}

func registerAction(ctx context.Context, e *env, c *cli.Context) error {
	req := domain.Registration{
		Email: c.String("email"),
		Phone: c.String("phone"),
	}
	var err error
	if req.Username, err = e.flagOrAsk(c, "username", "Username: "); err != nil {
		return err
	}
	if req.Name, err = e.flagOrAsk(c, "name", "Name: "); err != nil {
		return err
	}
	if req.Password, err = e.flagOrAsk(c, "password", "Password: "); err != nil {
		return err
	}
	if !e.client.Session.Register(ctx, req) {
		return e.failed()
	}
	e.client.Toasts.Success("Registration successful, please log in")
	return nil
}

func profileAction(ctx context.Context, e *env, c *cli.Context) error {
	if !e.client.Session.IsAuthenticated() {
		return errNotLoggedIn
	}
	req := domain.ProfileUpdate{
		Name:       c.String("name"),
		Email:      c.String("email"),
		Phone:      c.String("phone"),
		Department: c.String("department"),
		Position:   c.String("position"),
	}
	if req.Empty() {
		return cli.NewExitError("nothing to update", 1)
	}
	if !e.client.Session.UpdateProfile(ctx, req) {
		return e.failed()
	}
	e.client.Toasts.Success("Profile updated")
	printIdentity(e.out, e.client.Session.State().Identity)
	return nil
}

func passwdAction(ctx context.Context, e *env, c *cli.Context) error {
	if !e.client.Session.IsAuthenticated() {
		return errNotLoggedIn
	}
	oldPassword, err := e.flagOrAsk(c, "old", "Current password: ")
	if err != nil {
		return err
	}
	newPassword, err := e.flagOrAsk(c, "new", "New password: ")
	if err != nil {
		return err
	}
	if !e.client.Session.ChangePassword(ctx, oldPassword, newPassword) {
		return e.failed()
	}
	e.client.Toasts.Success("Password changed")
	return nil
}

func routesAction(_ context.Context, e *env, _ *cli.Context) error {
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tLANDS ON\tTITLE")
	for _, r := range e.client.Guard.Routes() {
		d := e.client.Guard.Resolve(r.Path)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Path, d.Target, d.Title)
	}
	return tw.Flush()
}

func usersAction(ctx context.Context, e *env, c *cli.Context) error {
	if !e.client.Session.IsAuthenticated() {
		return errNotLoggedIn
	}
	page, err := e.client.Auth.ListUsers(ctx, c.Int("page"), c.Int("page-size"))
	if err != nil {
		return cli.NewExitError(domain.Message(err, "list users failed"), 1)
	}
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tROLE\tSTATUS")
	for _, u := range page.List {
		status := "active"
		if !u.Active() {
			status = "disabled"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Name, u.Role, status)
	}
	fmt.Fprintf(tw, "\npage %d, %d of %d accounts\n", page.Page, len(page.List), page.Total)
	return tw.Flush()
}

func printIdentity(w io.Writer, id *domain.Identity) {
	if id == nil {
		fmt.Fprintln(w, "No profile loaded")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%d\n", id.ID)
	fmt.Fprintf(tw, "username\t%s\n", id.Username)
	fmt.Fprintf(tw, "name\t%s\n", id.Name)
	fmt.Fprintf(tw, "email\t%s\n", id.Email)
	fmt.Fprintf(tw, "phone\t%s\n", id.Phone)
	fmt.Fprintf(tw, "role\t%s\n", id.Role)
	fmt.Fprintf(tw, "department\t%s\n", id.Department)
	fmt.Fprintf(tw, "position\t%s\n", id.Position)
	_ = tw.Flush()
}

// terminalSurface asks yes/no questions on the terminal.
type terminalSurface struct {
	in  *bufio.Reader
	out io.Writer
}

func terminalSurfaces(in *bufio.Reader, out io.Writer) ports.SurfaceFactory {
	return func() (ports.ConfirmSurface, error) {
		return &terminalSurface{in: in, out: out}, nil
	}
}

func (s *terminalSurface) Prompt(ctx context.Context, req domain.ConfirmRequest) (bool, error) {
	if req.Title != "" {
		fmt.Fprintf(s.out, "%s: ", req.Title)
	}
	fmt.Fprintf(s.out, "%s [y/N] ", req.Message)

	answer := make(chan string, 1)
	go func() {
		line, _ := s.in.ReadString('\n')
		answer <- strings.ToLower(strings.TrimSpace(line))
	}()
	select {
	case a := <-answer:
		return a == "y" || a == "yes", nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
