package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/budadmin/internal/console/app"
	"github.com/aussiebroadwan/budadmin/pkg/adminsdk"
	"github.com/aussiebroadwan/budadmin/pkg/session"
	"github.com/aussiebroadwan/budadmin/pkg/slogx"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

type cli struct {
	app    *app.Application
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	ctx = slogx.WithAttrs(slogx.WithContext(ctx, c.app.Logger()), "command", cmd)

	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return c.app.Logout(ctx)
	case "setup":
		return c.setup(ctx, rest)
	}

	// Everything else runs on the persisted session.
	if err := c.app.Restore(ctx); err != nil {
		return err
	}

	switch cmd {
	case "whoami":
		return c.whoami(ctx)
	case "passwd":
		return c.passwd(ctx)
	case "dashboard":
		d, err := c.app.API().Dashboard(ctx)
		if err != nil {
			return err
		}
		return c.print(d)
	case "users":
		return c.users(ctx, rest)
	}

	res, ok := resources[cmd]
	if !ok {
		return usageError(fmt.Sprintf("unknown command %q", cmd))
	}
	return c.resource(ctx, cmd, res, rest)
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	username := fs.StringP("username", "u", "", "account name (prompted when empty)")
	passwordFile := fs.String("password-file", "", "read the password from a file instead of prompting")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	if *username == "" {
		name, err := prompt(c.stderr, "Username: ")
		if err != nil {
			return err
		}
		*username = name
	}

	password, err := readPassword(c.stderr, *passwordFile)
	if err != nil {
		return err
	}

	id, err := c.app.Login(ctx, *username, password)
	if err != nil {
		return err
	}
	if id == nil {
		return session.ErrAuthRequired
	}

	role := "user"
	if id.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(c.stderr, "Signed in as %s (%s).\n", id.Username, role)
	return nil
}

func (c *cli) setup(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("setup", pflag.ContinueOnError)
	username := fs.String("username", "", "admin account name")
	email := fs.String("email", "", "admin email")
	passwordFile := fs.String("password-file", "", "read the password from a file instead of prompting")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *username == "" || *email == "" {
		return usageError("setup requires --username and --email")
	}

	password, err := readPassword(c.stderr, *passwordFile)
	if err != nil {
		return err
	}

	user, err := c.app.Setup(ctx, adminsdk.UserCreate{
		Username: *username,
		Email:    *email,
		Password: password,
		IsAdmin:  true,
	})
	if err != nil {
		return err
	}
	return c.print(user)
}

// whoami prefers the live account record and falls back to the token claims.
func (c *cli) whoami(ctx context.Context) error {
	if !c.app.Session().IsAuthenticated() {
		fmt.Fprintln(c.stderr, "Not signed in.")
		return nil
	}

	me, err := c.app.API().Me(ctx)
	if err == nil {
		if err := c.app.Session().CacheUser(ctx, me); err != nil {
			c.app.Logger().Warn("failed to cache user", "error", err)
		}
		c.printStatus(ctx)
		return c.print(me)
	}
	if !c.app.Session().IsAuthenticated() {
		return err
	}

	c.printStatus(ctx)
	var cached adminsdk.User
	if ok, cerr := c.app.Session().CachedUser(ctx, &cached); cerr == nil && ok {
		return c.print(cached)
	}
	return c.print(c.app.Session().Identity())
}

func (c *cli) printStatus(ctx context.Context) {
	st, err := c.app.Status(ctx)
	if err != nil {
		c.app.Logger().Warn("failed to read session status", "error", err)
		return
	}
	if st.ExpiresIn <= 0 {
		fmt.Fprintln(c.stderr, "Access token expired, it is refreshed on the next request.")
		return
	}
	fmt.Fprintf(c.stderr, "Access token valid for %s (issued %s).\n",
		st.ExpiresIn.Round(time.Second), st.UpdatedAt.Local().Format(time.RFC3339))
}

func (c *cli) passwd(ctx context.Context) error {
	current, err := readPassword(c.stderr, "")
	if err != nil {
		return err
	}
	fmt.Fprint(c.stderr, "New ")
	next, err := readPassword(c.stderr, "")
	if err != nil {
		return err
	}
	if err := c.app.API().ChangePassword(ctx, current, next); err != nil {
		return err
	}
	fmt.Fprintln(c.stderr, "Password changed.")
	return nil
}

func (c *cli) users(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "list" {
		return usageError("users list [--page N] [--page-size N] [--active=true|false]")
	}

	fs := pflag.NewFlagSet("users list", pflag.ContinueOnError)
	page := fs.Int("page", 0, "page number")
	pageSize := fs.Int("page-size", 0, "page size")
	active := fs.String("active", "", "filter by active flag")
	if err := fs.Parse(args[1:]); err != nil {
		return usageError(err.Error())
	}

	opts := adminsdk.UserListOptions{Page: *page, PageSize: *pageSize}
	switch *active {
	case "":
	case "true", "false":
		v := *active == "true"
		opts.IsActive = &v
	default:
		return usageError("--active must be true or false")
	}

	users, err := c.app.API().ListUsers(ctx, opts)
	if err != nil {
		return err
	}
	return c.print(users)
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func prompt(w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads from path when set, otherwise prompts on the terminal
// with echo disabled.
func readPassword(w io.Writer, path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", usageError("no terminal available for password prompt (use --password-file)")
	}

	fmt.Fprint(w, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}
