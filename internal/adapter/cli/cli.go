package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/niksmo/techstore/internal/core/port"
	"github.com/spf13/pflag"
)

const (
	ExitOK = iota
	ExitFailure
	ExitUsage
	ExitUnauthorized
	ExitNetwork
	ExitNotFound
)

const PasswordEnvName = "TECHSTORE_PASSWORD"

type runFunc func(ctx context.Context, args []string) error

type command struct {
	usage   string
	summary string
	guarded bool
	run     runFunc
}

// A CLI maps command lines onto the storefront services.
type CLI struct {
	out      io.Writer
	errOut   io.Writer
	getenv   func(string) string
	sessions port.SessionManager
	cart     port.CartManager
	catalog  port.Catalog
	account  port.Account
	commands map[string]command
}

type Option func(*CLI)

// OutputOpt redirects regular and error output.
func OutputOpt(out, errOut io.Writer) Option {
	return func(c *CLI) {
		c.out = out
		c.errOut = errOut
	}
}

// EnvOpt replaces the environment lookup used for secrets.
func EnvOpt(getenv func(string) string) Option {
	return func(c *CLI) {
		c.getenv = getenv
	}
}

// CommandOpt registers an extra command served outside the storefront.
func CommandOpt(
	name, summary string, fn func(ctx context.Context, out io.Writer) error,
) Option {
	return func(c *CLI) {
		c.commands[name] = command{
			usage:   name,
			summary: summary,
			run: func(ctx context.Context, _ []string) error {
				return fn(ctx, c.out)
			},
		}
	}
}

func New(
	sessions port.SessionManager,
	cart port.CartManager,
	catalog port.Catalog,
	account port.Account,
	opts ...Option,
) *CLI {
	c := &CLI{
		out:      os.Stdout,
		errOut:   os.Stderr,
		getenv:   os.Getenv,
		sessions: sessions,
		cart:     cart,
		catalog:  catalog,
		account:  account,
	}

	c.commands = map[string]command{
		"login": {
			usage:   "login -e EMAIL [-p PASSWORD]",
			summary: "start a session; the password may come from " + PasswordEnvName,
			run:     c.login,
		},
		"logout": {
			usage:   "logout",
			summary: "drop the stored session",
			run:     c.logout,
		},
		"register": {
			usage:   "register --name N --lastname L -e EMAIL -t PHONE -p PASS --confirm PASS",
			summary: "create a client account",
			run:     c.register,
		},
		"whoami": {
			usage:   "whoami",
			summary: "show the logged in user",
			run:     c.whoami,
		},
		"dashboard": {
			usage:   "dashboard",
			summary: "show the account and a cart summary",
			guarded: true,
			run:     c.dashboard,
		},
		"products": {
			usage:   "products [-s SEARCH] [-c CATEGORY]",
			summary: "browse the catalog",
			guarded: true,
			run:     c.products,
		},
		"product": {
			usage:   "product ID",
			summary: "show one product",
			guarded: true,
			run:     c.product,
		},
		"cart": {
			usage:   "cart [show | add ID [-q N] | set LINE QTY | rm LINE | clear]",
			summary: "inspect or change the cart; lines are numbered from 1",
			guarded: true,
			run:     c.cartCmd,
		},
		"checkout": {
			usage:   "checkout",
			summary: "place an order for the cart",
			guarded: true,
			run:     c.checkout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run executes one command line and returns the process exit code.
func (c *CLI) Run(ctx context.Context, args []string) int {
	const op = "CLI.Run"
	log := slog.With("op", op)

	if len(args) == 0 {
		c.usage(c.errOut)
		return ExitUsage
	}

	name, rest := args[0], args[1:]
	switch name {
	case "help", "-h", "--help":
		c.usage(c.out)
		return ExitOK
	}

	cmd, ok := c.commands[name]
	if !ok {
		renderError(c.errOut, fmt.Sprintf("unknown command %q", name))
		c.usage(c.errOut)
		return ExitUsage
	}

	log.Debug("running command", "command", name)

	err := c.runCommand(ctx, cmd, rest)
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, pflag.ErrHelp) {
		return ExitOK
	}

	log.Debug("command failed", "command", name, "err", err)
	renderError(c.errOut, c.message(name, err))
	return exitCode(err)
}

func (c *CLI) runCommand(ctx context.Context, cmd command, args []string) error {
	if cmd.guarded {
		if err := c.sessions.RequireAuth(ctx); err != nil {
			return err
		}
	}
	return cmd.run(ctx, args)
}

func (c *CLI) usage(w io.Writer) {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, titleStyle.Render("techstore")+" "+mutedStyle.Render("[--config FILE] COMMAND"))
	fmt.Fprintln(w)
	for _, name := range names {
		cmd := c.commands[name]
		fmt.Fprintf(w, "  %s\n      %s\n", cmd.usage, mutedStyle.Render(cmd.summary))
	}
}

func (c *CLI) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func (c *CLI) login(ctx context.Context, args []string) error {
	fs := c.flagSet("login")
	email := fs.StringP("email", "e", "", "account email")
	password := fs.StringP("password", "p", "", "account password")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	if *password == "" {
		*password = c.getenv(PasswordEnvName)
	}

	user, err := c.sessions.Login(ctx, domain.Credentials{
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}

	name := user.FullName()
	if name == "" {
		name = user.Email
	}
	fmt.Fprintln(c.out, "Logged in as "+titleStyle.Render(name))
	return nil
}

func (c *CLI) logout(ctx context.Context, args []string) error {
	if err := parse(c.flagSet("logout"), args, 0); err != nil {
		return err
	}
	c.sessions.Logout(ctx)
	fmt.Fprintln(c.out, "Logged out.")
	return nil
}

func (c *CLI) register(ctx context.Context, args []string) error {
	fs := c.flagSet("register")
	var r domain.Registration
	fs.StringVar(&r.Name, "name", "", "first name")
	fs.StringVar(&r.Lastname, "lastname", "", "last name")
	fs.StringVarP(&r.Email, "email", "e", "", "email")
	fs.StringVarP(&r.Telephone, "telephone", "t", "", "telephone")
	fs.StringVarP(&r.Password, "password", "p", "", "password")
	fs.StringVar(&r.ConfirmPassword, "confirm", "", "password confirmation")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	if r.Password == "" && r.ConfirmPassword == "" {
		r.Password = c.getenv(PasswordEnvName)
		r.ConfirmPassword = r.Password
	}

	if err := c.account.Register(ctx, r); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Account created. Log in with `techstore login -e "+r.Email+"`.")
	return nil
}

func (c *CLI) whoami(ctx context.Context, args []string) error {
	if err := parse(c.flagSet("whoami"), args, 0); err != nil {
		return err
	}
	user, ok := c.sessions.CurrentUser(ctx)
	if !ok {
		return fmt.Errorf("whoami: %w", domain.ErrUnauthorized)
	}
	renderUser(c.out, user)
	return nil
}

func (c *CLI) dashboard(ctx context.Context, args []string) error {
	if err := parse(c.flagSet("dashboard"), args, 0); err != nil {
		return err
	}
	d, err := c.account.Dashboard(ctx)
	if err != nil {
		return err
	}
	renderDashboard(c.out, d)
	return nil
}

func (c *CLI) products(ctx context.Context, args []string) error {
	fs := c.flagSet("products")
	var f domain.Filter
	fs.StringVarP(&f.Search, "search", "s", "", "match product names")
	fs.StringVarP(&f.Category, "category", "c", domain.AllCategories, "category name")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	listing, err := c.catalog.Browse(ctx, f)
	if err != nil {
		return err
	}
	renderListing(c.out, listing, f)
	return nil
}

func (c *CLI) product(ctx context.Context, args []string) error {
	fs := c.flagSet("product")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	p, err := c.catalog.Product(ctx, id)
	if err != nil {
		return err
	}
	renderProduct(c.out, p)
	return nil
}

func (c *CLI) cartCmd(ctx context.Context, args []string) error {
	sub := "show"
	if len(args) != 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "show":
		return c.cartShow(ctx, args)
	case "add":
		return c.cartAdd(ctx, args)
	case "set":
		return c.cartSet(ctx, args)
	case "rm", "remove":
		return c.cartRemove(ctx, args)
	case "clear":
		return c.cartClear(ctx, args)
	default:
		return domain.NewValidationError(fmt.Sprintf("unknown cart command %q", sub))
	}
}

func (c *CLI) cartShow(ctx context.Context, args []string) error {
	if err := parse(c.flagSet("cart show"), args, 0); err != nil {
		return err
	}
	c.showCart(c.cart.Load(ctx))
	return nil
}

func (c *CLI) cartAdd(ctx context.Context, args []string) error {
	fs := c.flagSet("cart add")
	quantity := fs.IntP("quantity", "q", 1, "units to add")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	cart, err := c.catalog.AddToCart(ctx, id, *quantity)
	if err != nil {
		return err
	}

	if i := cart.IndexOf(id); i >= 0 {
		fmt.Fprintf(c.out, "Added %d × %s to the cart.\n", *quantity, cart.Lines[i].Product.Name)
	}
	c.showCart(cart)
	return nil
}

func (c *CLI) cartSet(ctx context.Context, args []string) error {
	fs := c.flagSet("cart set")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	line, err := parseInt("line", fs.Arg(0))
	if err != nil {
		return err
	}
	quantity, err := parseInt("quantity", fs.Arg(1))
	if err != nil {
		return err
	}

	cart, err := c.cart.SetQuantity(ctx, line-1, quantity)
	if err != nil {
		return err
	}
	c.showCart(cart)
	return nil
}

func (c *CLI) cartRemove(ctx context.Context, args []string) error {
	fs := c.flagSet("cart rm")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	line, err := parseInt("line", fs.Arg(0))
	if err != nil {
		return err
	}

	cart, err := c.cart.Remove(ctx, line-1)
	if err != nil {
		return err
	}
	c.showCart(cart)
	return nil
}

func (c *CLI) cartClear(ctx context.Context, args []string) error {
	if err := parse(c.flagSet("cart clear"), args, 0); err != nil {
		return err
	}
	if err := c.cart.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Cart cleared.")
	return nil
}

func (c *CLI) checkout(ctx context.Context, args []string) error {
	if err := parse(c.flagSet("checkout"), args, 0); err != nil {
		return err
	}
	if err := c.account.Checkout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Order placed.")
	return nil
}

func (c *CLI) showCart(cart domain.Cart) {
	renderCart(c.out, cart, c.cart.ComputeTotals(cart))
}

func (c *CLI) message(command string, err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		if command == "login" {
			return domain.Detail(err, "Invalid email or password.")
		}
		return "You are not logged in. Run `techstore login` first."
	case errors.Is(err, domain.ErrNetwork):
		return domain.Detail(err, "Cannot reach the store. Check the connection and try again.")
	case errors.Is(err, domain.ErrNotFound):
		return domain.Detail(err, "Not found.")
	case errors.Is(err, domain.ErrValidation):
		return domain.Detail(err, "The request was rejected.")
	case errors.Is(err, domain.ErrOutOfStock):
		return "This product is out of stock."
	case errors.Is(err, domain.ErrStockExceeded):
		return "Not enough stock for that quantity."
	case errors.Is(err, domain.ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, domain.ErrCheckoutUnavailable):
		return "Checkout is not available yet. Your cart was kept."
	default:
		return "Something went wrong: " + err.Error()
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return ExitUsage
	case errors.Is(err, domain.ErrUnauthorized):
		return ExitUnauthorized
	case errors.Is(err, domain.ErrNetwork):
		return ExitNetwork
	case errors.Is(err, domain.ErrNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}

// parse parses flags and requires exactly nArgs positional arguments.
func parse(fs *pflag.FlagSet, args []string, nArgs int) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return domain.NewValidationError(err.Error())
	}
	if fs.NArg() != nArgs {
		return domain.NewValidationError(fmt.Sprintf(
			"%s: expected %d arguments, got %d: %s",
			fs.Name(), nArgs, fs.NArg(), strings.Join(fs.Args(), " "),
		))
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError(fmt.Sprintf("product id %q is not valid", s))
	}
	return id, nil
}

func parseInt(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.NewValidationError(fmt.Sprintf("%s %q is not a number", name, s))
	}
	return v, nil
}
