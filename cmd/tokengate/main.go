// Command tokengate runs the token auth service.
//
//	tokengate [serve] [-config path]                 run the HTTP service (default)
//	tokengate provision [-config path]               create the configured users and exit
//	tokengate roles [-config path] <user> [role...]  replace a user's roles
//	tokengate delete [-config path] <user>           remove a user
//	tokengate hash                                   read a password on stdin, print its hash
//	tokengate version                                print build information
//
// A running server re-reads its config on SIGHUP and rotates to the
// configured signing key if it changed.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kbukum/tokengate/auth/password"
	"github.com/kbukum/tokengate/config"
	"github.com/kbukum/tokengate/internal/app"
	"github.com/kbukum/tokengate/logger"
	"github.com/kbukum/tokengate/version"
)

func main() {
	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = serve(args)
	case "provision":
		err = provision(args)
	case "roles":
		err = roles(args)
	case "delete":
		err = deleteUser(args)
	case "hash":
		err = hash()
	case "version":
		fmt.Printf("tokengate %s\n", version.Get())
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengate %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tokengate [serve|provision|roles|delete|hash|version] [-config path] [args]")
}

// loadConfig parses the -config flag and returns the config plus the
// remaining positional arguments.
func loadConfig(name string, args []string) (*app.Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "config file (default: search cmd/tokengate/config.yml, ./config.yml)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	var opts []config.LoaderOption
	if *path != "" {
		opts = append(opts, config.WithConfigFile(*path))
	}
	cfg := &app.Config{}
	if err := config.LoadConfig(app.ServiceName, cfg, opts...); err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

func serve(args []string) error {
	cfg, _, err := loadConfig("serve", args)
	if err != nil {
		return err
	}
	a, svc, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rotateOnHangup(ctx, args, svc, a.Logger)
	return a.Run(ctx)
}

// rotateOnHangup reloads the config on SIGHUP and switches to its signing
// key. A bad config is logged and the current key stays active.
func rotateOnHangup(ctx context.Context, args []string, svc *app.Service, log *logger.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
		}
		cfg, _, err := loadConfig("serve", args)
		if err != nil {
			log.Error("Config reload failed", map[string]interface{}{logger.FieldError: err.Error()})
			continue
		}
		rotated, err := svc.RotateSigningKey(cfg.Auth.Token)
		if err != nil {
			log.Error("Signing key rotation failed", map[string]interface{}{logger.FieldError: err.Error()})
			continue
		}
		if rotated {
			log.Info("Signing key rotated", map[string]interface{}{logger.FieldKeyID: svc.Keyring.Active().ID})
		}
	}
}

func roles(args []string) error {
	cfg, rest, err := loadConfig("roles", args)
	if err != nil {
		return err
	}
	if len(rest) < 1 {
		return errors.New("usage: tokengate roles [-config path] <user> [role...]")
	}
	return app.SetRoles(context.Background(), cfg, rest[0], rest[1:])
}

func deleteUser(args []string) error {
	cfg, rest, err := loadConfig("delete", args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("usage: tokengate delete [-config path] <user>")
	}
	return app.DeleteUser(context.Background(), cfg, rest[0])
}

func provision(args []string) error {
	cfg, _, err := loadConfig("provision", args)
	if err != nil {
		return err
	}
	created, err := app.Provision(context.Background(), cfg)
	if err != nil {
		return err
	}
	fmt.Printf("created %d user(s)\n", created)
	return nil
}

// hash prints a hash suitable for credentials.users[].password_hash.
func hash() error {
	cfg := password.Config{}
	cfg.ApplyDefaults()
	hasher, err := password.NewHasher(cfg)
	if err != nil {
		return err
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return errors.New("no password on stdin")
	}
	h, err := hasher.Hash(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	fmt.Println(h)
	return nil
}
