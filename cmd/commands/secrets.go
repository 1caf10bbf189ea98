package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/vesperhq/vesper/internal/config"
	"github.com/vesperhq/vesper/internal/secrets"
)

// NewSecretsCommand returns the secrets subcommand. All operations work on
// the local encrypted store; the gateway does not need to be running.
func NewSecretsCommand() *cli.Command {
	return &cli.Command{
		Name:  "secrets",
		Usage: "Manage encrypted secrets",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Store a secret (value read from terminal)",
				ArgsUsage: "<name>",
				Action:    runSecretsSet,
			},
			{
				Name:      "get",
				Usage:     "Print a secret value",
				ArgsUsage: "<name>",
				Action:    runSecretsGet,
			},
			{
				Name:   "list",
				Usage:  "List stored secret names",
				Action: runSecretsList,
			},
			{
				Name:      "delete",
				Usage:     "Remove a secret",
				ArgsUsage: "<name>",
				Action:    runSecretsDelete,
			},
		},
	}
}

func openSecretStore() (*secrets.Store, error) {
	if err := secrets.GenerateIdentity(secrets.KeyPath()); err != nil {
		return nil, fmt.Errorf("generate age identity: %w", err)
	}
	identity, err := secrets.LoadIdentity(secrets.KeyPath())
	if err != nil {
		return nil, fmt.Errorf("load age identity: %w", err)
	}
	return secrets.OpenStore(config.SecretsPath(), identity)
}

func runSecretsSet(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: vesper secrets set <name>")
	}

	store, err := openSecretStore()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Value for %s: ", name)
	value, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read value: %w", err)
	}
	if len(value) == 0 {
		return fmt.Errorf("empty value")
	}

	if err := store.Set(name, string(value)); err != nil {
		return fmt.Errorf("store secret: %w", err)
	}
	fmt.Printf("Secret %s stored.\n", name)
	return nil
}

func runSecretsGet(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: vesper secrets get <name>")
	}
	store, err := openSecretStore()
	if err != nil {
		return err
	}
	value, err := store.Get(name)
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func runSecretsList(_ context.Context, _ *cli.Command) error {
	store, err := openSecretStore()
	if err != nil {
		return err
	}
	names := store.Names()
	if len(names) == 0 {
		fmt.Println("No secrets stored.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runSecretsDelete(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: vesper secrets delete <name>")
	}
	store, err := openSecretStore()
	if err != nil {
		return err
	}
	if err := store.Delete(name); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	fmt.Printf("Secret %s deleted.\n", name)
	return nil
}
