// Command kvs-client is a single-shot text client: it issues exactly one
// request to a running kvs-server and prints the result.
package main

import (
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/devraj-nair/kvcask/internal/client"
	"github.com/devraj-nair/kvcask/internal/kverrors"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: kvs-client <get|set|rm> ... [--addr IP:PORT]")
		os.Exit(1)
	}
	cmd := os.Args[1]

	flags := flag.NewFlagSet("kvs-client "+cmd, flag.ContinueOnError)
	addr := flags.String("addr", "127.0.0.1:4000", "server address")
	if err := flags.Parse(os.Args[2:]); err != nil {
		os.Exit(1)
	}
	args := flags.Args()

	var err error
	switch cmd {
	case "get":
		err = runGet(args, *addr)
	case "set":
		err = runSet(args, *addr)
	case "rm":
		err = runRemove(args, *addr)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGet(args []string, addr string) error {
	if len(args) != 1 {
		return kverrors.New(kverrors.Unspecified, "usage: kvs-client get <key>")
	}
	value, ok, err := client.Get(args[0], addr)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Key not found")
		return nil
	}
	fmt.Println(value)
	return nil
}

func runSet(args []string, addr string) error {
	if len(args) != 2 {
		return kverrors.New(kverrors.Unspecified, "usage: kvs-client set <key> <value>")
	}
	return client.Set(args[0], args[1], addr)
}

func runRemove(args []string, addr string) error {
	if len(args) != 1 {
		return kverrors.New(kverrors.Unspecified, "usage: kvs-client rm <key>")
	}
	return client.Remove(args[0], addr)
}
