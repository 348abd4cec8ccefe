// Command odbcq lists data sources and tables and runs SQL through the odbc
// core.
//
// Connection settings come from flags or from a named profile in a YAML
// file:
//
//	odbcq --source test=./test.db --dsn test query "SELECT * FROM t WHERE id = ?" 1
//	odbcq --config odbcq.yaml --profile warehouse tables
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

const version = "0.1.0"

// CLI defines the command-line interface for odbcq.
type CLI struct {
	Globals

	DataSources DataSourcesCmd `cmd:"" name:"datasources" help:"List data sources known to the driver"`
	Tables      TablesCmd      `cmd:"" help:"List the tables of a data source"`
	Query       QueryCmd       `cmd:"" help:"Run one SQL statement and print its results"`
	Version     VersionCmd     `cmd:"" help:"Print version information"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "odbcq:", err)
		os.Exit(1)
	}
}

// run parses args and executes the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("odbcq"),
		kong.Description("Query ODBC data sources."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"backends": backendNames()},
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cli.Globals.out = stdout

	return ctx.Run(&cli.Globals)
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	_, err := fmt.Fprintln(g.out, "odbcq", version)
	return err
}
