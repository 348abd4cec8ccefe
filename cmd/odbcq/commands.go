package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/arloliu/odbc"
	"github.com/arloliu/odbc/types"
)

// DataSourcesCmd lists the data sources the backend knows.
type DataSourcesCmd struct{}

func (c *DataSourcesCmd) Run(g *Globals) error {
	env, _, err := g.environment()
	if err != nil {
		return err
	}
	defer env.Close()

	names, err := env.DataSources()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(g.out, name)
	}

	return nil
}

// TablesCmd lists the tables of the connected data source.
type TablesCmd struct{}

func (c *TablesCmd) Run(g *Globals) error {
	conn, err := g.connect()
	if err != nil {
		return err
	}
	defer conn.Environment().Close()

	tables, err := conn.Tables()
	if err != nil {
		return err
	}
	for _, name := range tables {
		fmt.Fprintln(g.out, name)
	}

	return nil
}

// QueryCmd runs a statement with positional text arguments.
type QueryCmd struct {
	SQL    string   `arg:"" help:"SQL statement; use ? for parameters"`
	Args   []string `arg:"" optional:"" help:"Parameter values, bound as text"`
	Null   string   `help:"Argument value that binds SQL NULL" default:"NULL"`
	Commit bool     `help:"Run with autocommit off and commit at the end"`
}

func (c *QueryCmd) Run(g *Globals) error {
	conn, err := g.connect()
	if err != nil {
		return err
	}
	defer conn.Environment().Close()

	if c.Commit {
		if err := conn.SetAutoCommit(false); err != nil {
			return err
		}
	}

	st, err := conn.Prepare(c.SQL)
	if err != nil {
		return err
	}

	for i, arg := range c.Args {
		v := odbc.Text(arg)
		if arg == c.Null {
			v = odbc.Null()
		}
		if err := st.BindParameter(i+1, v); err != nil {
			return err
		}
	}

	if err := st.Execute(); err != nil {
		return err
	}

	if st.State() == odbc.StateHasResults {
		if err := printRows(g, st); err != nil {
			return err
		}
	} else {
		n, err := st.RowCount()
		if err != nil {
			return err
		}
		fmt.Fprintf(g.out, "%d row(s) affected\n", max(n, 0))
	}

	if c.Commit {
		return conn.Commit()
	}

	return nil
}

func printRows(g *Globals, st *odbc.Statement) error {
	cols, err := st.DescribeColumns()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Name
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	cells := make([]string, len(cols))
	for {
		res, err := st.Fetch()
		if err != nil {
			return err
		}
		if res != types.FetchSuccess {
			break
		}

		for i := range cols {
			v, err := st.GetValue(i + 1)
			if err != nil {
				return err
			}
			cells[i] = render(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	return w.Flush()
}

func render(v odbc.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	if b, ok := v.Any().([]byte); ok {
		return fmt.Sprintf("0x%X", b)
	}

	return fmt.Sprint(v.Any())
}
