package main

import (
	"sort"
	"strings"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/driver/sqlite"
)

// backends maps a backend name to a constructor of its call-level API.
var backends = map[string]func(Profile) (api.API, error){
	"sqlite": openSQLite,
}

func openSQLite(p Profile) (api.API, error) {
	names := make([]string, 0, len(p.Sources))
	for name := range p.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]sqlite.Option, 0, len(names))
	for _, name := range names {
		opts = append(opts, sqlite.WithDataSource(name, p.Sources[name], "odbcq"))
	}

	return sqlite.New(opts...), nil
}

func backendNames() string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}
