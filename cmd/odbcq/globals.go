package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/arloliu/odbc"
	"github.com/arloliu/odbc/api"
	odbczap "github.com/arloliu/odbc/contrib/logging/zap"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config    string            `short:"c" help:"YAML profile file" type:"path"`
	Profile   string            `short:"p" help:"Profile name within the profile file"`
	Backend   string            `help:"Call-level backend (${backends})" default:"sqlite"`
	DSN       string            `name:"dsn" help:"Data source name"`
	User      string            `short:"u" help:"Login name"`
	Password  string            `help:"Login password" env:"ODBCQ_PASSWORD"`
	Source    map[string]string `help:"sqlite backend data source as NAME=PATH (repeatable)"`
	ProbeSize int               `help:"Initial getData buffer size in bytes" default:"256"`
	Verbose   bool              `short:"v" help:"Log driver activity to stderr"`

	out io.Writer
}

// settings merges the selected profile under the explicit flags.
func (g *Globals) settings() (Profile, error) {
	p := Profile{
		Backend:   g.Backend,
		DSN:       g.DSN,
		User:      g.User,
		Password:  g.Password,
		ProbeSize: g.ProbeSize,
		Sources:   g.Source,
	}
	if g.Config == "" {
		return p, nil
	}

	f, err := LoadProfiles(g.Config)
	if err != nil {
		return Profile{}, err
	}
	fromFile, err := f.Get(g.Profile)
	if err != nil {
		return Profile{}, err
	}

	if fromFile.Backend != "" && g.Backend == "sqlite" {
		p.Backend = fromFile.Backend
	}
	if p.DSN == "" {
		p.DSN = fromFile.DSN
	}
	if p.User == "" {
		p.User = fromFile.User
	}
	if p.Password == "" {
		p.Password = fromFile.Password
	}
	if fromFile.ProbeSize > 0 && g.ProbeSize == odbc.DefaultProbeSize {
		p.ProbeSize = fromFile.ProbeSize
	}
	if len(p.Sources) == 0 {
		p.Sources = fromFile.Sources
	}

	return p, nil
}

// environment opens an odbc environment on the configured backend.
func (g *Globals) environment() (*odbc.Environment, Profile, error) {
	p, err := g.settings()
	if err != nil {
		return nil, Profile{}, err
	}

	open, ok := backends[p.Backend]
	if !ok {
		return nil, Profile{}, fmt.Errorf("unknown backend %q (have %s)", p.Backend, backendNames())
	}
	var a api.API
	if a, err = open(p); err != nil {
		return nil, Profile{}, err
	}

	opts := []odbc.Option{odbc.WithProbeSize(p.ProbeSize)}
	if g.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, Profile{}, err
		}
		opts = append(opts, odbc.WithLogger(odbczap.New(logger)))
	}

	env, err := odbc.NewEnvironment(a, opts...)
	if err != nil {
		return nil, Profile{}, err
	}

	return env, p, nil
}

// connect opens the environment and connects to the configured data source.
func (g *Globals) connect() (*odbc.Connection, error) {
	env, p, err := g.environment()
	if err != nil {
		return nil, err
	}
	if p.DSN == "" {
		_ = env.Close()
		return nil, fmt.Errorf("no data source given; use --dsn or a profile")
	}

	conn, err := env.Connect(p.DSN, p.User, p.Password)
	if err != nil {
		_ = env.Close()
		return nil, err
	}

	return conn, nil
}
