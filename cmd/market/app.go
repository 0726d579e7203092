package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-salvage-market/account"
	"github.com/jrsteele09/go-salvage-market/favorites"
	"github.com/jrsteele09/go-salvage-market/internal/config"
	"github.com/jrsteele09/go-salvage-market/internal/logging"
	"github.com/jrsteele09/go-salvage-market/sessions"
	"github.com/jrsteele09/go-salvage-market/storage"
	"github.com/jrsteele09/go-salvage-market/transport"
	"github.com/jrsteele09/go-salvage-market/vehicles"
)

const commandTimeout = 30 * time.Second

// app holds the stores one CLI invocation works on
type app struct {
	ctx     context.Context
	out     io.Writer
	opts    *Options
	cfg     config.Config
	apiURL  string
	kv      storage.KV
	session *sessions.Store
}

// Run parses args and executes the selected command, writing results to out
func Run(args []string, out io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	opts := &Options{}
	a := &app{ctx: ctx, out: out, opts: opts, cfg: config.New()}
	opts.bind(a)

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "market"
	_, err := parser.ParseArgs(args)
	if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
		_, _ = io.WriteString(out, flagsErr.Message+"\n")
		return nil
	}
	return err
}

// open wires storage, the session and restores any stored session. Safe to call repeatedly.
func (a *app) open() error {
	if a.session != nil {
		return nil
	}
	if a.opts.Verbose {
		logging.Setup("debug", "DEV", os.Stderr)
	}

	a.apiURL = firstNonEmpty(a.opts.APIURL, a.cfg.GetAPIURL())
	a.kv = storage.NewAFS(firstNonEmpty(a.opts.DataURL, a.cfg.GetDataURL()))
	a.session = sessions.New(account.New(a.apiURL), a.kv,
		sessions.WithRenewalInterval(a.cfg.GetSessionRenewalInterval()))

	if err := a.session.Restore(a.ctx); err != nil {
		log.Debug().Err(err).Msg("stored session could not be restored")
	}
	return nil
}

// favorites opens the favorites store. Signed in users sync with the server.
func (a *app) favorites() *favorites.Store {
	var options []favorites.StoreOption
	if a.session.IsAuthenticated() {
		remote := favorites.NewHTTPRemote(a.apiURL, transport.Client(a.session))
		options = append(options, favorites.WithRemote(remote))
	}
	return favorites.New(a.ctx, a.kv, options...)
}

func (a *app) vehicles() *vehicles.Client {
	return vehicles.NewClient(a.apiURL, nil)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
