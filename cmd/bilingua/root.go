package main

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"

	"github.com/bilingua-nb/bilingua-client/internal/api"
	"github.com/bilingua-nb/bilingua-client/internal/cache"
	"github.com/bilingua-nb/bilingua-client/internal/config"
	"github.com/bilingua-nb/bilingua-client/internal/devtools"
	"github.com/bilingua-nb/bilingua-client/internal/diag"
	"github.com/bilingua-nb/bilingua-client/internal/inbox"
	"github.com/bilingua-nb/bilingua-client/internal/session"
	"github.com/bilingua-nb/bilingua-client/internal/storage"
	"github.com/bilingua-nb/bilingua-client/internal/ui"
	"github.com/bilingua-nb/bilingua-client/internal/ws"
)

var rootCmd = &cobra.Command{
	Use:   "bilingua",
	Short: "Terminal client for the Bilingua NB language exchange",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("server-url", "", "platform base URL")
	flags.String("cache-addr", "", "valkey address for the shared read cache (empty uses the in-process cache)")
	flags.String("profile-dir", "", "directory for the client database and key material")
	flags.Bool("dev", false, "enable dev mode: the dev-tools page and the local dev-tools server")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")

	viper.BindPFlag("server_url", flags.Lookup("server-url"))
	viper.BindPFlag("cache_addr", flags.Lookup("cache-addr"))
	viper.BindPFlag("profile_dir", flags.Lookup("profile-dir"))
	viper.BindPFlag("dev_mode", flags.Lookup("dev"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
}

func run() error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	os.MkdirAll(cfg.ProfileDir, 0700)
	logFile, err := os.OpenFile(
		filepath.Join(cfg.ProfileDir, "client.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err == nil {
		// Stdout belongs to the TUI; logs go to the profile directory.
		jww.SetLogOutput(logFile)
		jww.SetStdoutOutput(logFile)
		defer logFile.Close()
	}
	jww.SetLogThreshold(config.Threshold(cfg.LogLevel))
	jww.SetStdoutThreshold(config.Threshold(cfg.LogLevel))

	db, err := storage.Open(cfg.ProfileDir)
	if err != nil {
		return errors.Wrap(err, "open client store")
	}
	defer db.Close()

	apiClient, err := api.NewClient(cfg.ServerURL)
	if err != nil {
		return errors.Wrap(err, "api client")
	}
	restoreSession(db, apiClient)

	var kv cache.KV
	if cfg.CacheAddr != "" {
		valkey, err := cache.NewValkey(cfg.CacheAddr)
		if err != nil {
			jww.WARN.Printf("valkey unavailable at %s, using in-process cache: %v", cfg.CacheAddr, err)
			kv = cache.NewMemory()
		} else {
			kv = valkey
		}
	} else {
		kv = cache.NewMemory()
	}
	defer kv.Close()
	store := cache.NewStore(kv)

	conn := ws.NewConn(apiClient.WebSocketURL())
	defer conn.Close()

	recorder := diag.NewRecorder(db)

	app := ui.NewApp(ui.Deps{
		API:      apiClient,
		Conn:     conn,
		Store:    store,
		DB:       db,
		Recorder: recorder,
		DevMode:  cfg.DevMode,
	})
	defer app.Close()

	box := inbox.New(apiClient, conn, store, app.Notify)
	app.SetInbox(box)

	if cfg.DevMode {
		srv := devtools.New(cfg.DevToolsAddr, store, db)
		srv.Start()
		defer srv.Stop()
	}

	program := tea.NewProgram(app, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// restoreSession loads a saved token and attaches it when still valid.
func restoreSession(db *storage.ClientDB, apiClient *api.Client) {
	token, err := db.LoadSession()
	if err != nil {
		if !errors.Is(err, storage.ErrNoSession) {
			jww.WARN.Printf("load saved session: %v", err)
		}
		return
	}
	sess, err := session.FromToken(token)
	if err != nil || sess.Expired() {
		jww.INFO.Print("saved session invalid or expired, discarding")
		db.ClearSession()
		return
	}
	apiClient.SetToken(token)
	jww.INFO.Printf("restored session for %s", sess.Username)
}
