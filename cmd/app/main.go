package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akyairhashvil/ascetic/internal/config"
	"github.com/akyairhashvil/ascetic/internal/database"
	"github.com/akyairhashvil/ascetic/internal/export"
	"github.com/akyairhashvil/ascetic/internal/focusperiod"
	"github.com/akyairhashvil/ascetic/internal/models"
	"github.com/akyairhashvil/ascetic/internal/notify"
	"github.com/akyairhashvil/ascetic/internal/remote"
	"github.com/akyairhashvil/ascetic/internal/store"
	"github.com/akyairhashvil/ascetic/internal/syncer"
	"github.com/akyairhashvil/ascetic/internal/tui"
	"github.com/akyairhashvil/ascetic/internal/util"
	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

type app struct {
	db     *database.Database
	store  *store.Store
	period *focusperiod.Period
}

func openApp(ctx context.Context, dbPath string) (*app, error) {
	if dbPath == "" {
		root := util.DataDir(config.AppName)
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dbPath = filepath.Join(root, config.DBFileName)
	}
	db, err := database.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	st := store.New(db, notify.Silent{})
	tasks, err := db.LoadTasks(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	st.Load(tasks)

	period := focusperiod.New(config.FocusPeriod)
	if v, ok := db.GetSetting(ctx, config.SettingFocusStartTime); ok {
		period.SetStartMillis(&v)
	}
	return &app{db: db, store: st, period: period}, nil
}

func buildSyncer(a *app, cfgPath string) (*syncer.Syncer, error) {
	if cfgPath == "" {
		cfgPath = filepath.Join(util.ConfigDir(config.AppName), "sync.yaml")
	}
	cfg, err := config.LoadSyncConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.MasterKey == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		key, err := promptSecret("Master key for the cloud bin: ")
		if err != nil {
			return nil, err
		}
		cfg.MasterKey = key
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sync config: %w", err)
	}
	return syncer.New(a.store, a.db, a.period, remote.NewClient(cfg), notify.Silent{}), nil
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	a, err := openApp(ctx, cmd.String("db"))
	if err != nil {
		return err
	}
	defer a.db.Close()

	// The board works offline; a broken sync config only disables the
	// cloud modal actions.
	sy, syncErr := buildSyncer(a, cmd.String("config"))
	if sy == nil {
		sy = syncer.New(a.store, a.db, a.period, unconfiguredPort{err: syncErr}, notify.Silent{})
	}

	model := tui.NewDashboardModel(a.store, sy, a.period, a.db)
	a.store.SetNotifier(model.Notifier())
	sy.SetNotifier(model.Notifier())

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runPush(ctx context.Context, cmd *cli.Command) error {
	a, err := openApp(ctx, cmd.String("db"))
	if err != nil {
		return err
	}
	defer a.db.Close()
	sy, err := buildSyncer(a, cmd.String("config"))
	if err != nil {
		return err
	}
	sy.SetNotifier(notify.Logger{})
	if err := sy.Push(ctx); err != nil {
		return err
	}
	fmt.Println("Pushed snapshot to the cloud bin.")
	return nil
}

func runPull(ctx context.Context, cmd *cli.Command) error {
	a, err := openApp(ctx, cmd.String("db"))
	if err != nil {
		return err
	}
	defer a.db.Close()
	sy, err := buildSyncer(a, cmd.String("config"))
	if err != nil {
		return err
	}
	sy.SetNotifier(notify.Logger{})
	if err := sy.Pull(ctx); err != nil {
		return err
	}
	fmt.Println("Replaced local state with the cloud snapshot.")
	return nil
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	a, err := openApp(ctx, cmd.String("db"))
	if err != nil {
		return err
	}
	defer a.db.Close()

	// Export does not need the remote port; assemble the snapshot
	// directly.
	sy := syncer.New(a.store, a.db, a.period, nil, notify.Silent{})
	snap := sy.Snapshot(ctx)

	out := cmd.String("out")
	if out == "" {
		out = fmt.Sprintf("ascetic_%s.json", time.Now().Format("2006-01-02"))
	}
	opts := export.Options{EncryptOutput: cmd.Bool("encrypt")}
	if opts.EncryptOutput {
		opts.Passphrase = strings.TrimSpace(cmd.String("passphrase"))
		if opts.Passphrase == "" {
			pass, err := promptSecret("Export passphrase: ")
			if err != nil {
				return err
			}
			opts.Passphrase = pass
		}
	}
	if err := export.WriteSnapshot(out, snap, opts); err != nil {
		return err
	}
	fmt.Printf("Snapshot written: %s\n", out)
	return nil
}

func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return strings.TrimSpace(string(pass)), err
}

// unconfiguredPort reports the config error on any sync attempt.
type unconfiguredPort struct{ err error }

func (p unconfiguredPort) Put(context.Context, models.Snapshot) error {
	return fmt.Errorf("sync unavailable: %w", p.err)
}

func (p unconfiguredPort) Get(context.Context) (models.Snapshot, error) {
	return models.Snapshot{}, fmt.Errorf("sync unavailable: %w", p.err)
}

func main() {
	sharedFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Usage:   "Path to the local database file",
			Sources: cli.EnvVars("ASCETIC_DB"),
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the sync config file",
			Sources: cli.EnvVars("ASCETIC_CONFIG"),
		},
	}

	cmd := &cli.Command{
		Name:   "ascetic",
		Usage:  "Discipline-first personal planner: capped buckets, a daily focus lock, and cloud snapshots",
		Action: runTUI,
		Flags:  sharedFlags,
		Commands: []*cli.Command{
			{
				Name:   "push",
				Usage:  "Upload the whole local state to the cloud bin",
				Action: runPush,
				Flags:  sharedFlags,
			},
			{
				Name:   "pull",
				Usage:  "Replace the whole local state with the cloud snapshot",
				Action: runPull,
				Flags:  sharedFlags,
			},
			{
				Name:   "export",
				Usage:  "Write the state snapshot to a file",
				Action: runExport,
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path"},
					&cli.BoolFlag{Name: "encrypt", Usage: "Encrypt the snapshot with a passphrase"},
					&cli.StringFlag{Name: "passphrase", Usage: "Passphrase for --encrypt", Sources: cli.EnvVars("ASCETIC_EXPORT_PASSPHRASE")},
				}, sharedFlags...),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Alas, there's been an error: %v\n", err)
		os.Exit(1)
	}
}
