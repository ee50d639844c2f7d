// cmd/sceplay/main.go
//
// This is the entry point for the sceplay player.
//
// Flow:
// 1. Initialize .sce in the project directory and load its config
// 2. Open the log file and the scheduling trace
// 3. Load the script and its resources (bundled demo when none is configured)
// 4. Play it in the terminal UI, or headless with -headless

package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/sce/internal/config"
	"github.com/kingrea/sce/internal/logbook"
	"github.com/kingrea/sce/internal/logging"
	"github.com/kingrea/sce/internal/playback"
	"github.com/kingrea/sce/internal/resource"
	"github.com/kingrea/sce/internal/script"
	"github.com/kingrea/sce/internal/tui"
)

//go:embed demo
var demoFiles embed.FS

const (
	demoScript  = "q01.yaml"
	stdinScript = "-"
)

func main() {
	projectDir := flag.String("project", "", "path to the project directory (defaults to cwd)")
	scriptPath := flag.String("script", "", "script to play (file path, a name under .sce/scripts, or - for stdin)")
	save := flag.Bool("save", false, "remember -script in .sce/config.yaml for later runs")
	headless := flag.Bool("headless", false, "play without the terminal UI and print dialogs")
	ticks := flag.Int("ticks", -1, "stop headless playback after this many ticks (0 = no limit)")
	autoConfirm := flag.Bool("auto-confirm", false, "press next on every dialog (headless)")
	sets := keyValueFlag{}
	flag.Var(&sets, "set", "seed a script variable (name=value, repeatable)")
	flag.Parse()

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitProjectDir(absoluteProject); err != nil {
		die("init .sce: %v", err)
	}
	cfg, err := config.Load(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}

	logger, err := logging.New(absoluteProject)
	if err != nil {
		die("open log: %v", err)
	}
	defer logger.Close()
	logger.SetLevel(cfg.LogLevel())

	book, err := logbook.New(filepath.Join(cfg.LogsDir(), logbook.FileName), 0)
	if err != nil {
		die("open trace: %v", err)
	}
	defer book.Close()

	def, res, err := loadScene(cfg, *scriptPath, os.Stdin)
	if err != nil {
		die("%v", err)
	}
	if *save {
		if err := rememberScript(cfg, *scriptPath); err != nil {
			die("-save: %v", err)
		}
		logger.WithField("script", cfg.Project.Script).Info("sceplay: script saved to config")
	}
	seed, err := buildEnv(sets)
	if err != nil {
		die("--set: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := playback.Preload(ctx, def, res); err != nil {
		logger.WithError(err).Warn("sceplay: preload clips")
	}
	sess, err := playback.NewSession(def, res,
		playback.WithLogger(logger),
		playback.WithTrace(book.Record),
		playback.WithEnv(seed),
	)
	if err != nil {
		die("%v", err)
	}
	logger.WithField("script", def.ID).Infof("sceplay: playing %s (%d steps)", def.Title(), len(def.Commands))

	if *headless {
		maxTicks := cfg.Project.Playback.MaxTicks
		if *ticks >= 0 {
			maxTicks = *ticks
		}
		runHeadless(ctx, sess, playback.Options{
			Session:     sess,
			FrameRate:   cfg.Project.FrameRate,
			AutoConfirm: *autoConfirm || cfg.Project.Playback.AutoConfirm,
			MaxTicks:    maxTicks,
		})
		return
	}

	app, err := tui.NewApp(sess,
		tui.WithFrameRate(cfg.Project.FrameRate),
		tui.WithLogbook(book),
		tui.WithLogger(logger),
	)
	if err != nil {
		die("%v", err)
	}
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		die("run TUI: %v", err)
	}
}

func runHeadless(ctx context.Context, sess *playback.Session, opts playback.Options) {
	report, err := playback.Run(ctx, opts)
	for _, dialog := range report.Dialogs {
		if dialog.Speaker != "" {
			fmt.Printf("%s: %s\n", dialog.Speaker, dialog.Text)
			continue
		}
		fmt.Println(dialog.Text)
	}
	fmt.Printf("%s: %d ticks, %s (step %d/%d)\n",
		sess.Script.Title(), report.Ticks, report.Snapshot.Status, report.Snapshot.Cursor, report.Snapshot.Len)
	switch {
	case errors.Is(err, playback.ErrAwaitingInput):
		die("stopped at a dialog; rerun with -auto-confirm or set playback.auto_confirm")
	case err != nil:
		die("playback: %v", err)
	}
}

// loadScene resolves the script and the asset root. An explicit script path
// wins over the configured one; with neither, the bundled demo plays. Scripts
// are checked against the built-in command kinds as they load.
func loadScene(cfg *config.Config, scriptFlag string, stdin io.Reader) (script.Definition, resource.Accessor, error) {
	demo, err := fs.Sub(demoFiles, "demo")
	if err != nil {
		return script.Definition{}, nil, fmt.Errorf("open bundled demo: %w", err)
	}

	var assets fs.FS = demo
	if cfg.Project.Assets != "" {
		assets = os.DirFS(cfg.Project.Assets)
	}
	res, err := resource.NewManager(assets)
	if err != nil {
		return script.Definition{}, nil, err
	}
	reg, err := playback.NewRegistry(res, nil)
	if err != nil {
		return script.Definition{}, nil, err
	}
	loader := script.Loader{Registry: reg, Dir: cfg.ScriptsDir()}

	path := strings.TrimSpace(scriptFlag)
	if path == "" {
		path = cfg.Project.Script
	}
	var def script.Definition
	switch {
	case path == "":
		def, err = loader.FS(demo, demoScript)
	case path == stdinScript:
		def, err = loader.Read(stdin, "stdin")
	case fileExists(path):
		def, err = loader.File(path)
	default:
		def, err = loader.Named(path)
	}
	if err != nil {
		return script.Definition{}, nil, err
	}
	return def, res, nil
}

// rememberScript stores the -script value as the project's default script.
// Names under .sce/scripts and relative files are stored as absolute paths.
func rememberScript(cfg *config.Config, scriptFlag string) error {
	path := strings.TrimSpace(scriptFlag)
	switch {
	case path == "":
		return fmt.Errorf("no -script to save")
	case path == stdinScript:
		return fmt.Errorf("a script read from stdin cannot be saved")
	case fileExists(path):
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		path = abs
	default:
		path = filepath.Join(cfg.ScriptsDir(), path)
	}
	return cfg.SetScript(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
