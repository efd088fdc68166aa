package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formset/internal/config"
	"github.com/goliatone/go-formset/internal/logging"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/renderers/tui"
	"github.com/goliatone/go-formset/pkg/renderers/vanilla"
)

// app carries the state every command shares once the config is loaded.
type app struct {
	configPath string
	locale     string
	logLevel   string

	cfg        *config.Config
	log        *logrus.Logger
	translator notify.Translator

	// driver replaces the survey prompts of the interactive command.
	driver tui.PromptDriver
}

func newRootCmd() *cobra.Command {
	return (&app{}).command()
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:   "formset",
		Short: "Render, extend and check image upload subforms",
		Long: `formset manages the image subforms of post and comment pages.

It renders groups with their management counter, appends rows the way the
add button does, checks image selections against the upload rules and serves
the row and preview endpoints used by the browser runtime.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initialize,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultPath, "Path to the formset.yaml settings")
	flags.StringVar(&a.locale, "locale", "", "Message locale (defaults to the configured locale)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	root.AddCommand(
		a.groupsCommand(),
		a.renderCommand(),
		a.addCommand(),
		a.checkCommand(),
		a.interactiveCommand(),
		a.serveCommand(),
	)
	return root
}

func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if level := strings.TrimSpace(a.logLevel); level != "" {
		if err := logging.ValidateLevel(level); err != nil {
			return err
		}
		cfg.Log.Level = level
	}
	if locale := strings.TrimSpace(a.locale); locale != "" {
		cfg.Locale = locale
	}

	translator, err := cfg.Translator()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.translator = translator
	a.log = logging.New(cfg.Log, cmd.ErrOrStderr())
	a.log.WithFields(logrus.Fields{
		"config": a.configPath,
		"locale": cfg.Locale,
		"groups": cfg.GroupNames(),
	}).Debug("configuration loaded")
	return nil
}

func (a *app) groupOptions() []formset.Option {
	return []formset.Option{
		formset.WithTranslator(a.translator),
		formset.WithLocale(a.cfg.Locale),
		formset.WithLogger(logging.Component(a.log, "formset")),
	}
}

func (a *app) renderOptions() render.RenderOptions {
	return render.RenderOptions{Locale: a.cfg.Locale, Translator: a.translator}
}

// registry holds the renderers selectable with --renderer.
func (a *app) registry() (*render.Registry, error) {
	html, err := vanilla.New(vanilla.WithTranslator(a.translator))
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	if err := registry.SetDefault(html.Name()); err != nil {
		return nil, err
	}
	return registry, nil
}

func (a *app) build(name string, rows int) (*formset.Group, error) {
	cfg, err := a.cfg.Group(name)
	if err != nil {
		return nil, err
	}
	group, _, err := formset.Build(cfg, rows, a.groupOptions()...)
	if err != nil {
		return nil, fmt.Errorf("build group %s: %w", name, err)
	}
	return group, nil
}
