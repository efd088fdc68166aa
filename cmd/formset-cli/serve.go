package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"mime/multipart"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	formsetroot "github.com/goliatone/go-formset"
	"github.com/goliatone/go-formset/components/formsets"
	"github.com/goliatone/go-formset/internal/logging"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/notify"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/upload"
	"github.com/goliatone/go-formset/pkg/validation"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the row and preview endpoints with a demo page",
		Long: `Start an HTTP server exposing the add-row and preview endpoints, the
browser runtime under /assets and a demo page per configured group.

Examples:
  formset serve
  formset serve --addr :9000 --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Address = addr
			}
			router, err := a.router()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.listen(ctx, router)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.address)")
	return cmd
}

func (a *app) listen(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", srv.Addr).Info("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}

// ginMux mounts component handlers on a gin router for every method so the
// handlers answer non-POST requests themselves.
type ginMux struct {
	routes gin.IRoutes
}

func (m ginMux) Handle(pattern string, handler http.Handler) {
	m.routes.Any(pattern, gin.WrapH(handler))
}

func (a *app) router() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logging.Component(a.log, "http")))

	fns := []formsets.OptionFn{
		formsets.WithTranslator(a.translator),
		formsets.WithLocale(a.cfg.Locale),
		formsets.WithLogger(logging.Component(a.log, "formsets")),
		formsets.WithPreviews(a.cfg.PreviewGenerator()),
		formsets.WithMaxMemory(a.cfg.Limits.MaxMemory),
	}
	seen := map[string]bool{}
	for _, name := range a.cfg.GroupNames() {
		group := a.cfg.Groups[name]
		// Groups sharing a prefix differ only by kind, which the page sends.
		if seen[group.Prefix] {
			continue
		}
		seen[group.Prefix] = true
		fns = append(fns, formsets.WithGroup(group))
	}
	component := formsets.New(fns...)

	routes, err := component.RegisterRoutes(ginMux{routes: engine}, a.cfg.Server.BasePath)
	if err != nil {
		return nil, err
	}
	engine.StaticFS("/assets", http.FS(formsetroot.RuntimeAssetsFS()))

	demo := &demoPage{app: a, routes: routes}
	engine.GET("/", demo.show)
	engine.POST("/", demo.submit)
	return engine, nil
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}

type demoPage struct {
	app    *app
	routes formsets.Routes
}

func (d *demoPage) groupName(c *gin.Context) string {
	if name := strings.TrimSpace(c.Query("group")); name != "" {
		return name
	}
	return "post-create"
}

func (d *demoPage) show(c *gin.Context) {
	name := d.groupName(c)
	group, err := d.app.build(name, 0)
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	d.write(c, http.StatusOK, name, group, d.app.renderOptions(), "")
}

// submit decodes the posted group, re-checks every kept row against the
// upload rules and redisplays the page with errors or a saved banner.
func (d *demoPage) submit(c *gin.Context) {
	name := d.groupName(c)
	cfg, err := d.app.cfg.Group(name)
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}

	sub, err := formset.DecodeRequest(cfg, c.Request, d.app.cfg.Limits.MaxMemory)
	var limit *formset.LimitError
	switch {
	case errors.As(err, &limit):
		group, buildErr := d.app.build(name, 0)
		if buildErr != nil {
			_ = c.Error(buildErr)
			c.String(http.StatusInternalServerError, buildErr.Error())
			return
		}
		opts := d.app.renderOptions()
		opts.Notices = []notify.Notice{limit.Notice(d.app.translator, d.app.cfg.Locale)}
		d.write(c, http.StatusUnprocessableEntity, name, group, opts, "")
		return
	case err != nil:
		_ = c.Error(err)
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	opts := d.app.renderOptions()
	opts.Errors = d.checkRows(cfg, sub)
	comment := ""
	if cfg.Kind == formset.KindComment {
		comment = c.Request.PostForm.Get(validation.CommentField)
		v := validation.New(
			validation.WithTranslator(d.app.translator),
			validation.WithLocale(d.app.cfg.Locale),
			validation.WithCommentMaxFiles(cfg.MaxRows),
		)
		var files map[string][]*multipart.FileHeader
		if c.Request.MultipartForm != nil {
			files = c.Request.MultipartForm.File
		}
		mergeResult(&opts, v.Comment(c.Request.PostForm, files))
	}

	status := http.StatusOK
	if len(opts.Errors) > 0 || len(opts.Notices) > 0 {
		status = http.StatusUnprocessableEntity
	} else {
		saved := 0
		for _, row := range sub.Kept() {
			saved += len(row.Files)
		}
		opts.Notices = []notify.Notice{
			notify.Banner(notify.LevelSuccess, notify.KeySaved, notify.Message(d.app.translator, d.app.cfg.Locale, notify.KeySaved, saved)),
		}
	}

	group, err := d.app.build(name, sub.Total)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	d.write(c, status, name, group, opts, comment)
}

func (d *demoPage) checkRows(cfg formset.Config, sub *formset.Submission) map[string][]string {
	rules := d.app.cfg.Rules()
	errs := map[string][]string{}
	for _, row := range sub.Kept() {
		field := formset.FieldName(cfg.Prefix, row.Index, formset.FieldImage)
		files, err := upload.FromHeaders(row.Files)
		if err != nil {
			errs[field] = append(errs[field], err.Error())
			continue
		}
		if err := rules.Check(files); err != nil {
			var violation *upload.Violation
			if errors.As(err, &violation) {
				err = errors.New(violation.Notice(d.app.translator, d.app.cfg.Locale).Message)
			}
			errs[field] = append(errs[field], err.Error())
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func mergeResult(opts *render.RenderOptions, result validation.Result) {
	if result.Valid() {
		return
	}
	if opts.Errors == nil {
		opts.Errors = map[string][]string{}
	}
	mapping := result.Mapping()
	for name, messages := range mapping.Fields {
		opts.Errors[name] = append(opts.Errors[name], messages...)
	}
	if len(mapping.Form) > 0 {
		opts.Errors["__all__"] = append(opts.Errors["__all__"], mapping.Form...)
	}
	if result.Notice != nil {
		opts.Notices = append(opts.Notices, *result.Notice)
	}
}

func (d *demoPage) write(c *gin.Context, status int, name string, group *formset.Group, opts render.RenderOptions, comment string) {
	registry, err := d.app.registry()
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	renderer, err := registry.Resolve("")
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	if group.Config().Kind == formset.KindUpdate {
		opts.Method = http.MethodPut
	}
	body, err := renderer.Render(c.Request.Context(), group, opts)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	extra := ""
	if group.Config().Kind == formset.KindComment {
		extra = fmt.Sprintf("<textarea name=%q required>%s</textarea>\n", validation.CommentField, html.EscapeString(comment))
	}
	page := fmt.Sprintf(demoTemplate,
		html.EscapeString(d.app.cfg.Locale),
		html.EscapeString(name),
		html.EscapeString("/?group="+name),
		extra,
		body,
		html.EscapeString(d.routes.Rows),
		html.EscapeString(d.routes.Previews),
		html.EscapeString(notify.Message(d.app.translator, d.app.cfg.Locale, notify.KeyConfirmDeleteItem)),
		html.EscapeString(notify.Message(d.app.translator, d.app.cfg.Locale, notify.KeyConfirmDeletePost)),
	)
	c.Data(status, renderer.ContentType(), []byte(page))
}

const demoTemplate = `<!doctype html>
<html lang="%s">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<form method="post" action="%s" enctype="multipart/form-data">
%s%s
<button type="submit">Save</button>
</form>
<script src="/assets/formset-behaviors.js" defer data-rows-url="%s" data-previews-url="%s" data-confirm-delete="%s" data-confirm-delete-post="%s"></script>
</body>
</html>
`
