package main

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/stucoapp/stuco"
	"github.com/stucoapp/stuco/config"
	"github.com/stucoapp/stuco/mailer"
	"github.com/stucoapp/stuco/provider/cognito"
)

//go:embed views
var viewsFS embed.FS

type App struct {
	config *config.App
	bunDB  *bun.DB
	repo   stuco.RepositoryManager
	creds  stuco.CredentialBackend
	mail   stuco.Mailer
	auther *stuco.RouteAuthenticator
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("stuco"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithCredentials(ctx, app); err != nil {
		panic(err)
	}

	if err := WithMailer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(cfg.ListenAddr)

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.config.DSN)
	if err != nil {
		return err
	}

	bunDB := bun.NewDB(db, sqlitedialect.New())

	if err := stuco.RunMigrations(ctx, bunDB); err != nil {
		return err
	}

	app.bunDB = bunDB
	app.repo = stuco.NewRepositoryManager(bunDB)

	return nil
}

// WithCredentials selects the credential backend once at boot. Every handler
// sees the same backend for the lifetime of the process.
func WithCredentials(ctx context.Context, app *App) error {
	if !app.config.UseCognito {
		app.creds = stuco.NewLocalHashBackend(app.repo).
			WithLogger(app.GetLogger("creds"))
		return nil
	}

	client, err := cognito.NewClient(ctx, cognito.Config{
		Region:          app.config.AWSRegion,
		UserPoolID:      app.config.CognitoUserPoolID,
		ClientID:        app.config.CognitoClientID,
		ClientSecret:    app.config.CognitoClientSecret,
		AccessKeyID:     app.config.AWSAccessKeyID,
		SecretAccessKey: app.config.AWSSecretAccessKey,
	})
	if err != nil {
		return err
	}

	app.creds = cognito.NewBackend(client).
		WithLogger(app.GetLogger("cognito"))

	return nil
}

func WithMailer(ctx context.Context, app *App) error {
	opts := []mailer.SenderOption{
		mailer.WithLogger(app.GetLogger("mailer")),
	}

	if app.config.SystemEmailSender != "" {
		opts = append(opts, mailer.WithSender(app.config.SystemEmailSender))
	}

	if app.config.EmailLogoPath != "" {
		opts = append(opts, mailer.WithLogo(app.config.EmailLogoPath))
	}

	sender, err := mailer.NewSESSender(ctx, mailer.SESConfig{
		Region:          app.config.AWSRegion,
		AccessKeyID:     app.config.AWSAccessKeyID,
		SecretAccessKey: app.config.AWSSecretAccessKey,
	}, opts...)
	if err != nil {
		return err
	}

	app.mail = sender

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return err
	}

	engine := django.NewFileSystem(http.FS(views), ".html")

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))
	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	auth := stuco.NewAuthenticator(app.repo, app.creds, app.config).
		WithLogger(app.GetLogger("auth"))

	auther, err := stuco.NewHTTPAuthenticator(auth, app.config)
	if err != nil {
		return err
	}
	app.auther = auther

	stuco.RegisterAccountRoutes(srv.Router(),
		stuco.WithControllerRepo(app.repo),
		stuco.WithControllerCredentials(app.creds),
		stuco.WithControllerMailer(app.mail),
		stuco.WithControllerAuther(auther),
		stuco.WithControllerLogger(app.GetLogger("accounts")),
		stuco.WithControllerCodeLength(app.config.ConfirmationCodeLength),
		stuco.WithControllerBaseURL(app.config.BaseURL),
	)

	protected := auther.ProtectedRoute(nil)

	srv.Router().Get("/", HomeShow(app))
	srv.Router().Get("/me", ProfileShow(app), protected)

	app.srv = srv

	return nil
}

func HomeShow(app *App) router.HandlerFunc {
	return func(ctx router.Context) error {
		return ctx.Render("home", router.ViewContext{
			"title": "StuCo App",
		})
	}
}

func ProfileShow(app *App) router.HandlerFunc {
	return func(ctx router.Context) error {
		session, err := stuco.GetRouterSession(ctx, app.config.GetContextKey())
		if err != nil {
			return ctx.Redirect("/login", http.StatusSeeOther)
		}

		user, err := app.repo.Users().GetByEmail(ctx.Context(), session.GetEmail())
		if err != nil {
			return ctx.Redirect("/login", http.StatusSeeOther)
		}

		return ctx.Render("profile", router.ViewContext{
			"title": "Profile",
			"user":  user,
		})
	}
}

func WaitExitSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(
		quit,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	return <-quit
}
