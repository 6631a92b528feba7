package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/rabicho/rabicho-server/config"
	"github.com/rabicho/rabicho-server/controllers"
	"github.com/rabicho/rabicho-server/payments"
	"github.com/rabicho/rabicho-server/providers/email"
	"github.com/rabicho/rabicho-server/providers/mercadopago"
	"github.com/rabicho/rabicho-server/repos"
	"github.com/rabicho/rabicho-server/server"
	"github.com/rabicho/rabicho-server/utils"
	"go.uber.org/fx"
)

func main() {

	opts := []fx.Option{}
	opts = append(opts, provideOptions()...)
	opts = append(opts, fx.Invoke(run))

	app := fx.New(opts...)

	app.Run()
}

func provideOptions() []fx.Option {
	return []fx.Option{
		fx.Provide(config.Parse),
		fx.Invoke(func(config *config.Config) {
			utils.ConfigureLogger(config.IsProduction)
		}),
		fx.Invoke(func(config *config.Config) {
			if config.JwtParsedPublicKey != nil {
				utils.InitSharedConstants(*config.JwtParsedPublicKey)
			}
		}),
		fx.Provide(config.ProvidePostgres),
		fx.Provide(config.ProvideRedis),
		fx.Provide(config.ProvideSmtp),
		fx.Provide(server.CreateServer),
		fx.Provide(utils.GetDefaultRouter),
		fx.Provide(repos.NewInviteRepo),
		fx.Provide(repos.NewPlanRepo),
		fx.Provide(mercadopago.NewClient),
		fx.Provide(email.NewMailer),
		fx.Provide(func(r *repos.InviteRepo) controllers.InviteStore { return r }),
		fx.Provide(func(r *repos.PlanRepo) controllers.PlanCatalog { return r }),
		fx.Provide(newReconciler),
		fx.Invoke(controllers.RegisterCheckoutController),
		fx.Invoke(controllers.RegisterWebhookController),
		fx.Invoke(controllers.RegisterPlansController),
		fx.Invoke(controllers.RegisterInvitesController),
		fx.Invoke(controllers.RegisterDebugController),
	}
}

func newReconciler(invites *repos.InviteRepo, plans *repos.PlanRepo, markers *redis.Client, mailer *email.Mailer) *payments.Reconciler {
	return payments.NewReconciler(invites, plans, markers, mailer)
}

func run(app *fiber.App, config *config.Config, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			errChan := make(chan error)

			go func() {
				errChan <- app.Listen(config.Port)
			}()

			select {
			case err := <-errChan:
				return err
			case <-time.After(100 * time.Millisecond):
				return nil
			}
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}
