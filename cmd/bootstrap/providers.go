package bootstrap

import (
	"kilnhall/internal/infra/provider"
	"kilnhall/internal/pkg/config"
	"kilnhall/internal/usecase/commands"

	"go.uber.org/fx"
)

var ProviderModule = fx.Module("provider",
	fx.Provide(
		fx.Annotate(
			NewSMSClient,
			fx.As(new(commands.SMSSender)),
		),
		fx.Annotate(
			NewPushClient,
			fx.As(new(commands.PushSender)),
		),
	),
)

func NewSMSClient(cfg config.Config) *provider.SMSClient {
	return provider.NewSMSClient(cfg.SMS)
}

func NewPushClient(cfg config.Config) *provider.PushClient {
	return provider.NewPushClient(cfg.Push)
}
