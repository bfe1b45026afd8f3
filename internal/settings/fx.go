package settings

import (
	"github.com/smallbiznis/robobooks/internal/settings/repository"
	"github.com/smallbiznis/robobooks/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
