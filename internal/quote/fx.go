package quote

import (
	"github.com/smallbiznis/robobooks/internal/quote/repository"
	"github.com/smallbiznis/robobooks/internal/quote/service"
	"github.com/smallbiznis/robobooks/internal/savelock"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(lock *savelock.QuoteLock) service.SaveLocker { return lock }),
	fx.Provide(service.New),
)
