package diagnostic

import (
	"github.com/smallbiznis/tractionlens/internal/diagnostic/repository"
	"github.com/smallbiznis/tractionlens/internal/diagnostic/service"
	"go.uber.org/fx"
)

var Module = fx.Module("diagnostic.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideLocker),
	fx.Provide(service.New),
)
