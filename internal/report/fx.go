package report

import (
	"github.com/smallbiznis/tractionlens/internal/report/render"
	"github.com/smallbiznis/tractionlens/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(render.NewRenderer),
	fx.Provide(service.New),
)
