package country

import (
	"github.com/geofin/countrypulse/internal/country/repository"
	"github.com/geofin/countrypulse/internal/country/service"
	"go.uber.org/fx"
)

var Module = fx.Module("country.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
