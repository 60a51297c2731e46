package router

import (
	profileapp "github.com/liljarn/gandalf/internal/application"
	"github.com/liljarn/gandalf/internal/container"
	profilerepo "github.com/liljarn/gandalf/internal/domain/repository"
	pginfra "github.com/liljarn/gandalf/internal/infrastructure/postgres"
	handlers "github.com/liljarn/gandalf/internal/interface/http"
	"github.com/liljarn/gandalf/internal/router/modules"
)

type ProfileModuleDeps struct {
	Repo              profilerepo.ProfileRepository
	Service           *profileapp.Service
	ProfileHandler    *handlers.ProfileHandler
	ManagementHandler *handlers.ManagementHandler
}

func buildProfileDeps() ProfileModuleDeps {
	repo := pginfra.NewProfileRepository(container.GetPGPool())

	service := profileapp.NewService(
		repo,
		container.GetImages(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetRabbitPub(),
		container.GetES(),
		container.GetConfig().ESProfilesIndex,
	)

	profileHandler := handlers.NewProfileHandler(service, container.GetLogger())
	managementHandler := handlers.NewManagementHandler(service, container.GetConfig().ManagementToken, container.GetLogger())

	return ProfileModuleDeps{
		Repo:              repo,
		Service:           service,
		ProfileHandler:    profileHandler,
		ManagementHandler: managementHandler,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildProfileDeps()
	r.Add(modules.NewProfileModule(deps.ProfileHandler, container.GetJWT()))
	r.Add(modules.NewManagementModule(deps.ManagementHandler))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
