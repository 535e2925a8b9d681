// @title Fitness-tracker API
// @description API for fitness-tracker app "Pulse"
// @BasePath /api/v1
// @schemes http
package main

import (
	"log"

	"github.com/limbo/pulse/internal/api"
	"github.com/limbo/pulse/internal/repository"
	"github.com/limbo/pulse/internal/service"
	"github.com/limbo/pulse/pkg/cleanup"
	"github.com/limbo/pulse/pkg/config"
	jwtservice "github.com/limbo/pulse/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	loc := cfg.GetLocation("ACTIVITY_TIMEZONE")
	usersRepo := repository.NewUsersRepo(&dbCfg)
	workoutsRepo := repository.NewWorkoutsRepo(&dbCfg)
	activitiesRepo := repository.NewActivitiesRepo(&dbCfg)
	uow := repository.NewPgUnitOfWork(&dbCfg)

	serv := api.New(&api.ServicesList{
		UserService:     service.NewUserService(usersRepo),
		WorkoutsService: service.NewWorkoutsService(uow, workoutsRepo, loc),
		ReportsService:  service.NewReportsService(usersRepo, activitiesRepo, loc),
		JwtService:      jwtservice.New(cfg.GetString("JWT_SECRET")),
	})
	err := serv.Run(cfg.GetString("API_ADDRESS"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
	cleanup.CleanUp()
}
