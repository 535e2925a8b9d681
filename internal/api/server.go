package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/limbo/pulse/internal/service"
)

type Server struct {
	mx              *chi.Mux
	routesOnce      sync.Once
	userService     service.UserServiceI
	workoutsService service.WorkoutsServiceI
	reportsService  service.ReportsServiceI
	jwtService      JWTServiceI
}

type ServicesList struct {
	UserService     service.UserServiceI
	WorkoutsService service.WorkoutsServiceI
	ReportsService  service.ReportsServiceI
	JwtService      JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	return &Server{
		mx:              chi.NewMux(),
		userService:     servicesOptions.UserService,
		workoutsService: servicesOptions.WorkoutsService,
		reportsService:  servicesOptions.ReportsService,
		jwtService:      servicesOptions.JwtService,
	}
}

func (s *Server) routes() {
	s.routesOnce.Do(s.registerRoutes)
}

func (s *Server) registerRoutes() {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", s.Register)
		r.Post("/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)
			r.Post("/workouts", s.CreateWorkout)
			r.Get("/workouts", s.GetWorkouts)
			r.Get("/workouts/{id}", s.GetWorkout)
			r.Put("/workouts/{id}", s.UpdateWorkout)
			r.Delete("/workouts/{id}", s.DeleteWorkout)
			r.Get("/activity/weekly", s.WeeklyActivity)
			r.Get("/activity/monthly", s.MonthlyActivity)
			r.Get("/activity/averages", s.ActivityAverages)
			r.Get("/activity/daily", s.DailyProgress)
			r.Put("/goals", s.UpdateGoals)
			r.Delete("/account", s.DeleteAccount)
		})
	})
}

func (s *Server) Run(address string) error {
	s.routes()
	return http.ListenAndServe(address, s.mx)
}

// Handler exposes the configured mux, used by httptest servers.
func (s *Server) Handler() http.Handler {
	s.routes()
	return s.mx
}
