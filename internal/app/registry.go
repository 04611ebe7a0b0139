package app

import (
	"leavedesk/internal/auth"
	"leavedesk/internal/balance"
	"leavedesk/internal/leave"
	"leavedesk/internal/leavetype"
	"leavedesk/internal/notification"
	"leavedesk/internal/user"
)

// registerModules builds each module bottom-up (repo, service, handler)
// and mounts its routes. Cross-module wiring happens here and nowhere
// else.
func registerModules(a *App) {
	v1 := a.Router.Group("/api/v1")

	userRepo := user.NewRepository(a.DB)
	typeRepo := leavetype.NewRepository(a.DB)
	balanceRepo := balance.NewRepository(a.DB)
	leaveRepo := leave.NewRepository(a.DB)
	notifRepo := notification.NewRepository(a.DB)

	authService := auth.NewService(a.DB, userRepo, a.Mail)
	userService := user.NewService(a.DB, userRepo, a.Mail)
	typeService := leavetype.NewService(a.DB, typeRepo, a.Redis)
	balanceService := balance.NewService(a.DB, balanceRepo, userRepo, typeRepo)
	leaveService := leave.NewService(a.DB, leaveRepo, typeRepo, balanceRepo, notifRepo, userRepo, a.Mail)
	notifService := notification.NewService(notifRepo)

	auth.RegisterRoutes(v1, auth.NewHandler(authService))
	user.RegisterRoutes(v1, user.NewHandler(userService))
	leavetype.RegisterRoutes(v1, leavetype.NewHandler(typeService))
	balance.RegisterRoutes(v1, balance.NewHandler(balanceService))
	leave.RegisterRoutes(v1, leave.NewHandler(leaveService), a.Redis)
	notification.RegisterRoutes(v1, notification.NewHandler(notifService))
}
