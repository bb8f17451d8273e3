package routes

import (
	"gundu/controllers/admin"
	"gundu/controllers/play"
	"gundu/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func Setup(app *fiber.App, ph *play.Handler, ah *admin.Handler) {
	gameroutes := app.Group("/api/game", middlewares.UserAuthMiddleware)
	gameroutes.Get("/round", ph.CurrentRound)
	gameroutes.Post("/bet", ph.PlaceBet)
	gameroutes.Delete("/bet/:number", ph.RemoveBet)
	gameroutes.Get("/bets", ph.MyBets)
	gameroutes.Get("/betting-history", ph.History)
	gameroutes.Get("/stats", ph.Stats)

	// event stream carries no per-user data, so no wallet lookup here
	app.Use("/api/game/stream", ph.StreamUpgrade)
	app.Get("/api/game/stream", websocket.New(ph.Stream))

	adminroutes := app.Group("/admin/game", middlewares.AdminAuth())
	adminroutes.Post("/set-dice", ah.SetDice)
	adminroutes.Get("/dice-mode", ah.DiceMode)
	adminroutes.Get("/settings", ah.GetSettings)
	adminroutes.Put("/settings", ah.UpdateSettings)
	adminroutes.Get("/rounds", ah.Rounds)
	adminroutes.Get("/rounds/:round_id/bets", ah.RoundBets)
}
