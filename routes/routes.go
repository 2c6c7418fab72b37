package routes

import (
	"github.com/julienschmidt/httprouter"

	"roomsched/auditlog"
	"roomsched/auth"
	"roomsched/middleware"
	"roomsched/ratelim"
	"roomsched/schedule"
)

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(h.Register))
	router.POST("/api/auth/login", rl.Limit(h.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(h.Logout))
}

func AddScheduleRoutes(router *httprouter.Router, h *schedule.Handler, feed *schedule.LiveFeed, rl *ratelim.RateLimiter) {
	router.GET("/api/rooms", h.GetRooms)
	router.GET("/api/rooms/:roomid", h.GetRoom)

	router.POST("/api/rooms/:roomid/days/:dayid/slots/:slotid/book", rl.Limit(h.BookSlot))
	router.POST("/api/rooms/:roomid/days/:dayid/slots/:slotid/cancel", rl.Limit(h.CancelBooking))
	router.PUT("/api/rooms/:roomid/days/:dayid/slots/:slotid", rl.Limit(h.EditBooking))
	router.POST("/api/rooms/:roomid/days/:dayid/slots/:slotid/checkin", middleware.RequireStaff(h.CheckInBooking))
	router.POST("/api/rooms/:roomid/regenerate", middleware.RequireStaff(h.RegenerateRoom))

	router.GET("/api/duplicates", h.FindDuplicates)
	router.POST("/api/validate-code", rl.Limit(h.ValidateCode))
	router.GET("/api/bookings/export", middleware.RequireStaff(h.ExportCSV))
	router.GET("/api/rooms/:roomid/pass/:dayid/:slotid", h.PrintPass)

	router.GET("/ws/rooms/:roomid", feed.HandleWS)
}

func AddLogRoutes(router *httprouter.Router, h *auditlog.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/log-action", rl.Limit(h.PostLogAction))
	router.GET("/api/logs", middleware.RequireStaff(h.GetLogs))
}
