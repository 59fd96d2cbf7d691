package router

import (
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func SetupRouter(cartHandler *handler.CartHandler, orderHandler *handler.OrderHandler, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.IdentityMiddleware)
	r.Use(m.LoggerMiddleware(logger))

	// API 路由
	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{lineID}", cartHandler.UpdateItem)
			r.Delete("/items/{lineID}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.Clear)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.PlaceOrder)
			r.Post("/guest", orderHandler.PlaceGuestOrder)
			r.Get("/", orderHandler.GetAllOrders)
			r.Get("/my", orderHandler.GetMyOrders)
			r.Post("/sync-sheets", orderHandler.SyncSheets)
			r.Get("/unsynced-count", orderHandler.UnsyncedCount)
			r.Get("/{orderID}", orderHandler.GetOrder)
			r.Put("/{orderID}/status", orderHandler.UpdateStatus)
			r.Put("/{orderID}/notes", orderHandler.UpdateNotes)
		})
	})

	return r
}
