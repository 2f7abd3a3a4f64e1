package router

import (
	"net/http"

	"resto-collect/internal/handler"
	"resto-collect/internal/metrics"
	"resto-collect/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth         *handler.AuthHandler
	Menu         *handler.MenuHandler
	Cart         *handler.CartHandler
	Loyalty      *handler.LoyaltyHandler
	Chat         *handler.ChatHandler
	Announcement *handler.AnnouncementHandler
	Live         *handler.LiveHandler
}

// Options configures the cross-cutting parts of the router.
type Options struct {
	Verifier       middleware.TokenVerifier
	AuthLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	// MediaDir, when set, is served under /media.
	MediaDir string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: Recovery -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if opts.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(opts.MediaDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.AuthLimiter != nil {
				r.Use(opts.AuthLimiter.Middleware)
			}
			r.Post("/auth/register", h.Auth.Register)
			r.Post("/auth/login", h.Auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.Verifier, logger))

			r.Post("/auth/logout", h.Auth.Logout)

			r.Get("/menu", h.Menu.List)
			r.Patch("/menu/{id}/availability", h.Menu.SetAvailability)

			r.Get("/cart", h.Cart.View)
			r.Delete("/cart", h.Cart.Clear)
			r.Post("/cart/items", h.Cart.AddItem)
			r.Delete("/cart/items/{index}", h.Cart.RemoveItem)
			r.Post("/checkout", h.Cart.Checkout)

			r.Get("/loyalty", h.Loyalty.Balance)
			r.Post("/loyalty/scans", h.Loyalty.Scan)

			r.Get("/chat/partners", h.Chat.Partners)
			r.Get("/chat/messages", h.Chat.Messages)
			r.Post("/chat/messages", h.Chat.Send)
			r.Get("/chat/unread", h.Chat.Unread)

			r.Get("/announcements", h.Announcement.List)
			r.Post("/announcements", h.Announcement.Publish)
			r.Post("/announcements/{id}/like", h.Announcement.ToggleLike)

			r.Get("/live/menu", h.Live.Menu)
			r.Get("/live/chat", h.Live.Chat)
			r.Get("/live/announcements", h.Live.Announcements)
		})
	})

	return r
}
