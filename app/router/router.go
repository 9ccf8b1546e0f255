package router

import (
	"net/http"

	"autoparts-storefront/app/controller"
)

// Controllers groups the handlers SetupRoutes mounts
type Controllers struct {
	QuickOrder *controller.QuickOrderController
	Cart       *controller.CartController
	Wishlist   *controller.WishlistController
	Quote      *controller.QuoteController
	Order      *controller.OrderController
	Image      *controller.ImageController
	Metrics    http.Handler
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every storefront route on mux
func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Session-scoped routes get the storefront_session cookie
	session := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, controller.WithSession(h))
	}

	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Prometheus metrics
	if controllers.Metrics != nil {
		mux.Handle("/metrics", controllers.Metrics)
	}

	// Quick order: GET /quick-order, POST /quick-order/reset and /quick-order/{tab}/...
	session("/quick-order", controllers.QuickOrder.Workspace)
	session("/quick-order/", controllers.QuickOrder.Route)

	// Cart routes
	session("/cart", controllers.Cart.Cart)
	session("/cart/items", controllers.Cart.AddItem)
	session("/cart/items/", controllers.Cart.Item)

	// Wishlist routes
	session("/wishlist", controllers.Wishlist.List)
	session("/wishlist/", controllers.Wishlist.Item)

	// Quotes routes
	session("/quotes", controllers.Quote.List)
	session("/quotes/view/", controllers.Quote.View)
	session("/quotes/convert-to-cart", controllers.Quote.ConvertToCart)
	session("/quotes/", controllers.Quote.Delete)

	// Order history passthrough
	session("/orders", controllers.Order.Orders)
	session("/orders/", controllers.Order.Orders)

	// Product thumbnails
	mux.HandleFunc("/images/thumb", controllers.Image.Thumbnail)
}
