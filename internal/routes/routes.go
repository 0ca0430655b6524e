package routes

import (
	"net/http"

	"github.com/usedgoods/marketplace/internal/app"
	"github.com/usedgoods/marketplace/internal/handler"
	"github.com/usedgoods/marketplace/internal/middleware"
	"github.com/usedgoods/marketplace/internal/storage"
)

func SetupRoutes(app *app.App) http.Handler {
	uploads := handler.NewUploader(app.Storage, app.Cfg.MaxUploadFiles, app.Cfg.MaxUploadBytes)

	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.UserService, uploads)
	listing := handler.NewListingHandler(app.ListingService)
	image := handler.NewImageHandler(app.ImageService, uploads)
	paymentMethod := handler.NewPaymentMethodHandler(app.PaymentMethodService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Disk driver serves stored images itself; S3 URLs point at the bucket
	disk, ok := app.Storage.(*storage.DiskStorage)
	if ok {
		mux.Handle("GET /images/", http.StripPrefix("/images/", disk.Handler()))
	}

	// Accounts
	mux.HandleFunc("POST /users", auth.Register)
	mux.HandleFunc("POST /sessions", auth.Login)

	// Catalog
	mux.HandleFunc("GET /payment-methods", paymentMethod.List)
	mux.HandleFunc("GET /products", listing.List)
	mux.HandleFunc("GET /products/{id}", listing.Show)

	// ============================================================================
	// AUTHENTICATED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /users/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("GET /users/products", middleware.RequireAuth(listing.Mine))

	mux.HandleFunc("POST /products", middleware.RequireAuth(listing.Create))
	mux.HandleFunc("PUT /products/{id}", middleware.RequireAuth(listing.Update))
	mux.HandleFunc("PATCH /products/{id}", middleware.RequireAuth(listing.SetStatus))
	mux.HandleFunc("DELETE /products/{id}", middleware.RequireAuth(listing.Delete))

	mux.HandleFunc("POST /products/images", middleware.RequireAuth(image.Create))
	mux.HandleFunc("DELETE /products/images", middleware.RequireAuth(image.Delete))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)
}
