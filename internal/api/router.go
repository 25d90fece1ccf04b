package api

import (
	"database/sql"
	"net/http"

	"github.com/shivam-website/gold-shop/internal/photos"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, photoStore *photos.Store) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	accountsHandler := &AccountsHandler{DB: db, Photos: photoStore}
	itemsHandler := &ItemsHandler{DB: db, Photos: photoStore}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Accounts: management is admin only, detail is owner or admin.
	mux.Handle("GET /api/accounts", authMW(RequireAdmin(http.HandlerFunc(accountsHandler.List))))
	mux.Handle("POST /api/accounts", authMW(RequireAdmin(http.HandlerFunc(accountsHandler.Create))))
	mux.Handle("GET /api/accounts/{id}", authMW(http.HandlerFunc(accountsHandler.Get)))
	mux.Handle("PUT /api/accounts/{id}/active", authMW(RequireAdmin(http.HandlerFunc(accountsHandler.SetActive))))
	mux.Handle("PUT /api/accounts/{id}/password", authMW(RequireAdmin(http.HandlerFunc(accountsHandler.ResetPassword))))
	mux.Handle("DELETE /api/accounts/{id}", authMW(RequireAdmin(http.HandlerFunc(accountsHandler.Delete))))

	// Rates: shopkeepers set their own board rates.
	mux.Handle("PUT /api/account/rates", authMW(http.HandlerFunc(accountsHandler.UpdateRates)))

	// Items: scoped to the caller's shop, except lookup and the admin views.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/lookup", authMW(http.HandlerFunc(itemsHandler.Lookup)))
	mux.Handle("GET /api/items/all", authMW(RequireAdmin(http.HandlerFunc(itemsHandler.ListAll))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("GET /api/items/{id}/invoice", authMW(http.HandlerFunc(itemsHandler.Invoice)))
	mux.Handle("POST /api/items/{id}/sold", authMW(http.HandlerFunc(itemsHandler.MarkSold)))
	mux.Handle("PUT /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.UploadPhoto)))
	mux.Handle("GET /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.GetPhoto)))
	mux.Handle("DELETE /api/items/{id}", authMW(RequireAdmin(http.HandlerFunc(itemsHandler.Delete))))

	// Export (admin only).
	mux.Handle("GET /api/export.csv", authMW(RequireAdmin(http.HandlerFunc(itemsHandler.ExportCSV))))

	return mux
}
