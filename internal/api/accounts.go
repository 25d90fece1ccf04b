package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/shivam-website/gold-shop/internal/model"
	"github.com/shivam-website/gold-shop/internal/photos"
	"github.com/shivam-website/gold-shop/internal/store"
)

// AccountsHandler handles shop account management (admin only, except for
// the own-rates update).
type AccountsHandler struct {
	DB     *sql.DB
	Photos *photos.Store
}

type createAccountRequest struct {
	ShopName string `json:"shop_name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type updateRateRequest struct {
	Material string `json:"material"`
	Rate     string `json:"rate"`
}

// List handles GET /api/accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := store.ListAccounts(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list accounts", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	jsonResponse(w, http.StatusOK, accounts)
}

// Create handles POST /api/accounts. There is no self-registration: only an
// admin creates shop accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ShopName == "" {
		jsonError(w, http.StatusBadRequest, "shop_name required")
		return
	}
	if req.Username == "" {
		jsonError(w, http.StatusBadRequest, "username required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleShopkeeper
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	acct, err := store.CreateAccount(r.Context(), h.DB, req.ShopName, req.Username, string(hash), req.Role)
	if err == store.ErrUsernameTaken {
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create account", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("shop account created", "admin", claims.Username, "shop", req.ShopName, "username", req.Username)
	jsonResponse(w, http.StatusCreated, acct)
}

// Get handles GET /api/accounts/{id}. Shopkeepers can only read their own
// account.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	claims := GetClaims(r.Context())
	if claims.AccountID != id && claims.Role != model.RoleAdmin {
		jsonError(w, http.StatusForbidden, "not your account")
		return
	}

	acct, err := store.GetAccount(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get account", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get account")
		return
	}
	if acct == nil {
		jsonError(w, http.StatusNotFound, "account not found")
		return
	}

	jsonResponse(w, http.StatusOK, acct)
}

// SetActive handles PUT /api/accounts/{id}/active. Admins cannot target
// their own account.
func (h *AccountsHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	claims := GetClaims(r.Context())
	if claims.AccountID == id {
		jsonError(w, http.StatusForbidden, "cannot change your own active flag")
		return
	}

	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := store.GetAccount(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get account")
		return
	}
	if acct == nil {
		jsonError(w, http.StatusNotFound, "account not found")
		return
	}

	if err := store.SetAccountActive(r.Context(), h.DB, id, req.Active); err != nil {
		slog.Error("failed to set account active", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update account")
		return
	}

	slog.Info("account active flag changed", "admin", claims.Username, "shop", acct.ShopName, "active", req.Active)
	updated, _ := store.GetAccount(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, updated)
}

// ResetPassword handles PUT /api/accounts/{id}/password.
func (h *AccountsHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	acct, err := store.GetAccount(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get account")
		return
	}
	if acct == nil {
		jsonError(w, http.StatusNotFound, "account not found")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := store.UpdateAccountPassword(r.Context(), h.DB, id, string(hash)); err != nil {
		slog.Error("failed to reset password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("account password reset", "admin", claims.Username, "target", acct.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/accounts/{id}: hard delete, cascading to every
// owned item and its photo. Admins cannot delete themselves.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	claims := GetClaims(r.Context())
	if claims.AccountID == id {
		jsonError(w, http.StatusForbidden, "cannot delete yourself")
		return
	}

	acct, err := store.GetAccount(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get account")
		return
	}
	if acct == nil {
		jsonError(w, http.StatusNotFound, "account not found")
		return
	}

	photoRefs, err := store.DeleteAccount(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to delete account", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	// Photo cleanup after the commit. A failure here never undoes the delete.
	for _, ref := range photoRefs {
		if err := h.Photos.Delete(ref); err != nil {
			slog.Warn("failed to remove photo of deleted item", "ref", ref, "error", err)
		}
	}

	slog.Info("shop account deleted", "admin", claims.Username, "shop", acct.ShopName, "photos_removed", len(photoRefs))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

// UpdateRates handles PUT /api/account/rates: any authenticated caller may
// update a metal rate, but only on their own account.
func (h *AccountsHandler) UpdateRates(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req updateRateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !model.ValidMaterial(req.Material) {
		jsonError(w, http.StatusBadRequest, "material must be gold or silver")
		return
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "rate must be a number")
		return
	}
	if !rate.IsPositive() {
		jsonError(w, http.StatusBadRequest, "rate must be positive")
		return
	}

	if err := store.UpdateAccountRate(r.Context(), h.DB, claims.AccountID, req.Material, rate); err != nil {
		slog.Error("failed to update rate", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update rate")
		return
	}

	slog.Info("rate updated", "account", claims.Username, "material", req.Material, "rate", rate.String())
	updated, _ := store.GetAccount(r.Context(), h.DB, claims.AccountID)
	jsonResponse(w, http.StatusOK, updated)
}
