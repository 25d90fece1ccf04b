package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/shivam-website/gold-shop/internal/model"
	"github.com/shivam-website/gold-shop/internal/money"
	"github.com/shivam-website/gold-shop/internal/photos"
	"github.com/shivam-website/gold-shop/internal/pricing"
	"github.com/shivam-website/gold-shop/internal/store"
)

// ItemsHandler handles jewelry item endpoints.
type ItemsHandler struct {
	DB     *sql.DB
	Photos *photos.Store
}

type createItemRequest struct {
	WeightTola  string `json:"weight_tola"`
	Material    string `json:"material"`
	LaborCost   string `json:"labor_cost"`
	Description string `json:"description"`
}

// List handles GET /api/items: the caller's own items, newest first,
// optionally filtered with ?sold=true|false.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var sold *bool
	if q := r.URL.Query().Get("sold"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "sold must be true or false")
			return
		}
		sold = &v
	}

	items, err := store.ListAccountItems(r.Context(), h.DB, claims.AccountID, sold)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// ListAll handles GET /api/items/all (admin): every item across all shops.
func (h *ItemsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListAllItems(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list all items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items: register an item under the caller's own
// account. The storage layer assigns the numeric key.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !model.ValidMaterial(req.Material) {
		jsonError(w, http.StatusBadRequest, "material must be gold or silver")
		return
	}

	weight, err := decimal.NewFromString(req.WeightTola)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "weight_tola must be a number")
		return
	}
	if !weight.IsPositive() {
		jsonError(w, http.StatusBadRequest, "weight_tola must be positive")
		return
	}

	labor, err := decimal.NewFromString(req.LaborCost)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "labor_cost must be a number")
		return
	}
	if labor.IsNegative() {
		jsonError(w, http.StatusBadRequest, "labor_cost must not be negative")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, claims.AccountID, weight, req.Material, labor, req.Description, "")
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item registered", "account", claims.Username, "item", item.DisplayID())
	jsonResponse(w, http.StatusCreated, map[string]any{
		"item":       item,
		"display_id": item.DisplayID(),
	})
}

// fetchOwnedItem loads an item by path key and applies the uniform access
// policy: 404 when the key does not exist, 403 when the item exists but the
// caller is neither owner nor admin. Returns nil if a response was already
// written.
func (h *ItemsHandler) fetchOwnedItem(w http.ResponseWriter, r *http.Request) *model.Item {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil
	}

	claims := GetClaims(r.Context())
	if item.AccountID != claims.AccountID && claims.Role != model.RoleAdmin {
		jsonError(w, http.StatusForbidden, "not your item")
		return nil
	}
	return item
}

// Get handles GET /api/items/{id} (owner or admin).
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item := h.fetchOwnedItem(w, r)
	if item == nil {
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"item":       item,
		"display_id": item.DisplayID(),
	})
}

// Lookup handles GET /api/items/lookup?id=JW-0007: point lookup by display
// identifier, priced with the owning shop's rates regardless of caller.
// Malformed identifiers and unknown keys both answer "no match".
func (h *ItemsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	key, ok := model.ParseItemID(r.URL.Query().Get("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "no jewelry found for that id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, key)
	if err != nil {
		slog.Error("failed to look up item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to look up item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "no jewelry found for that id")
		return
	}

	owner, err := store.GetAccount(r.Context(), h.DB, item.AccountID)
	if err != nil || owner == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item owner")
		return
	}

	price, err := pricing.Price(item, owner)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to price item")
		return
	}
	rate, _ := pricing.RateFor(item.Material, owner)

	jsonResponse(w, http.StatusOK, map[string]any{
		"item":       item,
		"display_id": item.DisplayID(),
		"shop_name":  owner.ShopName,
		"rate":       money.Format(money.Round(rate)),
		"price":      money.Format(money.Round(price)),
	})
}

// Invoice handles GET /api/items/{id}/invoice?discount=1000 (owner or
// admin). The response carries the full breakdown, not just the total.
func (h *ItemsHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	item := h.fetchOwnedItem(w, r)
	if item == nil {
		return
	}

	discount := decimal.Zero
	if q := r.URL.Query().Get("discount"); q != "" {
		var err error
		discount, err = decimal.NewFromString(q)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "discount must be a number")
			return
		}
		if discount.IsNegative() {
			jsonError(w, http.StatusBadRequest, "discount must not be negative")
			return
		}
	}

	owner, err := store.GetAccount(r.Context(), h.DB, item.AccountID)
	if err != nil || owner == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item owner")
		return
	}

	quote, err := pricing.Invoice(item, owner, discount)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute invoice")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"item":       item,
		"display_id": item.DisplayID(),
		"shop_name":  owner.ShopName,
		"rate":       money.Format(money.Round(quote.Rate)),
		"subtotal":   money.Format(money.Round(quote.Subtotal)),
		"discount":   money.Format(money.Round(quote.Discount)),
		"total":      money.Format(money.Round(quote.Total)),
	})
}

// MarkSold handles POST /api/items/{id}/sold (owner or admin). Selling is
// one-way; repeating the call leaves the item sold.
func (h *ItemsHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	item := h.fetchOwnedItem(w, r)
	if item == nil {
		return
	}

	if err := store.MarkItemSold(r.Context(), h.DB, item.ID); err != nil {
		slog.Error("failed to mark item sold", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to mark item sold")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item marked sold", "account", claims.Username, "item", item.DisplayID())
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item marked sold"})
}

// Delete handles DELETE /api/items/{id} (admin): hard delete, removing the
// stored photo first if one exists.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	photoRef, err := store.DeleteItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to delete item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	if err := h.Photos.Delete(photoRef); err != nil {
		slog.Warn("failed to remove photo of deleted item", "ref", photoRef, "error", err)
	}

	claims := GetClaims(r.Context())
	slog.Info("item deleted", "admin", claims.Username, "item", model.FormatItemID(id))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadPhoto handles PUT /api/items/{id}/photo (owner or admin): multipart
// upload, capped at 5 MiB, limited to png/jpg/jpeg/webp.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	item := h.fetchOwnedItem(w, r)
	if item == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, photos.MaxUploadBytes)

	if err := r.ParseMultipartForm(photos.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	if !photos.AllowedExt(header.Filename) {
		jsonError(w, http.StatusBadRequest, "invalid image type, use png/jpg/jpeg/webp")
		return
	}

	ref, err := h.Photos.Save(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	oldRef, err := store.SetItemPhoto(r.Context(), h.DB, item.ID, ref)
	if err != nil {
		h.Photos.Delete(ref)
		slog.Error("failed to set item photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}
	if oldRef != "" {
		if err := h.Photos.Delete(oldRef); err != nil {
			slog.Warn("failed to remove replaced photo", "ref", oldRef, "error", err)
		}
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/items/{id}/photo (owner or admin).
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	item := h.fetchOwnedItem(w, r)
	if item == nil {
		return
	}

	if item.PhotoRef == "" {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	data, err := h.Photos.Open(item.PhotoRef)
	if err != nil {
		slog.Error("failed to read photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to read photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// ExportCSV handles GET /api/export.csv (admin): the full inventory as a
// flat table, oldest first.
func (h *ItemsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="jewelry_export.csv"`)

	if err := store.ExportItemsCSV(r.Context(), h.DB, w); err != nil {
		slog.Error("failed to export items", "error", err)
	}
}
