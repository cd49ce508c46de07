// internal/adapters/in/http/handlers/catalog_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	usecase "storefront/internal/application/usecase"
	productdom "storefront/internal/domain/product"
)

// CatalogHandler serves the shared product catalog.
//
//	GET    /products          現在のスナップショット（one-shot）
//	GET    /products/stream   SSE live feed
//	POST   /products          作成（manager）
//	PUT    /products/{id}     更新（manager）
//	DELETE /products/{id}     削除（manager）
//	POST   /products/images   画像アップロード（manager）
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) http.Handler {
	return &CatalogHandler{uc: uc}
}

// snapshotTimeout bounds the one-shot GET (first snapshot delivery).
const snapshotTimeout = 10 * time.Second

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "catalog handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case path == "/products" && r.Method == http.MethodGet:
		h.handleList(w, r)

	case path == "/products/stream" && r.Method == http.MethodGet:
		h.handleStream(w, r)

	case path == "/products" && r.Method == http.MethodPost:
		h.handleCreate(w, r)

	case path == "/products/images" && r.Method == http.MethodPost:
		h.handleUpload(w, r)

	case strings.HasPrefix(path, "/products/") && r.Method == http.MethodPut:
		h.handleUpdate(w, r, strings.TrimPrefix(path, "/products/"))

	case strings.HasPrefix(path, "/products/") && r.Method == http.MethodDelete:
		h.handleDelete(w, r, strings.TrimPrefix(path, "/products/"))

	default:
		methodNotAllowed(w)
	}
}

// handleList answers with the first snapshot the live feed delivers.
func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), snapshotTimeout)
	defer cancel()

	first := make(chan []productdom.Product, 1)
	fail := make(chan error, 1)

	detach, err := h.uc.Subscribe(ctx,
		func(ps []productdom.Product) {
			select {
			case first <- ps:
			default:
			}
		},
		func(err error) {
			select {
			case fail <- err:
			default:
			}
		},
	)
	if err != nil {
		writeErrFrom(w, err)
		return
	}
	defer detach()

	select {
	case ps := <-first:
		writeJSON(w, http.StatusOK, ps)
	case err := <-fail:
		writeErrFrom(w, err)
	case <-ctx.Done():
		writeErr(w, http.StatusGatewayTimeout, "catalog snapshot timed out")
	}
}

// handleStream pushes every snapshot as one SSE event.
func (h *CatalogHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan []byte, 8)
	detach, err := h.uc.Subscribe(r.Context(),
		func(ps []productdom.Product) {
			raw, err := json.Marshal(ps)
			if err != nil {
				return
			}
			select {
			case events <- raw:
			default:
				// 遅い client は最新 snapshot を落とすだけ（次で追いつく）
			}
		},
		func(err error) {
			log.Printf("[catalog_handler] WARN: stream error: %v", err)
		},
	)
	if err != nil {
		writeErrFrom(w, err)
		return
	}
	defer detach()

	for {
		select {
		case <-r.Context().Done():
			return
		case raw := <-events:
			fmt.Fprintf(w, "event: catalog\ndata: %s\n\n", raw)
			flusher.Flush()
		}
	}
}

func (h *CatalogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in productdom.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed product payload")
		return
	}

	id, err := h.uc.CreateProduct(r.Context(), in)
	if err != nil {
		writeErrFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *CatalogHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var in productdom.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed product payload")
		return
	}

	if err := h.uc.UpdateProduct(r.Context(), id, in); err != nil {
		writeErrFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *CatalogHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.uc.DeleteProduct(r.Context(), id); err != nil {
		writeErrFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload accepts multipart form-data with a "file" part.
func (h *CatalogHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	url, err := h.uc.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeErrFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
