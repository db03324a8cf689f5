package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/safar/coffee-shop/internal/cart"
	"github.com/safar/coffee-shop/internal/logging"
	"github.com/safar/coffee-shop/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondInternal logs err and answers with a fixed message so storage
// details never reach the client.
func respondInternal(w http.ResponseWriter, component, step, message string, err error) {
	logging.Err(logging.Fields{Component: component, Step: step, Status: "error"}, err)
	respondError(w, http.StatusInternalServerError, message)
}

func respondRedirect(w http.ResponseWriter, status int, message, redirect string) {
	respondJSON(w, status, map[string]string{"error": message, "redirect": redirect})
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// rawString reads a JSON value that clients send either as a string or as a
// number, e.g. "product_id": 3 or "product_id": "3".
func rawString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str)
	}
	return s
}

// productIDField reads a product id and returns it in canonical decimal
// form, so "03" and 3 address the same cart entry.
func productIDField(raw json.RawMessage) (int64, string, bool) {
	id, err := strconv.ParseInt(rawString(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, strconv.FormatInt(id, 10), true
}

// cartEntryID is productIDField for operations on entries already in the
// cart. Ids that are not numeric are passed through so a stale entry can
// still be removed.
func cartEntryID(raw json.RawMessage) string {
	if _, productID, ok := productIDField(raw); ok {
		return productID
	}
	return rawString(raw)
}

// quantityField parses a quantity sent as a string or number. An absent
// value yields def.
func quantityField(raw json.RawMessage, def int) (int, error) {
	s := rawString(raw)
	if s == "" {
		return def, nil
	}
	return cart.ParseQuantity(s)
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return store.NormalizePage(page, pageSize)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
