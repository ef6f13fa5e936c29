package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/go-retail/httpx"
	"github.com/diewo77/go-retail/internal/clients"
)

type ClientHandler struct {
	clients *clients.Registry
	log     *zap.Logger
}

func NewClientHandler(reg *clients.Registry, log *zap.Logger) *ClientHandler {
	return &ClientHandler{clients: reg, log: log}
}

type clientRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	IsActive   *bool  `json:"is_active"`
}

func (c clientRequest) input() clients.Input {
	in := clients.Input{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		PostalCode: c.PostalCode,
		City:       c.City,
		IsActive:   true,
	}
	if c.IsActive != nil {
		in.IsActive = *c.IsActive
	}
	return in
}

// List supports ?q= on name, email and phone.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	list, err := h.clients.List(r.Context(), r.URL.Query().Get("q"), offset, limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.clients.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.clients.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req clientRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.clients.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.clients.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
