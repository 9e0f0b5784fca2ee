package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

type LinkHandler struct {
	service ports.LinkService
}

func NewLinkHandler(service ports.LinkService) *LinkHandler {
	return &LinkHandler{service: service}
}

type createLinkRequest struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Favicon string `json:"favicon"`
}

func (h *LinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	sectionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	links, err := h.service.ListLinks(r.Context(), identity.UserID, sectionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	sectionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createLinkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	link, err := h.service.CreateLink(r.Context(), identity.UserID, sectionID, req.Title, req.URL, req.Favicon)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch domain.LinkPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	link, err := h.service.UpdateLink(r.Context(), identity.UserID, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteLink(r.Context(), identity.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse)
}

func (h *LinkHandler) ReorderLinks(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	sectionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.ReorderLinks(r.Context(), identity.UserID, sectionID, req.Order); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse)
}
