package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

type SectionHandler struct {
	service ports.SectionService
}

func NewSectionHandler(service ports.SectionService) *SectionHandler {
	return &SectionHandler{service: service}
}

type createSectionRequest struct {
	Name string `json:"name"`
}

func (h *SectionHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	collectionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	sections, err := h.service.ListSections(r.Context(), identity.UserID, collectionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (h *SectionHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	collectionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createSectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	section, err := h.service.CreateSection(r.Context(), identity.UserID, collectionID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, section)
}

func (h *SectionHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch domain.SectionPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	section, err := h.service.UpdateSection(r.Context(), identity.UserID, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, section)
}

func (h *SectionHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteSection(r.Context(), identity.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse)
}

func (h *SectionHandler) ReorderSections(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	collectionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.ReorderSections(r.Context(), identity.UserID, collectionID, req.Order); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse)
}
