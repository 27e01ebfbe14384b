// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/callscope/internal/database"
	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/models"
)

// maxImportBodyBytes caps bulk import uploads.
const maxImportBodyBytes = 50 << 20

// HostList returns the host inventory.
//
// @Summary List hosts
// @Description Returns all host mappings, paginated by limit and offset
// @Tags Hosts
// @Accept json
// @Produce json
// @Param limit query int false "Maximum results per page" default(100)
// @Param offset query int false "Pagination offset" default(0)
// @Success 200 {object} models.APIResponse{data=models.HostList} "Host inventory page"
// @Failure 500 {object} models.APIResponse "Query failure"
// @Router /hosts [get]
func (h *Handler) HostList(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database unavailable", nil)
		return
	}

	defaultLimit, maxLimit := h.pageSizes()
	limit, offset := clampPagination(
		getIntParam(r, "limit", defaultLimit),
		getIntParam(r, "offset", 0),
		defaultLimit, maxLimit,
	)

	start := time.Now()
	hosts, err := h.db.ListHosts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to list hosts", err)
		return
	}

	total := len(hosts)
	page := paginateHosts(hosts, limit, offset)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HostList{
			Hosts: page,
			Pagination: models.PaginationInfo{
				Total:   total,
				Count:   len(page),
				Offset:  offset,
				Limit:   limit,
				HasMore: offset+len(page) < total,
			},
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HostGet returns a single host by name.
//
// @Summary Get host
// @Description Returns the host mapping with the given name
// @Tags Hosts
// @Accept json
// @Produce json
// @Param name path string true "Host name"
// @Success 200 {object} models.APIResponse{data=models.Host} "Host mapping"
// @Failure 404 {object} models.APIResponse "Unknown host"
// @Router /hosts/{name} [get]
func (h *Handler) HostGet(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database unavailable", nil)
		return
	}

	name := r.PathValue("name")
	host, err := h.db.GetHost(r.Context(), name)
	if err != nil {
		respondHostError(w, err, name)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   host,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HostCreate adds a host mapping.
//
// @Summary Create host
// @Description Creates a new host mapping; the name must be unused
// @Tags Hosts
// @Accept json
// @Produce json
// @Param host body models.Host true "Host definition with name and at least one address or CIDR"
// @Success 201 {object} models.APIResponse{data=models.Host} "Created host"
// @Failure 400 {object} models.APIResponse "Invalid host definition"
// @Failure 409 {object} models.APIResponse "Name already in use"
// @Router /hosts [post]
func (h *Handler) HostCreate(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database unavailable", nil)
		return
	}

	host, ok := decodeHost(w, r)
	if !ok {
		return
	}

	if err := h.db.CreateHost(r.Context(), host); err != nil {
		respondHostError(w, err, host.Name)
		return
	}

	logging.Info().Str("host", host.Name).Msg("Host created")
	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   host,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HostUpdate replaces the address lists of a host.
//
// @Summary Update host
// @Description Replaces the address and CIDR lists of an existing host; the path name wins over any name in the body
// @Tags Hosts
// @Accept json
// @Produce json
// @Param name path string true "Host name"
// @Param host body models.Host true "Host definition"
// @Success 200 {object} models.APIResponse{data=models.Host} "Updated host"
// @Failure 400 {object} models.APIResponse "Invalid host definition"
// @Failure 404 {object} models.APIResponse "Unknown host"
// @Router /hosts/{name} [put]
func (h *Handler) HostUpdate(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database unavailable", nil)
		return
	}

	name := r.PathValue("name")

	var host models.Host
	body := http.MaxBytesReader(w, r.Body, maxSessionBodyBytes)
	if err := json.NewDecoder(body).Decode(&host); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body", err)
		return
	}

	// The path identifies the host; a differing body name is ignored.
	host.Name = name
	host.Normalize()
	if !host.Valid() {
		respondErrorDetails(w, http.StatusBadRequest, ErrCodeValidation, "Host needs a name and at least one valid address or CIDR", map[string]interface{}{
			"field": "addr",
		}, nil)
		return
	}

	if err := h.db.UpdateHost(r.Context(), &host); err != nil {
		respondHostError(w, err, name)
		return
	}

	logging.Info().Str("host", name).Msg("Host updated")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   &host,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HostDelete removes a host mapping.
//
// @Summary Delete host
// @Description Removes the host mapping with the given name
// @Tags Hosts
// @Accept json
// @Produce json
// @Param name path string true "Host name"
// @Success 200 {object} models.APIResponse "Deleted"
// @Failure 404 {object} models.APIResponse "Unknown host"
// @Router /hosts/{name} [delete]
func (h *Handler) HostDelete(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database unavailable", nil)
		return
	}

	name := r.PathValue("name")
	if err := h.db.DeleteHost(r.Context(), name); err != nil {
		respondHostError(w, err, name)
		return
	}

	logging.Info().Str("host", name).Msg("Host deleted")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]interface{}{"deleted": name},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HostImport bulk-loads hosts from a JSON array.
//
// @Summary Import hosts
// @Description Upserts hosts from a JSON array, supplied either as the request body or as a multipart file field named "file". Invalid records are skipped and reported.
// @Tags Hosts
// @Accept json
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.ImportStats} "Import statistics"
// @Failure 400 {object} models.APIResponse "Malformed document"
// @Router /hosts/import [post]
func (h *Handler) HostImport(w http.ResponseWriter, r *http.Request) {
	if h.db == nil || h.importer == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Import unavailable", nil)
		return
	}

	reader, cleanup, err := importReader(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Missing import payload", err)
		return
	}
	defer cleanup()

	start := time.Now()
	stats, err := h.importer.Import(r.Context(), reader)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Import failed: "+err.Error(), err)
		return
	}

	durationMs := time.Since(start).Milliseconds()
	if h.wsHub != nil {
		h.wsHub.BroadcastImportCompleted(stats, durationMs)
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: durationMs,
		},
	})
}

// importReader selects the import source: a multipart file field when the
// request is multipart, otherwise the raw body.
func importReader(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, func() {}, err
		}
		return file, func() { file.Close() }, nil
	}
	return http.MaxBytesReader(w, r.Body, maxImportBodyBytes), func() {}, nil
}

func decodeHost(w http.ResponseWriter, r *http.Request) (*models.Host, bool) {
	var host models.Host
	body := http.MaxBytesReader(w, r.Body, maxSessionBodyBytes)
	if err := json.NewDecoder(body).Decode(&host); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body", err)
		return nil, false
	}

	host.Normalize()
	if !host.Valid() {
		respondErrorDetails(w, http.StatusBadRequest, ErrCodeValidation, "Host needs a name and at least one valid address or CIDR", map[string]interface{}{
			"field": "name",
		}, nil)
		return nil, false
	}
	return &host, true
}

// respondHostError maps host store errors onto the envelope.
func respondHostError(w http.ResponseWriter, err error, name string) {
	switch {
	case errors.Is(err, database.ErrHostNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Host not found: "+name, nil)
	case errors.Is(err, database.ErrHostConflict):
		respondError(w, http.StatusConflict, ErrCodeConflict, "Host already exists: "+name, nil)
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Host operation failed", err)
	}
}

func paginateHosts(hosts []models.Host, limit, offset int) []models.Host {
	if offset >= len(hosts) {
		return []models.Host{}
	}
	end := offset + limit
	if end > len(hosts) {
		end = len(hosts)
	}
	return hosts[offset:end]
}

func (h *Handler) pageSizes() (defaultLimit, maxLimit int) {
	defaultLimit, maxLimit = 100, 1000
	if h.config != nil {
		if h.config.API.DefaultPageSize > 0 {
			defaultLimit = h.config.API.DefaultPageSize
		}
		if h.config.API.MaxPageSize > 0 {
			maxLimit = h.config.API.MaxPageSize
		}
	}
	return defaultLimit, maxLimit
}
