package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"etforacle/pkg/etforacle"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"view_policy": string(h.core.ViewPolicy()),
	})
}

func (h *handler) getMarkets(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.ListMarkets()
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getMarket(w http.ResponseWriter, r *http.Request) {
	index, err := pathParam(r, "index")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid index name")
		return
	}
	result, err := h.core.GetMarket(index)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getSectors(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.ListSectors()
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getPerformance(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.PriceSeries()
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) selectMarket(w http.ResponseWriter, r *http.Request) {
	var payload selectMarketPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	market := strings.TrimSpace(payload.Market)
	if market == "" {
		writeErrorResponse(w, r, http.StatusBadRequest,
			etforacle.NewError(etforacle.ErrCodeInvalidInput, "market is required"))
		return
	}
	h.core.SelectMarket(market)
	writeJSON(w, http.StatusAccepted, newInsightStateResponse(h.core.ViewState()))
}

func (h *handler) selectSector(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "sector")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid sector")
		return
	}
	sectors, err := h.core.ListSectors()
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	for _, sector := range sectors {
		if strings.EqualFold(sector.Name, strings.TrimSpace(name)) {
			h.core.SelectSector(sector.Name)
			writeJSON(w, http.StatusAccepted, newInsightStateResponse(h.core.ViewState()))
			return
		}
	}
	writeErrorResponse(w, r, http.StatusNotFound,
		etforacle.NewError(etforacle.ErrCodeNotFound, "sector not found: "+name))
}

func (h *handler) getInsightState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newInsightStateResponse(h.core.ViewState()))
}

func (h *handler) getTickerDetail(w http.ResponseWriter, r *http.Request) {
	ticker, err := pathParam(r, "ticker")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid ticker")
		return
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	detail, err := h.core.RequestTickerDetail(r.Context(), ticker)
	if err != nil {
		writeErrorResponse(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, tickerDetailResponse{Ticker: ticker, Detail: detail})
}

func (h *handler) getOperationLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := normalizeLimitOffset(
		parseIntDefault(r.URL.Query().Get("limit"), 50),
		parseIntDefault(r.URL.Query().Get("offset"), 0),
	)
	result, err := h.core.GetOperationLogs(limit, offset)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, operationLogsResponse{Items: result, Limit: limit, Offset: offset})
}

// Helpers.

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

// pathParam returns a URL-decoded chi path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	return url.PathUnescape(chi.URLParam(r, name))
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func normalizeLimitOffset(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
