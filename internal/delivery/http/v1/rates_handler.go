package v1

import (
	"errors"
	"net/http"

	"ratebridge-backend/internal/domain"
	"ratebridge-backend/internal/usecase"
	"ratebridge-backend/pkg/utils"
)

type RatesHandler struct {
	generator *usecase.RateGeneratorService
	matcher   *usecase.ZoneMatcher
}

func NewRatesHandler(generator *usecase.RateGeneratorService, matcher *usecase.ZoneMatcher) *RatesHandler {
	return &RatesHandler{
		generator: generator,
		matcher:   matcher,
	}
}

// GenerateRates recomputes the full rate table from tariffs and replaces the
// persisted set.
func (h *RatesHandler) GenerateRates(w http.ResponseWriter, r *http.Request) {
	result, err := h.generator.GenerateAll(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoTariffs) {
			utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// GetZoneMatches reconciles remote zone identities against locally generated
// ones for operator review before a deployment.
func (h *RatesHandler) GetZoneMatches(w http.ResponseWriter, r *http.Request) {
	result, err := h.matcher.Match(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
