package api

import (
	"net/http"

	"github.com/okian/edupredict/internal/domain/prediction"
)

// CategoriesDependencies defines the interface for listing known labels.
type CategoriesDependencies interface {
	Categories() (prediction.Categories, error)
}

// CategoriesHandler serves the labels the model was trained on, which
// clients offer as choices for the categorical inputs.
type CategoriesHandler struct {
	deps CategoriesDependencies
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(deps CategoriesDependencies) *CategoriesHandler {
	return &CategoriesHandler{deps: deps}
}

// HandleGetCategories handles GET /categories requests.
func (h *CategoriesHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.deps.Categories()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}
