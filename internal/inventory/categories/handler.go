package categories

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TODO: replace with the authenticated user id once auth exists
const currentUserID = "user1"

type RespondJSONFunc func(w http.ResponseWriter, status int, payload interface{})

// RespondErrorFunc writes the error envelope {code, message}.
type RespondErrorFunc func(w http.ResponseWriter, status int, code, message string)

type createCategoryRequest struct {
	Name string `json:"name" validate:"required,notblank,max=50"`
}

type updateCategoryRequest struct {
	Name string `json:"name" validate:"required,notblank,max=50"`
}

type categoryResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// required lets "　　" (full-width spaces) through, so blank is its own tag
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

type CategoryHandler struct {
	service      Service
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func NewCategoryHandler(service Service, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *CategoryHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &CategoryHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

// HandleCreate registers a new custom category. POST /categories
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Request body is not valid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.respondNameValidationError(w, err)
		return
	}

	category, err := h.service.Create(r.Context(), req.Name, currentUserID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, categoryResponse{ID: category.ID, Name: category.Name})
}

// HandleList returns the caller's visible categories. GET /categories
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	visible, err := h.service.List(r.Context(), currentUserID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	responses := make([]categoryResponse, 0, len(visible))
	for _, category := range visible {
		responses = append(responses, categoryResponse{ID: category.ID, Name: category.Name})
	}
	h.respondJSON(w, http.StatusOK, responses)
}

// HandleUpdate renames a custom category. PATCH /categories/{categoryID}
func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(r.PathValue("categoryID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Category id must be an integer")
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Request body is not valid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.respondNameValidationError(w, err)
		return
	}

	category, err := h.service.Update(r.Context(), categoryID, req.Name, currentUserID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, categoryResponse{ID: category.ID, Name: category.Name})
}

// HandleDelete logically deletes a custom category. DELETE /categories/{categoryID}
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(r.PathValue("categoryID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Category id must be an integer")
		return
	}

	if err := h.service.Delete(r.Context(), categoryID, currentUserID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) respondNameValidationError(w http.ResponseWriter, err error) {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		switch fieldErrors[0].Tag() {
		case "required", "notblank":
			h.respondError(w, http.StatusBadRequest, "CATEGORY_NAME_REQUIRED", "Category name is required")
			return
		case "max":
			h.respondError(w, http.StatusBadRequest, "CATEGORY_NAME_TOO_LONG", "Category name must be 50 characters or fewer")
			return
		}
	}
	h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request")
}

func (h *CategoryHandler) respondServiceError(w http.ResponseWriter, err error) {
	var notEmpty *NotEmptyError
	switch {
	case errors.Is(err, ErrNameRequired):
		h.respondError(w, http.StatusBadRequest, "CATEGORY_NAME_REQUIRED", "Category name is required")
	case errors.Is(err, ErrNameTooLong):
		h.respondError(w, http.StatusBadRequest, "CATEGORY_NAME_TOO_LONG", "Category name must be 50 characters or fewer")
	case errors.Is(err, ErrNameDuplicate):
		h.respondError(w, http.StatusConflict, "CATEGORY_NAME_DUPLICATE", "A category with this name already exists")
	case errors.Is(err, ErrLimitExceeded):
		h.respondError(w, http.StatusBadRequest, "CATEGORY_LIMIT_EXCEEDED", "Custom category limit reached")
	case errors.Is(err, ErrNotFound):
		h.respondError(w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	case errors.Is(err, ErrDefaultCategory):
		h.respondError(w, http.StatusForbidden, "DEFAULT_CATEGORY_IMMUTABLE", "Default categories cannot be modified")
	case errors.Is(err, ErrForbidden):
		h.respondError(w, http.StatusForbidden, "FORBIDDEN_ERROR", "You do not have permission to modify this category")
	case errors.As(err, &notEmpty):
		h.respondError(w, http.StatusConflict, "CATEGORY_NOT_EMPTY",
			"Category still contains items: "+strings.Join(notEmpty.ItemNames, ", "))
	default:
		// Internal causes stay in the server log and never reach the client.
		log.Printf("category handler: %v", err)
		h.respondError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred")
	}
}
