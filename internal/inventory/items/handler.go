package items

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TODO: replace with the authenticated user id once auth exists
const currentUserID = "user1"

type RespondJSONFunc func(w http.ResponseWriter, status int, payload interface{})

type RespondErrorFunc func(w http.ResponseWriter, status int, code, message string)

type createItemRequest struct {
	CategoryID *int    `json:"categoryId" validate:"required"`
	Name       string  `json:"name" validate:"required,notblank,max=50"`
	Quantity   *int    `json:"quantity" validate:"omitempty,gte=0"`
	Amount     *int    `json:"amount"`
	Place      *string `json:"place"`
}

type itemResponse struct {
	ID         int    `json:"id"`
	CategoryID int    `json:"categoryId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

type ItemHandler struct {
	service      Service
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func NewItemHandler(service Service, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *ItemHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &ItemHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

// HandleCreate registers a new item in a category. POST /items
func (h *ItemHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Request body is not valid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.respondValidationError(w, err)
		return
	}

	params := CreateParams{
		CategoryID: *req.CategoryID,
		Name:       req.Name,
		Quantity:   req.Quantity,
		Amount:     req.Amount,
		Place:      req.Place,
	}
	item, err := h.service.Create(r.Context(), params, currentUserID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, itemResponse{
		ID:         item.ID,
		CategoryID: item.CategoryID,
		Name:       item.Name,
		Quantity:   item.Quantity,
	})
}

func (h *ItemHandler) respondValidationError(w http.ResponseWriter, err error) {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fieldError := fieldErrors[0]
		switch {
		case fieldError.Field() == "Quantity":
			h.respondError(w, http.StatusBadRequest, "INVALID_ITEM_QUANTITY", "Quantity must be zero or greater")
			return
		case fieldError.Tag() == "required" || fieldError.Tag() == "notblank":
			h.respondError(w, http.StatusBadRequest, "ITEM_FIELDS_REQUIRED", "Category id and item name are required")
			return
		case fieldError.Tag() == "max":
			h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Item name must be 50 characters or fewer")
			return
		}
	}
	h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request")
}

func (h *ItemHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNameRequired):
		h.respondError(w, http.StatusBadRequest, "ITEM_FIELDS_REQUIRED", "Category id and item name are required")
	case errors.Is(err, ErrNameTooLong):
		h.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Item name must be 50 characters or fewer")
	case errors.Is(err, ErrInvalidQuantity):
		h.respondError(w, http.StatusBadRequest, "INVALID_ITEM_QUANTITY", "Quantity must be zero or greater")
	case errors.Is(err, ErrCategoryNotFound):
		h.respondError(w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	case errors.Is(err, ErrNameDuplicate):
		h.respondError(w, http.StatusConflict, "ITEM_NAME_DUPLICATE", "An item with this name already exists in the category")
	default:
		log.Printf("item handler: %v", err)
		h.respondError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred")
	}
}
