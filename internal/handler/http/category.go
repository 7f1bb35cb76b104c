package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/service"
	apperrors "github.com/utafrali/catalog/pkg/errors"
	"github.com/utafrali/catalog/pkg/httputil"
	"github.com/utafrali/catalog/pkg/validator"
)

// CategoryHandler handles HTTP requests for category tree endpoints.
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(svc *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CategoryPathRequest addresses a node by its names from the main category
// down. Unused trailing levels are omitted.
type CategoryPathRequest struct {
	MainCategory       string `json:"mainCategory" validate:"notblank"`
	SubCategoryName    string `json:"subCategoryName"`
	SubSubCategoryName string `json:"subSubCategoryName"`
	Level3CategoryName string `json:"level3CategoryName"`
	Level4CategoryName string `json:"level4CategoryName"`
}

func (req CategoryPathRequest) path() domain.CategoryPath {
	return domain.CategoryPath{
		Main:   req.MainCategory,
		Sub:    req.SubCategoryName,
		SubSub: req.SubSubCategoryName,
		Level3: req.Level3CategoryName,
		Level4: req.Level4CategoryName,
	}
}

// UpdateCategoryRequest renames the node addressed by the path fields.
type UpdateCategoryRequest struct {
	CategoryPathRequest
	NewName string `json:"newName" validate:"notblank"`
}

// levelField names the request field that carries the new node name of
// each level.
var levelField = [...]string{
	"mainCategory",
	"subCategoryName",
	"subSubCategoryName",
	"level3CategoryName",
	"level4CategoryName",
}

var createdMessage = [...]string{
	"Main category created successfully",
	"Subcategory added successfully",
	"Subsubcategory added successfully",
	"Level3 category added successfully",
	"Level4 category added successfully",
}

// CategoryResponse pairs a confirmation message with the affected tree.
type CategoryResponse struct {
	Message  string           `json:"message"`
	Category *domain.Category `json:"category,omitempty"`
}

// --- Handlers ---

// AddCategory returns the handler creating a node at level. The request
// must carry the path of the parent plus the new name in the level's field;
// deeper fields are ignored.
//
// POST /api/categories/{main,sub,subsub,lavel3,lavel4}
func (h *CategoryHandler) AddCategory(level domain.Level) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

		var req CategoryPathRequest
		if err := validator.DecodeAndValidate(r, &req); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		segs := []string{
			req.MainCategory,
			req.SubCategoryName,
			req.SubSubCategoryName,
			req.Level3CategoryName,
			req.Level4CategoryName,
		}
		for i := 0; i <= int(level); i++ {
			if strings.TrimSpace(segs[i]) == "" {
				httputil.WriteError(w, r, apperrors.InvalidInput(levelField[i]+" is required"), h.logger)
				return
			}
		}

		var (
			category *domain.Category
			err      error
		)
		if level == domain.LevelMain {
			category, err = h.service.CreateMain(r.Context(), req.MainCategory)
		} else {
			parent := pathOf(segs[:level])
			category, err = h.service.AddChild(r.Context(), parent, segs[level])
		}
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
			Data: CategoryResponse{Message: createdMessage[level], Category: category},
		})
	}
}

// ListCategories handles GET /api/categories/getcategory
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// UpdateCategory handles PUT /api/categories/updatecategory
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req UpdateCategoryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	category, err := h.service.Rename(r.Context(), req.path(), req.NewName)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: CategoryResponse{Message: "Category updated successfully", Category: category},
	})
}

// DeleteCategory handles DELETE /api/categories/deletecategory
// The deepest path field names the node removed; a bare mainCategory removes
// the whole tree.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req CategoryPathRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	path := req.path()
	depth, err := path.Depth()
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("Invalid delete request"), h.logger)
		return
	}

	category, err := h.service.Remove(r.Context(), path)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: CategoryResponse{Message: deletedMessage(depth), Category: category},
	})
}

func deletedMessage(l domain.Level) string {
	switch l {
	case domain.LevelMain:
		return "Main category deleted successfully"
	case domain.LevelSub:
		return "Subcategory deleted successfully"
	case domain.LevelSubSub:
		return "Subsubcategory deleted successfully"
	default:
		return "Category deleted successfully"
	}
}

func pathOf(segs []string) domain.CategoryPath {
	var p domain.CategoryPath
	dst := []*string{&p.Main, &p.Sub, &p.SubSub, &p.Level3, &p.Level4}
	for i, s := range segs {
		*dst[i] = s
	}
	return p
}
