package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instructor-directory-api/internal/middleware"
	"github.com/noah-isme/instructor-directory-api/internal/models"
	"github.com/noah-isme/instructor-directory-api/internal/service"
	appErrors "github.com/noah-isme/instructor-directory-api/pkg/errors"
	"github.com/noah-isme/instructor-directory-api/pkg/geocoder"
	"github.com/noah-isme/instructor-directory-api/pkg/postcode"
	"github.com/noah-isme/instructor-directory-api/pkg/response"
)

type instructorDirectory interface {
	AddInstructor(ctx context.Context, req service.RegisterInstructorRequest) (*models.Instructor, error)
	GetInstructorInfo(ctx context.Context, fino string) (*models.Instructor, error)
	UpdateInstructor(ctx context.Context, fino string, req service.UpdateInstructorRequest) error
	UpdateInstructorPersonalInformation(ctx context.Context, fino string, req service.UpdatePersonalInformationRequest) error
	UpdateInstructorLocation(ctx context.Context, fino, postcode string) (*geocoder.Location, error)
	GetAllInstructors(ctx context.Context, active bool) ([]models.Instructor, error)
	GetInstructors(ctx context.Context, where map[string]interface{}, limit int, activeOnly bool) ([]models.Instructor, error)
	FindClosestInstructors(ctx context.Context, postcode string, limit int, cover, hasOffer bool) ([]models.Instructor, error)
	FindInstructorsByPostcode(ctx context.Context, postcode string, limit int, hasOffer bool) ([]models.Instructor, error)
	AddPriority(ctx context.Context, fino string) error
	RemovePriorities(ctx context.Context) (int64, error)
	InstTestimonials(ctx context.Context, fino string, limit int) ([]models.Testimonial, error)
	ExportDirectory(ctx context.Context, active bool, format string) (*service.DirectoryExport, error)
}

// Query parameters consumed by the filtered listing rather than used as column filters.
var listControlParams = map[string]bool{"limit": true, "active_only": true}

// LocationRequest carries the postcode to geocode.
type LocationRequest struct {
	Postcode string `json:"postcode"`
}

// InstructorHandler exposes the instructor directory over HTTP.
type InstructorHandler struct {
	directory instructorDirectory
}

// NewInstructorHandler constructs an InstructorHandler.
func NewInstructorHandler(directory instructorDirectory) *InstructorHandler {
	return &InstructorHandler{directory: directory}
}

// Closest godoc
// @Summary Find instructors near a postcode
// @Tags Instructors
// @Produce json
// @Param postcode query string true "Postcode"
// @Param limit query int false "Maximum rows (default 10)"
// @Param cover query bool false "Require coverage of the postcode area"
// @Param offer query bool false "List instructors with offers first"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /instructors/search/closest [get]
func (h *InstructorHandler) Closest(c *gin.Context) {
	rows, err := h.directory.FindClosestInstructors(c.Request.Context(), c.Query("postcode"), queryInt(c, "limit"), queryBool(c, "cover"), queryBool(c, "offer"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "area", postcode.Small(c.Query("postcode"), false))
	response.List(c, rows, len(rows), middleware.Meta(c))
}

// Area godoc
// @Summary Find instructors covering a postcode area
// @Tags Instructors
// @Produce json
// @Param postcode query string true "Postcode"
// @Param limit query int false "Maximum rows (default 10)"
// @Param offer query bool false "List instructors with offers first"
// @Success 200 {object} response.Envelope
// @Router /instructors/search/area [get]
func (h *InstructorHandler) Area(c *gin.Context) {
	rows, err := h.directory.FindInstructorsByPostcode(c.Request.Context(), c.Query("postcode"), queryInt(c, "limit"), queryBool(c, "offer"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "area", postcode.Small(c.Query("postcode"), false))
	response.List(c, rows, len(rows), middleware.Meta(c))
}

// List godoc
// @Summary List instructors matching column filters
// @Description Any other query parameter is an equality filter on a listed column.
// @Tags Instructors
// @Produce json
// @Param limit query int false "Maximum rows (default 10)"
// @Param active_only query bool false "Only active instructors"
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *InstructorHandler) List(c *gin.Context) {
	where := make(map[string]interface{})
	for key, values := range c.Request.URL.Query() {
		if listControlParams[key] || len(values) == 0 {
			continue
		}
		where[key] = values[0]
	}
	rows, err := h.directory.GetInstructors(c.Request.Context(), where, queryInt(c, "limit"), queryBool(c, "active_only"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, len(rows), middleware.Meta(c))
}

// ListAll godoc
// @Summary List every instructor by active flag
// @Tags Instructors
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Active flag (default true)"
// @Success 200 {object} response.Envelope
// @Router /instructors/all [get]
func (h *InstructorHandler) ListAll(c *gin.Context) {
	rows, err := h.directory.GetAllInstructors(c.Request.Context(), activeParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, len(rows), middleware.Meta(c))
}

// Export godoc
// @Summary Download the directory
// @Tags Instructors
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Param active query bool false "Active flag (default true)"
// @Success 200 {file} file
// @Router /instructors/export [get]
func (h *InstructorHandler) Export(c *gin.Context) {
	out, err := h.directory.ExportDirectory(c.Request.Context(), activeParam(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, out.ContentType, out.Filename, out.Body)
}

// Get godoc
// @Summary Get an instructor
// @Tags Instructors
// @Produce json
// @Param fino path string true "Franchise number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{fino} [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	instructor, err := h.directory.GetInstructorInfo(c.Request.Context(), c.Param("fino"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor)
}

// Testimonials godoc
// @Summary Random testimonials for an instructor
// @Tags Instructors
// @Produce json
// @Param fino path string true "Franchise number"
// @Param limit query int false "Maximum testimonials"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{fino}/testimonials [get]
func (h *InstructorHandler) Testimonials(c *gin.Context) {
	items, err := h.directory.InstTestimonials(c.Request.Context(), c.Param("fino"), queryInt(c, "limit"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items, len(items), middleware.Meta(c))
}

// Register godoc
// @Summary Register an instructor
// @Tags Instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RegisterInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructors [post]
func (h *InstructorHandler) Register(c *gin.Context) {
	var req service.RegisterInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid instructor payload"))
		return
	}
	instructor, err := h.directory.AddInstructor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor)
}

// Update godoc
// @Summary Update any instructor field
// @Tags Instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param fino path string true "Franchise number"
// @Param payload body service.UpdateInstructorRequest true "Fields to change"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /instructors/{fino} [put]
func (h *InstructorHandler) Update(c *gin.Context) {
	var req service.UpdateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid instructor payload"))
		return
	}
	if err := h.directory.UpdateInstructor(c.Request.Context(), c.Param("fino"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateProfile godoc
// @Summary Update personal information
// @Tags Instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param fino path string true "Franchise number"
// @Param payload body service.UpdatePersonalInformationRequest true "Profile fields"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /instructors/{fino}/profile [put]
func (h *InstructorHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdatePersonalInformationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid profile payload"))
		return
	}
	if err := h.directory.UpdateInstructorPersonalInformation(c.Request.Context(), c.Param("fino"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateLocation godoc
// @Summary Geocode and store an instructor location
// @Tags Instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param fino path string true "Franchise number"
// @Param payload body LocationRequest true "Postcode"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /instructors/{fino}/location [put]
func (h *InstructorHandler) UpdateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid location payload"))
		return
	}
	location, err := h.directory.UpdateInstructorLocation(c.Request.Context(), c.Param("fino"), req.Postcode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location)
}

// AddPriority godoc
// @Summary Start a priority slot
// @Tags Instructors
// @Security BearerAuth
// @Param fino path string true "Franchise number"
// @Success 204
// @Router /instructors/{fino}/priority [post]
func (h *InstructorHandler) AddPriority(c *gin.Context) {
	if err := h.directory.AddPriority(c.Request.Context(), c.Param("fino")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SweepPriorities godoc
// @Summary Clear expired priority slots now
// @Tags Instructors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /instructors/priority/sweep [post]
func (h *InstructorHandler) SweepPriorities(c *gin.Context) {
	cleared, err := h.directory.RemovePriorities(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"cleared": cleared})
}

func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return value
}

func queryBool(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && value
}

func activeParam(c *gin.Context) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.DefaultQuery("active", "true")))
	return err != nil || value
}
