package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	"github.com/noah-isme/instructor-directory-api/internal/repository"
	appErrors "github.com/noah-isme/instructor-directory-api/pkg/errors"
	"github.com/noah-isme/instructor-directory-api/pkg/export"
	"github.com/noah-isme/instructor-directory-api/pkg/geocoder"
	"github.com/noah-isme/instructor-directory-api/pkg/postcode"
)

const (
	nearbyMiles = 15
	wideMiles   = 100
)

type instructorRepository interface {
	FindByFino(ctx context.Context, fino int64) (*models.Instructor, error)
	Exists(ctx context.Context, fino int64) (bool, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, fino int64, fields map[string]interface{}) error
	UpdateLocation(ctx context.Context, fino int64, lat, lng float64) error
	ListAll(ctx context.Context, active bool) ([]models.Instructor, error)
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error)
	FindNearby(ctx context.Context, q models.NearbyQuery) ([]models.Instructor, error)
	FindByArea(ctx context.Context, q models.AreaQuery) ([]models.Instructor, error)
	SetPriority(ctx context.Context, fino int64, start time.Time) error
	ClearExpiredPriorities(ctx context.Context, cutoff time.Time) (int64, error)
}

type testimonialRepository interface {
	ListRandom(ctx context.Context, fino int64, limit int) ([]models.Testimonial, error)
}

type testimonialSettings interface {
	DisplayTestimonials(ctx context.Context) (bool, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	LegacyCopy(password string) *string
}

type postcodeLocator interface {
	Locate(ctx context.Context, postcode string) (*geocoder.Location, error)
	Refresh(ctx context.Context, postcode string) (*geocoder.Location, error)
	SetAPIKey(key string)
	APIKey() string
}

// InstructorExtra carries optional registration attributes.
type InstructorExtra struct {
	About     *string                  `json:"about" validate:"omitempty,max=5000"`
	Offers    *string                  `json:"offers" validate:"omitempty,max=5000"`
	Notes     *string                  `json:"notes" validate:"omitempty,max=5000"`
	Postcodes []string                 `json:"postcodes" validate:"omitempty,dive,max=8"`
	Offer     *bool                    `json:"offer"`
	Status    *models.InstructorStatus `json:"status"`
	Active    *bool                    `json:"active"`
}

// RegisterInstructorRequest is the payload for adding an instructor.
type RegisterInstructorRequest struct {
	Fino     string           `json:"fino" validate:"required,numeric,max=18"`
	Name     string           `json:"name" validate:"required,max=255"`
	Email    string           `json:"email" validate:"required,email"`
	Website  *string          `json:"website" validate:"omitempty,max=255"`
	Gender   string           `json:"gender" validate:"omitempty,max=10"`
	Password string           `json:"password" validate:"required,min=6"`
	Extra    *InstructorExtra `json:"extra"`
}

// UpdateInstructorRequest is an admin partial update. Nil fields are left alone.
type UpdateInstructorRequest struct {
	Name      *string                  `json:"name" validate:"omitempty,max=255"`
	Email     *string                  `json:"email" validate:"omitempty,email"`
	Website   *string                  `json:"website" validate:"omitempty,max=255"`
	Gender    *string                  `json:"gender" validate:"omitempty,max=10"`
	Password  *string                  `json:"password" validate:"omitempty,min=6"`
	About     *string                  `json:"about" validate:"omitempty,max=5000"`
	Offers    *string                  `json:"offers" validate:"omitempty,max=5000"`
	Notes     *string                  `json:"notes" validate:"omitempty,max=5000"`
	Postcodes *[]string                `json:"postcodes" validate:"omitempty,dive,max=8"`
	Offer     *bool                    `json:"offer"`
	Status    *models.InstructorStatus `json:"status"`
	Active    *bool                    `json:"active"`
}

// UpdatePersonalInformationRequest holds the fields an instructor may edit.
type UpdatePersonalInformationRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=255"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Website *string `json:"website" validate:"omitempty,max=255"`
	Gender  *string `json:"gender" validate:"omitempty,max=10"`
	About   *string `json:"about" validate:"omitempty,max=5000"`
	Offers  *string `json:"offers" validate:"omitempty,max=5000"`
	Notes   *string `json:"notes" validate:"omitempty,max=5000"`
}

// InstructorServiceConfig holds directory tuning.
type InstructorServiceConfig struct {
	PriorityWindowMonths int
	TestimonialLimit     int
	WideAreaPattern      string
}

// InstructorService implements the instructor directory.
type InstructorService struct {
	repo         instructorRepository
	testimonials testimonialRepository
	settings     testimonialSettings
	accounts     passwordHasher
	locator      postcodeLocator
	areas        *postcode.AreaMatcher
	metrics      *MetricsService
	csv          csvRenderer
	pdf          pdfRenderer
	validator    *validator.Validate
	logger       *zap.Logger
	config       InstructorServiceConfig
	now          func() time.Time
}

// NewInstructorService constructs an InstructorService. It fails only when the
// wide-area pattern does not compile.
func NewInstructorService(repo instructorRepository, testimonials testimonialRepository, settings testimonialSettings, accounts passwordHasher, locator postcodeLocator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg InstructorServiceConfig) (*InstructorService, error) {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PriorityWindowMonths <= 0 {
		cfg.PriorityWindowMonths = 3
	}
	if cfg.TestimonialLimit <= 0 {
		cfg.TestimonialLimit = 5
	}
	areas, err := postcode.NewAreaMatcher(cfg.WideAreaPattern)
	if err != nil {
		return nil, err
	}
	return &InstructorService{
		repo:         repo,
		testimonials: testimonials,
		settings:     settings,
		accounts:     accounts,
		locator:      locator,
		areas:        areas,
		metrics:      metrics,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		validator:    validate,
		logger:       logger,
		config:       cfg,
		now:          time.Now,
	}, nil
}

// AddInstructor registers a new instructor.
func (s *InstructorService) AddInstructor(ctx context.Context, req RegisterInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid instructor payload")
	}
	fino, err := s.parseFino(req.Fino)
	if err != nil {
		return nil, err
	}
	extra := req.Extra
	if extra == nil {
		extra = &InstructorExtra{}
	}
	if extra.Status != nil && !extra.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown instructor status")
	}

	exists, err := s.repo.Exists(ctx, fino)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check franchise number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "franchise number already registered")
	}

	hash, err := s.accounts.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	instructor := &models.Instructor{
		Fino:           fino,
		Name:           strings.TrimSpace(req.Name),
		Gender:         strings.TrimSpace(req.Gender),
		Email:          strings.TrimSpace(req.Email),
		Website:        normalizeOptional(req.Website),
		PasswordHash:   hash,
		PasswordLegacy: s.accounts.LegacyCopy(req.Password),
		Postcodes:      coverageValue(extra.Postcodes),
		Active:         true,
		Status:         models.InstructorStatusActive,
		About:          normalizeOptional(extra.About),
		Offers:         normalizeOptional(extra.Offers),
		Notes:          normalizeOptional(extra.Notes),
	}
	if extra.Active != nil {
		instructor.Active = *extra.Active
	}
	if extra.Status != nil {
		instructor.Status = *extra.Status
	}
	if extra.Offer != nil {
		instructor.Offer = *extra.Offer
	}

	if err := s.repo.Create(ctx, instructor); err != nil {
		if errors.Is(err, repository.ErrDuplicateInstructor) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "franchise number already registered")
		}
		return nil, appErrors.Internal(err, "failed to create instructor")
	}
	s.logger.Info("instructor registered", zap.Int64("fino", fino))
	return instructor, nil
}

// GetInstructorInfo returns a single undecorated instructor row.
func (s *InstructorService) GetInstructorInfo(ctx context.Context, rawFino string) (*models.Instructor, error) {
	fino, err := s.parseFino(rawFino)
	if err != nil {
		return nil, err
	}
	instructor, err := s.repo.FindByFino(ctx, fino)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Internal(err, "failed to load instructor")
	}
	return instructor, nil
}

// UpdateInstructor applies an admin partial update.
func (s *InstructorService) UpdateInstructor(ctx context.Context, rawFino string, req UpdateInstructorRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid instructor payload")
	}
	fino, err := s.parseFino(rawFino)
	if err != nil {
		return err
	}
	if req.Status != nil && !req.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown instructor status")
	}

	fields, err := personalFields(UpdatePersonalInformationRequest{
		Name:    req.Name,
		Email:   req.Email,
		Website: req.Website,
		Gender:  req.Gender,
		About:   req.About,
		Offers:  req.Offers,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}
	if req.Password != nil {
		hash, err := s.accounts.Hash(*req.Password)
		if err != nil {
			return appErrors.Internal(err, "failed to hash password")
		}
		fields["password"] = hash
		fields["password_legacy"] = s.accounts.LegacyCopy(*req.Password)
	}
	if req.Postcodes != nil {
		fields["postcodes"] = coverageValue(*req.Postcodes)
	}
	if req.Offer != nil {
		fields["offer"] = *req.Offer
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	return s.applyUpdate(ctx, fino, fields)
}

// UpdateInstructorPersonalInformation applies an instructor's own profile edit.
func (s *InstructorService) UpdateInstructorPersonalInformation(ctx context.Context, rawFino string, req UpdatePersonalInformationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid profile payload")
	}
	fino, err := s.parseFino(rawFino)
	if err != nil {
		return err
	}
	fields, err := personalFields(req)
	if err != nil {
		return err
	}
	return s.applyUpdate(ctx, fino, fields)
}

func (s *InstructorService) applyUpdate(ctx context.Context, fino int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.repo.Update(ctx, fino, fields); err != nil {
		var unknown *repository.UnknownColumnError
		if errors.As(err, &unknown) {
			return appErrors.Validation(err, unknown.Error())
		}
		return appErrors.Internal(err, "failed to update instructor")
	}
	return nil
}

// UpdateInstructorLocation geocodes postcode, bypassing any cached answer, and
// stores the coordinates.
func (s *InstructorService) UpdateInstructorLocation(ctx context.Context, rawFino, code string) (*geocoder.Location, error) {
	fino, err := s.parseFino(rawFino)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "postcode is required")
	}
	location, err := s.locator.Refresh(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGeocodeFailed.Code, appErrors.ErrGeocodeFailed.Status, appErrors.ErrGeocodeFailed.Message)
	}
	if err := s.repo.UpdateLocation(ctx, fino, location.Latitude, location.Longitude); err != nil {
		return nil, appErrors.Internal(err, "failed to update instructor location")
	}
	return location, nil
}

// SetAPIKey replaces the geocoder API key.
func (s *InstructorService) SetAPIKey(key string) {
	s.locator.SetAPIKey(strings.TrimSpace(key))
}

// APIKey returns the geocoder API key.
func (s *InstructorService) APIKey() string {
	return s.locator.APIKey()
}

// GetAllInstructors lists every instructor with the given active flag.
func (s *InstructorService) GetAllInstructors(ctx context.Context, active bool) ([]models.Instructor, error) {
	start := time.Now()
	rows, err := s.repo.ListAll(ctx, active)
	s.metrics.ObserveDBQuery("list_all", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list instructors")
	}
	return s.decorate(ctx, rows), nil
}

// GetInstructors lists instructors matching an equality filter.
func (s *InstructorService) GetInstructors(ctx context.Context, where map[string]interface{}, limit int, activeOnly bool) ([]models.Instructor, error) {
	where, err := typedFilter(where)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := s.repo.List(ctx, models.InstructorFilter{Where: where, ActiveOnly: activeOnly, Limit: limit})
	s.metrics.ObserveDBQuery("list_filtered", time.Since(start))
	if err != nil {
		var unknown *repository.UnknownColumnError
		if errors.As(err, &unknown) {
			return nil, appErrors.Validation(err, unknown.Error())
		}
		return nil, appErrors.Internal(err, "failed to list instructors")
	}
	return s.decorate(ctx, rows), nil
}

// FindClosestInstructors searches around the geocoded postcode, falling back to
// coverage matching when the postcode cannot be located.
func (s *InstructorService) FindClosestInstructors(ctx context.Context, code string, limit int, cover, hasOffer bool) ([]models.Instructor, error) {
	area := postcode.Small(code, false)
	if area == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "postcode is required")
	}

	location, err := s.locator.Locate(ctx, code)
	if err != nil {
		if !errors.Is(err, geocoder.ErrNoResults) {
			s.logger.Warn("geocode failed, searching by area", zap.String("postcode", code), zap.Error(err))
		}
		s.metrics.RecordSearchFallback()
		return s.FindInstructorsByPostcode(ctx, code, limit, hasOffer)
	}

	wide := cover || s.areas.Wide(code)
	query := models.NearbyQuery{
		Lat:        location.Latitude,
		Lng:        location.Longitude,
		MaxMiles:   nearbyMiles,
		Area:       area,
		MatchArea:  wide,
		OfferFirst: hasOffer,
		Limit:      limit,
	}
	if wide {
		query.MaxMiles = wideMiles
	}

	start := time.Now()
	rows, err := s.repo.FindNearby(ctx, query)
	s.metrics.ObserveDBQuery("find_nearby", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search instructors")
	}
	return s.decorate(ctx, rows), nil
}

// FindInstructorsByPostcode returns active instructors covering the postcode area.
func (s *InstructorService) FindInstructorsByPostcode(ctx context.Context, code string, limit int, hasOffer bool) ([]models.Instructor, error) {
	area := postcode.Small(code, false)
	if area == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "postcode is required")
	}
	start := time.Now()
	rows, err := s.repo.FindByArea(ctx, models.AreaQuery{Area: area, OfferFirst: hasOffer, Limit: limit})
	s.metrics.ObserveDBQuery("find_by_area", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search instructors")
	}
	return s.decorate(ctx, rows), nil
}

// AddPriority starts a priority slot for the instructor now.
func (s *InstructorService) AddPriority(ctx context.Context, rawFino string) error {
	fino, err := s.parseFino(rawFino)
	if err != nil {
		return err
	}
	if err := s.repo.SetPriority(ctx, fino, s.now().UTC()); err != nil {
		return appErrors.Internal(err, "failed to set priority")
	}
	return nil
}

// RemovePriorities clears priority slots that started before the window and
// returns how many were cleared.
func (s *InstructorService) RemovePriorities(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, -s.config.PriorityWindowMonths, 0)
	cleared, err := s.repo.ClearExpiredPriorities(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to clear expired priorities")
	}
	s.metrics.RecordPrioritiesExpired(cleared)
	if cleared > 0 {
		s.logger.Info("expired priorities cleared", zap.Int64("count", cleared), zap.Time("cutoff", cutoff))
	}
	return cleared, nil
}

// InstTestimonials returns a random subset of an instructor's testimonials.
func (s *InstructorService) InstTestimonials(ctx context.Context, rawFino string, limit int) ([]models.Testimonial, error) {
	display, err := s.settings.DisplayTestimonials(ctx)
	if err != nil {
		return nil, err
	}
	if !display {
		return nil, appErrors.ErrTestimonialsDisabled
	}
	fino, err := s.parseFino(rawFino)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.config.TestimonialLimit
	}
	testimonials, err := s.testimonials.ListRandom(ctx, fino, limit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load testimonials")
	}
	if testimonials == nil {
		testimonials = []models.Testimonial{}
	}
	return testimonials, nil
}

// decorate adds the display-only fields to listing rows.
func (s *InstructorService) decorate(ctx context.Context, rows []models.Instructor) []models.Instructor {
	if rows == nil {
		return []models.Instructor{}
	}
	display, err := s.settings.DisplayTestimonials(ctx)
	if err != nil {
		s.logger.Warn("testimonial setting unavailable", zap.Error(err))
		display = false
	}
	for i := range rows {
		row := &rows[i]
		if row.Postcodes != nil {
			row.PostcodesDisplay = postcode.FormatCoverage(*row.Postcodes)
		}
		row.FirstName = firstName(row.Name)
		row.Testimonials = []models.Testimonial{}
		if !display {
			continue
		}
		testimonials, err := s.testimonials.ListRandom(ctx, row.Fino, s.config.TestimonialLimit)
		if err != nil {
			s.logger.Warn("failed to load testimonials", zap.Int64("fino", row.Fino), zap.Error(err))
			continue
		}
		if testimonials != nil {
			row.Testimonials = testimonials
		}
	}
	return rows
}

func (s *InstructorService) parseFino(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if err := s.validator.Var(raw, "required,numeric"); err != nil {
		return 0, appErrors.Validation(err, "franchise number must be numeric")
	}
	fino, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || fino <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "franchise number must be a positive integer")
	}
	return fino, nil
}

// typedFilter converts raw string filter values to the column's type.
func typedFilter(where map[string]interface{}) (map[string]interface{}, error) {
	if len(where) == 0 {
		return where, nil
	}
	out := make(map[string]interface{}, len(where))
	for column, value := range where {
		raw, ok := value.(string)
		if !ok {
			out[column] = value
			continue
		}
		raw = strings.TrimSpace(raw)
		switch column {
		case "fino":
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, appErrors.Validation(err, "filter fino must be an integer")
			}
			out[column] = n
		case "status":
			n, err := strconv.Atoi(raw)
			if err != nil || !models.InstructorStatus(n).Valid() {
				return nil, appErrors.Clone(appErrors.ErrValidation, "filter status must be a known status code")
			}
			out[column] = n
		case "offer", "priority", "active":
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, appErrors.Validation(err, "filter "+column+" must be a boolean")
			}
			out[column] = b
		default:
			out[column] = raw
		}
	}
	return out, nil
}

func personalFields(req UpdatePersonalInformationRequest) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name cannot be blank")
		}
		fields["name"] = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "email cannot be blank")
		}
		fields["email"] = email
	}
	if req.Gender != nil {
		fields["gender"] = strings.TrimSpace(*req.Gender)
	}
	if req.Website != nil {
		fields["website"] = normalizeOptional(req.Website)
	}
	if req.About != nil {
		fields["about"] = normalizeOptional(req.About)
	}
	if req.Offers != nil {
		fields["offers"] = normalizeOptional(req.Offers)
	}
	if req.Notes != nil {
		fields["notes"] = normalizeOptional(req.Notes)
	}
	return fields, nil
}

func coverageValue(areas []string) *string {
	coverage := postcode.BuildCoverage(areas)
	if coverage == "" {
		return nil
	}
	return &coverage
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func strPtr(value string) *string {
	return &value
}
