package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"service-delivery-engine/internal/apperr"
	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/logx"
)

// Service answers availability questions and manages delivery candidates.
type Service struct {
	repo             candidateRepository
	geocoder         geocoder
	checker          *Checker
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates an availability Service.
func NewService(
	repo candidateRepository,
	geo geocoder,
	checker *Checker,
	timeout time.Duration,
	logger logx.Logger,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             repo,
		geocoder:         geo,
		checker:          checker,
		operationTimeout: timeout,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// CheckCoordinates reports whether any active candidate can deliver to target.
func (s *Service) CheckCoordinates(ctx context.Context, target domain.Point) (Result, error) {
	if !target.Valid() {
		return Result{}, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	candidates, err := s.repo.ListActive(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list active candidates: %w", err)
	}
	res := s.checker.Check(target, candidates, s.now())

	s.logger.Debug("availability checked",
		logx.Float64("lat", target.Lat),
		logx.Float64("lng", target.Lng),
		logx.Int("candidates", len(candidates)),
		logx.Bool("available", res.IsAvailable),
	)
	return res, nil
}

// CheckAddress geocodes address and checks availability at the resulting point.
// Geocoding failures are reported as apperr.ErrGeocoding.
func (s *Service) CheckAddress(ctx context.Context, address string) (Result, domain.Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Result{}, domain.Point{}, apperr.ErrInvalid
	}
	if s.geocoder == nil {
		return Result{}, domain.Point{}, fmt.Errorf("%w: no geocoder configured", apperr.ErrGeocoding)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	target, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.logger.Warn("geocoding failed", logx.String("address", address), logx.Err(err))
		if errors.Is(err, apperr.ErrGeocoding) {
			return Result{}, domain.Point{}, err
		}
		return Result{}, domain.Point{}, fmt.Errorf("%w: %v", apperr.ErrGeocoding, err)
	}

	res, err := s.CheckCoordinates(ctx, target)
	if err != nil {
		return Result{}, target, err
	}
	return res, target, nil
}

// Get retrieves a candidate by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.DeliveryCandidate, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

// List returns candidates with optional pagination.
func (s *Service) List(ctx context.Context, limit, offset *int) ([]domain.DeliveryCandidate, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, limit, offset)
}

// Create persists a new candidate and returns its generated ID.
func (s *Service) Create(ctx context.Context, c *domain.DeliveryCandidate) (int64, error) {
	if err := validateCreate(c); err != nil {
		return 0, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.Create(ctx, c)
}

// UpdatePartial applies a partial update to a candidate.
func (s *Service) UpdatePartial(ctx context.Context, u domain.PartialCandidateUpdate) error {
	if err := validateUpdate(u); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

func validateCreate(c *domain.DeliveryCandidate) error {
	if c == nil {
		return apperr.ErrInvalid
	}
	if strings.TrimSpace(c.Name) == "" {
		return apperr.ErrInvalid
	}
	if !c.Location.Valid() || !(c.RadiusKm > 0) {
		return apperr.ErrInvalid
	}
	return validateWindows(c.Windows)
}

func validateUpdate(u domain.PartialCandidateUpdate) error {
	if u.ID <= 0 {
		return apperr.ErrInvalid
	}
	if u.Name == nil && u.Location == nil && u.RadiusKm == nil && u.IsActive == nil && u.Windows == nil {
		return apperr.ErrInvalid
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return apperr.ErrInvalid
	}
	if u.Location != nil && !u.Location.Valid() {
		return apperr.ErrInvalid
	}
	if u.RadiusKm != nil && !(*u.RadiusKm > 0) {
		return apperr.ErrInvalid
	}
	if u.Windows != nil {
		return validateWindows(*u.Windows)
	}
	return nil
}

// validateWindows rejects malformed windows on write; reads still skip them one by one.
func validateWindows(ws []domain.ServiceWindow) error {
	for _, w := range ws {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
		}
	}
	return nil
}
