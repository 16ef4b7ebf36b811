package application

import (
	"context"
	"time"

	"github.com/wms-platform/inventory-lifecycle/internal/domain"
	"github.com/wms-platform/inventory-lifecycle/pkg/errors"
	"github.com/wms-platform/inventory-lifecycle/pkg/logging"
	"github.com/wms-platform/inventory-lifecycle/pkg/resilience"
	"github.com/wms-platform/inventory-lifecycle/pkg/tenant"
)

// LocationService implements the application layer for storage location operations
type LocationService struct {
	locationRepo domain.LocationRepository
	logger       *logging.Logger
	now          func() time.Time
}

// NewLocationService creates a new LocationService
func NewLocationService(locationRepo domain.LocationRepository, logger *logging.Logger) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateLocation creates a new storage location
func (s *LocationService) CreateLocation(ctx context.Context, cmd CreateLocationCommand) (*LocationDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	existing, err := s.locationRepo.FindByID(ctx, tc.TenantID, cmd.LocationID)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to check location existence")
		return nil, errors.ErrInternal("failed to check location existence").Wrap(err)
	}
	if existing != nil {
		return nil, errors.ErrConflict("location already exists").WithDetail("locationId", cmd.LocationID)
	}

	location, events, err := domain.NewLocation(
		cmd.LocationID,
		tc.TenantID,
		tc.WarehouseID,
		cmd.Barcode,
		cmd.Zone,
		cmd.Aisle,
		cmd.Rack,
		cmd.Level,
		cmd.MaxQuantity,
		s.now().UTC(),
	)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.locationRepo.Save(ctx, location, events); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to save location")
		return nil, errors.ErrInternal("failed to save location").Wrap(err)
	}

	s.logger.WithContext(ctx).Info("Created location",
		"locationId", location.LocationID,
		"zone", location.Zone,
		"barcode", location.Barcode,
	)

	return toLocationDTO(location), nil
}

// BlockLocation blocks a location so it stops accepting stock
func (s *LocationService) BlockLocation(ctx context.Context, cmd BlockLocationCommand) (*LocationDTO, error) {
	dto, err := s.mutateLocation(ctx, cmd.LocationID, "failed to block location", func(location *domain.Location) ([]domain.Event, error) {
		return location.Block(cmd.Reason, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.logger.Audit(ctx, "location.block", "Location", cmd.LocationID, tenant.GetUserID(ctx), map[string]any{
		"reason": cmd.Reason,
	})
	return dto, nil
}

// UnblockLocation returns a blocked location to service. The resulting
// status depends on remaining capacity.
func (s *LocationService) UnblockLocation(ctx context.Context, cmd UnblockLocationCommand) (*LocationDTO, error) {
	dto, err := s.mutateLocation(ctx, cmd.LocationID, "failed to unblock location", func(location *domain.Location) ([]domain.Event, error) {
		return location.Unblock(s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.logger.Audit(ctx, "location.unblock", "Location", cmd.LocationID, tenant.GetUserID(ctx), map[string]any{
		"status": dto.Status,
	})
	return dto, nil
}

// GetLocation returns a location by id
func (s *LocationService) GetLocation(ctx context.Context, locationID string) (*LocationDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	location, err := s.loadLocation(ctx, tc.TenantID, locationID)
	if err != nil {
		return nil, mapError(ctx, s.logger, err, "failed to load location")
	}

	return toLocationDTO(location), nil
}

// GetLocationByBarcode returns a location by its scan barcode
func (s *LocationService) GetLocationByBarcode(ctx context.Context, barcode string) (*LocationDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	location, err := s.locationRepo.FindByBarcode(ctx, tc.TenantID, barcode)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to load location by barcode")
		return nil, errors.ErrInternal("failed to load location by barcode").Wrap(err)
	}
	if location == nil {
		return nil, errors.ErrNotFoundWithID("location", barcode)
	}

	return toLocationDTO(location), nil
}

// ListLocations lists locations in a zone
func (s *LocationService) ListLocations(ctx context.Context, query ListLocationsQuery) ([]*LocationDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	if query.Zone == "" {
		return nil, errors.ErrValidation("zone is required")
	}

	locations, err := s.locationRepo.FindByZone(ctx, tc.TenantID, query.Zone, paginationFrom(query.Page, query.PageSize))
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to list locations")
		return nil, errors.ErrInternal("failed to list locations").Wrap(err)
	}

	return toLocationDTOs(locations), nil
}

func (s *LocationService) mutateLocation(ctx context.Context, locationID, failureMessage string, mutate func(*domain.Location) ([]domain.Event, error)) (*LocationDTO, error) {
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized("tenant context is required").Wrap(err)
	}

	var location *domain.Location
	err = resilience.Retry(ctx, versionConflictRetry(), func() error {
		location, err = s.loadLocation(ctx, tc.TenantID, locationID)
		if err != nil {
			return err
		}

		events, err := mutate(location)
		if err != nil {
			return err
		}
		return s.locationRepo.Save(ctx, location, events)
	})
	if err != nil {
		return nil, mapError(ctx, s.logger, err, failureMessage)
	}

	s.logger.WithContext(ctx).Info("Location status changed",
		"locationId", location.LocationID,
		"status", location.Status,
	)

	return toLocationDTO(location), nil
}

func (s *LocationService) loadLocation(ctx context.Context, tenantID, locationID string) (*domain.Location, error) {
	location, err := s.locationRepo.FindByID(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.ErrLocationNotFound
	}
	return location, nil
}
