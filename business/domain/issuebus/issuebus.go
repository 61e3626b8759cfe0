// Package issuebus provides business access to maintenance tickets.
package issuebus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/apartmentbus"
	"github.com/jcpaschoal/propman/business/domain/buildingbus"
	"github.com/jcpaschoal/propman/business/domain/tenancybus"
	"github.com/jcpaschoal/propman/business/sdk/order"
	"github.com/jcpaschoal/propman/business/sdk/page"
	"github.com/jcpaschoal/propman/business/sdk/sqldb"
	"github.com/jcpaschoal/propman/business/types/issuestatus"
	"github.com/jcpaschoal/propman/foundation/logger"
	"github.com/jcpaschoal/propman/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound          = errors.New("issue not found")
	ErrMissingApartment  = errors.New("issue must reference an apartment")
	ErrForbidden         = errors.New("tenant does not occupy this apartment")
	ErrValidation        = errors.New("issue validation failed")
	ErrInvalidTransition = errors.New("invalid issue status transition")
)

// Subjects events are published on.
const (
	SubjectCreated = "issue.created"
	SubjectStatus  = "issue.status"
)

const maxTitle = 200

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, iss Issue) error
	Update(ctx context.Context, iss Issue) error
	QueryByID(ctx context.Context, issueID uuid.UUID) (Issue, error)
	QueryByTenant(ctx context.Context, tenantID uuid.UUID) ([]Issue, error)
	QueryByCompany(ctx context.Context, companyID uuid.UUID, filter QueryFilter, orderBy order.By, page page.Page) ([]Report, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID, filter QueryFilter) (int, error)
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
}

// Core manages the set of APIs for issue access.
type Core struct {
	log          *logger.Logger
	buildingBus  *buildingbus.Core
	apartmentBus *apartmentbus.Core
	tenancyBus   *tenancybus.Core
	publisher    Publisher
	storer       Storer
}

// NewCore constructs an issue core API for use.
func NewCore(log *logger.Logger, buildingBus *buildingbus.Core, apartmentBus *apartmentbus.Core, tenancyBus *tenancybus.Core, publisher Publisher, storer Storer) *Core {
	return &Core{
		log:          log,
		buildingBus:  buildingBus,
		apartmentBus: apartmentBus,
		tenancyBus:   tenancyBus,
		publisher:    publisher,
		storer:       storer,
	}
}

// NewWithTx constructs a new core value that will use the
// specified transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	buildingBus, err := c.buildingBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	apartmentBus, err := c.apartmentBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	tenancyBus, err := c.tenancyBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(c.log, buildingBus, apartmentBus, tenancyBus, c.publisher, storer), nil
}

// Create raises a ticket for the apartment the tenant lives in. A ticket
// without an apartment is rejected outright, and a tenant may only raise
// tickets for the apartment their live ledger entry points at.
func (c *Core) Create(ctx context.Context, tenantID uuid.UUID, ni NewIssue) (Issue, error) {
	ctx, span := otel.AddSpan(ctx, "business.issuebus.create")
	defer span.End()

	if ni.ApartmentID == nil || *ni.ApartmentID == uuid.Nil {
		return Issue{}, ErrMissingApartment
	}

	title := strings.TrimSpace(ni.Title)
	if title == "" || len(title) > maxTitle {
		return Issue{}, fmt.Errorf("title must be 1..%d characters: %w", maxTitle, ErrValidation)
	}

	live, err := c.tenancyBus.QueryLiveByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenancybus.ErrNotFound) {
			return Issue{}, fmt.Errorf("tenantID[%s] has no home: %w", tenantID, ErrForbidden)
		}
		return Issue{}, fmt.Errorf("querylivebytenant: %w", err)
	}

	if live.ApartmentID != *ni.ApartmentID {
		return Issue{}, fmt.Errorf("tenantID[%s] apartmentID[%s]: %w", tenantID, *ni.ApartmentID, ErrForbidden)
	}

	apt, err := c.apartmentBus.QueryByID(ctx, live.ApartmentID)
	if err != nil {
		return Issue{}, fmt.Errorf("querybyid: %w", err)
	}

	now := time.Now()

	iss := Issue{
		ID:              uuid.New(),
		TenantID:        tenantID,
		ApartmentID:     apt.ID,
		BuildingID:      apt.BuildingID,
		Title:           title,
		Description:     strings.TrimSpace(ni.Description),
		Category:        ni.Category,
		Priority:        ni.Priority,
		Status:          issuestatus.Open,
		LocationDetails: strings.TrimSpace(ni.LocationDetails),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := c.storer.Create(ctx, iss); err != nil {
		return Issue{}, fmt.Errorf("create: %w", err)
	}

	evt := CreatedEvent{
		IssueID:     iss.ID,
		BuildingID:  iss.BuildingID,
		ApartmentID: iss.ApartmentID,
		Category:    iss.Category.String(),
		Priority:    iss.Priority.String(),
		CreatedAt:   iss.CreatedAt,
	}
	c.publish(ctx, SubjectCreated, evt)

	return iss, nil
}

// UpdateStatus moves a ticket of a building owned by companyID.
func (c *Core) UpdateStatus(ctx context.Context, companyID uuid.UUID, iss Issue, status issuestatus.Status) (Issue, error) {
	ctx, span := otel.AddSpan(ctx, "business.issuebus.updatestatus")
	defer span.End()

	if _, err := c.buildingBus.QueryOwned(ctx, companyID, iss.BuildingID); err != nil {
		return Issue{}, err
	}

	if !iss.Status.CanTransitionTo(status) {
		return Issue{}, fmt.Errorf("%s -> %s: %w", iss.Status, status, ErrInvalidTransition)
	}

	from := iss.Status

	iss.Status = status
	iss.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, iss); err != nil {
		return Issue{}, fmt.Errorf("update: %w", err)
	}

	evt := StatusEvent{
		IssueID:    iss.ID,
		BuildingID: iss.BuildingID,
		From:       from.String(),
		To:         status.String(),
		UpdatedAt:  iss.UpdatedAt,
	}
	c.publish(ctx, SubjectStatus, evt)

	return iss, nil
}

// QueryByID finds the issue by the specified ID.
func (c *Core) QueryByID(ctx context.Context, issueID uuid.UUID) (Issue, error) {
	ctx, span := otel.AddSpan(ctx, "business.issuebus.querybyid")
	defer span.End()

	iss, err := c.storer.QueryByID(ctx, issueID)
	if err != nil {
		return Issue{}, fmt.Errorf("query: issueID[%s]: %w", issueID, err)
	}

	return iss, nil
}

// QueryOwned finds the issue and confirms companyID owns its building.
func (c *Core) QueryOwned(ctx context.Context, companyID uuid.UUID, issueID uuid.UUID) (Issue, error) {
	iss, err := c.QueryByID(ctx, issueID)
	if err != nil {
		return Issue{}, err
	}

	if _, err := c.buildingBus.QueryOwned(ctx, companyID, iss.BuildingID); err != nil {
		return Issue{}, err
	}

	return iss, nil
}

// QueryByTenant lists the tickets a tenant raised, newest first.
func (c *Core) QueryByTenant(ctx context.Context, tenantID uuid.UUID) ([]Issue, error) {
	ctx, span := otel.AddSpan(ctx, "business.issuebus.querybytenant")
	defer span.End()

	issues, err := c.storer.QueryByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query: tenantID[%s]: %w", tenantID, err)
	}

	return issues, nil
}

// QueryByCompany lists tickets of apartments in buildings owned by
// companyID. Tickets of other companies never appear.
func (c *Core) QueryByCompany(ctx context.Context, companyID uuid.UUID, filter QueryFilter, orderBy order.By, page page.Page) ([]Report, error) {
	ctx, span := otel.AddSpan(ctx, "business.issuebus.querybycompany")
	defer span.End()

	reports, err := c.storer.QueryByCompany(ctx, companyID, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: companyID[%s]: %w", companyID, err)
	}

	return reports, nil
}

// CountByCompany returns the total number of tickets QueryByCompany would
// page over.
func (c *Core) CountByCompany(ctx context.Context, companyID uuid.UUID, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.issuebus.countbycompany")
	defer span.End()

	return c.storer.CountByCompany(ctx, companyID, filter)
}

// Events are best effort: the ticket is already committed.
func (c *Core) publish(ctx context.Context, subject string, event any) {
	if err := c.publisher.Publish(ctx, subject, event); err != nil {
		c.log.Warn(ctx, "publish event", "subject", subject, "ERROR", err)
	}
}
