package issuebus

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/types/category"
	"github.com/jcpaschoal/propman/business/types/issuestatus"
	"github.com/jcpaschoal/propman/business/types/priority"
)

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	BuildingID     *uuid.UUID
	ApartmentID    *uuid.UUID
	Status         *issuestatus.Status
	Priority       *priority.Priority
	Category       *category.Category
	StartCreatedAt *time.Time
	EndCreatedAt   *time.Time
}
