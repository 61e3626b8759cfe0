package issueapp

import "github.com/jcpaschoal/propman/business/domain/issuebus"

var orderByFields = map[string]string{
	"created_at":       issuebus.OrderByCreatedAt,
	"priority":         issuebus.OrderByPriority,
	"status":           issuebus.OrderByStatus,
	"building":         issuebus.OrderByBuilding,
	"apartment_number": issuebus.OrderByApartment,
	"title":            issuebus.OrderByTitle,
}
