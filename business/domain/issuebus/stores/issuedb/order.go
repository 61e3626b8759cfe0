package issuedb

import (
	"fmt"

	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/sdk/order"
)

var orderByFields = map[string]string{
	issuebus.OrderByCreatedAt: "i.created_at",
	issuebus.OrderByPriority:  "i.priority",
	issuebus.OrderByStatus:    "i.status",
	issuebus.OrderByBuilding:  "b.name",
	issuebus.OrderByApartment: "a.apartment_number",
	issuebus.OrderByTitle:     "i.title",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return by + " " + orderBy.Direction, nil
}
