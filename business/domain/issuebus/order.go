package issuebus

import "github.com/jcpaschoal/propman/business/sdk/order"

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByCreatedAt, order.DESC)

// Set of fields that the results can be ordered by.
const (
	OrderByCreatedAt = "a"
	OrderByPriority  = "b"
	OrderByStatus    = "c"
	OrderByBuilding  = "d"
	OrderByApartment = "e"
	OrderByTitle     = "f"
)
