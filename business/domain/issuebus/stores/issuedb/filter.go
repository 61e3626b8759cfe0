package issuedb

import (
	"bytes"
	"strings"

	"github.com/jcpaschoal/propman/business/domain/issuebus"
)

func applyFilter(filter issuebus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.BuildingID != nil {
		data["building_id"] = filter.BuildingID.String()
		wc = append(wc, "b.id = :building_id")
	}

	if filter.ApartmentID != nil {
		data["apartment_id"] = filter.ApartmentID.String()
		wc = append(wc, "a.id = :apartment_id")
	}

	if filter.Status != nil {
		data["status"] = filter.Status.String()
		wc = append(wc, "i.status = :status")
	}

	if filter.Priority != nil {
		data["priority"] = filter.Priority.String()
		wc = append(wc, "i.priority = :priority")
	}

	if filter.Category != nil {
		data["category"] = filter.Category.String()
		wc = append(wc, "i.category = :category")
	}

	if filter.StartCreatedAt != nil {
		data["start_created_at"] = filter.StartCreatedAt.UTC()
		wc = append(wc, "i.created_at >= :start_created_at")
	}

	if filter.EndCreatedAt != nil {
		data["end_created_at"] = filter.EndCreatedAt.UTC()
		wc = append(wc, "i.created_at <= :end_created_at")
	}

	if len(wc) > 0 {
		buf.WriteString(" AND ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}
