package tenancydb

import (
	"bytes"
	"strings"

	"github.com/jcpaschoal/propman/business/domain/tenancybus"
)

func applyFilter(filter tenancybus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.BuildingID != nil {
		data["building_id"] = filter.BuildingID.String()
		wc = append(wc, "b.id = :building_id")
	}

	if filter.Status != nil {
		data["status"] = filter.Status.String()
		wc = append(wc, "t.status = :status")
	}

	if len(wc) > 0 {
		buf.WriteString(" AND ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}
