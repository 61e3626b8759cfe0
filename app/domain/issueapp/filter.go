package issueapp

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/app/sdk/errs"
	"github.com/jcpaschoal/propman/business/domain/issuebus"
	"github.com/jcpaschoal/propman/business/types/category"
	"github.com/jcpaschoal/propman/business/types/issuestatus"
	"github.com/jcpaschoal/propman/business/types/priority"
)

type queryParams struct {
	Page             string
	Rows             string
	OrderBy          string
	BuildingID       string
	ApartmentID      string
	Status           string
	Priority         string
	Category         string
	StartCreatedDate string
	EndCreatedDate   string
}

func parseQueryParams(r *http.Request) queryParams {
	values := r.URL.Query()

	return queryParams{
		Page:             values.Get("page"),
		Rows:             values.Get("rows"),
		OrderBy:          values.Get("orderBy"),
		BuildingID:       values.Get("building_id"),
		ApartmentID:      values.Get("apartment_id"),
		Status:           values.Get("status"),
		Priority:         values.Get("priority"),
		Category:         values.Get("category"),
		StartCreatedDate: values.Get("start_created_date"),
		EndCreatedDate:   values.Get("end_created_date"),
	}
}

func parseFilter(qp queryParams) (issuebus.QueryFilter, error) {
	var fieldErrors errs.FieldErrors
	var filter issuebus.QueryFilter

	if qp.BuildingID != "" {
		id, err := uuid.Parse(qp.BuildingID)
		switch err {
		case nil:
			filter.BuildingID = &id
		default:
			fieldErrors.Add("building_id", err)
		}
	}

	if qp.ApartmentID != "" {
		id, err := uuid.Parse(qp.ApartmentID)
		switch err {
		case nil:
			filter.ApartmentID = &id
		default:
			fieldErrors.Add("apartment_id", err)
		}
	}

	if qp.Status != "" {
		st, err := issuestatus.Parse(qp.Status)
		switch err {
		case nil:
			filter.Status = &st
		default:
			fieldErrors.Add("status", err)
		}
	}

	if qp.Priority != "" {
		p, err := priority.Parse(qp.Priority)
		switch err {
		case nil:
			filter.Priority = &p
		default:
			fieldErrors.Add("priority", err)
		}
	}

	if qp.Category != "" {
		c, err := category.Parse(qp.Category)
		switch err {
		case nil:
			filter.Category = &c
		default:
			fieldErrors.Add("category", err)
		}
	}

	if qp.StartCreatedDate != "" {
		t, err := time.Parse(time.RFC3339, qp.StartCreatedDate)
		switch err {
		case nil:
			filter.StartCreatedAt = &t
		default:
			fieldErrors.Add("start_created_date", err)
		}
	}

	if qp.EndCreatedDate != "" {
		t, err := time.Parse(time.RFC3339, qp.EndCreatedDate)
		switch err {
		case nil:
			filter.EndCreatedAt = &t
		default:
			fieldErrors.Add("end_created_date", err)
		}
	}

	if fieldErrors != nil {
		return issuebus.QueryFilter{}, fieldErrors.ToError()
	}

	return filter, nil
}
