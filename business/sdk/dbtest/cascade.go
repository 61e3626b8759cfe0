package dbtest

import "github.com/google/uuid"

// The delete helpers mirror the ON DELETE rules of the schema. Callers hold
// db.mu.

func (s state) deleteUser(userID uuid.UUID) {
	for id, b := range s.buildings {
		if b.CompanyID == userID {
			s.deleteBuilding(id)
		}
	}

	for id, t := range s.tenancies {
		switch {
		case t.TenantID == userID:
			delete(s.tenancies, id)
		case t.InvitedBy == userID:
			t.InvitedBy = uuid.Nil
			s.tenancies[id] = t
		}
	}

	for id, inv := range s.invitations {
		if inv.InvitedBy == userID {
			delete(s.invitations, id)
		}
	}

	for id, iss := range s.issues {
		if iss.TenantID == userID {
			delete(s.issues, id)
		}
	}

	delete(s.users, userID)
}

func (s state) deleteBuilding(buildingID uuid.UUID) {
	for id, apt := range s.apartments {
		if apt.BuildingID == buildingID {
			s.deleteApartment(id)
		}
	}

	for id, inv := range s.invitations {
		if inv.BuildingID == buildingID {
			delete(s.invitations, id)
		}
	}

	for id, iss := range s.issues {
		if iss.BuildingID == buildingID {
			delete(s.issues, id)
		}
	}

	delete(s.buildings, buildingID)
}

func (s state) deleteApartment(apartmentID uuid.UUID) {
	for id, t := range s.tenancies {
		if t.ApartmentID == apartmentID {
			delete(s.tenancies, id)
		}
	}

	for id, inv := range s.invitations {
		if inv.ApartmentID == apartmentID {
			delete(s.invitations, id)
		}
	}

	for id, iss := range s.issues {
		if iss.ApartmentID == apartmentID {
			delete(s.issues, id)
		}
	}

	delete(s.apartments, apartmentID)
}
