package schedule

import "strings"

// EmployeeCompany resolves the company an employee belongs to. Records coming from different
// endpoints use companyId, company_id or a nested company object; they are tried in that order.
func EmployeeCompany(e Employee) ID {
	switch {
	case !e.CompanyID.IsZero():
		return e.CompanyID
	case !e.CompanyIDSnake.IsZero():
		return e.CompanyIDSnake
	case e.Company != nil && !e.Company.ID.IsZero():
		return e.Company.ID
	}
	return ""
}

// MatchesSearch does a case-insensitive substring match on the employee name, email and position.
func (e Employee) MatchesSearch(search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, field := range []string{e.FullName(), e.LastName + " " + e.FirstName, e.Email, e.Position} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// FilterEmployees keeps the employees of the selected companies matching the search text.
// An empty company selection matches nobody.
func FilterEmployees(employees []Employee, filter EmployeeFilter) []Employee {
	out := make([]Employee, 0)
	if filter.CompanyIDs.Len() == 0 {
		return out
	}
	for _, e := range employees {
		if filter.CompanyIDs.Has(EmployeeCompany(e)) && e.MatchesSearch(filter.Search) {
			out = append(out, e)
		}
	}
	return out
}

// EmployeeIDsForCompany lists the ids of the employees belonging to companyID.
func EmployeeIDsForCompany(employees []Employee, companyID ID) IDSet {
	ids := IDSet{}
	for _, e := range employees {
		if EmployeeCompany(e) == companyID {
			ids = ids.Add(e.ID)
		}
	}
	return ids
}

// FindEmployee looks an employee up by id.
func FindEmployee(employees []Employee, id ID) (Employee, bool) {
	for _, e := range employees {
		if e.ID == id {
			return e, true
		}
	}
	return Employee{}, false
}
