package dto

// FacilityQuery holds the optional ListFacilities filters, bound from query
// parameters.
type FacilityQuery struct {
	Division string `form:"division"`
	State    string `form:"state"`
	Status   string `form:"status"`
}

// ExpansionQuery holds the optional inclusive date bounds for ListExpansions.
type ExpansionQuery struct {
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

// JobsQuery holds the optional ListJobs filter.
type JobsQuery struct {
	FactoryOnly bool `form:"factory_only"`
}
