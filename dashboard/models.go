package dashboard

type DashboardStats struct {
	TotalRecords  int64  `json:"total_records"`
	UniqueClients int64  `json:"unique_clients"`
	UniqueDomains int64  `json:"unique_domains"`
	First         string `json:"first,omitempty"`
	Last          string `json:"last,omitempty"`
}

type QueryTypeStats struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type ResponseCodeStats struct {
	Code  string `json:"code"`
	Count int64  `json:"count"`
}

type TopDomain struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

type TopClient struct {
	IP    string `json:"ip"`
	Count int64  `json:"count"`
}

type TimelinePoint struct {
	Time  string `json:"time"`
	Count int64  `json:"count"`
}
