package models

// HealthAggregate is the raw per-owner aggregation produced by the record store.
type HealthAggregate struct {
	AvgHealth       float64 `bson:"avgHealth"`
	TotalRecords    int64   `bson:"totalRecords"`
	VerifiedRecords int64   `bson:"verifiedRecords"`
}

// HealthSummary is the user-facing rollup served by the health endpoint.
type HealthSummary struct {
	AverageHealthScore int   `json:"averageHealthScore"`
	TotalRecords       int64 `json:"totalRecords"`
	VerifiedRecords    int64 `json:"verifiedRecords"`
	VerificationRate   int   `json:"verificationRate"`
}
