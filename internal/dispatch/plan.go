package dispatch

type JobPlan struct {
	DurationMin int      `json:"duration_min"`
	Priority    string   `json:"priority"`
	RouteTags   []string `json:"route_tags"`
}

// longSymptoms are the diagnoses that historically run past a standard visit.
var longSymptoms = map[string]bool{
	"leak":     true,
	"frozen":   true,
	"no_power": true,
}

// PlanJob sizes the visit from the reported symptom.
func PlanJob(symptom string) JobPlan {
	duration := 60
	if longSymptoms[symptom] {
		duration = 90
	}
	return JobPlan{
		DurationMin: duration,
		Priority:    "SOON",
		RouteTags:   []string{"hvac", "diag"},
	}
}

type PriceEstimate struct {
	RangeLow      int    `json:"range_low"`
	RangeHigh     int    `json:"range_high"`
	Note          string `json:"note"`
	VisitFee      int    `json:"visit_fee"`
	AfterHoursFee int    `json:"after_hours_fee"`
}

// EstimatePrice quotes a flat diagnostic range plus the zone's visit fees.
// ZIPs outside the service area fall back to the core-zone fees.
func EstimatePrice(zm ZoneMap, zip string) PriceEstimate {
	est := PriceEstimate{
		RangeLow:      140,
		RangeHigh:     420,
		Note:          "Parts not included",
		VisitFee:      89,
		AfterHoursFee: 49,
	}
	if zip != "" {
		if _, zone, ok := zm.FindZone(zip); ok {
			est.VisitFee = zone.VisitFee
			est.AfterHoursFee = zone.AfterHoursFee
		}
	}
	return est
}
