package models

// FeatureLimits числовые и булевы лимиты тарифа.
type FeatureLimits struct {
	MaxActiveProspects        int  `json:"max_active_prospects"`
	MaxArchivedProspects      int  `json:"max_archived_prospects"`
	MaxDatesPerProspect       int  `json:"max_dates_per_prospect"`
	HasCompatibilityBreakdown bool `json:"has_compatibility_breakdown"`
	HasDataExport             bool `json:"has_data_export"`
	HasCloudSync              bool `json:"has_cloud_sync"`
	HasDatingRecaps           bool `json:"has_dating_recaps"`
}

// DateLimit результат проверки лимита свиданий для проспекта.
type DateLimit struct {
	CanAddDate bool `json:"can_add_date"`
	DateCount  int  `json:"date_count"`
	DateLimit  int  `json:"date_limit"`
}
