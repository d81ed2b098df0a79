package domain

// FallbackProjects returns the fixed dataset shown whenever the remote source
// is unavailable. Each call returns a fresh slice.
//
// The set spans all three tiers, carries real city coordinates, and has one
// project with open critical issues.
func FallbackProjects() []ProjectRecord {
	return []ProjectRecord{
		fallbackProject("1", "Hospital de Leiria", "Leiria", 39.7436, -8.8070, 92, 0),
		fallbackProject("2", "Edifício Porto", "Porto", 41.1579, -8.6291, 68, 0),
		fallbackProject("3", "Escola Lisboa", "Lisboa", 38.7223, -9.1393, 45, 12),
		fallbackProject("4", "Habitação Coimbra", "Coimbra", 40.2033, -8.4103, 88, 0),
	}
}

func fallbackProject(id, name, location string, lat, lng float64, score, critical int) ProjectRecord {
	return ProjectRecord{
		ID:                 id,
		Name:               name,
		Location:           location,
		Coordinates:        Coordinates{Lat: lat, Lng: lng},
		ComplianceScore:    score,
		CriticalIssueCount: critical,
		CoordinatesSource:  ProvenanceFallback,
		LocationSource:     ProvenanceFallback,
	}
}
