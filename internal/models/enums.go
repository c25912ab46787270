package models

// Canonical enumerations shared by the admin form (write path), record validation and
// the search filter inputs (read path). Stored values are compared byte for byte, so
// every option list in the system must come from here.
var (
	CodeTitles = []string{
		"Title 1: Constitution & Founding Acts",
		"Title 2: Criminal Law",
		"Title 3: Civil & Commercial Law",
		"Title 4: Labour Law",
		"Title 5: Taxation",
		"Title 6: National Security",
		"Title 7: Health & Education",
		"Title 8: Public Order & Internal Affairs",
	}

	FederalLawStatuses = []string{"Active", "Repealed", "Pending"}
	ExecutiveStatuses  = []string{"Current", "Superseded", "Expired"}
	JudicialStatuses   = []string{"Final", "Appealed", "Pending"}
	TreatyStatuses     = []string{"Active", "Superseded", "Pending"}

	Courts      = []string{"Supreme Court", "Regional Courts", "Arbitration Courts"}
	CaseTypes   = []string{"Criminal", "Civil", "Administrative"}
	TreatyKinds = []string{"Treaty", "Resolution"}
)

// StatusesFor returns the status enumeration of a variant.
func StatusesFor(t DocType) []string {
	switch t {
	case TypeFederalLaw:
		return FederalLawStatuses
	case TypeExecutiveDocument:
		return ExecutiveStatuses
	case TypeJudicialDocument:
		return JudicialStatuses
	case TypeTreatyResolution:
		return TreatyStatuses
	}
	return nil
}

// OneOf reports whether value is exactly one of options.
func OneOf(value string, options []string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
