// Package blueprint produces build plans: the raw task lists handed to the
// graph builder. Plans come from built-in templates or from YAML files on
// disk.
package blueprint

import (
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

// Residential returns the standard single-family build plan. Owners match
// the trades the crew roster staffs; equipment names match the site's
// shared gear.
func Residential() []taskgraph.RawTask {
	return []taskgraph.RawTask{
		{
			ID:          "site-survey",
			Owner:       "surveyor",
			Phase:       "sitework",
			Description: "Stake the lot and record grades",
		},
		{
			ID:          "design-approval",
			Owner:       "architect",
			Phase:       "design",
			Description: "Finalize drawings and owner sign-off",
			DependsOn:   []string{"site-survey"},
		},
		{
			ID:          "building-permit",
			Owner:       "expeditor",
			Phase:       "permits",
			Description: "File the building permit",
			DependsOn:   []string{"design-approval"},
		},
		{
			ID:          "excavation",
			Owner:       "excavator",
			Phase:       "sitework",
			Description: "Dig to footing depth and rough-grade",
			DependsOn:   []string{"building-permit"},
			Equipment:   []string{"excavator"},
		},
		{
			ID:          "footings",
			Owner:       "mason",
			Phase:       "foundation",
			Description: "Form and pour footings",
			DependsOn:   []string{"excavation"},
			Equipment:   []string{"concrete-pump"},
		},
		{
			ID:          "foundation-walls",
			Owner:       "mason",
			Phase:       "foundation",
			Description: "Pour foundation walls and cure",
			DependsOn:   []string{"footings"},
			Equipment:   []string{"concrete-pump"},
		},
		{
			ID:          "framing",
			Owner:       "carpenter",
			Phase:       "framing",
			Description: "Frame floors, walls and ceilings",
			DependsOn:   []string{"foundation-walls"},
			Equipment:   []string{"crane"},
		},
		{
			ID:          "roof-deck",
			Owner:       "carpenter",
			Phase:       "roof-deck",
			Description: "Sheath the roof",
			DependsOn:   []string{"framing"},
			Equipment:   []string{"crane"},
		},
		{
			ID:          "roofing",
			Owner:       "roofer",
			Phase:       "roofing",
			Description: "Underlayment and shingles",
			DependsOn:   []string{"roof-deck"},
			Equipment:   []string{"crane"},
		},
		{
			ID:          "windows-doors",
			Owner:       "carpenter",
			Phase:       "exterior",
			Description: "Set windows and exterior doors",
			DependsOn:   []string{"framing"},
		},
		{
			ID:          "rough-plumbing",
			Owner:       "plumber",
			Phase:       "plumbing",
			Description: "Run supply and drain lines",
			DependsOn:   []string{"framing"},
		},
		{
			ID:          "rough-electrical",
			Owner:       "electrician",
			Phase:       "electrical",
			Description: "Pull wire and set the panel",
			DependsOn:   []string{"framing"},
		},
		{
			ID:          "hvac-ducts",
			Owner:       "hvac-tech",
			Phase:       "hvac",
			Description: "Install trunk and branch ducts",
			DependsOn:   []string{"framing"},
		},
		{
			ID:          "inspection-rough",
			Owner:       "inspector",
			Phase:       "inspection",
			Description: "Rough-in inspection of all systems",
			DependsOn:   []string{"roofing", "windows-doors", "rough-plumbing", "rough-electrical", "hvac-ducts"},
		},
		{
			ID:          "insulation",
			Owner:       "carpenter",
			Phase:       "insulation",
			Description: "Batt insulation in walls and attic",
			DependsOn:   []string{"inspection-rough"},
		},
		{
			ID:          "drywall",
			Owner:       "carpenter",
			Phase:       "drywall",
			Description: "Hang, tape and sand drywall",
			DependsOn:   []string{"insulation"},
		},
		{
			ID:          "paint",
			Owner:       "painter",
			Phase:       "paint",
			Description: "Prime and paint interior",
			DependsOn:   []string{"drywall"},
		},
		{
			ID:          "trim-finish",
			Owner:       "carpenter",
			Phase:       "trim",
			Description: "Casings, baseboard and interior doors",
			DependsOn:   []string{"paint"},
		},
		{
			ID:          "fixtures-plumbing",
			Owner:       "plumber",
			Phase:       "fixtures-plumbing",
			Description: "Set sinks and finish plumbing",
			DependsOn:   []string{"trim-finish"},
		},
		{
			ID:          "fixtures-electrical",
			Owner:       "electrician",
			Phase:       "fixtures-electrical",
			Description: "Install fixtures and devices",
			DependsOn:   []string{"trim-finish"},
		},
		{
			ID:          "final-inspection",
			Owner:       "inspector",
			Phase:       "inspection",
			Description: "Final inspection and certificate of occupancy",
			DependsOn:   []string{"fixtures-plumbing", "fixtures-electrical"},
		},
		{
			ID:          "closeout",
			Owner:       "expeditor",
			Phase:       "closeout",
			Description: "Punch list, warranties and handover",
			DependsOn:   []string{"final-inspection"},
		},
	}
}
