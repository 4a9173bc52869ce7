package features

// Template names accepted by ApplyTemplate.
const (
	TemplateBasic    = "basic"
	TemplateAdvanced = "advanced"
)

// TemplateAssignments expands a named preset into a complete assignment
// list, one entry per catalog feature. "basic" enables the basic group only;
// "advanced" enables everything.
func TemplateAssignments(name string) ([]Assignment, bool) {
	switch name {
	case TemplateBasic:
		out := make([]Assignment, 0, len(catalogItems))
		for _, item := range catalogItems {
			out = append(out, Assignment{FeatureKey: item.FeatureKey, Allowed: item.Group == GroupBasic})
		}
		return out, true
	case TemplateAdvanced:
		out := make([]Assignment, 0, len(catalogItems))
		for _, item := range catalogItems {
			out = append(out, Assignment{FeatureKey: item.FeatureKey, Allowed: true})
		}
		return out, true
	default:
		return nil, false
	}
}
