package orchestrator

// Profile is the runner-mode profile document tree: groups of services,
// each carrying the dimension values to fill. Loaded by the profile loader
// collaborator; the orchestrator only ever reads it.
type Profile struct {
	Groups []ProfileGroup `yaml:"groups"`
}

// ProfileGroup is one named group of services in a profile.
type ProfileGroup struct {
	Name     string           `yaml:"name"`
	Services []ProfileService `yaml:"services"`
}

// ProfileService is one service's dimension values within a group.
type ProfileService struct {
	Name       string                  `yaml:"name"`
	ServiceID  string                  `yaml:"service_id"`
	Dimensions []ProfileDimensionValue `yaml:"dimensions"`
}

// ProfileDimensionValue is the value a profile assigns to one dimension.
// Required mirrors the catalog's declared requiredness when the catalog
// lookup has no entry for this key (e.g. a profile referencing a dimension
// the catalog hasn't been regenerated for yet).
type ProfileDimensionValue struct {
	Key      string `yaml:"key"`
	Value    string `yaml:"value"`
	Required bool   `yaml:"required"`
}

// ApplyOverride applies one "--set group.service.dimension=value" override
// onto profile in place. An override naming a group, service, or dimension
// absent from the profile is a no-op — --set only overrides existing
// values, it does not graft new services onto a profile.
func ApplyOverride(profile *Profile, groupName, serviceName, dimensionKey, value string) {
	for gi := range profile.Groups {
		if profile.Groups[gi].Name != groupName {
			continue
		}
		for si := range profile.Groups[gi].Services {
			svc := &profile.Groups[gi].Services[si]
			if svc.Name != serviceName {
				continue
			}
			for di := range svc.Dimensions {
				if svc.Dimensions[di].Key == dimensionKey {
					svc.Dimensions[di].Value = value
					return
				}
			}
		}
	}
}
