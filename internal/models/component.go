package models

// componentLabels are the human readable names of the companion text fields.
var componentLabels = map[string]string{
	ComponentFullAddress: "Full Address",
	ComponentStreet:      "Street",
	ComponentNumber:      "Number",
	ComponentCity:        "City",
	ComponentPostCode:    "Post Code",
	ComponentCountry:     "Country",
	ComponentState:       "State",
	ComponentLat:         "Latitude",
	ComponentLng:         "Longitude",
}

// CompanionField is a plain text field mirroring one component of a location
// field, so page builders can bind to e.g. the city alone.
type CompanionField struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// CompanionGroup is the auto-generated group holding the companion fields of one location field.
type CompanionGroup struct {
	Key    string           `json:"key"`
	Title  string           `json:"title"`
	Fields []CompanionField `json:"fields"`
}

// CompanionGroupKey returns the key of the companion group for a location field name.
func CompanionGroupKey(fieldName string) string {
	return "group_ofm_location_" + fieldName + "_components"
}

// MetaKey returns the storage key of one component of a location field.
func MetaKey(fieldName, component string) string {
	return fieldName + "_" + component
}

// CompanionFields builds the companion group for the location field identified by fieldKey/fieldName.
func CompanionFields(fieldKey, fieldName, label string) CompanionGroup {
	fields := make([]CompanionField, 0, len(Components))
	for _, c := range Components {
		fields = append(fields, CompanionField{
			Key:   MetaKey(fieldKey, c),
			Name:  MetaKey(fieldName, c),
			Label: label + " - " + componentLabels[c],
			Type:  "text",
		})
	}
	return CompanionGroup{
		Key:    CompanionGroupKey(fieldName),
		Title:  label + " (Components)",
		Fields: fields,
	}
}

// FieldRef identifies a location field: Key is the stable field key, Name
// the name its values are stored under.
type FieldRef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}
