package model

import "strings"

// EntityType classifies a detected entity. The values match the labels
// produced by the upstream named-entity recognizer.
type EntityType string

const (
	TypePerson    EntityType = "PERSON"      // People, including fictional
	TypeOrg       EntityType = "ORG"         // Organizations, companies, institutions
	TypeGPE       EntityType = "GPE"         // Geopolitical entities (countries, cities)
	TypeLocation  EntityType = "LOC"         // Non-GPE locations (mountains, rivers)
	TypeEvent     EntityType = "EVENT"       // Named events (battles, ceremonies)
	TypeWorkOfArt EntityType = "WORK_OF_ART" // Titles of books, songs, paintings
	TypeFacility  EntityType = "FAC"         // Buildings, airports, highways
	TypeGroup     EntityType = "NORP"        // Nationalities, religious/political groups
	TypeLanguage  EntityType = "LANGUAGE"    // Named languages
	TypeMisc      EntityType = "MISC"        // Generic default
)

// ParseEntityType normalizes a recognizer label to an EntityType,
// falling back to TypeMisc for anything unknown.
func ParseEntityType(label string) EntityType {
	switch t := EntityType(strings.ToUpper(strings.TrimSpace(label))); t {
	case TypePerson, TypeOrg, TypeGPE, TypeLocation, TypeEvent,
		TypeWorkOfArt, TypeFacility, TypeGroup, TypeLanguage:
		return t
	default:
		return TypeMisc
	}
}

// Entity is one detected entity span handed over by the recognizer.
type Entity struct {
	Text string     `json:"text"`
	Type EntityType `json:"type"`
}
