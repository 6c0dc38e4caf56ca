package enrich

import (
	"strings"

	"github.com/mkravets/erudite/internal/model"
)

// Keyword lexicons for cultural-significance classification. Matching is a
// plain substring check over lowercased text, in the listed order.
var (
	mythologicalWords  = []string{"mythology", "mythological", "folklore", "legend"}
	historicalWords    = []string{"ancient", "classical", "medieval", "historical"}
	philosophicalWords = []string{"philosophy", "philosophical", "philosopher"}
	religiousWords     = []string{"religion", "religious", "spiritual", "sacred"}
	literaryCatWords   = []string{"literature", "literary", "novel", "poetry"}
)

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// classifySignificance derives the thematic category of a merged record.
// Precedence: literary-catalog data, then knowledge-graph type tags, then
// keyword search over the merged text, then the entity type.
func classifySignificance(entityType model.EntityType, hasLiterary bool, typeTags []string, text string) model.Significance {
	if hasLiterary {
		return model.SignificanceLiterary
	}

	tags := strings.ToLower(strings.Join(typeTags, " "))
	switch {
	case strings.Contains(tags, "book") || strings.Contains(tags, "creativework"):
		return model.SignificanceLiterary
	case strings.Contains(tags, "person"):
		return model.SignificanceBiographical
	case strings.Contains(tags, "place"):
		return model.SignificanceGeographical
	case strings.Contains(tags, "event"):
		return model.SignificanceHistorical
	}

	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, mythologicalWords):
		return model.SignificanceMythological
	case containsAny(lower, historicalWords):
		return model.SignificanceHistorical
	case containsAny(lower, philosophicalWords):
		return model.SignificancePhilosophical
	case containsAny(lower, religiousWords):
		return model.SignificanceReligious
	}

	return significanceForType(entityType)
}

// classifyFromCategories derives significance from encyclopedia category
// names, used by the fallback enricher.
func classifyFromCategories(entityType model.EntityType, categories []string) model.Significance {
	text := strings.ToLower(strings.Join(categories, " "))
	switch {
	case containsAny(text, mythologicalWords[:3]): // "legend" turns up in far too many non-myth category names
		return model.SignificanceMythological
	case containsAny(text, historicalWords[:3]): // "historical" alone is too common in category names
		return model.SignificanceHistorical
	case containsAny(text, literaryCatWords):
		return model.SignificanceLiterary
	case containsAny(text, philosophicalWords):
		return model.SignificancePhilosophical
	case containsAny(text, religiousWords):
		return model.SignificanceReligious
	}

	return significanceForType(entityType)
}

// significanceForType is the last-resort mapping from entity type alone.
func significanceForType(entityType model.EntityType) model.Significance {
	switch entityType {
	case model.TypeWorkOfArt:
		return model.SignificanceArtistic
	case model.TypePerson, model.TypeOrg:
		return model.SignificanceBiographical
	case model.TypeGPE, model.TypeLocation:
		return model.SignificanceGeographical
	default:
		return model.SignificanceGeneral
	}
}
