package state

import "loopwise-go/internal/models"

// SetSuggestions replaces the list, dropping anything already resolved.
func SetSuggestions(s *models.AppState, suggestions []models.AiSuggestion) {
	kept := make([]models.AiSuggestion, 0, len(suggestions))
	for _, sug := range suggestions {
		if !s.ResolvedSuggestions[sug.Id] {
			kept = append(kept, sug)
		}
	}
	s.Suggestions = kept
}

// ResolveSuggestion removes a suggestion and remembers its id.
func ResolveSuggestion(s *models.AppState, id string) (models.AiSuggestion, bool) {
	if s.ResolvedSuggestions == nil {
		s.ResolvedSuggestions = map[string]bool{}
	}
	s.ResolvedSuggestions[id] = true

	for i, sug := range s.Suggestions {
		if sug.Id == id {
			s.Suggestions = append(s.Suggestions[:i:i], s.Suggestions[i+1:]...)
			return sug, true
		}
	}
	return models.AiSuggestion{}, false
}

// ApplySuggestion resolves the suggestion and performs its effect. Only
// low-usage cancellations change a subscription; it reports whether one did.
func ApplySuggestion(s *models.AppState, sug models.AiSuggestion) bool {
	ResolveSuggestion(s, sug.Id)
	if sug.Type != models.SuggestionCancelLowUsage || sug.SubscriptionId == "" {
		return false
	}
	sub := FindSubscription(s, sug.SubscriptionId)
	if sub == nil {
		return false
	}
	sub.Status = models.SubscriptionCancelled
	return true
}
