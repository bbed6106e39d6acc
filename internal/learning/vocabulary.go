package learning

import (
	"kidlingo-service/internal/domain"
	"kidlingo-service/internal/querycache"
)

// Categories shown on the dashboard, in display order.
var Categories = []domain.Category{
	{ID: "Animals", Name: "Animals", Emoji: "🐾"},
	{ID: "Colors", Name: "Colors", Emoji: "🎨"},
	{ID: "Numbers", Name: "Numbers", Emoji: "🔢"},
	{ID: "Family", Name: "Family", Emoji: "👨‍👩‍👧‍👦"},
	{ID: "Food", Name: "Food", Emoji: "🍎"},
}

// IsCategory reports whether id names one of the dashboard categories.
func IsCategory(id string) bool {
	for _, c := range Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// WordsKey is the query cache key of a category's word list.
func WordsKey(category string) string {
	return querycache.Key("words", category)
}

var defaultVocabulary = map[string][][2]string{
	"Animals": {{"Dog", "Perro"}, {"Cat", "Gato"}, {"Bird", "Pájaro"}, {"Fish", "Pez"}, {"Horse", "Caballo"}, {"Cow", "Vaca"}},
	"Colors":  {{"Red", "Rojo"}, {"Blue", "Azul"}, {"Green", "Verde"}, {"Yellow", "Amarillo"}, {"Black", "Negro"}},
	"Numbers": {{"One", "Uno"}, {"Two", "Dos"}, {"Three", "Tres"}, {"Four", "Cuatro"}, {"Five", "Cinco"}},
	"Family":  {{"Mother", "Madre"}, {"Father", "Padre"}, {"Sister", "Hermana"}, {"Brother", "Hermano"}, {"Grandmother", "Abuela"}},
	"Food":    {{"Apple", "Manzana"}, {"Banana", "Plátano"}, {"Bread", "Pan"}, {"Milk", "Leche"}, {"Cheese", "Queso"}},
}

// DefaultVocabulary returns the seed words, grouped by category in display order.
func DefaultVocabulary() []domain.Word {
	var words []domain.Word
	for _, c := range Categories {
		for _, pair := range defaultVocabulary[c.ID] {
			words = append(words, domain.Word{Text: pair[0], Translation: pair[1], Category: c.ID})
		}
	}
	return words
}
