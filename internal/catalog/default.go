package catalog

import "strings"

var (
	CharacterTypes = []string{"man", "woman", "animal", "blob", "robot"}
	StyleTypes     = []string{"realistic", "pixar", "cartoony", "figurative", "toy"}

	// Topics in display order.
	Topics = []string{
		"sales_type", "friend_type", "coach_type", "support_type", "mental_type", "hr_type",
		"sales_style", "friend_style", "coach_style", "support_style", "mental_style", "hr_style",
	}
)

var kindLabels = map[string]map[string]string{
	"nl": {
		"man": "Man", "woman": "Vrouw", "animal": "Dier", "blob": "Blob", "robot": "Robot",
		"realistic": "Realistisch", "pixar": "Pixar-stijl", "cartoony": "Cartoony-stijl",
		"figurative": "Figuratief", "toy": "Toy-stijl",
	},
	"en": {
		"man": "Man", "woman": "Woman", "animal": "Animal", "blob": "Blob", "robot": "Robot",
		"realistic": "Realistic", "pixar": "Pixar style", "cartoony": "Cartoony style",
		"figurative": "Figurative", "toy": "Toy style",
	},
}

// OptionID names the asset of one kind for a question.
func OptionID(questionID, kind string) string {
	return questionID + "-" + kind + ".webp"
}

var defaultCatalog = buildDefault()

// Default is the built-in mascot catalog: six topics asked once for the
// character type and once for the drawing style.
func Default() *Catalog { return defaultCatalog }

func buildDefault() *Catalog {
	qs := make([]Question, 0, len(Topics))
	labels := Labels{}
	for _, id := range Topics {
		kinds := StyleTypes
		if strings.HasSuffix(id, "_type") {
			kinds = CharacterTypes
		}
		q := Question{ID: id}
		for _, k := range kinds {
			opt := OptionID(id, k)
			q.Options = append(q.Options, opt)
			for lang, names := range kindLabels {
				labels[LabelKey{id, opt, lang}] = names[k]
			}
		}
		qs = append(qs, q)
	}
	return MustNew(qs, labels)
}
