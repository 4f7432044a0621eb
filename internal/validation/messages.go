package validation

import (
	"strconv"
	"strings"
)

// Messages is the user-facing text for one language. AgeRange may contain
// {min} and {max}.
type Messages struct {
	AgeRequired        string
	AgeRange           string
	GenderRequired     string
	EducationRequired  string
	EmailInvalid       string
	RankingsIncomplete string
	SubmitFailed       string
}

var Dutch = Messages{
	AgeRequired:        "Leeftijd is verplicht",
	AgeRange:           "Leeftijd moet tussen {min} en {max} jaar zijn",
	GenderRequired:     "Geslacht is verplicht",
	EducationRequired:  "Opleiding is verplicht",
	EmailInvalid:       "Voer een geldig emailadres in",
	RankingsIncomplete: "Niet alle vragen zijn volledig gerangschikt. Ga terug en rond elke vraag af.",
	SubmitFailed:       "Er ging iets mis bij het versturen. Probeer het opnieuw.",
}

var English = Messages{
	AgeRequired:        "Age is required",
	AgeRange:           "Age must be between {min} and {max}",
	GenderRequired:     "Gender is required",
	EducationRequired:  "Education is required",
	EmailInvalid:       "Enter a valid email address",
	RankingsIncomplete: "Not every question has a complete ranking. Go back and finish each question.",
	SubmitFailed:       "Something went wrong while submitting. Please try again.",
}

// MessagesFor returns the message set for a language code, Dutch by default.
func MessagesFor(lang string) Messages {
	if strings.EqualFold(lang, "en") {
		return English
	}
	return Dutch
}

func (m Messages) ageRange(b Bounds) string {
	return strings.NewReplacer(
		"{min}", strconv.Itoa(b.AgeMin),
		"{max}", strconv.Itoa(b.AgeMax),
	).Replace(m.AgeRange)
}
