package i18n

import "github.com/mind-engage/mascot-survey/internal/catalog"

// Bundle is every static text the front end renders for one language.
type Bundle struct {
	Lang               Lang                         `json:"lang"`
	Title              string                       `json:"title"`
	Welcome            string                       `json:"welcome"`
	PrivacyTitle       string                       `json:"privacyTitle"`
	PrivacyIntro       string                       `json:"privacyIntro"`
	PrivacyPoints      []string                     `json:"privacyPoints"`
	PrivacyConsent     string                       `json:"privacyConsent"`
	StartButton        string                       `json:"startButton"`
	DragInstructions   string                       `json:"dragInstructions"`
	BackButton         string                       `json:"backButton"`
	NextButton         string                       `json:"nextButton"`
	BackgroundQuestion string                       `json:"backgroundQuestions"`
	FinalQuestions     string                       `json:"finalQuestions"`
	Age                string                       `json:"age"`
	Gender             string                       `json:"gender"`
	GenderOptions      map[string]string            `json:"genderOptions"`
	Education          string                       `json:"education"`
	EducationOptions   map[string]string            `json:"educationOptions"`
	SubmitButton       string                       `json:"submitButton"`
	AlreadySubmitted   string                       `json:"alreadySubmitted"`
	NoMultiple         string                       `json:"noMultiple"`
	Thanks             string                       `json:"thanks"`
	Questions          map[string]string            `json:"questions"`
	Labels             map[string]map[string]string `json:"labels,omitempty"`
}

// GenderKeys and EducationKeys are the values the form accepts, in display
// order.
var (
	GenderKeys    = []string{"male", "female", "other"}
	EducationKeys = []string{"primary", "vmbo", "havo", "vwo", "hbo", "uni"}
)

// For returns the bundle for l with option labels taken from cat. Unknown
// languages get the default bundle.
func For(l Lang, cat *catalog.Catalog) Bundle {
	b, ok := bundles[l]
	if !ok {
		b = bundles[Default]
	}
	b.PrivacyPoints = append([]string(nil), b.PrivacyPoints...)
	b.GenderOptions = cloneMap(b.GenderOptions)
	b.EducationOptions = cloneMap(b.EducationOptions)
	b.Questions = cloneMap(b.Questions)
	if cat != nil {
		b.Labels = make(map[string]map[string]string, cat.Len())
		for _, q := range cat.Questions() {
			m := make(map[string]string, len(q.Options))
			for _, o := range q.Options {
				m[o] = cat.Label(q.ID, o, string(b.Lang))
			}
			b.Labels[q.ID] = m
		}
	}
	return b
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var bundles = map[Lang]Bundle{
	NL: {
		Lang:         NL,
		Title:        "Mascotte‑Survey",
		Welcome:      "👋 Welkom en bedankt dat je meedoet! Deze korte en interactieve enquête bestaat uit 12 vragen. Bij elke vraag zie je 5 mascottes. Sleep ze in de volgorde die voor jou het meest logisch voelt, van 1 (meest passend) tot 5 (minst passend). Niet te lang over nadenken: vertrouw op je eerste indruk!",
		PrivacyTitle: "Privacy Verklaring",
		PrivacyIntro: "Door deel te nemen aan deze enquête ga je akkoord met het volgende:",
		PrivacyPoints: []string{
			"We verzamelen je antwoorden op de enquêtevragen",
			"We slaan basis demografische gegevens op (leeftijd, geslacht, opleiding)",
			"We gebruiken een apparaat-fingerprint om dubbele inzendingen te voorkomen",
			"Je gegevens worden anoniem verwerkt en alleen voor onderzoeksdoeleinden gebruikt",
			"Je kunt maar één keer deelnemen aan deze enquête",
		},
		PrivacyConsent:     "Ik ga akkoord met het verzamelen en verwerken van mijn gegevens zoals hierboven beschreven",
		StartButton:        "Start",
		DragInstructions:   "Sleep om te rangschikken: 1 = meest passend, 5 = minst passend",
		BackButton:         "Terug",
		NextButton:         "Volgende",
		BackgroundQuestion: "Achtergrondvragen",
		FinalQuestions:     "Nog een paar vragen 🙂",
		Age:                "Leeftijd",
		Gender:             "Geslacht",
		GenderOptions: map[string]string{
			"placeholder": "Geslacht", "male": "Man", "female": "Vrouw", "other": "Anders",
		},
		Education: "Hoogst behaalde Opleiding",
		EducationOptions: map[string]string{
			"placeholder": "Hoogst behaalde Opleiding", "primary": "Basisonderwijs", "vmbo": "VMBO/MBO",
			"havo": "HAVO", "vwo": "VWO", "hbo": "HBO", "uni": "WO",
		},
		SubmitButton:     "Versturen",
		AlreadySubmitted: "Je hebt deze enquête al ingevuld.",
		NoMultiple:       "Het is niet mogelijk om de enquête meerdere keren in te vullen.",
		Thanks:           "Bedankt voor je deelname! 🎉",
		Questions: map[string]string{
			"sales_type":    "Welke mascotte mag jouw stylist zijn voor één dag?",
			"friend_type":   "Welke mascotte zou jij kiezen als digitale vriend(in)?",
			"coach_type":    "Met welke mascotte zou jij het liefst zwetend in de sportschool staan?",
			"support_type":  "Je pakketje is kwijt. Wie van deze mascottes wil jij in de klantenservice-chat zien?",
			"mental_type":   "Tijdens een korte oefening kijk je naar een mascotte op je telefoon. Welke zie jij het liefst?",
			"hr_type":       "Welke mascotte wil jij als digitale buddy op je eerste werkdag?",
			"sales_style":   "Stel: je zoekt sneakers in een app. Welke van deze mascottes zie jij het liefst verschijnen?",
			"friend_style":  "Deze mascottes sturen je dagelijks een berichtje. Welke voelt het leukst om te zien?",
			"coach_style":   "Welke mascotte wil jij als sportmaatje in een trainingsapp?",
			"support_style": "Wie van deze mascottes wil jij zien als je hulp nodig hebt in een webshop?",
			"mental_style":  "Tijdens een meditatiesessie verschijnt één mascotte op je scherm. Naar wie kijk jij het liefst?",
			"hr_style":      "Welke van deze mascottes zie jij graag verschijnen bij je eerste werkdag?",
		},
	},
	EN: {
		Lang:         EN,
		Title:        "Mascot Survey",
		Welcome:      "👋 Welcome and thank you for participating! This short interactive survey consists of 12 questions. For each question, you'll see 5 mascots. Drag them in the order that feels most logical to you, from 1 (most suitable) to 5 (least suitable). Don't think too long: trust your first impression!",
		PrivacyTitle: "Privacy Statement",
		PrivacyIntro: "By participating in this survey, you agree to the following:",
		PrivacyPoints: []string{
			"We collect your answers to the survey questions",
			"We store basic demographic data (age, gender, education)",
			"We use a device fingerprint to prevent multiple submissions",
			"Your data is processed anonymously and used for research purposes only",
			"You can only participate in this survey once",
		},
		PrivacyConsent:     "I agree to the collection and processing of my data as described above",
		StartButton:        "Start",
		DragInstructions:   "Drag to rank: 1 = best, 5 = least suitable",
		BackButton:         "Back",
		NextButton:         "Next",
		BackgroundQuestion: "Background Questions",
		FinalQuestions:     "A few final questions 🙂",
		Age:                "Age",
		Gender:             "Gender",
		GenderOptions: map[string]string{
			"placeholder": "Gender", "male": "Male", "female": "Female", "other": "Other",
		},
		Education: "Highest Education",
		EducationOptions: map[string]string{
			"placeholder": "Highest Education", "primary": "Primary School", "vmbo": "Secondary Vocational",
			"havo": "Higher Secondary", "vwo": "Pre-University", "hbo": "University of Applied Sciences", "uni": "University",
		},
		SubmitButton:     "Submit",
		AlreadySubmitted: "You have already completed this survey.",
		NoMultiple:       "It is not possible to complete the survey multiple times.",
		Thanks:           "Thank you for participating! 🎉",
		Questions: map[string]string{
			"sales_type":    "Which mascot would you choose as your stylist for a day?",
			"friend_type":   "Which mascot would you choose as a digital friend?",
			"coach_type":    "Which mascot would you most like to work out with at the gym?",
			"support_type":  "Your package is lost. Which of these mascots would you like to see in the customer service chat?",
			"mental_type":   "During a short exercise, you look at a mascot on your phone. Which one do you prefer to see?",
			"hr_type":       "Which mascot would you like as your digital buddy on your first day at work?",
			"sales_style":   "Imagine: you're looking for sneakers in an app. Which of these mascots would you most like to see?",
			"friend_style":  "These mascots send you daily messages. Which one feels best to see?",
			"coach_style":   "Which mascot would you like as a training buddy in a fitness app?",
			"support_style": "Which of these mascots would you like to see when you need help in a webshop?",
			"mental_style":  "During a meditation session, one mascot appears on your screen. Who would you prefer to look at?",
			"hr_style":      "Which of these mascots would you like to see on your first day at work?",
		},
	},
}
