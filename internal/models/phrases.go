package models

import "strconv"

// Phrase is one devotional phrase that can be counted.
type Phrase struct {
	// ID is the category id stored in a day's breakdown.
	ID              string `json:"id"`
	Label           string `json:"label"`
	Arabic          string `json:"arabic"`
	Transliteration string `json:"transliteration"`
	Meaning         string `json:"meaning"`
}

// Catalogue maps each kind to its selectable phrases.
type Catalogue map[Kind][]Phrase

// Phrases returns the phrases for k.
func (c Catalogue) Phrases(k Kind) []Phrase {
	return c[k]
}

// Find returns the phrase of k with the given id.
func (c Catalogue) Find(k Kind, id string) (Phrase, bool) {
	for _, p := range c[k] {
		if p.ID == id {
			return p, true
		}
	}
	return Phrase{}, false
}

// Label returns a display label for a category id, falling back to the id.
func (c Catalogue) Label(k Kind, id string) string {
	if p, ok := c.Find(k, id); ok && p.Label != "" {
		return p.Label
	}
	return id
}

// TahlilReminder is recited after completing a round of Allahu Akbar.
var TahlilReminder = Phrase{
	ID:              "tahlil",
	Label:           "Tahlil",
	Arabic:          "لَا إِلَٰهَ إِلَّا ٱللَّٰهُ وَحْدَهُ لَا شَرِيكَ لَهُ، لَهُ ٱلْمُلْكُ وَلَهُ ٱلْحَمْدُ وَهُوَ عَلَىٰ كُلِّ شَيْءٍ قَدِيرٌ",
	Transliteration: "La ilaha ill-Allah wahdahu la sharika lah, lahu'l-mulk wa lahu'l-hamd wa huwa 'ala kulli shay-in qadir",
	Meaning:         "There is no god but Allah alone. He has no partner. To Him belongs the dominion and all praise. And He is capable of all things.",
}

// DhikrTarget is the fixed size of a dhikr round.
const DhikrTarget = 33

// DefaultTasbeehTarget is the initial tasbeeh target.
const DefaultTasbeehTarget = 100

// DefaultCatalogue returns the built-in phrase lists.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		KindTasbeeh: {
			{ID: "subhanallah", Label: "SubhanAllah", Arabic: "سُبْحَانَ اللَّهِ", Transliteration: "Subḥān Allāh", Meaning: "Glory be to Allah"},
			{ID: "alhamdulillah", Label: "Alhamdulillah", Arabic: "الْحَمْدُ لِلَّهِ", Transliteration: "Al-ḥamdu lillāh", Meaning: "Praise be to Allah"},
			{ID: "allahu_akbar", Label: "Allahu Akbar", Arabic: "اللَّهُ أَكْبَر", Transliteration: "Allāhu Akbar", Meaning: "Allah is the Greatest"},
			{ID: "la_ilaha_illallah", Label: "La ilaha illallah", Arabic: "لَا إِلَٰهَ إِلَّا ٱللَّٰهُ", Transliteration: "Lā ilāha illa llāh", Meaning: "There is no god but Allah"},
			{ID: "astaghfirullah", Label: "Astaghfirullah", Arabic: "أَسْتَغْفِرُ ٱللَّٰه", Transliteration: "Astaghfirullāh", Meaning: "I seek forgiveness from Allah"},
		},
		KindDhikr: {
			{ID: "SubhanAllah", Label: "SubhanAllah", Arabic: "سُبْحَانَ اللَّهِ", Meaning: "Glory be to Allah"},
			{ID: "Alhamdulillah", Label: "Alhamdulillah", Arabic: "الْحَمْدُ لِلَّهِ", Meaning: "Praise be to Allah"},
			{ID: "Allahu akbar", Label: "Allahu Akbar", Arabic: "اللَّهُ أَكْبَر", Meaning: "Allah is the Greatest"},
		},
		KindIstighfar: indexed([]Phrase{
			{Label: "Astaghfirullah", Arabic: "أَسْتَغْفِرُ ٱللَّٰه", Transliteration: "Astaghfirullāh", Meaning: "I seek forgiveness from Allah"},
			{Label: "Astaghfirullah wa atubu ilayh", Arabic: "أَسْتَغْفِرُ ٱللَّٰهَ وَأَتُوبُ إِلَيْهِ", Transliteration: "Astaghfirullāha wa atūbu ilayh", Meaning: "I seek forgiveness from Allah and repent to Him"},
			{Label: "Rabbighfir li", Arabic: "رَبِّ ٱغْفِرْ لِي", Transliteration: "Rabbi-ghfir lī", Meaning: "My Lord, forgive me"},
		}),
		KindDurood: indexed([]Phrase{
			{Label: "Allahumma salli wa sallim ala nabiyyina Muhammad ﷺ"},
			{Label: "As-salatu was-salamu ala Rasulullah ﷺ"},
			{Label: "Allahumma salli ala Muhammad ﷺ"},
		}),
	}
}

// indexed assigns positional ids ("0", "1", ...) to phrases without one.
func indexed(phrases []Phrase) []Phrase {
	for i := range phrases {
		if phrases[i].ID == "" {
			phrases[i].ID = strconv.Itoa(i)
		}
	}
	return phrases
}

// Merge returns c with every kind present in override replaced.
func (c Catalogue) Merge(override Catalogue) Catalogue {
	out := make(Catalogue, len(c))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range override {
		if len(v) > 0 {
			out[k] = indexed(v)
		}
	}
	return out
}

// TriggerPhrase returns the lowercase text that marks a transcript as a
// recitation of k. Kinds without voice support return "".
func TriggerPhrase(k Kind) string {
	switch k {
	case KindIstighfar:
		return "astaghfir"
	case KindDurood:
		return "salli"
	case KindTasbeeh:
		return "subhan"
	default:
		return ""
	}
}
