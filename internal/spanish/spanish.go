// Package spanish builds consistently structured Spanish flashcard
// content: vocabulary cards with gender annotations, verb cards with
// conjugation hints, and sentence clozes.
package spanish

import (
	"fmt"
	"regexp"
	"strings"
)

// Card is rendered front/back content ready to be added as a note.
type Card struct {
	Front string
	Back  string
}

// VocabCard formats a vocabulary card. Gender accepts "m", "f", "el"
// or "la" and annotates the back with the article; example, when
// given, is appended as an example sentence.
func VocabCard(spanish, english, example, gender string) Card {
	back := []string{strings.TrimSpace(english)}

	switch strings.ToLower(gender) {
	case "m", "el":
		back = append(back, "(el - masculine)")
	case "f", "la":
		back = append(back, "(la - feminine)")
	}

	if example != "" {
		back = append(back, "\nExample: "+strings.TrimSpace(example))
	}

	return Card{
		Front: strings.TrimSpace(spanish),
		Back:  strings.Join(back, "\n"),
	}
}

// VerbCard formats a verb card, tagging the back with the verb class
// derived from the infinitive's ending and any conjugation notes
// ("stem-changing o→ue", "irregular", ...).
func VerbCard(infinitive, english, conjugationNotes, example string) Card {
	back := []string{strings.TrimSpace(english)}

	if conjugationNotes != "" {
		back = append(back, "("+strings.TrimSpace(conjugationNotes)+")")
	}

	if class := VerbType(infinitive); class != "" {
		back = append(back, "["+strings.ToUpper(class)+" verb]")
	}

	if example != "" {
		back = append(back, "\nExample: "+strings.TrimSpace(example))
	}

	return Card{
		Front: strings.TrimSpace(infinitive),
		Back:  strings.Join(back, "\n"),
	}
}

// SentenceCloze wraps the first occurrence of targetWord in the
// sentence with {{c1::...}} cloze markup. The match is case
// sensitive; a target that does not occur leaves the sentence
// unchanged.
func SentenceCloze(sentence, targetWord string) string {
	pattern := regexp.QuoteMeta(strings.TrimSpace(targetWord))
	re, err := regexp.Compile("(" + pattern + ")")
	if err != nil {
		return strings.TrimSpace(sentence)
	}

	replaced := false
	return re.ReplaceAllStringFunc(strings.TrimSpace(sentence), func(m string) string {
		if replaced {
			return m
		}
		replaced = true
		return fmt.Sprintf("{{c1::%s}}", m)
	})
}

var partsOfSpeech = map[string]bool{
	"verb":       true,
	"noun":       true,
	"adjective":  true,
	"adverb":     true,
	"phrase":     true,
	"expression": true,
}

// SuggestTags proposes tags from the word's characteristics: the part
// of speech, verb class and reflexiveness, plus any extra tags the
// caller wants carried through.
func SuggestTags(word, pos string, additional []string) []string {
	var tags []string

	posLower := strings.ToLower(pos)
	if partsOfSpeech[posLower] {
		tags = append(tags, posLower)

		if posLower == "verb" {
			if class := VerbType(word); class != "" {
				tags = append(tags, "verb-"+class)
			}
			if IsReflexive(word) {
				tags = append(tags, "reflexive")
			}
		}
	}

	return append(tags, additional...)
}

// VerbType reports the conjugation class of an infinitive ("ar",
// "er" or "ir"), accounting for reflexive -se forms. A word that is
// not an infinitive yields the empty string.
func VerbType(verb string) string {
	v := strings.ToLower(strings.TrimSpace(verb))
	switch {
	case strings.HasSuffix(v, "arse"), strings.HasSuffix(v, "ar"):
		return "ar"
	case strings.HasSuffix(v, "erse"), strings.HasSuffix(v, "er"):
		return "er"
	case strings.HasSuffix(v, "irse"), strings.HasSuffix(v, "ir"):
		return "ir"
	}
	return ""
}

// IsReflexive reports whether the verb carries a reflexive -se
// ending.
func IsReflexive(verb string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(verb)), "se")
}
