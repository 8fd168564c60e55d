// Marquee - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package space

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tomtom215/marquee/internal/catalog"
)

// Tokenize lowercases text and returns its runs of two or more letters,
// digits or underscores, with English stop words removed.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// buildLexical computes TF-IDF rows:
//
//	tfidf(t, d) = count(t, d) * (ln((1+n) / (1+df(t))) + 1)
//
// followed by L2 normalisation of each row. The vocabulary keeps the
// maxFeatures terms with the highest total count across the corpus
// (ties broken alphabetically) and is laid out alphabetically.
func buildLexical(c *catalog.Catalog, maxFeatures int) *Space {
	n := c.Len()
	docs := make([]map[string]int, n)
	total := make(map[string]int)
	df := make(map[string]int)

	for i := 0; i < n; i++ {
		counts := make(map[string]int)
		for _, tok := range Tokenize(c.At(i).Synopsis) {
			counts[tok]++
		}
		for t, k := range counts {
			total[t] += k
			df[t]++
		}
		docs[i] = counts
	}

	vocab := make([]string, 0, len(total))
	for t := range total {
		vocab = append(vocab, t)
	}
	if len(vocab) > maxFeatures {
		sort.Slice(vocab, func(a, b int) bool {
			if total[vocab[a]] != total[vocab[b]] {
				return total[vocab[a]] > total[vocab[b]]
			}
			return vocab[a] < vocab[b]
		})
		vocab = vocab[:maxFeatures]
	}
	sort.Strings(vocab)

	termIndex := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	for i, t := range vocab {
		termIndex[t] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}

	s := &Space{
		mode:    ModeLexical,
		catalog: c,
		dims:    len(vocab),
		terms:   vocab,
		rows:    make([][]float64, n),
	}
	for i, counts := range docs {
		row := make([]float64, s.dims)
		for t, k := range counts {
			if j, ok := termIndex[t]; ok {
				row[j] = float64(k) * idf[j]
			}
		}
		normalize(row)
		s.rows[i] = row
	}
	return s
}

func normalize(v []float64) {
	norm := Norm(v)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}

var stopWords = func() map[string]struct{} {
	m := make(map[string]struct{}, len(englishStopWords))
	for _, w := range englishStopWords {
		m[w] = struct{}{}
	}
	return m
}()

var englishStopWords = []string{
	"a", "about", "above", "across", "after", "afterwards", "again", "against",
	"all", "almost", "alone", "along", "already", "also", "although", "always",
	"am", "among", "amongst", "amoungst", "amount", "an", "and", "another",
	"any", "anyhow", "anyone", "anything", "anyway", "anywhere", "are",
	"around", "as", "at", "back", "be", "became", "because", "become",
	"becomes", "becoming", "been", "before", "beforehand", "behind", "being",
	"below", "beside", "besides", "between", "beyond", "bill", "both",
	"bottom", "but", "by", "call", "can", "cannot", "cant", "co", "con",
	"could", "couldnt", "cry", "de", "describe", "detail", "do", "done",
	"down", "due", "during", "each", "eg", "eight", "either", "eleven", "else",
	"elsewhere", "empty", "enough", "etc", "even", "ever", "every", "everyone",
	"everything", "everywhere", "except", "few", "fifteen", "fifty", "fill",
	"find", "fire", "first", "five", "for", "former", "formerly", "forty",
	"found", "four", "from", "front", "full", "further", "get", "give", "go",
	"had", "has", "hasnt", "have", "he", "hence", "her", "here", "hereafter",
	"hereby", "herein", "hereupon", "hers", "herself", "him", "himself", "his",
	"how", "however", "hundred", "i", "ie", "if", "in", "inc", "indeed",
	"interest", "into", "is", "it", "its", "itself", "keep", "last", "latter",
	"latterly", "least", "less", "ltd", "made", "many", "may", "me",
	"meanwhile", "might", "mill", "mine", "more", "moreover", "most", "mostly",
	"move", "much", "must", "my", "myself", "name", "namely", "neither",
	"never", "nevertheless", "next", "nine", "no", "nobody", "none", "noone",
	"nor", "not", "nothing", "now", "nowhere", "of", "off", "often", "on",
	"once", "one", "only", "onto", "or", "other", "others", "otherwise", "our",
	"ours", "ourselves", "out", "over", "own", "part", "per", "perhaps",
	"please", "put", "rather", "re", "same", "see", "seem", "seemed",
	"seeming", "seems", "serious", "several", "she", "should", "show", "side",
	"since", "sincere", "six", "sixty", "so", "some", "somehow", "someone",
	"something", "sometime", "sometimes", "somewhere", "still", "such",
	"system", "take", "ten", "than", "that", "the", "their", "them",
	"themselves", "then", "thence", "there", "thereafter", "thereby",
	"therefore", "therein", "thereupon", "these", "they", "thick", "thin",
	"third", "this", "those", "though", "three", "through", "throughout",
	"thru", "thus", "to", "together", "too", "top", "toward", "towards",
	"twelve", "twenty", "two", "un", "under", "until", "up", "upon", "us",
	"very", "via", "was", "we", "well", "were", "what", "whatever", "when",
	"whence", "whenever", "where", "whereafter", "whereas", "whereby",
	"wherein", "whereupon", "wherever", "whether", "which", "while", "whither",
	"who", "whoever", "whole", "whom", "whose", "why", "will", "with",
	"within", "without", "would", "yet", "you", "your", "yours", "yourself",
	"yourselves",
}
