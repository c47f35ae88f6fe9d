package main

import (
	"sort"
	"strings"

	"github.com/jbrukh/bayesian"
)

// suggestion pairs an uncategorized ledger row with the category a TF-IDF
// classifier would give it. Suggestions are printed for the operator to fold
// back into the keyword dictionaries; they are never applied to the ledger
// itself, which stays a pure function of config and inputs.
type suggestion struct {
	Txn      txn
	Category string
}

// suggestCategories trains a classifier on the rows the keyword engine did
// categorize and scores the ones it did not. With fewer than two categories
// in the ledger there is nothing to learn from, and no suggestions are made.
func suggestCategories(txns []txn) []suggestion {
	classSet := make(map[string]bool)
	for _, t := range txns {
		if t.Category != uncategorized {
			classSet[t.Category] = true
		}
	}
	if len(classSet) < 2 {
		return nil
	}
	classes := make([]bayesian.Class, 0, len(classSet))
	for name := range classSet {
		classes = append(classes, bayesian.Class(name))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	cl := bayesian.NewClassifierTfIdf(classes...)
	for _, t := range txns {
		if t.Category == uncategorized {
			continue
		}
		cl.Learn(descTerms(t.Desc), bayesian.Class(t.Category))
	}
	cl.ConvertTermsFreqToTfIdf()

	var out []suggestion
	for _, t := range txns {
		if t.Category != uncategorized {
			continue
		}
		scores, best, _ := cl.LogScores(descTerms(t.Desc))
		if len(scores) == 0 {
			continue
		}
		out = append(out, suggestion{Txn: t, Category: string(classes[best])})
	}
	return out
}

// descTerms prepares a description for classification: lower-case, strip the
// card processors' "*" markers, split on whitespace.
func descTerms(desc string) []string {
	desc = strings.ToLower(desc)
	desc = strings.ReplaceAll(desc, "*", " ")
	return strings.Fields(desc)
}
