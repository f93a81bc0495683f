package models

import (
	"strings"
	"unicode/utf8"
)

// MaxCategories bounds how many searches a single page can trigger.
const MaxCategories = 20

// Categories holds the search terms shown on the page, newest first.
type Categories []string

// Add trims input and prepends it. Terms of a single character, empty
// input and terms already present (ignoring case) are rejected. The oldest
// term is dropped once the list holds MaxCategories.
func (c *Categories) Add(input string) bool {
	term := strings.TrimSpace(input)
	if utf8.RuneCountInString(term) <= 1 {
		return false
	}
	if c.Contains(term) {
		return false
	}
	*c = append(Categories{term}, *c...)
	if len(*c) > MaxCategories {
		*c = (*c)[:MaxCategories]
	}
	return true
}

func (c Categories) Contains(term string) bool {
	for _, existing := range c {
		if strings.EqualFold(existing, term) {
			return true
		}
	}
	return false
}

// ParseCategories rebuilds a list carried in a form, keeping its order and
// dropping anything Add would refuse. Only the first MaxCategories values
// are read.
func ParseCategories(values []string) Categories {
	if len(values) > MaxCategories {
		values = values[:MaxCategories]
	}
	c := Categories{}
	for i := len(values) - 1; i >= 0; i-- {
		c.Add(values[i])
	}
	return c
}
