// Package catalog holds the built-in reference examples shown on the
// playground page. The catalog is static: entries are compiled into the
// binary and served read-only, so there is no repository behind it.
package catalog

import (
	"github.com/nadim/script-playground/internal/apperror"
)

// Entry is one runnable example script.
type Entry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Category groups entries for display.
type Category struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Catalog serves the built-in examples.
type Catalog struct {
	categories []Category
	byID       map[string]Entry
}

// New builds the catalog from the built-in entries.
func New() *Catalog {
	c := &Catalog{
		categories: builtinCategories(),
		byID:       make(map[string]Entry),
	}
	for _, cat := range c.categories {
		for _, entry := range cat.Entries {
			c.byID[entry.ID] = entry
		}
	}
	return c
}

// Categories returns all categories with their entries, in display order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Get returns the entry with the given ID.
func (c *Catalog) Get(id string) (Entry, error) {
	entry, ok := c.byID[id]
	if !ok {
		return Entry{}, apperror.NotFound("catalog entry", id)
	}
	return entry, nil
}

// Len reports the total number of entries across all categories.
func (c *Catalog) Len() int {
	return len(c.byID)
}

func builtinCategories() []Category {
	return []Category{
		{
			ID:    "basics",
			Title: "Basics",
			Entries: []Entry{
				{
					ID:          "hello-output",
					Title:       "Printing output",
					Category:    "basics",
					Description: "The log, info, warn and error functions capture output per level.",
					Source: `log('hello from the playground');
info('info lines render in blue');
warn('warnings in yellow');
error('errors in red');`,
				},
				{
					ID:          "return-values",
					Title:       "Returning a value",
					Category:    "basics",
					Description: "A top-level return becomes the result's rendered return value.",
					Source: `var numbers = [1, 2, 3, 4];
log('doubling', numbers);
return numbers.map(function (n) { return n * 2; });`,
				},
				{
					ID:          "objects-and-arrays",
					Title:       "Rendering structures",
					Category:    "basics",
					Description: "Nested objects and arrays render up to four levels deep.",
					Source: `var user = {
  name: 'ada',
  langs: ['js', 'go'],
  stats: { runs: 12, errors: 0 }
};
log(user);
return user.stats;`,
				},
			},
		},
		{
			ID:    "errors",
			Title: "Errors",
			Entries: []Entry{
				{
					ID:          "throwing",
					Title:       "Throwing an error",
					Category:    "errors",
					Description: "Thrown errors end the run; output up to the throw is kept.",
					Source: `log('this line runs');
throw new Error('this stops the script');`,
				},
				{
					ID:          "try-catch",
					Title:       "Catching errors",
					Category:    "errors",
					Description: "Caught errors do not end the run.",
					Source: `try {
  JSON.parse('{not json');
} catch (e) {
  warn('caught:', e.message);
}
return 'still completed';`,
				},
			},
		},
		{
			ID:    "timers",
			Title: "Timers",
			Entries: []Entry{
				{
					ID:          "set-timeout",
					Title:       "Deferred callbacks",
					Category:    "timers",
					Description: "setTimeout callbacks run after the main body, delays capped at 5000ms.",
					Source: `setTimeout(function () { log('runs second'); }, 50);
log('runs first');`,
				},
				{
					ID:          "set-interval",
					Title:       "Repeating callbacks",
					Category:    "timers",
					Description: "setInterval repeats until cleared or the run's deadline passes.",
					Source: `var ticks = 0;
var id = setInterval(function () {
  ticks++;
  log('tick', ticks);
  if (ticks === 3) { clearInterval(id); }
}, 20);`,
				},
			},
		},
		{
			ID:    "limits",
			Title: "Sandbox limits",
			Entries: []Entry{
				{
					ID:          "timeout-demo",
					Title:       "Execution timeout",
					Category:    "limits",
					Description: "Busy loops are interrupted at the deadline and settle as TimedOut.",
					Source: `// Runs until the watchdog interrupts it.
while (true) {}`,
				},
				{
					ID:          "restricted-globals",
					Title:       "Restricted globals",
					Category:    "limits",
					Description: "Names outside the allow-list resolve to undefined.",
					Source: `log('typeof eval is', typeof eval);
log('typeof require is', typeof require);
log('Math still works:', Math.max(1, 2, 3));`,
				},
			},
		},
	}
}
