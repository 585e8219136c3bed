package palette

// colors follows the GitHub linguist palette
var colors = map[string]string{
	"Go":               "#00add8",
	"Rust":             "#dea584",
	"Python":           "#3572a5",
	"JavaScript":       "#f1e05a",
	"TypeScript":       "#3178c6",
	"Java":             "#b07219",
	"Kotlin":           "#a97bff",
	"Swift":            "#f05138",
	"C":                "#555555",
	"C++":              "#f34b7d",
	"C#":               "#178600",
	"Ruby":             "#701516",
	"PHP":              "#4f5d95",
	"Scala":            "#c22d40",
	"Haskell":          "#5e5086",
	"Elixir":           "#6e4a7e",
	"Erlang":           "#b83998",
	"Clojure":          "#db5855",
	"Dart":             "#00b4ab",
	"Lua":              "#000080",
	"Perl":             "#0298c3",
	"R":                "#198ce7",
	"Julia":            "#a270ba",
	"Shell":            "#89e051",
	"HTML":             "#e34c26",
	"CSS":              "#563d7c",
	"Vue":              "#41b883",
	"Zig":              "#ec915c",
	"OCaml":            "#ef7a08",
	"Nim":              "#ffc200",
	"Objective-C":      "#438eff",
	"Jupyter Notebook": "#da5b0b",
}

// Static reports the built in color for language
func Static(language string) (string, bool) {
	c, ok := colors[language]
	return c, ok
}

// Languages returns the size of the static table
func Languages() int { return len(colors) }
