package naming

import (
	"strings"

	"gitplanet/internal/core/palette"
)

var adjectives = map[string]string{
	palette.Unknown:    "静かなる",
	"Go":               "疾風の",
	"Rust":             "鋼鉄の",
	"Python":           "賢き",
	"JavaScript":       "煌めく",
	"TypeScript":       "堅牢なる",
	"Java":             "重厚なる",
	"Kotlin":           "軽やかな",
	"Swift":            "俊敏なる",
	"C":                "原初の",
	"C++":              "剛健なる",
	"C#":               "鋭き",
	"Ruby":             "紅玉の",
	"PHP":              "不屈の",
	"Scala":            "螺旋の",
	"Haskell":          "純粋なる",
	"Elixir":           "錬金の",
	"Erlang":           "不死身の",
	"Clojure":          "括弧の",
	"Dart":             "一閃の",
	"Lua":              "月影の",
	"Perl":             "古の",
	"R":                "統計の",
	"Julia":            "計算の",
	"Shell":            "貝殻の",
	"HTML":             "骨組みの",
	"CSS":              "彩りの",
	"Vue":              "翠の",
	"Zig":              "稲妻の",
	"OCaml":            "駱駝の",
	"Nim":              "身軽な",
	"Objective-C":      "古強者の",
	"Jupyter Notebook": "記録する",
}

// byLanguage names the noun for each language color in the palette table
var byLanguage = map[string]string{
	"Go":               "蒼星",
	"Rust":             "錆星",
	"Python":           "碧星",
	"JavaScript":       "黄星",
	"TypeScript":       "藍星",
	"Java":             "琥珀星",
	"Kotlin":           "紫星",
	"Swift":            "炎星",
	"C":                "鉛星",
	"C++":              "桃星",
	"C#":               "翠星",
	"Ruby":             "紅星",
	"PHP":              "群青星",
	"Scala":            "朱星",
	"Haskell":          "菫星",
	"Elixir":           "葡萄星",
	"Erlang":           "牡丹星",
	"Clojure":          "珊瑚星",
	"Dart":             "青緑星",
	"Lua":              "紺星",
	"Perl":             "空星",
	"R":                "天星",
	"Julia":            "藤星",
	"Shell":            "若葉星",
	"HTML":             "橙星",
	"CSS":              "葵星",
	"Vue":              "翡翠星",
	"Zig":              "杏星",
	"OCaml":            "柑子星",
	"Nim":              "金星",
	"Objective-C":      "瑠璃星",
	"Jupyter Notebook": "赤銅星",
}

var nouns = func() map[string]string {
	m := map[string]string{palette.NeutralGray: "灰色の月"}
	for lang, noun := range byLanguage {
		if c, ok := palette.Static(lang); ok {
			m[c] = noun
		}
	}
	return m
}()

func nounFor(color string) (string, bool) {
	n, ok := nouns[strings.ToLower(color)]
	return n, ok
}
