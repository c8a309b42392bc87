// ABOUTME: Closed set of agent icon identifiers and their terminal glyphs
// ABOUTME: Unknown icon names resolve to Sparkles instead of failing

// Package icons maps the icon names used by the agent catalog onto glyphs the
// terminal can draw.
package icons

// Icon identifies one of the icons an agent may declare.
type Icon string

// Known icons. The names match the catalog's icon keys.
const (
	Mail          Icon = "Mail"
	Clock         Icon = "Clock"
	FileText      Icon = "FileText"
	Linkedin      Icon = "Linkedin"
	Briefcase     Icon = "Briefcase"
	BookOpen      Icon = "BookOpen"
	GraduationCap Icon = "GraduationCap"
	Code          Icon = "Code"
	FileCheck     Icon = "FileCheck"
	BarChart3     Icon = "BarChart3"
	PenTool       Icon = "PenTool"
	Youtube       Icon = "Youtube"
	Rocket        Icon = "Rocket"
	Send          Icon = "Send"
	ShoppingCart  Icon = "ShoppingCart"
	Target        Icon = "Target"
	Plane         Icon = "Plane"
	User          Icon = "User"
	CheckSquare   Icon = "CheckSquare"
	Twitter       Icon = "Twitter"
	Github        Icon = "Github"
	Scissors      Icon = "Scissors"
	Key           Icon = "Key"
	Flag          Icon = "Flag"
	Layout        Icon = "Layout"

	// Sparkles is the fallback for names outside the set.
	Sparkles Icon = "Sparkles"
)

var glyphs = map[Icon]string{
	Mail:          "✉",
	Clock:         "⏱",
	FileText:      "📄",
	Linkedin:      "in",
	Briefcase:     "💼",
	BookOpen:      "📖",
	GraduationCap: "🎓",
	Code:          "</>",
	FileCheck:     "✔",
	BarChart3:     "📊",
	PenTool:       "✒",
	Youtube:       "▶",
	Rocket:        "🚀",
	Send:          "➤",
	ShoppingCart:  "🛒",
	Target:        "◎",
	Plane:         "✈",
	User:          "👤",
	CheckSquare:   "☑",
	Twitter:       "𝕏",
	Github:        "⌥",
	Scissors:      "✂",
	Key:           "🔑",
	Flag:          "⚑",
	Layout:        "▦",
	Sparkles:      "✨",
}

// Parse resolves an icon name. Names outside the known set return Sparkles.
func Parse(name string) Icon {
	icon := Icon(name)
	if _, ok := glyphs[icon]; ok {
		return icon
	}
	return Sparkles
}

// Known reports whether name is one of the enumerated icons.
func Known(name string) bool {
	_, ok := glyphs[Icon(name)]
	return ok
}

// Glyph returns the terminal glyph for the icon.
func (i Icon) Glyph() string {
	if g, ok := glyphs[i]; ok {
		return g
	}
	return glyphs[Sparkles]
}

// String returns the icon name.
func (i Icon) String() string {
	return string(i)
}
