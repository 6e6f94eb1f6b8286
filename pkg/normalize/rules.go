package normalize

import (
	"regexp"
	"strings"
)

// Rule is one ordered text rewrite: every match of Pattern is replaced by Replace.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// Apply runs the rule on s.
func (r Rule) Apply(s string) string {
	return r.Pattern.ReplaceAllString(s, r.Replace)
}

func rule(name, pattern, replace string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern), Replace: replace}
}

// applyRules evaluates rules in sequence.
func applyRules(rules []Rule, s string) string {
	for _, r := range rules {
		s = r.Apply(s)
	}
	return s
}

// ReleaseGroups are scene and repack groups that show up in listing titles.
var ReleaseGroups = []string{
	"YIFY", "YTS", "RARBG", "ETRG", "EtHD", "EVO", "PSA", "NTb", "MT", "TGx", "GalaxyRG",
	"FitGirl", "DODI", "CODEX", "PLAZA", "SKIDROW", "RELOADED", "TENOKE", "RUNE", "CPY",
	"EMPRESS", "GOG", "FLT", "COLLECTiVE", "BONE", "ElAmigos", "P2P",
}

// CommonRules run in both modes. Order matters: versions and channel layouts
// are removed while their dots are still intact, before dots become spaces.
var CommonRules = []Rule{
	rule("brackets", `\[[^\]]*\]`, " "),
	rule("parens", `\([^)]*\)`, " "),
	rule("version", `(?i)\bv\d+(?:\.\d+)*[a-z]?\b`, " "),
	rule("build", `(?i)\bbuild[ ._-]?\d+\b`, " "),
	rule("update", `(?i)\bupdate\b.*$`, " "),
	rule("channels", `\b\d\.\d\b`, " "),
	rule("separators", `[._]+`, " "),
	rule("early-release", `(?i)\b(?:CAM|TS|TELESYNC|TC|HC|HDCAM)\b`, " "),
	rule("source", `(?i)\b(?:BRRip|BDRip|BluRay|DVDRip|HDRip|WEBRip|WEB-DL|HDTV|REMUX)\b`, " "),
	rule("codec", `(?i)\b(?:x264|x265|H264|H265|HEVC|XviD|AVC|10bit)\b`, " "),
	rule("audio", `(?i)\b(?:AAC|AC3|DTS|FLAC|DDP?5|Atmos)\b`, " "),
	rule("resolution", `(?i)\b(?:\d{3,4}p|4K|UHD)\b`, " "),
	rule("repack", `(?i)\bRepack\b`, " "),
	rule("multi-language", `(?i)\bMULTi\d*\b`, " "),
	rule("dlc", `(?i)\bDLC\b`, " "),
	rule("language", `(?i)\b(?:RUS|ENG|ITA|SPA|GER|FRE)\b`, " "),
	rule("limited", `(?i)\bLiMiTED\b`, " "),
	rule("remastered", `(?i)\bREMASTERED\b`, " "),
	rule("extended", `(?i)\bEXTENDED\b`, " "),
	rule("directors-cut", `(?i)\bDIRECTOR'?S? CUT\b`, " "),
	rule("unrated", `(?i)\bUNRATED\b`, " "),
	rule("complete-edition", `(?i)\bCOMPLETE\b.*?\bEDITION\b`, " "),
	rule("year", `\b(?:19\d{2}|20\d{2})\b`, " "),
	rule("plus-suffix", `\+.*$`, " "),
	rule("release-group", `(?i)\b(?:`+strings.Join(ReleaseGroups, "|")+`)\b`, " "),
	rule("whitespace", `\s+`, " "),
}

// KeyRules run only when building a matching key. They are more aggressive
// than the display rules and may drop words that are part of a real title.
var KeyRules = []Rule{
	rule("trailing-group", `(?i)\s*-\s*[a-z\d]+\s*$`, ""),
	rule("edition-words", `(?i)\b(?:digital|deluxe|ultimate|gold|complete|collectors?|definitive|remastered|enhanced|goty|game of the year|premium|supporter|standard|bundle|pack|edition)\b`, " "),
	rule("release-words", `(?i)\b(?:repack|rip|preinstalled|portable)\b`, " "),
	rule("language-words", `(?i)\b(?:multi\d*|eng|rus|ita|esp|jpn|kor|fre|ger|\d{1,2} languages?)\b`, " "),
	rule("punctuation", `[^\p{L}\p{N}\s]+`, ""),
	rule("whitespace", `\s+`, " "),
}

// DisplayRules run only when building a display title.
var DisplayRules = []Rule{
	rule("selective-download", `(?i)\bSelective Download\b`, " "),
	rule("whitespace", `\s+`, " "),
	rule("unclosed-bracket", `\s*[(\[][^)\]]*$`, ""),
	rule("trailing-separators", `[\s:;,\-]+$`, ""),
}

// GameDisplaySuffixes strip edition, build and group fragments from the end
// of a game display title.
var GameDisplaySuffixes = []Rule{
	rule("build-suffix", `(?i)\s*[-(:]\s*(?:\d+\s*[/.]?\s*\d+|v\d+|build|update|dlc|ost|soundtrack|multi\d*|eng|rus|ita|jpn|kor)\b.*$`, ""),
	rule("edition-suffix", `(?i)\s*[-(:]\s*(?:premium|deluxe|supporter|ultimate|standard|collector.?s|goty|digital|definitive|complete|remastered|gold|enhanced|bundle|pack|edition|repack|rip|fitgirl|dodi|codex|rune|p2p|gog|flt)\b.*$`, ""),
	rule("paren-suffix", `\s*\(.*\)$`, ""),
	rule("bracket-suffix", `\s*\[[^\]]*\]$`, ""),
	rule("group-suffix", `\s*-\s*[A-Z][A-Z0-9]{2,}$`, ""),
	rule("early-purchase", `(?i)\s*with early p.*$`, ""),
	rule("trailing-punctuation", `[\s:;,.(\[\-]+$`, ""),
}

// MovieYear finds the first standalone year in a movie title.
var MovieYear = regexp.MustCompile(`\b(?:19\d{2}|20\d{2})\b`)

var (
	whitespace   = regexp.MustCompile(`\s+`)
	nonAlnum     = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	prefixTrail  = regexp.MustCompile(`[\s(\[:;,\-]+$`)
	dotSeparator = regexp.MustCompile(`[._]+`)
)
