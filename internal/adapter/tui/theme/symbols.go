package theme

import (
	"os"
	"strings"
)

// SymbolSet holds all UI symbols, allowing runtime switching between
// Unicode and ASCII fallback sets.
type SymbolSet struct {
	Success   string
	Error     string
	Warning   string
	Info      string
	ArrowR    string
	Bullet    string
	Ellipsis  string
	Checked   string
	Unchecked string
	Cursor    string
}

var unicodeSymbols = SymbolSet{
	Success:   "✓", // ✓
	Error:     "✗", // ✗
	Warning:   "⚠", // ⚠
	Info:      "●", // ●
	ArrowR:    "→", // →
	Bullet:    "•", // •
	Ellipsis:  "…", // …
	Checked:   "◉", // ◉
	Unchecked: "○", // ○
	Cursor:    "›", // ›
}

var asciiSymbols = SymbolSet{
	Success:   "[OK]",
	Error:     "[ERR]",
	Warning:   "[!]",
	Info:      "[i]",
	ArrowR:    "->",
	Bullet:    "*",
	Ellipsis:  "...",
	Checked:   "[x]",
	Unchecked: "[ ]",
	Cursor:    ">",
}

// detectUnicodeSupport checks whether the terminal likely supports Unicode.
// CLAWKIT_ASCII_SYMBOLS=1 forces ASCII.
func detectUnicodeSupport() bool {
	if v := os.Getenv("CLAWKIT_ASCII_SYMBOLS"); v == "1" || strings.EqualFold(v, "true") {
		return false
	}

	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		val := strings.ToLower(os.Getenv(key))
		if strings.Contains(val, "utf-8") || strings.Contains(val, "utf8") {
			return true
		}
	}

	// Most modern terminals support Unicode; default to true.
	return true
}

// InitSymbols sets the package-level Symbol* variables based on terminal
// capabilities. Called by init(); tests may call it again after changing
// the environment.
func InitSymbols() {
	set := unicodeSymbols
	if !detectUnicodeSupport() {
		set = asciiSymbols
	}

	SymbolSuccess = set.Success
	SymbolError = set.Error
	SymbolWarning = set.Warning
	SymbolInfo = set.Info
	SymbolArrowR = set.ArrowR
	SymbolBullet = set.Bullet
	SymbolEllipsis = set.Ellipsis
	SymbolChecked = set.Checked
	SymbolUnchecked = set.Unchecked
	SymbolCursor = set.Cursor
}

func init() {
	InitSymbols()
}
