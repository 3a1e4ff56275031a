// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lang defines the closed set of display languages and the
// localized strings the core needs (fallback apology, empty-state text).
// Full presentation-layer language packs are out of scope here.
package lang

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a display language from the supported closed set.
type Language string

const (
	English Language = "English"
	Urdu    Language = "Urdu"
	Arabic  Language = "Arabic"
)

// Supported returns all supported languages. The first entry is the default.
func Supported() []Language {
	return []Language{English, Urdu, Arabic}
}

// Default returns the default display language.
func Default() Language {
	return Supported()[0]
}

// Parse maps a stored string to a supported language.
// Unknown values fall back to the default so old preference records load.
func Parse(s string) Language {
	for _, l := range Supported() {
		if string(l) == s {
			return l
		}
	}
	return Default()
}

// Tag returns the BCP 47 tag for the language.
func (l Language) Tag() language.Tag {
	switch l {
	case Urdu:
		return language.Urdu
	case Arabic:
		return language.Arabic
	default:
		return language.English
	}
}

// RTL reports whether the language is written right-to-left.
// Presentation only; the state machine never depends on this.
func (l Language) RTL() bool {
	return l == Urdu || l == Arabic
}

// Native returns the language's name in its own script, for status
// lines and menus ("اردو" rather than "Urdu").
func (l Language) Native() string {
	return display.Self.Name(l.Tag())
}

// String returns the language name as used in prompt control tags.
func (l Language) String() string {
	return string(l)
}

// =============================================================================
// LOCALIZED STRINGS
// =============================================================================

// Fallback returns the apology shown when a streamed answer fails.
func (l Language) Fallback() string {
	switch l {
	case Urdu:
		return "معذرت، ایک غلطی ہوئی ہے۔ اللہ بہتر جانتا ہے۔"
	case Arabic:
		return "عذراً، حدث خطأ. الله أعلم."
	default:
		return "I am sorry, but an error occurred. Allah knows best."
	}
}

// Strings holds the localized empty-state text.
type Strings struct {
	Hero string
	Sub  string
	Tags []string
}

// UI returns the empty-state strings for the language.
func (l Language) UI() Strings {
	switch l {
	case Urdu:
		return Strings{
			Hero: "جہاں سے علم شروع ہوتا ہے",
			Sub:  "خالص اسلامی علم، جو براہ راست قرآن اور حضرت محمد صلی اللہ علیہ وسلم کی سنت سے لیا گیا ہے۔",
			Tags: []string{"نماز", "حضرت ابراہیمؑ", "والدین کے حقوق", "رمضان"},
		}
	case Arabic:
		return Strings{
			Hero: "من هنا يبدأ العلم",
			Sub:  "علم إسلامي نقي، مقتبس مباشرة من القرآن وسنة حضرة محمد صلى الله عليه وسلم.",
			Tags: []string{"الصلاة", "حياة إبراهيمؑ", "حقوق الوالدين", "رمضان"},
		}
	default:
		return Strings{
			Hero: "Where knowledge begins",
			Sub:  "Pure Islamic knowledge, cited directly from the Qur'an and Sunnah of Hazrat Muhammad (PBUH).",
			Tags: []string{"Salat", "Hazrat Ibrahim", "Parents Rights", "Ramadan"},
		}
	}
}
