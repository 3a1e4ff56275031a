// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// FocusMode narrows which source category an answer should draw from.
type FocusMode string

const (
	FocusAll    FocusMode = "All"
	FocusQuran  FocusMode = "Qur'an"
	FocusHadith FocusMode = "Hadith"
	FocusTafsir FocusMode = "Tafsir"
)

// FocusModes returns all focus modes in display order.
func FocusModes() []FocusMode {
	return []FocusMode{FocusAll, FocusQuran, FocusHadith, FocusTafsir}
}

// String returns the mode name as used in the [Focus: ...] control tag.
func (f FocusMode) String() string {
	return string(f)
}

// IsDefault reports whether the mode is the default "All" (no tag emitted).
func (f FocusMode) IsDefault() bool {
	return f == FocusAll || f == ""
}

// Description returns a short human description for pickers.
func (f FocusMode) Description() string {
	switch f {
	case FocusQuran:
		return "Focus on Ayahs"
	case FocusHadith:
		return "Focus on Narrations"
	case FocusTafsir:
		return "Focus on Explanations"
	default:
		return "Search everything"
	}
}
