// Package domain holds the constants and sentinel errors shared across aioncli.
package domain

// OptionsFunctionName is the name of the single function the model is
// offered. Arguments returned under this name carry option parameters.
const OptionsFunctionName = "extract_options_info"

// Argument keys of the options function.
const (
	ArgOption  = "option"
	ArgStrike  = "strike"
	ArgPremium = "premium"
)

// Version is the release string printed by `aioncli version`.
const Version = "0.0.1729"

// BannerLabel is the fixed text rendered by `aioncli asciiart`.
const BannerLabel = "AI On CLI"
