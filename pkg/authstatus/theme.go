package authstatus

import (
	"strings"

	"go.uber.org/zap"
)

// resolveClasses picks the status and button classes: explicit options win,
// then the selected theme's tokens (variant tokens over manifest tokens).
func resolveClasses(opts Options) (statusClass, buttonClass string) {
	statusClass = strings.TrimSpace(opts.StatusClass)
	buttonClass = strings.TrimSpace(opts.ButtonClass)
	if (statusClass != "" && buttonClass != "") || opts.ThemeSelector == nil {
		return statusClass, buttonClass
	}

	tokens := themeTokens(opts)
	if statusClass == "" {
		statusClass = strings.TrimSpace(tokens[TokenStatusClass])
	}
	if buttonClass == "" {
		buttonClass = strings.TrimSpace(tokens[TokenButtonClass])
	}
	return statusClass, buttonClass
}

func themeTokens(opts Options) map[string]string {
	selection, err := opts.ThemeSelector.Select(opts.ThemeName, opts.ThemeVariant)
	if err != nil {
		if opts.Logger != nil {
			opts.Logger.Warn("theme selection failed",
				zap.String("theme", opts.ThemeName),
				zap.String("variant", opts.ThemeVariant),
				zap.Error(err))
		}
		return nil
	}
	if selection == nil || selection.Manifest == nil {
		return nil
	}

	tokens := make(map[string]string, len(selection.Manifest.Tokens))
	for key, value := range selection.Manifest.Tokens {
		tokens[key] = value
	}
	if selection.Variant != "" {
		if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
			for key, value := range variant.Tokens {
				tokens[key] = value
			}
		}
	}
	return tokens
}
