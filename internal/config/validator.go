package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hicognition/hicolink/internal/logging"
	"github.com/hicognition/hicolink/internal/palette"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "value_scale.lower_permil")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validatePalette()...)
	errors = append(errors, c.validateSorting()...)
	errors = append(errors, c.validateValueScale()...)
	errors = append(errors, c.validateData()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateBinning()...)

	return errors
}

func (c *Config) validatePalette() []ValidationError {
	var errors []ValidationError

	if len(c.Palette.Colors) == 0 {
		return append(errors, ValidationError{
			Field:   "palette.colors",
			Value:   c.Palette.Colors,
			Message: "must list at least one color",
		})
	}

	seen := make(map[palette.Color]int, len(c.Palette.Colors))
	for i, raw := range c.Palette.Colors {
		field := fmt.Sprintf("palette.colors[%d]", i)
		color, err := palette.ParseColor(raw)
		if err != nil {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   raw,
				Message: "must be a hex color like #aa8f66",
			})
			continue
		}
		if first, dup := seen[color]; dup {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   raw,
				Message: fmt.Sprintf("duplicates palette.colors[%d]", first),
			})
			continue
		}
		seen[color] = i
	}

	return errors
}

func (c *Config) validateSorting() []ValidationError {
	if IsValidSortMode(c.Sorting.DefaultMode) {
		return nil
	}
	return []ValidationError{{
		Field:   "sorting.default_mode",
		Value:   c.Sorting.DefaultMode,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSortModes(), ", ")),
	}}
}

func (c *Config) validateValueScale() []ValidationError {
	var errors []ValidationError
	vs := c.ValueScale

	if vs.LowerPerMil < 0 || vs.LowerPerMil > 1000 {
		errors = append(errors, ValidationError{
			Field:   "value_scale.lower_permil",
			Value:   vs.LowerPerMil,
			Message: "must be between 0 and 1000",
		})
	}
	if vs.UpperPerMil < 0 || vs.UpperPerMil > 1000 {
		errors = append(errors, ValidationError{
			Field:   "value_scale.upper_permil",
			Value:   vs.UpperPerMil,
			Message: "must be between 0 and 1000",
		})
	}
	if vs.LowerPerMil >= vs.UpperPerMil {
		errors = append(errors, ValidationError{
			Field:   "value_scale.lower_permil",
			Value:   vs.LowerPerMil,
			Message: fmt.Sprintf("must be less than value_scale.upper_permil (%v)", vs.UpperPerMil),
		})
	}

	for widgetType, cmap := range vs.Colormaps {
		if strings.TrimSpace(cmap) == "" {
			errors = append(errors, ValidationError{
				Field:   "value_scale.colormaps." + widgetType,
				Value:   cmap,
				Message: "colormap id cannot be empty",
			})
		}
	}

	return errors
}

func (c *Config) validateData() []ValidationError {
	if c.Data.Pattern == "" {
		return []ValidationError{{
			Field:   "data.pattern",
			Value:   c.Data.Pattern,
			Message: "cannot be empty",
		}}
	}
	if _, err := glob.Compile(c.Data.Pattern); err != nil {
		return []ValidationError{{
			Field:   "data.pattern",
			Value:   c.Data.Pattern,
			Message: fmt.Sprintf("invalid glob: %v", err),
		}}
	}
	if c.Data.Watch && c.Data.Dir == "" {
		return []ValidationError{{
			Field:   "data.watch",
			Value:   c.Data.Watch,
			Message: "requires data.dir",
		}}
	}
	return nil
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !logging.IsValidLevel(c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.ToLower(strings.Join(logging.ValidLevels(), ", "))),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateBinning() []ValidationError {
	var errors []ValidationError

	if c.Binning.Size <= 0 {
		errors = append(errors, ValidationError{
			Field:   "binning.size",
			Value:   c.Binning.Size,
			Message: "must be positive",
		})
	}
	if !slices.Contains(ValidAggregations(), c.Binning.Aggregation) {
		errors = append(errors, ValidationError{
			Field:   "binning.aggregation",
			Value:   c.Binning.Aggregation,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidAggregations(), ", ")),
		})
	}

	return errors
}
