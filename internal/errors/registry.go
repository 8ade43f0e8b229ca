package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Reactive (R001-R099)
	"R001": {
		Category:   CategoryReactive,
		Message:    "Write rejected on readonly object",
		Suggestion: "Mutate the object through its mutable handle instead of the readonly view.",
	},
	"R002": {
		Category:   CategoryReactive,
		Message:    "Delete rejected on readonly object",
		Suggestion: "Mutate the object through its mutable handle instead of the readonly view.",
	},
	"R003": {
		Category: CategoryReactive,
		Message:  "Operation not supported by collection",
	},

	// Scheduler (S001-S099)
	"S001": {
		Category: CategoryScheduler,
		Message:  "Job panicked during flush",
	},
	"S002": {
		Category:   CategoryScheduler,
		Message:    "Maximum recursive updates exceeded",
		Suggestion: "A job keeps re-queueing itself; check for a render or watcher that writes the state it reads.",
	},

	// Render (C001-C099)
	"C001": {
		Category:   CategoryRender,
		Message:    "Duplicate key among siblings",
		Suggestion: "Keys must be unique within one child list.",
	},
	"C002": {
		Category: CategoryRender,
		Message:  "Component render returned nil",
	},

	// Protocol (P001-P099)
	"P001": {
		Category: CategoryProtocol,
		Message:  "Malformed protocol frame",
	},
	"P002": {
		Category: CategoryProtocol,
		Message:  "Unknown node id",
	},

	// Config (F001-F099)
	"F001": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"F002": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Run 'vcore config init' to write a default vcore.yaml.",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a custom error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
